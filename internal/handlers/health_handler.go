package handlers

import (
	"context"
	"time"

	"github.com/bitesplus/bites-plus-server/internal/dto"
	"github.com/bitesplus/bites-plus-server/internal/services"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	store  services.ListingStore
	driver string
}

func NewHealthHandler(store services.ListingStore, driver string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver}
}

func (h *HealthHandler) Banner(c *fiber.Ctx) error {
	return c.SendString("BitesPlus Server RUNNING")
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	storeStatus := "ok"
	status := fiber.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		storeStatus = "unhealthy: " + err.Error()
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Store:     storeStatus,
		Driver:    h.driver,
	})
}
