package handlers

import (
	"errors"
	"log/slog"

	"github.com/bitesplus/bites-plus-server/internal/dto"
	"github.com/bitesplus/bites-plus-server/internal/services"
	"github.com/gofiber/fiber/v2"
)

// fail writes a structured failure for err. Store failures are logged and
// reported without detail.
func fail(c *fiber.Ctx, err error) error {
	status, kind := fiber.StatusInternalServerError, "StoreFailure"
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidIdentity):
		status, kind = fiber.StatusBadRequest, "ValidationFailure"
	case errors.Is(err, services.ErrAuthRequired):
		status, kind = fiber.StatusUnauthorized, "AuthRequired"
	case errors.Is(err, services.ErrForbidden):
		status, kind = fiber.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrListingNotFound):
		status, kind = fiber.StatusNotFound, "NotFound"
	case errors.Is(err, services.ErrConflict):
		status, kind = fiber.StatusConflict, "Conflict"
	}

	message := err.Error()
	if status >= 500 {
		slog.Error("listing operation failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err.Error(),
		)
		message = "Internal server error"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Kind: kind, Message: message})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Kind: "ValidationFailure", Message: "Invalid request body",
	})
}
