package handlers

import (
	"encoding/json"
	"errors"

	"github.com/bitesplus/bites-plus-server/internal/dto"
	"github.com/bitesplus/bites-plus-server/internal/middleware"
	"github.com/bitesplus/bites-plus-server/internal/services"
	"github.com/gofiber/fiber/v2"
)

type FoodHandler struct {
	listingService *services.ListingService
}

func NewFoodHandler(listingService *services.ListingService) *FoodHandler {
	return &FoodHandler{listingService: listingService}
}

// Get answers GET /food/:id. A missing listing is a null body, not an error.
func (h *FoodHandler) Get(c *fiber.Ctx) error {
	detail := queryFlag(c, "details") || queryFlag(c, "request")
	listing, err := h.listingService.Get(c.UserContext(), c.Params("id"), detail)
	if errors.Is(err, services.ErrListingNotFound) {
		return c.JSON(nil)
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(listing)
}

// List answers GET /foods.
func (h *FoodHandler) List(c *fiber.Ctx) error {
	intent := services.ListingIntent{
		Featured: queryFlag(c, "featured"),
		Email:    c.Query("email"),
		Request:  queryFlag(c, "request"),
		Search:   c.Query("search"),
		Filter:   c.Query("filter"),
	}
	var viewer *services.Identity
	if who, err := middleware.CurrentIdentity(c); err == nil {
		viewer = &who
	}

	listings, err := h.listingService.Query(c.UserContext(), intent, viewer)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(listings)
}

func (h *FoodHandler) Create(c *fiber.Ctx) error {
	who, err := middleware.CurrentIdentity(c)
	if err != nil {
		return fail(c, services.ErrAuthRequired)
	}
	var req dto.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	listing, err := h.listingService.Create(c.UserContext(), who, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.InsertResult{Acknowledged: true, InsertedID: listing.ID})
}

// Replace answers PUT /food/:id: a donor edit, or a status change when the
// body names foodStatus.
func (h *FoodHandler) Replace(c *fiber.Ctx) error {
	who, err := middleware.CurrentIdentity(c)
	if err != nil {
		return fail(c, services.ErrAuthRequired)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return badBody(c)
	}

	if err := h.listingService.Replace(c.UserContext(), who, c.Params("id"), body); err != nil {
		return fail(c, err)
	}
	return c.JSON(updated())
}

func (h *FoodHandler) Request(c *fiber.Ctx) error {
	who, err := middleware.CurrentIdentity(c)
	if err != nil {
		return fail(c, services.ErrAuthRequired)
	}
	var req dto.RequestListingRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c)
		}
	}

	if err := h.listingService.Request(c.UserContext(), who, c.Params("id"), req.RequesterNote); err != nil {
		return fail(c, err)
	}
	return c.JSON(updated())
}

// CancelRequest answers PATCH /food/:id.
func (h *FoodHandler) CancelRequest(c *fiber.Ctx) error {
	who, err := middleware.CurrentIdentity(c)
	if err != nil {
		return fail(c, services.ErrAuthRequired)
	}
	if err := h.listingService.CancelRequest(c.UserContext(), who, c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(updated())
}

func (h *FoodHandler) Delete(c *fiber.Ctx) error {
	who, err := middleware.CurrentIdentity(c)
	if err != nil {
		return fail(c, services.ErrAuthRequired)
	}
	if err := h.listingService.Delete(c.UserContext(), who, c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.DeleteResult{Acknowledged: true, DeletedCount: 1})
}

func updated() dto.UpdateResult {
	return dto.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}
}

// queryFlag treats any value other than empty, 0 and false as set.
func queryFlag(c *fiber.Ctx, key string) bool {
	switch c.Query(key) {
	case "", "0", "false":
		return false
	}
	return true
}

// OwnedListQuery reports whether a GET /foods call asks for the caller's
// own listings and so needs a session.
func OwnedListQuery(c *fiber.Ctx) bool {
	return !queryFlag(c, "featured") && (c.Query("email") != "" || queryFlag(c, "request"))
}
