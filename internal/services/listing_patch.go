package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bitesplus/bites-plus-server/internal/dto"
	"github.com/bitesplus/bites-plus-server/internal/models"
)

var patchLimits = map[string]int{
	"foodName":        200,
	"foodImage":       2048,
	"foodQuantity":    50,
	"pickupLocation":  300,
	"expireDate":      40,
	"additionalNotes": 2000,
	"donatorName":     200,
	"donatorPhotoURL": 2048,
}

// BuildPatch turns a PUT body into a donor patch. The id, the status, the
// requester fields and the donor's email and uid cannot be edited, and
// unknown fields are refused rather than stored.
func BuildPatch(body map[string]json.RawMessage) (models.ListingPatch, error) {
	var patch models.ListingPatch
	if len(body) == 0 {
		return patch, fmt.Errorf("%w: empty update", ErrValidation)
	}

	for key, raw := range body {
		limit, ok := patchLimits[key]
		if !ok {
			return patch, fmt.Errorf("%w: %s cannot be edited", ErrValidation, key)
		}
		v, err := decodeText(key, raw)
		if err != nil {
			return patch, err
		}
		if len(v) > limit {
			return patch, fmt.Errorf("%w: %s must be at most %d characters", ErrValidation, key, limit)
		}

		switch key {
		case "foodName":
			v = strings.TrimSpace(v)
			if v == "" {
				return patch, fmt.Errorf("%w: foodName is required", ErrValidation)
			}
			patch.FoodName = &v
		case "foodImage":
			patch.FoodImage = &v
		case "foodQuantity":
			v = strings.TrimSpace(v)
			if v == "" {
				return patch, fmt.Errorf("%w: foodQuantity is required", ErrValidation)
			}
			patch.FoodQuantity = &v
			if rank := quantityRank(v); rank != nil {
				patch.QuantityValue = rank
			} else {
				patch.ClearQuantityValue = true
			}
		case "pickupLocation":
			patch.PickupLocation = &v
		case "expireDate":
			if v == "" {
				return patch, fmt.Errorf("%w: expireDate is required", ErrValidation)
			}
			patch.ExpireDate = &v
		case "additionalNotes":
			patch.AdditionalNotes = &v
		case "donatorName":
			patch.DonatorName = &v
		case "donatorPhotoURL":
			patch.DonatorPhotoURL = &v
		}
	}
	return patch, nil
}

func decodeText(key string, raw json.RawMessage) (string, error) {
	var v dto.FlexString
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrValidation, key)
	}
	return string(v), nil
}
