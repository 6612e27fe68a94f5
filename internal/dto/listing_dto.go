package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// FlexString accepts a JSON string or number. Quantities arrive either way.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("expected a string or a number")
	}
	// Numbers are kept in plain decimal form, so 1e3 reads as 1000.
	v, err := n.Float64()
	if err != nil {
		return errors.New("number out of range")
	}
	*f = FlexString(strconv.FormatFloat(v, 'f', -1, 64))
	return nil
}

// CreateListingRequest is the body of POST /food. Requester fields are
// accepted only so they can be rejected.
type CreateListingRequest struct {
	FoodName        string     `json:"foodName" validate:"required,max=200"`
	FoodImage       string     `json:"foodImage" validate:"max=2048"`
	FoodQuantity    FlexString `json:"foodQuantity" validate:"required,max=50"`
	PickupLocation  string     `json:"pickupLocation" validate:"max=300"`
	FoodStatus      string     `json:"foodStatus" validate:"omitempty,eq=Available"`
	ExpireDate      string     `json:"expireDate" validate:"required,max=40"`
	AdditionalNotes string     `json:"additionalNotes" validate:"max=2000"`

	DonatorEmail    string `json:"donatorEmail" validate:"omitempty,email"`
	DonatorName     string `json:"donatorName" validate:"max=200"`
	DonatorUID      string `json:"donatorUID" validate:"max=128"`
	DonatorPhotoURL string `json:"donatorPhotoURL" validate:"max=2048"`

	RequesterEmail string `json:"requesterEmail" validate:"isdefault"`
	RequestDate    string `json:"requestDate" validate:"isdefault"`
	RequesterNote  string `json:"requesterNote" validate:"isdefault"`
}

// RequestListingRequest is the body of POST /food/:id/request.
type RequestListingRequest struct {
	RequesterNote string `json:"requesterNote"`
}

type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
