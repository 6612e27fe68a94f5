package mongostore

import (
	"fmt"
	"strconv"

	"github.com/bitesplus/bites-plus-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// document is the stored shape of a listing. Older documents may hold the
// quantity as a number, so it is decoded raw.
type document struct {
	ID              primitive.ObjectID `bson:"_id"`
	FoodName        string             `bson:"foodName"`
	FoodImage       string             `bson:"foodImage,omitempty"`
	FoodQuantity    bson.RawValue      `bson:"foodQuantity"`
	PickupLocation  string             `bson:"pickupLocation,omitempty"`
	FoodStatus      string             `bson:"foodStatus"`
	ExpireDate      string             `bson:"expireDate"`
	AdditionalNotes string             `bson:"additionalNotes,omitempty"`
	DonatorEmail    string             `bson:"donatorEmail"`
	DonatorName     string             `bson:"donatorName,omitempty"`
	DonatorUID      string             `bson:"donatorUID,omitempty"`
	DonatorPhotoURL string             `bson:"donatorPhotoURL,omitempty"`
	RequesterEmail  string             `bson:"requesterEmail,omitempty"`
	RequestDate     string             `bson:"requestDate,omitempty"`
	RequesterNote   string             `bson:"requesterNote,omitempty"`
	QuantityValue   *float64           `bson:"foodQuantityValue,omitempty"`
}

// insertDoc is written on create. Requester fields are never part of it.
type insertDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	FoodName        string             `bson:"foodName"`
	FoodImage       string             `bson:"foodImage,omitempty"`
	FoodQuantity    string             `bson:"foodQuantity"`
	PickupLocation  string             `bson:"pickupLocation,omitempty"`
	FoodStatus      string             `bson:"foodStatus"`
	ExpireDate      string             `bson:"expireDate"`
	AdditionalNotes string             `bson:"additionalNotes,omitempty"`
	DonatorEmail    string             `bson:"donatorEmail"`
	DonatorName     string             `bson:"donatorName,omitempty"`
	DonatorUID      string             `bson:"donatorUID,omitempty"`
	DonatorPhotoURL string             `bson:"donatorPhotoURL,omitempty"`
	QuantityValue   *float64           `bson:"foodQuantityValue,omitempty"`
}

func fromListing(l *models.Listing) (insertDoc, error) {
	oid, err := primitive.ObjectIDFromHex(l.ID)
	if err != nil {
		return insertDoc{}, fmt.Errorf("invalid listing id %q: %w", l.ID, err)
	}
	return insertDoc{
		ID:              oid,
		FoodName:        l.FoodName,
		FoodImage:       l.FoodImage,
		FoodQuantity:    l.FoodQuantity,
		PickupLocation:  l.PickupLocation,
		FoodStatus:      string(l.FoodStatus),
		ExpireDate:      l.ExpireDate,
		AdditionalNotes: l.AdditionalNotes,
		DonatorEmail:    l.DonatorEmail,
		DonatorName:     l.DonatorName,
		DonatorUID:      l.DonatorUID,
		DonatorPhotoURL: l.DonatorPhotoURL,
		QuantityValue:   l.QuantityValue,
	}, nil
}

func (d *document) toListing() models.Listing {
	return models.Listing{
		ID:              d.ID.Hex(),
		FoodName:        d.FoodName,
		FoodImage:       d.FoodImage,
		FoodQuantity:    rawText(d.FoodQuantity),
		PickupLocation:  d.PickupLocation,
		FoodStatus:      models.ListingStatus(d.FoodStatus),
		ExpireDate:      d.ExpireDate,
		AdditionalNotes: d.AdditionalNotes,
		DonatorEmail:    d.DonatorEmail,
		DonatorName:     d.DonatorName,
		DonatorUID:      d.DonatorUID,
		DonatorPhotoURL: d.DonatorPhotoURL,
		RequesterEmail:  d.RequesterEmail,
		RequestDate:     d.RequestDate,
		RequesterNote:   d.RequesterNote,
		QuantityValue:   d.QuantityValue,
	}
}

func rawText(v bson.RawValue) string {
	switch v.Type {
	case bsontype.String:
		return v.StringValue()
	case bsontype.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case bsontype.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case bsontype.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	}
	return ""
}
