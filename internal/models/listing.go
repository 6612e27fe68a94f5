package models

// ListingStatus is the lifecycle state of a listing. A deleted listing has no state.
type ListingStatus string

const (
	StatusAvailable ListingStatus = "Available"
	StatusRequested ListingStatus = "Requested"
)

// Listing is one donated food item. Field names follow the documents the
// web client already reads, so JSON and BSON share them.
type Listing struct {
	ID              string        `bson:"_id,omitempty" json:"_id,omitempty"`
	FoodName        string        `bson:"foodName" json:"foodName,omitempty"`
	FoodImage       string        `bson:"foodImage,omitempty" json:"foodImage,omitempty"`
	FoodQuantity    string        `bson:"foodQuantity" json:"foodQuantity,omitempty"`
	PickupLocation  string        `bson:"pickupLocation,omitempty" json:"pickupLocation,omitempty"`
	FoodStatus      ListingStatus `bson:"foodStatus" json:"foodStatus,omitempty"`
	ExpireDate      string        `bson:"expireDate" json:"expireDate,omitempty"`
	AdditionalNotes string        `bson:"additionalNotes,omitempty" json:"additionalNotes,omitempty"`

	DonatorEmail    string `bson:"donatorEmail" json:"donatorEmail,omitempty"`
	DonatorName     string `bson:"donatorName,omitempty" json:"donatorName,omitempty"`
	DonatorUID      string `bson:"donatorUID,omitempty" json:"donatorUID,omitempty"`
	DonatorPhotoURL string `bson:"donatorPhotoURL,omitempty" json:"donatorPhotoURL,omitempty"`

	// Present only while FoodStatus is Requested.
	RequesterEmail string `bson:"requesterEmail,omitempty" json:"requesterEmail,omitempty"`
	RequestDate    string `bson:"requestDate,omitempty" json:"requestDate,omitempty"`
	RequesterNote  string `bson:"requesterNote,omitempty" json:"requesterNote,omitempty"`

	// QuantityValue is the numeric rank derived from FoodQuantity at write
	// time. Nil when the quantity has no leading number.
	QuantityValue *float64 `bson:"foodQuantityValue,omitempty" json:"-"`
}

// HasRequest reports whether any requester field is set.
func (l *Listing) HasRequest() bool {
	return l.RequesterEmail != "" || l.RequestDate != "" || l.RequesterNote != ""
}

// RequestFields are written together when a listing moves to Requested.
type RequestFields struct {
	RequesterEmail string
	RequestDate    string
	RequesterNote  string
}

// ListingPatch is a donor edit. Nil fields are left untouched.
type ListingPatch struct {
	FoodName        *string
	FoodImage       *string
	FoodQuantity    *string
	PickupLocation  *string
	ExpireDate      *string
	AdditionalNotes *string
	DonatorName     *string
	DonatorPhotoURL *string

	// Set when FoodQuantity changes; ClearQuantityValue removes the rank
	// when the new quantity is unparsable.
	QuantityValue      *float64
	ClearQuantityValue bool
}

// Fields returns the patched values keyed by document field name.
func (p ListingPatch) Fields() map[string]any {
	fields := make(map[string]any)
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	set("foodName", p.FoodName)
	set("foodImage", p.FoodImage)
	set("foodQuantity", p.FoodQuantity)
	set("pickupLocation", p.PickupLocation)
	set("expireDate", p.ExpireDate)
	set("additionalNotes", p.AdditionalNotes)
	set("donatorName", p.DonatorName)
	set("donatorPhotoURL", p.DonatorPhotoURL)
	if p.QuantityValue != nil {
		fields["foodQuantityValue"] = *p.QuantityValue
	}
	return fields
}

// IsEmpty reports whether the patch changes nothing.
func (p ListingPatch) IsEmpty() bool {
	return len(p.Fields()) == 0 && !p.ClearQuantityValue
}

// QuantityPattern captures the leading decimal number of a quantity. It is
// written in the subset shared by Go's regexp and MongoDB's $regexFind.
const QuantityPattern = `^\s*([+-]?(?:\d+(?:\.\d*)?|\.\d+))`
