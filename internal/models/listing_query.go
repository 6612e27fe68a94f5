package models

// QueryMode selects which listings a query returns.
type QueryMode int

const (
	QueryBrowse QueryMode = iota
	QueryFeatured
	QueryDonor
	QueryRequester
)

func (m QueryMode) String() string {
	switch m {
	case QueryFeatured:
		return "featured"
	case QueryDonor:
		return "donor"
	case QueryRequester:
		return "requester"
	default:
		return "browse"
	}
}

// FeaturedLimit caps the featured set.
const FeaturedLimit = 6

// ListingQuery is a resolved, store-independent listing query.
//
// Featured: Available only, QuantityValue desc (missing last), then id asc, Limit.
// Donor: DonatorEmail == Email. Requester: RequesterEmail == Email.
// Browse: Available only, FoodName contains Search (case-insensitive, literal),
// ExpireSort 1 / -1 orders by ExpireDate, 0 keeps store order.
type ListingQuery struct {
	Mode       QueryMode
	Email      string
	Search     string
	ExpireSort int
	Limit      int
}
