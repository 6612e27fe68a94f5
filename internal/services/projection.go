package services

import "github.com/bitesplus/bites-plus-server/internal/models"

// ProjectListing returns the copy of l a viewer may see.
//
// The browse view hides the donor identity. The detail view, used on the
// details and request pages, shows donor contact but hides the notes, the
// donor's uid and photo, and the id the caller already holds.
func ProjectListing(l models.Listing, detail bool) models.Listing {
	out := l
	out.QuantityValue = nil
	out.DonatorUID = ""
	out.DonatorPhotoURL = ""
	if detail {
		out.AdditionalNotes = ""
		out.ID = ""
		return out
	}
	out.DonatorEmail = ""
	out.DonatorName = ""
	return out
}

// ProjectListings applies the browse projection to every listing.
func ProjectListings(listings []models.Listing) []models.Listing {
	out := make([]models.Listing, len(listings))
	for i := range listings {
		out[i] = ProjectListing(listings[i], false)
	}
	return out
}
