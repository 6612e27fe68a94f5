package services

import (
	"fmt"
	"strings"

	"github.com/bitesplus/bites-plus-server/internal/models"
)

// ListingIntent is what a caller asked for on GET /foods.
type ListingIntent struct {
	Featured bool
	Email    string
	Request  bool
	Search   string
	Filter   string
}

// ResolveQuery turns an intent into a store query. Precedence is featured,
// then the donor's own listings, then the requester's own listings, then the
// public browse. viewer is nil for anonymous callers.
func ResolveQuery(intent ListingIntent, viewer *Identity) (models.ListingQuery, error) {
	if intent.Featured {
		return models.ListingQuery{Mode: models.QueryFeatured, Limit: models.FeaturedLimit}, nil
	}

	email := strings.TrimSpace(intent.Email)
	if email != "" || intent.Request {
		if viewer == nil || viewer.Email == "" {
			return models.ListingQuery{}, ErrAuthRequired
		}
		if email == "" {
			email = viewer.Email
		} else if !strings.EqualFold(email, viewer.Email) {
			return models.ListingQuery{}, ErrForbidden
		}
		mode := models.QueryDonor
		if intent.Request {
			mode = models.QueryRequester
		}
		return models.ListingQuery{Mode: mode, Email: viewer.Email}, nil
	}

	dir, err := ParseSortDirection(intent.Filter)
	if err != nil {
		return models.ListingQuery{}, err
	}
	return models.ListingQuery{
		Mode:       models.QueryBrowse,
		Search:     strings.TrimSpace(intent.Search),
		ExpireSort: dir,
	}, nil
}

// ParseSortDirection reads the expireDate sort argument: 1/asc, -1/desc,
// empty or 0 for store order.
func ParseSortDirection(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0":
		return 0, nil
	case "1", "asc", "ascending":
		return 1, nil
	case "-1", "desc", "descending":
		return -1, nil
	}
	return 0, fmt.Errorf("%w: filter must be 1, -1, asc or desc", ErrValidation)
}
