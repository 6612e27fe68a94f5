package services

import (
	"context"

	"github.com/bitesplus/bites-plus-server/internal/models"
)

// ListingStore persists listings. Every mutation is a single conditional
// statement; the bool result reports whether a document matched.
type ListingStore interface {
	Insert(ctx context.Context, l *models.Listing) error
	// FindByID returns nil, nil when no listing has the id.
	FindByID(ctx context.Context, id string) (*models.Listing, error)
	Find(ctx context.Context, q models.ListingQuery) ([]models.Listing, error)

	// MarkRequested matches id with foodStatus Available and a donator other
	// than the requester.
	MarkRequested(ctx context.Context, id string, req models.RequestFields) (bool, error)
	// ClearRequest matches id with foodStatus Requested where actorEmail is
	// the requester or the donator, and unsets the requester fields.
	ClearRequest(ctx context.Context, id, actorEmail string) (bool, error)
	// Update matches id owned by donorEmail.
	Update(ctx context.Context, id, donorEmail string, patch models.ListingPatch) (bool, error)
	// Delete matches id owned by donorEmail.
	Delete(ctx context.Context, id, donorEmail string) (bool, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
