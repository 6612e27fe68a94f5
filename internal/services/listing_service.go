package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bitesplus/bites-plus-server/internal/dto"
	"github.com/bitesplus/bites-plus-server/internal/metrics"
	"github.com/bitesplus/bites-plus-server/internal/models"
)

// ListingService runs listing queries and lifecycle transitions. Every
// transition is one conditional store call; a read only follows a call
// that matched nothing, to say why.
type ListingService struct {
	store      ListingStore
	moderation *ModerationService
	timeout    time.Duration
	now        func() time.Time
}

func NewListingService(store ListingStore, moderation *ModerationService, timeout time.Duration) *ListingService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ListingService{
		store:      store,
		moderation: moderation,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Get returns one listing shaped for the browse or the detail view.
func (s *ListingService) Get(ctx context.Context, id string, detail bool) (*models.Listing, error) {
	if !ValidListingID(id) {
		return nil, invalidID()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	l, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if l == nil {
		return nil, ErrListingNotFound
	}
	out := ProjectListing(*l, detail)
	return &out, nil
}

// Query resolves intent for viewer and returns the matching listings. Public
// results carry the browse projection; a verified owner or requester sees
// their own listings whole.
func (s *ListingService) Query(ctx context.Context, intent ListingIntent, viewer *Identity) ([]models.Listing, error) {
	q, err := ResolveQuery(intent, viewer)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	listings, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}

	switch q.Mode {
	case models.QueryFeatured, models.QueryBrowse:
		return ProjectListings(listings), nil
	}
	out := make([]models.Listing, len(listings))
	for i := range listings {
		out[i] = listings[i]
		out[i].QuantityValue = nil
	}
	return out, nil
}

// Create stores a new Available listing owned by who.
func (s *ListingService) Create(ctx context.Context, who Identity, req *dto.CreateListingRequest) (l *models.Listing, err error) {
	defer func() { metrics.ObserveTransition("create", outcome(err)) }()

	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if req.DonatorEmail != "" && !strings.EqualFold(req.DonatorEmail, who.Email) {
		return nil, fmt.Errorf("%w: listings can only be created for the signed-in donor", ErrForbidden)
	}
	if err := s.screen(map[string]string{
		"foodName":        req.FoodName,
		"pickupLocation":  req.PickupLocation,
		"additionalNotes": req.AdditionalNotes,
	}); err != nil {
		return nil, err
	}

	quantity := strings.TrimSpace(string(req.FoodQuantity))
	l = &models.Listing{
		ID:              NewListingID(),
		FoodName:        strings.TrimSpace(req.FoodName),
		FoodImage:       req.FoodImage,
		FoodQuantity:    quantity,
		QuantityValue:   quantityRank(quantity),
		PickupLocation:  req.PickupLocation,
		FoodStatus:      models.StatusAvailable,
		ExpireDate:      req.ExpireDate,
		AdditionalNotes: req.AdditionalNotes,
		DonatorEmail:    who.Email,
		DonatorName:     firstNonEmpty(req.DonatorName, who.Name),
		DonatorUID:      firstNonEmpty(who.UID, req.DonatorUID),
		DonatorPhotoURL: firstNonEmpty(req.DonatorPhotoURL, who.PhotoURL),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Insert(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	return l, nil
}

// Request claims an Available listing for who.
func (s *ListingService) Request(ctx context.Context, who Identity, id, note string) (err error) {
	defer func() { metrics.ObserveTransition("request", outcome(err)) }()

	if !ValidListingID(id) {
		return invalidID()
	}
	if err := s.screen(map[string]string{"requesterNote": note}); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matched, err := s.store.MarkRequested(ctx, id, models.RequestFields{
		RequesterEmail: who.Email,
		RequestDate:    s.now().UTC().Format(time.RFC3339),
		RequesterNote:  note,
	})
	if err != nil {
		return fmt.Errorf("failed to request listing: %w", err)
	}
	if matched {
		return nil
	}
	return s.explain(ctx, id, func(l *models.Listing) error {
		if strings.EqualFold(l.DonatorEmail, who.Email) {
			return fmt.Errorf("%w: donors cannot request their own listing", ErrForbidden)
		}
		return fmt.Errorf("%w: listing is already requested", ErrConflict)
	})
}

// CancelRequest returns a Requested listing to Available. The requester and
// the donor may both cancel.
func (s *ListingService) CancelRequest(ctx context.Context, who Identity, id string) (err error) {
	defer func() { metrics.ObserveTransition("cancel_request", outcome(err)) }()

	if !ValidListingID(id) {
		return invalidID()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matched, err := s.store.ClearRequest(ctx, id, who.Email)
	if err != nil {
		return fmt.Errorf("failed to cancel request: %w", err)
	}
	if matched {
		return nil
	}
	return s.explain(ctx, id, func(l *models.Listing) error {
		if l.FoodStatus != models.StatusRequested {
			return fmt.Errorf("%w: listing has no active request", ErrConflict)
		}
		return ErrForbidden
	})
}

// Replace handles PUT /food/:id. A body naming foodStatus is a status change
// and goes through Request or CancelRequest; anything else is a donor edit.
func (s *ListingService) Replace(ctx context.Context, who Identity, id string, body map[string]json.RawMessage) error {
	if _, ok := body["foodStatus"]; ok {
		return s.changeStatus(ctx, who, id, body)
	}
	return s.Edit(ctx, who, id, body)
}

// Edit merges a donor patch into the listing, leaving its status alone.
func (s *ListingService) Edit(ctx context.Context, who Identity, id string, body map[string]json.RawMessage) (err error) {
	defer func() { metrics.ObserveTransition("edit", outcome(err)) }()

	if !ValidListingID(id) {
		return invalidID()
	}
	patch, err := BuildPatch(body)
	if err != nil {
		return err
	}
	screened := map[string]string{}
	for key, v := range map[string]*string{
		"foodName":        patch.FoodName,
		"pickupLocation":  patch.PickupLocation,
		"additionalNotes": patch.AdditionalNotes,
	} {
		if v != nil {
			screened[key] = *v
		}
	}
	if err := s.screen(screened); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matched, err := s.store.Update(ctx, id, who.Email, patch)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if matched {
		return nil
	}
	return s.explain(ctx, id, func(*models.Listing) error { return ErrForbidden })
}

// Delete removes a listing owned by who, whatever its state.
func (s *ListingService) Delete(ctx context.Context, who Identity, id string) (err error) {
	defer func() { metrics.ObserveTransition("delete", outcome(err)) }()

	if !ValidListingID(id) {
		return invalidID()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matched, err := s.store.Delete(ctx, id, who.Email)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if matched {
		return nil
	}
	return s.explain(ctx, id, func(*models.Listing) error { return ErrForbidden })
}

var statusChangeKeys = map[string]bool{
	"foodStatus":     true,
	"requesterEmail": true,
	"requestDate":    true,
	"requesterNote":  true,
}

func (s *ListingService) changeStatus(ctx context.Context, who Identity, id string, body map[string]json.RawMessage) error {
	fields := make(map[string]string, len(body))
	for key, raw := range body {
		if !statusChangeKeys[key] {
			return fmt.Errorf("%w: %s cannot be changed together with foodStatus", ErrValidation, key)
		}
		v, err := decodeText(key, raw)
		if err != nil {
			return err
		}
		fields[key] = v
	}

	switch models.ListingStatus(fields["foodStatus"]) {
	case models.StatusRequested:
		if email := fields["requesterEmail"]; email != "" && !strings.EqualFold(email, who.Email) {
			return fmt.Errorf("%w: requests can only be made for the signed-in user", ErrForbidden)
		}
		return s.Request(ctx, who, id, fields["requesterNote"])
	case models.StatusAvailable:
		return s.CancelRequest(ctx, who, id)
	}
	return fmt.Errorf("%w: foodStatus must be Available or Requested", ErrValidation)
}

// explain classifies a conditional call that matched nothing.
func (s *ListingService) explain(ctx context.Context, id string, exists func(*models.Listing) error) error {
	l, err := s.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load listing: %w", err)
	}
	if l == nil {
		return ErrListingNotFound
	}
	return exists(l)
}

func (s *ListingService) screen(fields map[string]string) error {
	if s.moderation == nil {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if ok, reason := s.moderation.FilterContent(fields[k]); !ok {
			return fmt.Errorf("%w: %s %s", ErrValidation, k, s.moderation.GetRejectionMessage(reason))
		}
	}
	return nil
}

func invalidID() error {
	return fmt.Errorf("%w: malformed listing id", ErrValidation)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrListingNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	}
	return "error"
}
