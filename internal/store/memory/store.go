// Package memory is an in-process listing store for development and tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/bitesplus/bites-plus-server/internal/models"
)

var ErrDuplicateID = errors.New("listing id already exists")

// Store keeps listings in insertion order behind one mutex, so each
// conditional mutation is atomic like a single document update.
type Store struct {
	mu       sync.RWMutex
	order    []string
	listings map[string]*models.Listing
}

func New() *Store {
	return &Store{listings: make(map[string]*models.Listing)}
}

func (s *Store) Insert(_ context.Context, l *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[l.ID]; ok {
		return ErrDuplicateID
	}
	s.listings[l.ID] = clone(l)
	s.order = append(s.order, l.ID)
	return nil
}

func (s *Store) FindByID(_ context.Context, id string) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, nil
	}
	return clone(l), nil
}

func (s *Store) Find(_ context.Context, q models.ListingQuery) ([]models.Listing, error) {
	s.mu.RLock()
	out := make([]models.Listing, 0)
	for _, id := range s.order {
		l := s.listings[id]
		if matches(l, q) {
			out = append(out, *clone(l))
		}
	}
	s.mu.RUnlock()

	switch {
	case q.Mode == models.QueryFeatured:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].QuantityValue, out[j].QuantityValue
			switch {
			case a != nil && b != nil && *a != *b:
				return *a > *b
			case a != nil && b == nil:
				return true
			case a == nil && b != nil:
				return false
			}
			return out[i].ID < out[j].ID
		})
	case q.Mode == models.QueryBrowse && q.ExpireSort != 0:
		sort.SliceStable(out, func(i, j int) bool {
			if q.ExpireSort > 0 {
				return out[i].ExpireDate < out[j].ExpireDate
			}
			return out[i].ExpireDate > out[j].ExpireDate
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) MarkRequested(_ context.Context, id string, req models.RequestFields) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok || l.FoodStatus != models.StatusAvailable || l.DonatorEmail == req.RequesterEmail {
		return false, nil
	}
	l.FoodStatus = models.StatusRequested
	l.RequesterEmail = req.RequesterEmail
	l.RequestDate = req.RequestDate
	l.RequesterNote = req.RequesterNote
	return true, nil
}

func (s *Store) ClearRequest(_ context.Context, id, actorEmail string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok || l.FoodStatus != models.StatusRequested {
		return false, nil
	}
	if l.RequesterEmail != actorEmail && l.DonatorEmail != actorEmail {
		return false, nil
	}
	l.FoodStatus = models.StatusAvailable
	l.RequesterEmail = ""
	l.RequestDate = ""
	l.RequesterNote = ""
	return true, nil
}

func (s *Store) Update(_ context.Context, id, donorEmail string, patch models.ListingPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok || l.DonatorEmail != donorEmail {
		return false, nil
	}
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&l.FoodName, patch.FoodName)
	apply(&l.FoodImage, patch.FoodImage)
	apply(&l.FoodQuantity, patch.FoodQuantity)
	apply(&l.PickupLocation, patch.PickupLocation)
	apply(&l.ExpireDate, patch.ExpireDate)
	apply(&l.AdditionalNotes, patch.AdditionalNotes)
	apply(&l.DonatorName, patch.DonatorName)
	apply(&l.DonatorPhotoURL, patch.DonatorPhotoURL)
	if patch.QuantityValue != nil {
		v := *patch.QuantityValue
		l.QuantityValue = &v
	} else if patch.ClearQuantityValue {
		l.QuantityValue = nil
	}
	return true, nil
}

func (s *Store) Delete(_ context.Context, id, donorEmail string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok || l.DonatorEmail != donorEmail {
		return false, nil
	}
	delete(s.listings, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

func matches(l *models.Listing, q models.ListingQuery) bool {
	switch q.Mode {
	case models.QueryFeatured:
		return l.FoodStatus == models.StatusAvailable
	case models.QueryDonor:
		return l.DonatorEmail == q.Email
	case models.QueryRequester:
		return l.RequesterEmail == q.Email
	}
	if l.FoodStatus != models.StatusAvailable {
		return false
	}
	return q.Search == "" || strings.Contains(strings.ToLower(l.FoodName), strings.ToLower(q.Search))
}

func clone(l *models.Listing) *models.Listing {
	c := *l
	if l.QuantityValue != nil {
		v := *l.QuantityValue
		c.QuantityValue = &v
	}
	return &c
}
