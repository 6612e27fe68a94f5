package memory

import (
	"context"
	"testing"

	"github.com/bitesplus/bites-plus-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rank(v float64) *float64 { return &v }

func seed(t *testing.T, s *Store, listings ...models.Listing) {
	t.Helper()
	for i := range listings {
		require.NoError(t, s.Insert(context.Background(), &listings[i]))
	}
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	s := New()
	l := models.Listing{ID: "a", FoodStatus: models.StatusAvailable}
	require.NoError(t, s.Insert(context.Background(), &l))
	assert.ErrorIs(t, s.Insert(context.Background(), &l), ErrDuplicateID)
}

func TestFindReturnsCopies(t *testing.T) {
	s := New()
	seed(t, s, models.Listing{ID: "a", FoodName: "Rice", FoodStatus: models.StatusAvailable, QuantityValue: rank(1)})

	got, err := s.FindByID(context.Background(), "a")
	require.NoError(t, err)
	got.FoodName = "changed"
	*got.QuantityValue = 99

	again, err := s.FindByID(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Rice", again.FoodName)
	assert.Equal(t, 1.0, *again.QuantityValue)

	missing, err := s.FindByID(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindFeaturedRanksMissingLast(t *testing.T) {
	s := New()
	seed(t, s,
		models.Listing{ID: "c", FoodStatus: models.StatusAvailable},
		models.Listing{ID: "b", FoodStatus: models.StatusAvailable, QuantityValue: rank(2)},
		models.Listing{ID: "a", FoodStatus: models.StatusAvailable, QuantityValue: rank(2)},
		models.Listing{ID: "d", FoodStatus: models.StatusAvailable, QuantityValue: rank(5)},
		models.Listing{ID: "e", FoodStatus: models.StatusRequested, QuantityValue: rank(50)},
	)

	got, err := s.Find(context.Background(), models.ListingQuery{Mode: models.QueryFeatured, Limit: 3})
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i := range got {
		ids[i] = got[i].ID
	}
	assert.Equal(t, []string{"d", "a", "b"}, ids)
}

func TestConditionalMutations(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s, models.Listing{ID: "a", FoodStatus: models.StatusAvailable, DonatorEmail: "d@x.com"})

	ok, err := s.MarkRequested(ctx, "a", models.RequestFields{RequesterEmail: "d@x.com", RequestDate: "t"})
	require.NoError(t, err)
	assert.False(t, ok, "donor cannot request own listing")

	ok, err = s.MarkRequested(ctx, "a", models.RequestFields{RequesterEmail: "r@x.com", RequestDate: "t"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.MarkRequested(ctx, "a", models.RequestFields{RequesterEmail: "s@x.com", RequestDate: "t"})
	require.NoError(t, err)
	assert.False(t, ok, "already requested")

	ok, err = s.ClearRequest(ctx, "a", "s@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.ClearRequest(ctx, "a", "r@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ := s.FindByID(ctx, "a")
	assert.Equal(t, models.StatusAvailable, got.FoodStatus)
	assert.False(t, got.HasRequest())

	name := "Bread"
	ok, err = s.Update(ctx, "a", "r@x.com", models.ListingPatch{FoodName: &name})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Update(ctx, "a", "d@x.com", models.ListingPatch{FoodName: &name, QuantityValue: rank(4)})
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ = s.FindByID(ctx, "a")
	assert.Equal(t, "Bread", got.FoodName)
	assert.Equal(t, 4.0, *got.QuantityValue)

	ok, err = s.Update(ctx, "a", "d@x.com", models.ListingPatch{ClearQuantityValue: true})
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ = s.FindByID(ctx, "a")
	assert.Nil(t, got.QuantityValue)

	ok, err = s.Delete(ctx, "a", "r@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, "a", "d@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := s.Find(ctx, models.ListingQuery{Mode: models.QueryBrowse})
	require.NoError(t, err)
	assert.Empty(t, all)
}
