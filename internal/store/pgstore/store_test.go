package pgstore

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bitesplus/bites-plus-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return New(db), mock
}

var listingColumns = []string{
	"id", "food_name", "food_image", "food_quantity", "quantity_value", "pickup_location",
	"food_status", "expire_date", "additional_notes", "donator_email", "donator_name",
	"donator_uid", "donator_photo_url", "requester_email", "request_date", "requester_note",
}

func TestFindFeaturedQuery(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "listings" WHERE food_status = \$1 ORDER BY quantity_value DESC NULLS LAST, id LIMIT \$2`).
		WithArgs("Available", 6).
		WillReturnRows(sqlmock.NewRows(listingColumns).
			AddRow("65a000000000000000000002", "Rice", "", "10kg", 10.0, "", "Available", "2025-01-01", "", "d@x.com", "", "", "", nil, nil, nil).
			AddRow("65a000000000000000000001", "Bread", "", "some", nil, "", "Available", "2025-01-01", "", "d@x.com", "", "", "", nil, nil, nil))

	got, err := s.Find(context.Background(), models.ListingQuery{Mode: models.QueryFeatured, Limit: 6})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Rice", got[0].FoodName)
	require.NotNil(t, got[0].QuantityValue)
	assert.Equal(t, 10.0, *got[0].QuantityValue)
	assert.Nil(t, got[1].QuantityValue)
	assert.False(t, got[1].HasRequest())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBrowseEscapesSearch(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "listings" WHERE food_status = $1 AND food_name ILIKE $2 ORDER BY expire_date DESC, id`)).
		WithArgs("Available", `%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows(listingColumns))

	got, err := s.Find(context.Background(), models.ListingQuery{Mode: models.QueryBrowse, Search: "50%_off", ExpireSort: -1})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRequestedIsConditional(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "listings" SET .* WHERE id = \$\d+ AND food_status = \$\d+ AND donator_email <> \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.MarkRequested(context.Background(), "65a000000000000000000001", models.RequestFields{
		RequesterEmail: "r@x.com", RequestDate: "2024-12-30T10:00:00Z",
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearRequestNullsRequesterColumns(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "listings" SET .*"requester_email"=.* WHERE id = \$\d+ AND food_status = \$\d+ AND \(requester_email = \$\d+ OR donator_email = \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := s.ClearRequest(context.Background(), "65a000000000000000000001", "r@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRejectsEmptyPatch(t *testing.T) {
	s, _ := newMockStore(t)
	_, err := s.Update(context.Background(), "65a000000000000000000001", "d@x.com", models.ListingPatch{})
	assert.Error(t, err)
}

func TestDeleteByOwner(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM "listings" WHERE id = \$1 AND donator_email = \$2`).
		WithArgs("65a000000000000000000001", "d@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := s.Delete(context.Background(), "65a000000000000000000001", "d@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
}
