// Package pgstore keeps listings in PostgreSQL through GORM.
package pgstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bitesplus/bites-plus-server/internal/config"
	"github.com/bitesplus/bites-plus-server/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type listingRow struct {
	ID              string   `gorm:"type:varchar(24);primaryKey"`
	FoodName        string   `gorm:"size:200;not null"`
	FoodImage       string   `gorm:"size:2048"`
	FoodQuantity    string   `gorm:"size:50;not null"`
	QuantityValue   *float64 `gorm:"index:idx_listings_status_quantity,priority:2"`
	PickupLocation  string   `gorm:"size:300"`
	FoodStatus      string   `gorm:"size:20;not null;index:idx_listings_status_expire,priority:1;index:idx_listings_status_quantity,priority:1"`
	ExpireDate      string   `gorm:"size:40;index:idx_listings_status_expire,priority:2"`
	AdditionalNotes string   `gorm:"type:text"`
	DonatorEmail    string   `gorm:"size:254;not null;index"`
	DonatorName     string   `gorm:"size:200"`
	DonatorUID      string   `gorm:"size:128"`
	DonatorPhotoURL string   `gorm:"size:2048"`
	RequesterEmail  *string  `gorm:"size:254;index"`
	RequestDate     *string  `gorm:"size:40"`
	RequesterNote   *string  `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (listingRow) TableName() string { return "listings" }

var patchColumns = map[string]string{
	"foodName":          "food_name",
	"foodImage":         "food_image",
	"foodQuantity":      "food_quantity",
	"foodQuantityValue": "quantity_value",
	"pickupLocation":    "pickup_location",
	"expireDate":        "expire_date",
	"additionalNotes":   "additional_notes",
	"donatorName":       "donator_name",
	"donatorPhotoURL":   "donator_photo_url",
}

type Store struct {
	db *gorm.DB
}

// Connect opens the database, sizes the pool and migrates the schema.
func Connect(cfg *config.Config) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	s := New(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	slog.Info("database connected")
	return s, nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate runs AutoMigrate for the listing and log tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&listingRow{}, &models.SystemLog{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, l *models.Listing) error {
	row := toRow(l)
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	var rows []listingRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	l := rows[0].toListing()
	return &l, nil
}

func (s *Store) Find(ctx context.Context, q models.ListingQuery) ([]models.Listing, error) {
	tx := s.db.WithContext(ctx).Model(&listingRow{})
	switch q.Mode {
	case models.QueryFeatured:
		tx = tx.Where("food_status = ?", string(models.StatusAvailable)).
			Order("quantity_value DESC NULLS LAST, id")
	case models.QueryDonor:
		tx = tx.Where("donator_email = ?", q.Email).Order("id")
	case models.QueryRequester:
		tx = tx.Where("requester_email = ?", q.Email).Order("id")
	default:
		tx = tx.Where("food_status = ?", string(models.StatusAvailable))
		if q.Search != "" {
			tx = tx.Where("food_name ILIKE ?", "%"+escapeLike(q.Search)+"%")
		}
		switch {
		case q.ExpireSort > 0:
			tx = tx.Order("expire_date ASC, id")
		case q.ExpireSort < 0:
			tx = tx.Order("expire_date DESC, id")
		default:
			tx = tx.Order("id")
		}
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []listingRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Listing, len(rows))
	for i := range rows {
		out[i] = rows[i].toListing()
	}
	return out, nil
}

func (s *Store) MarkRequested(ctx context.Context, id string, req models.RequestFields) (bool, error) {
	res := s.db.WithContext(ctx).Model(&listingRow{}).
		Where("id = ? AND food_status = ? AND donator_email <> ?", id, string(models.StatusAvailable), req.RequesterEmail).
		Updates(map[string]interface{}{
			"food_status":     string(models.StatusRequested),
			"requester_email": req.RequesterEmail,
			"request_date":    req.RequestDate,
			"requester_note":  req.RequesterNote,
		})
	return res.RowsAffected > 0, res.Error
}

func (s *Store) ClearRequest(ctx context.Context, id, actorEmail string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&listingRow{}).
		Where("id = ? AND food_status = ? AND (requester_email = ? OR donator_email = ?)",
			id, string(models.StatusRequested), actorEmail, actorEmail).
		Updates(map[string]interface{}{
			"food_status":     string(models.StatusAvailable),
			"requester_email": nil,
			"request_date":    nil,
			"requester_note":  nil,
		})
	return res.RowsAffected > 0, res.Error
}

func (s *Store) Update(ctx context.Context, id, donorEmail string, patch models.ListingPatch) (bool, error) {
	updates := make(map[string]interface{})
	for key, v := range patch.Fields() {
		col, ok := patchColumns[key]
		if !ok {
			return false, fmt.Errorf("unknown listing field %q", key)
		}
		updates[col] = v
	}
	if patch.ClearQuantityValue {
		updates["quantity_value"] = nil
	}
	if len(updates) == 0 {
		return false, fmt.Errorf("empty listing update")
	}
	res := s.db.WithContext(ctx).Model(&listingRow{}).
		Where("id = ? AND donator_email = ?", id, donorEmail).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (s *Store) Delete(ctx context.Context, id, donorEmail string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("id = ? AND donator_email = ?", id, donorEmail).
		Delete(&listingRow{})
	return res.RowsAffected > 0, res.Error
}

// InsertLogs stores a batch of log records.
func (s *Store) InsertLogs(ctx context.Context, entries []models.SystemLog) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(entries, 50).Error
}

// DeleteLogsBefore removes log records older than cutoff.
func (s *Store) DeleteLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return res.RowsAffected, res.Error
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRow(l *models.Listing) listingRow {
	return listingRow{
		ID:              l.ID,
		FoodName:        l.FoodName,
		FoodImage:       l.FoodImage,
		FoodQuantity:    l.FoodQuantity,
		QuantityValue:   l.QuantityValue,
		PickupLocation:  l.PickupLocation,
		FoodStatus:      string(l.FoodStatus),
		ExpireDate:      l.ExpireDate,
		AdditionalNotes: l.AdditionalNotes,
		DonatorEmail:    l.DonatorEmail,
		DonatorName:     l.DonatorName,
		DonatorUID:      l.DonatorUID,
		DonatorPhotoURL: l.DonatorPhotoURL,
	}
}

func (r *listingRow) toListing() models.Listing {
	return models.Listing{
		ID:              r.ID,
		FoodName:        r.FoodName,
		FoodImage:       r.FoodImage,
		FoodQuantity:    r.FoodQuantity,
		QuantityValue:   r.QuantityValue,
		PickupLocation:  r.PickupLocation,
		FoodStatus:      models.ListingStatus(r.FoodStatus),
		ExpireDate:      r.ExpireDate,
		AdditionalNotes: r.AdditionalNotes,
		DonatorEmail:    r.DonatorEmail,
		DonatorName:     r.DonatorName,
		DonatorUID:      r.DonatorUID,
		DonatorPhotoURL: r.DonatorPhotoURL,
		RequesterEmail:  deref(r.RequesterEmail),
		RequestDate:     deref(r.RequestDate),
		RequesterNote:   deref(r.RequesterNote),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
