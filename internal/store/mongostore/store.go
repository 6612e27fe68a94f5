// Package mongostore keeps listings in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bitesplus/bites-plus-server/internal/config"
	"github.com/bitesplus/bites-plus-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const logsCollection = "system_logs"

type Store struct {
	client   *mongo.Client
	listings *mongo.Collection
	logs     *mongo.Collection
}

// Connect opens a client with the stable server API and checks it answers.
func Connect(ctx context.Context, cfg *config.Config) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1).
			SetStrict(true).
			SetDeprecationErrors(true)).
		SetTimeout(cfg.StoreTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(cfg.MongoDB)
	slog.Info("mongo connected", "database", cfg.MongoDB, "collection", cfg.MongoCollection)
	return New(client, db.Collection(cfg.MongoCollection), db.Collection(logsCollection)), nil
}

func New(client *mongo.Client, listings, logs *mongo.Collection) *Store {
	return &Store{client: client, listings: listings, logs: logs}
}

// Migrate prepares the collections: indexes first, then the numeric rank
// for listings stored without one.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.EnsureIndexes(ctx); err != nil {
		return err
	}
	n, err := s.BackfillQuantityValues(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("listing quantities ranked", "updated", n)
	}
	return nil
}

// BackfillQuantityValues derives foodQuantityValue for every listing that
// lacks it and reports how many gained one.
func (s *Store) BackfillQuantityValues(ctx context.Context) (int64, error) {
	res, err := s.listings.UpdateMany(ctx, missingQuantityValue(), quantityBackfill())
	if err != nil {
		return 0, fmt.Errorf("failed to backfill quantity values: %w", err)
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates the indexes the listing queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.listings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "donatorEmail", Value: 1}}},
		{Keys: bson.D{{Key: "requesterEmail", Value: 1}}},
		{Keys: bson.D{{Key: "foodStatus", Value: 1}, {Key: "expireDate", Value: 1}}},
		{Keys: bson.D{{Key: "foodStatus", Value: 1}, {Key: "foodQuantityValue", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create listing indexes: %w", err)
	}
	_, err = s.logs.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "timestamp", Value: 1}}})
	if err != nil {
		return fmt.Errorf("failed to create log indexes: %w", err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, l *models.Listing) error {
	doc, err := fromListing(l)
	if err != nil {
		return err
	}
	_, err = s.listings.InsertOne(ctx, doc)
	return err
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc document
	err = s.listings.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l := doc.toListing()
	return &l, nil
}

func (s *Store) Find(ctx context.Context, q models.ListingQuery) ([]models.Listing, error) {
	filter, opts := compileFind(q)
	cur, err := s.listings.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Listing, 0)
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toListing())
	}
	return out, cur.Err()
}

func (s *Store) MarkRequested(ctx context.Context, id string, req models.RequestFields) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	filter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "foodStatus", Value: string(models.StatusAvailable)},
		{Key: "donatorEmail", Value: bson.D{{Key: "$ne", Value: req.RequesterEmail}}},
	}
	res, err := s.listings.UpdateOne(ctx, filter, requestUpdate(req))
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) ClearRequest(ctx context.Context, id, actorEmail string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	filter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "foodStatus", Value: string(models.StatusRequested)},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "requesterEmail", Value: actorEmail}},
			bson.D{{Key: "donatorEmail", Value: actorEmail}},
		}},
	}
	res, err := s.listings.UpdateOne(ctx, filter, cancelUpdate())
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) Update(ctx context.Context, id, donorEmail string, patch models.ListingPatch) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	update := patchUpdate(patch)
	if len(update) == 0 {
		return false, errors.New("empty listing update")
	}
	filter := bson.D{{Key: "_id", Value: oid}, {Key: "donatorEmail", Value: donorEmail}}
	res, err := s.listings.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) Delete(ctx context.Context, id, donorEmail string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := s.listings.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "donatorEmail", Value: donorEmail}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// InsertLogs stores a batch of log records.
func (s *Store) InsertLogs(ctx context.Context, entries []models.SystemLog) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]interface{}, len(entries))
	for i := range entries {
		docs[i] = entries[i]
	}
	_, err := s.logs.InsertMany(ctx, docs)
	return err
}

// DeleteLogsBefore removes log records older than cutoff.
func (s *Store) DeleteLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.logs.DeleteMany(ctx, bson.D{{Key: "timestamp", Value: bson.D{{Key: "$lt", Value: cutoff}}}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
