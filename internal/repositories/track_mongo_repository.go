package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthtracker/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTrackRepository is a MongoDB implementation of TrackRepository.
type MongoTrackRepository struct {
	coll *mongo.Collection
}

// NewMongoTrackRepository creates a repository over the given collection.
func NewMongoTrackRepository(coll *mongo.Collection) *MongoTrackRepository {
	return &MongoTrackRepository{coll: coll}
}

// EnsureIndexes creates the unique compound (user_id, date) index.
func (r *MongoTrackRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create track index: %w", err)
	}
	return nil
}

// ListByUser returns the user's tracks sorted by date descending.
func (r *MongoTrackRepository) ListByUser(ctx context.Context, userID string) ([]models.Track, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks for user %s: %w", userID, err)
	}
	tracks := make([]models.Track, 0)
	if err := cur.All(ctx, &tracks); err != nil {
		return nil, fmt.Errorf("failed to decode tracks for user %s: %w", userID, err)
	}
	return tracks, nil
}

// GetByDate returns the user's track for date.
func (r *MongoTrackRepository) GetByDate(ctx context.Context, userID, date string) (*models.Track, error) {
	var track models.Track
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID, "date": date}).Decode(&track)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("track for %s: %w", date, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get track for %s: %w", date, err)
	}
	return &track, nil
}

// Upsert replaces the metrics of the (user_id, date) document, creating it
// when absent, in one findAndModify.
func (r *MongoTrackRepository) Upsert(ctx context.Context, track *models.Track) error {
	now := time.Now().UTC()
	id := track.ID
	if id == "" {
		id = uuid.New().String()
	}

	filter := bson.M{"user_id": track.UserID, "date": track.Date}
	update := bson.M{
		"$set": bson.M{
			"steps":            track.Steps,
			"calories_burned":  track.CaloriesBurned,
			"distance_covered": track.DistanceCovered,
			"weight":           track.Weight,
			"updated_at":       now,
		},
		"$setOnInsert": bson.M{"_id": id, "created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.Track
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return fmt.Errorf("failed to upsert track for %s: %w", track.Date, err)
	}
	*track = stored
	return nil
}

// DeleteByDate removes the user's track for date if present.
func (r *MongoTrackRepository) DeleteByDate(ctx context.Context, userID, date string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID, "date": date}); err != nil {
		return fmt.Errorf("failed to delete track for %s: %w", date, err)
	}
	return nil
}
