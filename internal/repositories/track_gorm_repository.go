package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthtracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMTrackRepository is a GORM implementation of TrackRepository.
type GORMTrackRepository struct {
	db *gorm.DB
}

// NewGORMTrackRepository creates a new instance of GORMTrackRepository.
func NewGORMTrackRepository(db *gorm.DB) *GORMTrackRepository {
	return &GORMTrackRepository{
		db: db,
	}
}

// ListByUser retrieves all tracks of a user, newest date first.
func (r *GORMTrackRepository) ListByUser(ctx context.Context, userID string) ([]models.Track, error) {
	var tracks []models.Track
	err := r.db.WithContext(ctx).
		Where(map[string]interface{}{"user_id": userID}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true}).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks for user %s: %w", userID, err)
	}
	return tracks, nil
}

// GetByDate retrieves the track of a user for one day.
func (r *GORMTrackRepository) GetByDate(ctx context.Context, userID, date string) (*models.Track, error) {
	var track models.Track
	err := r.db.WithContext(ctx).
		Where(map[string]interface{}{"user_id": userID, "date": date}).
		First(&track).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("track for %s: %w", date, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get track for %s: %w", date, err)
	}
	return &track, nil
}

// Upsert inserts the track, or on a (user_id, date) conflict overwrites the
// four metrics of the existing row. The unique index arbitrates concurrent writers.
func (r *GORMTrackRepository) Upsert(ctx context.Context, track *models.Track) error {
	now := time.Now().UTC()
	if track.ID == "" {
		track.ID = uuid.New().String()
	}
	track.CreatedAt = now
	track.UpdatedAt = now

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"steps", "calories_burned", "distance_covered", "weight", "updated_at",
		}),
	}).Create(track).Error
	if err != nil {
		return fmt.Errorf("failed to upsert track for %s: %w", track.Date, err)
	}

	stored, err := r.GetByDate(ctx, track.UserID, track.Date)
	if err != nil {
		return err
	}
	*track = *stored
	return nil
}

// DeleteByDate deletes the track of a user for one day, if any.
func (r *GORMTrackRepository) DeleteByDate(ctx context.Context, userID, date string) error {
	res := r.db.WithContext(ctx).
		Where(map[string]interface{}{"user_id": userID, "date": date}).
		Delete(&models.Track{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete track for %s: %w", date, res.Error)
	}
	return nil
}
