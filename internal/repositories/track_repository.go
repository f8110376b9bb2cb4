package repositories

import (
	"context"

	"healthtracker/internal/models"
)

// TrackRepository defines the interface for per-day track data access.
// Every method is scoped to a single owner.
type TrackRepository interface {
	// ListByUser returns all tracks of a user ordered by date descending.
	ListByUser(ctx context.Context, userID string) ([]models.Track, error)
	// GetByDate returns the user's track for date, or an error wrapping
	// ErrNotFound.
	GetByDate(ctx context.Context, userID, date string) (*models.Track, error)
	// Upsert inserts the track or replaces the metrics of the existing track
	// for (UserID, Date) in a single storage operation. On return track holds
	// the stored row.
	Upsert(ctx context.Context, track *models.Track) error
	// DeleteByDate removes the user's track for date. Missing tracks are not an error.
	DeleteByDate(ctx context.Context, userID, date string) error
}
