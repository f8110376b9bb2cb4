package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"healthtracker/internal/models"

	"github.com/google/uuid"
)

type trackKey struct {
	userID string
	date   string
}

// MockTrackRepository is an in-memory implementation of TrackRepository.
// The map key enforces the one-track-per-user-per-day invariant.
type MockTrackRepository struct {
	tracks map[trackKey]models.Track
	mu     sync.RWMutex
}

// NewMockTrackRepository creates a new instance of MockTrackRepository.
func NewMockTrackRepository() *MockTrackRepository {
	return &MockTrackRepository{
		tracks: make(map[trackKey]models.Track),
	}
}

// ListByUser returns the user's tracks, newest date first.
func (r *MockTrackRepository) ListByUser(_ context.Context, userID string) ([]models.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trackList := make([]models.Track, 0)
	for key, t := range r.tracks {
		if key.userID == userID {
			trackList = append(trackList, t)
		}
	}
	sort.Slice(trackList, func(i, j int) bool { return trackList[i].Date > trackList[j].Date })
	return trackList, nil
}

// GetByDate returns the user's track for date.
func (r *MockTrackRepository) GetByDate(_ context.Context, userID, date string) (*models.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	track, ok := r.tracks[trackKey{userID, date}]
	if !ok {
		return nil, fmt.Errorf("track for %s: %w", date, ErrNotFound)
	}
	return &track, nil
}

// Upsert inserts or replaces the metrics of the user's track for the date.
func (r *MockTrackRepository) Upsert(_ context.Context, track *models.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	key := trackKey{track.UserID, track.Date}
	if existing, ok := r.tracks[key]; ok {
		track.ID = existing.ID
		track.CreatedAt = existing.CreatedAt
	} else {
		if track.ID == "" {
			track.ID = uuid.New().String()
		}
		track.CreatedAt = now
	}
	track.UpdatedAt = now
	r.tracks[key] = *track
	return nil
}

// DeleteByDate removes the user's track for date if present.
func (r *MockTrackRepository) DeleteByDate(_ context.Context, userID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tracks, trackKey{userID, date})
	return nil
}
