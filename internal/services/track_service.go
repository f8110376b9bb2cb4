package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"healthtracker/internal/models"
	"healthtracker/internal/repositories"
)

// EventPublisher delivers track change events to a message broker.
type EventPublisher interface {
	PublishJSON(payload interface{}) error
}

// TrackCache caches a user's full track list. Set must discard the list when
// Invalidate ran after the matching Version call.
type TrackCache interface {
	Get(ctx context.Context, userID string) ([]models.TrackResponse, bool, error)
	Version(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, version int64, tracks []models.TrackResponse) error
	Invalidate(ctx context.Context, userID string) error
}

// TrackService handles business logic related to daily health tracks.
type TrackService struct {
	repo      repositories.TrackRepository
	publisher EventPublisher // optional
	cache     TrackCache     // optional
}

// NewTrackService creates a new TrackService. publisher and cache may be nil.
func NewTrackService(repo repositories.TrackRepository, publisher EventPublisher, cache TrackCache) *TrackService {
	return &TrackService{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
	}
}

// ListTracks returns every track of the user, newest date first.
func (s *TrackService) ListTracks(ctx context.Context, userID string) ([]models.TrackResponse, error) {
	var version int64
	fill := false
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			log.Printf("Track cache read failed for user %s: %v", userID, err)
		} else if ok {
			return cached, nil
		}
		// The generation must be read before storage.
		if version, err = s.cache.Version(ctx, userID); err != nil {
			log.Printf("Track cache version read failed for user %s: %v", userID, err)
		} else {
			fill = true
		}
	}

	tracks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := models.NewTrackResponses(tracks)

	if fill {
		if err := s.cache.Set(ctx, userID, version, resp); err != nil {
			log.Printf("Track cache write failed for user %s: %v", userID, err)
		}
	}
	return resp, nil
}

// GetTracksForDate returns zero or one track for the given day. A missing
// track is an empty result, not an error.
func (s *TrackService) GetTracksForDate(ctx context.Context, userID, date string) ([]models.TrackResponse, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	track, err := s.repo.GetByDate(ctx, userID, day)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return []models.TrackResponse{}, nil
		}
		return nil, err
	}
	return []models.TrackResponse{models.NewTrackResponse(track)}, nil
}

// UpsertTrack creates the user's track for the day or replaces all four of
// its metrics with in. Omitted metrics are stored as zero.
func (s *TrackService) UpsertTrack(ctx context.Context, userID, date string, in models.TrackInput) (*models.TrackResponse, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	if in.Steps < 0 || in.CaloriesBurned < 0 || in.DistanceCovered < 0 || in.Weight < 0 {
		return nil, fmt.Errorf("%w: metrics must not be negative", ErrValidation)
	}

	track := &models.Track{UserID: userID, Date: day}
	track.Apply(in)
	if err := s.repo.Upsert(ctx, track); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, models.EventTrackUpserted, userID, day)
	resp := models.NewTrackResponse(track)
	return &resp, nil
}

// DeleteTrack removes the user's track for the day. Deleting a day without a
// track succeeds.
func (s *TrackService) DeleteTrack(ctx context.Context, userID, date string) error {
	day, err := parseDate(date)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByDate(ctx, userID, day); err != nil {
		return err
	}

	s.afterWrite(ctx, models.EventTrackDeleted, userID, day)
	return nil
}

// afterWrite drops the cached list and announces the change. Failures are
// logged only; the write has already been committed.
func (s *TrackService) afterWrite(ctx context.Context, event, userID, date string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			log.Printf("Track cache invalidation failed for user %s: %v", userID, err)
		}
	}

	if s.publisher == nil {
		return
	}
	msg := models.TrackEvent{Event: event, UserID: userID, Date: date, At: time.Now().UTC()}
	if err := s.publisher.PublishJSON(msg); err != nil {
		log.Printf("Warning: Failed to publish %s event for %s: %v", event, date, err)
	}
}

func parseDate(date string) (string, error) {
	day, err := models.ParseDate(date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return day, nil
}
