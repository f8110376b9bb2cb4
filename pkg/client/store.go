package client

import (
	"context"
	"sort"
	"sync"

	"healthtracker/internal/models"
)

// TrackAPI is the part of Client the store needs.
type TrackAPI interface {
	ListTracks(ctx context.Context) ([]models.TrackResponse, error)
	UpsertTrack(ctx context.Context, date string, in models.TrackInput) (*models.TrackResponse, error)
	DeleteTrack(ctx context.Context, date string) error
}

// TrackStore caches the caller's tracks after one Load and keeps the cache
// in step with writes made through it. Listeners get a snapshot after every change.
type TrackStore struct {
	api TrackAPI

	mu        sync.RWMutex
	tracks    []models.TrackResponse
	listeners map[int]func([]models.TrackResponse)
	nextID    int
}

// NewTrackStore returns an empty store backed by api.
func NewTrackStore(api TrackAPI) *TrackStore {
	return &TrackStore{
		api:       api,
		tracks:    []models.TrackResponse{},
		listeners: make(map[int]func([]models.TrackResponse)),
	}
}

// Load fetches the full list and replaces the cache.
func (s *TrackStore) Load(ctx context.Context) error {
	tracks, err := s.api.ListTracks(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tracks = append([]models.TrackResponse{}, tracks...)
	sortByDateDesc(s.tracks)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Tracks returns a copy of every cached track, newest date first.
func (s *TrackStore) Tracks() []models.TrackResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.TrackResponse{}, s.tracks...)
}

// Filter returns the cached tracks whose date equals date. An empty date
// returns everything.
func (s *TrackStore) Filter(date string) []models.TrackResponse {
	if date == "" {
		return s.Tracks()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.TrackResponse{}
	for _, t := range s.tracks {
		if t.Date == date {
			out = append(out, t)
		}
	}
	return out
}

// Upsert writes through the API and merges the stored record into the cache.
func (s *TrackStore) Upsert(ctx context.Context, date string, in models.TrackInput) (*models.TrackResponse, error) {
	saved, err := s.api.UpsertTrack(ctx, date, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	replaced := false
	for i := range s.tracks {
		if s.tracks[i].Date == saved.Date {
			s.tracks[i] = *saved
			replaced = true
			break
		}
	}
	if !replaced {
		s.tracks = append(s.tracks, *saved)
	}
	sortByDateDesc(s.tracks)
	s.mu.Unlock()

	s.notify()
	return saved, nil
}

// Delete removes the day through the API, then from the cache.
func (s *TrackStore) Delete(ctx context.Context, date string) error {
	if err := s.api.DeleteTrack(ctx, date); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.tracks[:0]
	for _, t := range s.tracks {
		if t.Date != date {
			kept = append(kept, t)
		}
	}
	s.tracks = kept
	s.mu.Unlock()

	s.notify()
	return nil
}

// Subscribe registers fn to receive a snapshot after each change. The
// returned func removes it.
func (s *TrackStore) Subscribe(fn func([]models.TrackResponse)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// notify runs outside the lock so listeners may call back into the store.
func (s *TrackStore) notify() {
	s.mu.RLock()
	snapshot := append([]models.TrackResponse{}, s.tracks...)
	fns := make([]func([]models.TrackResponse), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

func sortByDateDesc(tracks []models.TrackResponse) {
	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].Date > tracks[j].Date })
}
