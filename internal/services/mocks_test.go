package services_test

import (
	"context"

	"healthtracker/internal/models"

	"github.com/stretchr/testify/mock"
)

func ctx() context.Context { return context.Background() }

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockTrackRepository is a mock implementation of repositories.TrackRepository
type MockTrackRepository struct {
	mock.Mock
}

func (m *MockTrackRepository) ListByUser(ctx context.Context, userID string) ([]models.Track, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Track), args.Error(1)
}

func (m *MockTrackRepository) GetByDate(ctx context.Context, userID, date string) (*models.Track, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Track), args.Error(1)
}

func (m *MockTrackRepository) Upsert(ctx context.Context, track *models.Track) error {
	args := m.Called(ctx, track)
	return args.Error(0)
}

func (m *MockTrackRepository) DeleteByDate(ctx context.Context, userID, date string) error {
	args := m.Called(ctx, userID, date)
	return args.Error(0)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(payload interface{}) error {
	args := m.Called(payload)
	return args.Error(0)
}

// MockTrackCache is a mock implementation of services.TrackCache
type MockTrackCache struct {
	mock.Mock
}

func (m *MockTrackCache) Get(ctx context.Context, userID string) ([]models.TrackResponse, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.TrackResponse), args.Bool(1), args.Error(2)
}

func (m *MockTrackCache) Version(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTrackCache) Set(ctx context.Context, userID string, version int64, tracks []models.TrackResponse) error {
	args := m.Called(ctx, userID, version, tracks)
	return args.Error(0)
}

func (m *MockTrackCache) Invalidate(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
