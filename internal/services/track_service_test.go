package services_test

import (
	"errors"
	"fmt"
	"testing"

	"healthtracker/internal/models"
	"healthtracker/internal/repositories"
	"healthtracker/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTrackService_ListTracks(t *testing.T) {
	mockRepo := new(MockTrackRepository)
	service := services.NewTrackService(mockRepo, nil, nil)

	stored := []models.Track{
		{ID: "2", UserID: "u1", Date: "2024-01-02", Steps: 20, CaloriesBurned: 2, DistanceCovered: 0.2, Weight: 70.2},
		{ID: "1", UserID: "u1", Date: "2024-01-01", Steps: 10, CaloriesBurned: 1, DistanceCovered: 0.1, Weight: 70.1},
	}
	mockRepo.On("ListByUser", mock.Anything, "u1").Return(stored, nil).Once()

	tracks, err := service.ListTracks(ctx(), "u1")
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, models.TrackResponse{ID: "2", Date: "2024-01-02", Steps: 20, CaloriesBurned: 2, DistanceCovered: 0.2, Weight: 70.2}, tracks[0])
	mockRepo.AssertExpectations(t)

	// Empty list is an empty slice, not nil
	mockRepo.On("ListByUser", mock.Anything, "u2").Return([]models.Track{}, nil).Once()
	tracks, err = service.ListTracks(ctx(), "u2")
	require.NoError(t, err)
	assert.NotNil(t, tracks)
	assert.Empty(t, tracks)

	// Storage failure propagates
	mockRepo.On("ListByUser", mock.Anything, "u3").Return(nil, errors.New("database error")).Once()
	_, err = service.ListTracks(ctx(), "u3")
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

func TestTrackService_GetTracksForDate(t *testing.T) {
	mockRepo := new(MockTrackRepository)
	service := services.NewTrackService(mockRepo, nil, nil)

	mockRepo.On("GetByDate", mock.Anything, "u1", "2024-01-01").
		Return(&models.Track{ID: "1", Date: "2024-01-01", Steps: 5}, nil).Once()
	tracks, err := service.GetTracksForDate(ctx(), "u1", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, 5, tracks[0].Steps)

	mockRepo.On("GetByDate", mock.Anything, "u1", "2024-01-02").
		Return(nil, fmt.Errorf("track: %w", repositories.ErrNotFound)).Once()
	tracks, err = service.GetTracksForDate(ctx(), "u1", "2024-01-02")
	require.NoError(t, err)
	assert.Empty(t, tracks)
	mockRepo.AssertExpectations(t)

	for _, bad := range []string{"", "2024-1-1", "2024-02-30", "yesterday", "2024-01-01T00:00:00Z"} {
		_, err = service.GetTracksForDate(ctx(), "u1", bad)
		assert.ErrorIs(t, err, services.ErrInvalidDate, bad)
	}
}

func TestTrackService_UpsertTrack(t *testing.T) {
	mockRepo := new(MockTrackRepository)
	mockMQ := new(MockPublisher)
	service := services.NewTrackService(mockRepo, mockMQ, nil)

	in := models.TrackInput{Steps: 6000}
	mockRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(tr *models.Track) bool {
		return tr.UserID == "u1" && tr.Date == "2024-01-01" && tr.Steps == 6000 &&
			tr.CaloriesBurned == 0 && tr.DistanceCovered == 0 && tr.Weight == 0
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Track).ID = "track-1"
	}).Return(nil).Once()
	mockMQ.On("PublishJSON", mock.MatchedBy(func(e models.TrackEvent) bool {
		return e.Event == models.EventTrackUpserted && e.UserID == "u1" && e.Date == "2024-01-01"
	})).Return(nil).Once()

	resp, err := service.UpsertTrack(ctx(), "u1", "2024-01-01", in)
	require.NoError(t, err)
	assert.Equal(t, &models.TrackResponse{ID: "track-1", Date: "2024-01-01", Steps: 6000}, resp)
	mockRepo.AssertExpectations(t)
	mockMQ.AssertExpectations(t)

	// Negative metrics are rejected before storage
	_, err = service.UpsertTrack(ctx(), "u1", "2024-01-01", models.TrackInput{Weight: -1})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = service.UpsertTrack(ctx(), "u1", "01/01/2024", in)
	assert.ErrorIs(t, err, services.ErrInvalidDate)
	mockRepo.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestTrackService_PublishFailureDoesNotFailWrite(t *testing.T) {
	mockRepo := new(MockTrackRepository)
	mockMQ := new(MockPublisher)
	service := services.NewTrackService(mockRepo, mockMQ, nil)

	mockRepo.On("DeleteByDate", mock.Anything, "u1", "2024-01-01").Return(nil).Once()
	mockMQ.On("PublishJSON", mock.Anything).Return(errors.New("broker down")).Once()

	err := service.DeleteTrack(ctx(), "u1", "2024-01-01")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockMQ.AssertExpectations(t)
}

func TestTrackService_DeleteTrack(t *testing.T) {
	mockRepo := new(MockTrackRepository)
	service := services.NewTrackService(mockRepo, nil, nil)

	mockRepo.On("DeleteByDate", mock.Anything, "u1", "2024-01-01").Return(nil).Once()
	assert.NoError(t, service.DeleteTrack(ctx(), "u1", "2024-01-01"))

	mockRepo.On("DeleteByDate", mock.Anything, "u1", "2024-01-02").Return(errors.New("database error")).Once()
	assert.Error(t, service.DeleteTrack(ctx(), "u1", "2024-01-02"))

	assert.ErrorIs(t, service.DeleteTrack(ctx(), "u1", "not-a-date"), services.ErrInvalidDate)
	mockRepo.AssertExpectations(t)
}

func TestTrackService_ListUsesCache(t *testing.T) {
	mockRepo := new(MockTrackRepository)
	mockCache := new(MockTrackCache)
	service := services.NewTrackService(mockRepo, nil, mockCache)

	cached := []models.TrackResponse{{ID: "1", Date: "2024-01-01", Steps: 1}}

	// Hit: storage is not touched
	mockCache.On("Get", mock.Anything, "u1").Return(cached, true, nil).Once()
	tracks, err := service.ListTracks(ctx(), "u1")
	require.NoError(t, err)
	assert.Equal(t, cached, tracks)
	mockRepo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)

	// Miss: read through and populate
	stored := []models.Track{{ID: "1", Date: "2024-01-01", Steps: 1}}
	mockCache.On("Get", mock.Anything, "u1").Return(nil, false, nil).Once()
	mockCache.On("Version", mock.Anything, "u1").Return(int64(4), nil).Once()
	mockRepo.On("ListByUser", mock.Anything, "u1").Return(stored, nil).Once()
	mockCache.On("Set", mock.Anything, "u1", int64(4), cached).Return(nil).Once()
	tracks, err = service.ListTracks(ctx(), "u1")
	require.NoError(t, err)
	assert.Equal(t, cached, tracks)

	// Cache errors fall through to storage
	mockCache.On("Get", mock.Anything, "u1").Return(nil, false, errors.New("redis down")).Once()
	mockCache.On("Version", mock.Anything, "u1").Return(int64(4), nil).Once()
	mockRepo.On("ListByUser", mock.Anything, "u1").Return(stored, nil).Once()
	mockCache.On("Set", mock.Anything, "u1", int64(4), cached).Return(errors.New("redis down")).Once()
	tracks, err = service.ListTracks(ctx(), "u1")
	require.NoError(t, err)
	assert.Equal(t, cached, tracks)

	// Without a generation the list is not cached
	mockCache.On("Get", mock.Anything, "u1").Return(nil, false, nil).Once()
	mockCache.On("Version", mock.Anything, "u1").Return(int64(0), errors.New("redis down")).Once()
	mockRepo.On("ListByUser", mock.Anything, "u1").Return(stored, nil).Once()
	tracks, err = service.ListTracks(ctx(), "u1")
	require.NoError(t, err)
	assert.Equal(t, cached, tracks)

	// Writes invalidate
	mockRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Track")).Return(nil).Once()
	mockCache.On("Invalidate", mock.Anything, "u1").Return(nil).Once()
	_, err = service.UpsertTrack(ctx(), "u1", "2024-01-03", models.TrackInput{Steps: 3})
	require.NoError(t, err)

	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}
