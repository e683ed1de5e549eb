package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spportal/domain/events"
	"spportal/domain/portal"
	"spportal/test/mocks"
)

func TestAvailabilityService_Check_RecordsResult(t *testing.T) {
	// Arrange
	reader := &mocks.MockPortalReader{}
	history := &mocks.MockProbeHistoryRepository{}
	reader.On("ProbeAvailability", mock.Anything).Return(portal.Failed(-1, "portal is unavailable", nil))
	reader.On("Endpoint").Return(testEndpoint)
	history.On("Record", mock.Anything, mock.MatchedBy(func(r portal.ProbeRecord) bool {
		return r.ID != "" && r.Endpoint == testEndpoint && !r.Success && r.ErrorCode == -1 && r.Duration == 250*time.Millisecond
	})).Return(nil)

	service := NewAvailabilityService(reader, history)
	clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time {
		now := clock
		clock = clock.Add(250 * time.Millisecond)
		return now
	}

	// Act
	result := service.Check(context.Background())

	// Assert
	assert.False(t, result.Success)
	assert.Equal(t, "portal is unavailable", result.ErrorMessage)
	reader.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestAvailabilityService_Check_RecordFailureKeepsResult(t *testing.T) {
	reader := &mocks.MockPortalReader{}
	history := &mocks.MockProbeHistoryRepository{}
	reader.On("ProbeAvailability", mock.Anything).Return(portal.Succeeded())
	reader.On("Endpoint").Return(testEndpoint)
	history.On("Record", mock.Anything, mock.Anything).Return(errors.New("database is locked"))

	result := NewAvailabilityService(reader, history).Check(context.Background())

	assert.True(t, result.Success)
	history.AssertExpectations(t)
}

func TestAvailabilityService_WithoutHistory(t *testing.T) {
	reader := &mocks.MockPortalReader{}
	reader.On("ProbeAvailability", mock.Anything).Return(portal.Succeeded())
	service := NewAvailabilityService(reader, nil)

	result := service.Check(context.Background())
	records, err := service.History(context.Background(), 10)

	assert.True(t, result.Success)
	require.NoError(t, err)
	assert.Empty(t, records)
	reader.AssertNotCalled(t, "Endpoint")
}

func TestAvailabilityService_History(t *testing.T) {
	reader := &mocks.MockPortalReader{}
	history := &mocks.MockProbeHistoryRepository{}
	expected := []portal.ProbeRecord{{ID: "b"}, {ID: "a"}}
	history.On("Recent", mock.Anything, 2).Return(expected, nil)

	records, err := NewAvailabilityService(reader, history).History(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, expected, records)
}

func TestAvailabilityService_PublishesTransitions(t *testing.T) {
	// Arrange
	reader := &mocks.MockPortalReader{}
	publisher := &mocks.MockProbeEventPublisher{}
	reader.On("Endpoint").Return(testEndpoint)
	reader.On("ProbeAvailability", mock.Anything).Return(portal.Succeeded()).Twice()
	reader.On("ProbeAvailability", mock.Anything).Return(portal.Failed(-1, "portal is unavailable", nil)).Once()
	publisher.On("PublishProbeCompleted", mock.Anything).Return()
	publisher.On("PublishAvailabilityChanged", mock.Anything).Return()

	service := NewAvailabilityService(reader, nil).WithPublisher(publisher)

	// Act
	for i := 0; i < 3; i++ {
		service.Check(context.Background())
	}

	// Assert: up (first probe), up (no change), down (change)
	publisher.AssertNumberOfCalls(t, "PublishProbeCompleted", 3)
	publisher.AssertNumberOfCalls(t, "PublishAvailabilityChanged", 2)

	changes := []bool{}
	for _, call := range publisher.Calls {
		if call.Method == "PublishAvailabilityChanged" {
			changes = append(changes, call.Arguments.Get(0).(events.AvailabilityChangedEvent).Available)
		}
	}
	assert.Equal(t, []bool{true, false}, changes)
}

func TestAvailabilityService_PruneHistory(t *testing.T) {
	now := time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC)

	t.Run("deletes before retention cutoff", func(t *testing.T) {
		history := &mocks.MockProbeHistoryRepository{}
		history.On("Prune", mock.Anything, now.Add(-24*time.Hour)).Return(int64(4), nil)
		service := NewAvailabilityService(&mocks.MockPortalReader{}, history)
		service.now = func() time.Time { return now }

		removed, err := service.PruneHistory(context.Background(), 24*time.Hour)

		require.NoError(t, err)
		assert.Equal(t, int64(4), removed)
		history.AssertExpectations(t)
	})

	t.Run("zero retention keeps everything", func(t *testing.T) {
		history := &mocks.MockProbeHistoryRepository{}
		service := NewAvailabilityService(&mocks.MockPortalReader{}, history)

		removed, err := service.PruneHistory(context.Background(), 0)

		require.NoError(t, err)
		assert.Zero(t, removed)
		history.AssertNotCalled(t, "Prune", mock.Anything, mock.Anything)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		history := &mocks.MockProbeHistoryRepository{}
		history.On("Prune", mock.Anything, mock.Anything).Return(int64(0), errors.New("database is locked"))
		service := NewAvailabilityService(&mocks.MockPortalReader{}, history)

		_, err := service.PruneHistory(context.Background(), time.Hour)

		assert.EqualError(t, err, "database is locked")
	})
}
