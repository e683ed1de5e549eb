package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spportal/domain/events"
	"spportal/domain/portal"
)

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(event, data string) {
	m.Called(event, data)
}

func TestNotificationEventHandlers_ProbeCompleted(t *testing.T) {
	// Arrange
	broadcaster := &MockBroadcaster{}
	var payload string
	broadcaster.On("Broadcast", EventProbe, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { payload = args.String(1) }).
		Return()

	eventBus := NewProbeEventBus()
	NewNotificationEventHandlers(broadcaster).RegisterHandlers(eventBus)

	// Act
	eventBus.PublishProbeCompleted(events.ProbeCompletedEvent{
		Record: portal.ProbeRecord{
			ID:        "p1",
			Endpoint:  "https://contoso.sharepoint.com",
			Success:   true,
			Duration:  1200 * time.Millisecond,
			CheckedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		},
	})
	eventBus.Wait()

	// Assert
	broadcaster.AssertExpectations(t)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, "p1", decoded["id"])
	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, float64(1200), decoded["duration_ms"])
}

func TestNotificationEventHandlers_AvailabilityChanged(t *testing.T) {
	broadcaster := &MockBroadcaster{}
	var payload string
	broadcaster.On("Broadcast", EventAvailability, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { payload = args.String(1) }).
		Return()

	eventBus := NewProbeEventBus()
	NewNotificationEventHandlers(broadcaster).RegisterHandlers(eventBus)

	eventBus.PublishAvailabilityChanged(events.AvailabilityChangedEvent{
		Endpoint:  "https://contoso.sharepoint.com",
		Available: false,
		Record:    portal.ProbeRecord{ID: "p2", ErrorCode: -1, ErrorMessage: "portal is unavailable"},
	})
	eventBus.Wait()

	broadcaster.AssertExpectations(t)
	assert.Contains(t, payload, `"available":false`)
	assert.Contains(t, payload, `"error_message":"portal is unavailable"`)
}
