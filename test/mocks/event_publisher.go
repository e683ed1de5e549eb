package mocks

import (
	"github.com/stretchr/testify/mock"

	"spportal/domain/events"
)

// MockProbeEventPublisher implements ProbeEventPublisher for testing
type MockProbeEventPublisher struct {
	mock.Mock
}

func (m *MockProbeEventPublisher) PublishProbeCompleted(event events.ProbeCompletedEvent) {
	m.Called(event)
}

func (m *MockProbeEventPublisher) PublishAvailabilityChanged(event events.AvailabilityChangedEvent) {
	m.Called(event)
}
