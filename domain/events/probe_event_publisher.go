package events

// ProbeEventPublisher defines the interface for publishing availability events.
type ProbeEventPublisher interface {
	PublishProbeCompleted(event ProbeCompletedEvent)
	PublishAvailabilityChanged(event AvailabilityChangedEvent)
}
