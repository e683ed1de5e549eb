package events

import (
	"time"

	"spportal/domain/portal"
)

// ProbeCompletedEvent is raised after every availability probe
type ProbeCompletedEvent struct {
	Record    portal.ProbeRecord
	Timestamp time.Time
}

// AvailabilityChangedEvent is raised when a probe result differs from the previous one.
// The first probe after startup always raises it.
type AvailabilityChangedEvent struct {
	Endpoint  string
	Available bool
	Record    portal.ProbeRecord
	Timestamp time.Time
}
