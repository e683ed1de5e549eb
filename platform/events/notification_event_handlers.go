package events

import (
	"encoding/json"
	"time"

	"spportal/domain/events"
	"spportal/logging"
)

// Broadcaster pushes named events to connected live clients.
type Broadcaster interface {
	Broadcast(event, data string)
}

// SSE event names.
const (
	EventProbe        = "probe"
	EventAvailability = "availability"
)

type probePayload struct {
	ID           string    `json:"id"`
	Endpoint     string    `json:"endpoint"`
	Success      bool      `json:"success"`
	ErrorCode    int       `json:"error_code"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	CheckedAt    time.Time `json:"checked_at"`
}

type availabilityPayload struct {
	Endpoint  string       `json:"endpoint"`
	Available bool         `json:"available"`
	Probe     probePayload `json:"probe"`
}

// NotificationEventHandlers turns probe events into live client notifications
type NotificationEventHandlers struct {
	broadcaster Broadcaster
	logger      *logging.Logger
}

// NewNotificationEventHandlers creates event handlers for notifications
func NewNotificationEventHandlers(broadcaster Broadcaster) *NotificationEventHandlers {
	return &NotificationEventHandlers{
		broadcaster: broadcaster,
		logger:      logging.Default().WithComponent("notification_events"),
	}
}

// RegisterHandlers registers all notification event handlers with the event bus
func (h *NotificationEventHandlers) RegisterHandlers(eventBus *ProbeEventBus) {
	eventBus.OnProbeCompleted(h.handleProbeCompleted)
	eventBus.OnAvailabilityChanged(h.handleAvailabilityChanged)
}

func (h *NotificationEventHandlers) handleProbeCompleted(event events.ProbeCompletedEvent) {
	h.send(EventProbe, toProbePayload(event))
}

func (h *NotificationEventHandlers) handleAvailabilityChanged(event events.AvailabilityChangedEvent) {
	if event.Available {
		h.logger.Info("Portal is available", "endpoint", event.Endpoint)
	} else {
		h.logger.Warn("Portal became unavailable",
			"endpoint", event.Endpoint,
			"error_code", event.Record.ErrorCode,
			"error_message", event.Record.ErrorMessage)
	}

	h.send(EventAvailability, availabilityPayload{
		Endpoint:  event.Endpoint,
		Available: event.Available,
		Probe:     toProbePayload(events.ProbeCompletedEvent{Record: event.Record}),
	})
}

func (h *NotificationEventHandlers) send(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to encode notification", "event", event, "error", err)
		return
	}
	h.broadcaster.Broadcast(event, string(data))
}

func toProbePayload(event events.ProbeCompletedEvent) probePayload {
	r := event.Record
	return probePayload{
		ID:           r.ID,
		Endpoint:     r.Endpoint,
		Success:      r.Success,
		ErrorCode:    r.ErrorCode,
		ErrorMessage: r.ErrorMessage,
		DurationMs:   r.Duration.Milliseconds(),
		CheckedAt:    r.CheckedAt,
	}
}
