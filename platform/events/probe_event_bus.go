package events

import (
	"sync"

	"spportal/domain/events"
	"spportal/logging"
)

// ProbeEventBus provides type-safe publishing and subscription for availability events
type ProbeEventBus struct {
	mu     sync.RWMutex
	wg     sync.WaitGroup
	logger *logging.Logger

	probeCompletedHandlers      []func(events.ProbeCompletedEvent)
	availabilityChangedHandlers []func(events.AvailabilityChangedEvent)
}

var _ events.ProbeEventPublisher = (*ProbeEventBus)(nil)

// NewProbeEventBus creates a new typed probe event bus
func NewProbeEventBus() *ProbeEventBus {
	return &ProbeEventBus{
		logger: logging.Default().WithComponent("probe_event_bus"),
	}
}

func (bus *ProbeEventBus) OnProbeCompleted(handler func(events.ProbeCompletedEvent)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.probeCompletedHandlers = append(bus.probeCompletedHandlers, handler)
}

func (bus *ProbeEventBus) OnAvailabilityChanged(handler func(events.AvailabilityChangedEvent)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.availabilityChangedHandlers = append(bus.availabilityChangedHandlers, handler)
}

func (bus *ProbeEventBus) PublishProbeCompleted(event events.ProbeCompletedEvent) {
	bus.mu.RLock()
	handlers := append(([]func(events.ProbeCompletedEvent))(nil), bus.probeCompletedHandlers...)
	bus.mu.RUnlock()

	dispatch(bus, "ProbeCompleted", handlers, event, "probe_id", event.Record.ID)
}

func (bus *ProbeEventBus) PublishAvailabilityChanged(event events.AvailabilityChangedEvent) {
	bus.mu.RLock()
	handlers := append(([]func(events.AvailabilityChangedEvent))(nil), bus.availabilityChangedHandlers...)
	bus.mu.RUnlock()

	dispatch(bus, "AvailabilityChanged", handlers, event, "endpoint", event.Endpoint, "available", event.Available)
}

// Wait blocks until every handler started so far has returned.
func (bus *ProbeEventBus) Wait() {
	bus.wg.Wait()
}

// dispatch runs each handler on its own goroutine so publishers never block.
// A panicking handler is logged and does not affect the others.
func dispatch[E any](bus *ProbeEventBus, name string, handlers []func(E), event E, attrs ...any) {
	for _, handler := range handlers {
		bus.wg.Add(1)
		go func(h func(E)) {
			defer bus.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					args := append([]any{"event", name, "panic", r}, attrs...)
					bus.logger.Error("Event handler panicked", args...)
				}
			}()
			h(event)
		}(handler)
	}
}
