package main

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spportal/domain/events"
	"spportal/domain/portal"
	platformevents "spportal/platform/events"
)

func TestShutdown_WaitsForEventHandlers(t *testing.T) {
	// Arrange
	bus := platformevents.NewProbeEventBus()
	var handled atomic.Bool
	bus.OnAvailabilityChanged(func(events.AvailabilityChangedEvent) {
		time.Sleep(50 * time.Millisecond)
		handled.Store(true)
	})

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()
	bus.PublishAvailabilityChanged(events.AvailabilityChangedEvent{
		Endpoint: "https://contoso.sharepoint.com",
		Record:   portal.ProbeRecord{ID: "p1"},
	})

	// Act
	err := shutdown(context.Background(), &http.Server{}, appCancel, bus.Wait)

	// Assert
	require.NoError(t, err)
	assert.True(t, handled.Load(), "shutdown returned before the handler finished")
	assert.ErrorIs(t, appCtx.Err(), context.Canceled)
}
