package application

import (
	"context"
	"time"

	"spportal/logging"
)

// ProbeMonitor re-checks portal availability on a fixed interval and trims
// probe history past its retention.
type ProbeMonitor struct {
	service   *AvailabilityService
	interval  time.Duration
	retention time.Duration
	logger    *logging.Logger
}

// NewProbeMonitor creates a monitor. A non-positive interval disables it.
func NewProbeMonitor(service *AvailabilityService, interval time.Duration) *ProbeMonitor {
	return &ProbeMonitor{
		service:  service,
		interval: interval,
		logger:   logging.Default().WithComponent("probe_monitor"),
	}
}

// WithRetention makes every tick prune records older than retention.
func (m *ProbeMonitor) WithRetention(retention time.Duration) *ProbeMonitor {
	m.retention = retention
	return m
}

// Run probes once per interval until ctx is cancelled. Each probe is bounded by
// the interval so a hung portal cannot stack up checks.
func (m *ProbeMonitor) Run(ctx context.Context) {
	if m.interval <= 0 {
		m.logger.Info("Probe monitor disabled")
		return
	}
	m.logger.Info("Probe monitor started", "interval", m.interval.String(), "retention", m.retention.String())

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Probe monitor stopped")
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *ProbeMonitor) tick(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	result := m.service.Check(probeCtx)
	if !result.Success {
		m.logger.Debug("Scheduled probe failed", "error_code", result.ErrorCode, "error_message", result.ErrorMessage)
	}
	if _, err := m.service.PruneHistory(probeCtx, m.retention); err != nil {
		m.logger.Warn("Failed to prune probe history", "error", err)
	}
}
