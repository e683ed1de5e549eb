package spclient

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"spportal/domain/contracts"
	"spportal/domain/portal"
)

// TransportMetrics counts execute cycles and the objects loaded through them.
type TransportMetrics struct {
	cyclesTotal   *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	requestsTotal *prometheus.CounterVec
}

// NewTransportMetrics creates the collectors and registers them with reg.
func NewTransportMetrics(reg prometheus.Registerer) (*TransportMetrics, error) {
	m := &TransportMetrics{
		cyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spportal",
				Subsystem: "transport",
				Name:      "execute_cycles_total",
				Help:      "Total number of portal execute cycles by outcome",
			},
			[]string{"outcome"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "spportal",
				Subsystem: "transport",
				Name:      "execute_cycle_duration_seconds",
				Help:      "Duration of portal execute cycles",
				Buckets:   prometheus.DefBuckets,
			},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spportal",
				Subsystem: "transport",
				Name:      "load_requests_total",
				Help:      "Total number of staged load requests sent by kind",
			},
			[]string{"kind"},
		),
	}

	for _, collector := range []prometheus.Collector{m.cyclesTotal, m.cycleDuration, m.requestsTotal} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Instrument wraps next so every execute cycle is measured.
func Instrument(next contracts.PortalTransport, m *TransportMetrics) contracts.PortalTransport {
	if m == nil {
		return next
	}
	return &instrumentedTransport{next: next, metrics: m}
}

type instrumentedTransport struct {
	next    contracts.PortalTransport
	metrics *TransportMetrics
}

func (t *instrumentedTransport) Execute(ctx context.Context, requests []portal.LoadRequest) ([]portal.LoadResult, error) {
	for _, req := range requests {
		t.metrics.requestsTotal.WithLabelValues(string(req.Kind)).Inc()
	}

	start := time.Now()
	results, err := t.next.Execute(ctx, requests)
	t.metrics.cycleDuration.Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	t.metrics.cyclesTotal.WithLabelValues(outcome).Inc()
	return results, err
}
