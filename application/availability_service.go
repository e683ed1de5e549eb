package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"spportal/domain/contracts"
	"spportal/domain/events"
	"spportal/domain/portal"
	"spportal/logging"
)

// AvailabilityService runs availability probes on demand and keeps their history.
type AvailabilityService struct {
	reader    PortalReader
	history   contracts.ProbeHistoryRepository
	publisher events.ProbeEventPublisher
	logger    *logging.Logger
	now       func() time.Time

	mu   sync.Mutex
	last *bool // outcome of the previous probe, nil before the first
}

// NewAvailabilityService creates the service. history may be nil, in which case
// probes are not recorded.
func NewAvailabilityService(reader PortalReader, history contracts.ProbeHistoryRepository) *AvailabilityService {
	return &AvailabilityService{
		reader:  reader,
		history: history,
		logger:  logging.Default().WithComponent("availability_service"),
		now:     time.Now,
	}
}

// WithPublisher makes the service publish probe and availability change events.
func (s *AvailabilityService) WithPublisher(publisher events.ProbeEventPublisher) *AvailabilityService {
	s.publisher = publisher
	return s
}

// Check probes the portal and records the outcome. Recording failures are logged
// and never change the probe result.
func (s *AvailabilityService) Check(ctx context.Context) portal.OperationResult {
	start := s.now()
	result := s.reader.ProbeAvailability(ctx)
	duration := s.now().Sub(start)

	s.logger.Performance("probe_availability", duration)

	if s.history == nil && s.publisher == nil {
		return result
	}

	record := portal.NewProbeRecord(uuid.NewString(), s.reader.Endpoint(), result, duration, start)
	if s.history != nil {
		if err := s.history.Record(ctx, record); err != nil {
			s.logger.Warn("Failed to record probe result", "error", err, "probe_id", record.ID)
		}
	}
	s.publish(record)
	return result
}

func (s *AvailabilityService) publish(record portal.ProbeRecord) {
	s.mu.Lock()
	changed := s.last == nil || *s.last != record.Success
	available := record.Success
	s.last = &available
	s.mu.Unlock()

	if s.publisher == nil {
		return
	}
	now := s.now()
	s.publisher.PublishProbeCompleted(events.ProbeCompletedEvent{Record: record, Timestamp: now})
	if changed {
		s.publisher.PublishAvailabilityChanged(events.AvailabilityChangedEvent{
			Endpoint:  record.Endpoint,
			Available: record.Success,
			Record:    record,
			Timestamp: now,
		})
	}
}

// History returns up to limit recent probe records, newest first.
func (s *AvailabilityService) History(ctx context.Context, limit int) ([]portal.ProbeRecord, error) {
	if s.history == nil {
		return []portal.ProbeRecord{}, nil
	}
	return s.history.Recent(ctx, limit)
}

// PruneHistory deletes probe records older than retention. A non-positive
// retention keeps everything.
func (s *AvailabilityService) PruneHistory(ctx context.Context, retention time.Duration) (int64, error) {
	if s.history == nil || retention <= 0 {
		return 0, nil
	}
	removed, err := s.history.Prune(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("Pruned probe history", "removed", removed, "retention", retention.String())
	}
	return removed, nil
}
