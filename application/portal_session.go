package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"spportal/domain/contracts"
	"spportal/domain/portal"
	"spportal/logging"
)

// Commit describes one completed execute cycle.
type Commit struct {
	Cycle        int // 1-based execute cycle number for this session
	Materialized int // Number of staged objects populated by the cycle
}

// PortalSession is one logical connection to a portal endpoint. Objects are staged
// for loading and then populated together by a single Execute round trip.
//
// Stage and Execute are safe to call from several goroutines, but staging from
// more than one goroutine before a shared Execute mixes their objects into one
// cycle. Use Load for the stage-then-execute pair.
type PortalSession struct {
	endpoint  string
	transport contracts.PortalTransport
	web       *portal.Web
	logger    *logging.Logger

	mu     sync.Mutex // guards staged and cycles
	loadMu sync.Mutex // serializes Load's stage/execute pair
	staged []portal.RemoteObject
	cycles int
}

// OpenSession creates a session handle bound to endpoint. No network I/O happens
// here; transport failures surface on the first Execute.
func OpenSession(endpoint string, transport contracts.PortalTransport) *PortalSession {
	return &PortalSession{
		endpoint:  endpoint,
		transport: transport,
		web:       portal.NewWeb(endpoint),
		logger:    logging.Default().WithComponent("portal_session"),
	}
}

// Endpoint returns the portal the session is bound to.
func (s *PortalSession) Endpoint() string {
	return s.endpoint
}

// Web returns the session's root object, or nil when the session has none.
func (s *PortalSession) Web() *portal.Web {
	if s == nil {
		return nil
	}
	return s.web
}

// Pending returns the number of staged, not yet executed objects.
func (s *PortalSession) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged)
}

// Stage marks obj to be populated by the next Execute.
func (s *PortalSession) Stage(obj portal.RemoteObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = append(s.staged, obj)
}

// Execute performs one round trip that populates every staged object. The staging
// queue is cleared whether or not the round trip succeeds.
func (s *PortalSession) Execute(ctx context.Context) (Commit, error) {
	s.mu.Lock()
	batch := s.staged
	s.staged = nil
	s.cycles++
	cycle := s.cycles
	s.mu.Unlock()

	if len(batch) == 0 {
		return Commit{Cycle: cycle}, nil
	}
	if s.transport == nil {
		return Commit{Cycle: cycle}, contracts.ErrNoTransport
	}

	requests := make([]portal.LoadRequest, len(batch))
	for i, obj := range batch {
		req := obj.LoadRequest()
		req.ID = uuid.NewString()
		requests[i] = req
	}

	start := time.Now()
	results, err := s.transport.Execute(ctx, requests)
	if err != nil {
		s.logger.PortalError("Execute cycle failed", err, s.endpoint,
			slog.Int("cycle", cycle), slog.Int("staged", len(batch)))
		return Commit{Cycle: cycle}, err
	}
	if len(results) != len(requests) {
		return Commit{Cycle: cycle}, fmt.Errorf("%w: sent %d, got %d",
			contracts.ErrResultCountMismatch, len(requests), len(results))
	}

	for i, obj := range batch {
		if err := obj.Materialize(results[i]); err != nil {
			return Commit{Cycle: cycle, Materialized: i}, fmt.Errorf("materialize %s (request %s): %w",
				requests[i].Kind, requests[i].ID, err)
		}
	}

	s.logger.Portal("Execute cycle completed", s.endpoint,
		"cycle", cycle,
		"staged", len(batch),
		"duration_ms", time.Since(start).Milliseconds())

	return Commit{Cycle: cycle, Materialized: len(batch)}, nil
}

// Load stages obj, executes, and returns once obj is populated. The pair runs
// under a lock so concurrent loads never share an execute cycle.
func (s *PortalSession) Load(ctx context.Context, obj portal.RemoteObject) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.Stage(obj)
	_, err := s.Execute(ctx)
	return err
}

// load is the typed form of Load: stage target, execute, return target.
func load[T portal.RemoteObject](ctx context.Context, s *PortalSession, target T) (T, error) {
	if err := s.Load(ctx, target); err != nil {
		var zero T
		return zero, err
	}
	return target, nil
}
