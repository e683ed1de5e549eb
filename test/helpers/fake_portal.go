package helpers

import (
	"context"
	"fmt"
	"sync"

	"spportal/domain/contracts"
	"spportal/domain/portal"
)

// FakePortal is an in-memory contracts.PortalTransport. It answers list item
// requests by evaluating the CAML view against Rows, so filters and row limits
// behave like the portal's own.
type FakePortal struct {
	mu sync.Mutex

	Lists []*portal.List
	User  *portal.User
	Rows  map[string][]portal.Row // keyed by list ID

	// Err fails every execute cycle, or only cycles containing FailOn when set.
	Err    error
	FailOn portal.RequestKind

	calls [][]portal.LoadRequest
}

var _ contracts.PortalTransport = (*FakePortal)(nil)

// NewFakePortal returns a portal seeded with the standard lists, the current
// user and taskCount task rows.
func NewFakePortal(taskCount int) *FakePortal {
	td := NewTestData()
	return &FakePortal{
		Lists: td.StandardLists(taskCount),
		User:  td.CurrentUser(),
		Rows: map[string][]portal.Row{
			DocumentsListID: {
				{"ID": float64(1), "Title": "Budget.xlsx", "FileLeafRef": "Budget.xlsx"},
				{"ID": float64(2), "Title": "Plan.docx", "FileLeafRef": "Plan.docx"},
			},
			TasksListID: td.TaskRows(taskCount),
		},
	}
}

// Execute records the cycle and answers every request in order.
func (f *FakePortal) Execute(ctx context.Context, requests []portal.LoadRequest) ([]portal.LoadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	batch := make([]portal.LoadRequest, len(requests))
	copy(batch, requests)
	f.calls = append(f.calls, batch)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil && f.failsCycle(requests) {
		return nil, f.Err
	}

	results := make([]portal.LoadResult, len(requests))
	for i, req := range requests {
		switch req.Kind {
		case portal.RequestLists:
			lists := make([]*portal.List, len(f.Lists))
			copy(lists, f.Lists)
			results[i] = portal.LoadResult{Lists: lists}
		case portal.RequestCurrentUser:
			var user *portal.User
			if f.User != nil {
				u := *f.User
				user = &u
			}
			results[i] = portal.LoadResult{User: user}
		case portal.RequestListItems:
			source, ok := f.Rows[req.ListID]
			if !ok {
				return nil, fmt.Errorf("list %s does not exist", req.ListID)
			}
			rows, err := EvaluateView(req.ViewXML, source)
			if err != nil {
				return nil, fmt.Errorf("query on list %s: %w", req.ListID, err)
			}
			results[i] = portal.LoadResult{Rows: rows}
		default:
			return nil, fmt.Errorf("unsupported request kind %q", req.Kind)
		}
	}
	return results, nil
}

func (f *FakePortal) failsCycle(requests []portal.LoadRequest) bool {
	if f.FailOn == "" {
		return true
	}
	for _, req := range requests {
		if req.Kind == f.FailOn {
			return true
		}
	}
	return false
}

// RoundTrips returns the number of execute cycles seen.
func (f *FakePortal) RoundTrips() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Calls returns the requests of every execute cycle seen, oldest first.
func (f *FakePortal) Calls() [][]portal.LoadRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]portal.LoadRequest, len(f.calls))
	copy(out, f.calls)
	return out
}

// LastRequest returns the final request of the most recent cycle.
func (f *FakePortal) LastRequest() (portal.LoadRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 || len(f.calls[len(f.calls)-1]) == 0 {
		return portal.LoadRequest{}, false
	}
	last := f.calls[len(f.calls)-1]
	return last[len(last)-1], true
}
