package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"spportal/domain/portal"
)

// MockPortalTransport implements PortalTransport for testing
type MockPortalTransport struct {
	mock.Mock
}

func (m *MockPortalTransport) Execute(ctx context.Context, requests []portal.LoadRequest) ([]portal.LoadResult, error) {
	args := m.Called(ctx, requests)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portal.LoadResult), args.Error(1)
}

// MockPortalReader implements the application PortalReader for testing
type MockPortalReader struct {
	mock.Mock
}

func (m *MockPortalReader) Endpoint() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPortalReader) ProbeAvailability(ctx context.Context) portal.OperationResult {
	args := m.Called(ctx)
	return args.Get(0).(portal.OperationResult)
}

func (m *MockPortalReader) FetchListCollection(ctx context.Context) (*portal.ListCollection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.ListCollection), args.Error(1)
}

func (m *MockPortalReader) FetchCurrentUser(ctx context.Context) (*portal.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.User), args.Error(1)
}

func (m *MockPortalReader) FetchListRows(ctx context.Context, list *portal.List, filter portal.FilterExpression, rowLimit int) (*portal.RowSet, error) {
	args := m.Called(ctx, list, filter, rowLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.RowSet), args.Error(1)
}

func (m *MockPortalReader) FetchListRowsByTitle(ctx context.Context, title string, filter portal.FilterExpression, rowLimit int) (*portal.RowSet, bool, error) {
	args := m.Called(ctx, title, filter, rowLimit)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*portal.RowSet), args.Bool(1), args.Error(2)
}

// MockProbeHistoryRepository implements ProbeHistoryRepository for testing
type MockProbeHistoryRepository struct {
	mock.Mock
}

func (m *MockProbeHistoryRepository) Record(ctx context.Context, record portal.ProbeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockProbeHistoryRepository) Recent(ctx context.Context, limit int) ([]portal.ProbeRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portal.ProbeRecord), args.Error(1)
}

func (m *MockProbeHistoryRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
