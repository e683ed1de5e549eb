package application

import (
	"context"

	"spportal/domain/portal"
)

// PortalReader is the read surface of a ready portal client.
type PortalReader interface {
	Endpoint() string

	// Availability
	ProbeAvailability(ctx context.Context) portal.OperationResult

	// Reads (one execute cycle each)
	FetchListCollection(ctx context.Context) (*portal.ListCollection, error)
	FetchCurrentUser(ctx context.Context) (*portal.User, error)
	FetchListRows(ctx context.Context, list *portal.List, filter portal.FilterExpression, rowLimit int) (*portal.RowSet, error)
	FetchListRowsByTitle(ctx context.Context, title string, filter portal.FilterExpression, rowLimit int) (*portal.RowSet, bool, error)
}

var _ PortalReader = (*PortalClient)(nil)
