package contracts

import (
	"context"

	"spportal/domain/portal"
)

// PortalTransport executes staged load requests against a SharePoint portal.
type PortalTransport interface {
	// Execute performs one execute cycle for the given requests and returns one
	// result per request, in request order. Any failure fails the whole cycle.
	Execute(ctx context.Context, requests []portal.LoadRequest) ([]portal.LoadResult, error)
}
