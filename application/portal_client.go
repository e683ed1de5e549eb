package application

import (
	"context"

	"spportal/domain/contracts"
	"spportal/domain/portal"
	"spportal/logging"
)

// ClientState is the lifecycle state of a PortalClient.
type ClientState int

const (
	StateUninitialized ClientState = iota
	StateReady
	StateFailed
)

func (s ClientState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// PortalClient is the read-only access point to one SharePoint portal. It is only
// handed out after its availability probe succeeds.
type PortalClient struct {
	endpoint  string
	transport contracts.PortalTransport
	session   *PortalSession // nil until opened
	state     ClientState
	logger    *logging.Logger
}

// NewPortalClient opens a session against endpoint and probes it. When the probe
// fails no client is returned; the error is a portal.Error of kind
// ConstructionFailure carrying the probe's code, message and cause.
func NewPortalClient(ctx context.Context, endpoint string, transport contracts.PortalTransport) (*PortalClient, error) {
	c := &PortalClient{
		endpoint:  endpoint,
		transport: transport,
		state:     StateUninitialized,
		logger:    logging.Default().WithComponent("portal_client"),
	}
	if transport != nil {
		c.session = OpenSession(endpoint, transport)
	}

	result := c.ProbeAvailability(ctx)
	if !result.Success {
		c.state = StateFailed
		c.logger.PortalError("Portal availability probe failed", result.Err, endpoint)
		return nil, result.AsError()
	}

	c.state = StateReady
	c.logger.Info("Portal client ready", "endpoint", endpoint)
	return c, nil
}

// Endpoint returns the portal address the client was built for.
func (c *PortalClient) Endpoint() string {
	return c.endpoint
}

// State returns the client's lifecycle state.
func (c *PortalClient) State() ClientState {
	return c.state
}

// ProbeAvailability checks that the portal answers and exposes at least one list.
// It never returns an error; failures are reported in the result.
func (c *PortalClient) ProbeAvailability(ctx context.Context) portal.OperationResult {
	if c.session == nil && c.transport != nil {
		c.session = OpenSession(c.endpoint, c.transport)
	}
	if c.session == nil {
		return portal.FailedFrom(portal.NewError(portal.KindCollectionUnavailable, portal.ErrNoSession))
	}

	lists, err := c.FetchListCollection(ctx)
	if err != nil {
		return portal.FailedFrom(err)
	}
	if lists.Count() == 0 {
		return portal.FailedFrom(portal.NewError(portal.KindCollectionUnavailable, portal.ErrEmptyCollection))
	}
	return portal.Succeeded()
}

// root returns the open session and its root object, if both exist.
func (c *PortalClient) root() (*PortalSession, *portal.Web, bool) {
	if c.session == nil {
		return nil, nil, false
	}
	web := c.session.Web()
	if web == nil {
		return nil, nil, false
	}
	return c.session, web, true
}

// FetchListCollection loads the web's lists. It returns nil, nil when no session
// is open.
func (c *PortalClient) FetchListCollection(ctx context.Context) (*portal.ListCollection, error) {
	session, web, ok := c.root()
	if !ok {
		return nil, nil
	}
	lists, err := load(ctx, session, web.Lists())
	if err != nil {
		return nil, portal.NewError(portal.KindCollectionUnavailable, err)
	}
	return lists, nil
}

// FetchCurrentUser loads the user the session authenticates as. It returns
// nil, nil when no session is open.
func (c *PortalClient) FetchCurrentUser(ctx context.Context) (*portal.User, error) {
	session, web, ok := c.root()
	if !ok {
		return nil, nil
	}
	user, err := load(ctx, session, web.CurrentUser())
	if err != nil {
		return nil, portal.NewError(portal.KindUserUnavailable, err)
	}
	return user, nil
}

// FetchListRows loads at most rowLimit rows of list matching filter. An empty
// filter matches every row and a non-positive rowLimit means
// portal.DefaultRowLimit. It returns nil, nil when no session is open.
func (c *PortalClient) FetchListRows(ctx context.Context, list *portal.List, filter portal.FilterExpression, rowLimit int) (*portal.RowSet, error) {
	session, _, ok := c.root()
	if !ok {
		return nil, nil
	}
	if list == nil {
		return nil, portal.NewError(portal.KindRowFetchFailed, portal.ErrNilList)
	}
	rows, err := load(ctx, session, list.GetItems(portal.ViewXML(filter, rowLimit)))
	if err != nil {
		return nil, portal.NewError(portal.KindRowFetchFailed, err)
	}
	return rows, nil
}

// FetchListRowsByTitle resolves title against a fresh list collection and then
// fetches its rows. The boolean is false when no list has that title.
func (c *PortalClient) FetchListRowsByTitle(ctx context.Context, title string, filter portal.FilterExpression, rowLimit int) (*portal.RowSet, bool, error) {
	lists, err := c.FetchListCollection(ctx)
	if err != nil {
		return nil, false, err
	}
	list, ok := lists.ByTitle(title)
	if !ok {
		return nil, false, nil
	}
	rows, err := c.FetchListRows(ctx, list, filter, rowLimit)
	return rows, true, err
}
