package spclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"spportal/domain/contracts"
	"spportal/domain/portal"
	"spportal/logging"

	"github.com/koltyakov/gosip"
	"github.com/koltyakov/gosip/api"
)

// OData field selections.
const (
	ListFields = `Id,Title,Description,Hidden,ItemCount,BaseTemplate,RootFolder/ServerRelativeUrl`
	UserFields = `Id,LoginName,Title,Email,IsSiteAdmin`
)

// PortalTransport executes portal load requests over the SharePoint REST API.
// Each staged request maps to one REST call; the client stages one object per
// read, so a read costs one HTTP round trip.
type PortalTransport struct {
	gosipAPI      *api.SP            // Fluent API client (lists)
	authClient    *gosip.SPClient    // Authenticated client for direct HTTP calls
	defaultConfig *api.RequestConfig // Shared request configuration
	logger        *logging.Logger
}

var _ contracts.PortalTransport = (*PortalTransport)(nil)

// NewPortalTransport creates a transport for the site the auth client is bound to.
// Gosip's built-in retries are disabled; failures surface on first occurrence.
func NewPortalTransport(authClient *gosip.SPClient) *PortalTransport {
	return &PortalTransport{
		gosipAPI:   api.NewSP(authClient),
		authClient: authClient,
		defaultConfig: &api.RequestConfig{
			Headers: map[string]string{"X-Gosip-NoRetry": "true"},
		},
		logger: logging.Default().WithComponent("sharepoint_transport"),
	}
}

// createRequestConfig creates a RequestConfig with the provided context, inheriting default configuration.
func (t *PortalTransport) createRequestConfig(ctx context.Context) *api.RequestConfig {
	config := *t.defaultConfig
	config.Context = ctx
	return &config
}

func (t *PortalTransport) siteURL() string {
	return strings.TrimRight(t.authClient.AuthCnfg.GetSiteURL(), "/")
}

// Execute loads every request in order. The first failure aborts the cycle.
func (t *PortalTransport) Execute(ctx context.Context, requests []portal.LoadRequest) ([]portal.LoadResult, error) {
	results := make([]portal.LoadResult, len(requests))
	for i, req := range requests {
		res, err := t.load(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%s request %s: %w", req.Kind, req.ID, err)
		}
		results[i] = res
	}
	return results, nil
}

func (t *PortalTransport) load(ctx context.Context, req portal.LoadRequest) (portal.LoadResult, error) {
	switch req.Kind {
	case portal.RequestLists:
		lists, err := t.getLists(ctx)
		return portal.LoadResult{Lists: lists}, err
	case portal.RequestCurrentUser:
		user, err := t.getCurrentUser(ctx)
		return portal.LoadResult{User: user}, err
	case portal.RequestListItems:
		rows, err := t.getListItems(ctx, req.ListID, req.ViewXML)
		return portal.LoadResult{Rows: rows}, err
	default:
		return portal.LoadResult{}, fmt.Errorf("unsupported request kind %q", req.Kind)
	}
}

// getLists retrieves all lists of the web with their root folder URLs.
func (t *PortalTransport) getLists(ctx context.Context) ([]*portal.List, error) {
	sp := t.gosipAPI.Conf(t.createRequestConfig(ctx))
	res, err := sp.Web().Lists().Select(ListFields).Expand(`RootFolder`).Get()
	if err != nil {
		return nil, fmt.Errorf("get lists: %w", err)
	}

	lists, err := decodeLists(res.Normalized(), t.siteURL())
	if err != nil {
		return nil, fmt.Errorf("decode lists: %w", err)
	}
	t.logger.Debug("Lists loaded", "count", len(lists))
	return lists, nil
}

// getCurrentUser retrieves the principal the auth client signs in as.
func (t *PortalTransport) getCurrentUser(ctx context.Context) (*portal.User, error) {
	client := api.NewHTTPClient(t.authClient)
	endpoint := fmt.Sprintf("%s/_api/web/CurrentUser?$select=%s", t.siteURL(), UserFields)

	data, err := client.Get(endpoint, t.createRequestConfig(ctx))
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}

	user, err := decodeUser(data)
	if err != nil {
		return nil, fmt.Errorf("decode current user: %w", err)
	}
	return user, nil
}

// getListItems runs a CAML query envelope against a list via GetItems.
func (t *PortalTransport) getListItems(ctx context.Context, listID, viewXML string) ([]portal.Row, error) {
	if listID == "" {
		return nil, fmt.Errorf("list ID is required")
	}

	body, err := camlQueryBody(viewXML)
	if err != nil {
		return nil, fmt.Errorf("encode CAML query: %w", err)
	}

	client := api.NewHTTPClient(t.authClient)
	endpoint := fmt.Sprintf("%s/_api/web/lists(guid'%s')/GetItems", t.siteURL(), strings.Trim(listID, "{}"))

	data, err := client.Post(endpoint, bytes.NewReader(body), t.createRequestConfig(ctx))
	if err != nil {
		return nil, fmt.Errorf("get items of list %s: %w", listID, err)
	}

	rows, err := decodeRows(data)
	if err != nil {
		return nil, fmt.Errorf("decode items of list %s: %w", listID, err)
	}
	t.logger.Debug("List items loaded", "list_id", listID, "count", len(rows))
	return rows, nil
}

// camlQueryBody builds the verbose OData payload for SP.List.GetItems.
func camlQueryBody(viewXML string) ([]byte, error) {
	payload := map[string]any{
		"query": map[string]any{
			"__metadata": map[string]string{"type": "SP.CamlQuery"},
			"ViewXml":    viewXML,
		},
	}
	return json.Marshal(payload)
}
