package portal

import (
	"errors"
	"strings"
)

// RequestKind identifies which remote object a staged request loads.
type RequestKind string

const (
	RequestLists       RequestKind = "lists"
	RequestCurrentUser RequestKind = "current_user"
	RequestListItems   RequestKind = "list_items"
)

// LoadRequest is the wire-neutral description of one staged remote object.
type LoadRequest struct {
	ID      string // Correlation ID assigned when the object is staged
	Kind    RequestKind
	ListID  string // Target list GUID (list items only)
	ViewXML string // CAML query envelope (list items only)
}

// LoadResult carries the data the portal returned for one LoadRequest.
type LoadResult struct {
	Lists []*List
	User  *User
	Rows  []Row
}

// RemoteObject is a portal-owned object that is populated by an execute cycle.
// Objects start unloaded and become materialized exactly once.
type RemoteObject interface {
	LoadRequest() LoadRequest
	Materialize(result LoadResult) error
	Loaded() bool
}

// ErrMissingUser is returned when a round trip completes without user data.
var ErrMissingUser = errors.New("portal response did not include the current user")

// Web is the root object of a portal session. Every read starts from it.
type Web struct {
	URL string
}

// NewWeb creates the root object for the portal at url.
func NewWeb(url string) *Web {
	return &Web{URL: url}
}

// Lists returns a fresh, unloaded handle to the web's list collection.
func (w *Web) Lists() *ListCollection {
	return &ListCollection{}
}

// CurrentUser returns a fresh, unloaded handle to the authenticated user.
func (w *Web) CurrentUser() *User {
	return &User{}
}

// List represents a SharePoint list or document library
type List struct {
	ID                string
	Title             string
	Description       string
	Hidden            bool
	ItemCount         int
	BaseTemplate      int
	ServerRelativeURL string
	URL               string
}

// IsDocumentLibrary returns true if this is a document library (BaseTemplate 101)
func (l *List) IsDocumentLibrary() bool {
	return l.BaseTemplate == 101
}

// GetItems returns an unloaded row set for this list bound to the given query envelope.
func (l *List) GetItems(viewXML string) *RowSet {
	return &RowSet{ListID: l.ID, ViewXML: viewXML}
}

// ListCollection is the set of lists exposed by a web.
type ListCollection struct {
	Lists  []*List
	loaded bool
}

func (c *ListCollection) LoadRequest() LoadRequest {
	return LoadRequest{Kind: RequestLists}
}

func (c *ListCollection) Materialize(result LoadResult) error {
	c.Lists = result.Lists
	c.loaded = true
	return nil
}

func (c *ListCollection) Loaded() bool { return c.loaded }

// Count returns the number of lists, treating a nil collection as empty.
func (c *ListCollection) Count() int {
	if c == nil {
		return 0
	}
	return len(c.Lists)
}

// ByTitle finds a list by its title, ignoring case.
func (c *ListCollection) ByTitle(title string) (*List, bool) {
	if c == nil {
		return nil, false
	}
	for _, l := range c.Lists {
		if strings.EqualFold(l.Title, title) {
			return l, true
		}
	}
	return nil, false
}

// ByID finds a list by its GUID, ignoring case and braces.
func (c *ListCollection) ByID(id string) (*List, bool) {
	if c == nil {
		return nil, false
	}
	want := strings.Trim(id, "{}")
	for _, l := range c.Lists {
		if strings.EqualFold(strings.Trim(l.ID, "{}"), want) {
			return l, true
		}
	}
	return nil, false
}

// User is a portal principal, here always the one the session authenticates as.
type User struct {
	ID          int
	LoginName   string
	Title       string
	Email       string
	IsSiteAdmin bool
	loaded      bool
}

func (u *User) LoadRequest() LoadRequest {
	return LoadRequest{Kind: RequestCurrentUser}
}

func (u *User) Materialize(result LoadResult) error {
	if result.User == nil {
		return ErrMissingUser
	}
	loaded := *result.User
	loaded.loaded = true
	*u = loaded
	return nil
}

func (u *User) Loaded() bool { return u.loaded }

// Row is one list item keyed by internal field name.
type Row map[string]any

// ID returns the list item integer ID if present.
func (r Row) ID() (int, bool) {
	for _, key := range []string{"ID", "Id"} {
		switch v := r[key].(type) {
		case float64:
			return int(v), true
		case int:
			return v, true
		}
	}
	return 0, false
}

// Text returns a field as a string, or "" when absent or not a string.
func (r Row) Text(field string) string {
	s, _ := r[field].(string)
	return s
}

// RowSet holds the rows of one list returned for one query envelope.
type RowSet struct {
	ListID  string
	ViewXML string
	Rows    []Row
	loaded  bool
}

func (s *RowSet) LoadRequest() LoadRequest {
	return LoadRequest{Kind: RequestListItems, ListID: s.ListID, ViewXML: s.ViewXML}
}

func (s *RowSet) Materialize(result LoadResult) error {
	s.Rows = result.Rows
	s.loaded = true
	return nil
}

func (s *RowSet) Loaded() bool { return s.loaded }

// Len returns the number of rows, treating a nil set as empty.
func (s *RowSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}
