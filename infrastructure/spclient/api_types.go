package spclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"spportal/domain/portal"
)

// ---------- Wire models ----------

type ODataResults[T any] struct {
	Results []T `json:"results"`
}

type listApiData struct {
	Id           string `json:"Id"`
	Title        string `json:"Title"`
	Description  string `json:"Description"`
	Hidden       bool   `json:"Hidden"`
	ItemCount    int    `json:"ItemCount"`
	BaseTemplate int    `json:"BaseTemplate"`
	RootFolder   struct {
		ServerRelativeUrl string `json:"ServerRelativeUrl"`
	} `json:"RootFolder"`
}

type userApiData struct {
	Id          int    `json:"Id"`
	LoginName   string `json:"LoginName"`
	Title       string `json:"Title"`
	Email       string `json:"Email"`
	IsSiteAdmin bool   `json:"IsSiteAdmin"`
}

// ---------- Decoders ----------

// decodeCollection accepts a bare array, verbose {"d":{"results":[]}} or
// minimal {"value":[]} payloads.
func decodeCollection[T any](b []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	var env struct {
		D     *ODataResults[T] `json:"d"`
		Value []T              `json:"value"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	switch {
	case env.D != nil:
		return env.D.Results, nil
	case env.Value != nil:
		return env.Value, nil
	default:
		return nil, fmt.Errorf("response is not a collection")
	}
}

// decodeSingle accepts a verbose {"d":{...}} or minimal {...} entity payload.
func decodeSingle[T any](b []byte) (T, error) {
	var env struct {
		D *T `json:"d"`
	}
	if err := json.Unmarshal(b, &env); err == nil && env.D != nil {
		return *env.D, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return out, err
	}
	return out, nil
}

func decodeLists(b []byte, siteURL string) ([]*portal.List, error) {
	data, err := decodeCollection[listApiData](b)
	if err != nil {
		return nil, err
	}
	lists := make([]*portal.List, 0, len(data))
	for _, l := range data {
		rel := l.RootFolder.ServerRelativeUrl
		abs := ""
		if rel != "" {
			abs = absoluteURL(siteURL, rel)
		}
		lists = append(lists, &portal.List{
			ID:                l.Id,
			Title:             l.Title,
			Description:       l.Description,
			Hidden:            l.Hidden,
			ItemCount:         l.ItemCount,
			BaseTemplate:      l.BaseTemplate,
			ServerRelativeURL: rel,
			URL:               abs,
		})
	}
	return lists, nil
}

func decodeUser(b []byte) (*portal.User, error) {
	u, err := decodeSingle[userApiData](b)
	if err != nil {
		return nil, err
	}
	if u.Id == 0 && u.LoginName == "" {
		return nil, fmt.Errorf("response has no user identity")
	}
	return &portal.User{
		ID:          u.Id,
		LoginName:   u.LoginName,
		Title:       displayName(u),
		Email:       u.Email,
		IsSiteAdmin: u.IsSiteAdmin,
	}, nil
}

func decodeRows(b []byte) ([]portal.Row, error) {
	data, err := decodeCollection[map[string]any](b)
	if err != nil {
		return nil, err
	}
	rows := make([]portal.Row, 0, len(data))
	for _, item := range data {
		row := make(portal.Row, len(item))
		for k, v := range item {
			// Drop OData bookkeeping (verbose __metadata, deferred links, minimal odata.* keys).
			if k == "__metadata" || strings.HasPrefix(k, "odata.") || isDeferred(v) {
				continue
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// isDeferred reports whether v is a verbose-mode {"__deferred":{...}} navigation link.
func isDeferred(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, deferred := m["__deferred"]
	return deferred && len(m) == 1
}

// absoluteURL resolves a server-relative path against the site URL.
func absoluteURL(siteURL, rel string) string {
	base, err := url.Parse(siteURL)
	if err != nil {
		return rel
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	ref, err := url.Parse(rel)
	if err != nil {
		return rel
	}
	return base.ResolveReference(ref).String()
}

// displayName falls back to the login name for principals without a title.
func displayName(u userApiData) string {
	if strings.TrimSpace(u.Title) != "" {
		return u.Title
	}
	return u.LoginName
}
