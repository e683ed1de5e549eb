// Package presenters transforms domain data into UI-ready view models.
package presenters

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"spportal/domain/portal"
)

// ListSummary is a list as shown in the UI and the JSON API.
type ListSummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	URL            string `json:"url,omitempty"`
	ItemCount      int    `json:"item_count"`
	Hidden         bool   `json:"hidden"`
	IsLibrary      bool   `json:"is_library"`
	ItemCountLabel string `json:"-"`
}

// UserSummary is the authenticated user as shown in the UI and the JSON API.
type UserSummary struct {
	ID          int    `json:"id"`
	LoginName   string `json:"login_name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	IsSiteAdmin bool   `json:"is_site_admin"`
}

// RowsVM is the JSON body of a row fetch.
type RowsVM struct {
	List  string       `json:"list"`
	Count int          `json:"count"`
	Limit int          `json:"limit"`
	Rows  []portal.Row `json:"rows"`
}

// ProbeVM is the JSON body of an availability check.
type ProbeVM struct {
	Endpoint     string `json:"endpoint"`
	Success      bool   `json:"success"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message,omitempty"`
	Cause        string `json:"cause,omitempty"`
}

// ProbeRecordVM is one entry of the probe history.
type ProbeRecordVM struct {
	ID           string    `json:"id"`
	Success      bool      `json:"success"`
	ErrorCode    int       `json:"error_code"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	CheckedAt    time.Time `json:"checked_at"`
}

// PortalOverviewVM is the view model for the portal overview page.
type PortalOverviewVM struct {
	Endpoint    string        `json:"endpoint"`
	User        *UserSummary  `json:"user,omitempty"`
	Lists       []ListSummary `json:"lists"`
	HiddenCount int           `json:"hidden_count"`
	TotalItems  int           `json:"total_items"`
}

// PortalPresenter transforms portal reads for UI and API display.
type PortalPresenter struct{}

// NewPortalPresenter creates a portal presenter.
func NewPortalPresenter() *PortalPresenter {
	return &PortalPresenter{}
}

// ToListSummaries converts a list collection sorted by title. Hidden lists are
// dropped unless includeHidden is set. Returns an empty slice if lists is nil.
func (p *PortalPresenter) ToListSummaries(lists *portal.ListCollection, includeHidden bool) []ListSummary {
	if lists == nil {
		return []ListSummary{}
	}
	out := make([]ListSummary, 0, len(lists.Lists))
	for _, l := range lists.Lists {
		if l.Hidden && !includeHidden {
			continue
		}
		out = append(out, ListSummary{
			ID:             l.ID,
			Title:          l.Title,
			Description:    l.Description,
			URL:            l.URL,
			ItemCount:      l.ItemCount,
			Hidden:         l.Hidden,
			IsLibrary:      l.IsDocumentLibrary(),
			ItemCountLabel: itemCountLabel(l.ItemCount),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}

// ToUserSummary converts the current user. Returns nil if user is nil.
func (p *PortalPresenter) ToUserSummary(user *portal.User) *UserSummary {
	if user == nil {
		return nil
	}
	return &UserSummary{
		ID:          user.ID,
		LoginName:   user.LoginName,
		DisplayName: user.Title,
		Email:       user.Email,
		IsSiteAdmin: user.IsSiteAdmin,
	}
}

// ToRowsViewModel converts a row set. A nil set becomes an empty result.
func (p *PortalPresenter) ToRowsViewModel(listTitle string, rows *portal.RowSet, limit int) *RowsVM {
	if limit <= 0 {
		limit = portal.DefaultRowLimit
	}
	vm := &RowsVM{List: listTitle, Limit: limit, Rows: []portal.Row{}}
	if rows != nil && rows.Rows != nil {
		vm.Rows = rows.Rows
	}
	vm.Count = len(vm.Rows)
	return vm
}

// ToProbeViewModel converts a probe result.
func (p *PortalPresenter) ToProbeViewModel(endpoint string, result portal.OperationResult) *ProbeVM {
	vm := &ProbeVM{
		Endpoint:     endpoint,
		Success:      result.Success,
		ErrorCode:    result.ErrorCode,
		ErrorMessage: result.ErrorMessage,
	}
	if result.Err != nil {
		vm.Cause = result.Err.Error()
	}
	return vm
}

// ToProbeHistory converts stored probe records.
func (p *PortalPresenter) ToProbeHistory(records []portal.ProbeRecord) []ProbeRecordVM {
	out := make([]ProbeRecordVM, 0, len(records))
	for _, r := range records {
		out = append(out, ProbeRecordVM{
			ID:           r.ID,
			Success:      r.Success,
			ErrorCode:    r.ErrorCode,
			ErrorMessage: r.ErrorMessage,
			DurationMs:   r.Duration.Milliseconds(),
			CheckedAt:    r.CheckedAt,
		})
	}
	return out
}

// ToOverviewViewModel builds the overview page model. Hidden lists are counted
// but not listed.
func (p *PortalPresenter) ToOverviewViewModel(endpoint string, user *portal.User, lists *portal.ListCollection) *PortalOverviewVM {
	vm := &PortalOverviewVM{
		Endpoint: endpoint,
		User:     p.ToUserSummary(user),
		Lists:    p.ToListSummaries(lists, false),
	}
	if lists != nil {
		for _, l := range lists.Lists {
			if l.Hidden {
				vm.HiddenCount++
			}
		}
	}
	for _, l := range vm.Lists {
		vm.TotalItems += l.ItemCount
	}
	return vm
}

func itemCountLabel(n int) string {
	switch n {
	case 0:
		return "empty"
	case 1:
		return "1 item"
	default:
		return fmt.Sprintf("%d items", n)
	}
}
