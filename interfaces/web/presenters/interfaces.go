package presenters

import (
	"spportal/domain/portal"
)

// PortalPresenterInterface defines the contract for portal presentation logic.
type PortalPresenterInterface interface {
	ToListSummaries(lists *portal.ListCollection, includeHidden bool) []ListSummary
	ToUserSummary(user *portal.User) *UserSummary
	ToRowsViewModel(listTitle string, rows *portal.RowSet, limit int) *RowsVM
	ToProbeViewModel(endpoint string, result portal.OperationResult) *ProbeVM
	ToProbeHistory(records []portal.ProbeRecord) []ProbeRecordVM
	ToOverviewViewModel(endpoint string, user *portal.User, lists *portal.ListCollection) *PortalOverviewVM
}

// Ensure PortalPresenter implements the interface.
var _ PortalPresenterInterface = (*PortalPresenter)(nil)
