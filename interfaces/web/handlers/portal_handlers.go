package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"spportal/application"
	"spportal/database"
	"spportal/domain/portal"
	"spportal/interfaces/web/presenters"
	"spportal/interfaces/web/templates/pages"
	"spportal/logging"
)

// HealthReporter exposes backing-store health for the health endpoint.
type HealthReporter interface {
	Health(ctx context.Context) (*database.HealthReport, error)
}

// PortalHandlers handles portal read endpoints.
// Orchestrates between the portal client and presentation logic.
type PortalHandlers struct {
	reader       application.PortalReader
	availability *application.AvailabilityService
	store        HealthReporter
	presenter    presenters.PortalPresenterInterface
	historyLimit int
	logger       *logging.Logger
}

// NewPortalHandlers creates a new portal handlers instance with required dependencies.
// store may be nil when no database is configured.
func NewPortalHandlers(
	reader application.PortalReader,
	availability *application.AvailabilityService,
	store HealthReporter,
	presenter presenters.PortalPresenterInterface,
	historyLimit int,
) *PortalHandlers {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &PortalHandlers{
		reader:       reader,
		availability: availability,
		store:        store,
		presenter:    presenter,
		historyLimit: historyLimit,
		logger:       logging.Default().WithComponent("portal_handlers"),
	}
}

// Overview renders the endpoint, current user and visible lists as HTML, or as
// JSON when the client asks for it.
func (h *PortalHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.reader.FetchCurrentUser(ctx)
	if err != nil {
		h.logger.WithContext(ctx).Warn("Overview user fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	lists, err := h.reader.FetchListCollection(ctx)
	if err != nil {
		h.logger.WithContext(ctx).Warn("Overview list fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	vm := h.presenter.ToOverviewViewModel(h.reader.Endpoint(), user, lists)
	if WantsJSON(r) {
		writeJSON(w, http.StatusOK, vm)
		return
	}
	RenderResponse(ctx, w, r, pages.PortalOverviewPage(*vm))
}

type healthResponse struct {
	Status        string                 `json:"status"`
	Portal        *presenters.ProbeVM    `json:"portal"`
	Database      *database.HealthReport `json:"database,omitempty"`
	DatabaseError string                 `json:"database_error,omitempty"`
}

// Health runs an availability probe and reports it with database health.
func (h *PortalHandlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result := h.availability.Check(ctx)
	resp := healthResponse{
		Status: "ok",
		Portal: h.presenter.ToProbeViewModel(h.reader.Endpoint(), result),
	}
	status := http.StatusOK
	if !result.Success {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if h.store != nil {
		report, err := h.store.Health(ctx)
		if err != nil {
			resp.Status = "degraded"
			resp.DatabaseError = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = report
		}
	}

	writeJSON(w, status, resp)
}

// History returns recent probe records, newest first.
func (h *PortalHandlers) History(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, "limit", h.historyLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	records, err := h.availability.History(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, h.presenter.ToProbeHistory(records))
}

// Lists returns the portal's lists. Hidden lists are included with ?hidden=true.
func (h *PortalHandlers) Lists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.reader.FetchListCollection(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, h.presenter.ToListSummaries(lists, parseBool(r, "hidden")))
}

// CurrentUser returns the user the portal session authenticates as.
func (h *PortalHandlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.reader.FetchCurrentUser(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if user == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, h.presenter.ToUserSummary(user))
}

// Rows returns filtered rows of the list named by the {title} URL parameter.
func (h *PortalHandlers) Rows(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	title := chi.URLParam(r, "title")
	if title == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("list title is required"))
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := parseLimit(r, "limit", portal.DefaultRowLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, found, err := h.reader.FetchListRowsByTitle(ctx, title, filter, limit)
	if err != nil {
		h.logger.WithContext(ctx).Warn("Row fetch failed", "list", title, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("list %q not found", title))
		return
	}

	writeJSON(w, http.StatusOK, h.presenter.ToRowsViewModel(title, rows, limit))
}
