package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spportal/application"
	"spportal/database"
	"spportal/domain/portal"
	"spportal/interfaces/web/presenters"
	"spportal/test/helpers"
	"spportal/test/mocks"
)

const testEndpoint = "https://contoso.sharepoint.com/sites/test"

type stubStore struct {
	err error
}

func (s stubStore) Health(context.Context) (*database.HealthReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &database.HealthReport{Path: "probe.db", Read: database.PoolStats{OpenConnections: 1}}, nil
}

func newTestHandlers(reader *mocks.MockPortalReader, history *mocks.MockProbeHistoryRepository, store HealthReporter) *PortalHandlers {
	availability := application.NewAvailabilityService(reader, nil)
	if history != nil {
		availability = application.NewAvailabilityService(reader, history)
	}
	return NewPortalHandlers(reader, availability, store, presenters.NewPortalPresenter(), 0)
}

func withTitle(req *http.Request, title string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("title", title)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func standardCollection() *portal.ListCollection {
	return &portal.ListCollection{Lists: helpers.NewTestData().StandardLists(4)}
}

func TestPortalHandlers_Lists(t *testing.T) {
	reader := &mocks.MockPortalReader{}
	reader.On("FetchListCollection", mock.Anything).Return(standardCollection(), nil)
	h := newTestHandlers(reader, nil, nil)

	t.Run("visible only", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Lists(w, httptest.NewRequest(http.MethodGet, "/api/lists", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body []presenters.ListSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body, 2)
		assert.Equal(t, "Documents", body[0].Title)
		assert.True(t, body[0].IsLibrary)
	})

	t.Run("with hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Lists(w, httptest.NewRequest(http.MethodGet, "/api/lists?hidden=true", nil))

		var body []presenters.ListSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body, 3)
	})

	reader.AssertExpectations(t)
}

func TestPortalHandlers_Lists_PortalError(t *testing.T) {
	reader := &mocks.MockPortalReader{}
	reader.On("FetchListCollection", mock.Anything).Return(nil, portal.NewError(portal.KindCollectionUnavailable, errors.New("timeout")))
	h := newTestHandlers(reader, nil, nil)

	w := httptest.NewRecorder()
	h.Lists(w, httptest.NewRequest(http.MethodGet, "/api/lists", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "CollectionUnavailable", body.Kind)
	assert.Equal(t, -2, body.Code)
	assert.Contains(t, body.Error, "timeout")
}

func TestPortalHandlers_CurrentUser(t *testing.T) {
	t.Run("signed in", func(t *testing.T) {
		reader := &mocks.MockPortalReader{}
		reader.On("FetchCurrentUser", mock.Anything).Return(helpers.NewTestData().CurrentUser(), nil)
		w := httptest.NewRecorder()

		newTestHandlers(reader, nil, nil).CurrentUser(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body presenters.UserSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Jane Doe", body.DisplayName)
		assert.True(t, body.IsSiteAdmin)
	})

	t.Run("no session", func(t *testing.T) {
		reader := &mocks.MockPortalReader{}
		reader.On("FetchCurrentUser", mock.Anything).Return(nil, nil)
		w := httptest.NewRecorder()

		newTestHandlers(reader, nil, nil).CurrentUser(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestPortalHandlers_Rows(t *testing.T) {
	rows := &portal.RowSet{Rows: helpers.NewTestData().TaskRows(2)}
	open := portal.Eq("Status", portal.TypeText, "Open")

	tests := []struct {
		name       string
		url        string
		title      string
		setup      func(*mocks.MockPortalReader)
		wantStatus int
		wantBody   string
	}{
		{
			name:  "filtered",
			url:   "/api/lists/Tasks/rows?where=Status,Eq,Text,Open&limit=5",
			title: "Tasks",
			setup: func(m *mocks.MockPortalReader) {
				m.On("FetchListRowsByTitle", mock.Anything, "Tasks", open, 5).Return(rows, true, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"count":2`,
		},
		{
			name:  "default limit",
			url:   "/api/lists/Tasks/rows",
			title: "Tasks",
			setup: func(m *mocks.MockPortalReader) {
				m.On("FetchListRowsByTitle", mock.Anything, "Tasks", portal.FilterExpression{}, portal.DefaultRowLimit).Return(rows, true, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"limit":3000`,
		},
		{
			name:  "unknown list",
			url:   "/api/lists/Nope/rows",
			title: "Nope",
			setup: func(m *mocks.MockPortalReader) {
				m.On("FetchListRowsByTitle", mock.Anything, "Nope", portal.FilterExpression{}, portal.DefaultRowLimit).Return(nil, false, nil)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   "not found",
		},
		{
			name:  "portal rejects query",
			url:   "/api/lists/Tasks/rows?caml=%3CEq%3E",
			title: "Tasks",
			setup: func(m *mocks.MockPortalReader) {
				m.On("FetchListRowsByTitle", mock.Anything, "Tasks", portal.RawFilter("<Eq>"), portal.DefaultRowLimit).
					Return(nil, true, portal.NewError(portal.KindRowFetchFailed, errors.New("malformed view")))
			},
			wantStatus: http.StatusBadGateway,
			wantBody:   "RowFetchFailed",
		},
		{
			name:       "bad limit",
			url:        "/api/lists/Tasks/rows?limit=-1",
			title:      "Tasks",
			setup:      func(m *mocks.MockPortalReader) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "positive integer",
		},
		{
			name:       "bad operator",
			url:        "/api/lists/Tasks/rows?where=Status,Like,Text,Open",
			title:      "Tasks",
			setup:      func(m *mocks.MockPortalReader) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "unknown filter operator",
		},
		{
			name:       "missing value",
			url:        "/api/lists/Tasks/rows?where=Status,Eq",
			title:      "Tasks",
			setup:      func(m *mocks.MockPortalReader) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "needs a type and a value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &mocks.MockPortalReader{}
			tt.setup(reader)
			h := newTestHandlers(reader, nil, nil)

			w := httptest.NewRecorder()
			h.Rows(w, withTitle(httptest.NewRequest(http.MethodGet, tt.url, nil), tt.title))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			reader.AssertExpectations(t)
		})
	}
}

func TestPortalHandlers_Health(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		reader := &mocks.MockPortalReader{}
		history := &mocks.MockProbeHistoryRepository{}
		reader.On("ProbeAvailability", mock.Anything).Return(portal.Succeeded())
		reader.On("Endpoint").Return(testEndpoint)
		history.On("Record", mock.Anything, mock.Anything).Return(nil)
		w := httptest.NewRecorder()

		newTestHandlers(reader, history, stubStore{}).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body healthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.True(t, body.Portal.Success)
		require.NotNil(t, body.Database)
		assert.Equal(t, 1, body.Database.Read.OpenConnections)
		history.AssertExpectations(t)
	})

	t.Run("unavailable", func(t *testing.T) {
		reader := &mocks.MockPortalReader{}
		reader.On("ProbeAvailability", mock.Anything).Return(portal.Failed(-1, "list collection could not be loaded", errors.New("timeout")))
		reader.On("Endpoint").Return(testEndpoint)
		w := httptest.NewRecorder()

		newTestHandlers(reader, nil, nil).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var body healthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "unavailable", body.Status)
		assert.Equal(t, -1, body.Portal.ErrorCode)
		assert.Equal(t, "timeout", body.Portal.Cause)
	})

	t.Run("database degraded", func(t *testing.T) {
		reader := &mocks.MockPortalReader{}
		reader.On("ProbeAvailability", mock.Anything).Return(portal.Succeeded())
		reader.On("Endpoint").Return(testEndpoint)
		w := httptest.NewRecorder()

		newTestHandlers(reader, nil, stubStore{err: errors.New("disk I/O error")}).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"degraded"`)
		assert.Contains(t, w.Body.String(), `"database_error":"disk I/O error"`)
	})
}

func TestPortalHandlers_History(t *testing.T) {
	reader := &mocks.MockPortalReader{}
	history := &mocks.MockProbeHistoryRepository{}
	history.On("Recent", mock.Anything, 20).Return([]portal.ProbeRecord{{ID: "p1", Success: true}}, nil)
	h := newTestHandlers(reader, history, nil)

	w := httptest.NewRecorder()
	h.History(w, httptest.NewRequest(http.MethodGet, "/health/history", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"p1"`)

	w = httptest.NewRecorder()
	h.History(w, httptest.NewRequest(http.MethodGet, "/health/history?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	history.AssertExpectations(t)
}

func TestPortalHandlers_Overview(t *testing.T) {
	reader := &mocks.MockPortalReader{}
	reader.On("FetchCurrentUser", mock.Anything).Return(helpers.NewTestData().CurrentUser(), nil)
	reader.On("FetchListCollection", mock.Anything).Return(standardCollection(), nil)
	reader.On("Endpoint").Return(testEndpoint)
	h := newTestHandlers(reader, nil, nil)

	t.Run("HTML", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Overview(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		body := w.Body.String()
		assert.Contains(t, body, "Jane Doe")
		assert.Contains(t, body, `id="list-`+helpers.TasksListID+`"`)
		assert.NotContains(t, body, "Style Library")
	})

	t.Run("JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		h.Overview(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body presenters.PortalOverviewVM
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 1, body.HiddenCount)
		assert.Equal(t, 6, body.TotalItems)
	})
}
