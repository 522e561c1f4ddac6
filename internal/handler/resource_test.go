package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/member-crm/internal/config"
	"github.com/maxviazov/member-crm/internal/handler"
	"github.com/maxviazov/member-crm/internal/model"
	"github.com/maxviazov/member-crm/internal/repository/memstore"
	"github.com/maxviazov/member-crm/internal/service"
)

type apiError struct {
	Error       string               `json:"error"`
	FieldErrors []service.FieldError `json:"field_errors"`
	RequestID   string               `json:"request_id"`
}

type sortState struct {
	Field string `json:"field"`
	Dir   string `json:"dir"`
}

type memberPage struct {
	Page struct {
		Items      []model.Member `json:"items"`
		Page       int            `json:"page"`
		TotalCount int            `json:"total_count"`
		TotalPages int            `json:"total_pages"`
		HasNext    bool           `json:"has_next"`
	} `json:"page"`
	Sort          sortState            `json:"sort"`
	ActiveFilters int                  `json:"active_filters"`
	Filtering     bool                 `json:"filtering"`
	SortLinks     map[string]sortState `json:"sort_links"`
}

func newAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := memstore.NewRegistry()
	svcs := service.New(reg, service.Deps{
		Paging: config.PaginationConfig{DefaultPageSize: 5, MaxPageSize: 20},
		Logger: zerolog.New(io.Discard),
	}, time.Minute)
	return handler.NewRouter(reg.Pinger, svcs, zerolog.New(io.Discard))
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, handler.APIV1Prefix+path, rd))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func seedMembers(t *testing.T, r http.Handler, n int) model.MembershipType {
	t.Helper()
	w := do(t, r, http.MethodPost, "/membership-types", map[string]any{"name": "Gold", "annual_dues_cents": 50000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	mt := decode[model.MembershipType](t, w)

	for i := 1; i <= n; i++ {
		w := do(t, r, http.MethodPost, "/members", map[string]any{
			"name":               fmt.Sprintf("Member %02d", i),
			"membership_type_id": mt.ID,
			"joined_on":          time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC),
			"active":             i%2 == 1,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	return mt
}

func TestResource_CRUDRoundTrip(t *testing.T) {
	r := newAPI(t)
	mt := seedMembers(t, r, 1)
	assert.Equal(t, int64(1), mt.RowVersion)

	w := do(t, r, http.MethodGet, "/members/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode[model.Member](t, w)
	assert.Equal(t, "Member 01", m.Name)

	m.Name = "Renamed"
	w = do(t, r, http.MethodPut, "/members/1", m)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[model.Member](t, w)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, m.RowVersion+1, updated.RowVersion)

	// the earlier copy is now stale
	w = do(t, r, http.MethodPut, "/members/1", m)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decode[apiError](t, w).Error)

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/members/1?version=%d", m.RowVersion), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/members/1?version=%d", updated.RowVersion), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/members/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResource_CreateValidation(t *testing.T) {
	r := newAPI(t)

	w := do(t, r, http.MethodPost, "/members", map[string]any{"name": "", "email": "nope"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[apiError](t, w)
	assert.Equal(t, "invalid_input", body.Error)
	fields := map[string]bool{}
	for _, fe := range body.FieldErrors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["membership_type_id"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, handler.APIV1Prefix+"/members", bytes.NewBufferString("{not json")))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "body", decode[apiError](t, w).FieldErrors[0].Field)
}

func TestResource_BadIDs(t *testing.T) {
	r := newAPI(t)
	for _, path := range []string{"/members/abc", "/members/0", "/members/-1"} {
		w := do(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	w := do(t, r, http.MethodDelete, "/members/1?version=x", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "version", decode[apiError](t, w).FieldErrors[0].Field)
}

func TestResource_ListPagingAndFilters(t *testing.T) {
	r := newAPI(t)
	mt := seedMembers(t, r, 12)

	w := do(t, r, http.MethodGet, "/members", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[memberPage](t, w)
	assert.Equal(t, 12, p.Page.TotalCount)
	assert.Equal(t, 3, p.Page.TotalPages)
	assert.Len(t, p.Page.Items, 5)
	assert.Equal(t, "name", p.Sort.Field)
	assert.False(t, p.Filtering)
	assert.Equal(t, "desc", p.SortLinks["name"].Dir)

	w = do(t, r, http.MethodGet, "/members?page=3", nil)
	p = decode[memberPage](t, w)
	assert.Len(t, p.Page.Items, 2)
	assert.False(t, p.Page.HasNext)

	w = do(t, r, http.MethodGet, "/members?page=99", nil)
	assert.Equal(t, 3, decode[memberPage](t, w).Page.Page)

	w = do(t, r, http.MethodGet, fmt.Sprintf("/members?q=MEMBER%%200&active=true&membership_type_id=%d&sort=name&dir=desc", mt.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p = decode[memberPage](t, w)
	assert.Equal(t, 3, p.ActiveFilters)
	assert.True(t, p.Filtering)
	// Member 01..09 match "member 0"; odd ones are active.
	assert.Equal(t, 5, p.Page.TotalCount)
	assert.Equal(t, "Member 09", p.Page.Items[0].Name)

	w = do(t, r, http.MethodGet, "/members?toggle=joined&page=2", nil)
	p = decode[memberPage](t, w)
	assert.Equal(t, 1, p.Page.Page)
	assert.Equal(t, "joined", p.Sort.Field)
	assert.Equal(t, "asc", p.Sort.Dir)
}

func TestResource_ListRejectsMalformedParams(t *testing.T) {
	r := newAPI(t)
	w := do(t, r, http.MethodGet, "/members?page=two&active=maybe&organization_id=x", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var fields []string
	for _, fe := range decode[apiError](t, w).FieldErrors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"page", "active", "organization_id"}, fields)
}

func TestResource_HyphenatedPaths(t *testing.T) {
	r := newAPI(t)
	for _, path := range []string{"/membership-types", "/naics-codes", "/production-emails", "/organizations", "/contacts",
		"/opportunities", "/interactions", "/cancellations", "/notes", "/dashboard"} {
		w := do(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestDashboard(t *testing.T) {
	r := newAPI(t)
	seedMembers(t, r, 3)

	w := do(t, r, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[model.DashboardSummary](t, w)
	assert.Equal(t, 3, sum.Totals["members"])
	assert.Equal(t, 2, sum.ActiveMembers)
	assert.Equal(t, 1, sum.InactiveMembers)
}

func TestRequestID(t *testing.T) {
	r := newAPI(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, handler.APIV1Prefix+"/members/999", nil)
	req.Header.Set(handler.RequestIDHeader, "trace-abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-abc", w.Header().Get(handler.RequestIDHeader))
	assert.Equal(t, "trace-abc", decode[apiError](t, w).RequestID)

	w = do(t, r, http.MethodGet, "/members", nil)
	assert.Len(t, w.Header().Get(handler.RequestIDHeader), 36)
}
