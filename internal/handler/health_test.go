package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/member-crm/internal/handler"
)

// stubPinger implements handler.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func newHealthEngine(p handler.Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// nil services: only the health routes are mounted
	handler.Register(r, p, nil)
	return r
}

func TestHealthRoutes(t *testing.T) {
	down := errors.New("db down")
	cases := []struct {
		name   string
		method string
		path   string
		err    error
		want   int
	}{
		{"ready", http.MethodGet, handler.APIV1Prefix + "/health/ready", nil, http.StatusOK},
		{"ready unavailable", http.MethodGet, handler.APIV1Prefix + "/health/ready", down, http.StatusServiceUnavailable},
		{"live ignores database", http.MethodGet, handler.APIV1Prefix + "/health/live", down, http.StatusOK},
		{"root live", http.MethodGet, "/live", nil, http.StatusOK},
		{"root ready", http.MethodGet, "/ready", nil, http.StatusOK},
		{"root ready unavailable", http.MethodGet, "/ready", down, http.StatusServiceUnavailable},
		{"unknown path", http.MethodGet, "/no-such", nil, http.StatusNotFound},
		{"resources not mounted", http.MethodGet, handler.APIV1Prefix + "/members", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newHealthEngine(stubPinger{err: tc.err}).ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d, body=%s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestReadiness_MethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	// Gin returns 404 for an unregistered method unless HandleMethodNotAllowed is set.
	newHealthEngine(stubPinger{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, handler.APIV1Prefix+"/health/ready", nil))
	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 404 or 405, got %d", w.Code)
	}
}
