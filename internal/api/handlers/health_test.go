package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matiasleandrokruk/llm-server/internal/version"
)

type healthCheckerStub struct{ healthy bool }

func (s healthCheckerStub) HealthCheck() bool { return s.healthy }

func TestHealthHandler_Health(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		checker    HealthChecker
		wantStatus string
		wantLLM    string
	}{
		{"healthy", healthCheckerStub{healthy: true}, "healthy", "healthy"},
		{"provider down", healthCheckerStub{healthy: false}, "degraded", "unhealthy"},
		{"no provider", nil, "degraded", "unhealthy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler(tc.checker, "test")
			start := h.startedAt
			h.now = func() time.Time { return start.Add(90 * time.Second) }

			rr := httptest.NewRecorder()
			h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			got := decodeBody(t, rr)
			if got["status"] != tc.wantStatus {
				t.Errorf("status = %v; want %s", got["status"], tc.wantStatus)
			}
			services, _ := got["services"].(map[string]any)
			if services["llm"] != tc.wantLLM {
				t.Errorf("services.llm = %v; want %s", services["llm"], tc.wantLLM)
			}
			if got["uptime"] != float64(90) {
				t.Errorf("uptime = %v; want 90", got["uptime"])
			}
			ts, _ := got["timestamp"].(string)
			if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
				t.Errorf("timestamp %q is not RFC 3339: %v", ts, err)
			}
		})
	}
}

func TestHealthHandler_Status(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(healthCheckerStub{healthy: true}, "production")
	rr := httptest.NewRecorder()
	h.Status(rr, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	got := decodeBody(t, rr)
	if got["service"] != "llm-server" || got["version"] != version.Version || got["environment"] != "production" {
		t.Errorf("unexpected status body %v", got)
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound || decodeBody(t, rr)["error"] != "Not found" {
		t.Errorf("NotFound: %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	MethodNotAllowed(rr, httptest.NewRequest(http.MethodDelete, "/health", nil))
	if rr.Code != http.StatusMethodNotAllowed || decodeBody(t, rr)["error"] != "Method not allowed" {
		t.Errorf("MethodNotAllowed: %d %s", rr.Code, rr.Body.String())
	}
}
