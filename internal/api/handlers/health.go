package handlers

import (
	"net/http"
	"time"

	"github.com/matiasleandrokruk/llm-server/internal/version"
)

// HealthChecker reports provider liveness without network I/O.
type HealthChecker interface {
	HealthCheck() bool
}

// HealthHandler serves the liveness and status endpoints.
type HealthHandler struct {
	checker     HealthChecker
	environment string
	startedAt   time.Time
	now         func() time.Time
}

// NewHealthHandler creates a handler; uptime is measured from this call.
func NewHealthHandler(checker HealthChecker, environment string) *HealthHandler {
	return &HealthHandler{
		checker:     checker,
		environment: environment,
		startedAt:   time.Now(),
		now:         time.Now,
	}
}

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Uptime    float64        `json:"uptime"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	LLM string `json:"llm"`
}

type statusResponse struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// Health handles GET /health. The service is "degraded" when the provider
// client is unavailable; the endpoint itself always answers 200.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "healthy", Services: healthServices{LLM: "healthy"}}
	if h.checker == nil || !h.checker.HealthCheck() {
		resp.Status = "degraded"
		resp.Services.LLM = "unhealthy"
	}
	now := h.now()
	resp.Timestamp = now.UTC().Format(time.RFC3339Nano)
	resp.Uptime = now.Sub(h.startedAt).Seconds()
	writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /status.
func (h *HealthHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Service:     version.Service,
		Version:     version.Version,
		Environment: h.environment,
	})
}
