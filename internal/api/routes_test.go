// Wiring tests for NewRouter: routes, middleware chain and the end-to-end
// completion flow against stub and httptest-backed providers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matiasleandrokruk/llm-server/internal/infra/config"
	"github.com/matiasleandrokruk/llm-server/internal/infra/llm"
	"github.com/matiasleandrokruk/llm-server/internal/infra/logging"
)

type stubProvider struct {
	text    string
	healthy bool
}

func (s *stubProvider) Completion(_ context.Context, _ []llm.Message, _ *llm.Params) (string, error) {
	return s.text, nil
}
func (s *stubProvider) HealthCheck() bool                     { return s.healthy }
func (s *stubProvider) ListModels(_ context.Context) []string { return []string{} }

func testConfig(env string) config.Config {
	return config.Config{
		Server: config.ServerConfig{
			Environment:     env,
			MaxRequestBytes: 10 << 20,
			CORSOrigins:     []string{"*"},
		},
	}
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewRouter_HealthEndpoint(t *testing.T) {
	t.Parallel()

	router := NewRouter(testConfig("test"), &stubProvider{healthy: true}, logging.Discard())
	w := serve(t, router, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"healthy"`) {
		t.Errorf("expected healthy status, got %q", w.Body.String())
	}
}

func TestNewRouter_StatusEndpoint(t *testing.T) {
	t.Parallel()

	router := NewRouter(testConfig("production"), &stubProvider{healthy: true}, logging.Discard())
	w := serve(t, router, http.MethodGet, "/status", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /status, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"environment":"production"`) {
		t.Errorf("expected environment in status, got %q", w.Body.String())
	}
}

func TestNewRouter_Completion_EndToEnd(t *testing.T) {
	t.Parallel()

	router := NewRouter(testConfig("test"), &stubProvider{text: "Hi there", healthy: true}, logging.Discard())
	w := serve(t, router, http.MethodPost, "/api/completion", `{"input":"Hello, world!"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if strings.TrimSpace(w.Body.String()) != `{"content":"Hi there"}` {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestNewRouter_Completion_Invalid(t *testing.T) {
	t.Parallel()

	router := NewRouter(testConfig("test"), &stubProvider{healthy: true}, logging.Discard())
	w := serve(t, router, http.MethodPost, "/api/completion", `{"input":""}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"details":[`) {
		t.Errorf("expected details list, got %q", w.Body.String())
	}
}

// TestNewRouter_Completion_OpenAIForwarding drives the real OpenAI adapter
// against an httptest upstream and checks which params reach the wire.
func TestNewRouter_Completion_OpenAIForwarding(t *testing.T) {
	t.Parallel()

	var upstream map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&upstream) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hi there"}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	provider := llm.NewOpenAIProvider(config.ProviderConfig{
		APIKey: "k", ProjectID: "p", Model: "gpt-3.5-turbo", BaseURL: srv.URL, Timeout: 5 * time.Second,
	}, logging.Discard())
	router := NewRouter(testConfig("test"), provider, logging.Discard())

	w := serve(t, router, http.MethodPost, "/api/completion",
		`{"input":"Hello, world!","params":{"temperature":0.9,"top_p":0.8,"top_k":40,"reasoning_effort":5}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if upstream["temperature"] != 0.9 || upstream["top_p"] != 0.8 {
		t.Errorf("expected temperature 0.9 and top_p 0.8, got %v / %v", upstream["temperature"], upstream["top_p"])
	}
	if _, ok := upstream["top_k"]; ok {
		t.Error("top_k must not reach the provider")
	}
	if _, ok := upstream["reasoning_effort"]; ok {
		t.Error("reasoning_effort must not reach the provider")
	}
}

func TestNewRouter_Completion_ProviderFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	provider := llm.NewOpenAIProvider(config.ProviderConfig{
		APIKey: "bad", Model: "gpt-3.5-turbo", BaseURL: srv.URL, Timeout: 5 * time.Second,
	}, logging.Discard())
	router := NewRouter(testConfig("production"), provider, logging.Discard())

	w := serve(t, router, http.MethodPost, "/api/completion", `{"input":"Hello"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q", w.Body.String())
	}
	if body["error"] != "Internal server error" {
		t.Errorf("error = %q", body["error"])
	}
	if !strings.HasPrefix(body["message"], "OpenAI completion failed: ") || !strings.Contains(body["message"], "Incorrect API key provided") {
		t.Errorf("message = %q", body["message"])
	}
}

func TestNewRouter_PanicIsMaskedOutsideDevelopment(t *testing.T) {
	t.Parallel()

	router := NewRouter(testConfig("production"), &stubProvider{healthy: true}, logging.Discard())
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) { panic("secret detail") })

	w := serve(t, router, http.MethodGet, "/boom", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret detail") {
		t.Errorf("panic detail leaked: %q", w.Body.String())
	}
}

func TestNewRouter_PayloadTooLarge(t *testing.T) {
	t.Parallel()

	cfg := testConfig("test")
	cfg.Server.MaxRequestBytes = 32
	router := NewRouter(cfg, &stubProvider{text: "x", healthy: true}, logging.Discard())

	w := serve(t, router, http.MethodPost, "/api/completion", `{"input":"`+strings.Repeat("a", 100)+`"}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestNewRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := NewRouter(testConfig("test"), &stubProvider{healthy: true}, logging.Discard())

	if w := serve(t, router, http.MethodGet, "/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := serve(t, router, http.MethodGet, "/api/completion", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestNewRouter_CORSAndCompression(t *testing.T) {
	t.Parallel()

	router := NewRouter(testConfig("test"), &stubProvider{healthy: true}, logging.Discard())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q; want *", got)
	}
	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Errorf("Content-Encoding = %q; want gzip", got)
	}
}

func TestNewRouter_SecurityHeaders(t *testing.T) {
	t.Parallel()

	router := NewRouter(testConfig("production"), &stubProvider{healthy: true}, logging.Discard())
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) { panic("boom") })

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "SAMEORIGIN",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": "default-src 'self';base-uri 'self';frame-ancestors 'self';object-src 'none'",
	}
	for _, path := range []string{"/health", "/nope", "/boom"} {
		w := serve(t, router, http.MethodGet, path, "")
		for k, v := range want {
			if got := w.Header().Get(k); got != v {
				t.Errorf("GET %s: %s = %q; want %q", path, k, got, v)
			}
		}
	}
}
