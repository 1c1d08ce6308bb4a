// Route registration and go-chi router setup.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matiasleandrokruk/llm-server/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/llm-server/internal/api/middleware"
	"github.com/matiasleandrokruk/llm-server/internal/infra/config"
	"github.com/matiasleandrokruk/llm-server/internal/infra/llm"
)

const compressionLevel = 5

// NewRouter creates and configures a new chi router with all routes.
// provider is shared read-only by every request.
func NewRouter(cfg config.Config, provider llm.Provider, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apmiddleware.SecurityHeaders)
	r.Use(apmiddleware.RequestLogger(logger))
	r.Use(apmiddleware.Recoverer(logger, cfg.IsDevelopment()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	r.Use(middleware.Compress(compressionLevel))
	if cfg.Server.MaxRequestBytes > 0 {
		r.Use(middleware.RequestSize(cfg.Server.MaxRequestBytes))
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	// Liveness and static status - used by load balancers and health probes
	healthHandler := handlers.NewHealthHandler(provider, cfg.Server.Environment)
	r.Get("/health", healthHandler.Health) // GET /health
	r.Get("/status", healthHandler.Status) // GET /status

	completionHandler := handlers.NewCompletionHandler(provider, logger)
	r.Route("/api", func(r chi.Router) {
		r.Post("/completion", completionHandler.Complete) // POST /api/completion
	})

	return r
}
