// Package http wires the chi route tree and the HTTP server for the
// PolicyLens API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/internal/interfaces/http/handlers"
	"github.com/turtacn/policylens/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and cross-cutting collaborators the
// route tree needs.
type RouterConfig struct {
	DocumentHandler   *handlers.DocumentHandler
	ComparisonHandler *handlers.ComparisonHandler
	HealthHandler     *handlers.HealthHandler

	// MetricsHandler, when set, is mounted at MetricsPath.
	MetricsHandler http.Handler
	MetricsPath    string

	// RequestRecorder, when set, records per-request metrics.
	RequestRecorder middleware.RequestRecorder

	Logger logging.Logger
}

// NewRouter constructs the complete route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger))
	}
	if cfg.RequestRecorder != nil {
		r.Use(middleware.RequestMetrics(cfg.RequestRecorder))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerDocumentRoutes(api, cfg.DocumentHandler)
		registerComparisonRoutes(api, cfg.ComparisonHandler)
	})

	return r
}

func registerDocumentRoutes(r chi.Router, h *handlers.DocumentHandler) {
	if h == nil {
		return
	}
	r.Route("/documents", func(dr chi.Router) {
		dr.Post("/", h.Upload)
		dr.Get("/", h.List)
		dr.Get("/{id}", h.Get)
		dr.Delete("/{id}", h.Delete)
	})
}

func registerComparisonRoutes(r chi.Router, h *handlers.ComparisonHandler) {
	if h == nil {
		return
	}
	r.Route("/comparisons", func(cr chi.Router) {
		cr.Post("/", h.Create)
		cr.Get("/", h.List)
		cr.Get("/{id}", h.Get)
		cr.Get("/{id}/report", h.GetReport)
		cr.Delete("/{id}", h.Delete)
	})
}
