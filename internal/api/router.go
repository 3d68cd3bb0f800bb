// Package api exposes extracted property data over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/taxdeedflow/extraction-engine/internal/cache"
	"github.com/taxdeedflow/extraction-engine/internal/observability"
	"github.com/taxdeedflow/extraction-engine/internal/pipeline"
	"github.com/taxdeedflow/extraction-engine/internal/storage"
)

// RouterConfig holds router-level settings.
type RouterConfig struct {
	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, repos *storage.Repositories, pipe *pipeline.Pipeline, cacheClient cache.Client, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	// Health check (unauthenticated)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"extraction-engine"}`))
	})

	propertyHandler := NewPropertyHandler(logger, repos, cacheClient, cfg.CacheTTL)
	jobHandler := NewJobHandler(logger, repos)
	processHandler := NewProcessHandler(logger, repos, pipe)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/counties/{countyId}", func(r chi.Router) {
			r.Get("/properties", propertyHandler.ListByCounty)
			r.Post("/process", processHandler.ProcessCounty)
		})

		r.Route("/documents/{documentId}", func(r chi.Router) {
			r.Get("/properties", propertyHandler.ListByDocument)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/{jobId}", jobHandler.Get)
		})
	})

	return r
}
