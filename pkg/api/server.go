// Package api serves the treemap pipeline over HTTP.
//
// # Endpoints
//
//	GET  /health        liveness check with build version
//	POST /api/treemap   build treemap data
//	POST /api/figure    build and render (plotly by default)
//
// Both POST endpoints take a [Request]: the source table, either as JSON
// records or CSV text, and the pipeline options. Errors are returned as
// {"error": "...", "code": "..."} with a 4xx status for invalid input and
// 5xx otherwise.
//
// # Usage
//
//	runner := pipeline.NewRunner(redisCache, cache.NewScopedKeyer(nil, "tooltree:"), logger)
//	srv := api.NewServer(runner, logger, api.Config{})
//	http.ListenAndServe(":8080", srv)
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tooltree/pkg/buildinfo"
	"github.com/matzehuels/tooltree/pkg/pipeline"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 32 << 20

// Config configures the server.
type Config struct {
	// MaxBodyBytes bounds request bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	log    *log.Logger
	cfg    Config
}

// NewServer creates and configures the HTTP server.
func NewServer(runner *pipeline.Runner, logger *log.Logger, cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		log:    logger,
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/treemap", s.handleTreemap)
		r.Post("/figure", s.handleFigure)
	})

	s.router = r
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok", Info: buildinfo.Get()})
}
