// File path: internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/spinyleaf/internal/common"
	"github.com/nicodishanthj/spinyleaf/internal/common/telemetry"
	"github.com/nicodishanthj/spinyleaf/internal/sqlite"
	"github.com/nicodishanthj/spinyleaf/internal/viewer"
	"github.com/nicodishanthj/spinyleaf/internal/workflow"
)

// RunStore lists recorded report runs. *sqlite.Store satisfies it.
type RunStore interface {
	ListRuns(ctx context.Context, limit int) ([]sqlite.Run, error)
	GetRun(ctx context.Context, id string) (sqlite.RunDetail, error)
}

var errCatalogDisabled = errors.New("run catalog disabled")

type Server struct {
	router   chi.Router
	pipeline *workflow.Pipeline
	runs     RunStore
	studies  *viewer.Catalog
	cfg      Config
}

// Config controls the optional parts of the API server.
type Config struct {
	// ViewerRoot is where study configs are written when a request names no
	// directory.
	ViewerRoot string
}

// DefaultConfig returns the standard configuration used when no overrides are
// provided.
func DefaultConfig() Config {
	return Config{ViewerRoot: filepath.Join("data", "viewer")}
}

// Merge overlays non-empty values from the override onto the base
// configuration.
func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.ViewerRoot) != "" {
		result.ViewerRoot = strings.TrimSpace(override.ViewerRoot)
	}
	return result
}

// NewServer wires the HTTP routes. runs may be nil when the catalog is
// disabled.
func NewServer(pipeline *workflow.Pipeline, runs RunStore, cfg *Config) (*Server, error) {
	logger := common.Logger()
	if pipeline == nil {
		return nil, errors.New("pipeline required")
	}
	studies, err := viewer.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	configuration := DefaultConfig()
	if cfg != nil {
		configuration = configuration.Merge(*cfg)
	}
	srv := &Server{
		router:   chi.NewRouter(),
		pipeline: pipeline,
		runs:     runs,
		studies:  studies,
		cfg:      configuration,
	}
	srv.routes()
	logger.Info("api: server ready", "catalog", runs != nil, "studies", studies.Len())
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Method(http.MethodGet, "/metrics", telemetry.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/report", s.handleReportStart)
		r.Get("/report/status", s.handleReportStatus)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
		r.Get("/studies", s.handleStudies)
		r.Post("/studies/{name}/config", s.handleStudyConfig)
		r.Get("/logs", s.handleLogs)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
