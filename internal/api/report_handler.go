// File path: internal/api/report_handler.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/spinyleaf/internal/common"
	"github.com/nicodishanthj/spinyleaf/internal/metrics"
	"github.com/nicodishanthj/spinyleaf/internal/narrative"
	"github.com/nicodishanthj/spinyleaf/internal/sqlite"
	"github.com/nicodishanthj/spinyleaf/internal/workflow"
)

// handleReportStart runs the pipeline. With ?wait=true the request blocks
// until the report is written; otherwise the run continues in the
// background and its progress is visible on /api/report/status.
func (s *Server) handleReportStart(w http.ResponseWriter, r *http.Request) {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	start, err := s.pipeline.TryStart()
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	if !wait {
		ctx := context.WithoutCancel(r.Context())
		go func() {
			if _, err := start(ctx); err != nil {
				common.Logger().Warn("api: background report run failed", "error", err)
			}
		}()
		writeJSON(w, http.StatusAccepted, reportResponse{Status: "started"})
		return
	}
	result, err := start(r.Context())
	if err != nil {
		writeError(w, reportErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Status: "completed", Result: &result})
}

func reportErrorStatus(err error) int {
	var dataErr *metrics.DataError
	var genErr *narrative.GenerationError
	switch {
	case errors.Is(err, workflow.ErrRunInProgress):
		return http.StatusConflict
	case errors.As(err, &dataErr), errors.Is(err, os.ErrNotExist):
		return http.StatusUnprocessableEntity
	case errors.As(err, &genErr):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleReportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.Status())
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, errCatalogDisabled)
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}
	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runsResponse{Runs: runs})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, errCatalogDisabled)
		return
	}
	detail, err := s.runs.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sqlite.ErrRunNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
