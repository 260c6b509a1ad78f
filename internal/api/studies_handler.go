// File path: internal/api/studies_handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/spinyleaf/internal/viewer"
)

func (s *Server) handleStudies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, studiesResponse{Studies: s.studies.Studies()})
}

// handleStudyConfig writes config.json for a study under the viewer root.
// dir is a local path relative to the root; an empty body writes to
// <viewer root>/<study>.
func (s *Server) handleStudyConfig(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req studyConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rel := strings.TrimSpace(req.Dir)
	if rel == "" {
		rel = name
	}
	if !filepath.IsLocal(rel) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("dir %q must be a relative path inside the viewer root", req.Dir))
		return
	}
	dir := filepath.Join(s.cfg.ViewerRoot, rel)
	path, err := s.studies.WriteConfig(dir, name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, viewer.ErrUnknownStudy) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, studyConfigResponse{Study: name, Path: path})
}
