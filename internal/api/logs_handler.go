// File path: internal/api/logs_handler.go
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nicodishanthj/spinyleaf/internal/common"
)

// handleLogs returns captured log entries. Supported query parameters are
// level, component, since (RFC 3339) and limit.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := common.LogFilter{
		MinLevel:  common.ParseLevel(query.Get("level")),
		Component: query.Get("component"),
	}
	if raw := strings.TrimSpace(query.Get("since")); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid since: %w", err))
			return
		}
		filter.Since = since
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		filter.Limit = limit
	}
	writeJSON(w, http.StatusOK, logsResponse{Entries: common.FilterLogEntries(filter)})
}
