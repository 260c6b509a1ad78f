// File path: internal/api/types.go
package api

import (
	"github.com/nicodishanthj/spinyleaf/internal/common"
	"github.com/nicodishanthj/spinyleaf/internal/sqlite"
	"github.com/nicodishanthj/spinyleaf/internal/viewer"
	"github.com/nicodishanthj/spinyleaf/internal/workflow"
)

type reportResponse struct {
	Status string           `json:"status"`
	Result *workflow.Result `json:"result,omitempty"`
}

type runsResponse struct {
	Runs []sqlite.Run `json:"runs"`
}

type studiesResponse struct {
	Studies []viewer.Study `json:"studies"`
}

type studyConfigRequest struct {
	Dir string `json:"dir"`
}

type studyConfigResponse struct {
	Study string `json:"study"`
	Path  string `json:"path"`
}

type logsResponse struct {
	Entries []common.LogEntry `json:"entries"`
}
