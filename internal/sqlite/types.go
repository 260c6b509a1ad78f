// File path: internal/sqlite/types.go
package sqlite

import "time"

// Run status values.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Section status values.
const (
	SectionAssembled = "assembled"
	SectionSkipped   = "skipped"
)

// Run is one pipeline execution.
type Run struct {
	ID         string     `db:"id" json:"id"`
	Status     string     `db:"status" json:"status"`
	Provider   string     `db:"provider" json:"provider"`
	Policy     string     `db:"policy" json:"policy"`
	OutputPath string     `db:"output_path" json:"output_path,omitempty"`
	Error      string     `db:"error" json:"error,omitempty"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// SectionRecord is the outcome of one report section within a run.
type SectionRecord struct {
	ID           int64  `db:"id" json:"-"`
	RunID        string `db:"run_id" json:"-"`
	Position     int    `db:"position" json:"position"`
	Dimension    string `db:"dimension" json:"dimension"`
	Status       string `db:"status" json:"status"`
	IssueCount   int    `db:"issue_count" json:"issue_count"`
	WorstFactors string `db:"worst_factors" json:"worst_factors"`
	Message      string `db:"message" json:"message,omitempty"`
}

// RunDetail is a run together with its sections in report order.
type RunDetail struct {
	Run
	Sections []SectionRecord `json:"sections"`
}
