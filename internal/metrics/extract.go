// File path: internal/metrics/extract.go
package metrics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nicodishanthj/spinyleaf/internal/ranking"
)

// FactorSpec binds a factor name to its score column. Rows whose identifier
// starts with one of ExcludePrefixes never count as issues for the factor.
type FactorSpec struct {
	Name            string   `yaml:"name" json:"name"`
	Column          string   `yaml:"column" json:"column"`
	ExcludePrefixes []string `yaml:"exclude_prefixes,omitempty" json:"exclude_prefixes,omitempty"`
}

// DimensionSpec lists the columns a dimension table must provide.
type DimensionSpec struct {
	Dimension   string       `yaml:"dimension" json:"dimension"`
	IDColumn    string       `yaml:"id_column" json:"id_column"`
	FloorColumn string       `yaml:"floor_column" json:"floor_column"`
	Factors     []FactorSpec `yaml:"factors" json:"factors"`
}

// FactorNames returns the factor names in declaration order.
func (s DimensionSpec) FactorNames() []string {
	names := make([]string, 0, len(s.Factors))
	for _, f := range s.Factors {
		names = append(names, f.Name)
	}
	return names
}

func (s DimensionSpec) columns() []string {
	cols := []string{s.IDColumn, s.FloorColumn}
	for _, f := range s.Factors {
		cols = append(cols, f.Column)
	}
	return cols
}

// RoomMetricRow is one spatial unit's scores keyed by factor name. Factors
// with a blank cell are absent from Scores.
type RoomMetricRow struct {
	RoomID string
	Floor  string
	Scores map[string]float64
}

// DimensionSummary aggregates one dimension table.
type DimensionSummary struct {
	Dimension    string             `json:"dimension"`
	Rooms        int                `json:"rooms"`
	Factors      []string           `json:"factors"`
	Means        map[string]float64 `json:"means"`
	Issues       []string           `json:"issues"`
	IssueCounts  map[string]int     `json:"issue_counts"`
	WorstFactors []string           `json:"worst_factors"`
}

// TotalIssues sums the per-factor issue counts.
func (s DimensionSummary) TotalIssues() int {
	total := 0
	for _, count := range s.IssueCounts {
		total += count
	}
	return total
}

// LoadRows converts the table into typed rows after checking every column
// the spec names.
func LoadRows(t *Table, spec DimensionSpec) ([]RoomMetricRow, error) {
	if err := t.Require(spec.Dimension, spec.columns()...); err != nil {
		return nil, err
	}
	rows := make([]RoomMetricRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := RoomMetricRow{
			RoomID: t.String(i, spec.IDColumn),
			Floor:  floorLabel(t.String(i, spec.FloorColumn)),
			Scores: make(map[string]float64, len(spec.Factors)),
		}
		for _, factor := range spec.Factors {
			value, ok, err := t.Float(spec.Dimension, i, factor.Column)
			if err != nil {
				return nil, err
			}
			if ok {
				row.Scores[factor.Name] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Summarize computes per-factor means, issue lines, issue counts and the
// worst factors for one dimension table. An empty table yields zero means and
// no issues.
func Summarize(t *Table, spec DimensionSpec) (DimensionSummary, error) {
	rows, err := LoadRows(t, spec)
	if err != nil {
		return DimensionSummary{}, err
	}
	return SummarizeRows(spec, rows), nil
}

// SummarizeRows aggregates rows that were already loaded.
func SummarizeRows(spec DimensionSpec, rows []RoomMetricRow) DimensionSummary {
	summary := DimensionSummary{
		Dimension:   spec.Dimension,
		Rooms:       len(rows),
		Factors:     spec.FactorNames(),
		Means:       make(map[string]float64, len(spec.Factors)),
		Issues:      []string{},
		IssueCounts: make(map[string]int, len(spec.Factors)),
	}
	for _, factor := range spec.Factors {
		var values []float64
		count := 0
		for _, row := range rows {
			value, ok := row.Scores[factor.Name]
			if !ok {
				continue
			}
			values = append(values, value)
			if !FactorScale.IsIssue(value) || excluded(row.RoomID, factor.ExcludePrefixes) {
				continue
			}
			count++
			summary.Issues = append(summary.Issues, FormatIssue(row.RoomID, row.Floor, factor.Name, value))
		}
		summary.Means[factor.Name] = Mean(values)
		summary.IssueCounts[factor.Name] = count
	}
	summary.WorstFactors = ranking.WorstFactors(summary.IssueCounts, summary.Factors)
	return summary
}

// FormatIssue renders "- R12 (Floor 3): thermal = 0.4".
func FormatIssue(roomID, floor, factor string, value float64) string {
	return fmt.Sprintf("- %s (Floor %s): %s = %s", roomID, floor, factor, FormatScore(value))
}

func excluded(roomID string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(roomID, prefix) {
			return true
		}
	}
	return false
}

// floorLabel prints integral numeric floors without a fractional part so a
// column exported as 3.0 still reads "3".
func floorLabel(raw string) string {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return raw
}
