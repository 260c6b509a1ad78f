// File path: internal/metrics/wellbeing.go
package metrics

import (
	"fmt"
	"strings"
)

const (
	WellbeingColumn = "wellbeing_satisfaction"
	// LowRoomThreshold lists rooms worth naming in the wellbeing overview.
	LowRoomThreshold = 3.0
)

// dimensionColumns maps the roll-up column of each dimension in the
// wellbeing table.
var dimensionColumns = []struct {
	Title  string
	Column string
}{
	{Title: "Comfort", Column: "comfort_satisfaction"},
	{Title: "Delight", Column: "delight_satisfaction"},
	{Title: "Social", Column: "social_satisfaction"},
}

type LowRoom struct {
	RoomID string  `json:"room_id"`
	Score  float64 `json:"score"`
}

// WellbeingSummary aggregates the overall wellbeing table.
type WellbeingSummary struct {
	Rooms          int                `json:"rooms"`
	Mean           float64            `json:"mean"`
	Counts         BandCounts         `json:"counts"`
	LowRooms       []LowRoom          `json:"low_rooms"`
	DimensionMeans map[string]float64 `json:"dimension_means"`
}

// LowRoomsText renders "R1 (2.5), R7 (1)" or "None".
func (w WellbeingSummary) LowRoomsText() string {
	if len(w.LowRooms) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(w.LowRooms))
	for _, room := range w.LowRooms {
		parts = append(parts, fmt.Sprintf("%s (%s)", room.RoomID, FormatScore(room.Score)))
	}
	return strings.Join(parts, ", ")
}

// SummarizeWellbeing classifies rooms on the wellbeing scale and averages
// the dimension roll-up columns.
func SummarizeWellbeing(t *Table) (WellbeingSummary, error) {
	required := []string{RoomIDColumn, WellbeingColumn}
	for _, dim := range dimensionColumns {
		required = append(required, dim.Column)
	}
	if err := t.Require(DimensionWellbeing, required...); err != nil {
		return WellbeingSummary{}, err
	}

	summary := WellbeingSummary{
		Rooms:          t.Len(),
		LowRooms:       []LowRoom{},
		DimensionMeans: make(map[string]float64, len(dimensionColumns)),
	}
	var scores []float64
	dimValues := make(map[string][]float64, len(dimensionColumns))
	for i := 0; i < t.Len(); i++ {
		score, ok, err := t.Float(DimensionWellbeing, i, WellbeingColumn)
		if err != nil {
			return WellbeingSummary{}, err
		}
		if ok {
			scores = append(scores, score)
			if score < LowRoomThreshold {
				summary.LowRooms = append(summary.LowRooms, LowRoom{RoomID: t.String(i, RoomIDColumn), Score: Round2(score)})
			}
		}
		for _, dim := range dimensionColumns {
			value, ok, err := t.Float(DimensionWellbeing, i, dim.Column)
			if err != nil {
				return WellbeingSummary{}, err
			}
			if ok {
				dimValues[dim.Title] = append(dimValues[dim.Title], value)
			}
		}
	}
	summary.Mean = Mean(scores)
	summary.Counts = WellbeingScale.Count(scores)
	for _, dim := range dimensionColumns {
		summary.DimensionMeans[dim.Title] = Mean(dimValues[dim.Title])
	}
	return summary, nil
}
