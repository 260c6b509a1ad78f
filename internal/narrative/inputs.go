// File path: internal/narrative/inputs.go
package narrative

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nicodishanthj/spinyleaf/internal/metrics"
	"github.com/nicodishanthj/spinyleaf/internal/ranking"
)

const none = "None"

// DimensionValues exposes a factor dimension summary to a template:
// means_<factor>, issues, factor_issue_counts and worst_factors.
func DimensionValues(s metrics.DimensionSummary) map[string]any {
	values := make(map[string]any, len(s.Factors)+3)
	counts := make([]string, 0, len(s.Factors))
	for _, factor := range s.Factors {
		values["means_"+factor] = metrics.FormatScore(s.Means[factor])
		counts = append(counts, fmt.Sprintf("%s: %d", factor, s.IssueCounts[factor]))
	}
	values["factor_issue_counts"] = strings.Join(counts, ", ")
	values["issues"] = joinOrNone(s.Issues, "\n")
	values["worst_factors"] = joinOrNone(s.WorstFactors, ", ")
	return values
}

// MaterialsValues exposes the construction summary as materials_* fields.
func MaterialsValues(m metrics.MaterialsSummary) map[string]any {
	return map[string]any{
		"materials_glazing_type":           m.GlazingType,
		"materials_glass_type":             m.GlassType,
		"materials_windows_u":              formatFloat(m.WindowsU),
		"materials_shgc":                   formatFloat(m.SHGC),
		"materials_window_noise_reduction": formatFloat(m.WindowNoiseReduction),
		"materials_wall_r_insulation":      formatFloat(m.WallR),
		"materials_wall_noise_reduction":   formatFloat(m.WallNoiseReduction),
		"materials_roof_r_insulation":      formatFloat(m.RoofR),
		"materials_ground_r_insulation":    formatFloat(m.GroundR),
	}
}

// WellbeingValues exposes the overall summary together with the dimension
// ranking derived from it.
func WellbeingValues(w metrics.WellbeingSummary) map[string]any {
	ranks := ranking.RankDimensions(w.DimensionMeans)
	values := map[string]any{
		"avg":              metrics.FormatScore(w.Mean),
		"satisfied":        w.Counts.Satisfied,
		"neutral":          w.Counts.Neutral,
		"dissatisfied":     w.Counts.Dissatisfied,
		"low_rooms":        w.LowRoomsText(),
		"ranking":          ranking.FormatRanking(ranks),
		"lowest_dimension": none,
		"lowest_score":     "n/a",
	}
	if lowest, ok := ranking.Lowest(ranks); ok {
		values["lowest_dimension"] = lowest.Dimension
		values["lowest_score"] = metrics.FormatScore(lowest.Score)
	}
	for dim, mean := range w.DimensionMeans {
		values["mean_"+strings.ToLower(dim)] = metrics.FormatScore(mean)
	}
	return values
}

// Merge combines value maps; later maps win on key collisions.
func Merge(maps ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func joinOrNone(items []string, sep string) string {
	if len(items) == 0 {
		return none
	}
	return strings.Join(items, sep)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
