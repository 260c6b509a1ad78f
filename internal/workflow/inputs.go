// File path: internal/workflow/inputs.go
package workflow

import (
	"fmt"

	"github.com/nicodishanthj/spinyleaf/internal/config"
	"github.com/nicodishanthj/spinyleaf/internal/metrics"
	"github.com/nicodishanthj/spinyleaf/internal/narrative"
	"github.com/nicodishanthj/spinyleaf/internal/ranking"
)

// Inputs holds every summary derived from the metric tables.
type Inputs struct {
	Wellbeing  metrics.WellbeingSummary   `json:"wellbeing"`
	Dimensions []metrics.DimensionSummary `json:"dimensions"`
	Materials  metrics.MaterialsSummary   `json:"materials"`
}

// Dimension returns the summary for a factor dimension.
func (in Inputs) Dimension(name string) (metrics.DimensionSummary, bool) {
	for _, s := range in.Dimensions {
		if s.Dimension == name {
			return s, true
		}
	}
	return metrics.DimensionSummary{}, false
}

func tablePath(paths config.PathsConfig, dimension string) string {
	switch dimension {
	case metrics.DimensionComfort:
		return paths.Comfort
	case metrics.DimensionDelight:
		return paths.Delight
	case metrics.DimensionSocial:
		return paths.Social
	default:
		return paths.Wellbeing
	}
}

// LoadInputs reads and summarizes the wellbeing, materials and dimension
// tables. The first data error stops loading.
func LoadInputs(paths config.PathsConfig) (Inputs, error) {
	var in Inputs
	wellbeing, err := metrics.ReadTable(paths.Wellbeing)
	if err != nil {
		return Inputs{}, err
	}
	if in.Wellbeing, err = metrics.SummarizeWellbeing(wellbeing); err != nil {
		return Inputs{}, err
	}
	if in.Materials, err = metrics.ReadMaterials(paths.Materials); err != nil {
		return Inputs{}, err
	}
	for _, spec := range metrics.StandardSpecs() {
		table, err := metrics.ReadTable(tablePath(paths, spec.Dimension))
		if err != nil {
			return Inputs{}, err
		}
		summary, err := metrics.Summarize(table, spec)
		if err != nil {
			return Inputs{}, err
		}
		in.Dimensions = append(in.Dimensions, summary)
	}
	return in, nil
}

// Values returns the template values for one descriptor's dimension. Issue
// counts are checked before they reach a prompt.
func (in Inputs) Values(dimension string) (map[string]any, error) {
	if dimension == metrics.DimensionWellbeing {
		return narrative.WellbeingValues(in.Wellbeing), nil
	}
	summary, ok := in.Dimension(dimension)
	if !ok {
		return nil, fmt.Errorf("workflow: no metric table for dimension %q", dimension)
	}
	if err := ranking.Validate(summary.IssueCounts); err != nil {
		return nil, fmt.Errorf("workflow: %s: %w", dimension, err)
	}
	values := narrative.DimensionValues(summary)
	if dimension == metrics.DimensionComfort {
		values = narrative.Merge(values, narrative.MaterialsValues(in.Materials))
	}
	return values, nil
}
