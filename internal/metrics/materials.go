// File path: internal/metrics/materials.go
package metrics

import (
	"errors"
	"regexp"
	"strings"
)

const dimensionMaterials = "materials"

var glazingPattern = regexp.MustCompile(`Sgl|Dbl|Trp`)

var glazingNames = map[string]string{
	"Sgl": "Single glazing",
	"Dbl": "Double glazing",
	"Trp": "Triple glazing",
}

// MaterialsSummary describes the construction of the studied model, taken
// from the first row of the materials table.
type MaterialsSummary struct {
	WindowType           string  `json:"window_type"`
	GlazingType          string  `json:"glazing_type"`
	GlassType            string  `json:"glass_type"`
	WindowsU             float64 `json:"windows_u"`
	WindowNoiseReduction float64 `json:"window_noise_reduction"`
	SHGC                 float64 `json:"shgc"`
	WallR                float64 `json:"wall_r"`
	WallNoiseReduction   float64 `json:"wall_noise_reduction"`
	RoofR                float64 `json:"roof_r"`
	GroundR              float64 `json:"ground_r"`
}

// materialColumns keeps the exported spelling of the source table,
// including Wall_reducrion.
var materialColumns = []string{
	"Window_type", "Windows_U", "Win_reduction", "SHGC",
	"Wall_R", "Wall_reducrion", "Roof_R", "Ground_R",
}

func ReadMaterials(path string) (MaterialsSummary, error) {
	t, err := ReadTable(path)
	if err != nil {
		return MaterialsSummary{}, err
	}
	return SummarizeMaterials(t)
}

func SummarizeMaterials(t *Table) (MaterialsSummary, error) {
	if err := t.Require(dimensionMaterials, materialColumns...); err != nil {
		return MaterialsSummary{}, err
	}
	if t.Len() == 0 {
		return MaterialsSummary{}, &DataError{Dimension: dimensionMaterials, Path: t.Path, Err: errors.New("materials table has no rows")}
	}
	windowType := t.String(0, "Window_type")
	glazing, glass := ParseGlazing(windowType)
	summary := MaterialsSummary{WindowType: windowType, GlazingType: glazing, GlassType: glass}

	fields := []struct {
		column string
		dst    *float64
		places int
	}{
		{"Windows_U", &summary.WindowsU, 2},
		{"Win_reduction", &summary.WindowNoiseReduction, 1},
		{"SHGC", &summary.SHGC, 2},
		{"Wall_R", &summary.WallR, -1},
		{"Wall_reducrion", &summary.WallNoiseReduction, -1},
		{"Roof_R", &summary.RoofR, -1},
		{"Ground_R", &summary.GroundR, -1},
	}
	for _, field := range fields {
		value, ok, err := t.Float(dimensionMaterials, 0, field.column)
		if err != nil {
			return MaterialsSummary{}, err
		}
		if !ok {
			return MaterialsSummary{}, &DataError{Dimension: dimensionMaterials, Path: t.Path, Column: field.column, Row: 1, Err: errors.New("value missing")}
		}
		if field.places >= 0 {
			value = roundTo(value, field.places)
		}
		*field.dst = value
	}
	return summary, nil
}

// ParseGlazing splits a window type such as "Dbl LoE (e2=.1) Clr 3mm/6mm Air"
// into its glazing class and the remaining glass description. Without a
// glazing token the whole string is the glass type.
func ParseGlazing(windowType string) (glazing, glass string) {
	token := glazingPattern.FindString(windowType)
	if token == "" {
		return "Unknown glazing", windowType
	}
	parts := strings.Split(windowType, token)
	return glazingNames[token], strings.TrimSpace(parts[1])
}
