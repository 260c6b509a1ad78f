// File path: internal/metrics/metrics_test.go
package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, csv string) *Table {
	t.Helper()
	table, err := ParseTable("fixture.csv", strings.NewReader(csv))
	require.NoError(t, err)
	return table
}

func TestComfortIssueFormat(t *testing.T) {
	table := parse(t, "room_ids,floor_level,extreme_hot_satisf,daylight_satisf,sound_satisf,air_quali\n"+
		"R12,3,0.40,1.5,1.5,1.5\n")
	summary, err := Summarize(table, ComfortSpec())
	require.NoError(t, err)
	assert.Equal(t, []string{"- R12 (Floor 3): thermal = 0.4"}, summary.Issues)
	assert.Equal(t, 1, summary.IssueCounts["thermal"])
	assert.Equal(t, []string{"thermal"}, summary.WorstFactors)
}

func TestSummarizeMeansAndThreshold(t *testing.T) {
	table := parse(t, "room_ids,floor_level,extreme_hot_satisf,daylight_satisf,sound_satisf,air_quali\n"+
		"A1,1.0,0.66,0.2,1.0,1.4\n"+
		"A2,1,0.65,0.3,1.0,1.4\n"+
		"A3,2,1.333,,1.0,1.4\n")
	summary, err := Summarize(table, ComfortSpec())
	require.NoError(t, err)

	// 0.66 is neutral, not an issue.
	assert.Equal(t, 1, summary.IssueCounts["thermal"])
	assert.Equal(t, 2, summary.IssueCounts["daylight"])
	assert.Equal(t, 0.88, summary.Means["thermal"])
	// blank cells drop out of the mean
	assert.Equal(t, 0.25, summary.Means["daylight"])
	assert.Equal(t, []string{
		"- A2 (Floor 1): thermal = 0.65",
		"- A1 (Floor 1): daylight = 0.2",
		"- A2 (Floor 1): daylight = 0.3",
	}, summary.Issues)
	assert.Equal(t, []string{"daylight"}, summary.WorstFactors)
	assert.Equal(t, 3, summary.TotalIssues())
}

func TestDelightExcludesCoreRooms(t *testing.T) {
	table := parse(t, "room_ids,floor_level,views_overall_satisf,balcony_satisf,space_size_satisf\n"+
		"CORE_1,1,0.1,0.1,0.1\n"+
		"APT_1,1,0.5,1.5,1.5\n")
	summary, err := Summarize(table, DelightSpec())
	require.NoError(t, err)
	assert.Equal(t, []string{"- APT_1 (Floor 1): views = 0.5"}, summary.Issues)
	assert.Equal(t, 0, summary.IssueCounts["balcony"])
	// core rooms still count toward the mean
	assert.Equal(t, 0.3, summary.Means["views"])
}

func TestSummarizeEmptyTable(t *testing.T) {
	table := parse(t, "room_ids,floor_level,social_amount_satisf,social_distribution_satisf,social_green_satisf\n")
	summary, err := Summarize(table, SocialSpec())
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.Means["social_amount"])
	assert.Empty(t, summary.Issues)
	assert.Empty(t, summary.WorstFactors)
}

func TestSummarizeMissingColumn(t *testing.T) {
	table := parse(t, "room_ids,floor_level,social_amount_satisf\nS1,1,0.2\n")
	_, err := Summarize(table, SocialSpec())
	var dataErr *DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, "social_distribution_satisf", dataErr.Column)
	assert.Equal(t, "social", dataErr.Dimension)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "fixture.csv")
}

func TestSummarizeRejectsNonNumeric(t *testing.T) {
	table := parse(t, "room_ids,floor_level,social_amount_satisf,social_distribution_satisf,social_green_satisf\n"+
		"S1,1,0.2,high,1\n")
	_, err := Summarize(table, SocialSpec())
	var dataErr *DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, 1, dataErr.Row)
	assert.True(t, errors.Is(err, ErrNotNumeric))
}

func TestScalesAreDistinct(t *testing.T) {
	assert.Equal(t, Satisfied, FactorScale.Classify(1.5))
	assert.Equal(t, Dissatisfied, WellbeingScale.Classify(1.5))
	assert.Equal(t, Neutral, FactorScale.Classify(0.66))
	assert.Equal(t, Satisfied, WellbeingScale.Classify(4))
	assert.Equal(t, Neutral, WellbeingScale.Classify(2))
	assert.Equal(t, "dissatisfied", Dissatisfied.String())
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.67, Mean([]float64{0.5, 0.5, 1.0}))
	assert.Equal(t, "3", FormatScore(3.0))
	assert.Equal(t, "1.25", FormatScore(1.2549))
}

func TestSummarizeWellbeing(t *testing.T) {
	table := parse(t, "room_ids,floor_area,wellbeing_satisfaction,comfort_satisfaction,delight_satisfaction,social_satisfaction\n"+
		"R1,50,4.5,1.2,0.9,1.1\n"+
		"R2,40,2.5,1.0,0.7,1.3\n"+
		"R3,45,1.0,0.8,0.5,1.5\n")
	summary, err := SummarizeWellbeing(table)
	require.NoError(t, err)
	assert.Equal(t, 2.67, summary.Mean)
	assert.Equal(t, BandCounts{Satisfied: 1, Neutral: 1, Dissatisfied: 1}, summary.Counts)
	assert.Equal(t, "R2 (2.5), R3 (1)", summary.LowRoomsText())
	assert.Equal(t, 1.0, summary.DimensionMeans["Comfort"])
	assert.Equal(t, 0.7, summary.DimensionMeans["Delight"])
	assert.Equal(t, 1.3, summary.DimensionMeans["Social"])

	none := WellbeingSummary{}
	assert.Equal(t, "None", none.LowRoomsText())
}

func TestReadMaterials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Materials.csv")
	doc := "Window_type,Windows_U,Win_reduction,SHGC,Wall_R,Wall_reducrion,Roof_R,Ground_R\n" +
		"Dbl LoE (e2=.1) Clr 3mm/6mm Air,1.7612,31.26,0.5678,3.5,45,4,2.5\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	m, err := ReadMaterials(path)
	require.NoError(t, err)
	assert.Equal(t, "Double glazing", m.GlazingType)
	assert.Equal(t, "LoE (e2=.1) Clr 3mm/6mm Air", m.GlassType)
	assert.Equal(t, 1.76, m.WindowsU)
	assert.Equal(t, 31.3, m.WindowNoiseReduction)
	assert.Equal(t, 0.57, m.SHGC)
	assert.Equal(t, 45.0, m.WallNoiseReduction)
}

func TestParseGlazingUnknown(t *testing.T) {
	glazing, glass := ParseGlazing("Generic Clear 6mm")
	assert.Equal(t, "Unknown glazing", glazing)
	assert.Equal(t, "Generic Clear 6mm", glass)
}

func TestMaterialsRequiresRow(t *testing.T) {
	table := parse(t, "Window_type,Windows_U,Win_reduction,SHGC,Wall_R,Wall_reducrion,Roof_R,Ground_R\n")
	_, err := SummarizeMaterials(table)
	var dataErr *DataError
	require.True(t, errors.As(err, &dataErr))
}
