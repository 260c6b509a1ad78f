// File path: internal/viewer/viewer_test.go
package viewer

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	assert.Equal(t, 46, catalog.Len())

	da, err := catalog.Lookup("Daylight_Autonomy")
	require.NoError(t, err)
	assert.Equal(t, "DA %", da.Unit)
	assert.Equal(t, [2]float64{0, 100}, da.Range)
	assert.Equal(t, "ecotect", da.ColorSet)

	wb, err := catalog.Lookup("Wellbeing_Fostered_by_Design")
	require.NoError(t, err)
	assert.Equal(t, 6.0, wb.Max())
	assert.Equal(t, "benefit_harm", wb.ColorSet)

	occ, err := catalog.Lookup("Occupancy_Rate")
	require.NoError(t, err)
	assert.Equal(t, 0.016, occ.Min())

	assert.Equal(t, "Horizontal_Views", catalog.Studies()[0].Name)
}

func TestLookupUnknownStudy(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	_, err = catalog.Lookup("daylight_autonomy")
	assert.True(t, errors.Is(err, ErrUnknownStudy))
}

func TestParseCatalogRejectsBadEntries(t *testing.T) {
	_, err := ParseCatalog([]byte("studies:\n  - name: A\n    unit: x\n    range: [5, 1]\n    color_set: c\n"))
	assert.Error(t, err)
	_, err = ParseCatalog([]byte("studies:\n  - name: A\n    range: [0, 1]\n    color_set: c\n  - name: A\n    range: [0, 1]\n    color_set: c\n"))
	assert.ErrorContains(t, err, "duplicate")
}

func TestWriteConfigShape(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results", "co2")
	path, err := WriteConfig(dir, "CO2_Levels")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	layers := doc["data"].([]any)
	require.Len(t, layers, 1)
	layer := layers[0].(map[string]any)
	assert.Equal(t, "CO2_Levels", layer["identifier"])
	assert.Equal(t, "grid", layer["object_type"])
	assert.Equal(t, "ppm", layer["unit"])
	assert.Equal(t, filepath.ToSlash(dir), layer["path"])
	assert.Equal(t, false, layer["hide"])

	legend := layer["legend_parameters"].(map[string]any)
	assert.Equal(t, false, legend["hide_legend"])
	assert.Equal(t, 400.0, legend["min"])
	assert.Equal(t, 1000.0, legend["max"])
	assert.Equal(t, "black_to_white", legend["color_set"])
	labels := legend["label_parameters"].(map[string]any)
	assert.Equal(t, []any{0.0, 0.0, 0.0}, labels["color"])
	assert.Equal(t, 0.0, labels["size"])
	assert.Equal(t, true, labels["bold"])
}

func TestWriteConfigUnknownStudy(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteConfig(dir, "Nope")
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, ConfigFileName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestVisibilityPercent(t *testing.T) {
	got := VisibilityPercent([][]bool{
		{true, false, false, true},
		{false, false},
		{},
		{true},
	})
	assert.Equal(t, []float64{50, 0, 0, 100}, got)
}
