// File path: internal/simulation/runner_test.go
package simulation

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodishanthj/spinyleaf/internal/common/process"
	"github.com/nicodishanthj/spinyleaf/internal/config"
	"github.com/nicodishanthj/spinyleaf/internal/construction"
	"github.com/nicodishanthj/spinyleaf/internal/results"
)

func sampleRequest() Request {
	return Request{
		Name:             "s1",
		Envelope:         construction.Envelope{WindowU: 1.6, SHGC: 0.45, WallR: 3, RoofR: 4, GroundR: 2},
		Usage:            construction.MidriseApartment,
		OccupantsPerArea: 0.03,
		Operable:         true,
	}
}

// fakeEnergyPlus writes a script that copies FIXTURE_SQL into the -d
// directory, which is the fourth argument.
func fakeEnergyPlus(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "energyplus")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func writeResultsFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.sql")
	db, err := sqlx.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range []string{
		`CREATE TABLE Time (TimeIndex INTEGER PRIMARY KEY, WarmupFlag INTEGER)`,
		`CREATE TABLE ReportDataDictionary (ReportDataDictionaryIndex INTEGER PRIMARY KEY, KeyValue TEXT, Name TEXT, ReportingFrequency TEXT, Units TEXT)`,
		`CREATE TABLE ReportData (ReportDataIndex INTEGER PRIMARY KEY, TimeIndex INTEGER, ReportDataDictionaryIndex INTEGER, Value REAL)`,
		`INSERT INTO Time VALUES (1, 0), (2, 0)`,
		`INSERT INTO ReportDataDictionary VALUES (1, 'APT_1', 'Zone Operative Temperature', 'Hourly', 'C')`,
		`INSERT INTO ReportData (TimeIndex, ReportDataDictionaryIndex, Value) VALUES (1, 1, 22), (2, 1, 24)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestRenderModel(t *testing.T) {
	geometry := filepath.Join(t.TempDir(), "zones.idf")
	require.NoError(t, os.WriteFile(geometry, []byte("Zone,\n    APT_1;"), 0o644))
	req := sampleRequest()
	req.Geometry = geometry

	model, err := RenderModel(req)
	require.NoError(t, err)
	text := string(model)
	assert.Contains(t, text, "Output:Variable,\n    *,\n    Zone Air CO2 Concentration,\n    Hourly;")
	assert.Contains(t, text, "wallR_3")
	assert.Contains(t, text, "prog_MidriseApartment_people")
	assert.Contains(t, text, "Zone,\n    APT_1;\n")
}

func TestRenderModelLookupFailure(t *testing.T) {
	req := sampleRequest()
	req.Usage = construction.Usage(42)
	_, err := RenderModel(req)
	var lookup *construction.LookupError
	assert.True(t, errors.As(err, &lookup))
}

func TestRunReadsResults(t *testing.T) {
	t.Setenv("FIXTURE_SQL", writeResultsFixture(t))
	binary := fakeEnergyPlus(t, `cp "$FIXTURE_SQL" "$4/eplusout.sql"`)
	work := t.TempDir()
	runner := NewRunner(config.SimulationConfig{Binary: binary, Weather: "site.epw", WorkDir: work, Timeout: 10 * time.Second})

	outcome, err := runner.Run(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, work, filepath.Dir(outcome.Dir))
	assert.FileExists(t, outcome.Model)
	require.Len(t, outcome.Comfort.OperativeTemperature, 1)
	assert.Equal(t, 23.0, outcome.Comfort.OperativeTemperature[0].Mean())
	assert.Empty(t, outcome.Comfort.CO2)
}

func TestRunPropagatesExitFailure(t *testing.T) {
	binary := fakeEnergyPlus(t, `echo "** Severe  ** missing zone" >&2; exit 3`)
	runner := NewRunner(config.SimulationConfig{Binary: binary, Weather: "site.epw", WorkDir: t.TempDir(), Timeout: 10 * time.Second})

	_, err := runner.Run(context.Background(), sampleRequest())
	var exitErr *process.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
}

func TestRunWithoutResults(t *testing.T) {
	binary := fakeEnergyPlus(t, `exit 0`)
	runner := NewRunner(config.SimulationConfig{Binary: binary, Weather: "site.epw", WorkDir: t.TempDir(), Timeout: 10 * time.Second})
	_, err := runner.Run(context.Background(), sampleRequest())
	assert.True(t, errors.Is(err, results.ErrNoResults))
}

func TestRunRequiresWeather(t *testing.T) {
	runner := NewRunner(config.SimulationConfig{Binary: "/bin/true"})
	_, err := runner.Run(context.Background(), sampleRequest())
	assert.True(t, errors.Is(err, ErrNoWeather))
}
