// File path: internal/simulation/runner.go
package simulation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nicodishanthj/spinyleaf/internal/common"
	"github.com/nicodishanthj/spinyleaf/internal/common/process"
	"github.com/nicodishanthj/spinyleaf/internal/common/telemetry"
	"github.com/nicodishanthj/spinyleaf/internal/config"
	"github.com/nicodishanthj/spinyleaf/internal/construction"
	"github.com/nicodishanthj/spinyleaf/internal/results"
)

// ModelFileName is the input file handed to EnergyPlus.
const ModelFileName = "model.idf"

// ErrNoWeather is returned when no weather file is configured.
var ErrNoWeather = errors.New("simulation: weather file required")

// DefaultOutputs are the comfort variables read back after a run.
var DefaultOutputs = []string{
	results.OperativeTemperature,
	results.RelativeHumidity,
	results.CO2Concentration,
}

// Request describes one sample to simulate. Geometry is the path of an IDF
// fragment holding zones and surfaces; it is appended verbatim.
type Request struct {
	Name             string                `json:"name" yaml:"name"`
	Envelope         construction.Envelope `json:"envelope" yaml:"envelope"`
	Usage            construction.Usage    `json:"usage" yaml:"usage"`
	OccupantsPerArea float64               `json:"occupants_per_area" yaml:"occupants_per_area"`
	Operable         bool                  `json:"operable" yaml:"operable"`
	Geometry         string                `json:"geometry" yaml:"geometry"`
	Outputs          []string              `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Outcome points at the run directory and carries the comfort results.
type Outcome struct {
	Dir      string          `json:"dir"`
	Model    string          `json:"model"`
	Duration time.Duration   `json:"duration"`
	Comfort  results.Comfort `json:"comfort"`
}

type Runner struct {
	binary  string
	weather string
	workDir string
	timeout time.Duration
}

func NewRunner(cfg config.SimulationConfig) *Runner {
	return &Runner{
		binary:  cfg.Binary,
		weather: cfg.Weather,
		workDir: cfg.WorkDir,
		timeout: cfg.Timeout,
	}
}

// RenderModel builds the IDF text for a request: outputs, constructions,
// program loads, ventilation control, then the geometry fragment.
func RenderModel(req Request) ([]byte, error) {
	set, err := construction.BuildSet("cset_"+req.Name, req.Envelope)
	if err != nil {
		return nil, err
	}
	program, err := construction.ProgramFor(req.Usage, req.OccupantsPerArea)
	if err != nil {
		return nil, err
	}
	vent, err := construction.VentilationFor(req.Usage, req.Operable)
	if err != nil {
		return nil, err
	}
	outputs := req.Outputs
	if len(outputs) == 0 {
		outputs = DefaultOutputs
	}

	var buf bytes.Buffer
	iw := construction.NewIDFWriter(&buf)
	iw.Object("Version", "23.2")
	construction.WriteOutputs(iw, outputs)
	construction.WriteSet(iw, set)
	construction.WriteProgram(iw, program)
	construction.WriteVentilation(iw, "vent_"+req.Name, vent)
	if strings.TrimSpace(req.Geometry) != "" {
		geometry, err := os.ReadFile(filepath.Clean(req.Geometry))
		if err != nil {
			return nil, fmt.Errorf("read geometry: %w", err)
		}
		iw.Raw(string(geometry))
	}
	if err := iw.Err(); err != nil {
		return nil, fmt.Errorf("render model: %w", err)
	}
	return buf.Bytes(), nil
}

// Run writes model.idf into a fresh run directory, runs EnergyPlus on it and
// reads the comfort outputs from eplusout.sql.
func (r *Runner) Run(ctx context.Context, req Request) (Outcome, error) {
	ctx, end := telemetry.StartSpan(ctx, "simulation.run")
	outcome, err := r.run(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	telemetry.RecordSimulationRun(status)
	end("status", status)
	return outcome, err
}

func (r *Runner) run(ctx context.Context, req Request) (Outcome, error) {
	logger := common.Logger()
	if strings.TrimSpace(req.Name) == "" {
		req.Name = "sample"
	}
	if strings.TrimSpace(r.weather) == "" {
		return Outcome{}, ErrNoWeather
	}
	binary, err := r.resolveBinary()
	if err != nil {
		return Outcome{}, err
	}
	model, err := RenderModel(req)
	if err != nil {
		return Outcome{}, err
	}
	dir, err := r.runDir(req.Name)
	if err != nil {
		return Outcome{}, err
	}
	modelPath := filepath.Join(dir, ModelFileName)
	if err := os.WriteFile(modelPath, model, 0o644); err != nil {
		return Outcome{}, fmt.Errorf("write model: %w", err)
	}
	logger.Info("simulation: model written", "sample", req.Name, "path", modelPath)

	res, err := process.Run(ctx, process.RunConfig{
		Name:    "energyplus",
		Command: binary,
		Args:    []string{"-w", r.weather, "-d", dir, "-x", modelPath},
		WorkDir: dir,
		Timeout: r.timeout,
	})
	if err != nil {
		return Outcome{Dir: dir, Model: modelPath, Duration: res.Duration}, fmt.Errorf("simulation: run %s: %w", req.Name, err)
	}

	reader, err := results.OpenDir(dir)
	if err != nil {
		return Outcome{Dir: dir, Model: modelPath, Duration: res.Duration}, err
	}
	defer reader.Close()
	comfort, err := reader.Comfort(ctx)
	if err != nil {
		return Outcome{Dir: dir, Model: modelPath, Duration: res.Duration}, fmt.Errorf("simulation: read results: %w", err)
	}
	logger.Info("simulation: finished", "sample", req.Name, "zones", len(comfort.OperativeTemperature), "dur", res.Duration)
	return Outcome{Dir: dir, Model: modelPath, Duration: res.Duration, Comfort: comfort}, nil
}

func (r *Runner) resolveBinary() (string, error) {
	binary := strings.TrimSpace(r.binary)
	if binary == "" {
		binary = "energyplus"
	}
	if strings.ContainsRune(binary, filepath.Separator) {
		return binary, nil
	}
	return process.BinaryPath(binary)
}

func (r *Runner) runDir(name string) (string, error) {
	base := r.workDir
	if strings.TrimSpace(base) == "" {
		base = filepath.Join(os.TempDir(), "wellbeing-sim")
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	dir, err := os.MkdirTemp(base, name+"-")
	if err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	return dir, nil
}
