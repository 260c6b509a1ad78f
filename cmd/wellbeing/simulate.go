// File path: cmd/wellbeing/simulate.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nicodishanthj/spinyleaf/internal/config"
	"github.com/nicodishanthj/spinyleaf/internal/simulation"
)

// simulateCommand reads a request such as
//
//	name: sample_01
//	usage: MidriseApartment
//	occupants_per_area: 0.05
//	operable: true
//	geometry: geometry.idf
//	envelope: {window_u: 1.8, shgc: 0.4, wall_r: 3.5, roof_r: 4, ground_r: 2.5}
//
// and runs it through EnergyPlus.
func simulateCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML configuration file")
	requestPath := fs.String("request", "", "YAML file describing the sample")
	weather := fs.String("weather", "", "EPW weather file (overrides simulation.weather)")
	renderOnly := fs.Bool("render-only", false, "print the model instead of running it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*requestPath) == "" {
		return errors.New("--request is required")
	}
	req, err := readRequest(*requestPath)
	if err != nil {
		return err
	}
	if *renderOnly {
		model, err := simulation.RenderModel(req)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(model)
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if trimmed := strings.TrimSpace(*weather); trimmed != "" {
		cfg.Simulation.Weather = trimmed
	}
	outcome, err := simulation.NewRunner(cfg.Simulation).Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println(renderSimulation(req.Name, outcome))
	return nil
}

func readRequest(path string) (simulation.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return simulation.Request{}, fmt.Errorf("read simulation request: %w", err)
	}
	var req simulation.Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return simulation.Request{}, fmt.Errorf("parse simulation request %s: %w", path, err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return simulation.Request{}, fmt.Errorf("simulation request %s: name required", path)
	}
	return req, nil
}
