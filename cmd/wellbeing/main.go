// File path: cmd/wellbeing/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nicodishanthj/spinyleaf/internal/api"
	"github.com/nicodishanthj/spinyleaf/internal/common"
	"github.com/nicodishanthj/spinyleaf/internal/config"
	"github.com/nicodishanthj/spinyleaf/internal/llm"
	"github.com/nicodishanthj/spinyleaf/internal/narrative"
	"github.com/nicodishanthj/spinyleaf/internal/sqlite"
	"github.com/nicodishanthj/spinyleaf/internal/viewer"
	"github.com/nicodishanthj/spinyleaf/internal/workflow"
)

const usage = `usage: wellbeing <command> [flags]

commands:
  report          generate the wellbeing report (default)
  serve           run the HTTP API
  simulate        run one EnergyPlus sample from a YAML request
  viewer-config   write config.json for a study
  studies         list the known result studies
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := common.Logger()
	if err := godotenv.Load(); err != nil {
		logger.Debug("wellbeing: .env file not loaded", "error", err)
	} else {
		logger.Info("wellbeing: environment loaded from .env")
	}

	command := "report"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "report":
		err = reportCommand(ctx, args)
	case "serve":
		err = serveCommand(ctx, args)
	case "simulate":
		err = simulateCommand(ctx, args)
	case "viewer-config":
		err = viewerConfigCommand(args)
	case "studies":
		err = studiesCommand()
	case "help", "-h", "--help":
		fmt.Print(usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		logger.Error("wellbeing: command failed", "command", command, "error", err)
		fmt.Fprintln(os.Stderr, renderError(err))
		return 1
	}
	return 0
}

func reportCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML configuration file")
	policy := fs.String("policy", "", "failure policy override (abort or skip)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if trimmed := strings.TrimSpace(*policy); trimmed != "" {
		cfg.Report.FailurePolicy = strings.ToLower(trimmed)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	pipeline, store, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	result, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(renderReport(result))
	return nil
}

func serveCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML configuration file")
	addr := fs.String("addr", "", "listen address (overrides server.addr)")
	viewerRoot := fs.String("viewer-root", api.DefaultConfig().ViewerRoot, "directory for study configs written through the API")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if trimmed := strings.TrimSpace(*addr); trimmed != "" {
		cfg.Server.Addr = trimmed
	}

	pipeline, store, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	var runs api.RunStore
	if store != nil {
		defer store.Close()
		runs = store
	}
	server, err := api.NewServer(pipeline, runs, &api.Config{ViewerRoot: *viewerRoot})
	if err != nil {
		return err
	}

	logger := common.Logger()
	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: server, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()
	reachable := cfg.Server.Addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("wellbeing: server listening", "addr", cfg.Server.Addr, "health", "/healthz")
	logger.Info("wellbeing: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("wellbeing: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func viewerConfigCommand(args []string) error {
	fs := flag.NewFlagSet("viewer-config", flag.ContinueOnError)
	study := fs.String("study", "", "study name, e.g. DA or CO2_Levels")
	dir := fs.String("dir", ".", "results directory that receives config.json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*study) == "" {
		return errors.New("--study is required")
	}
	path, err := viewer.WriteConfig(*dir, *study)
	if err != nil {
		return err
	}
	fmt.Println(renderNote("viewer config written", path))
	return nil
}

func studiesCommand() error {
	catalog, err := viewer.DefaultCatalog()
	if err != nil {
		return err
	}
	fmt.Println(renderStudies(catalog.Studies()))
	return nil
}

// buildPipeline wires the provider, the narrative generator and, when
// enabled, the run catalog. The returned store is nil when the catalog is
// disabled.
func buildPipeline(cfg config.Config) (*workflow.Pipeline, *sqlite.Store, error) {
	logger := common.Logger()
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	generator := narrative.NewGenerator(provider, workflow.GeneratorOptions(cfg.LLM))
	logger.Info("wellbeing: llm provider ready", "provider", provider.Name(), "model", cfg.LLM.Model)

	var store *sqlite.Store
	var catalog workflow.Catalog
	if cfg.Catalog.Enabled {
		storeCfg, err := sqlite.ConfigFrom(cfg.Catalog)
		if err != nil {
			return nil, nil, err
		}
		store, err = sqlite.Open(storeCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open run catalog: %w", err)
		}
		catalog = store
		logger.Info("wellbeing: run catalog ready", "path", storeCfg.Path)
	} else {
		logger.Info("wellbeing: run catalog disabled")
	}
	pipeline, err := workflow.New(cfg, generator, nil, catalog)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, err
	}
	return pipeline, store, nil
}
