// File path: internal/workflow/pipeline.go
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nicodishanthj/spinyleaf/internal/agent"
	"github.com/nicodishanthj/spinyleaf/internal/common"
	"github.com/nicodishanthj/spinyleaf/internal/common/telemetry"
	"github.com/nicodishanthj/spinyleaf/internal/config"
	"github.com/nicodishanthj/spinyleaf/internal/metrics"
	"github.com/nicodishanthj/spinyleaf/internal/narrative"
	"github.com/nicodishanthj/spinyleaf/internal/report"
	"github.com/nicodishanthj/spinyleaf/internal/sqlite"
)

// Catalog records runs. *sqlite.Store satisfies it.
type Catalog interface {
	StartRun(ctx context.Context, provider, policy string) (sqlite.Run, error)
	FinishRun(ctx context.Context, id, status, outputPath, message string, sections []sqlite.SectionRecord) error
}

// SectionResult summarizes one assembled section.
type SectionResult struct {
	Title        string        `json:"title"`
	Dimension    string        `json:"dimension"`
	Status       string        `json:"status"`
	IssueCount   int           `json:"issue_count"`
	WorstFactors []string      `json:"worst_factors"`
	Message      string        `json:"message,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// Result is what a pipeline run produced.
type Result struct {
	RunID    string            `json:"run_id"`
	Outputs  map[string]string `json:"outputs"`
	Sections []SectionResult   `json:"sections"`
	Warnings []string          `json:"warnings,omitempty"`
	Inputs   Inputs            `json:"inputs"`
	Document *report.Document  `json:"-"`
}

// Pipeline reads the metric tables, narrates each dimension and writes the
// report. Runs are serialized.
type Pipeline struct {
	cfg         config.Config
	generator   agent.Generator
	descriptors []narrative.Descriptor
	catalog     Catalog
	logger      *slog.Logger

	runMu   sync.Mutex
	stateMu sync.Mutex
	state   State
}

// New builds a pipeline. When descriptors is empty they are loaded from
// cfg.LLM.Descriptors or the built-in set. catalog may be nil.
func New(cfg config.Config, generator agent.Generator, descriptors []narrative.Descriptor, catalog Catalog) (*Pipeline, error) {
	if generator == nil {
		return nil, errors.New("workflow: generator required")
	}
	if len(descriptors) == 0 {
		var err error
		if descriptors, err = LoadDescriptors(cfg.LLM); err != nil {
			return nil, err
		}
	}
	return &Pipeline{
		cfg:         cfg,
		generator:   generator,
		descriptors: descriptors,
		catalog:     catalog,
		logger:      common.Logger(),
	}, nil
}

// LoadDescriptors reads the descriptor file named in the LLM config, falling
// back to the built-in descriptors.
func LoadDescriptors(cfg config.LLMConfig) ([]narrative.Descriptor, error) {
	if path := strings.TrimSpace(cfg.Descriptors); path != "" {
		return narrative.LoadDescriptors(path)
	}
	return narrative.DefaultDescriptors()
}

// GeneratorOptions maps the LLM config onto generator options.
func GeneratorOptions(cfg config.LLMConfig) narrative.Options {
	opts := narrative.DefaultOptions()
	opts.Timeout = cfg.Timeout
	opts.MaxRetries = cfg.MaxRetries
	opts.Backoff = cfg.Backoff
	opts.RatePerMinute = cfg.RatePerMinute
	return opts
}

func (p *Pipeline) Config() config.Config { return p.cfg }

func (p *Pipeline) providerName() string {
	if named, ok := p.generator.(interface{ ProviderName() string }); ok {
		return named.ProviderName()
	}
	return "custom"
}

// ErrRunInProgress is returned by TryStart while another run holds the
// pipeline.
var ErrRunInProgress = errors.New("workflow: report run already in progress")

// Run executes one report generation, waiting for any run in progress.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.runLocked(ctx)
}

// TryStart reserves the pipeline without waiting. The returned function
// performs the run and releases the reservation; call it exactly once.
func (p *Pipeline) TryStart() (func(context.Context) (Result, error), error) {
	if !p.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	var once sync.Once
	return func(ctx context.Context) (Result, error) {
		defer once.Do(p.runMu.Unlock)
		return p.runLocked(ctx)
	}, nil
}

func (p *Pipeline) runLocked(ctx context.Context) (Result, error) {
	ctx, end := telemetry.StartSpan(ctx, "workflow.run")
	runID := p.startCatalogRun(ctx)
	p.beginState(runID)
	p.logger.Info("workflow: report run started", "run", runID, "policy", p.cfg.Report.FailurePolicy)

	result, step, err := p.run(ctx, runID)
	p.endState(step, err)
	p.finishCatalogRun(ctx, result, err)

	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
		p.logger.Error("workflow: report run failed", "run", runID, "error", err)
	} else {
		p.logger.Info("workflow: report run completed", "run", runID, "outputs", len(result.Outputs), "warnings", len(result.Warnings))
	}
	telemetry.RecordPipelineRun(outcome)
	end("outcome", outcome)
	return result, err
}

func (p *Pipeline) run(ctx context.Context, runID string) (Result, int, error) {
	result := Result{RunID: runID, Outputs: map[string]string{}}

	p.setStep(stepLoad, StepRunning, "")
	inputs, err := LoadInputs(p.cfg.Paths)
	if err != nil {
		return result, stepLoad, err
	}
	result.Inputs = inputs
	p.setStep(stepLoad, StepCompleted, fmt.Sprintf("Loaded %d rooms and %d dimension tables", inputs.Wellbeing.Rooms, len(inputs.Dimensions)))

	p.setStep(stepNarrate, StepRunning, "")
	tasks := make([]agent.Task, 0, len(p.descriptors))
	for _, d := range p.descriptors {
		values, err := inputs.Values(d.Dimension)
		if err != nil {
			return result, stepNarrate, err
		}
		tasks = append(tasks, agent.Task{Descriptor: d, Values: values})
	}
	coordinator := agent.NewCoordinator(p.generator, p.cfg.Report.FailurePolicy)
	outcomes, err := coordinator.Run(ctx, tasks)
	if err != nil {
		return result, stepNarrate, err
	}
	skipped := 0
	for _, o := range outcomes {
		if o.Skipped() {
			skipped++
		}
	}
	p.setStep(stepNarrate, StepCompleted, fmt.Sprintf("Generated %d narratives, %d skipped", len(outcomes)-skipped, skipped))

	p.setStep(stepAssemble, StepRunning, "")
	doc, sections, warnings, err := p.assemble(inputs, outcomes)
	if err != nil {
		return result, stepAssemble, err
	}
	result.Document = doc
	result.Sections = sections
	result.Warnings = warnings
	p.setStep(stepAssemble, StepCompleted, fmt.Sprintf("%d sections, %d warnings", len(doc.Sections), len(warnings)))

	if err := ctx.Err(); err != nil {
		return result, stepSave, err
	}
	p.setStep(stepSave, StepRunning, "")
	if err := p.save(doc, result.Outputs); err != nil {
		return result, stepSave, err
	}
	p.setStep(stepSave, StepCompleted, strings.Join(sortedValues(result.Outputs), ", "))
	return result, stepSave, nil
}

// assemble builds the document from the outcomes in descriptor order and
// closes it with the collected references.
func (p *Pipeline) assemble(inputs Inputs, outcomes []agent.Outcome) (*report.Document, []SectionResult, []string, error) {
	doc := report.NewDocument(p.cfg.Report.Title)
	asm := report.NewAssembler()
	var bib *report.Bibliography
	sections := make([]SectionResult, 0, len(outcomes))
	for i, outcome := range outcomes {
		d := p.descriptors[i]
		section := report.Section{
			Title:     d.Title,
			Dimension: d.Dimension,
			Text:      outcome.Text,
			ImageDir:  p.cfg.Paths.ImageDir(d.Dimension),
			Skipped:   outcome.Skipped(),
		}
		res := SectionResult{Title: d.Title, Dimension: d.Dimension, Status: sqlite.SectionAssembled, Duration: outcome.Duration}
		if outcome.Skipped() {
			section.Text = fmt.Sprintf("[Narrative unavailable: %v]", outcome.Err)
			res.Status = sqlite.SectionSkipped
			res.Message = outcome.Err.Error()
		}
		res.IssueCount, res.WorstFactors = sectionIssues(inputs, d.Dimension)
		var err error
		if bib, err = asm.AddSection(doc, bib, section); err != nil {
			return nil, nil, nil, fmt.Errorf("workflow: assemble %s: %w", d.Title, err)
		}
		sections = append(sections, res)
	}
	asm.Finish(doc, bib)

	var warnings []string
	for _, w := range asm.Warnings() {
		warnings = append(warnings, w.Error())
	}
	return doc, sections, warnings, nil
}

func sectionIssues(inputs Inputs, dimension string) (int, []string) {
	if dimension == metrics.DimensionWellbeing {
		return inputs.Wellbeing.Counts.Dissatisfied, []string{}
	}
	summary, ok := inputs.Dimension(dimension)
	if !ok {
		return 0, []string{}
	}
	return summary.TotalIssues(), summary.WorstFactors
}

// save renders every requested format before any of them replaces an
// existing file. The DOCX is committed last.
func (p *Pipeline) save(doc *report.Document, outputs map[string]string) error {
	target := p.cfg.Paths.Output
	type pending struct {
		format string
		staged *report.Staged
	}
	var staged []pending
	discard := func() {
		for _, s := range staged {
			s.staged.Discard()
		}
	}
	if p.cfg.Report.WantsFormat("docx") {
		style := report.Style{Font: p.cfg.Report.Font, Size: p.cfg.Report.FontSize}
		s, err := report.StageDOCX(target, doc, style)
		if err != nil {
			return err
		}
		staged = append(staged, pending{format: "docx", staged: s})
	}
	if p.cfg.Report.WantsFormat("md") {
		s, err := report.StageMarkdown(strings.TrimSuffix(target, filepath.Ext(target))+".md", doc)
		if err != nil {
			discard()
			return err
		}
		staged = append(staged, pending{format: "md", staged: s})
	}
	for i := len(staged) - 1; i >= 0; i-- {
		path, err := staged[i].staged.Commit()
		if err != nil {
			discard()
			return err
		}
		outputs[staged[i].format] = path
	}
	return nil
}

func (p *Pipeline) startCatalogRun(ctx context.Context) string {
	if p.catalog == nil {
		return uuid.NewString()
	}
	run, err := p.catalog.StartRun(ctx, p.providerName(), p.cfg.Report.FailurePolicy)
	if err != nil {
		p.logger.Warn("workflow: catalog start failed", "error", err)
		return uuid.NewString()
	}
	return run.ID
}

func (p *Pipeline) finishCatalogRun(ctx context.Context, result Result, runErr error) {
	if p.catalog == nil {
		return
	}
	status, message := sqlite.StatusSucceeded, ""
	if runErr != nil {
		status, message = sqlite.StatusFailed, runErr.Error()
	}
	output := result.Outputs["docx"]
	if output == "" {
		output = result.Outputs["md"]
	}
	records := make([]sqlite.SectionRecord, 0, len(result.Sections))
	for _, s := range result.Sections {
		records = append(records, sqlite.SectionRecord{
			Dimension:    s.Dimension,
			Status:       s.Status,
			IssueCount:   s.IssueCount,
			WorstFactors: strings.Join(s.WorstFactors, ","),
			Message:      s.Message,
		})
	}
	// The run context may already be canceled; the record still has to land.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := p.catalog.FinishRun(recordCtx, result.RunID, status, output, message, records); err != nil {
		p.logger.Warn("workflow: catalog finish failed", "run", result.RunID, "error", err)
	}
}

func sortedValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, key := range []string{"docx", "md"} {
		if v, ok := m[key]; ok {
			out = append(out, v)
		}
	}
	return out
}
