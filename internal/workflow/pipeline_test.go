// File path: internal/workflow/pipeline_test.go
package workflow

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodishanthj/spinyleaf/internal/config"
	"github.com/nicodishanthj/spinyleaf/internal/metrics"
	"github.com/nicodishanthj/spinyleaf/internal/narrative"
	"github.com/nicodishanthj/spinyleaf/internal/report"
	"github.com/nicodishanthj/spinyleaf/internal/sqlite"
)

// stubGenerator renders each descriptor so missing fields still fail, then
// answers from a canned map.
type stubGenerator struct {
	mu      sync.Mutex
	replies map[string]string
	fail    map[string]error
	prompts map[string]string
}

func (s *stubGenerator) Generate(ctx context.Context, d narrative.Descriptor, values map[string]any) (string, error) {
	prompt, err := d.Render(values)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prompts == nil {
		s.prompts = map[string]string{}
	}
	s.prompts[d.Dimension] = prompt
	if err := s.fail[d.Dimension]; err != nil {
		return "", err
	}
	return s.replies[d.Dimension], nil
}

func (s *stubGenerator) ProviderName() string { return "stub" }

func defaultReplies() map[string]string {
	return map[string]string{
		"wellbeing": "## Overview\nMost rooms are neutral.\nAdd placeholder: `wellbeing_images`",
		"comfort":   "## Daylight\nDaylight is the weakest factor in **two rooms**.\n- Widen the south glazing\nAdd placeholder: `comfort_images`\n## References\n- Smith, A. (2020). Daylight and health. https://example.org/daylight\n- Jones, B. (2019). Thermal comfort.",
		"delight":   "## Views\nViews are limited.\n## References\n- Smith, A. (2020). Daylight and health. https://example.org/daylight",
		"social":    "Social spaces are well distributed.",
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 2))))
}

// testConfig lays out a study folder with all five tables.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Paths = config.PathsConfig{
		Root:      root,
		Wellbeing: filepath.Join(root, "Wellbeing.csv"),
		Comfort:   filepath.Join(root, "Comfort_Dimension", "Comfort.csv"),
		Materials: filepath.Join(root, "Comfort_Dimension", "Materials.csv"),
		Delight:   filepath.Join(root, "Delight_Dimension", "Delight.csv"),
		Social:    filepath.Join(root, "Social_Dimension", "Social.csv"),
		Output:    filepath.Join(root, "out", "Wellbeing_Report.docx"),
	}
	cfg.Report.Formats = []string{"docx", "md"}

	writeFile(t, cfg.Paths.Wellbeing, "room_ids,wellbeing_satisfaction,comfort_satisfaction,delight_satisfaction,social_satisfaction\n"+
		"APT_1,4.5,1.4,0.9,1.2\n"+
		"APT_2,2.5,0.8,0.6,1.4\n"+
		"CORE_1,1.5,0.5,0.2,1.0\n")
	writeFile(t, cfg.Paths.Comfort, "room_ids,floor_level,extreme_hot_satisf,daylight_satisf,sound_satisf,air_quali\n"+
		"APT_1,1,1.5,0.5,1.4,1.4\n"+
		"APT_2,2,1.2,0.4,1.4,1.4\n")
	writeFile(t, cfg.Paths.Materials, "Window_type,Windows_U,Win_reduction,SHGC,Wall_R,Wall_reducrion,Roof_R,Ground_R\n"+
		"Dbl LoE (e2=.1) Clr 3mm/6mm Air,1.76,31.3,0.57,3.5,45,4,2.5\n")
	writeFile(t, cfg.Paths.Delight, "room_ids,floor_level,views_overall_satisf,balcony_satisf,space_size_satisf\n"+
		"CORE_1,1,0.1,0.1,0.1\n"+
		"APT_1,1,0.5,1.5,1.5\n")
	writeFile(t, cfg.Paths.Social, "room_ids,floor_level,social_amount_satisf,social_distribution_satisf,social_green_satisf\n"+
		"APT_1,1,1.5,1.5,1.5\n")
	writePNG(t, filepath.Join(root, "Comfort_Dimension", "comfort_factors.png"))
	return cfg
}

func TestPipelineEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	gen := &stubGenerator{replies: defaultReplies()}
	store, err := sqlite.Open(sqlite.Config{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	defer store.Close()

	p, err := New(cfg, gen, nil, store)
	require.NoError(t, err)
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Wellbeing", "Comfort", "Delight", "Social", "References"}, result.Document.SectionTitles())
	assert.FileExists(t, result.Outputs["docx"])
	assert.FileExists(t, result.Outputs["md"])
	assert.True(t, strings.HasSuffix(result.Outputs["md"], "Wellbeing_Report.md"))

	// duplicated reference across sections appears once
	refs := 0
	for _, block := range result.Document.Blocks {
		if block.Kind == report.BlockParagraph && strings.HasPrefix(block.PlainText(), "Smith, A. (2020)") {
			refs++
		}
	}
	assert.Equal(t, 1, refs)

	// comfort_factors.png exists, the rest are missing
	assert.Len(t, result.Warnings, 3)

	require.Len(t, result.Sections, 4)
	comfort := result.Sections[1]
	assert.Equal(t, "comfort", comfort.Dimension)
	assert.Equal(t, 2, comfort.IssueCount)
	assert.Equal(t, []string{"daylight"}, comfort.WorstFactors)
	assert.Equal(t, 1, result.Sections[0].IssueCount)

	assert.Contains(t, gen.prompts["comfort"], "- APT_2 (Floor 2): daylight = 0.4")
	assert.Contains(t, gen.prompts["comfort"], "Glazing: Double glazing")
	assert.Contains(t, gen.prompts["wellbeing"], "Mean wellbeing satisfaction: 2.83")
	assert.Contains(t, gen.prompts["delight"], "Views: 0.3")

	detail, err := store.GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, sqlite.StatusSucceeded, detail.Status)
	assert.Equal(t, "stub", detail.Provider)
	assert.Equal(t, result.Outputs["docx"], detail.OutputPath)
	require.Len(t, detail.Sections, 4)
	assert.Equal(t, "daylight", detail.Sections[1].WorstFactors)

	state := p.Status()
	assert.Equal(t, "completed", state.Status)
	for _, step := range state.Steps {
		assert.Equal(t, StepCompleted, step.Status, step.Name)
	}
}

func TestPipelineSkipPolicyKeepsGoing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.FailurePolicy = config.PolicySkip
	gen := &stubGenerator{
		replies: defaultReplies(),
		fail:    map[string]error{"delight": &narrative.GenerationError{Dimension: "delight", Attempts: 3, Err: errors.New("rate limited")}},
	}
	p, err := New(cfg, gen, nil, nil)
	require.NoError(t, err)
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Wellbeing", "Comfort", "Delight", "Social", "References"}, result.Document.SectionTitles())
	assert.True(t, result.Document.Sections[2].Skipped)
	assert.Equal(t, sqlite.SectionSkipped, result.Sections[2].Status)
	assert.Contains(t, result.Sections[2].Message, "rate limited")

	found := false
	for _, block := range result.Document.Blocks {
		if strings.HasPrefix(block.PlainText(), "[Narrative unavailable:") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPipelineAbortPolicyFails(t *testing.T) {
	cfg := testConfig(t)
	gen := &stubGenerator{
		replies: defaultReplies(),
		fail:    map[string]error{"comfort": &narrative.GenerationError{Dimension: "comfort", Attempts: 3, Err: errors.New("unavailable")}},
	}
	store, err := sqlite.Open(sqlite.Config{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	defer store.Close()

	p, err := New(cfg, gen, nil, store)
	require.NoError(t, err)
	result, err := p.Run(context.Background())
	var genErr *narrative.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "comfort", genErr.Dimension)
	assert.NoFileExists(t, cfg.Paths.Output)

	state := p.Status()
	assert.Equal(t, "error", state.Status)
	assert.Equal(t, StepError, state.Steps[stepNarrate].Status)

	detail, err := store.GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, sqlite.StatusFailed, detail.Status)
	assert.Contains(t, detail.Error, "unavailable")
}

func TestPipelineDataErrorStopsBeforeNarration(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Paths.Social, "room_ids,floor_level,social_amount_satisf\nAPT_1,1,1.5\n")
	gen := &stubGenerator{replies: defaultReplies()}
	p, err := New(cfg, gen, nil, nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	var dataErr *metrics.DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, "social", dataErr.Dimension)
	assert.Empty(t, gen.prompts)
	assert.Equal(t, StepError, p.Status().Steps[stepLoad].Status)
}

func TestPipelineMissingTable(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(cfg.Paths.Delight))
	p, err := New(cfg, &stubGenerator{replies: defaultReplies()}, nil, nil)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	assert.Error(t, err)
}

func TestStatusIdle(t *testing.T) {
	p, err := New(config.DefaultConfig(), &stubGenerator{}, nil, nil)
	require.NoError(t, err)
	state := p.Status()
	assert.Equal(t, "idle", state.Status)
	assert.Len(t, state.Steps, 4)
}

func TestGeneratorOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.RatePerMinute = 30
	opts := GeneratorOptions(cfg.LLM)
	assert.Equal(t, cfg.LLM.Timeout, opts.Timeout)
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, 30.0, opts.RatePerMinute)
}

func TestTryStartRejectsConcurrentRun(t *testing.T) {
	cfg := testConfig(t)
	p, err := New(cfg, &stubGenerator{replies: defaultReplies()}, nil, nil)
	require.NoError(t, err)

	start, err := p.TryStart()
	require.NoError(t, err)
	_, err = p.TryStart()
	assert.ErrorIs(t, err, ErrRunInProgress)

	_, err = start(context.Background())
	require.NoError(t, err)

	again, err := p.TryStart()
	require.NoError(t, err)
	_, err = again(context.Background())
	require.NoError(t, err)
}

func TestFailedSaveKeepsPreviousReport(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.Paths.Output), 0o755))
	require.NoError(t, os.WriteFile(cfg.Paths.Output, []byte("previous report"), 0o644))
	// a directory where the Markdown file belongs makes its commit fail
	mdPath := strings.TrimSuffix(cfg.Paths.Output, ".docx") + ".md"
	writeFile(t, filepath.Join(mdPath, "keep.txt"), "x")

	p, err := New(cfg, &stubGenerator{replies: defaultReplies()}, nil, nil)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.Error(t, err)

	data, err := os.ReadFile(cfg.Paths.Output)
	require.NoError(t, err)
	assert.Equal(t, "previous report", string(data))
	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(cfg.Paths.Output), ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
	assert.Equal(t, StepError, p.Status().Steps[stepSave].Status)
}

func TestValuesRejectNegativeIssueCounts(t *testing.T) {
	in := Inputs{Dimensions: []metrics.DimensionSummary{{
		Dimension:   metrics.DimensionSocial,
		Factors:     []string{"social_amount"},
		Means:       map[string]float64{"social_amount": 1},
		IssueCounts: map[string]int{"social_amount": -1},
	}}}
	_, err := in.Values(metrics.DimensionSocial)
	assert.ErrorContains(t, err, "negative issue count")

	_, err = in.Values(metrics.DimensionDelight)
	assert.Error(t, err)
}
