// File path: internal/agent/graph.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langgraphgo/graph"

	"github.com/nicodishanthj/spinyleaf/internal/common"
	"github.com/nicodishanthj/spinyleaf/internal/narrative"
)

// Failure policies, mirrored from the report configuration.
const (
	PolicyAbort = "abort"
	PolicySkip  = "skip"
)

// Generator produces the narrative for one descriptor.
type Generator interface {
	Generate(ctx context.Context, d narrative.Descriptor, values map[string]any) (string, error)
}

// Task is one dimension to narrate.
type Task struct {
	Descriptor narrative.Descriptor
	Values     map[string]any
}

// Outcome records what happened to a task. Err is set only for skipped
// generation failures.
type Outcome struct {
	Dimension string
	Text      string
	Err       error
	Duration  time.Duration
}

// Skipped reports whether the narrative is missing.
func (o Outcome) Skipped() bool { return o.Err != nil }

// Coordinator runs the dimension tasks one after another as nodes of a
// message graph. Each node appends its narrative to the graph state.
type Coordinator struct {
	generator Generator
	policy    string
}

func NewCoordinator(generator Generator, policy string) *Coordinator {
	policy = strings.ToLower(strings.TrimSpace(policy))
	if policy != PolicySkip {
		policy = PolicyAbort
	}
	return &Coordinator{generator: generator, policy: policy}
}

func (c *Coordinator) Policy() string { return c.policy }

// Run executes the tasks in order. Under the abort policy the first
// generation failure stops the run and is returned; under skip it is kept in
// the task's Outcome. Template and data errors always stop the run.
func (c *Coordinator) Run(ctx context.Context, tasks []Task) ([]Outcome, error) {
	if c.generator == nil {
		return nil, errors.New("agent: no generator configured")
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	logger := common.Logger()
	outcomes := make([]Outcome, len(tasks))
	g := graph.NewMessageGraph()
	names := make([]string, len(tasks))
	seen := make(map[string]bool, len(tasks))
	for i, task := range tasks {
		name := strings.ToLower(strings.TrimSpace(task.Descriptor.Dimension))
		if name == "" || seen[name] {
			return nil, fmt.Errorf("agent: task %d has empty or duplicate dimension %q", i, name)
		}
		seen[name] = true
		names[i] = name
		idx, task := i, task
		g.AddNode(name, func(ctx context.Context, state []llms.MessageContent) ([]llms.MessageContent, error) {
			started := time.Now()
			logger.Info("agent: generating narrative", "dimension", name)
			text, err := c.generator.Generate(ctx, task.Descriptor, task.Values)
			outcomes[idx] = Outcome{Dimension: name, Text: text, Err: err, Duration: time.Since(started)}
			if err != nil {
				var genErr *narrative.GenerationError
				if c.policy == PolicySkip && errors.As(err, &genErr) && ctx.Err() == nil {
					logger.Warn("agent: narrative skipped", "dimension", name, "error", err)
					return state, nil
				}
				return state, err
			}
			return append(state, llms.TextParts(llms.ChatMessageTypeAI, text)), nil
		})
	}
	for i := 0; i < len(names)-1; i++ {
		g.AddEdge(names[i], names[i+1])
	}
	g.AddEdge(names[len(names)-1], graph.END)
	g.SetEntryPoint(names[0])

	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("agent: compile dimension graph: %w", err)
	}
	initial := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "narrate dimensions: "+strings.Join(names, ", "))}
	if _, err := runnable.Invoke(ctx, initial); err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	return outcomes, nil
}
