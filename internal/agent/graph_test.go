// File path: internal/agent/graph_test.go
package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/nicodishanthj/spinyleaf/internal/narrative"
)

type stubGenerator struct {
	fail  map[string]error
	order []string
}

func (s *stubGenerator) Generate(ctx context.Context, d narrative.Descriptor, values map[string]any) (string, error) {
	s.order = append(s.order, d.Dimension)
	if err := s.fail[d.Dimension]; err != nil {
		return "", err
	}
	return "text for " + d.Dimension, nil
}

func tasks(dims ...string) []Task {
	out := make([]Task, 0, len(dims))
	for _, dim := range dims {
		out = append(out, Task{Descriptor: narrative.Descriptor{Dimension: dim}})
	}
	return out
}

func TestCoordinatorRunsInOrder(t *testing.T) {
	gen := &stubGenerator{}
	outcomes, err := NewCoordinator(gen, "abort").Run(context.Background(), tasks("wellbeing", "comfort", "delight", "social"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"wellbeing", "comfort", "delight", "social"}
	for i, dim := range want {
		if gen.order[i] != dim {
			t.Fatalf("expected %s at %d, got %v", dim, i, gen.order)
		}
		if outcomes[i].Dimension != dim || outcomes[i].Text != "text for "+dim || outcomes[i].Skipped() {
			t.Fatalf("unexpected outcome %+v", outcomes[i])
		}
	}
}

func TestCoordinatorAbortPolicy(t *testing.T) {
	genErr := &narrative.GenerationError{Dimension: "delight", Attempts: 3, Err: errors.New("quota")}
	gen := &stubGenerator{fail: map[string]error{"delight": genErr}}
	_, err := NewCoordinator(gen, "").Run(context.Background(), tasks("comfort", "delight", "social"))
	var target *narrative.GenerationError
	if !errors.As(err, &target) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if len(gen.order) != 2 {
		t.Fatalf("expected run to stop after delight, ran %v", gen.order)
	}
}

func TestCoordinatorSkipPolicy(t *testing.T) {
	genErr := &narrative.GenerationError{Dimension: "delight", Attempts: 1, Err: errors.New("quota")}
	gen := &stubGenerator{fail: map[string]error{"delight": genErr}}
	outcomes, err := NewCoordinator(gen, "skip").Run(context.Background(), tasks("comfort", "delight", "social"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !outcomes[1].Skipped() || outcomes[2].Text != "text for social" {
		t.Fatalf("unexpected outcomes %+v", outcomes)
	}
}

func TestCoordinatorSkipDoesNotHideTemplateErrors(t *testing.T) {
	gen := &stubGenerator{fail: map[string]error{"comfort": errors.New("template missing fields")}}
	if _, err := NewCoordinator(gen, "skip").Run(context.Background(), tasks("comfort", "social")); err == nil {
		t.Fatalf("expected template error to abort")
	}
}

func TestCoordinatorRejectsDuplicateDimensions(t *testing.T) {
	if _, err := NewCoordinator(&stubGenerator{}, "abort").Run(context.Background(), tasks("comfort", "comfort")); err == nil {
		t.Fatalf("expected duplicate dimension error")
	}
}
