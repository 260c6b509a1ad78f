// File path: internal/workflow/steps.go
package workflow

import (
	"context"
	"errors"
	"time"
)

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepSkipped   StepStatus = "skipped"
	StepError     StepStatus = "error"
)

type Step struct {
	Name        string     `json:"name"`
	Status      StepStatus `json:"status"`
	Message     string     `json:"message,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Step indexes, in execution order.
const (
	stepLoad = iota
	stepNarrate
	stepAssemble
	stepSave
)

func buildSteps() []Step {
	names := []string{"Load metric tables", "Generate narratives", "Assemble document", "Save outputs"}
	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i] = Step{Name: name, Status: StepPending}
	}
	return steps
}

// State is a snapshot of the current or most recent run.
type State struct {
	RunID       string     `json:"run_id,omitempty"`
	Status      string     `json:"status"`
	Running     bool       `json:"running"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Steps       []Step     `json:"steps"`
	Error       string     `json:"error,omitempty"`
}

func cloneState(s State) State {
	out := s
	out.Steps = append([]Step(nil), s.Steps...)
	return out
}

func (p *Pipeline) setStep(index int, status StepStatus, message string) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if index < 0 || index >= len(p.state.Steps) {
		return
	}
	now := time.Now().UTC()
	step := &p.state.Steps[index]
	switch status {
	case StepRunning:
		step.StartedAt = &now
	case StepCompleted, StepSkipped, StepError:
		if step.StartedAt == nil {
			step.StartedAt = &now
		}
		step.CompletedAt = &now
	}
	step.Status = status
	if message != "" {
		step.Message = message
	}
}

func (p *Pipeline) beginState(runID string) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	now := time.Now().UTC()
	p.state = State{RunID: runID, Status: "running", Running: true, StartedAt: &now, Steps: buildSteps()}
}

func (p *Pipeline) endState(index int, err error) {
	if err != nil {
		p.setStep(index, StepError, err.Error())
	}
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	now := time.Now().UTC()
	p.state.Running = false
	p.state.CompletedAt = &now
	switch {
	case err == nil:
		p.state.Status = "completed"
	case isCanceledErr(err):
		p.state.Status = "canceled"
		p.state.Error = err.Error()
	default:
		p.state.Status = "error"
		p.state.Error = err.Error()
	}
}

// Status returns a copy of the current run state.
func (p *Pipeline) Status() State {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if p.state.Status == "" {
		return State{Status: "idle", Steps: buildSteps()}
	}
	return cloneState(p.state)
}

func isCanceledErr(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
