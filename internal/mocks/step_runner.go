package mocks

import (
	"context"
	"sync"
)

// MockStepRunner implements the queue's step runner contract against a
// configurable step chain, so executor tests control ordering without the
// real pipeline.
type MockStepRunner struct {
	// Steps is the ordered step chain. Required.
	Steps []string

	// RunStepFn, when set, replaces the default no-op step execution.
	RunStepFn func(ctx context.Context, step, targetID, pipelineVersion string) error

	mu   sync.Mutex
	runs []StepRun
}

// StepRun records the arguments of one RunStep invocation.
type StepRun struct {
	Step            string
	TargetID        string
	PipelineVersion string
}

// RunStep implements the step runner contract.
func (m *MockStepRunner) RunStep(ctx context.Context, step, targetID, pipelineVersion string) error {
	m.mu.Lock()
	m.runs = append(m.runs, StepRun{Step: step, TargetID: targetID, PipelineVersion: pipelineVersion})
	m.mu.Unlock()

	if m.RunStepFn != nil {
		return m.RunStepFn(ctx, step, targetID, pipelineVersion)
	}
	return nil
}

// NextStep implements the step runner contract.
func (m *MockStepRunner) NextStep(step string) (string, bool) {
	for i, s := range m.Steps {
		if s == step && i+1 < len(m.Steps) {
			return m.Steps[i+1], true
		}
	}
	return "", false
}

// FirstStep implements the step runner contract.
func (m *MockStepRunner) FirstStep() string {
	if len(m.Steps) == 0 {
		return ""
	}
	return m.Steps[0]
}

// Runs returns a copy of the recorded step executions.
func (m *MockStepRunner) Runs() []StepRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]StepRun, len(m.runs))
	copy(out, m.runs)
	return out
}
