package mocks

import (
	"context"
	"sync"

	"github.com/lexivid/lexivid/internal/generation"
)

// MockGenerator implements generation.TextGenerator for testing.
type MockGenerator struct {
	// GenerateTextFn, when set, replaces the default behavior.
	GenerateTextFn func(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)

	// Default response values used when GenerateTextFn is nil.
	Response string
	Err      error

	mu    sync.Mutex
	calls []GeneratorCall
}

// GeneratorCall records the arguments of one GenerateText invocation.
type GeneratorCall struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
}

// GenerateText implements generation.TextGenerator.
func (m *MockGenerator) GenerateText(
	ctx context.Context,
	systemPrompt, userPrompt string,
	temperature float32,
) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, GeneratorCall{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  temperature,
	})
	m.mu.Unlock()

	if m.GenerateTextFn != nil {
		return m.GenerateTextFn(ctx, systemPrompt, userPrompt, temperature)
	}
	return m.Response, m.Err
}

// Calls returns a copy of the recorded invocations.
func (m *MockGenerator) Calls() []GeneratorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GeneratorCall, len(m.calls))
	copy(out, m.calls)
	return out
}

var _ generation.TextGenerator = (*MockGenerator)(nil)
