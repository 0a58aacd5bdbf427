package mocks

import (
	"context"
	"sync"

	"github.com/lexivid/lexivid/internal/captions"
)

// MockCaptionProvider implements captions.Provider for testing.
type MockCaptionProvider struct {
	// FetchCaptionsFn, when set, replaces the default behavior.
	FetchCaptionsFn func(ctx context.Context, targetID, externalID, externalURL string) (*captions.Result, error)

	// Default response values used when FetchCaptionsFn is nil.
	Result *captions.Result
	Err    error

	mu    sync.Mutex
	count int
}

// FetchCaptions implements captions.Provider.
func (m *MockCaptionProvider) FetchCaptions(
	ctx context.Context,
	targetID, externalID, externalURL string,
) (*captions.Result, error) {
	m.mu.Lock()
	m.count++
	m.mu.Unlock()

	if m.FetchCaptionsFn != nil {
		return m.FetchCaptionsFn(ctx, targetID, externalID, externalURL)
	}
	return m.Result, m.Err
}

// CallCount returns the number of FetchCaptions invocations.
func (m *MockCaptionProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

var _ captions.Provider = (*MockCaptionProvider)(nil)
