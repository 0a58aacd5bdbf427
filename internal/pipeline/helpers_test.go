package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/generation"
	"github.com/lexivid/lexivid/internal/mocks"
	"github.com/lexivid/lexivid/internal/pipeline"
)

// testLogger returns a logger that discards all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runnerFixture bundles a Runner with the in-memory stores and mock
// providers it runs against.
type runnerFixture struct {
	states      *mocks.MemStateStore
	materials   *mocks.MemMaterialStore
	expressions *mocks.MemExpressionStore
	captions    *mocks.MockCaptionProvider
	clock       *mocks.FakeClock
	runner      *pipeline.Runner
}

// fixtureWithGenerator builds a fixture around the given text generator.
// Pass nil to exercise the heuristic-only paths.
func fixtureWithGenerator(gen generation.TextGenerator) *runnerFixture {
	f := &runnerFixture{
		states:      mocks.NewMemStateStore(),
		materials:   mocks.NewMemMaterialStore(),
		expressions: mocks.NewMemExpressionStore(),
		captions:    &mocks.MockCaptionProvider{},
		clock:       mocks.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.runner = pipeline.NewRunner(
		mocks.NewMemTransactor(),
		f.states,
		f.materials,
		f.expressions,
		f.captions,
		gen,
		nil,
		f.clock,
		testLogger(),
	)
	return f
}

func newFixture() *runnerFixture {
	return fixtureWithGenerator(nil)
}

// seedMaterial stores a material with the given id and returns it.
func (f *runnerFixture) seedMaterial(t *testing.T, id string) *domain.Material {
	t.Helper()
	material := &domain.Material{
		ID:          id,
		Title:       "How to Make Small Talk",
		ExternalID:  "yt-" + id,
		ExternalURL: "https://example.com/watch/" + id,
		Status:      domain.MaterialStatusQueued,
		CreatedAt:   f.clock.Now(),
		UpdatedAt:   f.clock.Now(),
	}
	f.materials.Put(material)
	return material
}

// seedState persists a scratch state so a later step can run against it.
func (f *runnerFixture) seedState(t *testing.T, state *domain.PipelineState) {
	t.Helper()
	require.NoError(t, f.states.Save(context.Background(), state))
}

// mustGetState fetches the stored state for the target at the current
// pipeline version.
func (f *runnerFixture) mustGetState(t *testing.T, targetID string) *domain.PipelineState {
	t.Helper()
	state, err := f.states.Get(context.Background(), targetID, pipeline.CurrentVersion)
	require.NoError(t, err)
	return state
}
