package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/mocks"
	"github.com/lexivid/lexivid/internal/pipeline"
)

func TestExamplesWithoutGenerator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	f.seedState(t, scoredState("mat-1", "break the ice", domain.DecisionAccept))

	require.NoError(t, f.runner.RunStep(ctx, string(pipeline.StepExamples), "mat-1", pipeline.CurrentVersion))

	c := f.mustGetState(t, "mat-1").Candidates["break the ice"]
	assert.Equal(t, `In the video, the speaker uses the phrase "break the ice".`, c.Example)
	assert.Equal(t, `A phrase that appears in this material: "break the ice".`, c.Explanation)
}

func TestExamplesUsesGeneratedSentence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	gen := &mocks.MockGenerator{Response: "  She told a joke to break the ice.  "}
	f := fixtureWithGenerator(gen)
	f.seedState(t, scoredState("mat-1", "break the ice", domain.DecisionAccept))

	require.NoError(t, f.runner.RunStep(ctx, string(pipeline.StepExamples), "mat-1", pipeline.CurrentVersion))

	c := f.mustGetState(t, "mat-1").Candidates["break the ice"]
	assert.Equal(t, "She told a joke to break the ice.", c.Example)

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.InDelta(t, 0.7, calls[0].Temperature, 0.001)
}

func TestExamplesFallsBackOnProviderFailure(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		gen  *mocks.MockGenerator
	}{
		{"provider error", &mocks.MockGenerator{Err: errors.New("quota exhausted")}},
		{"empty response", &mocks.MockGenerator{Response: "   "}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			f := fixtureWithGenerator(tc.gen)
			f.seedState(t, scoredState("mat-1", "break the ice", domain.DecisionAccept))

			require.NoError(t, f.runner.RunStep(ctx, string(pipeline.StepExamples), "mat-1", pipeline.CurrentVersion))

			c := f.mustGetState(t, "mat-1").Candidates["break the ice"]
			assert.Equal(t, `In the video, the speaker uses the phrase "break the ice".`, c.Example)
		})
	}
}

func TestExamplesKeepsProviderExplanation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()

	state := scoredState("mat-1", "break the ice", domain.DecisionAccept)
	state.Candidates["break the ice"].Explanation = "A common idiom for starting a conversation."
	f.seedState(t, state)

	require.NoError(t, f.runner.RunStep(ctx, string(pipeline.StepExamples), "mat-1", pipeline.CurrentVersion))

	c := f.mustGetState(t, "mat-1").Candidates["break the ice"]
	assert.Equal(t, "A common idiom for starting a conversation.", c.Explanation)
}

func TestExamplesSkipRejectedCandidates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	gen := &mocks.MockGenerator{Response: "unused"}
	f := fixtureWithGenerator(gen)
	f.seedState(t, scoredState("mat-1", "the stuff", domain.DecisionReject))

	require.NoError(t, f.runner.RunStep(ctx, string(pipeline.StepExamples), "mat-1", pipeline.CurrentVersion))

	c := f.mustGetState(t, "mat-1").Candidates["the stuff"]
	assert.Empty(t, c.Example)
	assert.Empty(t, c.Explanation)
	assert.Empty(t, gen.Calls())
}
