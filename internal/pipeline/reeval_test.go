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

// scoredState returns a state as the score step would have left it, with a
// single candidate carrying the given decision.
func scoredState(targetID, phrase string, decision domain.CandidateDecision, flags ...string) *domain.PipelineState {
	state := formattedState(targetID, "placeholder")
	state.Candidates[phrase] = &domain.Candidate{
		Phrase:      phrase,
		Occurrences: []domain.Occurrence{{SegmentIndex: 0}, {SegmentIndex: 1}},
		Score:       70,
		Decision:    decision,
		Source:      domain.SourceHeuristic,
		Flags:       flags,
	}
	switch decision {
	case domain.DecisionAccept:
		state.Accepted = []string{phrase}
	case domain.DecisionReject:
		state.Rejected = []string{phrase}
	}
	return state
}

func TestReevalWithoutGenerator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	f.seedState(t, scoredState("mat-1", "break the ice", domain.DecisionAccept))

	require.NoError(t, f.runner.RunStep(ctx, string(pipeline.StepReeval), "mat-1", pipeline.CurrentVersion))

	stored := f.mustGetState(t, "mat-1")
	c := stored.Candidates["break the ice"]
	assert.Equal(t, domain.DecisionAccept, c.Decision)
	assert.Equal(t, domain.SourceHeuristic, c.Source)
	assert.Equal(t, []string{"break the ice"}, stored.Accepted)
}

func TestReevalAppliesProviderVerdict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	gen := &mocks.MockGenerator{
		Response: `{"decision": "accept", "explanation": "A common idiom for starting a conversation."}`,
	}
	f := fixtureWithGenerator(gen)
	f.seedState(t, scoredState("mat-1", "break the ice", domain.DecisionReject))

	require.NoError(t, f.runner.RunStep(ctx, string(pipeline.StepReeval), "mat-1", pipeline.CurrentVersion))

	stored := f.mustGetState(t, "mat-1")
	c := stored.Candidates["break the ice"]
	assert.Equal(t, domain.DecisionAccept, c.Decision)
	assert.Equal(t, domain.SourceGemini, c.Source)
	assert.Equal(t, "A common idiom for starting a conversation.", c.Explanation)
	assert.Equal(t, []string{"break the ice"}, stored.Accepted)
	assert.Empty(t, stored.Rejected)

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].UserPrompt, `"break the ice"`)
	assert.InDelta(t, 0.2, calls[0].Temperature, 0.001)
}

func TestReevalStripsCodeFences(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	gen := &mocks.MockGenerator{
		Response: "```json\n{\"decision\": \"accept\", \"explanation\": \"worth teaching\"}\n```",
	}
	f := fixtureWithGenerator(gen)
	f.seedState(t, scoredState("mat-1", "break the ice", domain.DecisionReject))

	require.NoError(t, f.runner.RunStep(ctx, string(pipeline.StepReeval), "mat-1", pipeline.CurrentVersion))

	c := f.mustGetState(t, "mat-1").Candidates["break the ice"]
	assert.Equal(t, domain.DecisionAccept, c.Decision)
	assert.Equal(t, domain.SourceGemini, c.Source)
}

func TestReevalFallsBackOnProviderError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	gen := &mocks.MockGenerator{Err: errors.New("quota exhausted")}
	f := fixtureWithGenerator(gen)
	f.seedState(t, scoredState("mat-1", "break the ice", domain.DecisionAccept))

	require.NoError(t, f.runner.RunStep(ctx, string(pipeline.StepReeval), "mat-1", pipeline.CurrentVersion))

	c := f.mustGetState(t, "mat-1").Candidates["break the ice"]
	assert.Equal(t, domain.DecisionAccept, c.Decision, "heuristic decision must survive provider failure")
	assert.Equal(t, domain.SourceFallback, c.Source)
}

func TestReevalFallsBackOnInvalidResponse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		response string
	}{
		{"not json", "sure, sounds like a great phrase"},
		{"schema violation", `{"decision": "maybe", "explanation": "x"}`},
		{"missing explanation", `{"decision": "accept"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			gen := &mocks.MockGenerator{Response: tc.response}
			f := fixtureWithGenerator(gen)
			f.seedState(t, scoredState("mat-1", "break the ice", domain.DecisionReject))

			require.NoError(t, f.runner.RunStep(ctx, string(pipeline.StepReeval), "mat-1", pipeline.CurrentVersion))

			c := f.mustGetState(t, "mat-1").Candidates["break the ice"]
			assert.Equal(t, domain.DecisionReject, c.Decision)
			assert.Equal(t, domain.SourceFallback, c.Source)
			assert.Empty(t, c.Explanation)
		})
	}
}

func TestReevalNeverFlipsUnsafeToAccept(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	gen := &mocks.MockGenerator{
		Response: `{"decision": "accept", "explanation": "colorful language"}`,
	}
	f := fixtureWithGenerator(gen)
	f.seedState(t, scoredState("mat-1", "fuck yeah", domain.DecisionReject, domain.FlagUnsafe))

	require.NoError(t, f.runner.RunStep(ctx, string(pipeline.StepReeval), "mat-1", pipeline.CurrentVersion))

	stored := f.mustGetState(t, "mat-1")
	c := stored.Candidates["fuck yeah"]
	assert.Equal(t, domain.DecisionReject, c.Decision)
	assert.Equal(t, domain.SourceGemini, c.Source)
	assert.Empty(t, stored.Accepted)
}
