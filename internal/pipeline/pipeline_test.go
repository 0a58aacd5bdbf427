package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexivid/lexivid/internal/captions"
	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/pipeline"
)

// TestPipelineEndToEnd drives every step in order, the way the queue
// executor would, and checks that caption cues come out the other end as
// persisted expressions.
func TestPipelineEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	f.seedMaterial(t, "mat-1")

	f.captions.Result = &captions.Result{
		Status: captions.StatusFetched,
		Cues: []domain.Cue{
			{StartSec: 0, EndSec: 3, Text: "Break the ice with a question"},
			{StartSec: 3, EndSec: 6, Text: "[music] it helps to break the ice"},
			{StartSec: 6, EndSec: 9, Text: "once you break the ice, keep going"},
		},
	}

	step := f.runner.FirstStep()
	for {
		require.NoError(t, f.runner.RunStep(ctx, step, "mat-1", pipeline.CurrentVersion),
			"step %s failed", step)
		next, ok := f.runner.NextStep(step)
		if !ok {
			break
		}
		step = next
	}
	assert.Equal(t, string(pipeline.StepPersist), step)

	stored := f.mustGetState(t, "mat-1")
	assert.Equal(t, "captions", stored.CaptionSource)
	assert.Equal(t, 3, stored.SegmentCount)
	assert.Contains(t, stored.Accepted, "break the ice")

	expr, err := f.expressions.Get(ctx, domain.ExpressionID("break the ice"))
	require.NoError(t, err)
	assert.Equal(t, "mat-1", expr.MaterialID)
	assert.NotEmpty(t, expr.Explanation)
	assert.NotEmpty(t, expr.Example)
	assert.GreaterOrEqual(t, expr.Score, pipeline.AcceptThreshold)

	count, err := f.expressions.CountByMaterial(ctx, "mat-1")
	require.NoError(t, err)
	assert.Equal(t, len(stored.Accepted), count)
}

// TestPipelineEndToEndWithoutCaptions checks that a caption-less material
// converges on an empty result instead of failing.
func TestPipelineEndToEndWithoutCaptions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	f.seedMaterial(t, "mat-1")

	f.captions.Result = &captions.Result{
		Status: captions.StatusUnavailable,
		Reason: captions.ReasonNoCaptions,
	}

	step := f.runner.FirstStep()
	for {
		require.NoError(t, f.runner.RunStep(ctx, step, "mat-1", pipeline.CurrentVersion),
			"step %s failed", step)
		next, ok := f.runner.NextStep(step)
		if !ok {
			break
		}
		step = next
	}

	stored := f.mustGetState(t, "mat-1")
	assert.Equal(t, "none", stored.CaptionSource)
	assert.Zero(t, stored.SegmentCount)
	assert.Empty(t, stored.Accepted)

	count, err := f.expressions.CountByMaterial(ctx, "mat-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}
