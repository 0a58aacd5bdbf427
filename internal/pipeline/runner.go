// Package pipeline implements the versioned, linearly ordered
// material-processing pipeline: caption fetching and normalization,
// candidate extraction, filtering, scoring, reevaluation, explanation
// generation and persistence. Steps communicate only through the
// per-(target, pipeline version) scratch state record.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/lexivid/lexivid/internal/captions"
	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/generation"
	"github.com/lexivid/lexivid/internal/store"
)

// Clock matches the queue package's clock; declared locally so the pipeline
// does not depend on queue internals.
type Clock interface {
	Now() time.Time
}

// Runner executes exactly one named step against the persisted scratch
// state. The job lock guarantees a single writer per (target, version), so
// the state is read before the step runs and written, together with any
// expressions the persist step produced, in one transaction afterwards.
type Runner struct {
	tx          store.Transactor
	states      store.StateStore
	materials   store.MaterialStore
	expressions store.ExpressionStore
	captions    captions.Provider
	generator   generation.TextGenerator
	limiter     *rate.Limiter
	clock       Clock
	logger      *slog.Logger
}

// NewRunner creates a Runner. generator may be nil, in which case the
// reevaluation and examples steps keep their heuristic results with a
// "heuristic" provenance marker. limiter bounds concurrent generation calls;
// nil means unlimited.
func NewRunner(
	tx store.Transactor,
	states store.StateStore,
	materials store.MaterialStore,
	expressions store.ExpressionStore,
	captionProvider captions.Provider,
	generator generation.TextGenerator,
	limiter *rate.Limiter,
	clock Clock,
	logger *slog.Logger,
) *Runner {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Runner{
		tx:          tx,
		states:      states,
		materials:   materials,
		expressions: expressions,
		captions:    captionProvider,
		generator:   generator,
		limiter:     limiter,
		clock:       clock,
		logger:      logger.With("component", "pipeline"),
	}
}

// FirstStep implements the step runner contract for the queue executor.
func (r *Runner) FirstStep() string {
	return string(FirstStep())
}

// NextStep implements the step runner contract for the queue executor.
func (r *Runner) NextStep(step string) (string, bool) {
	next, ok := NextStep(Step(step))
	return string(next), ok
}

// RunStep executes the named step for the target at the given pipeline
// version. Precondition violations and unknown steps are returned before
// any state is written, so a failed step leaves no partial state.
func (r *Runner) RunStep(ctx context.Context, step, targetID, pipelineVersion string) error {
	s := Step(step)
	if !IsValid(s) {
		return fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}

	state, err := r.states.Get(ctx, targetID, pipelineVersion)
	if store.IsNotFound(err) {
		state = domain.NewPipelineState(targetID, pipelineVersion)
	} else if err != nil {
		return fmt.Errorf("failed to load pipeline state: %w", err)
	}

	var exprs []*domain.Expression

	switch s {
	case StepMeta:
		err = r.runMeta(ctx, state)
	case StepCaptions:
		err = r.runCaptions(ctx, state)
	case StepASR:
		err = r.runASR(ctx, state)
	case StepFormat:
		err = r.runFormat(ctx, state)
	case StepExtract:
		err = r.runExtract(ctx, state)
	case StepFilter:
		err = r.runFilter(ctx, state)
	case StepScore:
		err = r.runScore(ctx, state)
	case StepReeval:
		err = r.runReeval(ctx, state)
	case StepExamples:
		err = r.runExamples(ctx, state)
	case StepPersist:
		exprs, err = r.buildExpressions(state)
	}
	if err != nil {
		return err
	}

	state.UpdatedAt = r.clock.Now()

	return r.tx.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		states := r.states.WithTx(tx)
		if err := states.Save(ctx, state); err != nil {
			return fmt.Errorf("failed to save pipeline state: %w", err)
		}
		if len(exprs) > 0 {
			expressions := r.expressions.WithTx(tx)
			for _, expr := range exprs {
				if err := r.upsertPreservingCreatedAt(ctx, expressions, expr); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
