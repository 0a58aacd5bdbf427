package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/store"
)

// buildExpressions turns accept-decided, non-unsafe candidates into
// expression records with deterministic ids. The records are written by the
// runner in the same transaction as the state save.
func (r *Runner) buildExpressions(state *domain.PipelineState) ([]*domain.Expression, error) {
	now := r.clock.Now()
	exprs := make([]*domain.Expression, 0, len(state.Accepted))
	for _, phrase := range state.Accepted {
		c, ok := state.Candidates[phrase]
		if !ok || c.Decision != domain.DecisionAccept || c.HasFlag(domain.FlagUnsafe) {
			continue
		}
		expr, err := domain.NewExpression(c, state.TargetID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to build expression for %q: %w", phrase, err)
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

// upsertPreservingCreatedAt writes an expression, keeping the original
// CreatedAt when a record with the same deterministic id already exists.
// Repeated persist runs converge instead of duplicating.
func (r *Runner) upsertPreservingCreatedAt(
	ctx context.Context,
	expressions store.ExpressionStore,
	expr *domain.Expression,
) error {
	existing, err := expressions.Get(ctx, expr.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if existing != nil {
		expr.CreatedAt = existing.CreatedAt
	}
	if err := expressions.Upsert(ctx, expr); err != nil {
		return fmt.Errorf("failed to persist expression %s: %w", expr.ID, err)
	}
	return nil
}
