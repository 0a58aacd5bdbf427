package store

import (
	"context"
	"database/sql"

	"github.com/lexivid/lexivid/internal/domain"
)

// ExpressionStore defines the interface for persisted expressions.
type ExpressionStore interface {
	// Get retrieves an expression by id. Returns ErrExpressionNotFound if
	// it does not exist.
	Get(ctx context.Context, id string) (*domain.Expression, error)

	// Upsert inserts the expression or, when a record with the same id
	// already exists, updates its mutable fields while preserving the
	// original CreatedAt.
	Upsert(ctx context.Context, expr *domain.Expression) error

	// CountByMaterial returns the number of expressions attributed to the
	// given material.
	CountByMaterial(ctx context.Context, materialID string) (int, error)

	// WithTx returns an ExpressionStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ExpressionStore
}
