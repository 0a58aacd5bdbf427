package store

import (
	"context"
	"database/sql"

	"github.com/lexivid/lexivid/internal/domain"
)

// StateStore defines the interface for the per-(target, pipeline version)
// scratch record that pipeline steps read-modify-write.
type StateStore interface {
	// Get retrieves the scratch state. Returns ErrStateNotFound when no
	// step has written state for this pair yet.
	Get(ctx context.Context, targetID, pipelineVersion string) (*domain.PipelineState, error)

	// Save upserts the scratch state.
	Save(ctx context.Context, state *domain.PipelineState) error

	// WithTx returns a StateStore bound to the provided transaction.
	WithTx(tx *sql.Tx) StateStore
}
