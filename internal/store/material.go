package store

import (
	"context"
	"database/sql"

	"github.com/lexivid/lexivid/internal/domain"
)

// MaterialStore defines the interface for persisting materials.
type MaterialStore interface {
	// Get retrieves a material by id. Returns ErrMaterialNotFound if it
	// does not exist.
	Get(ctx context.Context, id string) (*domain.Material, error)

	// Create persists a new material. Returns ErrDuplicate if a material
	// with the same id already exists.
	Create(ctx context.Context, material *domain.Material) error

	// Update writes the material's status, pipeline version stamp and
	// progress summary.
	Update(ctx context.Context, material *domain.Material) error

	// WithTx returns a MaterialStore bound to the provided transaction.
	WithTx(tx *sql.Tx) MaterialStore
}
