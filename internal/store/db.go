package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the database access layer. It is implemented by both
// *sql.DB and *sql.Tx, allowing store code to run against a connection
// or inside a transaction without knowing which.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Transactor runs a function inside a single database transaction.
// Queue components depend on this interface rather than *sql.DB so tests
// can substitute an in-memory implementation.
type Transactor interface {
	// Transact executes fn within a transaction, committing on nil and
	// rolling back on error. Implementations must pass a tx that stores
	// can be rebound to via their WithTx methods.
	Transact(ctx context.Context, fn TxFn) error
}

// SQLTransactor is the production Transactor backed by *sql.DB.
type SQLTransactor struct {
	db *sql.DB
}

// NewSQLTransactor creates a Transactor over the given database handle.
func NewSQLTransactor(db *sql.DB) *SQLTransactor {
	return &SQLTransactor{db: db}
}

// Transact implements Transactor using RunInTransaction.
func (t *SQLTransactor) Transact(ctx context.Context, fn TxFn) error {
	return RunInTransaction(ctx, t.db, fn)
}
