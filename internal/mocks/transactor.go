package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/lexivid/lexivid/internal/store"
)

// MemTransactor implements store.Transactor without a database. The
// function runs with a nil *sql.Tx; the in-memory store fakes return
// themselves from WithTx(nil), so code written against the transactional
// pattern works unchanged. Calls are serialized by a mutex, which mirrors
// the row-level isolation the real claim transactions rely on.
type MemTransactor struct {
	mu sync.Mutex

	// Err, when set, is returned before the function runs.
	Err error
}

// NewMemTransactor creates a new in-memory transactor.
func NewMemTransactor() *MemTransactor {
	return &MemTransactor{}
}

// Transact implements store.Transactor.
func (t *MemTransactor) Transact(ctx context.Context, fn store.TxFn) error {
	if t.Err != nil {
		return t.Err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx, (*sql.Tx)(nil))
}

var _ store.Transactor = (*MemTransactor)(nil)
