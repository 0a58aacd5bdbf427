// Package postgres implements the internal/store interfaces against
// PostgreSQL. Job claiming relies on FOR UPDATE SKIP LOCKED and conditional
// updates that re-check status and lock token, so every write that can race
// reports store.ErrUpdateConflict instead of silently clobbering.
package postgres
