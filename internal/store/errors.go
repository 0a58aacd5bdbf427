package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors below.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of
	// a unique entity (e.g. a job with an id that already exists).
	ErrDuplicate = errors.New("entity already exists")

	// ErrUpdateConflict is returned by conditional updates when the entity's
	// current state no longer matches the expected prior state. Callers must
	// treat this as "another writer got there first" and abandon their
	// in-memory view.
	ErrUpdateConflict = errors.New("update conflict: expected prior state did not match")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrJobNotFound indicates that the requested job does not exist.
	ErrJobNotFound = fmt.Errorf("%w: job", ErrNotFound)

	// ErrMaterialNotFound indicates that the requested material does not exist.
	ErrMaterialNotFound = fmt.Errorf("%w: material", ErrNotFound)

	// ErrStateNotFound indicates that no scratch state exists yet for the
	// requested (target, pipeline version) pair.
	ErrStateNotFound = fmt.Errorf("%w: pipeline state", ErrNotFound)

	// ErrExpressionNotFound indicates that the requested expression does not exist.
	ErrExpressionNotFound = fmt.Errorf("%w: expression", ErrNotFound)
)

// IsNotFound checks if the error is any kind of "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
