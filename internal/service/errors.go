package service

import (
	"errors"
	"fmt"

	"github.com/lexivid/lexivid/internal/store"
)

// Sentinel errors for expected conditions. Callers check these with
// errors.Is; the API layer maps them to HTTP status codes.
var (
	// ErrMaterialNotFound indicates that the requested material does not
	// exist. The API layer maps this to HTTP 404.
	ErrMaterialNotFound = errors.New("material not found")
)

// MaterialServiceError wraps unexpected errors from the material service
// with operation context.
type MaterialServiceError struct {
	// Operation is the operation that failed (e.g. "submit_material")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

func (e *MaterialServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("material service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("material service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *MaterialServiceError) Unwrap() error {
	return e.Err
}

// NewMaterialServiceError wraps err with operation context. Known sentinel
// errors pass through unwrapped so callers can still match them.
func NewMaterialServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrMaterialNotFound) || errors.Is(err, store.ErrMaterialNotFound) {
		return ErrMaterialNotFound
	}

	return &MaterialServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
