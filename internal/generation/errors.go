package generation

import "errors"

// Typed errors returned by text-generation providers. Callers branch on
// these to choose between falling back and failing outright; provider
// failures must never be smuggled through as plain strings.
var (
	// ErrTimeout is returned when the provider did not answer within the
	// configured request timeout. The in-flight request is aborted.
	ErrTimeout = errors.New("text generation timed out")

	// ErrRequestFailed is returned for transport-level failures and non-2xx
	// provider responses.
	ErrRequestFailed = errors.New("text generation request failed")

	// ErrInvalidResponse is returned when the provider response cannot be
	// parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from text generation provider")

	// ErrInvalidConfig is returned when the provider configuration is
	// incomplete (missing credentials, model name). Fatal at startup,
	// never retried.
	ErrInvalidConfig = errors.New("invalid text generation configuration")
)
