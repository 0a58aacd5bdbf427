// Package captions defines the boundary to the external caption-fetching
// tool. "No captions available" is a typed result, never an error: only
// transport and tooling failures surface as errors.
package captions

import (
	"context"

	"github.com/lexivid/lexivid/internal/domain"
)

// Status of a caption fetch.
type Status string

// Possible fetch statuses
const (
	StatusFetched     Status = "fetched"
	StatusUnavailable Status = "unavailable"
)

// Well-known unavailability reasons.
const (
	ReasonNoCaptions  = "no_captions"
	ReasonRestricted  = "restricted"
	ReasonToolFailure = "tool_failure"
)

// Result is the outcome of one caption fetch.
type Result struct {
	Status  Status       `json:"status"`
	Cues    []domain.Cue `json:"cues,omitempty"`
	Reason  string       `json:"reason,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Provider fetches caption cues for a material from an external tool.
type Provider interface {
	// FetchCaptions retrieves captions for the material. A missing caption
	// track yields StatusUnavailable with a reason, not an error.
	FetchCaptions(ctx context.Context, targetID, externalID, externalURL string) (*Result, error)
}
