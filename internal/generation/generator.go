package generation

import "context"

// TextGenerator is the boundary between the pipeline and external LLM
// services. Implementations fail with the typed errors in this package so
// the reevaluation and examples steps can select a deterministic fallback
// as a visible branch rather than a caught panic.
type TextGenerator interface {
	// GenerateText sends the prompts to the provider and returns the raw
	// generated text. temperature controls sampling; pass 0 for the
	// provider default.
	GenerateText(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
}
