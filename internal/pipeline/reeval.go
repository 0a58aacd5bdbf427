package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lexivid/lexivid/internal/domain"
)

// reevalSystemPrompt frames the provider's role for decision refinement.
const reevalSystemPrompt = `You review candidate phrases mined from video captions for a language-learning app. Decide whether each phrase is worth teaching and explain it briefly. Respond with JSON only: {"decision": "accept" | "reject", "explanation": "..."}.`

// reevalResponseSchema validates the provider's JSON before it is trusted.
// A response that fails validation counts as invalid_response and falls
// back to the heuristic decision.
var reevalResponseSchema = jsonschema.MustCompileString("reeval_response.json", `{
	"type": "object",
	"required": ["decision", "explanation"],
	"properties": {
		"decision": {"type": "string", "enum": ["accept", "reject"]},
		"explanation": {"type": "string", "minLength": 1}
	}
}`)

// reevalResponse is the decoded provider verdict.
type reevalResponse struct {
	Decision    string `json:"decision"`
	Explanation string `json:"explanation"`
}

// runReeval refines each candidate's accept/reject decision and explanation
// with one generation call per candidate, issued concurrently under the rate
// limiter. Provider failure of any kind falls back deterministically to the
// heuristic decision; the Source marker records which path produced the
// final decision. Unsafe-flagged candidates are never flipped to accept.
func (r *Runner) runReeval(ctx context.Context, state *domain.PipelineState) error {
	if r.generator == nil {
		// No provider configured: heuristic decisions stand as-is.
		for _, c := range state.Candidates {
			c.Source = domain.SourceHeuristic
		}
		rebuildDecisionSets(state)
		return nil
	}

	var wg sync.WaitGroup
	for _, c := range state.Candidates {
		wg.Add(1)
		go func(c *domain.Candidate) {
			defer wg.Done()
			r.reevalCandidate(ctx, c)
		}(c)
	}
	wg.Wait()

	rebuildDecisionSets(state)
	return nil
}

// reevalCandidate runs one provider call for one candidate and applies the
// verdict or the fallback. Candidates in the map are disjoint, so no
// locking is needed here.
func (r *Runner) reevalCandidate(ctx context.Context, c *domain.Candidate) {
	if err := r.limiter.Wait(ctx); err != nil {
		c.Source = domain.SourceFallback
		return
	}

	prompt := fmt.Sprintf(
		"Phrase: %q\nHeuristic score: %d\nHeuristic decision: %s\nOccurrences: %d",
		c.Phrase, c.Score, c.Decision, len(c.Occurrences),
	)

	raw, err := r.generator.GenerateText(ctx, reevalSystemPrompt, prompt, 0.2)
	if err != nil {
		r.logger.Debug("reevaluation call failed, using heuristic decision",
			"phrase", c.Phrase,
			"error", err)
		c.Source = domain.SourceFallback
		return
	}

	verdict, err := parseReevalResponse(raw)
	if err != nil {
		r.logger.Debug("reevaluation response invalid, using heuristic decision",
			"phrase", c.Phrase,
			"error", err)
		c.Source = domain.SourceFallback
		return
	}

	if verdict.Decision == "accept" && !c.HasFlag(domain.FlagUnsafe) {
		c.Decision = domain.DecisionAccept
	} else {
		c.Decision = domain.DecisionReject
	}
	c.Explanation = verdict.Explanation
	c.Source = domain.SourceGemini
}

// parseReevalResponse extracts and validates the provider's JSON verdict.
// Providers sometimes wrap JSON in code fences; those are stripped first.
func parseReevalResponse(raw string) (*reevalResponse, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var generic any
	if err := json.Unmarshal([]byte(trimmed), &generic); err != nil {
		return nil, fmt.Errorf("reevaluation response is not JSON: %w", err)
	}
	if err := reevalResponseSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("reevaluation response failed schema validation: %w", err)
	}

	var resp reevalResponse
	if err := json.Unmarshal([]byte(trimmed), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
