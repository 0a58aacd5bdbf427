package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lexivid/lexivid/internal/domain"
)

// examplesSystemPrompt frames the provider's role for example generation.
const examplesSystemPrompt = `You write one short, natural example sentence using a given English phrase, suitable for a language learner. Respond with the sentence only.`

// runExamples generates an example sentence for each accepted candidate.
// Provider failure, or no provider at all, falls back to deterministic
// scenario text derived from the phrase; the job never fails on this
// enrichment call.
func (r *Runner) runExamples(ctx context.Context, state *domain.PipelineState) error {
	accepted := make([]*domain.Candidate, 0, len(state.Accepted))
	for _, phrase := range state.Accepted {
		if c, ok := state.Candidates[phrase]; ok {
			accepted = append(accepted, c)
		}
	}

	if r.generator == nil {
		for _, c := range accepted {
			c.Example = scenarioText(c.Phrase)
			if c.Explanation == "" {
				c.Explanation = heuristicExplanation(c.Phrase)
			}
		}
		return nil
	}

	var wg sync.WaitGroup
	for _, c := range accepted {
		wg.Add(1)
		go func(c *domain.Candidate) {
			defer wg.Done()
			r.exampleForCandidate(ctx, c)
		}(c)
	}
	wg.Wait()
	return nil
}

func (r *Runner) exampleForCandidate(ctx context.Context, c *domain.Candidate) {
	if c.Explanation == "" {
		c.Explanation = heuristicExplanation(c.Phrase)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		c.Example = scenarioText(c.Phrase)
		return
	}

	raw, err := r.generator.GenerateText(ctx, examplesSystemPrompt,
		fmt.Sprintf("Phrase: %q", c.Phrase), 0.7)
	if err != nil {
		r.logger.Debug("example generation failed, using scenario text",
			"phrase", c.Phrase,
			"error", err)
		c.Example = scenarioText(c.Phrase)
		return
	}

	example := strings.TrimSpace(raw)
	if example == "" {
		c.Example = scenarioText(c.Phrase)
		return
	}
	c.Example = example
}

// scenarioText is the deterministic fallback example for a phrase.
func scenarioText(phrase string) string {
	return fmt.Sprintf("In the video, the speaker uses the phrase %q.", phrase)
}

// heuristicExplanation is the placeholder explanation used when no provider
// explanation exists.
func heuristicExplanation(phrase string) string {
	return fmt.Sprintf("A phrase that appears in this material: %q.", phrase)
}
