package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/lexivid/lexivid/internal/domain"
)

// n-gram bounds for candidate extraction.
const (
	minNGram = 1
	maxNGram = 4
)

// runExtract builds the candidate map from normalized segment text: every
// 1..4-gram of each segment becomes a candidate, with occurrences merged by
// phrase key. Empty input converges to an empty candidate map.
func (r *Runner) runExtract(ctx context.Context, state *domain.PipelineState) error {
	if !state.Formatted {
		return fmt.Errorf("%w: format must run before extract", ErrStepOrder)
	}

	candidates := make(map[string]*domain.Candidate)
	for _, seg := range state.Segments {
		tokens := tokenize(seg.Text)
		for n := minNGram; n <= maxNGram; n++ {
			for i := 0; i+n <= len(tokens); i++ {
				phrase := strings.Join(tokens[i:i+n], " ")
				c, ok := candidates[phrase]
				if !ok {
					c = &domain.Candidate{
						Phrase:   phrase,
						Decision: domain.DecisionPending,
						Source:   domain.SourceHeuristic,
					}
					candidates[phrase] = c
				}
				c.Occurrences = append(c.Occurrences, domain.Occurrence{
					SegmentIndex: seg.Index,
					StartSec:     seg.StartSec,
					EndSec:       seg.EndSec,
				})
			}
		}
	}

	state.Candidates = candidates
	r.logger.Debug("extracted candidates",
		"target_id", state.TargetID,
		"segments", len(state.Segments),
		"candidates", len(candidates))
	return nil
}

// tokenize lowercases the text and splits it into word tokens, stripping
// punctuation from token edges. Tokens that contain no letters or digits
// are dropped.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		token := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
