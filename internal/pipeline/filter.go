package pipeline

import (
	"context"
	"strings"

	"github.com/lexivid/lexivid/internal/domain"
)

// stopwords that disqualify a single-token candidate outright.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"with": {}, "by": {}, "from": {}, "as": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "it": {}, "its": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "i": {}, "you": {},
	"he": {}, "she": {}, "we": {}, "they": {}, "my": {}, "your": {},
	"so": {}, "if": {}, "not": {}, "no": {}, "do": {}, "does": {},
}

// runFilter removes degenerate candidates: phrases that are too short,
// URL-like fragments, and bare stop-words.
func (r *Runner) runFilter(ctx context.Context, state *domain.PipelineState) error {
	removed := 0
	for phrase := range state.Candidates {
		if isDegenerate(phrase) {
			delete(state.Candidates, phrase)
			removed++
		}
	}

	r.logger.Debug("filtered candidates",
		"target_id", state.TargetID,
		"removed", removed,
		"remaining", len(state.Candidates))
	return nil
}

// isDegenerate reports whether a phrase should never become a candidate.
func isDegenerate(phrase string) bool {
	if len([]rune(phrase)) < 3 {
		return true
	}

	if isURLLike(phrase) {
		return true
	}

	if !strings.Contains(phrase, " ") {
		if _, ok := stopwords[phrase]; ok {
			return true
		}
	}

	return false
}

func isURLLike(phrase string) bool {
	for _, marker := range []string{"http://", "https://", "www.", ".com", ".net", ".org"} {
		if strings.Contains(phrase, marker) {
			return true
		}
	}
	return false
}
