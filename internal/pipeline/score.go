package pipeline

import (
	"context"
	"sort"
	"strings"

	"github.com/lexivid/lexivid/internal/domain"
)

// AcceptThreshold is the minimum composite score for heuristic acceptance.
const AcceptThreshold = 75

// Axis weights for the composite score. They sum to 1.
const (
	weightFrequency  = 0.30
	weightLength     = 0.20
	weightDiversity  = 0.20
	weightCoherence  = 0.15
	weightUsefulness = 0.15
)

// Flag penalties subtracted from the weighted composite.
const (
	penaltySingleWord = 15
	penaltyRare       = 10
	penaltyUnsafe     = 60
)

// unsafeTerms is a minimal blocklist; matching any term flags the candidate
// unsafe_or_inappropriate, which rejects it regardless of score.
var unsafeTerms = map[string]struct{}{
	"fuck": {}, "shit": {}, "bitch": {}, "bastard": {}, "asshole": {},
	"cunt": {}, "dick": {}, "slut": {}, "whore": {}, "piss": {},
}

// runScore computes the weighted composite of the five axis scores for each
// candidate, applies flag penalties, clamps to [0,100] and makes the
// heuristic accept/reject decision. It also rebuilds the accepted/rejected
// sets in the state.
func (r *Runner) runScore(ctx context.Context, state *domain.PipelineState) error {
	for _, c := range state.Candidates {
		scoreCandidate(c)
	}
	rebuildDecisionSets(state)

	r.logger.Debug("scored candidates",
		"target_id", state.TargetID,
		"accepted", len(state.Accepted),
		"rejected", len(state.Rejected))
	return nil
}

// scoreCandidate fills in axes, flags, composite score and the heuristic
// decision for one candidate.
func scoreCandidate(c *domain.Candidate) {
	words := strings.Split(c.Phrase, " ")

	c.Flags = nil
	if len(words) == 1 {
		c.AddFlag(domain.FlagSingleWord)
	}
	if len(c.Occurrences) < 2 {
		c.AddFlag(domain.FlagRareOccurrence)
	}
	for _, w := range words {
		if _, ok := unsafeTerms[w]; ok {
			c.AddFlag(domain.FlagUnsafe)
			break
		}
	}

	c.Axes = domain.AxisScores{
		Frequency:  frequencyAxis(len(c.Occurrences)),
		Length:     lengthAxis(len(words)),
		Diversity:  diversityAxis(c.Occurrences),
		Coherence:  coherenceAxis(words),
		Usefulness: usefulnessAxis(c.Phrase),
	}

	composite := weightFrequency*float64(c.Axes.Frequency) +
		weightLength*float64(c.Axes.Length) +
		weightDiversity*float64(c.Axes.Diversity) +
		weightCoherence*float64(c.Axes.Coherence) +
		weightUsefulness*float64(c.Axes.Usefulness)

	if c.HasFlag(domain.FlagSingleWord) {
		composite -= penaltySingleWord
	}
	if c.HasFlag(domain.FlagRareOccurrence) {
		composite -= penaltyRare
	}
	if c.HasFlag(domain.FlagUnsafe) {
		composite -= penaltyUnsafe
	}

	c.Score = clampScore(int(composite + 0.5))
	c.Source = domain.SourceHeuristic

	if c.Score >= AcceptThreshold && !c.HasFlag(domain.FlagUnsafe) {
		c.Decision = domain.DecisionAccept
	} else {
		c.Decision = domain.DecisionReject
	}
}

// rebuildDecisionSets recomputes the sorted accepted/rejected phrase lists
// from the candidate map.
func rebuildDecisionSets(state *domain.PipelineState) {
	state.Accepted = nil
	state.Rejected = nil
	for phrase, c := range state.Candidates {
		switch c.Decision {
		case domain.DecisionAccept:
			state.Accepted = append(state.Accepted, phrase)
		case domain.DecisionReject:
			state.Rejected = append(state.Rejected, phrase)
		}
	}
	sort.Strings(state.Accepted)
	sort.Strings(state.Rejected)
}

func frequencyAxis(occurrences int) int {
	return clampScore(occurrences * 25)
}

func lengthAxis(words int) int {
	switch words {
	case 1:
		return 20
	case 2:
		return 80
	case 3:
		return 100
	default:
		return 90
	}
}

func diversityAxis(occ []domain.Occurrence) int {
	if len(occ) == 0 {
		return 0
	}
	segments := make(map[int]struct{}, len(occ))
	for _, o := range occ {
		segments[o.SegmentIndex] = struct{}{}
	}
	return clampScore(len(segments) * 100 / len(occ))
}

// coherenceAxis penalizes phrases that begin or end on a stop-word, which
// usually marks an n-gram cut mid-constituent.
func coherenceAxis(words []string) int {
	score := 100
	if _, ok := stopwords[words[0]]; ok {
		score -= 30
	}
	if _, ok := stopwords[words[len(words)-1]]; ok {
		score -= 30
	}
	return score
}

// usefulnessAxis favors purely alphabetic phrases of teachable length.
func usefulnessAxis(phrase string) int {
	score := 100
	for _, r := range phrase {
		if r >= '0' && r <= '9' {
			score -= 40
			break
		}
	}
	if len([]rune(phrase)) > 40 {
		score -= 30
	}
	return clampScore(score)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
