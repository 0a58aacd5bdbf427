package domain

import "time"

// CandidateDecision is the accept/reject state of an extracted phrase.
type CandidateDecision string

// Possible candidate decisions
const (
	DecisionPending CandidateDecision = "pending"
	DecisionAccept  CandidateDecision = "accept"
	DecisionReject  CandidateDecision = "reject"
)

// DecisionSource records which mechanism produced the final decision and
// explanation. This is an observable audit field, not optional metadata:
// "heuristic" means no generation provider was configured, "gemini" means
// the provider refined the decision, "fallback" means the provider failed
// and the heuristic decision was kept.
type DecisionSource string

// Possible decision sources
const (
	SourceHeuristic DecisionSource = "heuristic"
	SourceGemini    DecisionSource = "gemini"
	SourceFallback  DecisionSource = "fallback"
)

// Candidate flag names set by scoring.
const (
	FlagSingleWord     = "single_word"
	FlagRareOccurrence = "rare_occurrence"
	FlagUnsafe         = "unsafe_or_inappropriate"
)

// Occurrence records one appearance of a candidate phrase in the
// formatted segments.
type Occurrence struct {
	SegmentIndex int     `json:"segment_index"`
	StartSec     float64 `json:"start_sec"`
	EndSec       float64 `json:"end_sec"`
}

// AxisScores holds the five per-axis scores that feed the composite.
// Each axis is in [0,100].
type AxisScores struct {
	Frequency  int `json:"frequency"`
	Length     int `json:"length"`
	Diversity  int `json:"diversity"`
	Coherence  int `json:"coherence"`
	Usefulness int `json:"usefulness"`
}

// Candidate is an extracted phrase awaiting a scoring/acceptance decision,
// plus the explanation fields filled in by later steps.
type Candidate struct {
	Phrase      string            `json:"phrase"`
	Occurrences []Occurrence      `json:"occurrences"`
	Axes        AxisScores        `json:"axes"`
	Score       int               `json:"score"`
	Decision    CandidateDecision `json:"decision"`
	Source      DecisionSource    `json:"source"`
	Flags       []string          `json:"flags,omitempty"`
	Explanation string            `json:"explanation,omitempty"`
	Example     string            `json:"example,omitempty"`
}

// HasFlag reports whether the candidate carries the named flag.
func (c *Candidate) HasFlag(name string) bool {
	for _, f := range c.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// AddFlag sets the named flag if not already present.
func (c *Candidate) AddFlag(name string) {
	if !c.HasFlag(name) {
		c.Flags = append(c.Flags, name)
	}
}

// Cue is one raw caption cue fetched from the caption provider.
type Cue struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Text     string  `json:"text"`
}

// Segment is one normalized unit of caption text produced by the format step.
type Segment struct {
	Index    int     `json:"index"`
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Text     string  `json:"text"`
}

// PipelineState is the per-(target, pipeline version) scratch record holding
// accumulated outputs of completed steps. Each step read-modify-writes it;
// it is never exposed outside the pipeline.
type PipelineState struct {
	TargetID        string                `json:"target_id"`
	PipelineVersion string                `json:"pipeline_version"`
	MetaLoaded      bool                  `json:"meta_loaded"`
	Title           string                `json:"title"`
	ExternalID      string                `json:"external_id"`
	ExternalURL     string                `json:"external_url"`
	CaptionsFetched bool                  `json:"captions_fetched"`
	CaptionSource   string                `json:"caption_source"`
	CaptionNote     string                `json:"caption_note,omitempty"`
	Cues            []Cue                 `json:"cues,omitempty"`
	Formatted       bool                  `json:"formatted"`
	Segments        []Segment             `json:"segments,omitempty"`
	SegmentCount    int                   `json:"segment_count"`
	Candidates      map[string]*Candidate `json:"candidates,omitempty"`
	Accepted        []string              `json:"accepted,omitempty"`
	Rejected        []string              `json:"rejected,omitempty"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewPipelineState creates an empty scratch record for the given target
// and pipeline version.
func NewPipelineState(targetID, pipelineVersion string) *PipelineState {
	return &PipelineState{
		TargetID:        targetID,
		PipelineVersion: pipelineVersion,
		Candidates:      make(map[string]*Candidate),
	}
}
