package pipeline

import "errors"

// CurrentVersion pins the step sequence and the compatibility of produced
// artifacts. Bump it when either changes; jobs carry the version they were
// enqueued under.
const CurrentVersion = "v1"

// Step is one named, ordered stage of the pipeline state machine.
type Step string

// The pipeline steps, in execution order.
const (
	StepMeta     Step = "meta"
	StepCaptions Step = "captions"
	StepASR      Step = "asr"
	StepFormat   Step = "format"
	StepExtract  Step = "extract"
	StepFilter   Step = "filter"
	StepScore    Step = "score"
	StepReeval   Step = "reeval"
	StepExamples Step = "examples"
	StepPersist  Step = "persist"
)

// steps is the canonical linear order. The successor lookup walks this
// slice, so the sequence stays introspectable and testable in isolation.
var steps = []Step{
	StepMeta,
	StepCaptions,
	StepASR,
	StepFormat,
	StepExtract,
	StepFilter,
	StepScore,
	StepReeval,
	StepExamples,
	StepPersist,
}

// Errors surfaced by step sequencing and precondition checks.
var (
	// ErrUnknownStep is returned when a job carries a step name that is not
	// part of this pipeline version.
	ErrUnknownStep = errors.New("unknown pipeline step")

	// ErrStepOrder is returned when a step runs before its predecessor has
	// populated the state it depends on. This is an orchestration bug, not
	// a transient condition, and is never silently skipped.
	ErrStepOrder = errors.New("pipeline step executed out of order")
)

// FirstStep returns the first step of the pipeline.
func FirstStep() Step {
	return steps[0]
}

// NextStep returns the successor of the given step. The second return is
// false when the step is the last one, signaling pipeline completion.
func NextStep(current Step) (Step, bool) {
	for i, s := range steps {
		if s == current && i+1 < len(steps) {
			return steps[i+1], true
		}
	}
	return "", false
}

// IsValid reports whether s names a step of this pipeline version.
func IsValid(s Step) bool {
	for _, known := range steps {
		if known == s {
			return true
		}
	}
	return false
}

// AllSteps returns the ordered step list.
func AllSteps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}
