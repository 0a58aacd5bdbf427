package queue

import (
	"time"

	"github.com/lexivid/lexivid/internal/domain"
)

// DuplicateOutcome is the result of inspecting a job's siblings (other job
// rows with the same type, target and pipeline version) during a claim.
type DuplicateOutcome int

const (
	// DuplicateNone means no equivalent job is done or actively processing;
	// the candidate may be claimed.
	DuplicateNone DuplicateOutcome = iota

	// DuplicateDone means an equivalent job already completed; the candidate
	// should be marked done without executing.
	DuplicateDone

	// DuplicateActive means an equivalent job is processing under a live
	// lock; the candidate should be deferred, not claimed.
	DuplicateActive
)

// ResolveDuplicates applies the duplicate-resolution rule to a job's
// siblings: done beats processing beats queued. A processing sibling only
// counts while its lock is live; a stale lock is presumed abandoned and does
// not block the claim (the reclaimer will requeue it).
func ResolveDuplicates(siblings []*domain.Job, now time.Time, lockTimeout time.Duration) DuplicateOutcome {
	outcome := DuplicateNone
	for _, s := range siblings {
		switch s.Status {
		case domain.JobStatusDone:
			return DuplicateDone
		case domain.JobStatusProcessing:
			if !IsLockStale(s.LockedAt, now, lockTimeout) {
				outcome = DuplicateActive
			}
		}
	}
	return outcome
}
