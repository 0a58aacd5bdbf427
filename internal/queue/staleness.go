package queue

import "time"

// IsLockStale reports whether a lock acquired at lockedAt has outlived the
// timeout at the given instant. A missing lockedAt is always stale: the
// policy fails safe toward reclamation rather than indefinite holding.
func IsLockStale(lockedAt *time.Time, now time.Time, timeout time.Duration) bool {
	if lockedAt == nil {
		return true
	}
	return now.Sub(*lockedAt) > timeout
}
