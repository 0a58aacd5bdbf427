package queue

import "time"

// Backoff returns the delay before a failed job becomes eligible for its
// next attempt: base * 2^(attempt-1), so attempt 1 waits one base unit,
// attempt 2 two, attempt 3 four. Attempts below 1 are treated as 1. Growth
// is deliberately uncapped; max_attempts bounds how far it can climb.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(1<<uint(attempt-1))
}
