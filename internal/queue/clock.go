package queue

import "time"

// Clock is an injectable source of wall-clock time. All queue components
// take their timestamps from a Clock so tests can control time arithmetic.
type Clock interface {
	// Now returns the current time in UTC.
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}
