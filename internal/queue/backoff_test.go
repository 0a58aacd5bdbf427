package queue_test

import (
	"testing"
	"time"

	"github.com/lexivid/lexivid/internal/queue"
	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	t.Parallel()

	base := 30 * time.Second

	testCases := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{name: "first attempt waits one base unit", attempt: 1, want: 30 * time.Second},
		{name: "second attempt doubles", attempt: 2, want: 60 * time.Second},
		{name: "third attempt doubles again", attempt: 3, want: 120 * time.Second},
		{name: "fourth attempt", attempt: 4, want: 240 * time.Second},
		{name: "zero attempt treated as first", attempt: 0, want: 30 * time.Second},
		{name: "negative attempt treated as first", attempt: -3, want: 30 * time.Second},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, queue.Backoff(base, tc.attempt))
		})
	}
}

func TestBackoffGrowthIsUncapped(t *testing.T) {
	t.Parallel()

	base := time.Second
	assert.Equal(t, 512*time.Second, queue.Backoff(base, 10))
}
