// Package testutil provides deterministic helpers shared by tests and the
// scenario harness.
package testutil

import (
	"sync"
	"time"
)

// Clock is a deterministic wall clock: every call to Now returns the current
// instant and advances by a fixed step. Engines built with it stamp records
// with reproducible timestamps, which golden-file comparison depends on.
//
// Thread-safety: all methods are safe for concurrent use.
type Clock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewClock creates a clock starting at start, advancing by step per call.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{next: start, step: step}
}

// DefaultClock returns the clock scenario golden files are recorded against:
// 2024-03-01T09:00:00Z, advancing one minute per record.
func DefaultClock() *Clock {
	return NewClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), time.Minute)
}

// Now returns the current instant and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}
