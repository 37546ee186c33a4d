// Package testutil carries the deterministic helpers and fixtures the
// conformance harness and CLI are built on: a resettable logical clock
// for ordering trace events, run token sources, and the registered
// fixture schemas with their instance and rule builders.
package testutil

import "sync"

// TraceClock is a thread-safe monotonic logical clock. The harness
// stamps every trace event with a clock value so that two runs of the
// same scenario produce byte-identical traces.
//
// Unlike wall time, a TraceClock can be reset, letting one scenario run
// repeatedly with identical seq values.
type TraceClock struct {
	mu  sync.Mutex
	seq int64
}

// NewTraceClock creates a clock starting at 0. The first call to Next
// returns 1.
func NewTraceClock() *TraceClock {
	return &TraceClock{seq: 0}
}

// Next increments and returns the next sequence number.
func (c *TraceClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *TraceClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to 0. The next call to Next returns 1 again.
func (c *TraceClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
