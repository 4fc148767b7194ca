// Package timeutil abstracts the wall clock so per-frame loops can be driven
// deterministically in tests and simulations.
package timeutil

import (
	"sync"
	"time"
)

// Clock is the time source of throttled loops.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// MockClock only moves when told to. The simulator advances it one display
// frame at a time.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock returns a MockClock reading t.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now implements Clock.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set jumps the clock to t, backwards if need be.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Since implements Clock.
func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Throttle gates a per-frame callback to run at most once per Interval.
// The first call to Ready always succeeds. Not safe for concurrent use; it is
// owned by the single per-frame update loop.
type Throttle struct {
	Clock    Clock
	Interval time.Duration

	last    time.Time
	started bool
}

// NewThrottle returns a Throttle using clock. A nil clock uses RealClock.
func NewThrottle(clock Clock, interval time.Duration) *Throttle {
	if clock == nil {
		clock = RealClock{}
	}
	return &Throttle{Clock: clock, Interval: interval}
}

// Ready reports whether Interval has elapsed since the last successful call
// and, if so, restarts the interval.
func (t *Throttle) Ready() bool {
	now := t.Clock.Now()
	if t.started && now.Sub(t.last) < t.Interval {
		return false
	}
	t.started = true
	t.last = now
	return true
}

// Reset makes the next Ready call succeed.
func (t *Throttle) Reset() {
	t.started = false
}
