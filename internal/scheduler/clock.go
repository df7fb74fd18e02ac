package scheduler

import (
	"sync"
	"time"
)

// ManualClock is a Clock advanced explicitly. Used by tests and simulations.
type ManualClock struct {
	now time.Duration
	mu  sync.Mutex
}

// NewManualClock creates a clock starting at zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the current reading.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

type wallClock struct {
	start time.Time
}

// NewWallClock returns a Clock measuring real time since its creation.
func NewWallClock() Clock {
	return wallClock{start: time.Now()}
}

func (c wallClock) Now() time.Duration {
	return time.Since(c.start)
}
