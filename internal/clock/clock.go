// Package clock provides the monotonic elapsed-time source for puzzle
// sessions.
package clock

import "time"

// Clock accumulates elapsed play time across pause/resume cycles. It reads
// a monotonic source, so wall-clock changes and system suspension do not
// distort the total: time.Since on a monotonic reading covers a suspended
// interval, and a paused Clock accumulates nothing.
//
// Clock is not safe for concurrent use; a session owns exactly one.
type Clock struct {
	now         func() time.Time
	accumulated time.Duration
	startedAt   time.Time // Zero when stopped or paused
	running     bool
	paused      bool
}

// New returns a stopped Clock backed by time.Now.
func New() *Clock {
	return NewWithSource(time.Now)
}

// NewWithSource returns a Clock reading from now, for tests.
func NewWithSource(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Start begins timing. Starting a running Clock is a no-op.
func (c *Clock) Start() {
	if c.running {
		return
	}
	c.running = true
	c.paused = false
	c.startedAt = c.now()
}

// Pause freezes the elapsed total. Idempotent.
func (c *Clock) Pause() {
	if !c.running || c.paused {
		return
	}
	c.accumulated += c.now().Sub(c.startedAt)
	c.paused = true
	c.startedAt = time.Time{}
}

// Resume continues timing after a Pause. Resuming a running Clock is a
// no-op.
func (c *Clock) Resume() {
	if !c.running || !c.paused {
		return
	}
	c.paused = false
	c.startedAt = c.now()
}

// Stop freezes the total permanently (until the next Start, which resumes
// accumulating on top of it).
func (c *Clock) Stop() {
	if !c.running {
		return
	}
	if !c.paused {
		c.accumulated += c.now().Sub(c.startedAt)
	}
	c.running = false
	c.paused = false
	c.startedAt = time.Time{}
}

// Running reports whether the Clock is started and not paused.
func (c *Clock) Running() bool {
	return c.running && !c.paused
}

// Paused reports whether the Clock is started but paused.
func (c *Clock) Paused() bool {
	return c.running && c.paused
}

// Elapsed returns the accumulated play time.
func (c *Clock) Elapsed() time.Duration {
	if c.running && !c.paused {
		return c.accumulated + c.now().Sub(c.startedAt)
	}
	return c.accumulated
}

// ElapsedMs returns the accumulated play time in milliseconds.
func (c *Clock) ElapsedMs() int64 {
	return c.Elapsed().Milliseconds()
}

// Preload seeds the accumulated total, used when resuming a persisted
// session. Only valid on a stopped Clock.
func (c *Clock) Preload(d time.Duration) {
	if !c.running {
		c.accumulated = d
	}
}
