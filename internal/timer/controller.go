// Package timer runs the countdown of a timed drill.
package timer

import (
	"context"
	"sync"
	"time"
)

// Reason names why the countdown is held. Holds are counted per reason, so
// two overlapping modals need two resumes.
type Reason string

const (
	ReasonModal       Reason = "modal"
	ReasonSubmitting  Reason = "submitting"
	ReasonExitConfirm Reason = "exit-confirm"
	ReasonOutOfGems   Reason = "out-of-gems"
)

// Urgency bands the remaining time for display.
type Urgency int

const (
	Nominal  Urgency = iota
	Warning          // 30% or less left
	Critical         // 20% or less left
)

func (u Urgency) String() string {
	switch u {
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "nominal"
	}
}

// Controller is a pausable countdown owned by one session. It is safe for
// concurrent use.
type Controller struct {
	mu        sync.Mutex
	total     time.Duration
	remaining time.Duration
	holds     map[Reason]int
	expired   bool
	stopped   bool
	onExpire  func()
}

// New returns a running countdown of total. onExpire, if set, is called
// once when the countdown reaches zero.
func New(total time.Duration, onExpire func()) *Controller {
	return &Controller{
		total:     total,
		remaining: total,
		holds:     make(map[Reason]int),
		onExpire:  onExpire,
	}
}

// Pause adds a hold for reason.
func (c *Controller) Pause(reason Reason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holds[reason]++
}

// Resume releases one hold for reason. Releasing a reason that holds
// nothing is a no-op.
func (c *Controller) Resume(reason Reason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.holds[reason] <= 1 {
		delete(c.holds, reason)
		return
	}
	c.holds[reason]--
}

// Paused reports whether any hold is active.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.holds) > 0
}

// Tick counts elapsed time off the clock unless the countdown is paused,
// stopped or already expired. It reports whether this tick expired it.
func (c *Controller) Tick(elapsed time.Duration) bool {
	c.mu.Lock()
	if c.stopped || c.expired || len(c.holds) > 0 || elapsed <= 0 {
		c.mu.Unlock()
		return false
	}
	c.remaining -= elapsed
	if c.remaining > 0 {
		c.mu.Unlock()
		return false
	}
	c.remaining = 0
	c.expired = true
	fn := c.onExpire
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
	return true
}

// Remaining returns the time left.
func (c *Controller) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Elapsed returns the active time spent so far. Paused time is excluded.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total - c.remaining
}

// Total returns the countdown seed.
func (c *Controller) Total() time.Duration {
	return c.total
}

// Expired reports whether the countdown reached zero.
func (c *Controller) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Urgency returns the display band of the remaining time.
func (c *Controller) Urgency() Urgency {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.total <= 0 {
		return Nominal
	}
	frac := float64(c.remaining) / float64(c.total)
	switch {
	case frac <= 0.2:
		return Critical
	case frac <= 0.3:
		return Warning
	default:
		return Nominal
	}
}

// Stop disposes the countdown; later ticks do nothing and the expiry
// callback never fires.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
}

// Stopped reports whether Stop was called.
func (c *Controller) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// Run ticks the countdown every interval until ctx is done, the
// countdown expires or Stop is called.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.Tick(interval) || c.Expired() || c.Stopped() {
				return
			}
		}
	}
}
