package timer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestTickCountsDown(t *testing.T) {
	c := New(10*time.Second, nil)
	c.Tick(3 * time.Second)
	if got := c.Remaining(); got != 7*time.Second {
		t.Errorf("Remaining = %v, want 7s", got)
	}
	if got := c.Elapsed(); got != 3*time.Second {
		t.Errorf("Elapsed = %v, want 3s", got)
	}
}

func TestPauseIsRefcounted(t *testing.T) {
	c := New(10*time.Second, nil)
	c.Pause(ReasonModal)
	c.Pause(ReasonModal)
	c.Pause(ReasonSubmitting)

	c.Tick(time.Second)
	if c.Remaining() != 10*time.Second {
		t.Fatal("ticked while paused")
	}

	c.Resume(ReasonSubmitting)
	c.Resume(ReasonModal)
	if !c.Paused() {
		t.Fatal("one modal hold should remain")
	}
	c.Tick(time.Second)
	if c.Remaining() != 10*time.Second {
		t.Fatal("ticked with a hold left")
	}

	c.Resume(ReasonModal)
	c.Resume(ReasonModal) // extra resume is a no-op
	if c.Paused() {
		t.Fatal("still paused after releasing every hold")
	}
	c.Tick(time.Second)
	if c.Remaining() != 9*time.Second {
		t.Errorf("Remaining = %v, want 9s", c.Remaining())
	}

	// The stray resume must not swallow a later pause.
	c.Pause(ReasonModal)
	if !c.Paused() {
		t.Error("pause after surplus resume ignored")
	}
}

func TestExpiryFiresOnce(t *testing.T) {
	var fired atomic.Int32
	c := New(2*time.Second, func() { fired.Add(1) })

	if c.Tick(time.Second) {
		t.Fatal("expired early")
	}
	if !c.Tick(5 * time.Second) {
		t.Fatal("overshooting tick should expire")
	}
	c.Tick(time.Second)

	if fired.Load() != 1 {
		t.Errorf("onExpire fired %d times, want 1", fired.Load())
	}
	if c.Remaining() != 0 || !c.Expired() {
		t.Errorf("Remaining = %v, Expired = %v", c.Remaining(), c.Expired())
	}
}

func TestUrgencyBands(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    Urgency
	}{
		{0, Nominal},
		{69 * time.Second, Nominal},
		{70 * time.Second, Warning}, // 30% left
		{79 * time.Second, Warning},
		{80 * time.Second, Critical}, // 20% left
		{99 * time.Second, Critical},
	}
	for _, tt := range tests {
		c := New(100*time.Second, nil)
		c.Tick(tt.elapsed)
		if got := c.Urgency(); got != tt.want {
			t.Errorf("after %v Urgency = %v, want %v", tt.elapsed, got, tt.want)
		}
	}
}

func TestStopPreventsExpiry(t *testing.T) {
	var fired atomic.Bool
	c := New(time.Second, func() { fired.Store(true) })
	c.Stop()
	if c.Tick(2 * time.Second) {
		t.Error("stopped countdown expired")
	}
	if fired.Load() {
		t.Error("onExpire fired after Stop")
	}
}

func TestRunExpires(t *testing.T) {
	done := make(chan struct{})
	c := New(30*time.Millisecond, func() { close(done) })

	go c.Run(context.Background(), 5*time.Millisecond)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never expired")
	}
}

func TestRunCancelled(t *testing.T) {
	c := New(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	exited := make(chan struct{})
	go func() {
		c.Run(ctx, time.Millisecond)
		close(exited)
	}()

	cancel()
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
