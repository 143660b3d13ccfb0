package core

import (
	"context"
	"time"
)

// FixedStep converts elapsed wall time into a whole number of fixed ticks.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time

	// MaxSteps caps how many ticks one call to Due may report; time beyond
	// the cap is dropped. Zero means no cap.
	MaxSteps int
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int, now func() time.Time) *FixedStep {
	if now == nil {
		now = time.Now
	}
	fs := &FixedStep{now: now, MaxSteps: 4}
	fs.SetTPS(tps)
	return fs
}

// SetTPS changes the tick rate. It is safe to call from the main loop.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Step returns the fixed tick length.
func (f *FixedStep) Step() time.Duration { return f.step }

// Due reports how many ticks have elapsed since the previous call. The first
// call only starts the accumulator.
func (f *FixedStep) Due() int {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
		return 0
	}
	f.accumulator += now.Sub(f.last)
	f.last = now
	n := 0
	for f.accumulator >= f.step {
		f.accumulator -= f.step
		n++
		if f.MaxSteps > 0 && n == f.MaxSteps {
			f.accumulator = 0
			break
		}
	}
	return n
}

// RunFixed is Run with a fixed delta: every tick advances by exactly 1/tps
// regardless of scheduling jitter, so a wall-clock run reproduces the same
// trace as an offline Step loop.
func (c *Clock) RunFixed(ctx context.Context, tps int) error {
	fs := NewFixedStep(tps, c.now)
	fs.Due()
	ticker := time.NewTicker(fs.Step())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for n := fs.Due(); n > 0; n-- {
				c.Step(fs.Step())
			}
		}
	}
}
