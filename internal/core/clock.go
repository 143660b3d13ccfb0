package core

import (
	"context"
	"time"

	"arcade-drive/internal/event"

	"github.com/rs/zerolog"
)

// TickEvent is triggered once per frame after the clock advances.
const TickEvent = "tick"

// DefaultMaxDelta caps a single frame step so a suspended window does not
// integrate as one huge jump.
const DefaultMaxDelta = time.Second / 15

// ClockOptions configures a Clock. Zero values select the defaults.
type ClockOptions struct {
	// Now replaces time.Now, mainly for tests.
	Now func() time.Time
	// MaxDelta clamps the per-frame delta. Negative disables the clamp.
	MaxDelta time.Duration
	Log      zerolog.Logger
}

// Clock samples time once per frame and publishes the frame delta. Consumers
// subscribe to TickEvent and read Delta from the clock itself.
type Clock struct {
	bus      *event.Bus
	now      func() time.Time
	maxDelta time.Duration
	log      zerolog.Logger

	start   time.Time
	current time.Time
	delta   time.Duration
	elapsed time.Duration
	ticks   uint64
	clamped uint64
}

// NewClock records the start time and returns a clock publishing on bus.
func NewClock(bus *event.Bus, opts ClockOptions) *Clock {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	maxDelta := opts.MaxDelta
	if maxDelta == 0 {
		maxDelta = DefaultMaxDelta
	}
	c := &Clock{bus: bus, now: now, maxDelta: maxDelta, log: opts.Log}
	c.start = now()
	c.current = c.start
	return c
}

// Tick samples the time source, advances by the elapsed wall time and
// triggers TickEvent.
func (c *Clock) Tick() {
	now := c.now()
	d := now.Sub(c.current)
	c.current = now
	c.advance(d)
}

// Step advances by an explicit delta instead of sampling the time source.
// It follows the same clamp and dispatch path as Tick.
func (c *Clock) Step(d time.Duration) {
	c.current = c.current.Add(d)
	c.advance(d)
}

func (c *Clock) advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	if c.maxDelta > 0 && d > c.maxDelta {
		c.clamped++
		c.log.Debug().
			Dur("delta", d).
			Dur("max", c.maxDelta).
			Uint64("tick", c.ticks+1).
			Msg("frame delta clamped")
		d = c.maxDelta
	}
	c.delta = d
	c.elapsed += d
	c.ticks++
	if c.bus != nil {
		c.bus.Trigger(TickEvent)
	}
}

// Run drives Tick at the given rate until ctx is cancelled.
func (c *Clock) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Delta returns the (possibly clamped) duration of the last frame.
func (c *Clock) Delta() time.Duration { return c.delta }

// DeltaSeconds returns Delta in seconds.
func (c *Clock) DeltaSeconds() float64 { return c.delta.Seconds() }

// Elapsed returns the sum of all frame deltas since construction.
func (c *Clock) Elapsed() time.Duration { return c.elapsed }

// Start returns the construction timestamp.
func (c *Clock) Start() time.Time { return c.start }

// Ticks returns the number of frames advanced so far.
func (c *Clock) Ticks() uint64 { return c.ticks }

// Clamped returns how many frames had their delta capped.
func (c *Clock) Clamped() uint64 { return c.clamped }

// SetMaxDelta replaces the delta cap. Zero restores the default and a
// negative value disables the cap.
func (c *Clock) SetMaxDelta(d time.Duration) {
	if d == 0 {
		d = DefaultMaxDelta
	}
	c.maxDelta = d
}

// MaxDelta returns the active delta cap.
func (c *Clock) MaxDelta() time.Duration { return c.maxDelta }
