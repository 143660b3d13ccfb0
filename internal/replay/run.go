package replay

import (
	"fmt"
	"math"
	"sync"
	"time"

	"arcade-drive/internal/app"
	"arcade-drive/internal/config"
	"arcade-drive/internal/core"
	"arcade-drive/internal/event"

	"github.com/rs/zerolog"
)

// EdgePriority applies scripted key edges ahead of the vehicle on each tick.
const EdgePriority = -1

// Attach plays script against the session's own clock: on tick n (counting
// from zero) presses starting at n go down and presses ending at n come up,
// before the vehicle integrates that tick. Remove the returned token from
// the bus to stop playback.
func Attach(s *app.Session, script Script) event.Token {
	in := s.Ctx.Input
	clk := s.Ctx.Clock
	return s.Ctx.Bus.On(core.TickEvent, func(...any) {
		i := int(clk.Ticks()) - 1
		for _, p := range script {
			if p.End == i {
				in.KeyUp(p.Code)
			}
		}
		for _, p := range script {
			if p.Start == i {
				in.KeyDown(p.Code, false)
			}
		}
	}, EdgePriority)
}

// Run plays script for the given number of ticks, stepping the clock by dt
// each tick, and returns the frame recorded after every tick. The session
// should be fresh so tick numbering starts at zero.
func Run(s *app.Session, script Script, ticks int, dt time.Duration) []app.Frame {
	tok := Attach(s, script)
	defer s.Ctx.Bus.Remove(core.TickEvent, tok)

	frames := make([]app.Frame, 0, ticks)
	for i := 0; i < ticks; i++ {
		s.Ctx.Clock.Step(dt)
		frames = append(frames, s.Frame())
	}
	return frames
}

// Summary condenses a run into a handful of handling metrics.
type Summary struct {
	Distance    float64 `json:"distance"`
	TopSpeed    float64 `json:"topSpeed"`
	FinalSpeed  float64 `json:"finalSpeed"`
	FinalYaw    float64 `json:"finalYaw"`
	MaxSteering float64 `json:"maxSteering"`
	SettledTick int     `json:"settledTick"`
}

// Summarize computes a Summary. SettledTick is the first tick after which the
// camera never settles again, or -1 when it is still settling at the end.
func Summarize(frames []app.Frame) Summary {
	var sum Summary
	sum.SettledTick = -1
	for i, f := range frames {
		if i > 0 {
			prev := frames[i-1].Position
			sum.Distance += math.Hypot(f.Position[0]-prev[0], f.Position[2]-prev[2])
		}
		sum.TopSpeed = math.Max(sum.TopSpeed, math.Abs(f.Speed))
		sum.MaxSteering = math.Max(sum.MaxSteering, math.Abs(f.Steering))
		if f.Settling {
			sum.SettledTick = -1
		} else if sum.SettledTick < 0 {
			sum.SettledTick = i
		}
	}
	if n := len(frames); n > 0 {
		sum.FinalSpeed = frames[n-1].Speed
		sum.FinalYaw = frames[n-1].Yaw
	}
	return sum
}

// SweepResult is one candidate of a parameter sweep.
type SweepResult struct {
	Key     string  `json:"key"`
	Value   float64 `json:"value"`
	Summary Summary `json:"summary"`
}

// Sweep replays script once per candidate value of key, each in a fresh
// session built from base, using up to workers goroutines. Results keep the
// order of values.
func Sweep(base config.Settings, key string, values []float64, script Script, ticks int, dt time.Duration, workers int) ([]SweepResult, error) {
	probe := base
	if !probe.Set(key, 0) {
		return nil, fmt.Errorf("sweep: unknown key %q", key)
	}
	if workers <= 0 {
		workers = 1
	}

	results := make([]SweepResult, len(values))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for idx, value := range values {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, v float64) {
			defer wg.Done()
			settings := base
			settings.Set(key, v)
			s := app.NewSession(zerolog.Nop(), settings, core.ClockOptions{})
			frames := Run(s, script, ticks, dt)
			s.Close()
			results[i] = SweepResult{Key: key, Value: v, Summary: Summarize(frames)}
			<-sem
		}(idx, value)
	}

	wg.Wait()
	return results, nil
}
