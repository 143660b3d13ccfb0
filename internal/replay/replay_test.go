package replay

import (
	"math"
	"testing"
	"time"

	"arcade-drive/internal/app"
	"arcade-drive/internal/config"
	"arcade-drive/internal/core"
	"arcade-drive/internal/vehicle"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	s, err := Parse("KeyW@0-120, ArrowLeft@30-60\n# comment only\nSpace@100   # brake\n\n")
	require.NoError(t, err)
	assert.Equal(t, Script{
		{Code: "KeyW", Start: 0, End: 120},
		{Code: "ArrowLeft", Start: 30, End: 60},
		{Code: "Space", Start: 100, End: -1},
	}, s)
	assert.Equal(t, 120, s.Span())
	assert.Equal(t, "KeyW@0-120,ArrowLeft@30-60,Space@100", s.String())
}

func TestParseEmpty(t *testing.T) {
	s, err := Parse("  \n# nothing\n")
	require.NoError(t, err)
	assert.Empty(t, s)
	assert.Zero(t, s.Span())
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"KeyW",
		"KeyW@",
		"KeyW@x-3",
		"KeyW@5-5",
		"KeyW@5-2",
		"KeyW@-1",
		"@3-4",
		"Key W@1-2",
		"KeyW@1-z",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadScript)
		})
	}
}

func newSession() *app.Session {
	return app.NewSession(zerolog.Nop(), config.DefaultSettings(), core.ClockOptions{})
}

func TestRunAppliesEdgesBeforeStep(t *testing.T) {
	s := newSession()
	defer s.Close()
	script := Script{{Code: "KeyW", Start: 2, End: 4}}

	frames := Run(s, script, 6, time.Second/60)
	require.Len(t, frames, 6)

	assert.False(t, frames[1].Driving)
	assert.True(t, frames[2].Driving)
	assert.True(t, frames[3].Driving)
	assert.False(t, frames[4].Driving)
	assert.Zero(t, frames[1].Speed)
	assert.Greater(t, frames[2].Speed, 0.0)
	assert.Equal(t, uint64(6), frames[5].Tick)
}

func TestRunIsDeterministic(t *testing.T) {
	script, err := Parse("KeyW@0-200, ArrowLeft@20-80, ArrowRight@90-130, KeyS@180-240")
	require.NoError(t, err)

	a := newSession()
	defer a.Close()
	b := newSession()
	defer b.Close()

	assert.Equal(t, Run(a, script, 260, time.Second/60), Run(b, script, 260, time.Second/60))
}

func TestRunScenarioSteeringSettles(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Vehicle.SteeringAngleMax = math.Pi / 6
	settings.Vehicle.SteeringSpeed = math.Pi
	s := app.NewSession(zerolog.Nop(), settings, core.ClockOptions{})
	defer s.Close()

	frames := Run(s, Script{{Code: "ArrowLeft", Start: 0, End: -1}}, 10, time.Second/60)
	assert.InDelta(t, math.Pi/6, frames[9].Steering, vehicle.SteerEpsilon)
}

func TestSummarize(t *testing.T) {
	frames := []app.Frame{
		{Position: [3]float64{0, 0, 0}, Speed: 1, Settling: true},
		{Position: [3]float64{0, 0, -3}, Speed: 4, Steering: -0.2, Settling: false},
		{Position: [3]float64{4, 0, -3}, Speed: 2, Yaw: 0.5, Settling: false},
	}
	sum := Summarize(frames)
	assert.InDelta(t, 7, sum.Distance, 1e-12)
	assert.Equal(t, 4.0, sum.TopSpeed)
	assert.Equal(t, 2.0, sum.FinalSpeed)
	assert.Equal(t, 0.5, sum.FinalYaw)
	assert.Equal(t, 0.2, sum.MaxSteering)
	assert.Equal(t, 1, sum.SettledTick)

	assert.Equal(t, -1, Summarize(nil).SettledTick)
}

func TestSweep(t *testing.T) {
	script := Script{{Code: "KeyW", Start: 0, End: -1}}
	values := []float64{5, 10, 15}
	results, err := Sweep(config.DefaultSettings(), vehicle.KeyMaxSpeed, values, script, 600, time.Second/30, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, values[i], r.Value)
		assert.Equal(t, values[i], r.Summary.TopSpeed)
	}

	_, err = Sweep(config.DefaultSettings(), "horsepower", values, script, 10, time.Second/30, 2)
	assert.Error(t, err)
}
