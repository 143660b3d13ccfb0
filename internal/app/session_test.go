package app

import (
	"testing"
	"time"

	"arcade-drive/internal/camera"
	"arcade-drive/internal/config"
	"arcade-drive/internal/core"
	"arcade-drive/internal/vehicle"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, settings config.Settings) *Session {
	t.Helper()
	s := NewSession(zerolog.Nop(), settings, core.ClockOptions{Now: func() time.Time { return time.Unix(0, 0) }})
	t.Cleanup(s.Close)
	return s
}

func TestSessionFrameFollowsVehicleAndCamera(t *testing.T) {
	settings := config.DefaultSettings()
	// one tick moves the car less than the default settle distance
	settings.Camera.Epsilon = 1e-6
	s := newTestSession(t, settings)

	var frames []Frame
	s.Ctx.Bus.On(FrameEvent, func(args ...any) { frames = append(frames, args[0].(Frame)) })

	s.Ctx.Input.KeyDown("KeyW", false)
	s.Ctx.Clock.Step(time.Second / 30)

	require.Len(t, frames, 1)
	f := frames[0]
	assert.Equal(t, s.Frame(), f)
	assert.Equal(t, uint64(1), f.Tick)
	assert.True(t, f.Driving)
	assert.Greater(t, f.Speed, 0.0)
	assert.Equal(t, [3]float64(s.Vehicle.Pose().Position), f.Position)
	// snapshot is taken after the camera moved on this tick
	assert.Equal(t, [3]float64(s.Orbit.Position()), f.CameraPosition)
	assert.True(t, f.Settling)
}

func TestSessionTickOrder(t *testing.T) {
	s := newTestSession(t, config.DefaultSettings())

	var order []string
	s.Ctx.Bus.On(vehicle.UpdateEvent, func(...any) { order = append(order, "vehicle") })
	s.Ctx.Bus.On(FrameEvent, func(...any) { order = append(order, "frame") })
	s.Ctx.Clock.Step(time.Second / 60)

	assert.Equal(t, []string{"vehicle", "frame"}, order)
}

func TestSessionClampsDelta(t *testing.T) {
	s := newTestSession(t, config.DefaultSettings())
	s.Ctx.Clock.Step(2 * time.Second)
	assert.InDelta(t, core.DefaultMaxDelta.Seconds(), s.Frame().Delta, 1e-12)
	assert.Equal(t, uint64(1), s.Ctx.Clock.Clamped())
}

func TestSessionApply(t *testing.T) {
	s := newTestSession(t, config.DefaultSettings())

	next := config.DefaultSettings()
	next.Vehicle.MaxSpeed = 5
	next.Camera.Tau = 0.4
	next.Clock.MaxDelta = 20 * time.Millisecond
	next.SteerMode = vehicle.SteerEdge.String()
	s.Apply(next)

	assert.Equal(t, 5.0, s.Vehicle.Tuning().MaxSpeed)
	assert.Equal(t, 0.4, s.Camera.Settings().Tau)
	assert.Equal(t, 20*time.Millisecond, s.Ctx.Clock.MaxDelta())
	assert.Equal(t, vehicle.SteerHeld, s.Vehicle.Mode())
	assert.Equal(t, vehicle.SteerHeld, s.Settings().Steer())
}

func TestSessionReset(t *testing.T) {
	s := newTestSession(t, config.DefaultSettings())
	s.Ctx.Input.KeyDown("KeyW", false)
	s.Ctx.Input.KeyDown("KeyA", false)
	for i := 0; i < 30; i++ {
		s.Ctx.Clock.Step(time.Second / 30)
	}
	require.NotZero(t, s.Frame().Speed)

	s.Reset()
	assert.Equal(t, vehicle.Pose{}, s.Vehicle.Pose())
	assert.False(t, s.Ctx.Input.Actions().Driving())
	assert.True(t, s.Camera.State().Settling)
	assert.Zero(t, s.Frame().Speed)
}

func TestSessionEdgeModeResetClearsSteering(t *testing.T) {
	settings := config.DefaultSettings()
	settings.SteerMode = "edge"
	s := newTestSession(t, settings)

	s.Ctx.Input.KeyDown("ArrowLeft", false)
	s.Ctx.Clock.Step(time.Second / 60)
	require.NotZero(t, s.Frame().TargetSteering)

	s.Reset()
	s.Ctx.Clock.Step(time.Second / 60)
	assert.Zero(t, s.Frame().TargetSteering)
}

func TestSessionTunables(t *testing.T) {
	s := newTestSession(t, config.DefaultSettings())
	var found []string
	for _, tn := range s.Tunables() {
		for _, g := range tn.Parameters().Groups {
			found = append(found, g.Name)
		}
	}
	assert.Equal(t, []string{"Drive", "Steering", "Camera"}, found)

	require.True(t, s.Tunables()[1].SetParameter(camera.KeyTau, 0.9))
	assert.Equal(t, 0.9, s.Camera.Settings().Tau)
}

func TestSessionClose(t *testing.T) {
	s := NewSession(zerolog.Nop(), config.DefaultSettings(), core.ClockOptions{})
	s.Close()
	assert.Zero(t, s.Ctx.Bus.Count(core.TickEvent))
}
