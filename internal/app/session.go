package app

import (
	"arcade-drive/internal/camera"
	"arcade-drive/internal/config"
	"arcade-drive/internal/core"
	"arcade-drive/internal/event"
	"arcade-drive/internal/vehicle"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// FrameEvent is triggered with a Frame once the vehicle and camera have both
// moved for the current tick.
const FrameEvent = "frame"

// FramePriority places the frame snapshot after the camera on the tick event.
const FramePriority = 3

// Frame is the renderer-facing snapshot of one tick.
type Frame struct {
	Tick           uint64     `json:"tick"`
	Elapsed        float64    `json:"elapsed"`
	Delta          float64    `json:"dt"`
	Position       [3]float64 `json:"position"`
	Yaw            float64    `json:"yaw"`
	Wheels         [4]float64 `json:"wheels"`
	Speed          float64    `json:"speed"`
	Steering       float64    `json:"steering"`
	TargetSteering float64    `json:"targetSteering"`
	CameraPosition [3]float64 `json:"cameraPosition"`
	CameraTarget   [3]float64 `json:"cameraTarget"`
	Settling       bool       `json:"settling"`
	Driving        bool       `json:"driving"`
}

// Session owns one running simulation: the shared context plus the vehicle
// and chase camera subscribed to it.
type Session struct {
	Ctx     *core.Context
	Vehicle *vehicle.Kinematics
	Orbit   *camera.OrbitControls
	Camera  *camera.Chase

	settings config.Settings
	frame    Frame
	tok      event.Token
}

// NewSession builds the pipeline from settings. clock carries the time
// source; its MaxDelta is taken from settings when left zero.
func NewSession(log zerolog.Logger, settings config.Settings, clock core.ClockOptions) *Session {
	if clock.MaxDelta == 0 {
		clock.MaxDelta = settings.Clock.MaxDelta
	}
	ctx := core.NewContext(log, clock)

	car := vehicle.New(settings.Vehicle, settings.Steer())
	car.Attach(ctx)

	start := car.Pose().Position
	orbit := camera.NewOrbitControls(start.Add(mgl64.Vec3(settings.Camera.Offset)), start)
	chase := camera.NewChase(orbit, settings.Camera)
	chase.Attach(ctx, car)

	s := &Session{
		Ctx:      ctx,
		Vehicle:  car,
		Orbit:    orbit,
		Camera:   chase,
		settings: settings,
	}
	s.frame = s.snapshot()
	s.tok = ctx.Bus.On(core.TickEvent, func(...any) {
		s.frame = s.snapshot()
		ctx.Bus.Trigger(FrameEvent, s.frame)
	}, FramePriority)

	log.Info().
		Str("steer_mode", settings.Steer().String()).
		Dur("max_delta", ctx.Clock.MaxDelta()).
		Msg("session started")
	return s
}

func (s *Session) snapshot() Frame {
	p := s.Vehicle.Pose()
	st := s.Camera.State()
	clk := s.Ctx.Clock
	return Frame{
		Tick:           clk.Ticks(),
		Elapsed:        clk.Elapsed().Seconds(),
		Delta:          clk.DeltaSeconds(),
		Position:       p.Position,
		Yaw:            p.Yaw,
		Wheels:         p.Wheels,
		Speed:          p.Speed,
		Steering:       p.Steering,
		TargetSteering: p.TargetSteering,
		CameraPosition: s.Orbit.Position(),
		CameraTarget:   s.Orbit.Target(),
		Settling:       st.Settling,
		Driving:        s.Ctx.Input.Actions().Driving(),
	}
}

// Frame returns the snapshot taken at the end of the last tick.
func (s *Session) Frame() Frame { return s.frame }

// Settings returns the settings the session currently runs with.
func (s *Session) Settings() config.Settings { return s.settings }

// Apply hot-swaps tuning, camera smoothing and the delta cap. A different
// steering mode only takes effect in a new session.
func (s *Session) Apply(next config.Settings) {
	if next.Steer() != s.Vehicle.Mode() {
		s.Ctx.Log.Warn().
			Str("current", s.Vehicle.Mode().String()).
			Str("requested", next.Steer().String()).
			Msg("steer mode change needs a restart")
		next.SteerMode = s.settings.SteerMode
	}
	s.Vehicle.SetTuning(next.Vehicle)
	s.Camera.SetSettings(next.Camera)
	s.Ctx.Clock.SetMaxDelta(next.Clock.MaxDelta)
	s.settings = next
}

// Reset releases every key, returns the vehicle to its start pose and lets
// the camera ease back behind it.
func (s *Session) Reset() {
	s.Ctx.Input.ReleaseAll()
	s.Vehicle.Reset()
	s.Camera.Resettle()
	s.frame = s.snapshot()
	s.Ctx.Log.Info().Msg("session reset")
}

// Tunables lists the components the debug panel can edit.
func (s *Session) Tunables() []core.Tunable {
	return []core.Tunable{s.Vehicle, s.Camera}
}

// Close detaches every subscriber from the bus.
func (s *Session) Close() {
	s.Ctx.Bus.Remove(core.TickEvent, s.tok)
	s.Camera.Detach()
	s.Vehicle.Detach()
}
