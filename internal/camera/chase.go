package camera

import (
	"math"

	"arcade-drive/internal/core"
	"arcade-drive/internal/event"
	"arcade-drive/internal/vehicle"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// TickPriority runs the camera after the vehicle integrator on every tick.
const TickPriority = 2

// minOffsetLen guards offset normalization against a collapsed orbit.
const minOffsetLen = 1e-9

// Settings configures the chase behaviour.
type Settings struct {
	// Offset is the initial camera offset from the vehicle; its direction
	// and length seed offsetDirection and distanceFromTarget.
	Offset [3]float64 `mapstructure:"offset" json:"offset"`
	// Tau is the smoothing time constant in seconds.
	Tau float64 `mapstructure:"tau" json:"tau"`
	// FixedLerp, when positive, replaces time-based smoothing with a
	// constant per-frame blend factor.
	FixedLerp float64 `mapstructure:"fixedLerp" json:"fixedLerp"`
	// Epsilon is the distance at which the camera counts as settled.
	Epsilon float64 `mapstructure:"epsilon" json:"epsilon"`
}

// DefaultSettings returns the standard chase configuration.
func DefaultSettings() Settings {
	return Settings{
		Offset:  [3]float64{0, 5, 10},
		Tau:     0.15,
		Epsilon: 0.01,
	}
}

// Parameter keys for the debug panel.
const (
	KeyTau       = "camera_tau"
	KeyFixedLerp = "camera_fixed_lerp"
	KeyEpsilon   = "camera_epsilon"
)

// Set assigns the field named by key. It reports false for unknown keys.
func (s *Settings) Set(key string, value float64) bool {
	switch key {
	case KeyTau:
		s.Tau = value
	case KeyFixedLerp:
		s.FixedLerp = value
	case KeyEpsilon:
		s.Epsilon = value
	default:
		return false
	}
	return true
}

// State is the observable chase state.
type State struct {
	OffsetDirection mgl64.Vec3
	DesiredPos      mgl64.Vec3
	Distance        float64
	LerpFactor      float64
	Settling        bool
}

// Subject is anything the camera can follow.
type Subject interface {
	Pose() vehicle.Pose
}

// Chase keeps the orbit camera trailing a subject.
type Chase struct {
	orbit    Orbit
	settings Settings
	state    State
	log      zerolog.Logger

	bus *event.Bus
	tok event.Token
}

// NewChase returns a chase controller driving orbit. The camera starts
// unsettled so it eases into place on the first ticks.
func NewChase(orbit Orbit, settings Settings) *Chase {
	off := mgl64.Vec3(settings.Offset)
	dir := mgl64.Vec3{0, 0.5, 1}.Normalize()
	if off.Len() > minOffsetLen {
		dir = off.Normalize()
	}
	return &Chase{
		orbit:    orbit,
		settings: settings,
		log:      zerolog.Nop(),
		state: State{
			OffsetDirection: dir,
			Distance:        off.Len(),
			Settling:        true,
		},
	}
}

// Attach follows subject on every clock tick, after the vehicle has moved.
func (c *Chase) Attach(ctx *core.Context, subject Subject) {
	c.Detach()
	c.bus = ctx.Bus
	c.log = ctx.Log.With().Str("component", "camera").Logger()
	c.tok = ctx.Bus.On(core.TickEvent, func(...any) {
		c.Update(ctx.Clock.DeltaSeconds(), subject.Pose().Position, ctx.Input.Actions().Driving())
	}, TickPriority)
}

// Detach stops following.
func (c *Chase) Detach() {
	if c.bus == nil {
		return
	}
	c.bus.Remove(core.TickEvent, c.tok)
	c.bus = nil
}

// Update advances the camera by dt seconds toward its place behind target.
func (c *Chase) Update(dt float64, target mgl64.Vec3, driving bool) {
	st := &c.state
	if d := c.orbit.Distance(); d > 0 {
		st.Distance = d
	}
	if !driving && !st.Settling {
		// idle: adopt whatever angle the user orbited to
		if off := c.orbit.Position().Sub(c.orbit.Target()); off.Len() > minOffsetLen {
			st.OffsetDirection = off.Normalize()
		}
	}
	st.DesiredPos = target.Add(st.OffsetDirection.Mul(st.Distance))

	if driving && !st.Settling {
		st.Settling = true
	}
	if !st.Settling {
		st.LerpFactor = 0
		return
	}

	f := c.factor(dt)
	st.LerpFactor = f
	pos := lerp(c.orbit.Position(), st.DesiredPos, f)
	c.orbit.SetPosition(pos)
	c.orbit.SetTarget(lerp(c.orbit.Target(), target, f))

	if pos.Sub(st.DesiredPos).Len() < c.settings.Epsilon {
		st.Settling = false
		c.log.Debug().Float64("distance", st.Distance).Msg("camera settled")
	}
}

func (c *Chase) factor(dt float64) float64 {
	if c.settings.FixedLerp > 0 {
		return math.Min(c.settings.FixedLerp, 1)
	}
	return SmoothingFactor(dt, c.settings.Tau)
}

// SmoothingFactor is the exponential blend factor for a step of dt seconds
// with time constant tau. Consecutive steps compose: two steps of dt blend
// exactly as far as one step of 2*dt.
func SmoothingFactor(dt, tau float64) float64 {
	if dt <= 0 {
		return 0
	}
	if tau <= 0 {
		return 1
	}
	return 1 - math.Exp(-dt/tau)
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// State returns a copy of the chase state.
func (c *Chase) State() State { return c.state }

// Orbit returns the orbit widget the chase drives.
func (c *Chase) Orbit() Orbit { return c.orbit }

// Resettle forces the camera to ease back behind the subject.
func (c *Chase) Resettle() { c.state.Settling = true }

// Parameters implements core.Tunable.
func (c *Chase) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name: "Camera",
		Params: []core.Parameter{
			{Key: KeyTau, Label: "Smoothing tau", Value: c.settings.Tau, Min: 0.01, Max: 2, Step: 0.01},
			{Key: KeyFixedLerp, Label: "Fixed lerp", Value: c.settings.FixedLerp, Min: 0, Max: 1, Step: 0.01},
		},
	}}}
}

// SetParameter implements core.Tunable.
func (c *Chase) SetParameter(key string, value float64) bool {
	return c.settings.Set(key, value)
}

// Settings returns the active settings.
func (c *Chase) Settings() Settings { return c.settings }

// SetSettings replaces tau, fixed lerp and epsilon. The offset only seeds
// construction and is ignored here.
func (c *Chase) SetSettings(s Settings) {
	s.Offset = c.settings.Offset
	c.settings = s
}
