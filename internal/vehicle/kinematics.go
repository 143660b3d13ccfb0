package vehicle

import (
	"math"
	"time"

	"arcade-drive/internal/core"
	"arcade-drive/internal/event"
	"arcade-drive/internal/input"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

const (
	// SpeedEpsilon is the speed below which the vehicle is snapped to rest.
	SpeedEpsilon = 1e-3
	// SteerEpsilon is the steering gap below which the angle snaps to target.
	SteerEpsilon = 1e-6
)

// UpdateEvent is triggered with the new Pose after every integration step.
const UpdateEvent = "vehicle:update"

// TickPriority places the integrator ahead of the camera on the tick event.
const TickPriority = 0

// Wheel indices into Pose.Wheels.
const (
	FrontLeft = iota
	FrontRight
	RearLeft
	RearRight
)

// SteerMode selects how the steering target is derived from input.
type SteerMode int

const (
	// SteerHeld recomputes the target every tick from the held actions.
	SteerHeld SteerMode = iota
	// SteerEdge accumulates +/- SteeringAngleMax per press and release edge.
	SteerEdge
)

// ParseSteerMode maps "held" or "edge" to a SteerMode.
func ParseSteerMode(s string) (SteerMode, bool) {
	switch s {
	case "", "held":
		return SteerHeld, true
	case "edge":
		return SteerEdge, true
	}
	return SteerHeld, false
}

func (m SteerMode) String() string {
	if m == SteerEdge {
		return "edge"
	}
	return "held"
}

// Pose is the renderable vehicle state.
type Pose struct {
	Position       mgl64.Vec3
	Yaw            float64
	Steering       float64
	TargetSteering float64
	Speed          float64
	Wheels         [4]float64
}

// Kinematics integrates an arcade vehicle one frame at a time. The result
// depends only on the previous pose, the actions and the delta.
type Kinematics struct {
	tuning Tuning
	mode   SteerMode
	log    zerolog.Logger

	pose    Pose
	initial Pose

	edgeTarget float64
	// increments applied by presses whose release is still pending, per code
	edgePending map[string][]float64

	bus    *event.Bus
	tokens map[string]event.Token
}

// New returns a vehicle at rest at the origin, facing -Z.
func New(tuning Tuning, mode SteerMode) *Kinematics {
	return &Kinematics{tuning: tuning, mode: mode, log: zerolog.Nop()}
}

// Attach subscribes the integrator to the frame clock. In SteerEdge mode it
// also listens for key edges.
func (k *Kinematics) Attach(ctx *core.Context) {
	k.Detach()
	k.bus = ctx.Bus
	k.log = ctx.Log.With().Str("component", "vehicle").Logger()
	k.tokens = map[string]event.Token{
		core.TickEvent: ctx.Bus.On(core.TickEvent, func(...any) {
			k.Update(ctx.Clock.Delta(), ctx.Input.Actions())
			ctx.Bus.Trigger(UpdateEvent, k.pose)
		}, TickPriority),
	}
	if k.mode == SteerEdge {
		k.tokens[input.KeyDownEvent] = ctx.Bus.On(input.KeyDownEvent, func(args ...any) {
			if code, act, ok := actionArg(ctx.Input, args); ok {
				k.PressEdge(code, act)
			}
		})
		k.tokens[input.KeyUpEvent] = ctx.Bus.On(input.KeyUpEvent, func(args ...any) {
			if code, _, ok := actionArg(ctx.Input, args); ok {
				k.ReleaseEdge(code)
			}
		})
	}
	k.log.Debug().Str("steer_mode", k.mode.String()).Msg("vehicle attached")
}

// Detach removes every bus subscription made by Attach.
func (k *Kinematics) Detach() {
	if k.bus == nil {
		return
	}
	for name, tok := range k.tokens {
		k.bus.Remove(name, tok)
	}
	k.tokens = nil
	k.bus = nil
}

func actionArg(in *input.State, args []any) (string, input.Action, bool) {
	if len(args) == 0 {
		return "", "", false
	}
	code, ok := args[0].(string)
	if !ok {
		return "", "", false
	}
	act, ok := in.ActionFor(code)
	return code, act, ok
}

// PressEdge applies a press edge of the key code to the accumulated steering
// target. The increment is the SteeringAngleMax in effect at press time.
func (k *Kinematics) PressEdge(code string, act input.Action) {
	var inc float64
	switch act {
	case input.Left:
		inc = k.tuning.SteeringAngleMax
	case input.Right:
		inc = -k.tuning.SteeringAngleMax
	default:
		return
	}
	if k.edgePending == nil {
		k.edgePending = make(map[string][]float64)
	}
	k.edgePending[code] = append(k.edgePending[code], inc)
	k.edgeTarget += inc
}

// ReleaseEdge takes back the increment of the latest unreleased press of
// code. Releases without a pending press are ignored.
func (k *Kinematics) ReleaseEdge(code string) {
	pending := k.edgePending[code]
	if len(pending) == 0 {
		return
	}
	last := len(pending) - 1
	k.edgeTarget -= pending[last]
	if last == 0 {
		delete(k.edgePending, code)
	} else {
		k.edgePending[code] = pending[:last]
	}
}

// Update advances the pose by dt. A zero dt leaves the pose untouched.
func (k *Kinematics) Update(dt time.Duration, a *input.Actions) {
	k.Advance(dt.Seconds(), a)
}

// Advance is Update with the delta given in seconds.
func (k *Kinematics) Advance(s float64, a *input.Actions) {
	if s <= 0 {
		return
	}
	if a == nil {
		a = &input.Actions{}
	}
	t := k.tuning
	p := &k.pose

	var accel float64
	switch {
	case a.Up:
		accel = t.AccelRate
	case a.Down:
		accel = -t.DecelRate
	case p.Speed > 0:
		accel = -t.Friction
	case p.Speed < 0:
		accel = t.Friction
	}

	prev := p.Speed
	p.Speed += accel * s
	if !a.Up && !a.Down && prev*p.Speed < 0 {
		// friction stops the vehicle, it never reverses it
		p.Speed = 0
	}
	p.Speed = mgl64.Clamp(p.Speed, -t.MaxSpeed, t.MaxSpeed)
	if math.Abs(p.Speed) < SpeedEpsilon {
		p.Speed = 0
	}

	distance := p.Speed * s
	p.Yaw += p.Steering * distance / t.TurnRotationLoss
	p.Position[0] -= math.Sin(p.Yaw) * distance
	p.Position[2] -= math.Cos(p.Yaw) * distance
	for i := range p.Wheels {
		p.Wheels[i] -= distance
	}

	p.TargetSteering = k.steeringTarget(a)
	p.Steering = approach(p.Steering, p.TargetSteering, t.SteeringSpeed*s)
}

func (k *Kinematics) steeringTarget(a *input.Actions) float64 {
	if k.mode == SteerEdge {
		return k.edgeTarget
	}
	switch {
	case a.Left && !a.Right:
		return k.tuning.SteeringAngleMax
	case a.Right && !a.Left:
		return -k.tuning.SteeringAngleMax
	}
	return 0
}

// approach moves cur toward target by at most step without overshooting and
// lands exactly on target once the remaining gap is negligible.
func approach(cur, target, step float64) float64 {
	gap := target - cur
	if math.Abs(gap) <= SteerEpsilon {
		return target
	}
	cur += math.Copysign(math.Min(step, math.Abs(gap)), gap)
	if math.Abs(target-cur) <= SteerEpsilon {
		return target
	}
	return cur
}

// Pose returns a copy of the current pose.
func (k *Kinematics) Pose() Pose { return k.pose }

// SetPose replaces the current pose and makes it the reset pose.
func (k *Kinematics) SetPose(p Pose) {
	k.pose = p
	k.initial = p
}

// Reset restores the construction (or last SetPose) pose and clears the
// accumulated edge steering.
func (k *Kinematics) Reset() {
	k.pose = k.initial
	k.edgeTarget = 0
	k.edgePending = nil
	k.log.Debug().Msg("vehicle reset")
}

// Mode returns the steering mode.
func (k *Kinematics) Mode() SteerMode { return k.mode }

// Tuning returns the active tuning.
func (k *Kinematics) Tuning() Tuning { return k.tuning }

// SetTuning replaces the active tuning.
func (k *Kinematics) SetTuning(t Tuning) {
	k.tuning = t
	k.log.Debug().Interface("tuning", t).Msg("tuning replaced")
}

// Parameters implements core.Tunable.
func (k *Kinematics) Parameters() core.ParameterSnapshot { return k.tuning.Parameters() }

// SetParameter implements core.Tunable.
func (k *Kinematics) SetParameter(key string, value float64) bool {
	return k.tuning.Set(key, value)
}
