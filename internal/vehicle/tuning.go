package vehicle

import (
	"math"

	"arcade-drive/internal/core"
)

// Tuning holds the live-editable handling parameters. All values are
// expected to be positive; bounds are enforced by the debug panel and the
// config loader, not by the integrator.
type Tuning struct {
	MaxSpeed         float64 `mapstructure:"maxSpeed" json:"maxSpeed"`
	AccelRate        float64 `mapstructure:"accelRate" json:"accelRate"`
	DecelRate        float64 `mapstructure:"decelRate" json:"decelRate"`
	Friction         float64 `mapstructure:"friction" json:"friction"`
	TurnRotationLoss float64 `mapstructure:"turnRotationLoss" json:"turnRotationLoss"`
	SteeringAngleMax float64 `mapstructure:"steeringAngleMax" json:"steeringAngleMax"`
	SteeringSpeed    float64 `mapstructure:"steeringSpeed" json:"steeringSpeed"`
}

// DefaultTuning returns the standard handling profile.
func DefaultTuning() Tuning {
	return Tuning{
		MaxSpeed:         20,
		AccelRate:        8,
		DecelRate:        12,
		Friction:         4,
		TurnRotationLoss: 4,
		SteeringAngleMax: math.Pi / 6,
		SteeringSpeed:    math.Pi,
	}
}

// Parameter keys shared by the debug panel, config files and replay flags.
const (
	KeyMaxSpeed         = "max_speed"
	KeyAccelRate        = "accel_rate"
	KeyDecelRate        = "decel_rate"
	KeyFriction         = "friction"
	KeyTurnRotationLoss = "turn_rotation_loss"
	KeySteeringAngleMax = "steering_angle_max"
	KeySteeringSpeed    = "steering_speed"
)

// Parameters describes the tuning as panel sliders.
func (t Tuning) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Drive",
			Params: []core.Parameter{
				{Key: KeyMaxSpeed, Label: "Max speed", Value: t.MaxSpeed, Min: 1, Max: 100, Step: 1},
				{Key: KeyAccelRate, Label: "Acceleration", Value: t.AccelRate, Min: 0.5, Max: 50, Step: 0.5},
				{Key: KeyDecelRate, Label: "Deceleration", Value: t.DecelRate, Min: 0.5, Max: 50, Step: 0.5},
				{Key: KeyFriction, Label: "Friction", Value: t.Friction, Min: 0.1, Max: 30, Step: 0.1},
			},
		},
		{
			Name: "Steering",
			Params: []core.Parameter{
				{Key: KeyTurnRotationLoss, Label: "Turn rotation loss", Value: t.TurnRotationLoss, Min: 0.5, Max: 20, Step: 0.25},
				{Key: KeySteeringAngleMax, Label: "Max steer angle", Value: t.SteeringAngleMax, Min: 0.05, Max: 1.2, Step: 0.01},
				{Key: KeySteeringSpeed, Label: "Steer speed", Value: t.SteeringSpeed, Min: 0.1, Max: 10, Step: 0.1},
			},
		},
	}}
}

// Set assigns the field named by key. It reports false for unknown keys.
func (t *Tuning) Set(key string, value float64) bool {
	switch key {
	case KeyMaxSpeed:
		t.MaxSpeed = value
	case KeyAccelRate:
		t.AccelRate = value
	case KeyDecelRate:
		t.DecelRate = value
	case KeyFriction:
		t.Friction = value
	case KeyTurnRotationLoss:
		t.TurnRotationLoss = value
	case KeySteeringAngleMax:
		t.SteeringAngleMax = value
	case KeySteeringSpeed:
		t.SteeringSpeed = value
	default:
		return false
	}
	return true
}

// Invalid returns the keys whose values are not strictly positive.
func (t Tuning) Invalid() []string {
	var bad []string
	for _, g := range t.Parameters().Groups {
		for _, p := range g.Params {
			if !(p.Value > 0) {
				bad = append(bad, p.Key)
			}
		}
	}
	return bad
}
