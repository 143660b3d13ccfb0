package core

import "math"

// Parameter describes a single live-tunable value shown on the debug panel.
// Min and Max bound the panel's slider; the simulation itself never clamps.
type Parameter struct {
	Key   string
	Label string
	Value float64

	Min  float64
	Max  float64
	Step float64
}

// Clamp limits v to the parameter's bounds. Unset bounds (Min == Max) leave v
// unchanged.
func (p Parameter) Clamp(v float64) float64 {
	if p.Max <= p.Min {
		return v
	}
	return math.Min(math.Max(v, p.Min), p.Max)
}

// Nudge returns the value one step away in the given direction, clamped.
func (p Parameter) Nudge(direction int) float64 {
	step := p.Step
	if step <= 0 {
		step = 0.05
	}
	return p.Clamp(p.Value + float64(direction)*step)
}

// ParameterGroup clusters related parameters for presentation purposes.
type ParameterGroup struct {
	Name   string
	Params []Parameter
}

// ParameterSnapshot captures the current set of tunables exposed by a
// component.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}

// Lookup finds a parameter by key.
func (s ParameterSnapshot) Lookup(key string) (Parameter, bool) {
	for _, g := range s.Groups {
		for _, p := range g.Params {
			if p.Key == key {
				return p, true
			}
		}
	}
	return Parameter{}, false
}

// Tunable is implemented by components whose parameters can be edited live.
type Tunable interface {
	Parameters() ParameterSnapshot
	SetParameter(key string, value float64) bool
}
