package input

import (
	"arcade-drive/internal/event"

	"github.com/rs/zerolog"
)

// Edge events published on the bus. Both carry the raw key code as their
// only argument.
const (
	KeyDownEvent = "!keydown"
	KeyUpEvent   = "keyup"
)

// Action is a named control derived from one or more physical keys.
type Action string

// Actions understood by the simulator.
const (
	Up    Action = "up"
	Down  Action = "down"
	Left  Action = "left"
	Right Action = "right"
	Brake Action = "brake"
	Boost Action = "boost"
)

// AllActions lists every action in a stable order.
var AllActions = []Action{Up, Down, Left, Right, Brake, Boost}

// DefaultBindings maps DOM-style key codes to actions.
func DefaultBindings() map[string]Action {
	return map[string]Action{
		"ArrowUp":      Up,
		"KeyW":         Up,
		"ArrowRight":   Right,
		"KeyD":         Right,
		"ArrowDown":    Down,
		"KeyS":         Down,
		"ArrowLeft":    Left,
		"KeyA":         Left,
		"ControlLeft":  Brake,
		"ControlRight": Brake,
		"Space":        Brake,
		"ShiftLeft":    Boost,
		"ShiftRight":   Boost,
	}
}

// Actions is the level-triggered state of every action.
type Actions struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
	Brake bool
	Boost bool
}

// Held reports whether the action is currently active.
func (a *Actions) Held(act Action) bool {
	switch act {
	case Up:
		return a.Up
	case Down:
		return a.Down
	case Left:
		return a.Left
	case Right:
		return a.Right
	case Brake:
		return a.Brake
	case Boost:
		return a.Boost
	}
	return false
}

// Driving reports whether any steering or throttle action is held.
func (a *Actions) Driving() bool {
	return a.Up || a.Down || a.Left || a.Right
}

func (a *Actions) set(act Action, v bool) {
	switch act {
	case Up:
		a.Up = v
	case Down:
		a.Down = v
	case Left:
		a.Left = v
	case Right:
		a.Right = v
	case Brake:
		a.Brake = v
	case Boost:
		a.Boost = v
	}
}

// State translates raw key events into Actions and publishes press/release
// edges on the bus.
type State struct {
	bus      *event.Bus
	log      zerolog.Logger
	bindings map[string]Action
	held     map[string]bool
	actions  Actions
}

// NewState returns an input state using DefaultBindings.
func NewState(bus *event.Bus, log zerolog.Logger) *State {
	return &State{
		bus:      bus,
		log:      log,
		bindings: DefaultBindings(),
		held:     make(map[string]bool),
	}
}

// Bind maps an additional key code to an action.
func (s *State) Bind(code string, act Action) {
	s.bindings[code] = act
}

// ActionFor returns the action bound to code.
func (s *State) ActionFor(code string) (Action, bool) {
	act, ok := s.bindings[code]
	return act, ok
}

// Actions exposes the live action state. Callers must treat it as read-only.
func (s *State) Actions() *Actions { return &s.actions }

// KeyDown records a key press. Presses of keys that are already down only
// refresh the level flag. The first press of a key that is up triggers
// KeyDownEvent even when flagged as a repeat, e.g. auto-repeat arriving
// after ReleaseAll.
func (s *State) KeyDown(code string, repeat bool) {
	act, ok := s.bindings[code]
	if !ok {
		s.log.Debug().Str("code", code).Msg("unbound key ignored")
		return
	}
	s.actions.set(act, true)
	first := !s.held[code]
	s.held[code] = true
	if first {
		s.bus.Trigger(KeyDownEvent, code)
	}
}

// KeyUp records a key release and triggers KeyUpEvent. The action stays
// active while another key bound to it is still down. Releases of keys that
// were never pressed are dropped.
func (s *State) KeyUp(code string) {
	act, ok := s.bindings[code]
	if !ok || !s.held[code] {
		return
	}
	delete(s.held, code)
	s.actions.set(act, s.anyHeld(act))
	s.bus.Trigger(KeyUpEvent, code)
}

// ReleaseAll releases every held key, e.g. when the window loses focus and
// the real key-up events will never arrive.
func (s *State) ReleaseAll() {
	if len(s.held) == 0 {
		return
	}
	codes := make([]string, 0, len(s.held))
	for code := range s.held {
		codes = append(codes, code)
	}
	s.log.Debug().Strs("codes", codes).Msg("releasing held keys")
	for _, code := range codes {
		s.KeyUp(code)
	}
}

func (s *State) anyHeld(act Action) bool {
	for code := range s.held {
		if s.bindings[code] == act {
			return true
		}
	}
	return false
}
