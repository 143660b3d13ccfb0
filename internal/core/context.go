package core

import (
	"arcade-drive/internal/event"
	"arcade-drive/internal/input"

	"github.com/rs/zerolog"
)

// Context carries the shared frame-loop collaborators. It is built once per
// session and handed to every component that needs the bus, the clock or the
// input state, in place of process-wide singletons.
type Context struct {
	Bus   *event.Bus
	Clock *Clock
	Input *input.State
	Log   zerolog.Logger
}

// NewContext wires a bus, clock and input state together.
func NewContext(log zerolog.Logger, clock ClockOptions) *Context {
	bus := event.NewBus()
	clock.Log = log.With().Str("component", "clock").Logger()
	return &Context{
		Bus:   bus,
		Clock: NewClock(bus, clock),
		Input: input.NewState(bus, log.With().Str("component", "input").Logger()),
		Log:   log,
	}
}
