//go:build ebiten

package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var keyCodes = map[ebiten.Key]string{
	ebiten.KeyArrowUp:      "ArrowUp",
	ebiten.KeyW:            "KeyW",
	ebiten.KeyArrowRight:   "ArrowRight",
	ebiten.KeyD:            "KeyD",
	ebiten.KeyArrowDown:    "ArrowDown",
	ebiten.KeyS:            "KeyS",
	ebiten.KeyArrowLeft:    "ArrowLeft",
	ebiten.KeyA:            "KeyA",
	ebiten.KeyControlLeft:  "ControlLeft",
	ebiten.KeyControlRight: "ControlRight",
	ebiten.KeySpace:        "Space",
	ebiten.KeyShiftLeft:    "ShiftLeft",
	ebiten.KeyShiftRight:   "ShiftRight",
}

// Poller feeds ebiten keyboard edges into a State once per frame.
type Poller struct {
	state   *State
	focused bool
}

// NewPoller returns a poller writing into state.
func NewPoller(state *State) *Poller {
	return &Poller{state: state, focused: true}
}

// Poll translates this frame's key transitions. Losing window focus releases
// every held key since the matching key-ups will not be delivered.
func (p *Poller) Poll() {
	focused := ebiten.IsFocused()
	if p.focused && !focused {
		p.state.ReleaseAll()
	}
	p.focused = focused
	if !focused {
		return
	}
	for key, code := range keyCodes {
		if inpututil.IsKeyJustPressed(key) {
			p.state.KeyDown(code, false)
		}
		if inpututil.IsKeyJustReleased(key) {
			p.state.KeyUp(code)
		}
	}
}
