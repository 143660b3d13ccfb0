package ui

import (
	"image"
	"math"
	"strconv"

	"arcade-drive/internal/core"
)

const (
	panelPadding   = 12
	lineHeight     = 30
	groupHeight    = 22
	buttonSize     = 22
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 20
	controlsTop    = panelPadding + headerBaseline + 10
)

// Row is one laid-out line of the tuning panel: either a group header or a
// parameter with its -/+ buttons.
type Row struct {
	Group  string
	Param  core.Parameter
	Header bool

	Top   int
	Minus image.Rectangle
	Plus  image.Rectangle

	owner core.Tunable
}

// CanAdjust reports whether a nudge in direction would change the value.
func (r Row) CanAdjust(direction int) bool {
	if r.Header || direction == 0 {
		return false
	}
	return math.Abs(r.Param.Nudge(direction)-r.Param.Value) >= 1e-9
}

// Value formats the current value with a precision matching the step.
func (r Row) Value() string {
	return FormatValue(r.Param)
}

// Panel lays out the parameters of a set of tunables and applies clicks to
// them. It holds no drawing state so it can be driven without a window.
type Panel struct {
	Width    int
	tunables []core.Tunable
	rows     []Row
}

// NewPanel builds a panel of the given pixel width.
func NewPanel(width int, tunables ...core.Tunable) *Panel {
	p := &Panel{Width: width, tunables: tunables}
	p.Refresh()
	return p
}

// Refresh re-reads every tunable and recomputes the layout.
func (p *Panel) Refresh() {
	p.rows = p.rows[:0]
	top := controlsTop
	for _, t := range p.tunables {
		for _, g := range t.Parameters().Groups {
			p.rows = append(p.rows, Row{Group: g.Name, Header: true, Top: top})
			top += groupHeight
			for _, param := range g.Params {
				buttonY := top + (lineHeight-buttonSize)/2
				plus := image.Rect(p.Width-panelPadding-buttonSize, buttonY, p.Width-panelPadding, buttonY+buttonSize)
				minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
				p.rows = append(p.rows, Row{
					Group: g.Name,
					Param: param,
					Top:   top,
					Minus: minus,
					Plus:  plus,
					owner: t,
				})
				top += lineHeight
			}
		}
	}
}

// Rows returns the current layout.
func (p *Panel) Rows() []Row { return p.rows }

// Height returns the pixel height the panel needs.
func (p *Panel) Height() int {
	if len(p.rows) == 0 {
		return controlsTop + panelPadding
	}
	last := p.rows[len(p.rows)-1]
	return last.Top + lineHeight + panelPadding
}

// Click applies a click at panel-local coordinates. It returns the key of the
// parameter that changed, if any.
func (p *Panel) Click(x, y int) (string, bool) {
	for i := range p.rows {
		r := &p.rows[i]
		if r.Header {
			continue
		}
		dir := 0
		switch {
		case pointInRect(x, y, r.Minus):
			dir = -1
		case pointInRect(x, y, r.Plus):
			dir = 1
		default:
			continue
		}
		if !r.CanAdjust(dir) {
			return "", false
		}
		v := r.Param.Nudge(dir)
		if !r.owner.SetParameter(r.Param.Key, v) {
			return "", false
		}
		r.Param.Value = v
		return r.Param.Key, true
	}
	return "", false
}

// FormatValue renders a parameter value with precision derived from its step.
func FormatValue(param core.Parameter) string {
	step := param.Step
	if step <= 0 {
		step = 0.05
	}
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	case step >= 1 && step == math.Trunc(step):
		precision = 0
	}
	return strconv.FormatFloat(param.Value, 'f', precision, 64)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}
