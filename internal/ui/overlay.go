//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

const (
	overlayLine   = 15
	gaugeWidth    = 160
	gaugeHeight   = 8
	overlayMargin = 10
)

// Overlay draws the telemetry readout and a steering gauge on top of the
// driving view. F1 toggles it.
type Overlay struct {
	visible bool
	pixel   *ebiten.Image
}

// NewOverlay constructs a visible overlay.
func NewOverlay() *Overlay {
	o := &Overlay{visible: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update handles the toggle key.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		o.visible = !o.visible
	}
}

// Visible reports whether the overlay is shown.
func (o *Overlay) Visible() bool { return o.visible }

// Draw renders t. maxSteer scales the gauge.
func (o *Overlay) Draw(screen *ebiten.Image, t Telemetry, maxSteer float64) {
	if !o.visible {
		return
	}
	face := basicfont.Face7x13
	lines := t.Lines()
	boxH := overlayMargin*2 + overlayLine*len(lines) + gaugeHeight + 8
	o.rect(screen, 0, 0, gaugeWidth+overlayMargin*2, float64(boxH), color.RGBA{R: 0, G: 0, B: 0, A: 150})
	for i, line := range lines {
		text.Draw(screen, line, face, overlayMargin, overlayMargin+overlayLine*(i+1)-3, color.RGBA{R: 220, G: 220, B: 230, A: 255})
	}

	// steering gauge: centre is straight ahead, left steer fills leftward
	gy := float64(overlayMargin + overlayLine*len(lines) + 6)
	o.rect(screen, overlayMargin, gy, gaugeWidth, gaugeHeight, color.RGBA{R: 50, G: 52, B: 60, A: 255})
	if maxSteer > 0 {
		mid := float64(overlayMargin) + gaugeWidth/2
		frac := math.Max(-1.5, math.Min(1.5, t.Steering/maxSteer))
		w := -frac * gaugeWidth / 2
		x := mid
		if w < 0 {
			x, w = mid+w, -w
		}
		o.rect(screen, x, gy, w, gaugeHeight, color.RGBA{R: 120, G: 200, B: 255, A: 255})
		tx := mid - t.TargetSteering/maxSteer*gaugeWidth/2
		o.rect(screen, tx-1, gy-2, 2, gaugeHeight+4, color.RGBA{R: 250, G: 210, B: 80, A: 255})
	}
}

func (o *Overlay) rect(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(o.pixel, op)
}
