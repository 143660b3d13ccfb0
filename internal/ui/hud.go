//go:build ebiten

package ui

import (
	"image"
	"image/color"

	"arcade-drive/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the tuning panel to the right of the driving view.
type HUD struct {
	panel      *Panel
	width      int
	image      *ebiten.Image
	lastHeight int
	offsetX    int
	title      string
	log        zerolog.Logger

	pixel *ebiten.Image
}

// NewHUD constructs a HUD of the given width editing tunables.
func NewHUD(width int, log zerolog.Logger, tunables ...core.Tunable) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{panel: NewPanel(width, tunables...), width: width, title: "Tuning", log: log}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	return h
}

// Update refreshes the values from the tunables and handles clicks.
func (h *HUD) Update(offsetX int) {
	if h == nil {
		return
	}
	h.offsetX = offsetX
	h.panel.Refresh()
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < offsetX {
		return
	}
	if key, ok := h.panel.Click(mx-offsetX, my); ok {
		h.log.Debug().Str("key", key).Msg("parameter adjusted")
	}
}

// Contains reports whether a screen point falls on the panel.
func (h *HUD) Contains(x, y int) bool {
	return h != nil && h.width > 0 && x >= h.offsetX
}

// Draw paints the panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.image == nil || h.lastHeight != height {
		h.image = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.image.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawRows()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.image, op)
}

func (h *HUD) drawRows() {
	face := basicfont.Face7x13
	text.Draw(h.image, h.title, face, panelPadding, panelPadding+headerBaseline, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	rows := h.panel.Rows()
	if len(rows) == 0 {
		text.Draw(h.image, "No adjustable parameters", face, panelPadding, panelPadding+headerBaseline+36, color.RGBA{R: 160, G: 160, B: 170, A: 255})
		return
	}
	for _, r := range rows {
		if r.Header {
			text.Draw(h.image, r.Group, face, panelPadding, r.Top+labelBaseline-4, color.RGBA{R: 140, G: 170, B: 220, A: 255})
			continue
		}
		fg := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		text.Draw(h.image, r.Param.Label, face, panelPadding, r.Top+labelBaseline, fg)
		value := r.Value()
		width := text.BoundString(face, value).Dx()
		text.Draw(h.image, value, face, r.Minus.Min.X-buttonGap-width, r.Top+labelBaseline, fg)
		h.drawButton(r.Minus, "-", r.CanAdjust(-1))
		h.drawButton(r.Plus, "+", r.CanAdjust(1))
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorM.Scale(float64(bg.R)/255.0, float64(bg.G)/255.0, float64(bg.B)/255.0, float64(bg.A)/255.0)
	h.image.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.image, label, face, x, y, fg)
}
