//go:build ebiten

package render

import (
	"image/color"
	"math"

	"arcade-drive/internal/vehicle"

	"github.com/hajimehoshi/ebiten/v2"
)

var (
	groundColor = color.RGBA{R: 22, G: 26, B: 30, A: 255}
	gridColor   = color.RGBA{R: 44, G: 50, B: 58, A: 255}
	originColor = color.RGBA{R: 80, G: 88, B: 100, A: 255}
	tyreColor   = color.RGBA{R: 20, G: 20, B: 22, A: 255}
	spokeColor  = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	noseColor   = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	targetColor = color.RGBA{R: 120, G: 200, B: 255, A: 200}
)

// Painter draws the top-down scene.
type Painter struct {
	pixel *ebiten.Image
	// GridSpacing is the ground grid pitch in world units.
	GridSpacing float64
}

// NewPainter constructs a painter.
func NewPainter() *Painter {
	p := &Painter{GridSpacing: 5}
	p.pixel = ebiten.NewImage(1, 1)
	p.pixel.Fill(color.White)
	return p
}

// Draw renders ground, car and the camera look-at marker.
func (p *Painter) Draw(screen *ebiten.Image, v View, pose vehicle.Pose, maxSpeed float64) {
	screen.Fill(groundColor)
	for _, seg := range GridLines(v, p.GridSpacing) {
		col := gridColor
		if seg[0].X() == 0 && seg[1].X() == 0 || seg[0].Z() == 0 && seg[1].Z() == 0 {
			col = originColor
		}
		p.segment(screen, v, seg, 1, col)
	}

	ppu := v.PixelsPerUnit()
	for i, w := range Wheels(pose) {
		p.segment(screen, v, w, WheelRadius*ppu, tyreColor)
		phase := SpinPhase(pose.Wheels[i])
		spoke := w[1].Add(w[0].Sub(w[1]).Mul(phase))
		x, y := v.Project(spoke)
		p.point(screen, x, y, math.Max(2, WheelRadius*ppu*0.6), spokeColor)
	}

	body := Body(pose)
	p.segment(screen, v, body, CarWidth*ppu*0.8, SpeedColor(pose.Speed, maxSpeed))
	nx, ny := v.Project(body[1])
	p.point(screen, nx, ny, math.Max(3, CarWidth*ppu*0.3), noseColor)

	tx, ty := v.Project(v.Target)
	p.point(screen, tx, ty, 4, targetColor)
}

func (p *Painter) segment(screen *ebiten.Image, v View, s Segment, thickness float64, col color.RGBA) {
	x1, y1 := v.Project(s[0])
	x2, y2 := v.Project(s[1])
	p.line(screen, x1, y1, x2, y2, thickness, col)
}

func (p *Painter) point(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(p.pixel, op)
}

func (p *Painter) line(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(p.pixel, op)
}
