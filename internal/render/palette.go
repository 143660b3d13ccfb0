package render

import (
	"image/color"
	"math"
)

var speedStops = []struct {
	t   float64
	col color.RGBA
}{
	{0.0, color.RGBA{R: 70, G: 105, B: 160, A: 255}},
	{0.4, color.RGBA{R: 90, G: 170, B: 110, A: 255}},
	{0.75, color.RGBA{R: 230, G: 190, B: 70, A: 255}},
	{1.0, color.RGBA{R: 235, G: 80, B: 60, A: 255}},
}

// SpeedColor tints the car body by |speed| / maxSpeed.
func SpeedColor(speed, maxSpeed float64) color.RGBA {
	if maxSpeed <= 0 {
		return speedStops[0].col
	}
	t := clamp01(math.Abs(speed) / maxSpeed)
	for i := 1; i < len(speedStops); i++ {
		curr := speedStops[i]
		if t <= curr.t {
			prev := speedStops[i-1]
			span := curr.t - prev.t
			var local float64
			if span > 0 {
				local = (t - prev.t) / span
			}
			return lerpRGBA(prev.col, curr.col, local)
		}
	}
	return speedStops[len(speedStops)-1].col
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: lerpComponent(a.R, b.R, t),
		G: lerpComponent(a.G, b.G, t),
		B: lerpComponent(a.B, b.B, t),
		A: lerpComponent(a.A, b.A, t),
	}
}

func lerpComponent(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
