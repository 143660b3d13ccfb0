package render

import (
	"math"

	"arcade-drive/internal/vehicle"

	"github.com/go-gl/mathgl/mgl64"
)

// Car body and wheel dimensions in world units.
const (
	CarLength   = 4.2
	CarWidth    = 1.9
	WheelBase   = 2.6
	WheelTrack  = 1.6
	WheelLength = 0.7
	WheelRadius = 0.35
)

// View maps the XZ ground plane onto the screen from above. The camera's
// horizontal heading points down the screen so the car drives "up" while the
// chase camera trails it, and zooming the orbit scales the picture.
type View struct {
	Width, Height int
	// Scale is pixels per world unit when the camera is RefDistance away.
	Scale       float64
	RefDistance float64
	Eye         mgl64.Vec3
	Target      mgl64.Vec3
}

// NewView returns a view centred on target.
func NewView(width, height int, scale float64, eye, target mgl64.Vec3) View {
	return View{Width: width, Height: height, Scale: scale, RefDistance: 11, Eye: eye, Target: target}
}

// PixelsPerUnit returns the effective zoom.
func (v View) PixelsPerUnit() float64 {
	d := v.Eye.Sub(v.Target).Len()
	if d <= 0 || v.RefDistance <= 0 {
		return v.Scale
	}
	return v.Scale * v.RefDistance / d
}

// axes returns the ground-plane forward (screen up) and right vectors.
func (v View) axes() (fwd, right mgl64.Vec2) {
	off := v.Eye.Sub(v.Target)
	az := 0.0
	if math.Hypot(off.X(), off.Z()) > 1e-9 {
		az = math.Atan2(off.X(), off.Z())
	}
	sin, cos := math.Sincos(az)
	return mgl64.Vec2{-sin, -cos}, mgl64.Vec2{cos, -sin}
}

// Project maps a world point to screen pixels. Height is ignored.
func (v View) Project(p mgl64.Vec3) (x, y float64) {
	fwd, right := v.axes()
	d := mgl64.Vec2{p.X() - v.Target.X(), p.Z() - v.Target.Z()}
	ppu := v.PixelsPerUnit()
	return float64(v.Width)/2 + d.Dot(right)*ppu, float64(v.Height)/2 - d.Dot(fwd)*ppu
}

// Forward is the unit heading of a vehicle with the given yaw; yaw 0 faces -Z.
func Forward(yaw float64) mgl64.Vec3 {
	return mgl64.Vec3{-math.Sin(yaw), 0, -math.Cos(yaw)}
}

// Right is the unit vector to the vehicle's right for the given yaw.
func Right(yaw float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Cos(yaw), 0, -math.Sin(yaw)}
}

// Segment is a line between two world points.
type Segment [2]mgl64.Vec3

// Body returns the centre line of the car body from rear to nose.
func Body(p vehicle.Pose) Segment {
	half := Forward(p.Yaw).Mul(CarLength / 2)
	return Segment{p.Position.Sub(half), p.Position.Add(half)}
}

// Wheels returns one segment per wheel in vehicle wheel order. Front wheels
// are turned by the steering angle.
func Wheels(p vehicle.Pose) [4]Segment {
	fwd, right := Forward(p.Yaw), Right(p.Yaw)
	var out [4]Segment
	for i := range out {
		long := WheelBase / 2
		if i == vehicle.RearLeft || i == vehicle.RearRight {
			long = -long
		}
		lat := WheelTrack / 2
		if i == vehicle.FrontLeft || i == vehicle.RearLeft {
			lat = -lat
		}
		centre := p.Position.Add(fwd.Mul(long)).Add(right.Mul(lat))
		heading := fwd
		if i == vehicle.FrontLeft || i == vehicle.FrontRight {
			heading = Forward(p.Yaw + p.Steering)
		}
		half := heading.Mul(WheelLength / 2)
		out[i] = Segment{centre.Sub(half), centre.Add(half)}
	}
	return out
}

// SpinPhase maps a wheel spin angle to [0, 1) so a spoke marker can slide
// along the wheel as it rolls.
func SpinPhase(angle float64) float64 {
	rev := angle / (2 * math.Pi * WheelRadius)
	return rev - math.Floor(rev)
}

// GridLines returns ground grid lines spaced spacing apart covering the view.
func GridLines(v View, spacing float64) []Segment {
	ppu := v.PixelsPerUnit()
	if spacing <= 0 || ppu <= 0 {
		return nil
	}
	reach := math.Hypot(float64(v.Width), float64(v.Height)) / ppu / 2
	minX := math.Floor((v.Target.X()-reach)/spacing) * spacing
	minZ := math.Floor((v.Target.Z()-reach)/spacing) * spacing
	maxX := v.Target.X() + reach
	maxZ := v.Target.Z() + reach

	var lines []Segment
	for x := minX; x <= maxX; x += spacing {
		lines = append(lines, Segment{{x, 0, minZ}, {x, 0, maxZ}})
	}
	for z := minZ; z <= maxZ; z += spacing {
		lines = append(lines, Segment{{minX, 0, z}, {maxX, 0, z}})
	}
	return lines
}
