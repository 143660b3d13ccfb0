package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Orbit is the user-facing orbit widget the chase camera cooperates with. It
// owns the camera transform; the chase controller moves it while driving and
// reads the user's zoom back from it.
type Orbit interface {
	Position() mgl64.Vec3
	Target() mgl64.Vec3
	SetPosition(mgl64.Vec3)
	SetTarget(mgl64.Vec3)
	// Distance is the live zoom distance between position and target.
	Distance() float64
}

// OrbitControls is a spherical orbit around a look-at target with clamped
// zoom and elevation.
type OrbitControls struct {
	position mgl64.Vec3
	target   mgl64.Vec3

	MinDistance  float64
	MaxDistance  float64
	MinElevation float64
	MaxElevation float64
}

// NewOrbitControls places the camera at position looking at target.
func NewOrbitControls(position, target mgl64.Vec3) *OrbitControls {
	return &OrbitControls{
		position:     position,
		target:       target,
		MinDistance:  2,
		MaxDistance:  80,
		MinElevation: 0.05,
		MaxElevation: math.Pi/2 - 0.05,
	}
}

// Position returns the camera position.
func (o *OrbitControls) Position() mgl64.Vec3 { return o.position }

// Target returns the look-at point.
func (o *OrbitControls) Target() mgl64.Vec3 { return o.target }

// SetPosition moves the camera without touching the target.
func (o *OrbitControls) SetPosition(p mgl64.Vec3) { o.position = p }

// SetTarget moves the look-at point without touching the camera.
func (o *OrbitControls) SetTarget(t mgl64.Vec3) { o.target = t }

// Distance returns the distance from camera to target.
func (o *OrbitControls) Distance() float64 { return o.position.Sub(o.target).Len() }

// Spherical returns radius, azimuth (around +Y, measured from +Z) and
// elevation above the XZ plane of the camera relative to its target.
func (o *OrbitControls) Spherical() (radius, azimuth, elevation float64) {
	off := o.position.Sub(o.target)
	radius = off.Len()
	if radius == 0 {
		return 0, 0, 0
	}
	azimuth = math.Atan2(off.X(), off.Z())
	elevation = math.Asin(mgl64.Clamp(off.Y()/radius, -1, 1))
	return radius, azimuth, elevation
}

func (o *OrbitControls) setSpherical(radius, azimuth, elevation float64) {
	cosEl := math.Cos(elevation)
	o.position = o.target.Add(mgl64.Vec3{
		radius * cosEl * math.Sin(azimuth),
		radius * math.Sin(elevation),
		radius * cosEl * math.Cos(azimuth),
	})
}

// Rotate orbits the camera around the target.
func (o *OrbitControls) Rotate(dAzimuth, dElevation float64) {
	r, az, el := o.Spherical()
	if r == 0 {
		return
	}
	el = mgl64.Clamp(el+dElevation, o.MinElevation, o.MaxElevation)
	o.setSpherical(r, az+dAzimuth, el)
}

// Zoom scales the distance to the target by factor (< 1 moves closer).
func (o *OrbitControls) Zoom(factor float64) {
	r, az, el := o.Spherical()
	if r == 0 || factor <= 0 {
		return
	}
	o.setSpherical(mgl64.Clamp(r*factor, o.MinDistance, o.MaxDistance), az, el)
}
