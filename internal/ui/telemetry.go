package ui

import (
	"fmt"
	"math"
)

// Telemetry is the readout shown by the overlay.
type Telemetry struct {
	Tick           uint64
	FPS            float64
	Speed          float64
	Steering       float64
	TargetSteering float64
	Yaw            float64
	Position       [3]float64
	CameraDistance float64
	Settling       bool
	Clamped        uint64
	SteerMode      string
}

// Lines renders the readout, one value per line. Angles are shown in degrees.
func (t Telemetry) Lines() []string {
	cam := "settled"
	if t.Settling {
		cam = "settling"
	}
	return []string{
		fmt.Sprintf("tick %d  %.0f fps", t.Tick, t.FPS),
		fmt.Sprintf("speed %6.2f", t.Speed),
		fmt.Sprintf("steer %6.1f -> %.1f deg", degrees(t.Steering), degrees(t.TargetSteering)),
		fmt.Sprintf("yaw   %6.1f deg", degrees(t.Yaw)),
		fmt.Sprintf("pos   %.1f, %.1f", t.Position[0], t.Position[2]),
		fmt.Sprintf("cam   %.1f m, %s", t.CameraDistance, cam),
		fmt.Sprintf("mode  %s, %d clamped", t.SteerMode, t.Clamped),
	}
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
