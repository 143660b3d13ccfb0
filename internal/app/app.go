//go:build ebiten

package app

import (
	"arcade-drive/internal/config"
	"arcade-drive/internal/input"
	"arcade-drive/internal/render"
	"arcade-drive/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	PanelWidth  = 260
	orbitSpeed  = 0.008
	zoomPerStep = 0.9
)

// Game adapts a Session to the ebiten.Game interface. ebiten's Update is the
// per-frame callback, so it samples input and ticks the clock exactly once.
type Game struct {
	session *Session
	poller  *input.Poller
	painter *render.Painter
	hud     *ui.HUD
	overlay *ui.Overlay
	reloads <-chan config.Settings

	width  int
	height int
	scale  int

	dragging   bool
	lastCursor [2]int
}

// New constructs a Game for the session. reloads may be nil.
func New(s *Session, cfg *config.Config, reloads <-chan config.Settings) *Game {
	return &Game{
		session: s,
		poller:  input.NewPoller(s.Ctx.Input),
		painter: render.NewPainter(),
		hud:     ui.NewHUD(PanelWidth, s.Ctx.Log, s.Tunables()...),
		overlay: ui.NewOverlay(),
		reloads: reloads,
		width:   cfg.Width,
		height:  cfg.Height,
		scale:   cfg.Scale,
	}
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.session.Reset()
	}
	select {
	case next := <-g.reloads:
		g.session.Apply(next)
	default:
	}

	g.overlay.Update()
	g.hud.Update(g.width)
	g.poller.Poll()
	g.handleOrbit()

	g.session.Ctx.Clock.Tick()
	return nil
}

func (g *Game) handleOrbit() {
	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && !g.hud.Contains(x, y) {
		g.dragging = true
		g.lastCursor = [2]int{x, y}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
	}
	if g.dragging {
		dx, dy := x-g.lastCursor[0], y-g.lastCursor[1]
		if dx != 0 || dy != 0 {
			g.session.Orbit.Rotate(-float64(dx)*orbitSpeed, float64(dy)*orbitSpeed)
		}
		g.lastCursor = [2]int{x, y}
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		if wy > 0 {
			g.session.Orbit.Zoom(zoomPerStep)
		} else {
			g.session.Orbit.Zoom(1 / zoomPerStep)
		}
	}
}

// Draw renders the current frame.
func (g *Game) Draw(screen *ebiten.Image) {
	f := g.session.Frame()
	view := render.NewView(g.width, g.height, float64(g.scale), f.CameraPosition, f.CameraTarget)
	g.painter.Draw(screen, view, g.session.Vehicle.Pose(), g.session.Vehicle.Tuning().MaxSpeed)
	g.overlay.Draw(screen, g.telemetry(f), g.session.Vehicle.Tuning().SteeringAngleMax)
	g.hud.Draw(screen, g.width, g.height)
}

func (g *Game) telemetry(f Frame) ui.Telemetry {
	return ui.Telemetry{
		Tick:           f.Tick,
		FPS:            ebiten.ActualFPS(),
		Speed:          f.Speed,
		Steering:       f.Steering,
		TargetSteering: f.TargetSteering,
		Yaw:            f.Yaw,
		Position:       f.Position,
		CameraDistance: g.session.Orbit.Distance(),
		Settling:       f.Settling,
		Clamped:        g.session.Ctx.Clock.Clamped(),
		SteerMode:      g.session.Vehicle.Mode().String(),
	}
}

// Layout returns the logical screen size: the driving view plus the panel.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width + PanelWidth, g.height
}
