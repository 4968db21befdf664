//go:build ebiten

package app

import (
	"errors"
	"image"
	"math"
	"time"

	"rule-bloom/internal/core"
	"rule-bloom/internal/render"
	"rule-bloom/internal/sims/rulebloom"
	"rule-bloom/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Options configure the GUI.
type Options struct {
	Regime   string
	TPS      int
	Render   render.Options
	HUDWidth int
}

// Game adapts a rulebloom engine to the ebiten.Game interface.
type Game struct {
	engine   *rulebloom.Engine
	renderer *render.Renderer
	surface  *imageSurface
	hud      *ui.HUD
	overlay  *ui.Overlay
	step     *core.FixedStep
	quality  *core.Quality

	snap  core.Snapshot
	stats core.TickStats

	regime   string
	paused   bool
	tickOnce bool

	outW, outH int
	sized      bool
	lastScale  float64
	lastDraw   time.Time
}

// imageSurface uploads frames into an ebiten image.
type imageSurface struct {
	img *ebiten.Image
}

func (s *imageSurface) Present(frame *image.RGBA) {
	w, h := frame.Rect.Dx(), frame.Rect.Dy()
	if s.img == nil || s.img.Bounds().Dx() != w || s.img.Bounds().Dy() != h {
		if s.img != nil {
			s.img.Deallocate()
		}
		s.img = ebiten.NewImage(w, h)
	}
	s.img.WritePixels(frame.Pix)
}

// New constructs a Game for e.
func New(e *rulebloom.Engine, opts Options) (*Game, error) {
	if opts.HUDWidth <= 0 {
		opts.HUDWidth = 240
	}
	surf := &imageSurface{}
	r, err := render.New(surf, opts.Render)
	if err != nil {
		return nil, err
	}
	g := &Game{
		engine:   e,
		renderer: r,
		surface:  surf,
		hud:      ui.NewHUD(e, opts.HUDWidth),
		overlay:  ui.NewOverlay(e),
		step:     core.NewFixedStep(opts.TPS),
		quality:  core.NewQuality(time.Second / 60),
		snap:     e.Snapshot(),
		regime:   opts.Regime,
	}
	return g, nil
}

// Reset reinitializes the engine with the provided seed.
func (g *Game) Reset(seed int64) {
	g.engine.Reset(seed)
	g.engine.SnapshotInto(&g.snap)
	g.stats = core.TickStats{}
	g.tickOnce = false
}

// Update handles input and advances the engine by the ticks owed.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.engine.OriginalParams().Seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}

	g.overlay.Update()
	g.hud.Update(g.viewWidth())
	g.resize()

	due := g.step.Due()
	if g.paused {
		due = 0
	}
	if g.tickOnce {
		due = max(due, 1)
		g.tickOnce = false
	}
	for i := 0; i < due; i++ {
		g.stats = g.engine.Step().Stats
		g.engine.SnapshotInto(&g.snap)
		g.renderer.Render(g.snap, &g.stats)
	}
	if g.surface.img == nil {
		g.renderer.Render(g.snap, nil)
	}
	g.hud.SetStatus(ui.StatusLines(g.regime, g.stats, g.quality.Scale(), g.paused)...)
	return nil
}

func (g *Game) viewWidth() int {
	return max(g.outW-g.hud.Width(), 1)
}

// resize keeps the backing size in step with the window, the device scale
// and the adaptive quality scale.
func (g *Game) resize() {
	if g.outW <= 0 || g.outH <= 0 {
		return
	}
	scale := g.quality.Scale()
	if g.sized && math.Abs(scale-g.lastScale) < 1e-9 {
		return
	}
	g.renderer.Resize(render.ResizeRequest{
		CSSWidth:  float64(g.viewWidth()),
		CSSHeight: float64(g.outH),
		DPR:       ebiten.DeviceScaleFactor(),
		Scale:     scale,
	})
	g.lastScale = scale
	g.sized = true
}

// Draw paints the history, the overlay and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	now := time.Now()
	if !g.lastDraw.IsZero() {
		g.quality.Observe(now.Sub(g.lastDraw))
	}
	g.lastDraw = now

	viewW := g.viewWidth()
	if img := g.surface.img; img != nil {
		b := img.Bounds()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(viewW)/float64(b.Dx()), float64(g.outH)/float64(b.Dy()))
		op.Filter = ebiten.FilterNearest
		screen.DrawImage(img, op)
	}
	g.overlay.Draw(screen, viewW, g.outH)
	g.hud.Draw(screen, viewW, g.outH)
}

// Layout returns the logical screen size, tracking window resizes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.outW || outsideHeight != g.outH {
		g.outW, g.outH = outsideWidth, outsideHeight
		g.sized = false
	}
	return outsideWidth, outsideHeight
}

// Run opens a window and blocks until it is closed.
func Run(g *Game, title string) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(1200, 640)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
