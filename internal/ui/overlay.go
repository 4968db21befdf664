//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"rule-bloom/internal/sims/rulebloom"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// LaneSource exposes the live lane to the overlay.
type LaneSource interface {
	State() *rulebloom.State
	Params() rulebloom.Params
}

// Overlay draws toggleable diagnostics over the history view: a grain heat
// strip along the top edge and a marker at the topple scan cursor.
type Overlay struct {
	src        LaneSource
	showHeat   bool
	showCursor bool

	heatImg *ebiten.Image
	heatBuf []byte
	pixel   *ebiten.Image
}

const heatStripHeight = 10

// NewOverlay constructs an overlay with the heat strip enabled.
func NewOverlay(src LaneSource) *Overlay {
	o := &Overlay{src: src, showHeat: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles layers: 1 heat strip, 2 scan cursor.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showHeat = !o.showHeat
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showCursor = !o.showCursor
	}
}

// Draw renders the enabled layers over a view of width × height.
func (o *Overlay) Draw(screen *ebiten.Image, width, height int) {
	s := o.src.State()
	if s == nil || s.Width <= 0 || width <= 0 || height <= 0 {
		return
	}
	colW := float64(width) / float64(s.Width)
	if o.showHeat {
		o.drawHeat(screen, s, colW)
	}
	if o.showCursor {
		x := (float64(s.ScanCursor) + 0.5) * colW
		o.drawLine(screen, x, 0, x, float64(height), math.Max(colW, 1), color.RGBA{R: 255, G: 255, B: 255, A: 110})
	}
}

func (o *Overlay) drawHeat(screen *ebiten.Image, s *rulebloom.State, colW float64) {
	w := s.Width
	if o.heatImg == nil || o.heatImg.Bounds().Dx() != w {
		o.heatImg = ebiten.NewImage(w, 1)
		o.heatBuf = make([]byte, 4*w)
	}
	fillHeat(o.heatBuf, s.Grains, o.src.Params().ToppleThreshold)
	o.heatImg.WritePixels(o.heatBuf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(colW, heatStripHeight)
	screen.DrawImage(o.heatImg, op)
}

// fillHeat maps grain counts onto a translucent ramp, saturating at the
// topple threshold.
func fillHeat(buf []byte, grains []uint16, threshold int) {
	const (
		maxAlpha      = 200.0
		intensityBias = 0.75
	)
	if threshold <= 0 {
		threshold = 1
	}
	for i, g := range grains {
		base := i * 4
		intensity := clamp01(float64(g) / float64(threshold))
		if intensity == 0 {
			buf[base+0], buf[base+1], buf[base+2], buf[base+3] = 0, 0, 0, 0
			continue
		}
		col := heatColor(intensity)
		alpha := maxAlpha * math.Pow(intensity, intensityBias)
		// Premultiplied for WritePixels.
		k := alpha / 255
		buf[base+0] = uint8(math.Round(float64(col.R) * k))
		buf[base+1] = uint8(math.Round(float64(col.G) * k))
		buf[base+2] = uint8(math.Round(float64(col.B) * k))
		buf[base+3] = uint8(math.Round(alpha))
	}
}

func heatColor(t float64) color.RGBA {
	cool := color.RGBA{R: 60, G: 110, B: 255, A: 255}
	warm := color.RGBA{R: 255, G: 170, B: 40, A: 255}
	hot := color.RGBA{R: 255, G: 60, B: 40, A: 255}
	if t < 0.5 {
		return lerpColor(cool, warm, t*2)
	}
	return lerpColor(warm, hot, (t-0.5)*2)
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 || thickness <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
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
