package render

import (
	"errors"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"rule-bloom/internal/core"
)

// ErrNoSurface is returned by New when there is nothing to draw on.
var ErrNoSurface = errors.New("render: no drawing surface")

const (
	minDerivedRows = 32
	maxDerivedRows = 2048
	maxHistoryRows = 4096
	maxBackingSide = 8192

	sparkRows = 3
)

// Surface receives each composited frame. The frame is owned by the renderer
// and is overwritten on the next Render; surfaces that keep it must copy.
type Surface interface {
	Present(frame *image.RGBA)
}

// Options tune the compositor. Zero fields fall back to DefaultOptions,
// except Scanlines; a negative MaxSparks disables sparks.
type Options struct {
	Theme       Theme
	HistoryRows int
	GrainScale  float64
	TrailDecay  float64
	MaxSparks   int
	Scanlines   bool
}

// DefaultOptions returns the stock renderer settings.
func DefaultOptions() Options {
	return Options{
		Theme:      DefaultTheme(),
		GrainScale: 8,
		TrailDecay: 0.86,
		MaxSparks:  24,
		Scanlines:  true,
	}
}

func normalizeOptions(o Options) Options {
	def := DefaultOptions()
	if o.Theme == (Theme{}) {
		o.Theme = def.Theme
	}
	if o.HistoryRows < 0 {
		o.HistoryRows = 0
	}
	if o.HistoryRows > maxHistoryRows {
		o.HistoryRows = maxHistoryRows
	}
	if !(o.GrainScale > 0) || math.IsInf(o.GrainScale, 0) {
		o.GrainScale = def.GrainScale
	}
	if !(o.TrailDecay > 0 && o.TrailDecay < 1) {
		o.TrailDecay = def.TrailDecay
	}
	if o.MaxSparks == 0 {
		o.MaxSparks = def.MaxSparks
	}
	return o
}

// ResizeRequest describes the display area in CSS-style logical pixels.
type ResizeRequest struct {
	CSSWidth  float64
	CSSHeight float64
	DPR       float64
	Scale     float64
}

// Renderer turns successive snapshots into a scrolling history image.
type Renderer struct {
	surface Surface
	opts    Options

	hist  *history
	prev  []uint16
	frame *image.RGBA

	width    int
	backingW int
	backingH int

	allocs int
}

// New binds a renderer to surface.
func New(surface Surface, opts Options) (*Renderer, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	return &Renderer{surface: surface, opts: normalizeOptions(opts)}, nil
}

// BackingSize reports the frame size in device pixels.
func (r *Renderer) BackingSize() (int, int) { return r.backingW, r.backingH }

// HistoryRows reports how many ticks of history are visible.
func (r *Renderer) HistoryRows() int {
	if r.hist == nil {
		return 0
	}
	return r.hist.h
}

// Allocations counts buffer reallocations since construction.
func (r *Renderer) Allocations() int { return r.allocs }

// Resize sets the backing size and reports whether any buffer was
// reallocated.
func (r *Renderer) Resize(req ResizeRequest) bool {
	dpr := req.DPR
	if !(dpr > 0) || math.IsInf(dpr, 0) {
		dpr = 1
	}
	scale := core.ClampScale(req.Scale)
	bw := backingSide(req.CSSWidth * dpr * scale)
	bh := backingSide(req.CSSHeight * dpr * scale)

	changed := false
	if bw != r.backingW || bh != r.backingH || r.frame == nil {
		r.backingW, r.backingH = bw, bh
		r.frame = image.NewRGBA(image.Rect(0, 0, bw, bh))
		r.allocs++
		changed = true
	}
	if r.width > 0 && r.ensureHistory(r.width) {
		changed = true
	}
	return changed
}

func backingSide(v float64) int {
	if !(v > 0) {
		return 1
	}
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	if n > maxBackingSide {
		return maxBackingSide
	}
	return n
}

func (r *Renderer) derivedRows(width int) int {
	if r.opts.HistoryRows > 0 {
		return r.opts.HistoryRows
	}
	if r.backingW <= 0 || r.backingH <= 0 {
		return clampRows(width / 2)
	}
	return clampRows(int(math.Round(float64(width) * float64(r.backingH) / float64(r.backingW))))
}

func clampRows(n int) int {
	if n < minDerivedRows {
		return minDerivedRows
	}
	if n > maxDerivedRows {
		return maxDerivedRows
	}
	return n
}

// ensureHistory sizes the history and previous-grain buffers for a lane of
// the given width and reports whether it reallocated.
func (r *Renderer) ensureHistory(width int) bool {
	rows := r.derivedRows(width)
	if r.hist != nil && r.hist.w == width && r.hist.h == rows {
		return false
	}
	bg := r.opts.Theme.Background.RGBA()
	r.hist = r.hist.resize(width, rows, bg)
	if len(r.prev) != width {
		r.prev = nil
	}
	r.width = width
	r.allocs++
	return true
}

// Render composites snap as the newest history row and presents a frame.
// stats may be nil, in which case no sparks are drawn.
func (r *Renderer) Render(snap core.Snapshot, stats *core.TickStats) {
	w := snap.Width
	if w <= 0 || len(snap.Rule) < w || len(snap.Grains) < w {
		return
	}
	if r.frame == nil {
		r.Resize(ResizeRequest{CSSWidth: float64(w), CSSHeight: float64(w / 2), DPR: 1, Scale: 1})
	}
	r.ensureHistory(w)
	if r.prev == nil {
		r.prev = make([]uint16, w)
		copy(r.prev, snap.Grains[:w])
		r.allocs++
	}

	r.hist.shiftDown()
	r.compositeRow(snap)
	if stats != nil {
		r.drawSparks(snap.Tick, stats.Activity())
	}

	xdraw.NearestNeighbor.Scale(r.frame, r.frame.Bounds(), r.hist.img, r.hist.img.Bounds(), xdraw.Src, nil)
	if r.opts.Scanlines {
		applyScanlines(r.frame)
	}
	r.surface.Present(r.frame)
}

func (r *Renderer) compositeRow(snap core.Snapshot) {
	t := &r.opts.Theme
	hs := r.hist
	act := hs.row(0)
	var older []float32
	if hs.h > 1 {
		older = hs.row(1)
	}
	decay := r.opts.TrailDecay
	scale := r.opts.GrainScale

	for x := 0; x < hs.w; x++ {
		c := t.Background
		if snap.Rule[x] != 0 {
			hue := t.RuleA
			if (uint64(x)+snap.Tick)&1 == 1 {
				hue = t.RuleB
			}
			c = c.AddScaled(hue, 0.85)
		} else {
			c = c.AddScaled(t.RuleOff, 0.35)
		}

		g := float64(snap.Grains[x])
		c = c.AddScaled(t.Grain, 0.55*math.Min(g/scale, 1))

		level := 0.0
		delta := g - float64(r.prev[x])
		switch {
		case delta > 0:
			k := math.Min(delta/4, 1)
			c = c.AddScaled(t.Cascade, 0.7*k)
			level = k
		case delta < 0:
			k := math.Min(-delta/2, 1)
			c = c.AddScaled(t.Decay, 0.5*k)
			level = 0.6 * k
		}

		trail := 0.0
		if older != nil {
			trail = float64(older[x]) * decay
		}
		c = c.AddScaled(t.Trail, 0.45*trail)
		act[x] = float32(math.Min(level+trail, 1))

		hs.set(x, 0, c)
		r.prev[x] = snap.Grains[x]
	}
}

// sparkCount maps a tick's activity onto the number of sparks to draw.
func sparkCount(activity, limit int) int {
	if activity <= 0 || limit <= 0 {
		return 0
	}
	return min(1+activity/8, limit)
}

// drawSparks scatters highlights over the newest rows. Placement depends only
// on the tick and spark index so a replay draws identical frames.
func (r *Renderer) drawSparks(tick uint64, activity int) {
	n := sparkCount(activity, r.opts.MaxSparks)
	if n == 0 {
		return
	}
	hs := r.hist
	rows := uint64(min(hs.h, sparkRows))
	w := uint64(hs.w)
	for i := 0; i < n; i++ {
		h := (tick+1)*2654435761 + uint64(i)*40503
		x := int((h >> 7) % w)
		y := int((tick + uint64(i)) % rows)
		hs.blend(x, y, r.opts.Theme.Spark, 0.8)
	}
}

// applyScanlines darkens every third row by 10%.
func applyScanlines(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y + 2; y < b.Max.Y; y += 3 {
		row := img.Pix[(y-b.Min.Y)*img.Stride : (y-b.Min.Y)*img.Stride+b.Dx()*4]
		for i := 0; i+3 < len(row); i += 4 {
			row[i+0] -= row[i+0] / 10
			row[i+1] -= row[i+1] / 10
			row[i+2] -= row[i+2] / 10
		}
	}
}
