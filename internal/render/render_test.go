package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rule-bloom/internal/core"
	"rule-bloom/internal/sims/rulebloom"
)

func quietOptions() Options {
	opts := DefaultOptions()
	opts.MaxSparks = -1
	opts.Scanlines = false
	opts.HistoryRows = 8
	return opts
}

func uniformSnapshot(tick uint64, width int, rule uint8, grains uint16) core.Snapshot {
	snap := core.Snapshot{Tick: tick, Width: width, Rule: make([]uint8, width), Grains: make([]uint16, width)}
	for i := range snap.Rule {
		snap.Rule[i] = rule
		snap.Grains[i] = grains
	}
	return snap
}

func rowBytes(r *Renderer, y int) []byte {
	img := r.hist.img
	out := make([]byte, img.Rect.Dx()*4)
	copy(out, img.Pix[y*img.Stride:])
	return out
}

func TestNewRequiresSurface(t *testing.T) {
	r, err := New(nil, DefaultOptions())
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrNoSurface)
}

func TestResizeClampsScaleAndDPR(t *testing.T) {
	r, err := New(&ImageSurface{}, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, r.Resize(ResizeRequest{CSSWidth: 100, CSSHeight: 50}))
	w, h := r.BackingSize()
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)

	assert.True(t, r.Resize(ResizeRequest{CSSWidth: 100, CSSHeight: 50, DPR: 2, Scale: 0.2}))
	w, h = r.BackingSize()
	assert.Equal(t, 110, w)
	assert.Equal(t, 55, h)

	assert.False(t, r.Resize(ResizeRequest{CSSWidth: 100, CSSHeight: 50, DPR: 2, Scale: 0.1}))
}

func TestRenderWithoutResizeUsesDefaultBacking(t *testing.T) {
	surf := &ImageSurface{}
	r, err := New(surf, DefaultOptions())
	require.NoError(t, err)

	r.Render(uniformSnapshot(0, 64, 1, 0), nil)
	w, h := r.BackingSize()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
	assert.Equal(t, minDerivedRows, r.HistoryRows())
	assert.Equal(t, 1, surf.Presents())
}

func TestRenderDoesNotReallocateUnderStableSize(t *testing.T) {
	surf := &ImageSurface{}
	r, err := New(surf, DefaultOptions())
	require.NoError(t, err)
	r.Resize(ResizeRequest{CSSWidth: 320, CSSHeight: 180, DPR: 1.5, Scale: 1})

	p := rulebloom.DefaultParams()
	p.Width = 64
	e := rulebloom.New(p)
	snap := e.Snapshot()
	res := e.Step()
	r.Render(snap, &res.Stats)
	allocs := r.Allocations()

	for i := 0; i < 200; i++ {
		res := e.Step()
		e.SnapshotInto(&snap)
		r.Render(snap, &res.Stats)
	}
	assert.Equal(t, allocs, r.Allocations())
	assert.False(t, r.Resize(ResizeRequest{CSSWidth: 320, CSSHeight: 180, DPR: 1.5, Scale: 1}))
	assert.Equal(t, allocs, r.Allocations())
	assert.Equal(t, 201, surf.Presents())
}

func TestRenderShiftsRowsDown(t *testing.T) {
	r, err := New(&ImageSurface{}, quietOptions())
	require.NoError(t, err)

	r.Render(uniformSnapshot(0, 16, 1, 0), nil)
	first := rowBytes(r, 0)
	r.Render(uniformSnapshot(1, 16, 0, 0), nil)
	second := rowBytes(r, 0)
	r.Render(uniformSnapshot(2, 16, 0, 0), nil)

	assert.NotEqual(t, first, second)
	assert.Equal(t, first, rowBytes(r, 2))
	assert.Equal(t, second, rowBytes(r, 1))
}

func TestRuleHueAlternatesWithParity(t *testing.T) {
	r, err := New(&ImageSurface{}, quietOptions())
	require.NoError(t, err)

	r.Render(uniformSnapshot(0, 8, 1, 0), nil)
	even := rowBytes(r, 0)
	assert.NotEqual(t, even[0:4], even[4:8])
	assert.Equal(t, even[0:4], even[8:12])

	r.Render(uniformSnapshot(1, 8, 1, 0), nil)
	odd := rowBytes(r, 0)
	assert.Equal(t, even[0:4], odd[4:8])
	assert.Equal(t, even[4:8], odd[0:4])
}

func TestGrainDeltasLeaveTrail(t *testing.T) {
	r, err := New(&ImageSurface{}, quietOptions())
	require.NoError(t, err)

	r.Render(uniformSnapshot(0, 8, 0, 0), nil)
	r.Render(uniformSnapshot(1, 8, 0, 4), nil)
	assert.InDelta(t, 1.0, r.hist.row(0)[0], 1e-6)

	r.Render(uniformSnapshot(2, 8, 0, 4), nil)
	assert.InDelta(t, 0.86, r.hist.row(0)[0], 1e-6)
}

func TestWidthChangeReallocates(t *testing.T) {
	r, err := New(&ImageSurface{}, quietOptions())
	require.NoError(t, err)

	r.Render(uniformSnapshot(0, 8, 1, 0), nil)
	allocs := r.Allocations()
	r.Render(uniformSnapshot(1, 12, 1, 0), nil)
	assert.Greater(t, r.Allocations(), allocs)
	assert.Equal(t, 12, r.hist.img.Rect.Dx())
}

func TestResizePreservesHistoryRows(t *testing.T) {
	r, err := New(&ImageSurface{}, Options{MaxSparks: -1})
	require.NoError(t, err)
	r.Resize(ResizeRequest{CSSWidth: 64, CSSHeight: 40})

	r.Render(uniformSnapshot(0, 64, 1, 0), nil)
	newest := rowBytes(r, 0)
	require.Equal(t, 40, r.HistoryRows())

	assert.True(t, r.Resize(ResizeRequest{CSSWidth: 64, CSSHeight: 80}))
	assert.Equal(t, 80, r.HistoryRows())
	assert.Equal(t, newest, rowBytes(r, 0))
}

func TestScanlinesDarkenEveryThirdRow(t *testing.T) {
	opts := quietOptions()
	opts.Scanlines = true
	r, err := New(&ImageSurface{}, opts)
	require.NoError(t, err)
	r.Resize(ResizeRequest{CSSWidth: 8, CSSHeight: 8})

	for tick := uint64(0); tick < 3; tick++ {
		r.Render(uniformSnapshot(tick, 8, 0, 0), nil)
	}
	frame := r.frame
	lit := frame.RGBAAt(0, 0)
	dim := frame.RGBAAt(0, 2)
	assert.Equal(t, lit, frame.RGBAAt(0, 1))
	assert.Equal(t, lit.B-lit.B/10, dim.B)
	assert.Less(t, dim.B, lit.B)
}

func TestSparksFollowActivity(t *testing.T) {
	assert.Equal(t, 0, sparkCount(0, 24))
	assert.Equal(t, 1, sparkCount(3, 24))
	assert.Equal(t, 3, sparkCount(16, 24))
	assert.Equal(t, 24, sparkCount(1_000_000, 24))
	assert.Equal(t, 0, sparkCount(50, -1))

	a, err := New(&ImageSurface{}, quietOptions())
	require.NoError(t, err)
	opts := quietOptions()
	opts.MaxSparks = 24
	b, err := New(&ImageSurface{}, opts)
	require.NoError(t, err)

	snap := uniformSnapshot(5, 32, 0, 0)
	stats := core.TickStats{Tick: 5, Topples: 40}
	a.Render(snap, &stats)
	b.Render(snap, &stats)
	assert.NotEqual(t, a.hist.img.Pix, b.hist.img.Pix)
}

func TestImageSurfaceWritePNG(t *testing.T) {
	surf := &ImageSurface{}
	var buf bytes.Buffer
	assert.Error(t, surf.WritePNG(&buf))

	r, err := New(surf, DefaultOptions())
	require.NoError(t, err)
	r.Resize(ResizeRequest{CSSWidth: 40, CSSHeight: 30})
	r.Render(uniformSnapshot(0, 16, 1, 2), nil)

	require.NoError(t, surf.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
}
