package render

import (
	"image"
	"image/color"
)

// history is the scrolling image: one column per lane cell, row 0 newest.
// Pixels live in an RGBA buffer shared with img so the scaler reads it
// directly; activity keeps a per-pixel trail level alongside.
type history struct {
	w, h     int
	img      *image.RGBA
	activity []float32
}

func newHistory(w, h int, bg color.RGBA) *history {
	hs := &history{
		w:        w,
		h:        h,
		img:      image.NewRGBA(image.Rect(0, 0, w, h)),
		activity: make([]float32, w*h),
	}
	fillSolidRGBA(hs.img.Pix, bg)
	return hs
}

// fillSolidRGBA paints every pixel of buf with c.
func fillSolidRGBA(buf []byte, c color.RGBA) {
	for base := 0; base+3 < len(buf); base += 4 {
		buf[base+0] = c.R
		buf[base+1] = c.G
		buf[base+2] = c.B
		buf[base+3] = c.A
	}
}

// shiftDown moves every row one step older, dropping the oldest. Row 0 keeps
// its previous contents until the caller overwrites it.
func (hs *history) shiftDown() {
	if hs.h < 2 {
		return
	}
	stride := hs.w * 4
	copy(hs.img.Pix[stride:], hs.img.Pix[:len(hs.img.Pix)-stride])
	copy(hs.activity[hs.w:], hs.activity[:len(hs.activity)-hs.w])
}

// resize returns a buffer of the new size carrying over the rows that
// overlap, newest first. Columns are kept only when the width is unchanged.
func (hs *history) resize(w, h int, bg color.RGBA) *history {
	next := newHistory(w, h, bg)
	if hs == nil || hs.w != w {
		return next
	}
	rows := min(hs.h, h)
	copy(next.img.Pix, hs.img.Pix[:rows*w*4])
	copy(next.activity, hs.activity[:rows*w])
	return next
}

func (hs *history) set(x, y int, c RGB) {
	base := y*hs.img.Stride + x*4
	px := c.RGBA()
	pix := hs.img.Pix
	pix[base+0] = px.R
	pix[base+1] = px.G
	pix[base+2] = px.B
	pix[base+3] = 255
}

// blend moves the pixel at (x, y) towards c by t.
func (hs *history) blend(x, y int, c RGB, t float64) {
	base := y*hs.img.Stride + x*4
	pix := hs.img.Pix
	cur := RGB{float64(pix[base+0]), float64(pix[base+1]), float64(pix[base+2])}
	px := Blend(cur, c, t).RGBA()
	pix[base+0] = px.R
	pix[base+1] = px.G
	pix[base+2] = px.B
}

func (hs *history) row(y int) []float32 {
	return hs.activity[y*hs.w : (y+1)*hs.w]
}
