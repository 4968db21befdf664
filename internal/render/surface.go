package render

import (
	"errors"
	"image"
	"image/png"
	"io"
)

// ImageSurface keeps a copy of the most recent frame in memory.
type ImageSurface struct {
	frame    *image.RGBA
	presents int
}

// Present copies frame.
func (s *ImageSurface) Present(frame *image.RGBA) {
	if s.frame == nil || s.frame.Rect != frame.Rect {
		s.frame = image.NewRGBA(frame.Rect)
	}
	copy(s.frame.Pix, frame.Pix)
	s.presents++
}

// Presents counts frames received.
func (s *ImageSurface) Presents() int { return s.presents }

// WritePNG encodes the stored frame.
func (s *ImageSurface) WritePNG(w io.Writer) error {
	if s.frame == nil {
		return errors.New("render: no frame presented")
	}
	return png.Encode(w, s.frame)
}
