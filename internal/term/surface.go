package term

import (
	"image"

	"github.com/gdamore/tcell/v2"
)

// halfBlock paints the upper pixel as foreground and the lower as background.
const halfBlock = '▀'

// screenSurface draws frames onto a tcell screen, two pixel rows per cell
// row, starting at row top.
type screenSurface struct {
	screen tcell.Screen
	top    int
}

func (s *screenSurface) Present(frame *image.RGBA) {
	b := frame.Bounds()
	cols, rows := s.screen.Size()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		row := s.top + (y-b.Min.Y)/2
		if row >= rows {
			break
		}
		for x := b.Min.X; x < b.Max.X && x-b.Min.X < cols; x++ {
			upper := frame.RGBAAt(x, y)
			lower := upper
			if y+1 < b.Max.Y {
				lower = frame.RGBAAt(x, y+1)
			}
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(upper.R), int32(upper.G), int32(upper.B))).
				Background(tcell.NewRGBColor(int32(lower.R), int32(lower.G), int32(lower.B)))
			s.screen.SetContent(x-b.Min.X, row, halfBlock, nil, style)
		}
	}
}
