package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is a colour with channels on the 0..255 scale. Contributions are summed
// in floating point and clamped once when written to a pixel.
type RGB struct {
	R, G, B float64
}

// AddScaled returns c + o*k.
func (c RGB) AddScaled(o RGB, k float64) RGB {
	if k == 0 {
		return c
	}
	return RGB{c.R + o.R*k, c.G + o.G*k, c.B + o.B*k}
}

// RGBA clamps c into an opaque pixel.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: clampChannel(c.R), G: clampChannel(c.G), B: clampChannel(c.B), A: 255}
}

// Blend interpolates from a to b by t, clamped to [0, 1], in RGB space.
func Blend(a, b RGB, t float64) RGB {
	t = math.Max(0, math.Min(t, 1))
	return fromColorful(a.toColorful().BlendRgb(b.toColorful(), t))
}

func (c RGB) toColorful() colorful.Color {
	return colorful.Color{R: c.R / 255, G: c.G / 255, B: c.B / 255}
}

func fromColorful(c colorful.Color) RGB {
	return RGB{c.R * 255, c.G * 255, c.B * 255}
}

func clampChannel(v float64) uint8 {
	if v >= 255 {
		return 255
	}
	if !(v > 0) {
		return 0
	}
	return uint8(v + 0.5)
}

// ParseHex parses "#rrggbb" or "#rgb".
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{float64(r), float64(g), float64(b)}, nil
}

// Hex formats c as "#rrggbb".
func (c RGB) Hex() string {
	px := c.RGBA()
	return colorful.Color{R: float64(px.R) / 255, G: float64(px.G) / 255, B: float64(px.B) / 255}.Hex()
}

// Theme holds the colour of every signal the compositor blends.
type Theme struct {
	Background RGB
	// RuleA and RuleB alternate across live cells by the parity of x+tick.
	RuleA   RGB
	RuleB   RGB
	RuleOff RGB
	Grain   RGB
	Cascade RGB
	Decay   RGB
	Trail   RGB
	Spark   RGB
}

// DefaultTheme is the stock night palette.
func DefaultTheme() Theme {
	return Theme{
		Background: RGB{7, 9, 15},
		RuleA:      RGB{96, 196, 255},
		RuleB:      RGB{168, 120, 255},
		RuleOff:    RGB{22, 28, 44},
		Grain:      RGB{255, 178, 72},
		Cascade:    RGB{255, 96, 64},
		Decay:      RGB{64, 255, 180},
		Trail:      RGB{120, 80, 200},
		Spark:      RGB{255, 250, 230},
	}
}

func (t *Theme) slots() map[string]*RGB {
	return map[string]*RGB{
		"background": &t.Background,
		"rule_a":     &t.RuleA,
		"rule_b":     &t.RuleB,
		"rule_off":   &t.RuleOff,
		"grain":      &t.Grain,
		"cascade":    &t.Cascade,
		"decay":      &t.Decay,
		"trail":      &t.Trail,
		"spark":      &t.Spark,
	}
}

// ThemeKeys lists the colour names accepted by WithHex.
func ThemeKeys() []string {
	var t Theme
	keys := make([]string, 0, 9)
	for k := range t.slots() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HexMap formats every colour of t by its theme key.
func (t Theme) HexMap() map[string]string {
	out := make(map[string]string, 9)
	for name, slot := range t.slots() {
		out[name] = slot.Hex()
	}
	return out
}

// WithHex returns a copy of t with the named colours replaced.
func (t Theme) WithHex(overrides map[string]string) (Theme, error) {
	slots := t.slots()
	for name, hex := range overrides {
		slot, ok := slots[name]
		if !ok {
			return t, fmt.Errorf("unknown theme colour %q (want one of %s)", name, strings.Join(ThemeKeys(), ", "))
		}
		c, err := ParseHex(hex)
		if err != nil {
			return t, err
		}
		*slot = c
	}
	return t, nil
}
