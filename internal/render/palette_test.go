package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, RGB{255, 128, 0}, c)
	assert.Equal(t, "#ff8000", c.Hex())

	_, err = ParseHex("orange")
	assert.Error(t, err)
}

func TestRGBAClamps(t *testing.T) {
	px := RGB{-20, 127.6, 900}.RGBA()
	assert.Equal(t, uint8(0), px.R)
	assert.Equal(t, uint8(128), px.G)
	assert.Equal(t, uint8(255), px.B)
	assert.Equal(t, uint8(255), px.A)
}

func TestBlend(t *testing.T) {
	a, b := RGB{0, 0, 0}, RGB{200, 100, 50}
	assert.Equal(t, a.RGBA(), Blend(a, b, -1).RGBA())
	assert.Equal(t, b.RGBA(), Blend(a, b, 2).RGBA())
	mid := Blend(a, b, 0.5)
	assert.InDelta(t, 100, mid.R, 1e-9)
	assert.InDelta(t, 50, mid.G, 1e-9)
	assert.InDelta(t, 25, mid.B, 1e-9)
}

func TestHistoryBlendMovesTowardsColour(t *testing.T) {
	hs := newHistory(4, 2, RGB{}.RGBA())
	hs.blend(2, 1, RGB{200, 100, 50}, 0.5)
	assert.Equal(t, []uint8{100, 50, 25, 255}, hs.img.Pix[hs.img.PixOffset(2, 1):hs.img.PixOffset(2, 1)+4])
	assert.Equal(t, []uint8{0, 0, 0, 255}, hs.img.Pix[hs.img.PixOffset(1, 1):hs.img.PixOffset(1, 1)+4])
}

func TestThemeHexMap(t *testing.T) {
	m := DefaultTheme().HexMap()
	assert.Len(t, m, len(ThemeKeys()))
	assert.Equal(t, "#07090f", m["background"])
	assert.Equal(t, "#60c4ff", m["rule_a"])

	back, err := Theme{}.WithHex(m)
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme(), back)
}

func TestThemeWithHex(t *testing.T) {
	base := DefaultTheme()
	th, err := base.WithHex(map[string]string{"grain": "#010203", "spark": "#fff"})
	require.NoError(t, err)
	assert.Equal(t, RGB{1, 2, 3}, th.Grain)
	assert.Equal(t, RGB{255, 255, 255}, th.Spark)
	assert.Equal(t, base.RuleA, th.RuleA)
	assert.NotEqual(t, base.Grain, th.Grain)

	_, err = base.WithHex(map[string]string{"lava": "#000000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule_off")
	_, err = base.WithHex(map[string]string{"grain": "nope"})
	assert.Error(t, err)

	assert.Contains(t, ThemeKeys(), "rule_off")
	assert.Len(t, ThemeKeys(), 9)
}
