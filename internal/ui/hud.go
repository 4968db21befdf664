//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"rule-bloom/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// Source is what the HUD reads parameters from.
type Source interface {
	Name() string
	Parameters() core.ParameterSnapshot
}

// HUD renders the status and control panel to the right of the history view.
type HUD struct {
	src        Source
	width      int
	panel      *ebiten.Image
	lastHeight int
	snapshot   core.ParameterSnapshot
	status     []string

	controls     []hudControlState
	intSetter    core.IntParameterSetter
	floatSetter  core.FloatParameterSetter
	panelOffsetX int
	title        string

	pixel *ebiten.Image
}

// NewHUD constructs a HUD for src with the given panel width.
func NewHUD(src Source, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{src: src, width: width, title: buildTitle(src)}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	if provider, ok := src.(core.ParameterControlsProvider); ok {
		for _, ctrl := range provider.ParameterControls() {
			h.controls = append(h.controls, hudControlState{control: ctrl, value: "--"})
		}
	}
	h.intSetter, _ = src.(core.IntParameterSetter)
	h.floatSetter, _ = src.(core.FloatParameterSetter)
	return h
}

// Width reports the panel width.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// SetStatus replaces the status lines drawn under the title.
func (h *HUD) SetStatus(lines ...string) {
	if h == nil {
		return
	}
	h.status = append(h.status[:0], lines...)
}

// Update refreshes the parameter snapshot and handles clicks.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	h.snapshot = h.src.Parameters()
	h.layoutControls()
	h.refreshControlValues()
	h.handleInput()
}

// Draw paints the panel at offsetX with the given height.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 12, G: 14, B: 22, A: 255})
	h.drawStatus()
	h.drawControls()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func buildTitle(src Source) string {
	if src == nil || src.Name() == "" {
		return "Controls"
	}
	name := src.Name()
	return strings.ToUpper(name[:1]) + name[1:]
}

func (h *HUD) refreshControlValues() {
	for i := range h.controls {
		state := &h.controls[i]
		state.hasValue = false
		state.value = "--"
		param, ok := h.snapshot.Lookup(state.control.Key)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseFloat(param.Value, 64)
		if err != nil {
			continue
		}
		state.current = parsed
		state.hasValue = true
		if state.control.Type == core.ParamTypeInt {
			state.value = strconv.Itoa(int(parsed))
		} else {
			state.value = formatFloat(state.control, parsed)
		}
	}
}

func (h *HUD) handleInput() {
	if len(h.controls) == 0 || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i := range h.controls {
		state := &h.controls[i]
		if !state.hasValue {
			continue
		}
		if pointInRect(px, my, state.minusRect) {
			h.apply(state, -1)
			return
		}
		if pointInRect(px, my, state.plusRect) {
			h.apply(state, 1)
			return
		}
	}
}

// target computes the next value for a button press, reporting false when
// the control is pinned at its bound or has no setter.
func (h *HUD) target(state *hudControlState, direction int) (float64, bool) {
	ctrl := state.control
	step := ctrl.Step
	switch ctrl.Type {
	case core.ParamTypeInt:
		if h.intSetter == nil {
			return 0, false
		}
		step = math.Max(math.Round(step), 1)
	case core.ParamTypeFloat:
		if h.floatSetter == nil {
			return 0, false
		}
		if step <= 0 {
			step = 0.05
		}
	default:
		return 0, false
	}
	next := state.current + float64(direction)*step
	if ctrl.HasMin && next < ctrl.Min {
		next = ctrl.Min
	}
	if ctrl.HasMax && next > ctrl.Max {
		next = ctrl.Max
	}
	if math.Abs(next-state.current) < 1e-9 {
		return 0, false
	}
	return next, true
}

func (h *HUD) apply(state *hudControlState, direction int) {
	next, ok := h.target(state, direction)
	if !ok {
		return
	}
	if state.control.Type == core.ParamTypeInt {
		if h.intSetter.SetIntParameter(state.control.Key, int(next)) {
			state.current = next
			state.value = strconv.Itoa(int(next))
		}
		return
	}
	if h.floatSetter.SetFloatParameter(state.control.Key, next) {
		state.current = next
		state.value = formatFloat(state.control, next)
	}
}

func (h *HUD) drawStatus() {
	face := basicfont.Face7x13
	y := panelPadding + headerBaseline
	text.Draw(h.panel, h.title, face, panelPadding, y, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	for _, line := range h.status {
		y += statusSpacing
		text.Draw(h.panel, line, face, panelPadding, y, color.RGBA{R: 150, G: 190, B: 230, A: 255})
	}
}

func (h *HUD) controlsTop() int {
	return panelPadding + headerBaseline + statusSpacing*len(h.status) + 18
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	if len(h.controls) == 0 {
		text.Draw(h.panel, "No adjustable parameters", face, panelPadding, h.controlsTop()+labelBaseline, color.RGBA{R: 160, G: 160, B: 170, A: 255})
		return
	}
	for i := range h.controls {
		state := &h.controls[i]
		labelY := state.top + labelBaseline
		text.Draw(h.panel, state.control.Label, face, panelPadding, labelY, color.RGBA{R: 220, G: 220, B: 230, A: 255})

		valueColor := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		if !state.hasValue {
			valueColor = color.RGBA{R: 160, G: 160, B: 170, A: 255}
		}
		valueWidth := text.BoundString(face, state.value).Dx()
		text.Draw(h.panel, state.value, face, state.minusRect.Min.X-buttonGap-valueWidth, labelY, valueColor)

		_, minusOK := h.target(state, -1)
		_, plusOK := h.target(state, 1)
		h.drawButton(state.minusRect, "-", state.hasValue && minusOK)
		h.drawButton(state.plusRect, "+", state.hasValue && plusOK)
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	if len(h.controls) == 0 || h.width <= 0 {
		return
	}
	base := h.controlsTop()
	for i := range h.controls {
		top := base + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plusRect := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minusRect := image.Rect(plusRect.Min.X-buttonGap-buttonSize, buttonY, plusRect.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = top
		h.controls[i].minusRect = minusRect
		h.controls[i].plusRect = plusRect
	}
}

func formatFloat(ctrl core.ParameterControl, value float64) string {
	precision := 1
	switch {
	case ctrl.Step < 0.001:
		precision = 4
	case ctrl.Step < 0.01:
		precision = 3
	case ctrl.Step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

// StatusLines formats tick statistics for SetStatus.
func StatusLines(regime string, stats core.TickStats, scale float64, paused bool) []string {
	state := "running"
	if paused {
		state = "paused"
	}
	return []string{
		fmt.Sprintf("%s  %s", regime, state),
		fmt.Sprintf("tick    %d", stats.Tick),
		fmt.Sprintf("alive   %d", stats.Alive),
		fmt.Sprintf("topples %d", stats.Topples),
		fmt.Sprintf("decays  %d", stats.Decays),
		fmt.Sprintf("scale   %.2f", scale),
	}
}

type hudControlState struct {
	control  core.ParameterControl
	value    string
	current  float64
	hasValue bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	statusSpacing  = 16
)
