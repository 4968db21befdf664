//go:build !ebiten

package app

import (
	"errors"

	"rule-bloom/internal/render"
	"rule-bloom/internal/sims/rulebloom"
)

// ErrNoGUI reports a binary built without the ebiten tag.
var ErrNoGUI = errors.New("gui requires building with the 'ebiten' tag")

// Options mirror the GUI build.
type Options struct {
	Regime   string
	TPS      int
	Render   render.Options
	HUDWidth int
}

// Game is a placeholder that satisfies the API expected by the GUI build.
type Game struct{}

// New reports that the GUI is unavailable.
func New(*rulebloom.Engine, Options) (*Game, error) { return nil, ErrNoGUI }

// Reset is a no-op placeholder.
func (g *Game) Reset(int64) {}

// Update always reports that the GUI build tag is missing.
func (g *Game) Update() error { return ErrNoGUI }

// Draw is a no-op placeholder to satisfy the interface shape.
func (g *Game) Draw(any) {}

// Layout returns zeros in the headless build.
func (g *Game) Layout(int, int) (int, int) { return 0, 0 }

// Run reports that the GUI is unavailable.
func Run(*Game, string) error { return ErrNoGUI }
