// Package term shows a running engine in the terminal using half-block cells.
package term

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"rule-bloom/internal/core"
	"rule-bloom/internal/render"
	"rule-bloom/internal/sims/rulebloom"
)

const (
	statusRows  = 1
	frameRate   = 30
	minTPS      = 1
	maxTPS      = 240
	tpsStepSize = 10
)

// Viewer owns the screen, the engine and the renderer for one session.
type Viewer struct {
	screen   tcell.Screen
	engine   *rulebloom.Engine
	renderer *render.Renderer
	step     *core.FixedStep
	logger   *slog.Logger

	regime string
	tps    int
	paused bool

	snap  core.Snapshot
	stats core.TickStats

	cols, rows int
}

// Options configure a Viewer.
type Options struct {
	Regime string
	TPS    int
	Render render.Options
	Logger *slog.Logger
}

// NewViewer wires e to an initialised screen.
func NewViewer(screen tcell.Screen, e *rulebloom.Engine, opts Options) (*Viewer, error) {
	if opts.TPS <= 0 {
		opts.TPS = 60
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r, err := render.New(&screenSurface{screen: screen, top: statusRows}, opts.Render)
	if err != nil {
		return nil, err
	}
	v := &Viewer{
		screen:   screen,
		engine:   e,
		renderer: r,
		step:     core.NewFixedStep(opts.TPS),
		logger:   opts.Logger,
		regime:   opts.Regime,
		tps:      opts.TPS,
		snap:     e.Snapshot(),
		stats:    core.TickStats{Tick: e.State().Tick, Alive: e.State().AliveCount()},
	}
	v.resize()
	return v, nil
}

func (v *Viewer) resize() {
	cols, rows := v.screen.Size()
	if cols == v.cols && rows == v.rows {
		return
	}
	v.cols, v.rows = cols, rows
	v.renderer.Resize(render.ResizeRequest{
		CSSWidth:  float64(cols),
		CSSHeight: float64(max(rows-statusRows, 1) * 2),
		DPR:       1,
		Scale:     1,
	})
	v.screen.Clear()
}

// HandleEvent applies one terminal event and reports whether to keep going.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
		v.resize()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused
			case 'n', '.':
				v.advance(1)
			case 'r':
				v.engine.Restart()
				v.logger.Debug("Restarted", slog.Int64("seed", v.engine.Params().Seed))
			case '+', '=':
				v.setTPS(v.tps + tpsStepSize)
			case '-':
				v.setTPS(v.tps - tpsStepSize)
			}
		}
	}
	return true
}

func (v *Viewer) setTPS(tps int) {
	v.tps = min(max(tps, minTPS), maxTPS)
	v.step.SetTPS(v.tps)
}

func (v *Viewer) advance(n int) {
	for i := 0; i < n; i++ {
		v.stats = v.engine.Step().Stats
		v.engine.SnapshotInto(&v.snap)
		v.renderer.Render(v.snap, &v.stats)
	}
}

// Update runs the ticks owed by the pacer.
func (v *Viewer) Update() {
	if v.paused {
		v.step.Due()
		return
	}
	v.advance(v.step.Due())
}

// Draw composes the status line and shows the screen.
func (v *Viewer) Draw() {
	v.drawStatus()
	v.screen.Show()
}

func (v *Viewer) drawStatus() {
	state := "running"
	if v.paused {
		state = "paused"
	}
	line := fmt.Sprintf(" %s  tick %d  alive %d  topples %d  decays %d  %d tps  %s  [space] pause [n] step [r] restart [q] quit",
		v.regime, v.stats.Tick, v.stats.Alive, v.stats.Topples, v.stats.Decays, v.tps, state)
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	x := 0
	for _, r := range line {
		if x >= v.cols {
			break
		}
		v.screen.SetContent(x, 0, r, nil, style)
		x++
	}
	for ; x < v.cols; x++ {
		v.screen.SetContent(x, 0, ' ', nil, style)
	}
}

// Run loops until the user quits or ctx is done. The caller owns Init and
// Fini of the screen.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go pumpEvents(v.screen.PollEvent, events, done)

	v.renderer.Render(v.snap, nil)
	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok || !v.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			v.Update()
			v.Draw()
		}
	}
}

// pumpEvents forwards polled events until poll returns nil or done closes.
// events is closed on return.
func pumpEvents(poll func() tcell.Event, events chan<- tcell.Event, done <-chan struct{}) {
	defer close(events)
	for {
		ev := poll()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}
