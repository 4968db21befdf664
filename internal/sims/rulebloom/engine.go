package rulebloom

import (
	"slices"

	"rule-bloom/internal/core"
)

// StepResult bundles the state after a tick with that tick's statistics.
type StepResult struct {
	State *State
	Stats core.TickStats
}

// Engine applies the four rule kernels in a fixed order, once per tick.
type Engine struct {
	// orig is what the engine was built with; params may be retuned live.
	orig   Params
	params Params
	state  *State
}

// New normalizes p and builds an engine seeded from p.Seed.
func New(p Params) *Engine {
	p = NormalizeParams(p)
	return &Engine{orig: p, params: p, state: NewStateFromParams(p)}
}

// NewDefault builds an engine from DefaultParams.
func NewDefault() *Engine { return New(DefaultParams()) }

// Name returns the simulation identifier.
func (e *Engine) Name() string { return "rulebloom" }

// Params returns the normalized parameters currently driving the lane.
func (e *Engine) Params() Params { return e.params }

// OriginalParams returns the normalized parameters the engine was built with.
func (e *Engine) OriginalParams() Params { return e.orig }

// State exposes the live state. Callers must treat it as read-only.
func (e *Engine) State() *State { return e.state }

// Width returns the lane width.
func (e *Engine) Width() int { return e.params.Width }

// Step advances one tick: automaton, injection, toppling, decay.
func (e *Engine) Step() StepResult {
	s, p := e.state, e.params

	alive := ApplyRule(s, p)
	added := InjectGrains(s, p)
	topples, toppleProbes := Topple(s, p)
	decays, decayProbes := Decay(s, p)
	s.Tick++

	return StepResult{
		State: s,
		Stats: core.TickStats{
			Tick:         s.Tick,
			Alive:        alive,
			Topples:      topples,
			Decays:       decays,
			GrainsAdded:  added,
			ToppleProbes: toppleProbes,
			DecayProbes:  decayProbes,
		},
	}
}

// StepMany advances n ticks and returns the last tick's result only.
func (e *Engine) StepMany(n int) StepResult {
	if n < 1 {
		return StepResult{State: e.state, Stats: core.TickStats{Tick: e.state.Tick}}
	}
	var res StepResult
	for i := 0; i < n; i++ {
		res = e.Step()
	}
	return res
}

// Advance implements core.Stepper.
func (e *Engine) Advance() core.TickStats { return e.Step().Stats }

// Snapshot copies the lane so the caller may keep it while the engine runs on.
func (e *Engine) Snapshot() core.Snapshot {
	return core.Snapshot{
		Tick:   e.state.Tick,
		Width:  e.state.Width,
		Rule:   slices.Clone(e.state.Rule),
		Grains: slices.Clone(e.state.Grains),
	}
}

// SnapshotInto copies the lane into dst, reusing its slices when they are
// large enough. Drivers that snapshot every frame use it to avoid garbage.
func (e *Engine) SnapshotInto(dst *core.Snapshot) {
	s := e.state
	dst.Tick = s.Tick
	dst.Width = s.Width
	dst.Rule = append(dst.Rule[:0], s.Rule...)
	dst.Grains = append(dst.Grains[:0], s.Grains...)
}

// Reset discards the current state and any live retuning, and reseeds from
// the original params with seed. There is no way back to the discarded history.
func (e *Engine) Reset(seed int64) *State {
	e.params = e.orig
	e.state = NewState(e.orig, seed)
	return e.state
}

// Restart is Reset with the configured seed.
func (e *Engine) Restart() *State {
	return e.Reset(e.orig.Seed)
}

var _ core.Stepper = (*Engine)(nil)
