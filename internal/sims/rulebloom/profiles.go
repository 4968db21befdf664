package rulebloom

import "strings"

// Regime names a tuned parameter bundle.
type Regime string

// Available regimes.
const (
	RegimeCalm     Regime = "calm"
	RegimeBalanced Regime = "balanced"
	RegimeVolatile Regime = "volatile"
)

// DefaultWidth is used when a profile does not specify one.
const DefaultWidth = 256

// ProfileOptions selects and tailors a regime.
type ProfileOptions struct {
	Seed          int64
	Width         int
	ReducedMotion bool
	Regime        Regime
}

type regimeTuning struct {
	aliveChance     float64
	grainMax        int
	topplesPerCell  float64
	decayPerCell    float64
	decayChance     float64
	grainsPerAlive  int
	ruleThreshold   int
	ruleChance      float64
	toppleThreshold int
}

var regimes = map[Regime]regimeTuning{
	RegimeCalm: {
		aliveChance:     0.04,
		grainMax:        1,
		topplesPerCell:  2,
		decayPerCell:    0.5,
		decayChance:     0.45,
		grainsPerAlive:  1,
		ruleThreshold:   3,
		ruleChance:      0.02,
		toppleThreshold: 4,
	},
	RegimeBalanced: {
		aliveChance:     0.08,
		grainMax:        2,
		topplesPerCell:  4,
		decayPerCell:    0.375,
		decayChance:     0.35,
		grainsPerAlive:  1,
		ruleThreshold:   3,
		ruleChance:      0.06,
		toppleThreshold: 4,
	},
	RegimeVolatile: {
		aliveChance:     0.16,
		grainMax:        3,
		topplesPerCell:  8,
		decayPerCell:    0.25,
		decayChance:     0.25,
		grainsPerAlive:  2,
		ruleThreshold:   2,
		ruleChance:      0.14,
		toppleThreshold: 4,
	},
}

// Regimes lists the regimes from calmest to most volatile.
func Regimes() []Regime {
	return []Regime{RegimeCalm, RegimeBalanced, RegimeVolatile}
}

// ParseRegime matches a regime name case-insensitively.
func ParseRegime(name string) (Regime, bool) {
	r := Regime(strings.ToLower(strings.TrimSpace(name)))
	_, ok := regimes[r]
	return r, ok
}

// BuildParams expands a regime into normalized params. Unknown regimes fall
// back to balanced and a zero width to DefaultWidth. Reduced motion derates
// the cascade budget and the coupling so the picture changes more slowly.
func BuildParams(opts ProfileOptions) Params {
	t, ok := regimes[opts.Regime]
	if !ok {
		t = regimes[RegimeBalanced]
	}
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	width = clampInt(width, MinWidth, MaxWidth)

	p := Params{
		Width:                width,
		Seed:                 opts.Seed,
		InitialAliveChance:   t.aliveChance,
		InitialGrainMax:      t.grainMax,
		ToppleThreshold:      t.toppleThreshold,
		MaxTopplesPerStep:    int(float64(width) * t.topplesPerCell),
		DecayChecksPerStep:   int(float64(width) * t.decayPerCell),
		DecayChance:          t.decayChance,
		GrainsPerAliveCell:   t.grainsPerAlive,
		GrainToRuleThreshold: t.ruleThreshold,
		GrainToRuleChance:    t.ruleChance,
	}
	if opts.ReducedMotion {
		p.MaxTopplesPerStep /= 2
		p.GrainToRuleChance *= 0.5
		p.InitialAliveChance *= 0.75
		p.DecayChecksPerStep = p.DecayChecksPerStep * 3 / 4
	}
	return NormalizeParams(p)
}
