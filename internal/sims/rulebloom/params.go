package rulebloom

import "math"

// Storage ceiling for a single sandpile cell.
const MaxGrains = math.MaxUint16

// ToppleLoss is the number of grains a toppling cell sheds.
const ToppleLoss = 4

// Params holds the tunables of one engine instance.
type Params struct {
	Width int
	Seed  int64

	InitialAliveChance float64
	InitialGrainMax    int

	ToppleThreshold   int
	MaxTopplesPerStep int

	DecayChecksPerStep int
	DecayChance        float64

	GrainsPerAliveCell   int
	GrainToRuleThreshold int
	GrainToRuleChance    float64
}

// Parameter bounds.
const (
	MinWidth = 8
	MaxWidth = 16384

	maxInitialGrain   = 1024
	minToppleThresh   = ToppleLoss
	maxToppleThresh   = 4096
	toppleBudgetScale = 64
	decayBudgetScale  = 16
	maxGrainsPerAlive = 64
)

// DefaultParams returns the balanced baseline configuration.
func DefaultParams() Params {
	return Params{
		Width:                256,
		Seed:                 1,
		InitialAliveChance:   0.08,
		InitialGrainMax:      2,
		ToppleThreshold:      4,
		MaxTopplesPerStep:    1024,
		DecayChecksPerStep:   96,
		DecayChance:          0.35,
		GrainsPerAliveCell:   1,
		GrainToRuleThreshold: 3,
		GrainToRuleChance:    0.06,
	}
}

// NormalizeParams clamps every field into its supported range. Out-of-range
// input is corrected rather than rejected; non-finite floats take the default.
func NormalizeParams(p Params) Params {
	d := DefaultParams()

	p.Width = clampInt(p.Width, MinWidth, MaxWidth)
	p.InitialAliveChance = clampUnit(p.InitialAliveChance, d.InitialAliveChance)
	p.InitialGrainMax = clampInt(p.InitialGrainMax, 0, maxInitialGrain)
	p.ToppleThreshold = clampInt(p.ToppleThreshold, minToppleThresh, maxToppleThresh)
	p.MaxTopplesPerStep = clampInt(p.MaxTopplesPerStep, 0, p.Width*toppleBudgetScale)
	p.DecayChecksPerStep = clampInt(p.DecayChecksPerStep, 0, p.Width*decayBudgetScale)
	p.DecayChance = clampUnit(p.DecayChance, d.DecayChance)
	p.GrainsPerAliveCell = clampInt(p.GrainsPerAliveCell, 0, maxGrainsPerAlive)
	p.GrainToRuleThreshold = clampInt(p.GrainToRuleThreshold, 1, MaxGrains)
	p.GrainToRuleChance = clampUnit(p.GrainToRuleChance, d.GrainToRuleChance)
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampUnit(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
