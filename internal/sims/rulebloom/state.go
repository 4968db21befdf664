package rulebloom

import "rule-bloom/pkg/rng"

// State is one tick of simulation. It is owned by a single engine and mutated
// in place; Reset replaces it wholesale.
type State struct {
	Width int
	Tick  uint64
	RNG   uint32

	// Rule is the live automaton lane and NextRule its scratch buffer.
	Rule     []uint8
	NextRule []uint8
	Grains   []uint16

	// ScanCursor is where the bounded sandpile scan resumes next tick.
	ScanCursor int
}

// NewStateFromParams seeds a state from p.Seed.
func NewStateFromParams(p Params) *State {
	return NewState(p, p.Seed)
}

// NewState allocates the lane buffers and seeds initial conditions from seed.
// p is expected to be normalized.
func NewState(p Params, seed int64) *State {
	w := p.Width
	s := &State{
		Width:    w,
		RNG:      rng.NormalizeSeed(seed),
		Rule:     make([]uint8, w),
		NextRule: make([]uint8, w),
		Grains:   make([]uint16, w),
	}

	alive := 0
	for i := 0; i < w; i++ {
		var on bool
		s.RNG, on = rng.Bool(s.RNG, p.InitialAliveChance)
		if on {
			s.Rule[i] = 1
			alive++
		}
		if p.InitialGrainMax > 0 {
			var g int
			s.RNG, g = rng.Intn(s.RNG, p.InitialGrainMax+1)
			s.Grains[i] = uint16(g)
		}
	}
	// An all-dead lane is a Rule 30 fixed point.
	if alive == 0 && w > 0 {
		s.Rule[w/2] = 1
	}
	return s
}

// AliveCount returns the number of live automaton cells.
func (s *State) AliveCount() int {
	n := 0
	for _, c := range s.Rule {
		n += int(c & 1)
	}
	return n
}

// TotalGrains sums the sandpile.
func (s *State) TotalGrains() int {
	n := 0
	for _, g := range s.Grains {
		n += int(g)
	}
	return n
}

// HotCells counts cells at or above threshold, i.e. the topple backlog.
func (s *State) HotCells(threshold int) int {
	n := 0
	for _, g := range s.Grains {
		if int(g) >= threshold {
			n++
		}
	}
	return n
}
