package core

import "slices"

// Snapshot is a point-in-time copy of a simulation lane. The slices are never
// shared with the engine that produced them.
type Snapshot struct {
	Tick   uint64
	Width  int
	Rule   []uint8
	Grains []uint16
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Tick:   s.Tick,
		Width:  s.Width,
		Rule:   slices.Clone(s.Rule),
		Grains: slices.Clone(s.Grains),
	}
}

// TickStats reports what a single step did. The values feed HUDs and
// telemetry; nothing reads them back into the simulation.
type TickStats struct {
	Tick        uint64
	Alive       int
	Topples     int
	Decays      int
	GrainsAdded int

	// ToppleProbes counts cells examined by the sandpile scan.
	ToppleProbes int
	// DecayProbes counts cells sampled by the decay rule.
	DecayProbes int
}

// Activity is the number of grain events (topples plus decays) in the tick.
func (t TickStats) Activity() int { return t.Topples + t.Decays }

// Stepper is the contract drivers use to advance a simulation.
type Stepper interface {
	Name() string
	Advance() TickStats
	Snapshot() Snapshot
}
