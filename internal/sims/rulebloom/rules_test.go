package rulebloom

import (
	"slices"
	"testing"
)

func exampleParams() Params {
	p := DefaultParams()
	p.Width = 8
	p.Seed = 1
	p.ToppleThreshold = 4
	p.MaxTopplesPerStep = 64
	p.DecayChecksPerStep = 0
	p.GrainsPerAliveCell = 0
	return NormalizeParams(p)
}

func TestWrapIndex(t *testing.T) {
	cases := []struct{ i, w, want int }{
		{-1, 8, 7},
		{0, 8, 0},
		{8, 8, 0},
		{9, 8, 1},
		{-9, 8, 7},
	}
	for _, c := range cases {
		if got := WrapIndex(c.i, c.w); got != c.want {
			t.Fatalf("WrapIndex(%d,%d)=%d want %d", c.i, c.w, got, c.want)
		}
	}
}

func TestToppleExampleScenario(t *testing.T) {
	p := exampleParams()
	s := NewState(p, p.Seed)
	copy(s.Grains, []uint16{5, 0, 0, 0, 0, 0, 0, 0})

	topples, _ := Topple(s, p)

	want := []uint16{1, 1, 0, 0, 0, 0, 0, 1}
	if !slices.Equal(s.Grains, want) {
		t.Fatalf("grains=%v want %v", s.Grains, want)
	}
	if topples != 1 {
		t.Fatalf("topples=%d want 1", topples)
	}
}

func TestToppleWrapsAtLastCell(t *testing.T) {
	p := exampleParams()
	s := NewState(p, p.Seed)
	for i := range s.Grains {
		s.Grains[i] = 0
	}
	s.Grains[7] = 4

	Topple(s, p)

	want := []uint16{1, 0, 0, 0, 0, 0, 1, 0}
	if !slices.Equal(s.Grains, want) {
		t.Fatalf("grains=%v want %v", s.Grains, want)
	}
}

func TestToppleResumesAtCursor(t *testing.T) {
	p := exampleParams()
	p.MaxTopplesPerStep = 1
	s := NewState(p, p.Seed)
	for i := range s.Grains {
		s.Grains[i] = 0
	}
	s.Grains[2] = 4
	s.Grains[5] = 4

	if n, _ := Topple(s, p); n != 1 {
		t.Fatalf("first tick toppled %d cells, want 1", n)
	}
	if s.ScanCursor != 3 {
		t.Fatalf("cursor=%d want 3 (just past the toppled cell)", s.ScanCursor)
	}
	if s.Grains[5] != 4 {
		t.Fatal("cell 5 should wait for the next tick")
	}
	if n, _ := Topple(s, p); n != 1 {
		t.Fatalf("second tick toppled %d cells, want 1", n)
	}
	if s.Grains[5] != 0 {
		t.Fatalf("cell 5 should topple on the second tick, has %d", s.Grains[5])
	}
}

func TestToppleProbeCeiling(t *testing.T) {
	p := exampleParams()
	s := NewState(p, p.Seed)
	for i := range s.Grains {
		s.Grains[i] = 0
	}
	topples, probes := Topple(s, p)
	if topples != 0 || probes != 2*p.Width {
		t.Fatalf("settled grid: topples=%d probes=%d want 0 and %d", topples, probes, 2*p.Width)
	}
}

func TestToppleSaturatesNeighbours(t *testing.T) {
	p := exampleParams()
	p.MaxTopplesPerStep = 1
	s := NewState(p, p.Seed)
	for i := range s.Grains {
		s.Grains[i] = MaxGrains
	}
	Topple(s, p)
	if s.Grains[0] != MaxGrains-ToppleLoss {
		t.Fatalf("toppled cell=%d want %d", s.Grains[0], MaxGrains-ToppleLoss)
	}
	if s.Grains[1] != MaxGrains || s.Grains[7] != MaxGrains {
		t.Fatalf("neighbours must clamp at %d, got %d and %d", MaxGrains, s.Grains[7], s.Grains[1])
	}
}

func TestApplyRuleThirty(t *testing.T) {
	p := exampleParams()
	s := NewState(p, p.Seed)
	copy(s.Rule, []uint8{0, 0, 0, 0, 1, 0, 0, 0})
	for i := range s.Grains {
		s.Grains[i] = 0
	}
	before := s.RNG

	alive := ApplyRule(s, p)

	want := []uint8{0, 0, 0, 1, 1, 1, 0, 0}
	if !slices.Equal(s.Rule, want) {
		t.Fatalf("rule=%v want %v", s.Rule, want)
	}
	if alive != 3 {
		t.Fatalf("alive=%d want 3", alive)
	}
	if s.RNG != before {
		t.Fatal("no cell was hot, the generator must not advance")
	}
}

func TestApplyRuleWrapsRing(t *testing.T) {
	p := exampleParams()
	s := NewState(p, p.Seed)
	copy(s.Rule, []uint8{1, 0, 0, 0, 0, 0, 0, 0})
	for i := range s.Grains {
		s.Grains[i] = 0
	}
	ApplyRule(s, p)
	want := []uint8{1, 1, 0, 0, 0, 0, 0, 1}
	if !slices.Equal(s.Rule, want) {
		t.Fatalf("rule=%v want %v", s.Rule, want)
	}
}

func TestApplyRuleHeatForcesCells(t *testing.T) {
	p := exampleParams()
	p.GrainToRuleThreshold = 2
	p.GrainToRuleChance = 1
	s := NewState(p, p.Seed)
	for i := range s.Rule {
		s.Rule[i] = 1
		s.Grains[i] = 2
	}
	// All-alive lane goes all-dead under Rule 30; heat overrides that.
	if alive := ApplyRule(s, p); alive != p.Width {
		t.Fatalf("alive=%d want %d", alive, p.Width)
	}
}

func TestInjectGrains(t *testing.T) {
	p := exampleParams()
	p.GrainsPerAliveCell = 3
	s := NewState(p, p.Seed)
	copy(s.Rule, []uint8{1, 0, 1, 0, 0, 0, 0, 0})
	copy(s.Grains, []uint16{0, 0, MaxGrains - 1, 0, 0, 0, 0, 0})

	added := InjectGrains(s, p)

	if added != 4 {
		t.Fatalf("added=%d want 4 (3 plus 1 before saturation)", added)
	}
	if s.Grains[0] != 3 || s.Grains[2] != MaxGrains {
		t.Fatalf("grains=%v", s.Grains)
	}

	p.GrainsPerAliveCell = 0
	if added := InjectGrains(s, p); added != 0 {
		t.Fatalf("zero rate added %d", added)
	}
}

func TestDecayExactProbeCount(t *testing.T) {
	p := exampleParams()
	p.DecayChecksPerStep = 50
	p.DecayChance = 1
	s := NewState(p, p.Seed)
	for i := range s.Grains {
		s.Grains[i] = 1000
	}

	decayed, probes := Decay(s, p)

	if probes != 50 || decayed != 50 {
		t.Fatalf("decayed=%d probes=%d want 50/50", decayed, probes)
	}
	if total := s.TotalGrains(); total != 8*1000-50 {
		t.Fatalf("total=%d want %d", total, 8*1000-50)
	}
}

func TestDecayNeverUnderflows(t *testing.T) {
	p := exampleParams()
	p.DecayChecksPerStep = 200
	p.DecayChance = 1
	s := NewState(p, p.Seed)
	for i := range s.Grains {
		s.Grains[i] = 1
	}
	decayed, _ := Decay(s, p)
	if decayed > 8 {
		t.Fatalf("decayed %d grains from a pile of 8", decayed)
	}
	for i, g := range s.Grains {
		if g > 1 {
			t.Fatalf("cell %d wrapped to %d", i, g)
		}
	}
}

func TestDecayWithoutChecksKeepsGenerator(t *testing.T) {
	p := exampleParams()
	s := NewState(p, p.Seed)
	before := s.RNG
	if d, probes := Decay(s, p); d != 0 || probes != 0 {
		t.Fatalf("decay with zero checks did work: %d/%d", d, probes)
	}
	if s.RNG != before {
		t.Fatal("generator advanced without draws")
	}
}
