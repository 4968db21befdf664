package rulebloom

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFor(p Params, n int) *Engine {
	e := New(p)
	for i := 0; i < n; i++ {
		e.Step()
	}
	return e
}

func TestStepDeterministic(t *testing.T) {
	p := DefaultParams()
	p.Seed = 4242
	a := runFor(p, 500)
	b := runFor(p, 500)

	assert.Equal(t, a.State().Rule, b.State().Rule)
	assert.Equal(t, a.State().Grains, b.State().Grains)
	assert.Equal(t, a.Checksum(), b.Checksum())
}

func TestResetEquivalence(t *testing.T) {
	p := DefaultParams()
	p.Seed = 1
	e := runFor(p, 37)

	state := e.Reset(99)
	require.Same(t, state, e.State())
	assert.Zero(t, state.Tick)
	for i := 0; i < 200; i++ {
		e.Step()
	}

	p.Seed = 99
	fresh := runFor(p, 200)

	assert.Equal(t, fresh.State().Rule, e.State().Rule)
	assert.Equal(t, fresh.State().Grains, e.State().Grains)
	assert.Equal(t, fresh.Checksum(), e.Checksum())
}

func TestRestartUsesConfiguredSeed(t *testing.T) {
	p := DefaultParams()
	p.Seed = 12
	e := New(p)
	initial := e.Checksum()
	e.StepMany(10)
	e.Reset(77)
	e.Restart()
	assert.Equal(t, initial, e.Checksum())
}

func TestStepAdvancesTick(t *testing.T) {
	e := NewDefault()
	res := e.Step()
	assert.Equal(t, uint64(1), res.Stats.Tick)
	assert.Equal(t, uint64(1), res.State.Tick)
	assert.Same(t, e.State(), res.State)
	assert.Equal(t, res.State.AliveCount(), res.Stats.Alive)
}

func TestStepManyReturnsFinalTick(t *testing.T) {
	p := DefaultParams()
	a := New(p)
	var last StepResult
	for i := 0; i < 25; i++ {
		last = a.Step()
	}

	b := New(p)
	got := b.StepMany(25)

	assert.Equal(t, last.Stats, got.Stats)
	assert.Equal(t, uint64(25), got.Stats.Tick)
}

func TestStepManyNonPositive(t *testing.T) {
	e := NewDefault()
	e.StepMany(3)
	before := e.Checksum()
	res := e.StepMany(0)
	assert.Equal(t, uint64(3), res.Stats.Tick)
	assert.Zero(t, res.Stats.Alive)
	assert.Equal(t, before, e.Checksum())
}

func TestSnapshotIsolation(t *testing.T) {
	p := DefaultParams()
	p.Seed = 31
	control := New(p)
	e := New(p)

	snap := e.Snapshot()
	for i := range snap.Rule {
		snap.Rule[i] = 1
		snap.Grains[i] = MaxGrains
	}
	for i := 0; i < 50; i++ {
		e.Step()
		control.Step()
	}
	assert.Equal(t, control.Checksum(), e.Checksum())

	later := e.Snapshot()
	e.Step()
	assert.Equal(t, uint64(50), later.Tick)
	assert.NotSame(t, &later.Rule[0], &e.State().Rule[0])
}

func TestSnapshotIntoReusesBuffers(t *testing.T) {
	e := NewDefault()
	snap := e.Snapshot()
	ruleBuf := &snap.Rule[0]
	e.Step()
	e.SnapshotInto(&snap)
	assert.Same(t, ruleBuf, &snap.Rule[0])
	assert.Equal(t, e.State().Rule, snap.Rule)
	assert.Equal(t, uint64(1), snap.Tick)
}

func TestBoundedWorkOnAdversarialGrid(t *testing.T) {
	p := DefaultParams()
	p.Width = 128
	p.MaxTopplesPerStep = 40
	p.DecayChecksPerStep = 17
	e := New(p)
	for i := range e.State().Grains {
		e.State().Grains[i] = 60000
	}

	for i := 0; i < 20; i++ {
		st := e.Step().Stats
		require.LessOrEqual(t, st.Topples, 40)
		require.LessOrEqual(t, st.ToppleProbes, 2*p.Width)
		require.Equal(t, 17, st.DecayProbes)
		require.LessOrEqual(t, st.Decays, st.DecayProbes)
	}
}

func TestBoundedWorkUncappedTopples(t *testing.T) {
	p := DefaultParams()
	p.Width = 64
	p.MaxTopplesPerStep = 64 * 64
	e := New(p)
	for i := range e.State().Grains {
		e.State().Grains[i] = MaxGrains
	}
	st := e.Step().Stats
	assert.LessOrEqual(t, st.Topples, 2*p.Width, "the probe ceiling bounds topples too")
}

func TestGrainBoundsAcrossParams(t *testing.T) {
	cases := []Params{
		{Width: 8, Seed: 1, InitialAliveChance: 1, InitialGrainMax: 1024, ToppleThreshold: 4096, GrainsPerAliveCell: 64},
		{Width: 8, Seed: 2, InitialAliveChance: 1, GrainsPerAliveCell: 64, ToppleThreshold: 4, MaxTopplesPerStep: 1},
		{Width: 100, Seed: 3, InitialAliveChance: 0.5, InitialGrainMax: 10, DecayChecksPerStep: 1600, DecayChance: 1},
	}
	for i, p := range cases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			e := New(p)
			for tick := 0; tick < 1000; tick++ {
				e.Step()
				assertLaneShape(t, e)
			}
		})
	}
}

func assertLaneShape(t *testing.T, e *Engine) {
	t.Helper()
	s := e.State()
	require.Len(t, s.Rule, s.Width)
	require.Len(t, s.NextRule, s.Width)
	require.Len(t, s.Grains, s.Width)
	for _, c := range s.Rule {
		require.LessOrEqual(t, c, uint8(1))
	}
}

func FuzzGrainBounds(f *testing.F) {
	f.Add(int64(1), 8, 0.5, 4, 10, 3, 0.3, 2, 3, 0.1, uint8(40))
	f.Add(int64(0), 16384, 1.0, 1024, 1<<30, 1<<30, 2.0, 64, 0, -1.0, uint8(3))
	f.Fuzz(func(t *testing.T, seed int64, width int, alive float64, grainMax, maxTopples, decayChecks int,
		decayChance float64, perAlive, ruleThreshold int, ruleChance float64, steps uint8) {
		p := Params{
			Width:                width,
			Seed:                 seed,
			InitialAliveChance:   alive,
			InitialGrainMax:      grainMax,
			ToppleThreshold:      4,
			MaxTopplesPerStep:    maxTopples,
			DecayChecksPerStep:   decayChecks,
			DecayChance:          decayChance,
			GrainsPerAliveCell:   perAlive,
			GrainToRuleThreshold: ruleThreshold,
			GrainToRuleChance:    ruleChance,
		}
		e := New(p)
		n := e.Params()
		for i := 0; i < int(steps); i++ {
			st := e.Step().Stats
			if st.Topples > n.MaxTopplesPerStep {
				t.Fatalf("topples %d over cap %d", st.Topples, n.MaxTopplesPerStep)
			}
			if st.DecayProbes > n.DecayChecksPerStep {
				t.Fatalf("decay probes %d over cap %d", st.DecayProbes, n.DecayChecksPerStep)
			}
			if len(e.State().Grains) != n.Width {
				t.Fatalf("grain lane resized to %d", len(e.State().Grains))
			}
		}
	})
}

func TestCoupledTraceGolden(t *testing.T) {
	p := Params{
		Width:                16,
		Seed:                 7,
		InitialAliveChance:   0.3,
		InitialGrainMax:      3,
		ToppleThreshold:      4,
		MaxTopplesPerStep:    6,
		DecayChecksPerStep:   5,
		DecayChance:          0.5,
		GrainsPerAliveCell:   1,
		GrainToRuleThreshold: 3,
		GrainToRuleChance:    0.25,
	}
	e := New(p)

	var b strings.Builder
	s := e.State()
	writeTraceLine(&b, s, s.AliveCount(), 0, 0, 0)
	for i := 0; i < 12; i++ {
		st := e.Step().Stats
		writeTraceLine(&b, e.State(), st.Alive, st.Topples, st.Decays, st.GrainsAdded)
	}

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, "coupled_trace", []byte(b.String()))
}

func writeTraceLine(b *strings.Builder, s *State, alive, topples, decays, added int) {
	rule := make([]byte, len(s.Rule))
	for i, c := range s.Rule {
		rule[i] = '0' + c
	}
	grains := make([]string, len(s.Grains))
	for i, g := range s.Grains {
		grains[i] = fmt.Sprint(g)
	}
	fmt.Fprintf(b, "tick=%d alive=%d topples=%d decays=%d added=%d cursor=%d rule=%s grains=%s\n",
		s.Tick, alive, topples, decays, added, s.ScanCursor, rule, strings.Join(grains, ","))
}
