package core

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestFixedStepDue(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	fs := NewFixedStep(10)
	fs.now = clock.now
	fs.accumulator = 0

	if got := fs.Due(); got != 0 {
		t.Fatalf("first call owes %d ticks, want 0", got)
	}
	clock.t = clock.t.Add(250 * time.Millisecond)
	if got := fs.Due(); got != 2 {
		t.Fatalf("after 250ms at 10 TPS owed %d ticks, want 2", got)
	}
	clock.t = clock.t.Add(50 * time.Millisecond)
	if got := fs.Due(); got != 1 {
		t.Fatalf("leftover 50ms plus 50ms should owe 1 tick, got %d", got)
	}
	clock.t = clock.t.Add(10 * time.Second)
	if got := fs.Due(); got != fs.maxCatchUp {
		t.Fatalf("long stall owed %d ticks, want cap %d", got, fs.maxCatchUp)
	}
	if fs.accumulator != 0 {
		t.Fatalf("stall remainder should be dropped, accumulator=%v", fs.accumulator)
	}
}

func TestFixedStepDefaultsAndPrimes(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	fs := NewFixedStep(0)
	fs.now = clock.now
	if fs.step != time.Second/60 {
		t.Fatalf("non-positive TPS should default to 60, step=%v", fs.step)
	}
	if got := fs.Due(); got != 1 {
		t.Fatalf("a fresh controller should owe one tick, got %d", got)
	}
	if got := fs.Due(); got != 0 {
		t.Fatalf("no time elapsed, owed %d ticks", got)
	}
}

func TestQualityStepsDownAndRecovers(t *testing.T) {
	q := NewQuality(16 * time.Millisecond)
	for i := 0; i < 40; i++ {
		q.Observe(40 * time.Millisecond)
	}
	if q.Scale() != MinRenderScale {
		t.Fatalf("sustained slow frames should reach the floor, scale=%f", q.Scale())
	}
	for i := 0; i < 400; i++ {
		q.Observe(2 * time.Millisecond)
	}
	if q.Scale() != MaxRenderScale {
		t.Fatalf("sustained fast frames should recover full scale, scale=%f", q.Scale())
	}
}

func TestQualityHoldsInsideBand(t *testing.T) {
	q := NewQuality(16 * time.Millisecond)
	q.scale = 0.8
	for i := 0; i < 20; i++ {
		q.Observe(15 * time.Millisecond)
	}
	if q.Scale() != 0.8 {
		t.Fatalf("frames near budget should not move the scale, got %f", q.Scale())
	}
}

func TestClampScale(t *testing.T) {
	cases := map[float64]float64{0: 1, -1: 1, 0.2: 0.55, 0.7: 0.7, 3: 1}
	for in, want := range cases {
		if got := ClampScale(in); got != want {
			t.Fatalf("ClampScale(%v)=%v want %v", in, got, want)
		}
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	s := Snapshot{Tick: 3, Width: 2, Rule: []uint8{1, 0}, Grains: []uint16{5, 6}}
	c := s.Clone()
	c.Rule[0] = 0
	c.Grains[1] = 0
	if s.Rule[0] != 1 || s.Grains[1] != 6 {
		t.Fatal("clone shares backing arrays with the original")
	}
}

func TestParameterSnapshotLookup(t *testing.T) {
	snap := ParameterSnapshot{Groups: []ParameterGroup{{Name: "a", Params: []Parameter{{Key: "w", Value: "8"}}}}}
	p, ok := snap.Lookup("w")
	if !ok || p.Value != "8" {
		t.Fatalf("lookup failed: %+v %v", p, ok)
	}
	if _, ok := snap.Lookup("missing"); ok {
		t.Fatal("unexpected hit for missing key")
	}
}
