package core

import "time"

// FixedStep helps run simulation updates at a steady ticks-per-second rate.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	maxCatchUp  int

	now func() time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	fs := &FixedStep{maxCatchUp: 4, now: time.Now}
	fs.SetTPS(tps)
	fs.accumulator = fs.step
	return fs
}

// SetTPS changes the tick rate. It is safe to call from the main loop.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Due returns how many ticks are owed since the last call. A stalled host
// never owes more than a handful of ticks; the remainder is dropped so a
// long pause does not turn into a burst of catch-up work.
func (f *FixedStep) Due() int {
	f.accumulate()
	n := 0
	for f.accumulator >= f.step && n < f.maxCatchUp {
		f.accumulator -= f.step
		n++
	}
	if f.accumulator >= f.step {
		f.accumulator = 0
	}
	return n
}

func (f *FixedStep) accumulate() {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	f.accumulator += now.Sub(f.last)
	f.last = now
}
