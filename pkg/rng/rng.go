// Package rng implements the seeded xorshift32 generator that drives every
// stochastic rule. The generator has no hidden state: callers thread the
// returned state into the next draw, which is what makes a run replayable
// from its seed.
package rng

import "math"

// FallbackSeed replaces a zero seed. An all-zero xorshift state never changes.
const FallbackSeed uint32 = 0x6d2b79f5

const twoPow32 = 4294967296.0

// NormalizeSeed maps any seed onto a nonzero 32-bit state using its low 32 bits.
func NormalizeSeed(seed int64) uint32 {
	s := uint32(seed)
	if s == 0 {
		return FallbackSeed
	}
	return s
}

// NormalizeSeedFloat is NormalizeSeed for seeds decoded as floating point.
// Non-finite values fall back to FallbackSeed.
func NormalizeSeedFloat(seed float64) uint32 {
	if math.IsNaN(seed) || math.IsInf(seed, 0) {
		return FallbackSeed
	}
	t := math.Trunc(seed)
	if t > math.MaxInt64 || t < math.MinInt64 {
		t = math.Mod(t, twoPow32)
	}
	return NormalizeSeed(int64(t))
}

// Next performs one xorshift32 round and returns the new state together with
// a value in [0, 1).
func Next(state uint32) (uint32, float64) {
	x := state
	if x == 0 {
		x = FallbackSeed
	}
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	return x, float64(x) / twoPow32
}

// Intn draws an integer in [0, n). Values of n below 1 are treated as 1.
func Intn(state uint32, n int) (uint32, int) {
	if n < 1 {
		n = 1
	}
	next, v := Next(state)
	out := int(v * float64(n))
	if out >= n {
		out = n - 1
	}
	return next, out
}

// Bool draws a Bernoulli sample that is true with probability p.
func Bool(state uint32, p float64) (uint32, bool) {
	next, v := Next(state)
	return next, v < p
}
