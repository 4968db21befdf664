package rulebloom

import "rule-bloom/pkg/rng"

// WrapIndex maps i onto the ring [0, w).
func WrapIndex(i, w int) int {
	i %= w
	if i < 0 {
		i += w
	}
	return i
}

func addGrains(g uint16, n int) uint16 {
	v := int(g) + n
	if v > MaxGrains {
		return MaxGrains
	}
	if v < 0 {
		return 0
	}
	return uint16(v)
}

// ApplyRule computes the Rule 30 successor of every cell from the current
// lane into the scratch buffer, lets sandpile heat force cells alive, then
// swaps the buffers. It returns the number of live cells afterwards.
func ApplyRule(s *State, p Params) int {
	w := s.Width
	cur, nxt := s.Rule, s.NextRule
	alive := 0
	for i := 0; i < w; i++ {
		left := cur[WrapIndex(i-1, w)]
		center := cur[i]
		right := cur[WrapIndex(i+1, w)]
		bit := (left ^ (center | right)) & 1
		if int(s.Grains[i]) >= p.GrainToRuleThreshold {
			var force bool
			s.RNG, force = rng.Bool(s.RNG, p.GrainToRuleChance)
			if force {
				bit = 1
			}
		}
		nxt[i] = bit
		alive += int(bit)
	}
	s.Rule, s.NextRule = nxt, cur
	return alive
}

// InjectGrains drops GrainsPerAliveCell grains on every live cell and returns
// how many grains were actually added after saturation.
func InjectGrains(s *State, p Params) int {
	if p.GrainsPerAliveCell <= 0 {
		return 0
	}
	added := 0
	for i, c := range s.Rule {
		if c == 0 {
			continue
		}
		before := s.Grains[i]
		after := addGrains(before, p.GrainsPerAliveCell)
		s.Grains[i] = after
		added += int(after - before)
	}
	return added
}

// Topple resumes the sandpile scan at the cursor and topples cells at or above
// the threshold. Work is capped twice: by MaxTopplesPerStep topples and by
// 2*Width probed cells. Neighbours pushed over the threshold are left for a
// later visit, possibly in a later tick.
func Topple(s *State, p Params) (topples, probes int) {
	w := s.Width
	limit := p.MaxTopplesPerStep
	if limit <= 0 || w == 0 {
		return 0, 0
	}
	maxProbes := 2 * w
	cursor := WrapIndex(s.ScanCursor, w)
	g := s.Grains
	for probes < maxProbes && topples < limit {
		i := cursor
		cursor++
		if cursor == w {
			cursor = 0
		}
		probes++
		if int(g[i]) < p.ToppleThreshold {
			continue
		}
		g[i] = addGrains(g[i], -ToppleLoss)
		l := WrapIndex(i-1, w)
		r := WrapIndex(i+1, w)
		g[l] = addGrains(g[l], 1)
		g[r] = addGrains(g[r], 1)
		topples++
	}
	s.ScanCursor = cursor
	return topples, probes
}

// Decay samples DecayChecksPerStep random cells and removes one grain from
// each non-empty sample with probability DecayChance. Its cost does not depend
// on the grid contents.
func Decay(s *State, p Params) (decayed, probes int) {
	w := s.Width
	if w == 0 {
		return 0, 0
	}
	for probes = 0; probes < p.DecayChecksPerStep; probes++ {
		var i int
		s.RNG, i = rng.Intn(s.RNG, w)
		if s.Grains[i] == 0 {
			continue
		}
		var hit bool
		s.RNG, hit = rng.Bool(s.RNG, p.DecayChance)
		if hit {
			s.Grains[i]--
			decayed++
		}
	}
	return decayed, probes
}
