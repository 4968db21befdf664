package rulebloom

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// SweepAxis is one parameter and the values to try for it.
type SweepAxis struct {
	Key    string
	Values []string
}

// ParseAxis parses "key=v1,v2,...".
func ParseAxis(arg string) (SweepAxis, error) {
	key, list, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return SweepAxis{}, fmt.Errorf("sweep axis %q: want key=v1,v2", arg)
	}
	if _, known := lookupField(key); !known {
		return SweepAxis{}, fmt.Errorf("sweep axis %q: unknown parameter %q", arg, key)
	}
	axis := SweepAxis{Key: key}
	for _, v := range strings.Split(list, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		var probe Params
		if !SetParam(&probe, key, v) {
			return SweepAxis{}, fmt.Errorf("sweep axis %q: bad value %q", arg, v)
		}
		axis.Values = append(axis.Values, v)
	}
	if len(axis.Values) == 0 {
		return SweepAxis{}, fmt.Errorf("sweep axis %q: no values", arg)
	}
	return axis, nil
}

// SweepOutcome summarises one candidate run.
type SweepOutcome struct {
	Overrides map[string]string
	Params    Params
	Ticks     int

	// MeanAlive is the average live fraction of the lane.
	MeanAlive   float64
	MeanTopples float64
	MeanDecays  float64
	// PeakBacklog is the largest number of cells waiting to topple.
	PeakBacklog int
	FinalGrains int
	Score       float64
}

// Evaluate runs p for ticks and measures it.
func Evaluate(p Params, ticks int) SweepOutcome {
	e := New(p)
	p = e.Params()
	out := SweepOutcome{Params: p, Ticks: ticks}
	if ticks <= 0 {
		out.FinalGrains = e.State().TotalGrains()
		return out
	}

	var alive, topples, decays float64
	for i := 0; i < ticks; i++ {
		st := e.Step().Stats
		alive += float64(st.Alive) / float64(p.Width)
		topples += float64(st.Topples)
		decays += float64(st.Decays)
		if hot := e.State().HotCells(p.ToppleThreshold); hot > out.PeakBacklog {
			out.PeakBacklog = hot
		}
	}
	n := float64(ticks)
	out.MeanAlive = alive / n
	out.MeanTopples = topples / n
	out.MeanDecays = decays / n
	out.FinalGrains = e.State().TotalGrains()
	out.Score = score(out)
	return out
}

// score favours a lane that stays near half alive without a growing backlog.
func score(o SweepOutcome) float64 {
	balance := 4 * o.MeanAlive * (1 - o.MeanAlive)
	backlog := float64(o.PeakBacklog) / float64(o.Params.Width)
	return balance - backlog
}

// Sweep evaluates every combination of axes on top of base using up to
// workers goroutines. Outcomes are sorted best first.
func Sweep(ctx context.Context, base Params, axes []SweepAxis, ticks, workers int) ([]SweepOutcome, error) {
	if workers <= 0 {
		workers = 1
	}
	combos := expand(axes)
	results := make([]SweepOutcome, len(combos))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, overrides := range combos {
		i, overrides := i, overrides
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := Evaluate(ApplyOverrides(base, overrides), ticks)
			res.Overrides = overrides
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	sort.SliceStable(results, func(a, b int) bool { return results[a].Score > results[b].Score })
	return results, nil
}

func expand(axes []SweepAxis) []map[string]string {
	combos := []map[string]string{{}}
	for _, axis := range axes {
		next := make([]map[string]string, 0, len(combos)*len(axis.Values))
		for _, c := range combos {
			for _, v := range axis.Values {
				m := make(map[string]string, len(c)+1)
				for k, old := range c {
					m[k] = old
				}
				m[axis.Key] = v
				next = append(next, m)
			}
		}
		combos = next
	}
	return combos
}
