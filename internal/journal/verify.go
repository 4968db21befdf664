package journal

import (
	"context"
	"fmt"

	"rule-bloom/internal/sims/rulebloom"
)

// VerifyResult summarises a replay.
type VerifyResult struct {
	RunID    string
	Checked  int
	LastTick uint64
}

// Verify rebuilds the engine from the stored params, replays it up to the
// last recorded tick and compares every recorded checksum. The first
// divergence is reported as ErrChecksumMismatch.
func Verify(ctx context.Context, s *Store, runID string) (VerifyResult, error) {
	res := VerifyResult{RunID: runID}
	run, err := s.Run(ctx, runID)
	if err != nil {
		return res, err
	}
	records, err := s.Ticks(ctx, runID)
	if err != nil {
		return res, err
	}

	e := rulebloom.New(run.Params)
	if got := e.Checksum(); got != run.InitialChecksum {
		return res, fmt.Errorf("initial state: recorded %016x, replayed %016x: %w", run.InitialChecksum, got, ErrChecksumMismatch)
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		for e.State().Tick < rec.Tick {
			e.Step()
		}
		if got := e.Checksum(); got != rec.Checksum {
			return res, fmt.Errorf("tick %d: recorded %016x, replayed %016x: %w", rec.Tick, rec.Checksum, got, ErrChecksumMismatch)
		}
		res.Checked++
		res.LastTick = rec.Tick
	}
	return res, nil
}
