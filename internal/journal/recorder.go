package journal

import (
	"context"
	"time"

	"rule-bloom/internal/core"
	"rule-bloom/internal/sims/rulebloom"
)

// DefaultBatchSize is the number of ticks buffered per transaction.
const DefaultBatchSize = 256

// Recorder buffers tick records for one run and writes them in batches.
type Recorder struct {
	store  *Store
	engine *rulebloom.Engine
	run    Run
	batch  []TickRecord
	size   int
}

// StartRecording creates a run for e in its current state and returns a
// recorder for its ticks.
func StartRecording(ctx context.Context, s *Store, e *rulebloom.Engine, regime string, batchSize int) (*Recorder, error) {
	run, err := s.CreateRun(ctx, Run{
		Regime:          regime,
		Params:          e.Params(),
		InitialChecksum: e.Checksum(),
	})
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Recorder{
		store:  s,
		engine: e,
		run:    run,
		batch:  make([]TickRecord, 0, batchSize),
		size:   batchSize,
	}, nil
}

// Run returns the run being recorded.
func (r *Recorder) Run() Run { return r.run }

// ObserveTick records the engine's checksum after a tick.
func (r *Recorder) ObserveTick(ctx context.Context, stats core.TickStats, _ time.Duration) error {
	r.batch = append(r.batch, RecordFromStats(stats, r.engine.Checksum()))
	if len(r.batch) >= r.size {
		return r.Flush(ctx)
	}
	return nil
}

// Flush writes any buffered records.
func (r *Recorder) Flush(ctx context.Context) error {
	if len(r.batch) == 0 {
		return nil
	}
	if err := r.store.AppendTicks(ctx, r.run.ID, r.batch); err != nil {
		return err
	}
	r.batch = r.batch[:0]
	return nil
}
