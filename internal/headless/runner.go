// Package headless steps an engine without a display, feeding each tick to a
// set of observers.
package headless

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rule-bloom/internal/core"
	"rule-bloom/internal/telemetry"
)

// Observer is notified after every tick.
type Observer interface {
	ObserveTick(ctx context.Context, stats core.TickStats, took time.Duration) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, stats core.TickStats, took time.Duration) error

// ObserveTick calls f.
func (f ObserverFunc) ObserveTick(ctx context.Context, stats core.TickStats, took time.Duration) error {
	return f(ctx, stats, took)
}

// Flusher is implemented by observers that buffer; Flush runs once when the
// loop ends, including after cancellation.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Metrics feeds ticks into prometheus collectors.
func Metrics(m *telemetry.Metrics) Observer {
	return ObserverFunc(func(_ context.Context, stats core.TickStats, took time.Duration) error {
		m.Observe(stats, took)
		return nil
	})
}

// Summary aggregates a finished run.
type Summary struct {
	Ticks       int
	LastTick    uint64
	Topples     int
	Decays      int
	GrainsAdded int
	PeakAlive   int
	FinalAlive  int
	Elapsed     time.Duration
}

// Runner drives Engine for a fixed number of ticks.
type Runner struct {
	Engine    core.Stepper
	Observers []Observer
	// LogEvery logs a progress line every n ticks; 0 disables it.
	LogEvery int
	Logger   *slog.Logger
}

// Run advances the engine ticks times, or until ctx is cancelled when ticks
// is not positive. Cancellation returns the partial summary with ctx.Err().
func (r *Runner) Run(ctx context.Context, ticks int) (Summary, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var sum Summary
	start := time.Now()

	err := r.loop(ctx, ticks, logger, &sum)
	sum.Elapsed = time.Since(start)

	if ferr := r.flush(context.WithoutCancel(ctx)); ferr != nil && err == nil {
		err = ferr
	}

	logger.Info("Run finished",
		slog.String("engine", r.Engine.Name()),
		slog.Int("ticks", sum.Ticks),
		slog.Uint64("last_tick", sum.LastTick),
		slog.Int("topples", sum.Topples),
		slog.Int("decays", sum.Decays),
		slog.Int("final_alive", sum.FinalAlive),
		slog.Duration("elapsed", sum.Elapsed),
	)
	return sum, err
}

func (r *Runner) loop(ctx context.Context, ticks int, logger *slog.Logger, sum *Summary) error {
	for ticks <= 0 || sum.Ticks < ticks {
		if err := ctx.Err(); err != nil {
			return err
		}
		began := time.Now()
		stats := r.Engine.Advance()
		took := time.Since(began)

		sum.Ticks++
		sum.LastTick = stats.Tick
		sum.Topples += stats.Topples
		sum.Decays += stats.Decays
		sum.GrainsAdded += stats.GrainsAdded
		sum.FinalAlive = stats.Alive
		if stats.Alive > sum.PeakAlive {
			sum.PeakAlive = stats.Alive
		}

		for _, o := range r.Observers {
			if err := o.ObserveTick(ctx, stats, took); err != nil {
				return fmt.Errorf("tick %d: %w", stats.Tick, err)
			}
		}

		if r.LogEvery > 0 && sum.Ticks%r.LogEvery == 0 {
			logger.Info("Tick",
				slog.Uint64("tick", stats.Tick),
				slog.Int("alive", stats.Alive),
				slog.Int("topples", stats.Topples),
				slog.Int("decays", stats.Decays),
				slog.Int("grains_added", stats.GrainsAdded),
			)
		}
	}
	return nil
}

func (r *Runner) flush(ctx context.Context) error {
	for _, o := range r.Observers {
		f, ok := o.(Flusher)
		if !ok {
			continue
		}
		if err := f.Flush(ctx); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
	}
	return nil
}
