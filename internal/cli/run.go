package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"rule-bloom/internal/headless"
	"rule-bloom/internal/journal"
	"rule-bloom/internal/telemetry"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	profile profileFlags

	Ticks       int
	LogEvery    int
	MetricsAddr string
	Journal     string
	BatchSize   int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Step the simulation headless",
		Long: `Step the simulation without a display, logging progress and optionally
exporting prometheus metrics and recording every tick to a SQLite journal
that "rulebloom verify" can replay.

Examples:
  rulebloom run --ticks 2000 --regime volatile --seed 7
  rulebloom run --ticks 0 --metrics-addr :9090
  rulebloom run --journal runs.db --set decay_chance=0.5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(opts, cmd)
		},
	}

	opts.profile.bind(cmd)
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "ticks to run (default from config; 0 with --metrics-addr runs until interrupted)")
	cmd.Flags().IntVar(&opts.LogEvery, "log-every", 0, "log progress every n ticks (default from config)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the run into this SQLite file")
	cmd.Flags().IntVar(&opts.BatchSize, "batch", journal.DefaultBatchSize, "ticks per journal transaction")

	return cmd
}

func runHeadless(opts *RunOptions, cmd *cobra.Command) error {
	cfg, engine, err := prepare(cmd, opts.RootOptions, &opts.profile)
	if err != nil {
		return err
	}
	logger := opts.Logger(cmd.ErrOrStderr())

	ticks := cfg.Run.Ticks
	if cmd.Flags().Changed("ticks") {
		ticks = opts.Ticks
	}
	if ticks <= 0 && opts.MetricsAddr == "" {
		return WrapExitError(ExitCommandError, "--ticks must be positive unless --metrics-addr is set", nil)
	}
	logEvery := cfg.Run.LogEvery
	if cmd.Flags().Changed("log-every") {
		logEvery = opts.LogEvery
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	runner := &headless.Runner{Engine: engine, LogEvery: logEvery, Logger: logger}

	if opts.MetricsAddr != "" {
		metrics := telemetry.New()
		runner.Observers = append(runner.Observers, headless.Metrics(metrics))
		shutdown, err := serveMetrics(opts.MetricsAddr, metrics, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to serve metrics", err)
		}
		defer shutdown()
	}

	var recorder *journal.Recorder
	if opts.Journal != "" {
		st, err := journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("Failed to close journal", slog.String("error", closeErr.Error()))
			}
		}()
		recorder, err = journal.StartRecording(ctx, st, engine, cfg.Regime, opts.BatchSize)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start recording", err)
		}
		runner.Observers = append(runner.Observers, recorder)
		logger.Info("Recording run", slog.String("run_id", recorder.Run().ID), slog.String("journal", opts.Journal))
	}

	logger.Info("Run starting",
		slog.String("regime", cfg.Regime),
		slog.Int64("seed", engine.Params().Seed),
		slog.Int("width", engine.Width()),
		slog.Int("ticks", ticks),
	)
	sum, err := runner.Run(ctx, ticks)
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "run failed", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ticks=%d last_tick=%d topples=%d decays=%d grains_added=%d peak_alive=%d final_alive=%d checksum=%016x\n",
		sum.Ticks, sum.LastTick, sum.Topples, sum.Decays, sum.GrainsAdded, sum.PeakAlive, sum.FinalAlive, engine.Checksum())
	if recorder != nil {
		fmt.Fprintf(out, "run_id=%s\n", recorder.Run().ID)
	}
	return nil
}

// serveMetrics starts the /metrics endpoint and returns its shutdown func.
func serveMetrics(addr string, m *telemetry.Metrics, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	m.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	logger.Info("Serving metrics", slog.String("addr", ln.Addr().String()))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
