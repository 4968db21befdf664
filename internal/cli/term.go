package cli

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"rule-bloom/internal/term"
)

// TermOptions holds flags for the term command.
type TermOptions struct {
	*RootOptions
	profile profileFlags

	TPS int
}

// NewTermCommand creates the term command.
func NewTermCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TermOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "term",
		Short: "Watch the simulation in the terminal",
		Long: `Show the scrolling history in the terminal using half-block cells.

Keys: space pause, n step, r restart, +/- speed, q quit.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerm(opts, cmd)
		},
	}

	opts.profile.bind(cmd)
	cmd.Flags().IntVar(&opts.TPS, "tps", 0, "ticks per second (default from config)")

	return cmd
}

func runTerm(opts *TermOptions, cmd *cobra.Command) error {
	cfg, engine, err := prepare(cmd, opts.RootOptions, &opts.profile)
	if err != nil {
		return err
	}
	tps := cfg.Run.TPS
	if cmd.Flags().Changed("tps") {
		tps = opts.TPS
	}
	renderOpts, err := cfg.RenderOptions()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid render options", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open terminal", err)
	}
	if err := screen.Init(); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialise terminal", err)
	}
	defer screen.Fini()

	viewer, err := term.NewViewer(screen, engine, term.Options{
		Regime: cfg.Regime,
		TPS:    tps,
		Render: renderOpts,
		Logger: opts.Logger(cmd.ErrOrStderr()),
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to start viewer", err)
	}

	ctx, stop := signalContext(cmd)
	defer stop()
	if err := viewer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "viewer failed", err)
	}
	return nil
}
