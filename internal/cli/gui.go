package cli

import (
	"github.com/spf13/cobra"

	"rule-bloom/internal/app"
)

// GUIOptions holds flags for the gui command.
type GUIOptions struct {
	*RootOptions
	profile profileFlags

	TPS int
}

// NewGUICommand creates the gui command. Binaries built without the ebiten
// tag report that the window is unavailable.
func NewGUICommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GUIOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gui",
		Short: "Open the simulation in a window",
		Long: `Open an ebiten window with the scrolling history, a parameter panel and
diagnostic overlays. Requires a binary built with -tags ebiten.

Keys: space pause, n step, r restart, s reseed, 1 heat strip, 2 scan cursor, q quit.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(opts, cmd)
		},
	}

	opts.profile.bind(cmd)
	cmd.Flags().IntVar(&opts.TPS, "tps", 0, "ticks per second (default from config)")

	return cmd
}

func runGUI(opts *GUIOptions, cmd *cobra.Command) error {
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
	game, err := app.New(engine, app.Options{Regime: cfg.Regime, TPS: tps, Render: renderOpts})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start gui", err)
	}
	if err := app.Run(game, "Rule Bloom · "+cfg.Regime); err != nil {
		return WrapExitError(ExitFailure, "gui failed", err)
	}
	return nil
}
