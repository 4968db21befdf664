package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"rule-bloom/internal/render"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	profile profileFlags

	Ticks int
	Out   string
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a run to a PNG",
		Long: `Step the simulation, compositing every tick into the scrolling history,
and write the final frame as a PNG. Frame size, scale and colours come from
the render block of the config file.

Example:
  rulebloom render --ticks 400 --regime calm --out bloom.png`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, cmd)
		},
	}

	opts.profile.bind(cmd)
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "ticks to render (default from config)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "output PNG path (required)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runRender(opts *RenderOptions, cmd *cobra.Command) error {
	cfg, engine, err := prepare(cmd, opts.RootOptions, &opts.profile)
	if err != nil {
		return err
	}
	ticks := cfg.Run.Ticks
	if cmd.Flags().Changed("ticks") {
		ticks = opts.Ticks
	}
	if ticks < 0 {
		return WrapExitError(ExitCommandError, "--ticks must not be negative", nil)
	}

	renderOpts, err := cfg.RenderOptions()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid render options", err)
	}
	surface := &render.ImageSurface{}
	r, err := render.New(surface, renderOpts)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to create renderer", err)
	}
	r.Resize(cfg.ResizeRequest())

	snap := engine.Snapshot()
	r.Render(snap, nil)
	for i := 0; i < ticks; i++ {
		res := engine.Step()
		engine.SnapshotInto(&snap)
		r.Render(snap, &res.Stats)
	}

	f, err := os.Create(opts.Out)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output", err)
	}
	if err := surface.WritePNG(f); err != nil {
		f.Close()
		return WrapExitError(ExitFailure, "failed to encode PNG", err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitFailure, "failed to write output", err)
	}

	opts.Logger(cmd.ErrOrStderr()).Debug("Render finished",
		slog.Int("frames", surface.Presents()),
		slog.Int("history_rows", r.HistoryRows()),
		slog.Int("reallocations", r.Allocations()),
	)
	w, h := r.BackingSize()
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d, tick %d)\n", opts.Out, w, h, engine.State().Tick)
	return nil
}
