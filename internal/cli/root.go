// Package cli implements the rulebloom command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"rule-bloom/internal/config"
	"rule-bloom/internal/sims/rulebloom"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string

	logger *slog.Logger
	cfg    *config.Config
}

// ValidLogFormats lists the accepted --log-format values.
var ValidLogFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rulebloom",
		Short: "Rule Bloom: a Rule 30 lane coupled to a bounded sandpile",
		Long: `Rule Bloom steps a one-dimensional Rule 30 automaton whose live cells feed
a ring sandpile, with stochastic decay and grain pressure flowing back into
the automaton. Runs are deterministic for a given seed and parameter set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseLevel(opts.LogLevel); err != nil {
				return WrapExitError(ExitCommandError, "invalid --log-level", err)
			}
			if !isValidFormat(opts.LogFormat) {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid --log-format %q: must be one of %v", opts.LogFormat, ValidLogFormats), nil)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to rulebloom.yaml (default: search working directory and parents)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "log format (text|json)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewTermCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewProfilesCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewGUICommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidLogFormats {
		if f == format {
			return true
		}
	}
	return false
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// Logger builds the process logger on first use, writing to w.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	level, err := parseLevel(o.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if o.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	o.logger = slog.New(handler)
	slog.SetDefault(o.logger)
	return o.logger
}

// Config loads the configuration file once.
func (o *RootOptions) Config(cmd *cobra.Command) (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.NewLoader(o.Logger(cmd.ErrOrStderr())).Load(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.cfg = cfg
	return cfg, nil
}

// profileFlags are the engine-selection flags shared by several commands.
type profileFlags struct {
	Regime        string
	Seed          int64
	Width         int
	ReducedMotion bool
	Set           []string
}

func (f *profileFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Regime, "regime", "", "parameter regime (calm|balanced|volatile)")
	cmd.Flags().Int64Var(&f.Seed, "seed", 0, "simulation seed")
	cmd.Flags().IntVar(&f.Width, "width", 0, "lane width in cells")
	cmd.Flags().BoolVar(&f.ReducedMotion, "reduced-motion", false, "derate cascades and coupling")
	cmd.Flags().StringArrayVar(&f.Set, "set", nil, "override a parameter, key=value (repeatable)")
}

// apply layers explicitly set flags over cfg and revalidates it.
func (f *profileFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("regime") {
		cfg.Regime = f.Regime
	}
	if flags.Changed("seed") {
		cfg.Seed = f.Seed
	}
	if flags.Changed("width") {
		cfg.Width = f.Width
	}
	if flags.Changed("reduced-motion") {
		cfg.ReducedMotion = f.ReducedMotion
	}
	for _, kv := range f.Set {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid --set %q: want key=value", kv), nil)
		}
		if cfg.Overrides == nil {
			cfg.Overrides = map[string]string{}
		}
		cfg.Overrides[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return nil
}

// prepare loads config, applies profile flags and builds the engine.
func prepare(cmd *cobra.Command, opts *RootOptions, pf *profileFlags) (*config.Config, *rulebloom.Engine, error) {
	cfg, err := opts.Config(cmd)
	if err != nil {
		return nil, nil, err
	}
	if pf != nil {
		if err := pf.apply(cmd, cfg); err != nil {
			return nil, nil, err
		}
	}
	return cfg, rulebloom.New(cfg.Params()), nil
}

// signalContext derives a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
