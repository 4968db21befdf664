package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"rule-bloom/internal/config"
	"rule-bloom/internal/core"
	"rule-bloom/internal/render"
	"rule-bloom/internal/sims/rulebloom"
)

// ProfilesOptions holds flags for the profiles command.
type ProfilesOptions struct {
	*RootOptions
	Regime        string
	Seed          int64
	Width         int
	ReducedMotion bool
	Save          string
}

type profileDoc struct {
	Regime        string                 `yaml:"regime"`
	ReducedMotion bool                   `yaml:"reduced_motion"`
	Params        core.ParameterSnapshot `yaml:"params"`
}

// NewProfilesCommand creates the profiles command.
func NewProfilesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfilesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Print the parameters of each regime as YAML",
		Long: `Expand the calm, balanced and volatile regimes into their normalized
parameters and print them as YAML. With --save, write a starter config file
for the selected regime instead, with every theme colour spelled out.

Examples:
  rulebloom profiles
  rulebloom profiles --regime volatile --reduced-motion
  rulebloom profiles --regime calm --save rulebloom.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Regime, "regime", "", "only this regime")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "seed to expand with")
	cmd.Flags().IntVar(&opts.Width, "width", rulebloom.DefaultWidth, "lane width")
	cmd.Flags().BoolVar(&opts.ReducedMotion, "reduced-motion", false, "show the reduced motion variant")
	cmd.Flags().StringVar(&opts.Save, "save", "", "write a config file for --regime to this path")

	return cmd
}

func runProfiles(opts *ProfilesOptions, cmd *cobra.Command) error {
	regimes := rulebloom.Regimes()
	if opts.Regime != "" {
		r, ok := rulebloom.ParseRegime(opts.Regime)
		if !ok {
			return WrapExitError(ExitCommandError, fmt.Sprintf("unknown regime %q", opts.Regime), nil)
		}
		regimes = []rulebloom.Regime{r}
	}

	if opts.Save != "" {
		if opts.Regime == "" {
			return WrapExitError(ExitCommandError, "--save needs --regime", nil)
		}
		cfg := config.DefaultConfig()
		cfg.Regime = string(regimes[0])
		cfg.Seed = opts.Seed
		cfg.Width = opts.Width
		cfg.ReducedMotion = opts.ReducedMotion
		cfg.Render.Theme = render.DefaultTheme().HexMap()
		if err := cfg.SaveToFile(opts.Save); err != nil {
			return WrapExitError(ExitCommandError, "failed to save config", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.Save)
		return nil
	}

	docs := make([]profileDoc, 0, len(regimes))
	for _, r := range regimes {
		p := rulebloom.BuildParams(rulebloom.ProfileOptions{
			Seed:          opts.Seed,
			Width:         opts.Width,
			ReducedMotion: opts.ReducedMotion,
			Regime:        r,
		})
		docs = append(docs, profileDoc{
			Regime:        string(r),
			ReducedMotion: opts.ReducedMotion,
			Params:        rulebloom.ParameterSnapshot(p),
		})
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return WrapExitError(ExitFailure, "failed to encode profiles", err)
	}
	return enc.Close()
}
