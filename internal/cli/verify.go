package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rule-bloom/internal/journal"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Journal string
	RunID   string
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay journaled runs and compare checksums",
		Long: `Rebuild each recorded run from its stored parameters, replay it and
compare the state checksum at every recorded tick.

Exit codes:
  0 - All runs replayed identically
  1 - A checksum diverged
  2 - Command error (journal missing, unknown run, etc.)

Examples:
  rulebloom verify --journal runs.db
  rulebloom verify --journal runs.db --run 3f2a...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to the SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "verify a single run")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	ids := []string{opts.RunID}
	if opts.RunID == "" {
		runs, err := st.Runs(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		ids = ids[:0]
		for _, r := range runs {
			ids = append(ids, r.ID)
		}
	}
	out := cmd.OutOrStdout()
	if len(ids) == 0 {
		fmt.Fprintln(out, "No runs found in journal.")
		return nil
	}

	var failed error
	for _, id := range ids {
		res, err := journal.Verify(ctx, st, id)
		switch {
		case err == nil:
			fmt.Fprintf(out, "run %s: ok (%d ticks, last tick %d)\n", id, res.Checked, res.LastTick)
		case errors.Is(err, journal.ErrChecksumMismatch):
			fmt.Fprintf(out, "run %s: MISMATCH after %d ticks: %v\n", id, res.Checked, err)
			if failed == nil {
				failed = WrapExitError(ExitFailure, "replay diverged", err)
			}
		case errors.Is(err, journal.ErrRunNotFound):
			return WrapExitError(ExitCommandError, "unknown run", err)
		default:
			return WrapExitError(ExitCommandError, "verify failed", err)
		}
	}
	return failed
}
