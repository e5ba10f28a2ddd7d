package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yrrapt/analogen/internal/plot"
	"github.com/yrrapt/analogen/internal/store"
)

// ResultsOptions holds flags for the results command.
type ResultsOptions struct {
	*RootOptions
	Database  string
	Waveforms bool
}

// NewResultsCommand creates the results command.
func NewResultsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResultsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "results <run-token>",
		Short: "Show a run's simulation metrics",
		Long: `Show the scalar metrics of a run's simulation results as a table,
one row per sweep point, corner and analysis.

JSON output includes waveform samples with --waveforms.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResults(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database (required)")
	cmd.Flags().BoolVar(&opts.Waveforms, "waveforms", false, "include waveform samples in JSON output")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runResults(opts *ResultsOptions, token string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results, err := st.ReadResults(ctx, token)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read results", err)
	}
	if !opts.Waveforms {
		for i := range results {
			results[i].Waveforms = nil
		}
	}

	return formatter.SuccessText(plot.MetricsTable(results), results)
}
