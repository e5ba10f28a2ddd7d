package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yrrapt/analogen/internal/plot"
	"github.com/yrrapt/analogen/internal/store"
)

// PlotOptions holds flags for the plot command.
type PlotOptions struct {
	*RootOptions
	Database string
	OutDir   string
	Waves    []string
}

// NewPlotCommand creates the plot command.
func NewPlotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plot <run-token>",
		Short: "Render a run's waveforms as SVG files",
		Long: `Render a run's waveforms as SVG line charts, one file per sweep
point, analysis and waveform, with one series per corner.

Example:
  analogen plot --db results.db --out data/plots 01918f...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database (required)")
	cmd.Flags().StringVar(&opts.OutDir, "out", "data", "directory SVG files are written to")
	cmd.Flags().StringSliceVar(&opts.Waves, "wave", []string{"out", "gain_mag"}, "waveform names to plot")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runPlot(opts *PlotOptions, token string, cmd *cobra.Command) error {
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

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "failed to create output directory", err)
	}

	var written []string
	for _, wave := range opts.Waves {
		for _, p := range plot.FromResults(results, wave) {
			name := plotFileName(p.Title)
			path := filepath.Join(opts.OutDir, name)
			if err := os.WriteFile(path, p.SVG(), 0o644); err != nil {
				return WrapExitError(ExitCommandError, "failed to write plot", err)
			}
			formatter.VerboseLog("wrote %s", path)
			written = append(written, path)
		}
	}

	if len(written) == 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("no matching waveforms (%s) in run results", strings.Join(opts.Waves, ", ")))
	}

	var text strings.Builder
	for _, path := range written {
		fmt.Fprintln(&text, path)
	}
	return formatter.SuccessText(text.String(), map[string]any{"written": written})
}

// plotFileName turns a plot title into a safe file name.
func plotFileName(title string) string {
	r := strings.NewReplacer(" ", "_", "(", "", ")", "", "=", "-", ",", "_", "/", "_")
	return r.Replace(title) + ".svg"
}
