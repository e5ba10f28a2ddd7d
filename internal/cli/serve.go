package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/yrrapt/analogen/internal/server"
	"github.com/yrrapt/analogen/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
	Addr     string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the results database over HTTP",
		Long: `Serve run listings, traces, metrics and waveform plots from a
results database over HTTP.

Example:
  analogen serve --db results.db --addr :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database (required)")
	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runServe(opts *ServeOptions) error {
	setupLogging(opts.RootOptions)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	srv := server.New(st, server.WithLogger(slog.Default()))
	if err := srv.ListenAndServe(opts.Addr); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}
