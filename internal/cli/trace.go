package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yrrapt/analogen/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
}

// TraceResult is the JSON payload for the trace command.
type TraceResult struct {
	Run   store.Run          `json:"run"`
	Trace []store.StageEvent `json:"trace"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <run-token>",
		Short: "Show the ordered stage trace of a run",
		Long: `Show a run's stage events in logical clock order, with the run's
final status.

With no run token, the most recent run is shown.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			}
			return runTrace(opts, token, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(opts *TraceOptions, token string, cmd *cobra.Command) error {
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

	if token == "" {
		runs, err := st.ListRuns(ctx, 1)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		if len(runs) == 0 {
			return NewExitError(ExitCommandError, "no runs in database")
		}
		token = runs[0].Token
	}

	run, err := st.GetRun(ctx, token)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load run", err)
	}
	trace, err := st.ReadTrace(ctx, token)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read trace", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "run %s: %s (design %s)\n", run.Token, run.Status, run.DesignName)
	if run.Status == store.RunStatusFailed {
		fmt.Fprintf(&text, "failed at %s: %s\n", run.FailStage, run.FailError)
	}
	for _, ev := range trace {
		fmt.Fprintf(&text, "%4d  %-10s %-6s %s\n", ev.Seq, ev.Stage, ev.Status, ev.Detail)
	}

	return formatter.SuccessText(text.String(), TraceResult{Run: run, Trace: trace})
}
