package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yrrapt/analogen/internal/flow"
	"github.com/yrrapt/analogen/internal/plot"
	"github.com/yrrapt/analogen/internal/spec"
	"github.com/yrrapt/analogen/internal/store"
)

// RunOptions holds flags for the run command family.
type RunOptions struct {
	*RootOptions
	Database  string
	StopAfter string
	SkipLVS   bool

	// Tokens overrides the run token generator (for testing). Nil
	// defaults to UUIDv7.
	Tokens flow.TokenGenerator
}

// RunSummary is the JSON payload for a completed run.
type RunSummary struct {
	RunToken string             `json:"run_token"`
	Design   string             `json:"design"`
	MasterID string             `json:"master_id"`
	CellID   string             `json:"cell_id,omitempty"`
	Cached   bool               `json:"cached"`
	LVSPass  *bool              `json:"lvs_pass,omitempty"`
	Results  int                `json:"results"`
	Metrics  map[string]float64 `json:"-"`
}

// NewRunCommand creates the run command: the full flow from spec to
// simulation results.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <spec.yaml>",
		Short: "Run the full generation flow for a design spec",
		Long: `Run the generation flow: layout, extraction, schematic, LVS,
testbench expansion and simulation, recording every stage in the
results database.

Example:
  analogen run --db ./results.db examples/inverter.yaml
  analogen run --db ./results.db --stop-after lvs design.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database (required)")
	cmd.Flags().StringVar(&opts.StopAfter, "stop-after", "", fmt.Sprintf("stop after a stage (%s)", strings.Join(flow.Stages(), "|")))
	cmd.Flags().BoolVar(&opts.SkipLVS, "skip-lvs", false, "skip the LVS stage")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// NewLayoutCommand creates the layout command: generate and extract
// the layout only.
func NewLayoutCommand(rootOpts *RootOptions) *cobra.Command {
	return newStageCommand(rootOpts, "layout", "Generate and extract the layout only", flow.StageExtract)
}

// NewSchematicCommand creates the schematic command: stop after
// schematic generation.
func NewSchematicCommand(rootOpts *RootOptions) *cobra.Command {
	return newStageCommand(rootOpts, "schematic", "Generate layout and schematic without verification", flow.StageSchematic)
}

// NewLVSCommand creates the lvs command: run the flow through LVS and
// stop before simulation.
func NewLVSCommand(rootOpts *RootOptions) *cobra.Command {
	return newStageCommand(rootOpts, "lvs", "Verify layout against schematic and stop", flow.StageLVS)
}

// NewSimCommand creates the sim command: the flow through simulation,
// without the run command's extra knobs.
func NewSimCommand(rootOpts *RootOptions) *cobra.Command {
	return newStageCommand(rootOpts, "sim", "Run the flow through simulation", flow.StageSim)
}

func newStageCommand(rootOpts *RootOptions, name, short, stopAfter string) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts, StopAfter: stopAfter}

	cmd := &cobra.Command{
		Use:           name + " <spec.yaml>",
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlow(opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func runFlow(opts *RunOptions, specPath string, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	d, err := spec.Load(specPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load spec", err)
	}
	formatter.VerboseLog("Loaded %s: design %s, generator %s", specPath, d.DesignName, d.Generator)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	project := flow.NewProject(st)

	var flowOpts []flow.Option
	if opts.StopAfter != "" {
		flowOpts = append(flowOpts, flow.WithStopAfter(opts.StopAfter))
	}
	if opts.SkipLVS {
		flowOpts = append(flowOpts, flow.WithSkipLVS())
	}
	if opts.Tokens != nil {
		flowOpts = append(flowOpts, flow.WithTokenGenerator(opts.Tokens))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out, err := flow.Run(ctx, project, d, flowOpts...)
	if err != nil {
		if flow.IsLVSFailure(err) {
			return WrapExitError(ExitFailure, "LVS failed", err)
		}
		return WrapExitError(ExitFailure, "flow failed", err)
	}

	summary := RunSummary{
		RunToken: out.RunToken,
		Design:   out.Design,
		MasterID: out.MasterID,
		CellID:   out.CellID,
		Cached:   out.Cached,
		Results:  len(out.Results),
	}
	if out.LVS != nil {
		summary.LVSPass = &out.LVS.Pass
	}

	var text strings.Builder
	fmt.Fprintf(&text, "run %s\n", out.RunToken)
	fmt.Fprintf(&text, "design %s (master %s)\n", out.Design, out.MasterID)
	if out.LVS != nil {
		fmt.Fprintf(&text, "lvs %s\n", out.LVS.Summary())
	}
	if len(out.Results) > 0 {
		text.WriteByte('\n')
		text.WriteString(plot.MetricsTable(out.Results))
	}
	return formatter.SuccessText(text.String(), summary)
}
