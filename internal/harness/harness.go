// Package harness provides a conformance testing framework for the
// generation flow.
//
// A scenario is a YAML file naming a design spec, the expected run
// outcome, and assertions over the recorded stage trace and simulation
// results. Each scenario executes the real flow against a fresh
// in-memory database with a fixed run token and logical clock, so the
// resulting trace is fully deterministic and suitable for golden file
// comparison.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/yrrapt/analogen/internal/flow"
	"github.com/yrrapt/analogen/internal/spec"
	"github.com/yrrapt/analogen/internal/store"
)

// defaultRunToken keeps traces deterministic when a scenario does not
// pin one.
const defaultRunToken = "scenario-run-0001"

// fixedNowMS is the created timestamp for scenario runs. Ordering
// never depends on it; pinning it keeps run rows reproducible.
const fixedNowMS = int64(1704067200000)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database for isolation.
// Stage failures (LVS mismatches, extraction errors) are part of the
// scenario outcome, not harness errors: the run's recorded status is
// checked against the scenario's expect clause. Only infrastructure
// failures (unreadable spec, store errors) return a non-nil error.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	d, err := spec.Load(scenario.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec: %w", err)
	}

	token := scenario.RunToken
	if token == "" {
		token = defaultRunToken
	}

	project := flow.NewProject(st,
		flow.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	opts := []flow.Option{
		flow.WithTokenGenerator(flow.NewFixedGenerator(token)),
		flow.WithClock(flow.NewClock()),
		flow.WithNow(func() int64 { return fixedNowMS }),
	}
	if scenario.StopAfter != "" {
		opts = append(opts, flow.WithStopAfter(scenario.StopAfter))
	}
	if scenario.SkipLVS {
		opts = append(opts, flow.WithSkipLVS())
	}

	ctx := context.Background()
	_, runErr := flow.Run(ctx, project, d, opts...)
	if runErr != nil {
		// Stage failures are recorded in the run row and checked below.
		var flowErr *flow.FlowError
		if !errors.As(runErr, &flowErr) {
			return nil, fmt.Errorf("flow failed before recording a run: %w", runErr)
		}
	}

	result := NewResult()
	result.RunToken = token

	run, err := st.GetRun(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to read run: %w", err)
	}
	result.Status = run.Status
	result.FailStage = run.FailStage

	result.Trace, err = st.ReadTrace(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	result.Results, err = st.ReadResults(ctx, token)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	if result.Status != scenario.Expect.Status {
		result.AddError(fmt.Sprintf("expected run status %q, got %q", scenario.Expect.Status, result.Status))
	}
	if scenario.Expect.Status == "failed" && result.FailStage != scenario.Expect.FailStage {
		result.AddError(fmt.Sprintf("expected failure in stage %q, got %q", scenario.Expect.FailStage, result.FailStage))
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
