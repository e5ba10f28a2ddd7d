package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yrrapt/analogen/internal/layout"
	"github.com/yrrapt/analogen/internal/lvs"
	"github.com/yrrapt/analogen/internal/netlist"
	"github.com/yrrapt/analogen/internal/schematic"
	"github.com/yrrapt/analogen/internal/sim"
	"github.com/yrrapt/analogen/internal/spec"
	"github.com/yrrapt/analogen/internal/store"
	"github.com/yrrapt/analogen/internal/testbench"
)

// Flow stages, in execution order.
const (
	StageLayout    = "layout"
	StageExtract   = "extract"
	StageSchematic = "schematic"
	StageLVS       = "lvs"
	StageTestbench = "testbench"
	StageSim       = "sim"
)

// Stages returns the flow stages in execution order.
func Stages() []string {
	return []string{StageLayout, StageExtract, StageSchematic, StageLVS, StageTestbench, StageSim}
}

// Outcome is what a completed (or stopped) run produced.
type Outcome struct {
	RunToken string
	Design   string
	MasterID string
	// Cached reports whether the layout master came from the template
	// database rather than being generated.
	Cached bool
	// CellID is the content id of the extracted netlist.
	CellID string
	// LVS is the comparison report, nil when the run stopped earlier.
	LVS *lvs.Report
	// Results holds the simulation results, nil when the run stopped
	// earlier.
	Results sim.Results
}

// Option configures a single run.
type Option func(*runConfig)

type runConfig struct {
	tokens    TokenGenerator
	clock     *Clock
	nowMS     func() int64
	stopAfter string
	skipLVS   bool
}

// WithTokenGenerator overrides the run token source. Tests use
// FixedGenerator for reproducible traces.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(c *runConfig) { c.tokens = g }
}

// WithClock overrides the run's logical clock.
func WithClock(clock *Clock) Option {
	return func(c *runConfig) { c.clock = clock }
}

// WithNow overrides the wall-clock source used for the run's created
// timestamp. Ordering never depends on it.
func WithNow(now func() int64) Option {
	return func(c *runConfig) { c.nowMS = now }
}

// WithStopAfter stops the run after the named stage completes. The run
// is marked ok; later stages are not recorded.
func WithStopAfter(stage string) Option {
	return func(c *runConfig) { c.stopAfter = stage }
}

// WithSkipLVS skips the LVS stage entirely. Intended for quick
// iteration on a known-bad layout; the trace records the skip.
func WithSkipLVS() Option {
	return func(c *runConfig) { c.skipLVS = true }
}

// Run executes the full flow for one design and records it in the
// project's results database. On stage failure the run is marked
// failed, later stages do not execute, and a *FlowError identifying
// the stage is returned.
func Run(ctx context.Context, p *Project, d *spec.Design, opts ...Option) (*Outcome, error) {
	cfg := runConfig{
		tokens: UUIDv7Generator{},
		clock:  NewClock(),
		nowMS:  func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.stopAfter != "" && !validStage(cfg.stopAfter) {
		return nil, fmt.Errorf("flow: unknown stage %q", cfg.stopAfter)
	}

	params, err := d.Params()
	if err != nil {
		return nil, &FlowError{Code: ErrCodeBadParams, Stage: StageLayout, Message: err.Error(), Err: err}
	}
	masterID, err := netlist.MasterID(d.Generator, params)
	if err != nil {
		return nil, &FlowError{Code: ErrCodeBadParams, Stage: StageLayout, Message: err.Error(), Err: err}
	}
	paramsJSON, err := netlist.MarshalCanonical(params)
	if err != nil {
		return nil, &FlowError{Code: ErrCodeBadParams, Stage: StageLayout, Message: err.Error(), Err: err}
	}

	token := cfg.tokens.Generate()
	log := p.log.With("run", token, "design", d.DesignName)

	if err := p.store.BeginRun(ctx, store.Run{
		Token:      token,
		DesignName: d.DesignName,
		Generator:  d.Generator,
		MasterID:   masterID,
		ParamsJSON: string(paramsJSON),
		CreatedMS:  cfg.nowMS(),
	}); err != nil {
		return nil, &FlowError{Code: ErrCodeStore, Stage: StageLayout, RunToken: token, Message: err.Error(), Err: err}
	}

	r := &runner{ctx: ctx, project: p, cfg: cfg, token: token, log: log}
	out := &Outcome{RunToken: token, Design: d.DesignName, MasterID: masterID}

	// Layout generation.
	var master *layout.Master
	err = r.stage(StageLayout, ErrCodeGenerate, func() (string, error) {
		var cached bool
		var err error
		master, cached, err = p.db.NewMaster(d.Generator, params)
		if err != nil {
			return "", err
		}
		out.Cached = cached
		if cached {
			return masterID + " (cached)", nil
		}
		return masterID, nil
	})
	if err != nil {
		return nil, err
	}
	if done, err := r.maybeStop(StageLayout, out); done || err != nil {
		return out, err
	}

	// Extraction: geometry to netlist, with open/short checking, then
	// the master is persisted under its content id.
	var extracted *netlist.Cell
	err = r.stage(StageExtract, ErrCodeExtract, func() (string, error) {
		var err error
		extracted, err = layout.Extract(master.Layout, d.ImplLib)
		if err != nil {
			return "", err
		}
		extracted.Name = d.DesignName
		cellID, err := netlist.CellID(extracted)
		if err != nil {
			return "", err
		}
		cellJSON, err := netlist.MarshalCanonical(extracted)
		if err != nil {
			return "", err
		}
		out.CellID = cellID
		if _, err := p.store.WriteMaster(ctx, store.Master{
			ID:         masterID,
			Generator:  d.Generator,
			ParamsJSON: string(paramsJSON),
			CellID:     cellID,
			CellJSON:   string(cellJSON),
		}); err != nil {
			return "", err
		}
		return cellID, nil
	})
	if err != nil {
		return nil, err
	}
	if done, err := r.maybeStop(StageExtract, out); done || err != nil {
		return out, err
	}

	// Schematic generation from the layout's derived parameters.
	var sch *netlist.Cell
	err = r.stage(StageSchematic, ErrCodeSchematic, func() (string, error) {
		gen, err := schematic.Lookup(d.Generator)
		if err != nil {
			return "", err
		}
		sch, err = gen.Design(d.ImplLib, d.DesignName, master.Layout.SchParams)
		if err != nil {
			return "", err
		}
		return netlist.CellID(sch)
	})
	if err != nil {
		return nil, err
	}
	if done, err := r.maybeStop(StageSchematic, out); done || err != nil {
		return out, err
	}

	// LVS: the extracted netlist against the generated schematic.
	if cfg.skipLVS {
		if err := r.event(StageLVS, store.EventOK, "skipped"); err != nil {
			return nil, err
		}
	} else {
		err = r.stage(StageLVS, ErrCodeLVSFailed, func() (string, error) {
			rep, err := lvs.Compare(extracted, sch)
			if err != nil {
				return "", err
			}
			out.LVS = rep
			if !rep.Pass {
				return "", fmt.Errorf("%s", rep.Summary())
			}
			return "clean", nil
		})
		if err != nil {
			return nil, err
		}
	}
	if done, err := r.maybeStop(StageLVS, out); done || err != nil {
		return out, err
	}

	// Testbench: expand sweep points, build and validate the stimulus
	// wrappers, and assemble the job list.
	var jobs []sim.Job
	err = r.stage(StageTestbench, ErrCodeTestbench, func() (string, error) {
		points, err := testbench.Points(d)
		if err != nil {
			return "", err
		}
		for _, a := range d.Testbench.Analyses {
			if _, err := testbench.Wrap(extracted, d.Testbench, a.Type); err != nil {
				return "", err
			}
		}
		jobs, err = buildJobs(p, d, points)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d jobs", len(jobs)), nil
	})
	if err != nil {
		return nil, err
	}
	if done, err := r.maybeStop(StageTestbench, out); done || err != nil {
		return out, err
	}

	// Simulation, with results persisted as they complete.
	err = r.stage(StageSim, ErrCodeSim, func() (string, error) {
		results, err := sim.Run(ctx, jobs)
		if err != nil {
			return "", err
		}
		for _, res := range results {
			if err := p.store.WriteResult(ctx, token, res); err != nil {
				return "", err
			}
		}
		out.Results = results
		return fmt.Sprintf("%d results", len(results)), nil
	})
	if err != nil {
		return nil, err
	}

	if err := p.store.FinishRun(ctx, token, store.RunStatusOK, "", ""); err != nil {
		return nil, &FlowError{Code: ErrCodeStore, Stage: StageSim, RunToken: token, Message: err.Error(), Err: err}
	}
	log.Info("run complete", "master", masterID, "results", len(out.Results))
	return out, nil
}

// buildJobs assembles the simulation job list: for every sweep point,
// the DUT netlist at that point (generated through the template
// database, so repeated points are cached), crossed with corners and
// analyses in declaration order.
func buildJobs(p *Project, d *spec.Design, points []testbench.Point) ([]sim.Job, error) {
	var jobs []sim.Job
	for _, pt := range points {
		master, _, err := p.db.NewMaster(d.Generator, pt.Params)
		if err != nil {
			return nil, fmt.Errorf("point %s: %w", pt.Label, err)
		}

		var dut *netlist.Cell
		switch d.ViewName {
		case "extracted":
			dut, err = layout.Extract(master.Layout, d.ImplLib)
		default:
			var gen schematic.Generator
			gen, err = schematic.Lookup(d.Generator)
			if err == nil {
				dut, err = gen.Design(d.ImplLib, d.DesignName, master.Layout.SchParams)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("point %s: %w", pt.Label, err)
		}

		for _, corner := range d.Testbench.Corners {
			for _, a := range d.Testbench.Analyses {
				jobs = append(jobs, sim.Job{
					Design:      d.DesignName,
					Point:       pt.Label,
					SweepParams: pt.SweepParams,
					Corner:      corner,
					Analysis:    a,
					DUT:         dut,
					SupplyMV:    d.Testbench.SupplyMV,
					LoadCapFF:   d.Testbench.LoadCapFF,
				})
			}
		}
	}
	return jobs, nil
}

// runner carries per-run state for stage bookkeeping.
type runner struct {
	ctx     context.Context
	project *Project
	cfg     runConfig
	token   string
	log     *slog.Logger
}

// event records one stage event with the next sequence number.
func (r *runner) event(stage, status, detail string) error {
	err := r.project.store.WriteStageEvent(r.ctx, store.StageEvent{
		RunToken: r.token,
		Seq:      r.cfg.clock.Next(),
		Stage:    stage,
		Status:   status,
		Detail:   detail,
	})
	if err != nil {
		return &FlowError{Code: ErrCodeStore, Stage: stage, RunToken: r.token, Message: err.Error(), Err: err}
	}
	return nil
}

// stage runs one flow stage between start and ok/fail events. On
// failure the run is marked failed and a *FlowError is returned.
func (r *runner) stage(name string, code ErrorCode, fn func() (string, error)) error {
	if err := r.event(name, store.EventStart, ""); err != nil {
		return err
	}
	detail, err := fn()
	if err != nil {
		r.log.Info("stage failed", "stage", name, "error", err)
		if evErr := r.event(name, store.EventFail, err.Error()); evErr != nil {
			return evErr
		}
		if finErr := r.project.store.FinishRun(r.ctx, r.token, store.RunStatusFailed, name, err.Error()); finErr != nil {
			return &FlowError{Code: ErrCodeStore, Stage: name, RunToken: r.token, Message: finErr.Error(), Err: finErr}
		}
		return &FlowError{Code: code, Stage: name, RunToken: r.token, Message: err.Error(), Err: err}
	}
	r.log.Debug("stage ok", "stage", name, "detail", detail)
	return r.event(name, store.EventOK, detail)
}

// maybeStop finishes the run early when configured to stop after the
// given stage.
func (r *runner) maybeStop(stage string, out *Outcome) (bool, error) {
	if r.cfg.stopAfter != stage {
		return false, nil
	}
	if err := r.project.store.FinishRun(r.ctx, r.token, store.RunStatusOK, "", ""); err != nil {
		return true, &FlowError{Code: ErrCodeStore, Stage: stage, RunToken: r.token, Message: err.Error(), Err: err}
	}
	return true, nil
}

func validStage(stage string) bool {
	for _, s := range Stages() {
		if s == stage {
			return true
		}
	}
	return false
}
