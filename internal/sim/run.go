package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yrrapt/analogen/internal/spec"
)

// Run executes jobs sequentially in order. Sequential execution keeps
// results deterministic; jobs are cheap closed-form evaluations, not
// external solver invocations.
func Run(ctx context.Context, jobs []Job) (Results, error) {
	results := make(Results, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := runJob(job)
		if err != nil {
			return nil, fmt.Errorf("sim: job %s: %w", job.Key(), err)
		}
		slog.Debug("sim job done", "key", job.Key(), "waveforms", len(res.Waveforms))
		results = append(results, res)
	}
	return results, nil
}

func runJob(job Job) (Result, error) {
	corner, err := LookupCorner(job.Corner)
	if err != nil {
		return Result{}, err
	}
	model, err := ModelFromCell(job.DUT, corner, job.SupplyMV, job.LoadCapFF)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Design:      job.Design,
		Point:       job.Point,
		SweepParams: job.SweepParams,
		Corner:      job.Corner,
		Analysis:    job.Analysis.Type,
		Metrics:     make(map[string]float64),
	}

	switch job.Analysis.Type {
	case spec.AnalysisTran:
		res.Waveforms, err = runTran(model, job.Analysis)
	case spec.AnalysisAC:
		res.Waveforms, err = runAC(model, job.Analysis)
	default:
		err = fmt.Errorf("unknown analysis type %q", job.Analysis.Type)
	}
	if err != nil {
		return Result{}, err
	}

	measure(&res, model)
	return res, nil
}

// measure fills the scalar metrics derived from the model and the
// waveforms.
func measure(res *Result, m *Model) {
	switch res.Analysis {
	case spec.AnalysisAC:
		res.Metrics["gain_dc_db"] = 20 * logAbs(m.GainDC)
		res.Metrics["f3db_hz"] = m.F3dB()
	case spec.AnalysisTran:
		res.Metrics["tau_ps"] = m.Tau() * 1e12
		for _, w := range res.Waveforms {
			if w.Name == "out" {
				res.Metrics["settle_ps"] = settleTime(w)
			}
		}
	}
}

// settleTime returns the time (ps) the out trace takes after the input
// step to come within 1% of its final value.
func settleTime(w Waveform) float64 {
	if len(w.Y) == 0 {
		return 0
	}
	final := w.Y[len(w.Y)-1]
	tol := 0.01 * absf(final)
	if tol == 0 {
		tol = 1e-6
	}
	for i := len(w.Y) - 1; i >= 0; i-- {
		if absf(w.Y[i]-final) > tol {
			if i+1 < len(w.X) {
				return w.X[i+1]
			}
			return w.X[len(w.X)-1]
		}
	}
	return w.X[0]
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
