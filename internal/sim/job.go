package sim

import (
	"fmt"

	"github.com/yrrapt/analogen/internal/netlist"
	"github.com/yrrapt/analogen/internal/spec"
)

// Job is one simulation unit: one analysis of one design point at one
// corner. The flow builds the job list as the cross product of corners
// and sweep points, in declaration order, so run output is stable.
type Job struct {
	// Design is the top-level design name.
	Design string
	// Point labels the sweep point ("base" when nothing is swept).
	Point string
	// SweepParams holds the swept parameter values at this point.
	SweepParams map[string]int64
	// Corner is the process corner name.
	Corner string
	// Analysis selects what to run.
	Analysis spec.Analysis
	// DUT is the device-under-test cell the model is derived from.
	DUT *netlist.Cell
	// SupplyMV and LoadCapFF come from the testbench config.
	SupplyMV  int64
	LoadCapFF int64
}

// Key identifies a job inside a run: point/corner/analysis.
func (j Job) Key() string {
	return fmt.Sprintf("%s/%s/%s", j.Point, j.Corner, j.Analysis.Type)
}

// Waveform is one named trace produced by an analysis.
type Waveform struct {
	Name  string    `json:"name"`
	XUnit string    `json:"x_unit"`
	YUnit string    `json:"y_unit"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
}

// Result is the outcome of one job.
type Result struct {
	Design      string             `json:"design"`
	Point       string             `json:"point"`
	SweepParams map[string]int64   `json:"sweep_params,omitempty"`
	Corner      string             `json:"corner"`
	Analysis    string             `json:"analysis"`
	Waveforms   []Waveform         `json:"waveforms"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Key identifies a result the same way Job.Key does.
func (r Result) Key() string {
	return fmt.Sprintf("%s/%s/%s", r.Point, r.Corner, r.Analysis)
}

// Results is the in-memory results mapping a run produces, in job
// order.
type Results []Result

// ByKey returns the result with the given key.
func (rs Results) ByKey(key string) (Result, bool) {
	for _, r := range rs {
		if r.Key() == key {
			return r, true
		}
	}
	return Result{}, false
}

// Corners returns the distinct corner names in result order.
func (rs Results) Corners() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range rs {
		if !seen[r.Corner] {
			seen[r.Corner] = true
			out = append(out, r.Corner)
		}
	}
	return out
}
