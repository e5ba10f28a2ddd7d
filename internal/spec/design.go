// Package spec loads and validates YAML design specification files.
//
// A design spec names the generator pair to run, the implementation
// library to write into, the layout parameters, and the testbench
// setup (supply, corners, analyses, sweeps). Files are validated
// against an embedded CUE schema before decoding.
package spec

import (
	"fmt"

	"github.com/yrrapt/analogen/internal/netlist"
)

// Design is the decoded design specification.
//
// All physical quantities are integers in fixed units (nanometers,
// millivolts, femtofarads, picoseconds, hertz). Floats never appear in
// a spec; this keeps derived master identity deterministic.
type Design struct {
	// ImplLib is the implementation library generated cells are
	// written into.
	ImplLib string `json:"impl_lib" yaml:"impl_lib"`

	// DesignName names the top-level generated cell. When empty it is
	// derived from the generator name and a short parameter hash.
	DesignName string `json:"design_name,omitempty" yaml:"design_name,omitempty"`

	// Generator selects the layout/schematic generator pair.
	Generator string `json:"generator" yaml:"generator"`

	// ViewName is the simulation view to use ("netlist" by default).
	ViewName string `json:"view_name,omitempty" yaml:"view_name,omitempty"`

	// RootDir is where flow artifacts (plots, reports) are written.
	RootDir string `json:"root_dir,omitempty" yaml:"root_dir,omitempty"`

	// LayoutParams is the generator parameter dictionary.
	LayoutParams map[string]any `json:"layout_params" yaml:"layout_params"`

	// Testbench configures stimulus, corners and analyses.
	Testbench Testbench `json:"testbench" yaml:"testbench"`
}

// Testbench configures the testbench wrapper and the simulation sweep.
type Testbench struct {
	// SupplyMV is the supply voltage in millivolts.
	SupplyMV int64 `json:"supply_mv" yaml:"supply_mv"`

	// LoadCapFF is the output load capacitance in femtofarads.
	LoadCapFF int64 `json:"load_cap_ff" yaml:"load_cap_ff"`

	// Corners lists process corners to simulate (e.g. tt, ff, ss).
	Corners []string `json:"corners" yaml:"corners"`

	// Analyses lists the analyses to run per corner and sweep point.
	Analyses []Analysis `json:"analyses" yaml:"analyses"`

	// Sweeps lists swept design variables. The job list is the cross
	// product of corners and sweep values, in declaration order.
	Sweeps []Sweep `json:"sweeps,omitempty" yaml:"sweeps,omitempty"`
}

// Analysis selects one simulation analysis.
type Analysis struct {
	// Type is "tran" or "ac".
	Type string `json:"type" yaml:"type"`

	// StopPS and StepPS configure transient analyses, in picoseconds.
	StopPS int64 `json:"stop_ps,omitempty" yaml:"stop_ps,omitempty"`
	StepPS int64 `json:"step_ps,omitempty" yaml:"step_ps,omitempty"`

	// FStartHz, FStopHz and PointsPerDecade configure AC analyses.
	FStartHz        int64 `json:"fstart_hz,omitempty" yaml:"fstart_hz,omitempty"`
	FStopHz         int64 `json:"fstop_hz,omitempty" yaml:"fstop_hz,omitempty"`
	PointsPerDecade int64 `json:"points_per_decade,omitempty" yaml:"points_per_decade,omitempty"`
}

// Analysis types.
const (
	AnalysisTran = "tran"
	AnalysisAC   = "ac"
)

// Sweep is one swept design variable.
type Sweep struct {
	Param  string  `json:"param" yaml:"param"`
	Values []int64 `json:"values" yaml:"values"`
}

// Params converts LayoutParams into the netlist parameter dictionary
// handed to generators. Floats in the spec are rejected.
func (d *Design) Params() (netlist.Params, error) {
	v, err := netlist.FromAny(d.LayoutParams)
	if err != nil {
		return nil, fmt.Errorf("layout_params: %w", err)
	}
	p, ok := v.(netlist.Dict)
	if !ok {
		return nil, fmt.Errorf("layout_params: expected a mapping, got %T", v)
	}
	return p, nil
}

// applyDefaults fills derived and defaulted fields after validation.
func (d *Design) applyDefaults() error {
	if d.ViewName == "" {
		d.ViewName = "netlist"
	}
	if d.RootDir == "" {
		d.RootDir = "data"
	}
	for i := range d.Testbench.Analyses {
		a := &d.Testbench.Analyses[i]
		if a.Type == AnalysisAC && a.PointsPerDecade == 0 {
			a.PointsPerDecade = 10
		}
	}
	if d.DesignName == "" {
		params, err := d.Params()
		if err != nil {
			return err
		}
		id, err := netlist.MasterID(d.Generator, params)
		if err != nil {
			return err
		}
		d.DesignName = fmt.Sprintf("%s_%s", d.Generator, id[:8])
	}
	return nil
}
