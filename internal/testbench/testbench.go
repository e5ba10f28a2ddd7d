// Package testbench expands a design spec into simulation points and
// wraps the device under test in a stimulus cell.
//
// A point is one combination of swept parameter values; the job list a
// flow runs is the cross product of points, corners and analyses, in
// declaration order.
package testbench

import (
	"fmt"
	"strings"

	"github.com/yrrapt/analogen/internal/netlist"
	"github.com/yrrapt/analogen/internal/spec"
)

// Point is one sweep combination: the full generator parameter set
// with the swept values applied, plus the swept values themselves for
// labeling and persistence.
type Point struct {
	// Label identifies the point inside a run ("base" when nothing is
	// swept, otherwise "param=value" pairs in sweep order).
	Label string

	// Params is the complete generator parameter dictionary at this
	// point.
	Params netlist.Params

	// SweepParams holds only the swept values.
	SweepParams map[string]int64
}

// Points expands the design's sweep declarations into the ordered list
// of simulation points. With no sweeps, the single point "base" with
// the unmodified layout parameters is returned.
func Points(d *spec.Design) ([]Point, error) {
	base, err := d.Params()
	if err != nil {
		return nil, err
	}
	sweeps := d.Testbench.Sweeps
	if len(sweeps) == 0 {
		return []Point{{Label: "base", Params: base}}, nil
	}
	for _, sw := range sweeps {
		if _, ok := base[sw.Param]; !ok {
			return nil, fmt.Errorf("testbench: sweep parameter %q is not a layout parameter", sw.Param)
		}
		if len(sw.Values) == 0 {
			return nil, fmt.Errorf("testbench: sweep parameter %q has no values", sw.Param)
		}
	}

	var points []Point
	values := make([]int64, len(sweeps))
	var expand func(depth int) error
	expand = func(depth int) error {
		if depth == len(sweeps) {
			params := make(netlist.Params, len(base))
			for k, v := range base {
				params[k] = v
			}
			swept := make(map[string]int64, len(sweeps))
			labels := make([]string, len(sweeps))
			for i, sw := range sweeps {
				params[sw.Param] = netlist.Int(values[i])
				swept[sw.Param] = values[i]
				labels[i] = fmt.Sprintf("%s=%d", sw.Param, values[i])
			}
			points = append(points, Point{
				Label:       strings.Join(labels, ","),
				Params:      params,
				SweepParams: swept,
			})
			return nil
		}
		for _, v := range sweeps[depth].Values {
			values[depth] = v
			if err := expand(depth + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := expand(0); err != nil {
		return nil, err
	}
	return points, nil
}

// Wrap builds the testbench cell for one analysis type: the DUT
// instanced as XDUT, a DC supply on the VDD rail, a load capacitor on
// every output and a stimulus source on every input. Transient
// analyses drive a pulse source, AC analyses a unit sine.
//
// The DUT must expose VDD and VSS inout terminals and at least one
// input and one output.
func Wrap(dut *netlist.Cell, tb spec.Testbench, analysis string) (*netlist.Cell, error) {
	var inputs, outputs []string
	haveVDD, haveVSS := false, false
	for _, term := range dut.Terms {
		switch {
		case term.Name == "VDD":
			haveVDD = true
		case term.Name == "VSS":
			haveVSS = true
		case term.Dir == netlist.DirInput:
			inputs = append(inputs, term.Name)
		case term.Dir == netlist.DirOutput:
			outputs = append(outputs, term.Name)
		}
	}
	if !haveVDD || !haveVSS {
		return nil, fmt.Errorf("testbench: cell %s: missing VDD/VSS terminals", dut.Name)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("testbench: cell %s: need at least one input and one output", dut.Name)
	}

	wrapper := netlist.NewCell(dut.Lib, fmt.Sprintf("%s_tb_%s", dut.Name, analysis))

	conns := make(map[string]string, len(dut.Terms))
	for _, term := range dut.Terms {
		conns[term.Name] = term.Name
	}
	wrapper.AddInstance(netlist.Instance{
		Name:   "XDUT",
		Master: netlist.MasterRef{Lib: dut.Lib, Cell: dut.Name},
		Conns:  conns,
	})

	wrapper.AddInstance(netlist.Instance{
		Name:   "VSUP",
		Master: netlist.Vdc,
		Params: netlist.Params{"v": netlist.Int(tb.SupplyMV)},
		Conns:  map[string]string{"p": "VDD", "n": "VSS"},
	})

	for i, out := range outputs {
		wrapper.AddInstance(netlist.Instance{
			Name:   fmt.Sprintf("CL%d", i),
			Master: netlist.Cap,
			Params: netlist.Params{"c": netlist.Int(tb.LoadCapFF)},
			Conns:  map[string]string{"p": out, "n": "VSS"},
		})
	}

	for i, in := range inputs {
		inst := netlist.Instance{
			Name:  fmt.Sprintf("VIN%d", i),
			Conns: map[string]string{"p": in, "n": "VSS"},
		}
		switch analysis {
		case spec.AnalysisTran:
			inst.Master = netlist.Vpulse
			inst.Params = netlist.Params{"v1": netlist.Int(0), "v2": netlist.Int(tb.SupplyMV)}
		case spec.AnalysisAC:
			inst.Master = netlist.Vsin
			inst.Params = netlist.Params{"vdc": netlist.Int(tb.SupplyMV / 2), "vac": netlist.Int(1)}
		default:
			return nil, fmt.Errorf("testbench: unknown analysis type %q", analysis)
		}
		wrapper.AddInstance(inst)
	}

	if err := wrapper.Validate(); err != nil {
		return nil, fmt.Errorf("testbench: %w", err)
	}
	return wrapper, nil
}
