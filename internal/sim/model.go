// Package sim runs behavioral simulations of generated designs: a
// first-order hand-analysis model is derived from the DUT netlist and
// evaluated with transient and AC analyses across corners and sweep
// points. It is not a circuit solver; it exists to close the loop from
// generation through measurement with deterministic numbers.
package sim

import (
	"fmt"
	"math"

	"github.com/yrrapt/analogen/internal/netlist"
)

// First-order model constants.
const (
	knUAperV2  = 200e-6 // NMOS process transconductance, A/V^2
	kpUAperV2  = 80e-6  // PMOS process transconductance, A/V^2
	vthBaseMV  = 400    // nominal threshold, mV
	cgPerUm2FF = 1.2    // gate cap per um^2 of device area, fF
	lambdaPerV = 0.1    // channel length modulation
)

// Model is the small-signal/large-signal behavioral model of a DUT:
// a single dominant pole at the output with an inverting DC gain and a
// drive conductance that sets the transient time constant.
type Model struct {
	// GainDC is the magnitude of the inverting DC gain, V/V.
	GainDC float64
	// RoutOhm is the output resistance.
	RoutOhm float64
	// CloadF is the total load capacitance (external + device).
	CloadF float64
	// SupplyV is the supply voltage.
	SupplyV float64
	// Inverting large-signal rail-to-rail behavior (true for the
	// inverter, false for a biased amplifier stage).
	RailToRail bool
}

// F3dB returns the dominant pole frequency.
func (m *Model) F3dB() float64 {
	return 1.0 / (2 * math.Pi * m.RoutOhm * m.CloadF)
}

// Tau returns the output time constant.
func (m *Model) Tau() float64 {
	return m.RoutOhm * m.CloadF
}

// deviceSums aggregates transistor geometry per polarity.
type deviceSums struct {
	gmN, gmP   float64 // sum of seg*w/l
	areaUm2    float64
	rloadOhm   float64
	hasRes     bool
	nmos, pmos int
}

// ModelFromCell derives the behavioral model from a DUT cell at one
// corner. Unknown device masters are rejected so a bad netlist fails
// loudly rather than simulating as an empty circuit.
func ModelFromCell(cell *netlist.Cell, corner Corner, supplyMV, loadCapFF int64) (*Model, error) {
	var sums deviceSums
	for _, inst := range cell.Instances {
		switch inst.Master {
		case netlist.Nmos4, netlist.Pmos4:
			w, err := instInt(inst, "w")
			if err != nil {
				return nil, err
			}
			l, err := instInt(inst, "l")
			if err != nil {
				return nil, err
			}
			seg, err := instInt(inst, "seg")
			if err != nil {
				return nil, err
			}
			ratio := float64(seg) * float64(w) / float64(l)
			if inst.Master == netlist.Nmos4 {
				sums.gmN += ratio
				sums.nmos++
			} else {
				sums.gmP += ratio
				sums.pmos++
			}
			sums.areaUm2 += float64(seg) * float64(w) * float64(l) * 1e-6
		case netlist.Res:
			r, err := instInt(inst, "r")
			if err != nil {
				return nil, err
			}
			sums.rloadOhm += float64(r)
			sums.hasRes = true
		case netlist.Cap:
			c, err := instInt(inst, "c")
			if err != nil {
				return nil, err
			}
			loadCapFF += c
		default:
			return nil, fmt.Errorf("sim: cell %s: no model for device %s", cell.Name, inst.Master)
		}
	}
	if sums.nmos == 0 && sums.pmos == 0 {
		return nil, fmt.Errorf("sim: cell %s: no active devices", cell.Name)
	}

	supplyV := float64(supplyMV) / 1000
	veff := supplyV/2 - float64(vthBaseMV+corner.VthMV)/1000
	if veff <= 0.01 {
		veff = 0.01 // deep subthreshold; keep the model finite
	}

	gm := corner.Mobility * veff * (knUAperV2*sums.gmN + kpUAperV2*sums.gmP)

	var rout float64
	if sums.hasRes {
		rout = sums.rloadOhm
	} else {
		// Channel-length modulation estimate from the driver itself.
		id := gm * veff / 2
		rout = 1 / (lambdaPerV * id)
	}

	cload := float64(loadCapFF)*1e-15 + sums.areaUm2*cgPerUm2FF*1e-15

	return &Model{
		GainDC:     gm * rout,
		RoutOhm:    rout,
		CloadF:     cload,
		SupplyV:    supplyV,
		RailToRail: !sums.hasRes && sums.nmos > 0 && sums.pmos > 0,
	}, nil
}

func instInt(inst netlist.Instance, key string) (int64, error) {
	v, ok := inst.Params[key]
	if !ok {
		return 0, fmt.Errorf("sim: instance %s: missing device parameter %q", inst.Name, key)
	}
	n, ok := v.(netlist.Int)
	if !ok {
		return 0, fmt.Errorf("sim: instance %s: parameter %q is not an integer", inst.Name, key)
	}
	return int64(n), nil
}
