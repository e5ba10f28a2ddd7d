package sim

import (
	"fmt"
	"math"

	"github.com/yrrapt/analogen/internal/spec"
)

// runTran steps the single-pole output through a low-to-high input
// step at 10% of the stop time. Rail-to-rail stages (the inverter)
// swing between the rails; biased stages respond around mid-supply
// with the small-signal gain, clipped to the rails.
func runTran(m *Model, a spec.Analysis) ([]Waveform, error) {
	if a.StopPS <= 0 || a.StepPS <= 0 {
		return nil, fmt.Errorf("tran: bad time range stop=%d step=%d", a.StopPS, a.StepPS)
	}
	n := int(a.StopPS/a.StepPS) + 1
	stepAtPS := float64(a.StopPS) / 10
	dt := float64(a.StepPS) * 1e-12
	tau := m.Tau()

	// Input step amplitude: full swing for rail-to-rail stages, a
	// 10 mV small-signal step otherwise.
	vinLow, vinHigh := 0.0, m.SupplyV
	if !m.RailToRail {
		vinLow, vinHigh = m.SupplyV/2, m.SupplyV/2+0.01
	}

	in := Waveform{Name: "in", XUnit: "ps", YUnit: "V", X: make([]float64, n), Y: make([]float64, n)}
	out := Waveform{Name: "out", XUnit: "ps", YUnit: "V", X: make([]float64, n), Y: make([]float64, n)}

	vout := target(m, vinLow)
	for i := 0; i < n; i++ {
		tPS := float64(i) * float64(a.StepPS)
		vin := vinLow
		if tPS >= stepAtPS {
			vin = vinHigh
		}

		// Exact exponential step toward the static transfer point:
		// the closed-form RC response over dt, stable for any step.
		vt := target(m, vin)
		vout += (vt - vout) * (1 - math.Exp(-dt/tau))

		in.X[i], in.Y[i] = tPS, vin
		out.X[i], out.Y[i] = tPS, vout
	}
	return []Waveform{in, out}, nil
}

// target is the static output the stage relaxes toward for a given
// input level.
func target(m *Model, vin float64) float64 {
	var v float64
	if m.RailToRail {
		if vin > m.SupplyV/2 {
			v = 0
		} else {
			v = m.SupplyV
		}
	} else {
		// Inverting small-signal stage biased at mid-supply.
		v = m.SupplyV/2 - m.GainDC*(vin-m.SupplyV/2)
	}
	return clamp(v, 0, m.SupplyV)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
