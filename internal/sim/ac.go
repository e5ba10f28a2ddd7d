package sim

import (
	"fmt"
	"math"

	"github.com/yrrapt/analogen/internal/spec"
)

// runAC sweeps the single-pole transfer function over log-spaced
// frequencies: |H| = gain / sqrt(1 + (f/f3db)^2), phase from the pole
// plus the stage inversion.
func runAC(m *Model, a spec.Analysis) ([]Waveform, error) {
	if a.FStartHz <= 0 || a.FStopHz <= a.FStartHz {
		return nil, fmt.Errorf("ac: bad frequency range %d..%d", a.FStartHz, a.FStopHz)
	}
	ppd := a.PointsPerDecade
	if ppd <= 0 {
		ppd = 10
	}

	decades := math.Log10(float64(a.FStopHz) / float64(a.FStartHz))
	n := int(math.Ceil(decades*float64(ppd))) + 1

	mag := Waveform{Name: "gain_mag", XUnit: "Hz", YUnit: "dB", X: make([]float64, n), Y: make([]float64, n)}
	ph := Waveform{Name: "gain_phase", XUnit: "Hz", YUnit: "deg", X: make([]float64, n), Y: make([]float64, n)}

	f3db := m.F3dB()
	for i := 0; i < n; i++ {
		f := float64(a.FStartHz) * math.Pow(10, float64(i)/float64(ppd))
		if f > float64(a.FStopHz) {
			f = float64(a.FStopHz)
		}
		ratio := f / f3db

		mag.X[i] = f
		mag.Y[i] = 20*logAbs(m.GainDC) - 10*math.Log10(1+ratio*ratio)

		ph.X[i] = f
		ph.Y[i] = 180 - math.Atan(ratio)*180/math.Pi
	}
	return []Waveform{mag, ph}, nil
}

// logAbs is log10 of a magnitude, floored to keep zero gain finite.
func logAbs(x float64) float64 {
	x = absf(x)
	if x < 1e-12 {
		x = 1e-12
	}
	return math.Log10(x)
}
