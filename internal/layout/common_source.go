package layout

import (
	"github.com/yrrapt/analogen/internal/netlist"
)

func init() {
	Register(&CommonSource{})
}

// CommonSource generates a resistor-loaded common-source amplifier:
// an NMOS driver over a VSS rail with an ideal resistor load up to the
// VDD rail.
//
// Parameters (integer database units):
//
//	seg     driver segments
//	w       driver width, nm (>= 300)
//	l       channel length, nm
//	rload   load resistance, ohm
//	intent  threshold flavor, default "standard"
type CommonSource struct{}

// Name implements Generator.
func (*CommonSource) Name() string { return "common_source" }

// resistor body dimensions, nm
const (
	resWidth  = 400
	resHeight = 800
)

// Generate implements Generator.
func (*CommonSource) Generate(grid *Grid, params netlist.Params) (*Layout, error) {
	seg, err := intParam(params, "seg")
	if err != nil {
		return nil, err
	}
	w, err := intParam(params, "w")
	if err != nil {
		return nil, err
	}
	lch, err := intParam(params, "l")
	if err != nil {
		return nil, err
	}
	rload, err := intParam(params, "rload")
	if err != nil {
		return nil, err
	}
	intent, err := stringParam(params, "intent", "standard")
	if err != nil {
		return nil, err
	}

	l := NewLayout("common_source", grid)

	nmos, err := mosDevice("XM", netlist.Nmos4, Point{X: 0, Y: 0}, seg, w, lch, intent, R0,
		pinNets{d: "out", g: "in", s: "VSS", b: "VSS"})
	if err != nil {
		return nil, err
	}
	l.AddDevice(nmos)

	// Resistor load between the output and the VDD rail.
	y0r := w + routeChannel
	l.AddDevice(Device{
		Name:   "XR",
		Master: netlist.Res,
		Params: netlist.Params{"r": netlist.Int(rload)},
		Box:    NewRect(0, y0r, resWidth, y0r+resHeight),
		Pins: map[string]Pin{
			"p": {Layer: 1, Rect: NewRect(150, y0r, 250, y0r+100), Net: "out"},
			"n": {Layer: 1, Rect: NewRect(150, y0r+resHeight-100, 250, y0r+resHeight), Net: "VDD"},
		},
	})

	xmax := max64(seg*mosSegPitch, resWidth)

	l.AddWire(Wire{Layer: 1, Rect: NewRect(-100, -100, xmax+200, 50), Net: "VSS"})
	l.AddWire(Wire{Layer: 1, Rect: NewRect(-100, y0r+resHeight-50, xmax+200, y0r+resHeight+100), Net: "VDD"})

	inTrack := NewTrack(2, 0)
	if _, err := l.AddTrackWire(inTrack, w/2-100, w/2+100, "in"); err != nil {
		return nil, err
	}

	outTrack := NewTrack(2, xmax/100+1)
	outCenter, err := grid.TrackCenter(outTrack)
	if err != nil {
		return nil, err
	}
	l.AddWire(Wire{Layer: 1, Rect: NewRect(seg*mosSegPitch-100, w-100, xmax+200, w), Net: "out"})
	l.AddWire(Wire{Layer: 1, Rect: NewRect(150, y0r, xmax+200, y0r+100), Net: "out"})
	if _, err := l.AddTrackWire(outTrack, w-150, y0r+150, "out"); err != nil {
		return nil, err
	}
	if _, err := l.AddVia(1, Point{X: outCenter, Y: w - 50}, "out"); err != nil {
		return nil, err
	}
	if _, err := l.AddVia(1, Point{X: outCenter, Y: y0r + 50}, "out"); err != nil {
		return nil, err
	}

	inRect, err := grid.TrackRect(inTrack, w/2-50, w/2+50)
	if err != nil {
		return nil, err
	}
	outRect, err := grid.TrackRect(outTrack, w-100, w)
	if err != nil {
		return nil, err
	}
	l.AddPort("in", netlist.DirInput, 2, inRect)
	l.AddPort("out", netlist.DirOutput, 2, outRect)
	l.AddPort("VDD", netlist.DirInout, 1, NewRect(0, y0r+resHeight-50, 200, y0r+resHeight+100))
	l.AddPort("VSS", netlist.DirInout, 1, NewRect(0, -100, 200, 50))

	l.SchParams = netlist.Params{
		"seg":    netlist.Int(seg),
		"w":      netlist.Int(w),
		"l":      netlist.Int(lch),
		"rload":  netlist.Int(rload),
		"intent": netlist.String(intent),
	}
	return l, nil
}
