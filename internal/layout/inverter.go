package layout

import (
	"fmt"

	"github.com/yrrapt/analogen/internal/netlist"
)

func init() {
	Register(&Inverter{})
}

// Inverter generates a CMOS inverter: an NMOS row over a VSS rail, a
// PMOS row under a VDD rail, gates tied on M2 track 0 and drains tied
// on the first M2 track past the wider device.
//
// Parameters (integer database units):
//
//	seg_n, seg_p  segments per device
//	w_n, w_p      device widths, nm (>= 300)
//	l             channel length, nm
//	intent        threshold flavor, default "standard"
type Inverter struct{}

// Name implements Generator.
func (*Inverter) Name() string { return "inv" }

// Generate implements Generator.
func (*Inverter) Generate(grid *Grid, params netlist.Params) (*Layout, error) {
	segN, err := intParam(params, "seg_n")
	if err != nil {
		return nil, err
	}
	segP, err := intParam(params, "seg_p")
	if err != nil {
		return nil, err
	}
	wN, err := intParam(params, "w_n")
	if err != nil {
		return nil, err
	}
	wP, err := intParam(params, "w_p")
	if err != nil {
		return nil, err
	}
	lch, err := intParam(params, "l")
	if err != nil {
		return nil, err
	}
	intent, err := stringParam(params, "intent", "standard")
	if err != nil {
		return nil, err
	}

	l := NewLayout("inv", grid)

	nmos, err := mosDevice("XN", netlist.Nmos4, Point{X: 0, Y: 0}, segN, wN, lch, intent, R0,
		pinNets{d: "out", g: "in", s: "VSS", b: "VSS"})
	if err != nil {
		return nil, err
	}
	y0p := wN + routeChannel
	pmos, err := mosDevice("XP", netlist.Pmos4, Point{X: 0, Y: y0p}, segP, wP, lch, intent, MX,
		pinNets{d: "out", g: "in", s: "VDD", b: "VDD"})
	if err != nil {
		return nil, err
	}
	l.AddDevice(nmos)
	l.AddDevice(pmos)

	xmax := mosSegPitch * max64(segN, segP)

	// Supply rails on M1, overlapping the source/bulk pin rows.
	l.AddWire(Wire{Layer: 1, Rect: NewRect(-100, -100, xmax+200, 50), Net: "VSS"})
	l.AddWire(Wire{Layer: 1, Rect: NewRect(-100, y0p+wP-50, xmax+200, y0p+wP+100), Net: "VDD"})

	// Gates tie directly on M2 track 0 (the gate pins live on M2).
	inTrack := NewTrack(2, 0)
	if _, err := l.AddTrackWire(inTrack, wN/2-100, y0p+wP/2+100, "in"); err != nil {
		return nil, err
	}

	// Drains join on the first M2 track past the wider device, reached
	// by M1 stubs from each drain pin.
	outTrack := NewTrack(2, xmax/100+1)
	outCenter, err := grid.TrackCenter(outTrack)
	if err != nil {
		return nil, err
	}
	l.AddWire(Wire{Layer: 1, Rect: NewRect(segN*mosSegPitch-100, wN-100, xmax+200, wN), Net: "out"})
	l.AddWire(Wire{Layer: 1, Rect: NewRect(segP*mosSegPitch-100, y0p, xmax+200, y0p+100), Net: "out"})
	if _, err := l.AddTrackWire(outTrack, wN-150, y0p+150, "out"); err != nil {
		return nil, err
	}
	if _, err := l.AddVia(1, Point{X: outCenter, Y: wN - 50}, "out"); err != nil {
		return nil, err
	}
	if _, err := l.AddVia(1, Point{X: outCenter, Y: y0p + 50}, "out"); err != nil {
		return nil, err
	}

	inRect, err := grid.TrackRect(inTrack, wN/2-50, wN/2+50)
	if err != nil {
		return nil, err
	}
	outRect, err := grid.TrackRect(outTrack, wN-100, wN)
	if err != nil {
		return nil, err
	}
	l.AddPort("in", netlist.DirInput, 2, inRect)
	l.AddPort("out", netlist.DirOutput, 2, outRect)
	l.AddPort("VDD", netlist.DirInout, 1, NewRect(0, y0p+wP-50, 200, y0p+wP+100))
	l.AddPort("VSS", netlist.DirInout, 1, NewRect(0, -100, 200, 50))

	l.SchParams = netlist.Params{
		"seg_n":  netlist.Int(segN),
		"seg_p":  netlist.Int(segP),
		"w_n":    netlist.Int(wN),
		"w_p":    netlist.Int(wP),
		"l":      netlist.Int(lch),
		"intent": netlist.String(intent),
	}

	if bb := l.BBox(); bb.Empty() {
		return nil, fmt.Errorf("inv: empty layout")
	}
	return l, nil
}
