package layout

import (
	"fmt"

	"github.com/yrrapt/analogen/internal/netlist"
)

// MOS placement constants, nm. Pin shapes are 100x100 squares on M1
// so they reliably overlap default-width track wires.
const (
	mosSegPitch  = 200 // horizontal extent per segment
	pinHalf      = 50
	railHeight   = 150 // supply rail thickness
	routeChannel = 600 // vertical gap between stacked device rows
	minMOSWidth  = 300 // keeps g/d/s pin shapes from overlapping
)

// pinNets names the nets a MOS's four pins connect to.
type pinNets struct {
	d, g, s, b string
}

// mosDevice places a four-terminal MOS with its lower-left corner at
// origin. Pins are laid out in R0 and mapped through orient about the
// device box: R0 rows face their source/bulk pins down (NMOS over a
// VSS rail), MX rows face them up (PMOS under a VDD rail). The gate
// pin sits at mid-height on the left edge, centered on M2 track 0 when
// origin.X is 0; the drain pin sits on the channel-facing right edge.
func mosDevice(name string, master netlist.MasterRef, origin Point, seg, w, lch int64, intent string, orient Orient, nets pinNets) (Device, error) {
	if w < minMOSWidth {
		return Device{}, fmt.Errorf("device %s: width %d below minimum %d", name, w, minMOSWidth)
	}
	box := NewRect(origin.X, origin.Y, origin.X+seg*mosSegPitch, origin.Y+w)

	pinAt := func(c Point) Rect {
		r := NewRect(c.X-pinHalf, c.Y-pinHalf, c.X+pinHalf, c.Y+pinHalf)
		return orient.ApplyIn(r, box)
	}

	// R0 y coordinates, measured from the box bottom.
	yLow := origin.Y + pinHalf      // source/bulk edge
	yHigh := origin.Y + w - pinHalf // drain edge
	yMid := origin.Y + w/2

	right := origin.X + seg*mosSegPitch - pinHalf
	left := origin.X + pinHalf

	pins := map[string]Pin{
		"g": {Layer: 2, Rect: pinAt(Point{X: left, Y: yMid}), Net: nets.g},
		"d": {Layer: 1, Rect: pinAt(Point{X: right, Y: yHigh}), Net: nets.d},
		"s": {Layer: 1, Rect: pinAt(Point{X: right, Y: yLow}), Net: nets.s},
		"b": {Layer: 1, Rect: pinAt(Point{X: left, Y: yLow}), Net: nets.b},
	}

	return Device{
		Name:   name,
		Master: master,
		Params: netlist.Params{
			"w":      netlist.Int(w),
			"l":      netlist.Int(lch),
			"seg":    netlist.Int(seg),
			"intent": netlist.String(intent),
		},
		Box:  box,
		Pins: pins,
	}, nil
}
