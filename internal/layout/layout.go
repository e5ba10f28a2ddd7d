// Package layout generates parameterized circuit layouts on a routing
// grid and extracts netlists from them for LVS.
package layout

import (
	"fmt"

	"github.com/yrrapt/analogen/internal/netlist"
)

// Pin is a net-tagged shape belonging to a device.
type Pin struct {
	Layer int    `json:"layer"`
	Rect  Rect   `json:"rect"`
	Net   string `json:"net"`
}

// Device is a placed primitive (transistor, resistor, capacitor).
type Device struct {
	Name   string            `json:"name"`
	Master netlist.MasterRef `json:"master"`
	Params netlist.Params    `json:"params"`
	Box    Rect              `json:"box"`
	Pins   map[string]Pin    `json:"pins"` // master pin name -> shape
}

// Wire is a routed shape on a metal layer.
type Wire struct {
	Layer int    `json:"layer"`
	Rect  Rect   `json:"rect"`
	Net   string `json:"net"`
}

// Via connects two adjacent layers where it overlaps shapes on both.
type Via struct {
	Bot  int    `json:"bot"`
	Top  int    `json:"top"`
	Rect Rect   `json:"rect"`
	Net  string `json:"net"`
}

// Port is an exported pin of the layout.
type Port struct {
	Name  string            `json:"name"`
	Dir   netlist.Direction `json:"dir"`
	Layer int               `json:"layer"`
	Rect  Rect              `json:"rect"`
}

// Layout is the output of a layout generator: placed devices, routed
// wires and vias, exported ports, and the schematic parameters derived
// during generation (handed to the schematic stage by the flow).
type Layout struct {
	Name    string   `json:"name"`
	Devices []Device `json:"devices"`
	Wires   []Wire   `json:"wires"`
	Vias    []Via    `json:"vias"`
	Ports   []Port   `json:"ports"`

	// SchParams are the schematic generator parameters derived from
	// the placed devices.
	SchParams netlist.Params `json:"sch_params"`

	grid *Grid
}

// NewLayout creates an empty layout on the given grid.
func NewLayout(name string, grid *Grid) *Layout {
	return &Layout{Name: name, grid: grid}
}

// Grid returns the routing grid the layout was generated on.
func (l *Layout) Grid() *Grid { return l.grid }

// AddDevice places a device.
func (l *Layout) AddDevice(d Device) {
	l.Devices = append(l.Devices, d)
}

// AddWire routes a wire shape.
func (l *Layout) AddWire(w Wire) {
	l.Wires = append(l.Wires, w)
}

// AddTrackWire routes a wire along a grid track and returns it.
func (l *Layout) AddTrackWire(t TrackID, lo, hi int64, net string) (Wire, error) {
	r, err := l.grid.TrackRect(t, lo, hi)
	if err != nil {
		return Wire{}, fmt.Errorf("net %s: %w", net, err)
	}
	w := Wire{Layer: t.Layer, Rect: r, Net: net}
	l.AddWire(w)
	return w, nil
}

// AddVia drops a via between two adjacent layers centered at p.
func (l *Layout) AddVia(bot int, p Point, net string) (Via, error) {
	if bot < 1 || bot >= l.grid.NumLayers() {
		return Via{}, fmt.Errorf("net %s: no via from layer %d", net, bot)
	}
	const half = 40 // via enclosure half-size, nm
	v := Via{
		Bot:  bot,
		Top:  bot + 1,
		Rect: NewRect(p.X-half, p.Y-half, p.X+half, p.Y+half),
		Net:  net,
	}
	l.Vias = append(l.Vias, v)
	return v, nil
}

// AddPort exports a pin shape under the given terminal name.
func (l *Layout) AddPort(name string, dir netlist.Direction, layerID int, r Rect) {
	l.Ports = append(l.Ports, Port{Name: name, Dir: dir, Layer: layerID, Rect: r})
}

// BBox returns the bounding box over all shapes.
func (l *Layout) BBox() Rect {
	var bb Rect
	for _, d := range l.Devices {
		bb = bb.Union(d.Box)
	}
	for _, w := range l.Wires {
		bb = bb.Union(w.Rect)
	}
	for _, v := range l.Vias {
		bb = bb.Union(v.Rect)
	}
	for _, p := range l.Ports {
		bb = bb.Union(p.Rect)
	}
	return bb
}
