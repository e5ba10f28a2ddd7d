// Package netlist defines the design database IR shared by the layout,
// schematic, LVS and testbench stages: cells, instances, terminals and
// their canonical (content-addressed) identity.
package netlist

import (
	"fmt"
	"sort"
)

// Direction classifies a cell terminal.
type Direction string

const (
	DirInput  Direction = "input"
	DirOutput Direction = "output"
	DirInout  Direction = "inout"
)

// ValidDirections defines allowed terminal directions.
var ValidDirections = map[Direction]bool{
	DirInput:  true,
	DirOutput: true,
	DirInout:  true,
}

// Term is a cell terminal (port).
type Term struct {
	Name string    `json:"name"`
	Dir  Direction `json:"dir"`
}

// MasterRef identifies the master cell an instance points at.
type MasterRef struct {
	Lib  string `json:"lib"`
	Cell string `json:"cell"`
}

func (m MasterRef) String() string {
	return m.Lib + "/" + m.Cell
}

// PrimLib is the library holding device and source primitives.
// Primitives are leaf masters: LVS compares them by reference and
// parameters instead of descending into them.
const PrimLib = "analogen_prim"

// Device and source primitive masters.
var (
	Nmos4  = MasterRef{Lib: PrimLib, Cell: "nmos4"}
	Pmos4  = MasterRef{Lib: PrimLib, Cell: "pmos4"}
	Res    = MasterRef{Lib: PrimLib, Cell: "res"}
	Cap    = MasterRef{Lib: PrimLib, Cell: "cap"}
	Vdc    = MasterRef{Lib: PrimLib, Cell: "vdc"}
	Vpulse = MasterRef{Lib: PrimLib, Cell: "vpulse"}
	Vsin   = MasterRef{Lib: PrimLib, Cell: "vsin"}
)

// Instance is a placed reference to a master cell.
type Instance struct {
	Name   string    `json:"name"`
	Master MasterRef `json:"master"`
	// Params are the device parameters (w, l, nf, intent, ...) in
	// integer database units.
	Params Params `json:"params,omitempty"`
	// Conns maps master pin names to net names in the parent cell.
	Conns map[string]string `json:"conns"`
}

// Cell is a single schematic or extracted-layout cellview.
type Cell struct {
	Lib       string     `json:"lib"`
	Name      string     `json:"name"`
	Terms     []Term     `json:"terms"`
	Instances []Instance `json:"instances"`
}

// NewCell creates an empty cell with the given terminals.
func NewCell(lib, name string, terms ...Term) *Cell {
	return &Cell{Lib: lib, Name: name, Terms: terms}
}

// AddInstance appends an instance to the cell.
func (c *Cell) AddInstance(inst Instance) {
	c.Instances = append(c.Instances, inst)
}

// Clone returns a deep copy of the cell.
func (c *Cell) Clone() *Cell {
	out := &Cell{Lib: c.Lib, Name: c.Name}
	out.Terms = append([]Term(nil), c.Terms...)
	out.Instances = make([]Instance, len(c.Instances))
	for i, inst := range c.Instances {
		ni := inst
		ni.Conns = make(map[string]string, len(inst.Conns))
		for k, v := range inst.Conns {
			ni.Conns[k] = v
		}
		if inst.Params != nil {
			ni.Params = make(Params, len(inst.Params))
			for k, v := range inst.Params {
				ni.Params[k] = v
			}
		}
		out.Instances[i] = ni
	}
	return out
}

// Term returns the terminal with the given name, if present.
func (c *Cell) Term(name string) (Term, bool) {
	for _, t := range c.Terms {
		if t.Name == name {
			return t, true
		}
	}
	return Term{}, false
}

// Nets returns all net names referenced by the cell, sorted.
// Terminal names are nets even when no instance connects to them.
func (c *Cell) Nets() []string {
	seen := make(map[string]bool)
	for _, t := range c.Terms {
		seen[t.Name] = true
	}
	for _, inst := range c.Instances {
		for _, net := range inst.Conns {
			seen[net] = true
		}
	}
	nets := make([]string, 0, len(seen))
	for n := range seen {
		nets = append(nets, n)
	}
	sort.Strings(nets)
	return nets
}

// Validate checks structural consistency:
//   - terminal names and directions are well formed and unique
//   - instance names are unique
//   - every instance pin is connected to a named net
func (c *Cell) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("cell has no name")
	}
	termSeen := make(map[string]bool, len(c.Terms))
	for _, t := range c.Terms {
		if t.Name == "" {
			return fmt.Errorf("cell %s: terminal with empty name", c.Name)
		}
		if !ValidDirections[t.Dir] {
			return fmt.Errorf("cell %s: terminal %s has invalid direction %q", c.Name, t.Name, t.Dir)
		}
		if termSeen[t.Name] {
			return fmt.Errorf("cell %s: duplicate terminal %s", c.Name, t.Name)
		}
		termSeen[t.Name] = true
	}
	instSeen := make(map[string]bool, len(c.Instances))
	for _, inst := range c.Instances {
		if inst.Name == "" {
			return fmt.Errorf("cell %s: instance with empty name", c.Name)
		}
		if instSeen[inst.Name] {
			return fmt.Errorf("cell %s: duplicate instance %s", c.Name, inst.Name)
		}
		instSeen[inst.Name] = true
		if len(inst.Conns) == 0 {
			return fmt.Errorf("cell %s: instance %s has no connections", c.Name, inst.Name)
		}
		for pin, net := range inst.Conns {
			if net == "" {
				return fmt.Errorf("cell %s: instance %s pin %s connected to empty net", c.Name, inst.Name, pin)
			}
		}
	}
	return nil
}
