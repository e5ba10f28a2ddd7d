// Package schematic generates schematic cellviews from master
// templates: a generator copies its template into the implementation
// library, then arrays, reconnects and parameterizes the symbolic
// instances to match the parameters derived by the layout stage.
package schematic

import (
	"fmt"

	"github.com/yrrapt/analogen/internal/netlist"
)

// Design is a schematic under construction: a deep copy of a template
// cell plus the editing operations generators apply to it.
type Design struct {
	cell *netlist.Cell
}

// FromTemplate copies a template cell into the implementation library
// under a new cell name.
func FromTemplate(tmpl *netlist.Cell, lib, name string) *Design {
	c := tmpl.Clone()
	c.Lib = lib
	c.Name = name
	return &Design{cell: c}
}

// SetParams replaces the parameters of a named instance.
func (d *Design) SetParams(inst string, params netlist.Params) error {
	i, err := d.lookup(inst)
	if err != nil {
		return err
	}
	d.cell.Instances[i].Params = params
	return nil
}

// Reconnect rewires one pin of a named instance to a different net.
func (d *Design) Reconnect(inst, pin, net string) error {
	i, err := d.lookup(inst)
	if err != nil {
		return err
	}
	if _, ok := d.cell.Instances[i].Conns[pin]; !ok {
		return fmt.Errorf("schematic %s: instance %s has no pin %q", d.cell.Name, inst, pin)
	}
	d.cell.Instances[i].Conns[pin] = net
	return nil
}

// Array replaces a named instance with n copies named inst<0..n-1>.
// Connections are copied verbatim; use Reconnect afterwards to fan the
// copies out to distinct nets.
func (d *Design) Array(inst string, n int) error {
	if n < 1 {
		return fmt.Errorf("schematic %s: array count %d for %s", d.cell.Name, n, inst)
	}
	i, err := d.lookup(inst)
	if err != nil {
		return err
	}
	orig := d.cell.Instances[i]
	copies := make([]netlist.Instance, n)
	for k := 0; k < n; k++ {
		ni := orig
		ni.Name = fmt.Sprintf("%s%d", orig.Name, k)
		ni.Conns = make(map[string]string, len(orig.Conns))
		for pin, net := range orig.Conns {
			ni.Conns[pin] = net
		}
		if orig.Params != nil {
			ni.Params = make(netlist.Params, len(orig.Params))
			for k2, v := range orig.Params {
				ni.Params[k2] = v
			}
		}
		copies[k] = ni
	}
	d.cell.Instances = append(d.cell.Instances[:i], append(copies, d.cell.Instances[i+1:]...)...)
	return nil
}

// Remove deletes a named instance (e.g. an unused dummy).
func (d *Design) Remove(inst string) error {
	i, err := d.lookup(inst)
	if err != nil {
		return err
	}
	d.cell.Instances = append(d.cell.Instances[:i], d.cell.Instances[i+1:]...)
	return nil
}

// Cell validates and returns the finished schematic.
func (d *Design) Cell() (*netlist.Cell, error) {
	if err := d.cell.Validate(); err != nil {
		return nil, err
	}
	return d.cell, nil
}

func (d *Design) lookup(inst string) (int, error) {
	for i := range d.cell.Instances {
		if d.cell.Instances[i].Name == inst {
			return i, nil
		}
	}
	return 0, fmt.Errorf("schematic %s: no instance %q", d.cell.Name, inst)
}
