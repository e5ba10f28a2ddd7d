// Package lvs checks a layout-extracted netlist against the generated
// schematic. Identity is structural: canonical cell signatures make
// the comparison independent of instance order, instance names and
// internal net naming.
package lvs

import (
	"fmt"
	"sort"

	"github.com/yrrapt/analogen/internal/netlist"
)

// Mismatch kinds reported by Compare.
const (
	MismatchTerminal     = "terminal"
	MismatchDeviceCount  = "device_count"
	MismatchConnectivity = "connectivity"
)

// Mismatch is one discrepancy between layout and schematic.
type Mismatch struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Report is the outcome of an LVS run.
type Report struct {
	Pass            bool       `json:"pass"`
	LayoutCellID    string     `json:"layout_cell_id"`
	SchematicCellID string     `json:"schematic_cell_id"`
	Mismatches      []Mismatch `json:"mismatches,omitempty"`
}

// Summary returns a one-line description of the report, suitable for
// trace details and log lines.
func (r *Report) Summary() string {
	if r.Pass {
		return "clean"
	}
	counts := make(map[string]int)
	for _, m := range r.Mismatches {
		counts[m.Kind]++
	}
	s := fmt.Sprintf("%d mismatches", len(r.Mismatches))
	for _, kind := range sortedKeys(counts) {
		s += fmt.Sprintf(", %s=%d", kind, counts[kind])
	}
	return s
}

// Compare runs LVS between an extracted layout cell and a schematic
// cell. A passing report means the two are structurally identical up
// to instance order, instance names and internal net names.
func Compare(layout, schematic *netlist.Cell) (*Report, error) {
	lid, err := netlist.CellID(layout)
	if err != nil {
		return nil, fmt.Errorf("lvs: layout cell: %w", err)
	}
	sid, err := netlist.CellID(schematic)
	if err != nil {
		return nil, fmt.Errorf("lvs: schematic cell: %w", err)
	}

	rep := &Report{LayoutCellID: lid, SchematicCellID: sid}

	rep.Mismatches = append(rep.Mismatches, compareTerms(layout, schematic)...)
	rep.Mismatches = append(rep.Mismatches, compareDeviceCounts(layout, schematic)...)

	eq, err := netlist.Equal(layout, schematic)
	if err != nil {
		return nil, fmt.Errorf("lvs: %w", err)
	}
	if !eq && len(rep.Mismatches) == 0 {
		// Same terminals and device counts but different wiring or
		// device parameters.
		rep.Mismatches = append(rep.Mismatches, Mismatch{
			Kind:   MismatchConnectivity,
			Detail: "device connectivity or parameters differ between layout and schematic",
		})
	}

	rep.Pass = eq
	return rep, nil
}

func compareTerms(layout, schematic *netlist.Cell) []Mismatch {
	var out []Mismatch
	lt := termSet(layout)
	st := termSet(schematic)
	for _, name := range sortedKeys(lt) {
		if dir, ok := st[name]; !ok {
			out = append(out, Mismatch{
				Kind:   MismatchTerminal,
				Detail: fmt.Sprintf("terminal %s present in layout only", name),
			})
		} else if dir != lt[name] {
			out = append(out, Mismatch{
				Kind:   MismatchTerminal,
				Detail: fmt.Sprintf("terminal %s direction: layout %s, schematic %s", name, lt[name], dir),
			})
		}
	}
	for _, name := range sortedKeys(st) {
		if _, ok := lt[name]; !ok {
			out = append(out, Mismatch{
				Kind:   MismatchTerminal,
				Detail: fmt.Sprintf("terminal %s present in schematic only", name),
			})
		}
	}
	return out
}

func compareDeviceCounts(layout, schematic *netlist.Cell) []Mismatch {
	var out []Mismatch
	lc := masterCounts(layout)
	sc := masterCounts(schematic)
	masters := make(map[string]bool)
	for m := range lc {
		masters[m] = true
	}
	for m := range sc {
		masters[m] = true
	}
	for _, m := range sortedKeys(masters) {
		if lc[m] != sc[m] {
			out = append(out, Mismatch{
				Kind:   MismatchDeviceCount,
				Detail: fmt.Sprintf("device %s: layout has %d, schematic has %d", m, lc[m], sc[m]),
			})
		}
	}
	return out
}

func termSet(c *netlist.Cell) map[string]netlist.Direction {
	out := make(map[string]netlist.Direction, len(c.Terms))
	for _, t := range c.Terms {
		out[t.Name] = t.Dir
	}
	return out
}

func masterCounts(c *netlist.Cell) map[string]int {
	out := make(map[string]int, len(c.Instances))
	for _, inst := range c.Instances {
		out[inst.Master.String()]++
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
