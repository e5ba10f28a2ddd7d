package layout

import (
	"fmt"
	"sort"

	"github.com/yrrapt/analogen/internal/netlist"
)

// Extract derives a netlist cell from a layout by tracing geometric
// connectivity.
//
// Every net-tagged shape (device pin, wire, via, port) becomes a node.
// Shapes on the same layer that overlap are connected; a via connects
// the shapes it overlaps on its bottom and top layers. Extraction
// fails when a net is drawn as more than one connected component
// (open) or when one component carries two net names (short), so a
// generator with broken wiring cannot pass LVS by netlist bookkeeping
// alone.
func Extract(l *Layout, lib string) (*netlist.Cell, error) {
	type shape struct {
		layer int // 0 for vias: handled separately
		rect  Rect
		net   string
		via   *Via
		desc  string
	}

	var shapes []shape
	for di := range l.Devices {
		d := &l.Devices[di]
		for _, pinName := range sortedPinNames(d.Pins) {
			p := d.Pins[pinName]
			if p.Net == "" {
				return nil, fmt.Errorf("extract %s: device %s pin %s has no net", l.Name, d.Name, pinName)
			}
			shapes = append(shapes, shape{
				layer: p.Layer, rect: p.Rect, net: p.Net,
				desc: fmt.Sprintf("%s.%s", d.Name, pinName),
			})
		}
	}
	for i, w := range l.Wires {
		if w.Net == "" {
			return nil, fmt.Errorf("extract %s: wire %d has no net", l.Name, i)
		}
		shapes = append(shapes, shape{layer: w.Layer, rect: w.Rect, net: w.Net, desc: fmt.Sprintf("wire[%d]", i)})
	}
	portSeen := make(map[string]bool, len(l.Ports))
	for _, p := range l.Ports {
		if portSeen[p.Name] {
			return nil, fmt.Errorf("extract %s: duplicate port %s", l.Name, p.Name)
		}
		portSeen[p.Name] = true
		shapes = append(shapes, shape{layer: p.Layer, rect: p.Rect, net: p.Name, desc: "port " + p.Name})
	}
	for i := range l.Vias {
		v := &l.Vias[i]
		if v.Net == "" {
			return nil, fmt.Errorf("extract %s: via %d has no net", l.Name, i)
		}
		shapes = append(shapes, shape{rect: v.Rect, net: v.Net, via: v, desc: fmt.Sprintf("via[%d]", i)})
	}

	uf := newUnionFind(len(shapes))
	for i := 0; i < len(shapes); i++ {
		for j := i + 1; j < len(shapes); j++ {
			a, b := &shapes[i], &shapes[j]
			if !a.rect.Overlaps(b.rect) {
				continue
			}
			switch {
			case a.via != nil && b.via != nil:
				if a.via.Bot == b.via.Bot {
					uf.union(i, j)
				}
			case a.via != nil:
				if b.layer == a.via.Bot || b.layer == a.via.Top {
					uf.union(i, j)
				}
			case b.via != nil:
				if a.layer == b.via.Bot || a.layer == b.via.Top {
					uf.union(i, j)
				}
			default:
				if a.layer == b.layer {
					uf.union(i, j)
				}
			}
		}
	}

	// Shorts: one component must not carry two net names.
	compNet := make(map[int]int) // component root -> first shape index
	for i := range shapes {
		root := uf.find(i)
		if first, ok := compNet[root]; ok {
			if shapes[first].net != shapes[i].net {
				return nil, fmt.Errorf("extract %s: short between nets %q (%s) and %q (%s)",
					l.Name, shapes[first].net, shapes[first].desc, shapes[i].net, shapes[i].desc)
			}
		} else {
			compNet[root] = i
		}
	}

	// Opens: all shapes of one net must share a component.
	netRoot := make(map[string]int)
	for i := range shapes {
		root := uf.find(i)
		if prev, ok := netRoot[shapes[i].net]; ok {
			if prev != root {
				return nil, fmt.Errorf("extract %s: net %q is discontinuous (%s not connected)",
					l.Name, shapes[i].net, shapes[i].desc)
			}
		} else {
			netRoot[shapes[i].net] = root
		}
	}

	cell := netlist.NewCell(lib, l.Name)
	for _, p := range l.Ports {
		cell.Terms = append(cell.Terms, netlist.Term{Name: p.Name, Dir: p.Dir})
	}
	for _, d := range l.Devices {
		conns := make(map[string]string, len(d.Pins))
		for pin, p := range d.Pins {
			conns[pin] = p.Net
		}
		cell.AddInstance(netlist.Instance{
			Name:   d.Name,
			Master: d.Master,
			Params: d.Params,
			Conns:  conns,
		})
	}
	if err := cell.Validate(); err != nil {
		return nil, fmt.Errorf("extract %s: %w", l.Name, err)
	}
	return cell, nil
}

func sortedPinNames(pins map[string]Pin) []string {
	names := make([]string, 0, len(pins))
	for n := range pins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// unionFind is a plain union-find with path compression.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(i, j int) {
	ri, rj := u.find(i), u.find(j)
	if ri != rj {
		u.parent[ri] = rj
	}
}
