package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yrrapt/analogen/internal/netlist"
)

func invParams() netlist.Params {
	return netlist.Params{
		"seg_n":  netlist.Int(2),
		"seg_p":  netlist.Int(4),
		"w_n":    netlist.Int(500),
		"w_p":    netlist.Int(1000),
		"l":      netlist.Int(40),
		"intent": netlist.String("lvt"),
	}
}

func csParams() netlist.Params {
	return netlist.Params{
		"seg":   netlist.Int(4),
		"w":     netlist.Int(600),
		"l":     netlist.Int(60),
		"rload": netlist.Int(5000),
	}
}

func TestExtract_Inverter(t *testing.T) {
	gen, err := Lookup("inv")
	require.NoError(t, err)

	lay, err := gen.Generate(DefaultGrid(), invParams())
	require.NoError(t, err)

	cell, err := Extract(lay, "demo_lib")
	require.NoError(t, err)

	assert.Equal(t, "inv", cell.Name)
	assert.Len(t, cell.Instances, 2)
	assert.ElementsMatch(t, []string{"VDD", "VSS", "in", "out"}, cell.Nets())

	// Extracted connectivity must match the generator's intent.
	for _, inst := range cell.Instances {
		assert.Equal(t, "out", inst.Conns["d"], inst.Name)
		assert.Equal(t, "in", inst.Conns["g"], inst.Name)
	}
}

func TestExtract_CommonSource(t *testing.T) {
	gen, err := Lookup("common_source")
	require.NoError(t, err)

	lay, err := gen.Generate(DefaultGrid(), csParams())
	require.NoError(t, err)

	cell, err := Extract(lay, "demo_lib")
	require.NoError(t, err)

	require.Len(t, cell.Instances, 2)
	var res *netlist.Instance
	for i := range cell.Instances {
		if cell.Instances[i].Master == netlist.Res {
			res = &cell.Instances[i]
		}
	}
	require.NotNil(t, res, "resistor load extracted")
	assert.Equal(t, "out", res.Conns["p"])
	assert.Equal(t, "VDD", res.Conns["n"])
	assert.Equal(t, netlist.Int(5000), res.Params["r"])
}

func TestExtract_DetectsOpenNet(t *testing.T) {
	gen, err := Lookup("inv")
	require.NoError(t, err)
	lay, err := gen.Generate(DefaultGrid(), invParams())
	require.NoError(t, err)

	// Remove the gate tie; "in" splits into disconnected pieces.
	kept := lay.Wires[:0]
	for _, w := range lay.Wires {
		if !(w.Layer == 2 && w.Net == "in") {
			kept = append(kept, w)
		}
	}
	lay.Wires = kept

	_, err = Extract(lay, "demo_lib")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discontinuous")
}

func TestExtract_DetectsShort(t *testing.T) {
	gen, err := Lookup("inv")
	require.NoError(t, err)
	lay, err := gen.Generate(DefaultGrid(), invParams())
	require.NoError(t, err)

	// A rogue M2 strap across the in and out tracks shorts them.
	bb := lay.BBox()
	lay.AddWire(Wire{Layer: 2, Rect: NewRect(bb.X0, 400, bb.X1, 500), Net: "in"})

	_, err = Extract(lay, "demo_lib")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short between nets")
}

func TestExtract_MissingNetTag(t *testing.T) {
	lay := NewLayout("bad", DefaultGrid())
	lay.AddWire(Wire{Layer: 1, Rect: NewRect(0, 0, 100, 100)})
	_, err := Extract(lay, "demo_lib")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no net")
}

func TestGenerate_MissingParam(t *testing.T) {
	gen, err := Lookup("inv")
	require.NoError(t, err)

	p := invParams()
	delete(p, "w_p")
	_, err = gen.Generate(DefaultGrid(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"w_p"`)
}

func TestGenerate_WidthBelowMinimum(t *testing.T) {
	gen, err := Lookup("inv")
	require.NoError(t, err)

	p := invParams()
	p["w_n"] = netlist.Int(100)
	_, err = gen.Generate(DefaultGrid(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum")
}

func TestDatabase_CachesByParamHash(t *testing.T) {
	db := NewDatabase(DefaultGrid())

	m1, cached, err := db.NewMaster("inv", invParams())
	require.NoError(t, err)
	assert.False(t, cached)

	m2, cached, err := db.NewMaster("inv", invParams())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Same(t, m1, m2)

	p := invParams()
	p["seg_p"] = netlist.Int(8)
	m3, cached, err := db.NewMaster("inv", p)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.NotEqual(t, m1.ID, m3.ID)
	assert.Equal(t, 2, db.Len())
}

func TestDatabase_UnknownGenerator(t *testing.T) {
	db := NewDatabase(DefaultGrid())
	_, _, err := db.NewMaster("folded_cascode", netlist.Params{"x": netlist.Int(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown generator")
}

func TestGenerate_Deterministic(t *testing.T) {
	gen, err := Lookup("inv")
	require.NoError(t, err)

	a, err := gen.Generate(DefaultGrid(), invParams())
	require.NoError(t, err)
	b, err := gen.Generate(DefaultGrid(), invParams())
	require.NoError(t, err)

	ca, err := Extract(a, "lib")
	require.NoError(t, err)
	cb, err := Extract(b, "lib")
	require.NoError(t, err)

	ida, err := netlist.CellID(ca)
	require.NoError(t, err)
	idb, err := netlist.CellID(cb)
	require.NoError(t, err)
	assert.Equal(t, ida, idb)
}
