package schematic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yrrapt/analogen/internal/netlist"
)

func TestFromTemplate_CopiesDeeply(t *testing.T) {
	d := FromTemplate(invTemplate, "impl_lib", "inv_x4")
	require.NoError(t, d.SetParams("XN", netlist.Params{"w": netlist.Int(500)}))
	require.NoError(t, d.Reconnect("XN", "g", "in_b"))

	// The template itself is untouched.
	assert.Nil(t, invTemplate.Instances[0].Params)
	assert.Equal(t, "in", invTemplate.Instances[0].Conns["g"])

	cell, err := d.Cell()
	require.NoError(t, err)
	assert.Equal(t, "impl_lib", cell.Lib)
	assert.Equal(t, "inv_x4", cell.Name)
	assert.Equal(t, "in_b", cell.Instances[0].Conns["g"])
}

func TestReconnect_UnknownPin(t *testing.T) {
	d := FromTemplate(invTemplate, "lib", "c")
	err := d.Reconnect("XN", "q", "net")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no pin "q"`)
}

func TestReconnect_UnknownInstance(t *testing.T) {
	d := FromTemplate(invTemplate, "lib", "c")
	err := d.Reconnect("XQ", "g", "net")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no instance "XQ"`)
}

func TestArray_FansOutCopies(t *testing.T) {
	d := FromTemplate(invTemplate, "lib", "inv_chain")
	require.NoError(t, d.Array("XN", 3))
	require.NoError(t, d.Reconnect("XN1", "d", "mid1"))
	require.NoError(t, d.Reconnect("XN2", "d", "mid2"))

	cell := mustCell(t, d)
	names := instanceNames(cell)
	assert.Contains(t, names, "XN0")
	assert.Contains(t, names, "XN1")
	assert.Contains(t, names, "XN2")
	assert.NotContains(t, names, "XN")
	assert.Len(t, cell.Instances, 4) // 3 copies + XP

	// Copies do not share connection maps.
	var xn0, xn1 *netlist.Instance
	for i := range cell.Instances {
		switch cell.Instances[i].Name {
		case "XN0":
			xn0 = &cell.Instances[i]
		case "XN1":
			xn1 = &cell.Instances[i]
		}
	}
	require.NotNil(t, xn0)
	require.NotNil(t, xn1)
	assert.Equal(t, "out", xn0.Conns["d"])
	assert.Equal(t, "mid1", xn1.Conns["d"])
}

func TestArray_RejectsZero(t *testing.T) {
	d := FromTemplate(invTemplate, "lib", "c")
	require.Error(t, d.Array("XN", 0))
}

func TestRemove_DeletesInstance(t *testing.T) {
	d := FromTemplate(invTemplate, "lib", "c")
	require.NoError(t, d.Remove("XP"))
	cell := mustCell(t, d)
	assert.Len(t, cell.Instances, 1)
	assert.Equal(t, "XN", cell.Instances[0].Name)
}

func TestDesign_InverterParamsApplied(t *testing.T) {
	gen, err := Lookup("inv")
	require.NoError(t, err)

	cell, err := gen.Design("impl_lib", "inv_x4", netlist.Params{
		"seg_n": netlist.Int(2), "seg_p": netlist.Int(4),
		"w_n": netlist.Int(500), "w_p": netlist.Int(1000),
		"l": netlist.Int(40), "intent": netlist.String("lvt"),
	})
	require.NoError(t, err)

	for _, inst := range cell.Instances {
		switch inst.Name {
		case "XN":
			assert.Equal(t, netlist.Int(2), inst.Params["seg"])
			assert.Equal(t, netlist.Int(500), inst.Params["w"])
		case "XP":
			assert.Equal(t, netlist.Int(4), inst.Params["seg"])
			assert.Equal(t, netlist.Int(1000), inst.Params["w"])
		}
		assert.Equal(t, netlist.String("lvt"), inst.Params["intent"])
	}
}

func TestDesign_CommonSourceLoad(t *testing.T) {
	gen, err := Lookup("common_source")
	require.NoError(t, err)

	cell, err := gen.Design("impl_lib", "amp", netlist.Params{
		"seg": netlist.Int(4), "w": netlist.Int(600),
		"l": netlist.Int(60), "rload": netlist.Int(5000),
	})
	require.NoError(t, err)

	var res *netlist.Instance
	for i := range cell.Instances {
		if cell.Instances[i].Master == netlist.Res {
			res = &cell.Instances[i]
		}
	}
	require.NotNil(t, res)
	assert.Equal(t, netlist.Int(5000), res.Params["r"])
	assert.Equal(t, "VDD", res.Conns["n"])
}

func TestDesign_MissingParam(t *testing.T) {
	gen, err := Lookup("inv")
	require.NoError(t, err)
	_, err = gen.Design("lib", "c", netlist.Params{"seg_n": netlist.Int(2)})
	require.Error(t, err)
}

func mustCell(t *testing.T, d *Design) *netlist.Cell {
	t.Helper()
	cell, err := d.Cell()
	require.NoError(t, err)
	return cell
}

func instanceNames(c *netlist.Cell) []string {
	names := make([]string, 0, len(c.Instances))
	for _, i := range c.Instances {
		names = append(names, i.Name)
	}
	return names
}
