package lvs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yrrapt/analogen/internal/layout"
	"github.com/yrrapt/analogen/internal/netlist"
	"github.com/yrrapt/analogen/internal/schematic"
)

// generateBoth runs the layout and schematic generator pair the way
// the flow does: layout first, schematic from the derived parameters.
func generateBoth(t *testing.T, name string, params netlist.Params) (*netlist.Cell, *netlist.Cell) {
	t.Helper()

	lg, err := layout.Lookup(name)
	require.NoError(t, err)
	lay, err := lg.Generate(layout.DefaultGrid(), params)
	require.NoError(t, err)
	extracted, err := layout.Extract(lay, "impl_lib")
	require.NoError(t, err)

	sg, err := schematic.Lookup(name)
	require.NoError(t, err)
	sch, err := sg.Design("impl_lib", name, lay.SchParams)
	require.NoError(t, err)

	return extracted, sch
}

func TestCompare_InverterPasses(t *testing.T) {
	lay, sch := generateBoth(t, "inv", netlist.Params{
		"seg_n": netlist.Int(2), "seg_p": netlist.Int(4),
		"w_n": netlist.Int(500), "w_p": netlist.Int(1000),
		"l": netlist.Int(40), "intent": netlist.String("lvt"),
	})

	rep, err := Compare(lay, sch)
	require.NoError(t, err)
	assert.True(t, rep.Pass, "mismatches: %v", rep.Mismatches)
	assert.Empty(t, rep.Mismatches)
}

func TestCompare_CommonSourcePasses(t *testing.T) {
	lay, sch := generateBoth(t, "common_source", netlist.Params{
		"seg": netlist.Int(4), "w": netlist.Int(600),
		"l": netlist.Int(60), "rload": netlist.Int(5000),
	})

	rep, err := Compare(lay, sch)
	require.NoError(t, err)
	assert.True(t, rep.Pass, "mismatches: %v", rep.Mismatches)
}

func TestCompare_ParamMismatchFails(t *testing.T) {
	lay, sch := generateBoth(t, "inv", netlist.Params{
		"seg_n": netlist.Int(2), "seg_p": netlist.Int(4),
		"w_n": netlist.Int(500), "w_p": netlist.Int(1000),
		"l": netlist.Int(40),
	})
	// Tamper with a schematic device width.
	sch.Instances[0].Params["w"] = netlist.Int(999)

	rep, err := Compare(lay, sch)
	require.NoError(t, err)
	assert.False(t, rep.Pass)
	require.Len(t, rep.Mismatches, 1)
	assert.Equal(t, MismatchConnectivity, rep.Mismatches[0].Kind)
}

func TestCompare_MissingDevice(t *testing.T) {
	lay, sch := generateBoth(t, "common_source", netlist.Params{
		"seg": netlist.Int(4), "w": netlist.Int(600),
		"l": netlist.Int(60), "rload": netlist.Int(5000),
	})
	// Drop the resistor from the schematic.
	sch.Instances = sch.Instances[:1]

	rep, err := Compare(lay, sch)
	require.NoError(t, err)
	assert.False(t, rep.Pass)

	var kinds []string
	for _, m := range rep.Mismatches {
		kinds = append(kinds, m.Kind)
	}
	assert.Contains(t, kinds, MismatchDeviceCount)
}

func TestCompare_TerminalMismatch(t *testing.T) {
	lay, sch := generateBoth(t, "inv", netlist.Params{
		"seg_n": netlist.Int(2), "seg_p": netlist.Int(2),
		"w_n": netlist.Int(400), "w_p": netlist.Int(400),
		"l": netlist.Int(40),
	})
	sch.Terms = append(sch.Terms, netlist.Term{Name: "en", Dir: netlist.DirInput})

	rep, err := Compare(lay, sch)
	require.NoError(t, err)
	assert.False(t, rep.Pass)
	require.NotEmpty(t, rep.Mismatches)
	assert.Equal(t, MismatchTerminal, rep.Mismatches[0].Kind)
	assert.Contains(t, rep.Mismatches[0].Detail, "schematic only")
}

func TestCompare_ReportCellIDs(t *testing.T) {
	lay, sch := generateBoth(t, "inv", netlist.Params{
		"seg_n": netlist.Int(2), "seg_p": netlist.Int(4),
		"w_n": netlist.Int(500), "w_p": netlist.Int(1000),
		"l": netlist.Int(40),
	})

	rep, err := Compare(lay, sch)
	require.NoError(t, err)
	assert.Len(t, rep.LayoutCellID, 64)
	assert.Len(t, rep.SchematicCellID, 64)
	// Cell IDs include the cell name, which differs between the
	// extracted layout and the schematic view; equality is judged by
	// the name-independent comparison, not by the IDs.
	assert.True(t, rep.Pass)
}

func TestReport_Summary(t *testing.T) {
	clean := &Report{Pass: true}
	assert.Equal(t, "clean", clean.Summary())

	dirty := &Report{
		Pass: false,
		Mismatches: []Mismatch{
			{Kind: MismatchConnectivity, Detail: "a"},
			{Kind: MismatchDeviceCount, Detail: "b"},
			{Kind: MismatchConnectivity, Detail: "c"},
		},
	}
	assert.Equal(t, "3 mismatches, connectivity=2, device_count=1", dirty.Summary())
}
