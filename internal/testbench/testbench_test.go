package testbench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yrrapt/analogen/internal/netlist"
	"github.com/yrrapt/analogen/internal/spec"
)

func testDesign() *spec.Design {
	return &spec.Design{
		ImplLib:   "demo_lib",
		Generator: "inv",
		LayoutParams: map[string]any{
			"seg_n": 2, "seg_p": 2, "w_n": 500, "w_p": 1000, "l": 40, "intent": "lvt",
		},
		Testbench: spec.Testbench{
			SupplyMV:  900,
			LoadCapFF: 10,
			Corners:   []string{"tt"},
			Analyses:  []spec.Analysis{{Type: spec.AnalysisTran, StopPS: 1000, StepPS: 10}},
		},
	}
}

func TestPoints_NoSweeps(t *testing.T) {
	pts, err := Points(testDesign())
	require.NoError(t, err)
	require.Len(t, pts, 1)

	assert.Equal(t, "base", pts[0].Label)
	assert.Nil(t, pts[0].SweepParams)
	assert.Equal(t, netlist.Int(2), pts[0].Params["seg_n"])
}

func TestPoints_CrossProduct(t *testing.T) {
	d := testDesign()
	d.Testbench.Sweeps = []spec.Sweep{
		{Param: "seg_p", Values: []int64{2, 4}},
		{Param: "w_n", Values: []int64{400, 500, 600}},
	}

	pts, err := Points(d)
	require.NoError(t, err)
	require.Len(t, pts, 6)

	// Declaration order: the last sweep varies fastest.
	assert.Equal(t, "seg_p=2,w_n=400", pts[0].Label)
	assert.Equal(t, "seg_p=2,w_n=600", pts[2].Label)
	assert.Equal(t, "seg_p=4,w_n=400", pts[3].Label)
	assert.Equal(t, "seg_p=4,w_n=600", pts[5].Label)

	assert.Equal(t, netlist.Int(4), pts[5].Params["seg_p"])
	assert.Equal(t, netlist.Int(600), pts[5].Params["w_n"])
	assert.Equal(t, int64(600), pts[5].SweepParams["w_n"])

	// Unswept parameters are carried through untouched.
	assert.Equal(t, netlist.Int(40), pts[5].Params["l"])
}

func TestPoints_IsolatedParams(t *testing.T) {
	d := testDesign()
	d.Testbench.Sweeps = []spec.Sweep{{Param: "seg_p", Values: []int64{2, 4}}}

	pts, err := Points(d)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, netlist.Int(2), pts[0].Params["seg_p"])
	assert.Equal(t, netlist.Int(4), pts[1].Params["seg_p"])
}

func TestPoints_UnknownSweepParam(t *testing.T) {
	d := testDesign()
	d.Testbench.Sweeps = []spec.Sweep{{Param: "nf", Values: []int64{1}}}

	_, err := Points(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sweep parameter "nf" is not a layout parameter`)
}

func TestPoints_EmptySweepValues(t *testing.T) {
	d := testDesign()
	d.Testbench.Sweeps = []spec.Sweep{{Param: "seg_p", Values: nil}}

	_, err := Points(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no values")
}

func dutCell() *netlist.Cell {
	c := netlist.NewCell("demo_lib", "inv_abc",
		netlist.Term{Name: "in", Dir: netlist.DirInput},
		netlist.Term{Name: "out", Dir: netlist.DirOutput},
		netlist.Term{Name: "VDD", Dir: netlist.DirInout},
		netlist.Term{Name: "VSS", Dir: netlist.DirInout},
	)
	c.AddInstance(netlist.Instance{
		Name: "XN", Master: netlist.Nmos4,
		Params: netlist.Params{"w": netlist.Int(500), "l": netlist.Int(40), "seg": netlist.Int(2), "intent": netlist.String("lvt")},
		Conns:  map[string]string{"d": "out", "g": "in", "s": "VSS", "b": "VSS"},
	})
	return c
}

func TestWrap_Tran(t *testing.T) {
	tb := testDesign().Testbench
	cell, err := Wrap(dutCell(), tb, spec.AnalysisTran)
	require.NoError(t, err)

	assert.Equal(t, "inv_abc_tb_tran", cell.Name)
	assert.Empty(t, cell.Terms, "testbench is self-contained")

	byName := make(map[string]netlist.Instance)
	for _, inst := range cell.Instances {
		byName[inst.Name] = inst
	}

	dut := byName["XDUT"]
	assert.Equal(t, netlist.MasterRef{Lib: "demo_lib", Cell: "inv_abc"}, dut.Master)
	assert.Equal(t, "in", dut.Conns["in"])
	assert.Equal(t, "VDD", dut.Conns["VDD"])

	sup := byName["VSUP"]
	assert.Equal(t, netlist.Vdc, sup.Master)
	assert.Equal(t, netlist.Int(900), sup.Params["v"])

	load := byName["CL0"]
	assert.Equal(t, netlist.Cap, load.Master)
	assert.Equal(t, "out", load.Conns["p"])
	assert.Equal(t, netlist.Int(10), load.Params["c"])

	src := byName["VIN0"]
	assert.Equal(t, netlist.Vpulse, src.Master)
	assert.Equal(t, "in", src.Conns["p"])
	assert.Equal(t, netlist.Int(900), src.Params["v2"])
}

func TestWrap_ACUsesSineSource(t *testing.T) {
	tb := testDesign().Testbench
	cell, err := Wrap(dutCell(), tb, spec.AnalysisAC)
	require.NoError(t, err)

	assert.Equal(t, "inv_abc_tb_ac", cell.Name)
	var src netlist.Instance
	for _, inst := range cell.Instances {
		if inst.Name == "VIN0" {
			src = inst
		}
	}
	assert.Equal(t, netlist.Vsin, src.Master)
	assert.Equal(t, netlist.Int(450), src.Params["vdc"])
	assert.Equal(t, netlist.Int(1), src.Params["vac"])
}

func TestWrap_MissingSupplyTerminals(t *testing.T) {
	c := netlist.NewCell("demo_lib", "bare",
		netlist.Term{Name: "in", Dir: netlist.DirInput},
		netlist.Term{Name: "out", Dir: netlist.DirOutput},
	)
	_, err := Wrap(c, testDesign().Testbench, spec.AnalysisTran)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing VDD/VSS")
}

func TestWrap_NoOutputs(t *testing.T) {
	c := netlist.NewCell("demo_lib", "sink",
		netlist.Term{Name: "in", Dir: netlist.DirInput},
		netlist.Term{Name: "VDD", Dir: netlist.DirInout},
		netlist.Term{Name: "VSS", Dir: netlist.DirInout},
	)
	_, err := Wrap(c, testDesign().Testbench, spec.AnalysisTran)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one input and one output")
}

func TestWrap_UnknownAnalysis(t *testing.T) {
	_, err := Wrap(dutCell(), testDesign().Testbench, "noise")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown analysis type "noise"`)
}
