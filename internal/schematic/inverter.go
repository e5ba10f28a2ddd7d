package schematic

import (
	"github.com/yrrapt/analogen/internal/netlist"
)

func init() {
	Register(&Inverter{})
}

// invTemplate is the inverter master template: symbolic XN/XP devices
// with unset parameters, wired the canonical way.
var invTemplate = &netlist.Cell{
	Lib:  "analogen_templates",
	Name: "inv",
	Terms: []netlist.Term{
		{Name: "in", Dir: netlist.DirInput},
		{Name: "out", Dir: netlist.DirOutput},
		{Name: "VDD", Dir: netlist.DirInout},
		{Name: "VSS", Dir: netlist.DirInout},
	},
	Instances: []netlist.Instance{
		{
			Name:   "XN",
			Master: netlist.Nmos4,
			Conns:  map[string]string{"d": "out", "g": "in", "s": "VSS", "b": "VSS"},
		},
		{
			Name:   "XP",
			Master: netlist.Pmos4,
			Conns:  map[string]string{"d": "out", "g": "in", "s": "VDD", "b": "VDD"},
		},
	},
}

// Inverter is the schematic counterpart of the inv layout generator.
type Inverter struct{}

// Name implements Generator.
func (*Inverter) Name() string { return "inv" }

// Design implements Generator.
func (*Inverter) Design(lib, cell string, params netlist.Params) (*netlist.Cell, error) {
	segN, err := intParam(params, "seg_n")
	if err != nil {
		return nil, err
	}
	segP, err := intParam(params, "seg_p")
	if err != nil {
		return nil, err
	}
	wN, err := intParam(params, "w_n")
	if err != nil {
		return nil, err
	}
	wP, err := intParam(params, "w_p")
	if err != nil {
		return nil, err
	}
	lch, err := intParam(params, "l")
	if err != nil {
		return nil, err
	}
	intent, err := stringParam(params, "intent", "standard")
	if err != nil {
		return nil, err
	}

	d := FromTemplate(invTemplate, lib, cell)
	if err := d.SetParams("XN", netlist.Params{
		"w": netlist.Int(wN), "l": netlist.Int(lch),
		"seg": netlist.Int(segN), "intent": netlist.String(intent),
	}); err != nil {
		return nil, err
	}
	if err := d.SetParams("XP", netlist.Params{
		"w": netlist.Int(wP), "l": netlist.Int(lch),
		"seg": netlist.Int(segP), "intent": netlist.String(intent),
	}); err != nil {
		return nil, err
	}
	return d.Cell()
}
