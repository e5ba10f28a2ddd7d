package schematic

import (
	"github.com/yrrapt/analogen/internal/netlist"
)

func init() {
	Register(&CommonSource{})
}

var csTemplate = &netlist.Cell{
	Lib:  "analogen_templates",
	Name: "common_source",
	Terms: []netlist.Term{
		{Name: "in", Dir: netlist.DirInput},
		{Name: "out", Dir: netlist.DirOutput},
		{Name: "VDD", Dir: netlist.DirInout},
		{Name: "VSS", Dir: netlist.DirInout},
	},
	Instances: []netlist.Instance{
		{
			Name:   "XM",
			Master: netlist.Nmos4,
			Conns:  map[string]string{"d": "out", "g": "in", "s": "VSS", "b": "VSS"},
		},
		{
			Name:   "XR",
			Master: netlist.Res,
			Conns:  map[string]string{"p": "out", "n": "VDD"},
		},
	},
}

// CommonSource is the schematic counterpart of the common_source
// layout generator.
type CommonSource struct{}

// Name implements Generator.
func (*CommonSource) Name() string { return "common_source" }

// Design implements Generator.
func (*CommonSource) Design(lib, cell string, params netlist.Params) (*netlist.Cell, error) {
	seg, err := intParam(params, "seg")
	if err != nil {
		return nil, err
	}
	w, err := intParam(params, "w")
	if err != nil {
		return nil, err
	}
	lch, err := intParam(params, "l")
	if err != nil {
		return nil, err
	}
	rload, err := intParam(params, "rload")
	if err != nil {
		return nil, err
	}
	intent, err := stringParam(params, "intent", "standard")
	if err != nil {
		return nil, err
	}

	d := FromTemplate(csTemplate, lib, cell)
	if err := d.SetParams("XM", netlist.Params{
		"w": netlist.Int(w), "l": netlist.Int(lch),
		"seg": netlist.Int(seg), "intent": netlist.String(intent),
	}); err != nil {
		return nil, err
	}
	if err := d.SetParams("XR", netlist.Params{"r": netlist.Int(rload)}); err != nil {
		return nil, err
	}
	return d.Cell()
}
