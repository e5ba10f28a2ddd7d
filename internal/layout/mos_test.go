package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yrrapt/analogen/internal/netlist"
)

func TestMOSDevice_OrientMirrorsPinRows(t *testing.T) {
	nets := pinNets{d: "out", g: "in", s: "VSS", b: "VSS"}

	r0, err := mosDevice("XN", netlist.Nmos4, Point{X: 0, Y: 0}, 2, 500, 40, "lvt", R0, nets)
	require.NoError(t, err)
	mx, err := mosDevice("XP", netlist.Pmos4, Point{X: 0, Y: 0}, 2, 500, 40, "lvt", MX, nets)
	require.NoError(t, err)

	// R0 faces source and bulk down, drain up.
	assert.Equal(t, NewRect(300, 400, 400, 500), r0.Pins["d"].Rect)
	assert.Equal(t, NewRect(300, 0, 400, 100), r0.Pins["s"].Rect)

	// MX mirrors the rows about the device box, X positions unchanged.
	assert.Equal(t, NewRect(300, 0, 400, 100), mx.Pins["d"].Rect)
	assert.Equal(t, NewRect(300, 400, 400, 500), mx.Pins["s"].Rect)
	assert.Equal(t, r0.Box, mx.Box)

	// The gate pin sits at mid-height and keeps its spot either way.
	assert.Equal(t, r0.Pins["g"].Rect, mx.Pins["g"].Rect)
}

func TestMOSDevice_RejectsNarrowWidth(t *testing.T) {
	_, err := mosDevice("XN", netlist.Nmos4, Point{}, 1, 200, 40, "standard", R0,
		pinNets{d: "d", g: "g", s: "s", b: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum")
}
