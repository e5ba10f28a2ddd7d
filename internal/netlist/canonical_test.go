package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	d := Dict{
		"w":      Int(500),
		"intent": String("lvt"),
		"l":      Int(40),
	}

	b, err := MarshalCanonical(d)
	require.NoError(t, err)

	assert.Equal(t, `{"intent":"lvt","l":40,"w":500}`, string(b))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	b, err := MarshalCanonical(String("a<b>&c"))
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(b))
}

func TestMarshalCanonical_ControlCharsEscaped(t *testing.T) {
	b, err := MarshalCanonical(String("line1\nline2\ttab"))
	require.NoError(t, err)
	assert.Equal(t, `"line1\nline2\ttab"`, string(b))
}

func TestMarshalCanonical_FloatsForbidden(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"w": 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestMarshalCanonical_NullForbidden(t *testing.T) {
	_, err := MarshalCanonical(nil)
	require.Error(t, err)
}

func TestMarshalCanonical_NestedStructures(t *testing.T) {
	d := Dict{
		"segs": List{Int(2), Int(4), Int(8)},
		"sub": Dict{
			"b": Bool(true),
			"a": String("x"),
		},
	}

	b, err := MarshalCanonical(d)
	require.NoError(t, err)
	assert.Equal(t, `{"segs":[2,4,8],"sub":{"a":"x","b":true}}`, string(b))
}

func TestFromAny_RejectsFloats(t *testing.T) {
	_, err := FromAny(map[string]any{"w": 1.5})
	require.Error(t, err)
}

func TestFromAny_ConvertsYAMLShapes(t *testing.T) {
	v, err := FromAny(map[string]any{
		"seg":    4,
		"intent": "standard",
		"flip":   true,
		"ratios": []any{1, 2},
	})
	require.NoError(t, err)

	d, ok := v.(Dict)
	require.True(t, ok)
	assert.Equal(t, Int(4), d["seg"])
	assert.Equal(t, String("standard"), d["intent"])
	assert.Equal(t, Bool(true), d["flip"])
	assert.Equal(t, List{Int(1), Int(2)}, d["ratios"])
}

func TestMasterID_StableAcrossCalls(t *testing.T) {
	params := Params{"seg_p": Int(4), "seg_n": Int(2), "intent": String("lvt")}

	id1, err := MasterID("inv", params)
	require.NoError(t, err)
	id2, err := MasterID("inv", params)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64) // hex SHA-256
}

func TestMasterID_SensitiveToParams(t *testing.T) {
	id1, err := MasterID("inv", Params{"seg_p": Int(4)})
	require.NoError(t, err)
	id2, err := MasterID("inv", Params{"seg_p": Int(8)})
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
}

func TestMasterID_SensitiveToGenerator(t *testing.T) {
	params := Params{"seg": Int(4)}
	id1, err := MasterID("inv", params)
	require.NoError(t, err)
	id2, err := MasterID("common_source", params)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
}
