package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yrrapt/analogen/internal/spec"
)

func TestRenderInitSpec_InverterScaffold(t *testing.T) {
	data, err := RenderInitSpec(&InitAnswers{
		Generator: "inv",
		ImplLib:   "demo_lib",
		SupplyMV:  900,
		LoadCapFF: 10,
		Corners:   []string{"tt", "ff"},
		Analyses:  []string{"tran", "ac"},
	})
	require.NoError(t, err)

	d, err := spec.Parse("init.yaml", data)
	require.NoError(t, err)
	assert.Equal(t, "inv", d.Generator)
	assert.Equal(t, "demo_lib", d.ImplLib)
	assert.Equal(t, int64(900), d.Testbench.SupplyMV)
	assert.Equal(t, []string{"tt", "ff"}, d.Testbench.Corners)
	require.Len(t, d.Testbench.Analyses, 2)
	assert.Equal(t, spec.AnalysisTran, d.Testbench.Analyses[0].Type)
	assert.Equal(t, spec.AnalysisAC, d.Testbench.Analyses[1].Type)
}

func TestRenderInitSpec_CommonSourceScaffold(t *testing.T) {
	data, err := RenderInitSpec(&InitAnswers{
		Generator: "common_source",
		ImplLib:   "demo_lib",
		SupplyMV:  900,
		LoadCapFF: 20,
		Corners:   []string{"tt"},
		Analyses:  []string{"ac"},
	})
	require.NoError(t, err)

	d, err := spec.Parse("init.yaml", data)
	require.NoError(t, err)
	assert.Equal(t, "common_source", d.Generator)
	assert.Contains(t, d.LayoutParams, "rload")
}

func TestRenderInitSpec_UnknownAnalysis(t *testing.T) {
	_, err := RenderInitSpec(&InitAnswers{
		Generator: "inv",
		ImplLib:   "demo_lib",
		SupplyMV:  900,
		LoadCapFF: 10,
		Corners:   []string{"tt"},
		Analyses:  []string{"noise"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown analysis type "noise"`)
}

func TestRenderInitSpec_UnknownGeneratorSkipsValidation(t *testing.T) {
	// Unknown generators get an empty parameter scaffold for the user
	// to fill in, so the result is not validated.
	data, err := RenderInitSpec(&InitAnswers{
		Generator: "folded_cascode",
		ImplLib:   "demo_lib",
		SupplyMV:  1200,
		LoadCapFF: 50,
		Corners:   []string{"tt"},
		Analyses:  []string{"ac"},
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), "generator: folded_cascode")
	assert.Contains(t, string(data), "layout_params: {}")
}

func TestPositiveIntValidator(t *testing.T) {
	assert.NoError(t, positiveInt("42"))
	assert.Error(t, positiveInt("0"))
	assert.Error(t, positiveInt("-3"))
	assert.Error(t, positiveInt("ten"))
	assert.Error(t, positiveInt(42))
}
