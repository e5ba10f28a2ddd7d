package plot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yrrapt/analogen/internal/sim"
)

func tranResult(corner string) sim.Result {
	return sim.Result{
		Design:   "inv_test",
		Point:    "base",
		Corner:   corner,
		Analysis: "tran",
		Waveforms: []sim.Waveform{
			{Name: "out", XUnit: "ps", YUnit: "V", X: []float64{0, 100, 200}, Y: []float64{0.9, 0.45, 0.0}},
			{Name: "in", XUnit: "ps", YUnit: "V", X: []float64{0, 100, 200}, Y: []float64{0, 0.9, 0.9}},
		},
		Metrics: map[string]float64{"tau_ps": 12.5, "settle_ps": 60},
	}
}

func acResult(corner string) sim.Result {
	return sim.Result{
		Design:   "inv_test",
		Point:    "base",
		Corner:   corner,
		Analysis: "ac",
		Waveforms: []sim.Waveform{
			{Name: "gain_mag", XUnit: "Hz", YUnit: "dB", X: []float64{1e3, 1e6, 1e9}, Y: []float64{6, 5.9, -20}},
		},
		Metrics: map[string]float64{"gain_dc_db": 6.02},
	}
}

func TestFromResults_GroupsByCorner(t *testing.T) {
	results := sim.Results{tranResult("tt"), tranResult("ss")}

	plots := FromResults(results, "out")
	require.Len(t, plots, 1)

	p := plots[0]
	assert.Equal(t, "inv_test tran out (base)", p.Title)
	assert.False(t, p.LogX)
	require.Len(t, p.Series, 2)
	assert.Equal(t, "tt", p.Series[0].Name)
	assert.Equal(t, "ss", p.Series[1].Name)
}

func TestFromResults_ACLogAxis(t *testing.T) {
	plots := FromResults(sim.Results{acResult("tt")}, "gain_mag")
	require.Len(t, plots, 1)
	assert.True(t, plots[0].LogX)
	assert.Equal(t, "Hz", plots[0].XLabel)
}

func TestFromResults_MissingWaveform(t *testing.T) {
	plots := FromResults(sim.Results{tranResult("tt")}, "gain_mag")
	assert.Empty(t, plots)
}

func TestSVG_ContainsSeriesAndLegend(t *testing.T) {
	plots := FromResults(sim.Results{tranResult("tt"), tranResult("ss")}, "out")
	require.Len(t, plots, 1)

	svg := string(plots[0].SVG())
	assert.True(t, strings.HasPrefix(svg, "<svg "))
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
	assert.Equal(t, 2, strings.Count(svg, "<polyline"))
	assert.Contains(t, svg, ">tt</text>")
	assert.Contains(t, svg, ">ss</text>")
	assert.Contains(t, svg, ">ps</text>")
	assert.Contains(t, svg, ">V</text>")
}

func TestSVG_Deterministic(t *testing.T) {
	p := FromResults(sim.Results{tranResult("tt")}, "out")[0]
	assert.Equal(t, p.SVG(), p.SVG())
}

func TestSVG_EscapesTitle(t *testing.T) {
	p := &Plot{Title: `a < b & "c"`}
	svg := string(p.SVG())
	assert.Contains(t, svg, "a &lt; b &amp; &quot;c&quot;")
	assert.NotContains(t, svg, `a < b`)
}

func TestSVG_EmptyPlotStillRenders(t *testing.T) {
	p := &Plot{Title: "empty"}
	svg := string(p.SVG())
	assert.Contains(t, svg, "<line")
	assert.NotContains(t, svg, "<polyline")
}

func TestSVG_LogAxisSkipsNonPositive(t *testing.T) {
	p := &Plot{
		LogX:   true,
		Series: []Series{{Name: "tt", X: []float64{0, 1e3, 1e6}, Y: []float64{1, 2, 3}}},
	}
	// Rendering must not produce NaN coordinates from log10(0).
	svg := string(p.SVG())
	assert.NotContains(t, svg, "NaN")
	assert.NotContains(t, svg, "-Inf")
}

func TestMetricsTable_AlignedColumns(t *testing.T) {
	results := sim.Results{tranResult("tt"), acResult("tt")}

	table := MetricsTable(results)
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	require.Len(t, lines, 4, "header, rule, two rows")

	assert.Regexp(t, `^point\s+corner\s+analysis\s+gain_dc_db\s+settle_ps\s+tau_ps$`, lines[0])
	assert.Regexp(t, `^-+\s+-+\s+-+\s+-+\s+-+\s+-+$`, lines[1])
	assert.Contains(t, lines[2], "tran")
	assert.Contains(t, lines[2], "12.5")
	assert.Contains(t, lines[3], "ac")
	assert.Contains(t, lines[3], "6.02")

	// Missing metrics render as placeholders.
	assert.Contains(t, lines[2], "-")
	for _, line := range lines {
		assert.Equal(t, len(lines[0]), len(line), "every row has the same width")
	}
}
