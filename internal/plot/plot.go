// Package plot renders simulation waveforms as SVG line charts and
// result metrics as aligned text tables. Output is deterministic: the
// same results produce byte-identical plots.
package plot

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yrrapt/analogen/internal/sim"
)

// Canvas geometry, in SVG user units.
const (
	width      = 640
	height     = 480
	marginL    = 70
	marginR    = 160
	marginT    = 40
	marginB    = 50
	tickCount  = 5
	legendStep = 18
)

// Series color palette, assigned in series order.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728",
	"#9467bd", "#8c564b", "#e377c2", "#7f7f7f",
}

// Series is one labeled trace on a plot.
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// Plot is a line chart of one or more series over a shared axis pair.
type Plot struct {
	Title  string
	XLabel string
	YLabel string
	// LogX plots the x axis on a log10 scale (AC frequency sweeps).
	LogX   bool
	Series []Series
}

// FromResults builds one plot per (point, analysis, waveform name)
// group across a run's results, with one series per corner. AC plots
// get a log frequency axis.
func FromResults(results sim.Results, waveName string) []*Plot {
	type groupKey struct {
		point    string
		analysis string
	}
	groups := make(map[groupKey]*Plot)
	var order []groupKey

	for _, res := range results {
		for _, w := range res.Waveforms {
			if w.Name != waveName {
				continue
			}
			key := groupKey{point: res.Point, analysis: res.Analysis}
			p, ok := groups[key]
			if !ok {
				p = &Plot{
					Title:  fmt.Sprintf("%s %s %s (%s)", res.Design, res.Analysis, waveName, res.Point),
					XLabel: w.XUnit,
					YLabel: w.YUnit,
					LogX:   res.Analysis == "ac",
				}
				groups[key] = p
				order = append(order, key)
			}
			p.Series = append(p.Series, Series{Name: res.Corner, X: w.X, Y: w.Y})
		}
	}

	plots := make([]*Plot, 0, len(order))
	for _, key := range order {
		plots = append(plots, groups[key])
	}
	return plots
}

// SVG renders the plot. An empty plot renders axes and title only.
func (p *Plot) SVG() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="white"/>`+"\n", width, height)
	fmt.Fprintf(&b, `<text x="%d" y="24" font-family="sans-serif" font-size="16" text-anchor="middle">%s</text>`+"\n",
		(marginL+width-marginR)/2, escapeXML(p.Title))

	xmin, xmax, ymin, ymax := p.bounds()

	plotW := float64(width - marginL - marginR)
	plotH := float64(height - marginT - marginB)
	mapX := func(x float64) float64 {
		if p.LogX {
			x = math.Log10(x)
		}
		if xmax == xmin {
			return marginL
		}
		return marginL + (x-xmin)/(xmax-xmin)*plotW
	}
	mapY := func(y float64) float64 {
		if ymax == ymin {
			return marginT + plotH
		}
		return marginT + plotH - (y-ymin)/(ymax-ymin)*plotH
	}

	// Axes.
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black"/>`+"\n",
		marginL, marginT, marginL, height-marginB)
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black"/>`+"\n",
		marginL, height-marginB, width-marginR, height-marginB)

	// Ticks and grid.
	for i := 0; i <= tickCount; i++ {
		frac := float64(i) / tickCount
		xv := xmin + frac*(xmax-xmin)
		px := marginL + frac*plotW
		label := formatTick(xv, p.LogX)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#ddd"/>`+"\n",
			px, marginT, px, height-marginB)
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-family="sans-serif" font-size="11" text-anchor="middle">%s</text>`+"\n",
			px, height-marginB+16, label)

		yv := ymin + frac*(ymax-ymin)
		py := marginT + plotH - frac*plotH
		fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#ddd"/>`+"\n",
			marginL, py, width-marginR, py)
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" font-family="sans-serif" font-size="11" text-anchor="end">%s</text>`+"\n",
			marginL-6, py+4, formatTick(yv, false))
	}

	// Axis labels.
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="sans-serif" font-size="13" text-anchor="middle">%s</text>`+"\n",
		(marginL+width-marginR)/2, height-8, escapeXML(p.XLabel))
	fmt.Fprintf(&b, `<text x="16" y="%d" font-family="sans-serif" font-size="13" text-anchor="middle" transform="rotate(-90 16 %d)">%s</text>`+"\n",
		(marginT+height-marginB)/2, (marginT+height-marginB)/2, escapeXML(p.YLabel))

	// Series polylines and legend.
	for i, s := range p.Series {
		color := palette[i%len(palette)]
		var pts strings.Builder
		for j := range s.X {
			if p.LogX && s.X[j] <= 0 {
				continue
			}
			if pts.Len() > 0 {
				pts.WriteByte(' ')
			}
			fmt.Fprintf(&pts, "%.1f,%.1f", mapX(s.X[j]), mapY(s.Y[j]))
		}
		fmt.Fprintf(&b, `<polyline fill="none" stroke="%s" stroke-width="1.5" points="%s"/>`+"\n",
			color, pts.String())

		ly := marginT + 10 + i*legendStep
		fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1.5"/>`+"\n",
			width-marginR+10, ly, width-marginR+34, ly, color)
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="sans-serif" font-size="12">%s</text>`+"\n",
			width-marginR+40, ly+4, escapeXML(s.Name))
	}

	b.WriteString("</svg>\n")
	return []byte(b.String())
}

// bounds returns the data extents, log-transformed on x when LogX is
// set. Empty plots get unit extents so axes still render.
func (p *Plot) bounds() (xmin, xmax, ymin, ymax float64) {
	first := true
	for _, s := range p.Series {
		for j := range s.X {
			x := s.X[j]
			if p.LogX {
				if x <= 0 {
					continue
				}
				x = math.Log10(x)
			}
			y := s.Y[j]
			if first {
				xmin, xmax, ymin, ymax = x, x, y, y
				first = false
				continue
			}
			xmin, xmax = math.Min(xmin, x), math.Max(xmax, x)
			ymin, ymax = math.Min(ymin, y), math.Max(ymax, y)
		}
	}
	if first {
		return 0, 1, 0, 1
	}
	if ymin == ymax {
		ymin, ymax = ymin-0.5, ymax+0.5
	}
	return xmin, xmax, ymin, ymax
}

// formatTick renders an axis tick label. Log-axis ticks show the
// underlying value, not its exponent.
func formatTick(v float64, logAxis bool) string {
	if logAxis {
		return fmt.Sprintf("%.3g", math.Pow(10, v))
	}
	return fmt.Sprintf("%.3g", v)
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// MetricsTable renders a run's scalar metrics as an aligned text
// table, one row per result, metric columns sorted by name.
func MetricsTable(results sim.Results) string {
	metricNames := make(map[string]bool)
	for _, r := range results {
		for name := range r.Metrics {
			metricNames[name] = true
		}
	}
	names := make([]string, 0, len(metricNames))
	for n := range metricNames {
		names = append(names, n)
	}
	sort.Strings(names)

	headers := append([]string{"point", "corner", "analysis"}, names...)
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := []string{r.Point, r.Corner, r.Analysis}
		for _, n := range names {
			if v, ok := r.Metrics[n]; ok {
				row = append(row, fmt.Sprintf("%.4g", v))
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows)
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], cell)
		}
		b.WriteByte('\n')
	}
	writeRow(headers)
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteByte('\n')
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
