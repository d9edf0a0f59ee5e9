package plotting

import (
	"fmt"
	"math"
	"sort"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"defectplot/src/defectdata"
)

var (
	fadedGrey     = drawing.Color{R: 204, G: 204, B: 204, A: 140}
	zeroLineBlack = drawing.Color{R: 0, G: 0, B: 0, A: 255}
	valenceBlue   = drawing.Color{R: 49, G: 130, B: 189}
	conductionOrg = drawing.Color{R: 230, G: 85, B: 13}
)

// pointStyle returns a style that renders points only (no connecting line).
func pointStyle(col drawing.Color, size float64) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    size,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: width,
		StrokeColor: col,
	}
}

// renderContext carries everything the composer needs for one facet.
type renderContext struct {
	d          DefectDiagram
	chempots   defectdata.ChemPots
	eltRefs    defectdata.ChemPots
	mode       EntriesMode
	style      *Style
	colors     []drawing.Color
	xlim       [2]float64
	ylim       [2]float64
	fermiLevel *float64
	autoLabels bool
	title      string
	showTable  bool
}

// composeFigure assembles the go-chart figure for one facet: formation
// energy lines, transition-level markers, band-edge shading, zero line,
// optional Fermi-level marker, chemical-potential table and legend.
func composeFigure(lines *formationEnergyLines, rc *renderContext) *chart.Chart {
	var series []chart.Series

	// faded background lines first so bold stable lines draw on top
	if rc.mode == EntriesAllFaded {
		for _, id := range lines.allIDs {
			for _, piece := range clipPolyline(lines.all[id], rc.xlim, rc.ylim) {
				series = append(series, chart.ContinuousSeries{
					XValues: piece.X,
					YValues: piece.Y,
					Style:   lineStyle(fadedGrey, rc.style.LineWidth),
				})
			}
		}
	}

	legendNames := legendNamesFor(lines, rc.mode)
	if rc.mode == EntriesAll {
		for i, id := range lines.allIDs {
			series = append(series, boldLineSeries(lines.all[id], legendNames[i], rc.colors[i], rc)...)
		}
	} else {
		for i, species := range lines.species {
			series = append(series, boldLineSeries(lines.stable[species], legendNames[i], rc.colors[i], rc)...)
		}
		series = append(series, transitionMarkerSeries(lines, rc)...)
	}

	// E_formation = 0 reference, in case ymin < 0
	series = append(series, chart.ContinuousSeries{
		XValues: []float64{rc.xlim[0], rc.xlim[1]},
		YValues: []float64{0, 0},
		Style:   lineStyle(zeroLineBlack, 1),
	})

	if rc.fermiLevel != nil && *rc.fermiLevel >= rc.xlim[0] && *rc.fermiLevel <= rc.xlim[1] {
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{*rc.fermiLevel, *rc.fermiLevel},
			YValues: []float64{rc.ylim[0], rc.ylim[1]},
			Style: chart.Style{
				StrokeWidth:     1.4,
				StrokeColor:     zeroLineBlack,
				StrokeDashArray: []float64{6, 3, 1.5, 3}, // dash-dot
			},
		})
	}

	topPad := 22
	if rc.title != "" {
		topPad = 34
	}
	if rc.showTable && len(rc.chempots) > 0 {
		topPad += 44
	}

	ch := &chart.Chart{
		Title:      rc.title,
		TitleStyle: chart.Style{FontSize: rc.style.TitleSize},
		Width:      rc.style.FigWidth,
		Height:     rc.style.FigHeight,
		Background: chart.Style{Padding: chart.Box{Top: topPad, Left: 18, Right: 18, Bottom: 24}},
		XAxis: chart.XAxis{
			Name:  "Fermi Level (eV)",
			Range: &chart.ContinuousRange{Min: rc.xlim[0], Max: rc.xlim[1]},
			Ticks: niceTicks(rc.xlim[0], rc.xlim[1], 5),
		},
		YAxis: chart.YAxis{
			Name:  "Formation Energy (eV)",
			Range: &chart.ContinuousRange{Min: rc.ylim[0], Max: rc.ylim[1]},
			Ticks: niceTicks(rc.ylim[0], rc.ylim[1], 5),
		},
		Series: series,
	}

	ch.Elements = []chart.Renderable{bandEdgeShading(rc)}
	if rc.showTable && len(rc.chempots) > 0 {
		ch.Elements = append(ch.Elements, chempotTable(rc))
	}
	ch.Elements = append(ch.Elements, diagramLegend(ch, rc.style.FontSize))
	return ch
}

// diagramLegend draws a legend with one row per named series. The
// go-chart built-in legend emits a row for every series, which would
// fill the box with blanks for markers, reference lines and faded
// background lines.
func diagramLegend(c *chart.Chart, fontSize float64) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, chartDefaults chart.Style) {
		var labels []string
		var colors []drawing.Color
		for _, s := range c.Series {
			cs, ok := s.(chart.ContinuousSeries)
			if !ok || cs.Name == "" {
				continue
			}
			labels = append(labels, cs.Name)
			colors = append(colors, cs.Style.StrokeColor)
		}
		if len(labels) == 0 {
			return
		}

		r.SetFont(chartDefaults.GetFont())
		r.SetFontSize(fontSize)
		r.SetFontColor(chart.DefaultTextColor)

		maxW, lineH := 0, 12
		for _, l := range labels {
			tb := r.MeasureText(l)
			if tb.Width() > maxW {
				maxW = tb.Width()
			}
			if tb.Height() > lineH {
				lineH = tb.Height()
			}
		}
		const (
			swatch  = 22
			padding = 8
			rowGap  = 5
		)
		boxW := padding*2 + swatch + 6 + maxW
		boxH := padding*2 + len(labels)*lineH + (len(labels)-1)*rowGap
		left := canvasBox.Right - boxW - 10
		top := canvasBox.Top + 10

		r.SetFillColor(drawing.Color{R: 255, G: 255, B: 255, A: 235})
		r.SetStrokeColor(drawing.Color{R: 120, G: 120, B: 120, A: 255})
		r.SetStrokeWidth(1)
		r.MoveTo(left, top)
		r.LineTo(left+boxW, top)
		r.LineTo(left+boxW, top+boxH)
		r.LineTo(left, top+boxH)
		r.Close()
		r.FillStroke()

		y := top + padding + lineH
		for i, l := range labels {
			r.SetStrokeColor(colors[i])
			r.SetStrokeWidth(3)
			r.MoveTo(left+padding, y-lineH/2+2)
			r.LineTo(left+padding+swatch, y-lineH/2+2)
			r.Stroke()
			r.SetFontColor(chart.DefaultTextColor)
			r.Text(l, left+padding+swatch+6, y)
			y += lineH + rowGap
		}
	}
}

// boldLineSeries converts a polyline into clipped line series, naming
// only the first piece so the legend shows one row per line.
func boldLineSeries(pl Polyline, name string, col drawing.Color, rc *renderContext) []chart.Series {
	var out []chart.Series
	pieces := clipPolyline(pl, rc.xlim, rc.ylim)
	if len(pieces) == 0 {
		// nothing visible in the window, but the legend row must survive
		pieces = []Polyline{{
			X: []float64{rc.xlim[0], rc.xlim[0]},
			Y: []float64{rc.ylim[0], rc.ylim[0]},
		}}
	}
	for i, piece := range pieces {
		label := ""
		if i == 0 {
			label = name
		}
		out = append(out, chart.ContinuousSeries{
			Name:    label,
			XValues: piece.X,
			YValues: piece.Y,
			Style:   lineStyle(col, rc.style.LineWidth*1.2),
		})
	}
	return out
}

// legendNamesFor formats the legend text for the mode: one row per entry
// (with charge) in all-entries mode, one row per species otherwise.
func legendNamesFor(lines *formationEnergyLines, mode EntriesMode) []string {
	var raw []string
	if mode == EntriesAll {
		raw = lines.allIDs
	} else {
		raw = lines.species
	}
	labels := LegendLabels(raw, mode == EntriesAll)
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = stripMath(l)
	}
	return out
}

// transitionMarkerSeries draws a dot at every transition level, in the
// species line color, with optional epsilon(q1/q2) annotations.
func transitionMarkerSeries(lines *formationEnergyLines, rc *renderContext) []chart.Series {
	var out []chart.Series
	transitions := rc.d.TransitionLevels()
	stable := rc.d.StableEntries()
	for i, species := range lines.species {
		tl := transitions[species]
		if len(tl) == 0 {
			continue
		}
		var xs, ys []float64
		var annotations []chart.Value2
		for _, fl := range tl.Breakpoints() {
			cs := tl[fl]
			entry, ok := stableEntryForCharge(stable[species], cs.Max())
			if !ok {
				continue
			}
			en := rc.d.FormationEnergy(entry, rc.chempots, fl)
			if fl < rc.xlim[0] || fl > rc.xlim[1] || en < rc.ylim[0] || en > rc.ylim[1] {
				continue
			}
			xs = append(xs, fl)
			ys = append(ys, en)
			annotations = append(annotations, chart.Value2{XValue: fl, YValue: en, Label: transitionLabel(cs)})
		}
		if len(xs) == 0 {
			continue
		}
		out = append(out, chart.ContinuousSeries{
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(rc.colors[i], rc.style.MarkerSize),
		})
		if rc.autoLabels {
			out = append(out, chart.AnnotationSeries{
				Annotations: annotations,
				Style: chart.Style{
					FontSize:    rc.style.FontSize * 0.9,
					StrokeColor: drawing.ColorTransparent,
					FillColor:   drawing.ColorTransparent,
				},
			})
		}
	}
	return out
}

// bandEdgeShading fades a blue band in from the left plot edge up to the
// valence band maximum (x=0) and an orange band from the conduction band
// minimum (x=band gap) to the right edge.
func bandEdgeShading(rc *renderContext) chart.Renderable {
	gap := rc.d.BandGap()
	return func(r chart.Renderer, canvasBox chart.Box, chartDefaults chart.Style) {
		xpix := func(x float64) int {
			t := (x - rc.xlim[0]) / (rc.xlim[1] - rc.xlim[0])
			return canvasBox.Left + int(t*float64(canvasBox.Width()))
		}
		shade := func(from, to float64, col drawing.Color, fadeRight bool) {
			if to <= from {
				return
			}
			const strips = 28
			const maxAlpha = 70.0
			w := (to - from) / strips
			for i := 0; i < strips; i++ {
				t := float64(i) / float64(strips-1)
				alpha := maxAlpha * (1 - t)
				if fadeRight {
					alpha = maxAlpha * t
				}
				x0 := xpix(from + float64(i)*w)
				x1 := xpix(from + float64(i+1)*w)
				if x1 <= x0 {
					x1 = x0 + 1
				}
				r.SetFillColor(col.WithAlpha(uint8(alpha)))
				r.MoveTo(x0, canvasBox.Top)
				r.LineTo(x1, canvasBox.Top)
				r.LineTo(x1, canvasBox.Bottom)
				r.LineTo(x0, canvasBox.Bottom)
				r.Close()
				r.Fill()
			}
		}
		shade(rc.xlim[0], math.Min(0, rc.xlim[1]), valenceBlue, false)
		shade(math.Max(gap, rc.xlim[0]), rc.xlim[1], conductionOrg, true)
	}
}

// chempotTable draws the chemical potentials above the plot area, shifted
// by the elemental reference energies when those are known.
func chempotTable(rc *renderContext) chart.Renderable {
	display := defectdata.Relative(rc.chempots, rc.eltRefs)
	caption := "(from calculations)"
	if len(rc.eltRefs) > 0 {
		caption = "(wrt Elemental refs)"
	}
	elements := make([]string, 0, len(display))
	for el := range display {
		elements = append(elements, el)
	}
	sort.Strings(elements)

	return func(r chart.Renderer, canvasBox chart.Box, chartDefaults chart.Style) {
		r.SetFont(chartDefaults.GetFont())
		r.SetFontColor(chart.DefaultTextColor)
		r.SetFontSize(rc.style.FontSize)

		labels := "Chemical Potentials " + caption + ":  "
		values := ""
		for i, el := range elements {
			if i > 0 {
				values += ",  "
			}
			values += fmt.Sprintf("μ_%s = %.2f", el, display[el])
		}
		values += "  [eV]"

		y := canvasBox.Top - 30
		if y < 14 {
			y = 14
		}
		r.Text(labels, canvasBox.Left, y)
		r.Text(values, canvasBox.Left, y+16)
	}
}

// clipPolyline clips a polyline to the plot window, returning the visible
// pieces. go-chart draws data outside the axis ranges, so the wide
// extrapolation caps must be trimmed before rendering.
func clipPolyline(pl Polyline, xlim, ylim [2]float64) []Polyline {
	const eps = 1e-9
	var pieces []Polyline
	var cur Polyline
	flush := func() {
		if len(cur.X) >= 2 {
			pieces = append(pieces, cur)
		}
		cur = Polyline{}
	}
	for i := 0; i+1 < len(pl.X); i++ {
		x0, y0, x1, y1, ok := clipSegment(pl.X[i], pl.Y[i], pl.X[i+1], pl.Y[i+1], xlim, ylim)
		if !ok {
			flush()
			continue
		}
		if len(cur.X) == 0 {
			cur.X = append(cur.X, x0)
			cur.Y = append(cur.Y, y0)
		} else if math.Abs(cur.X[len(cur.X)-1]-x0) > eps || math.Abs(cur.Y[len(cur.Y)-1]-y0) > eps {
			flush()
			cur.X = append(cur.X, x0)
			cur.Y = append(cur.Y, y0)
		}
		cur.X = append(cur.X, x1)
		cur.Y = append(cur.Y, y1)
	}
	flush()
	return pieces
}

// clipSegment clips one segment to the window with the Liang-Barsky
// parametric test.
func clipSegment(x0, y0, x1, y1 float64, xlim, ylim [2]float64) (float64, float64, float64, float64, bool) {
	dx := x1 - x0
	dy := y1 - y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0 - xlim[0]},
		{dx, xlim[1] - x0},
		{-dy, y0 - ylim[0]},
		{dy, ylim[1] - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}
