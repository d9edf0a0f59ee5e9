package plotting

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"

	"defectplot/src/defectdata"
)

// EntriesMode selects which formation-energy lines are drawn.
type EntriesMode string

const (
	// EntriesStable draws only the stable lower envelope per species.
	EntriesStable EntriesMode = "stable"
	// EntriesAll draws every (species, charge) entry in full color.
	EntriesAll EntriesMode = "all"
	// EntriesAllFaded draws stable envelopes in bold over faded grey
	// lines for every entry.
	EntriesAllFaded EntriesMode = "faded"
)

// ParseEntriesMode maps a CLI/user string onto an EntriesMode. The empty
// string means stable-only.
func ParseEntriesMode(s string) (EntriesMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stable", "stable-only":
		return EntriesStable, nil
	case "all", "true":
		return EntriesAll, nil
	case "faded", "all-faded":
		return EntriesAllFaded, nil
	}
	return "", fmt.Errorf("entries mode must be stable, all or faded, not %q", s)
}

// Options configures one FormationEnergyPlot call.
type Options struct {
	// Chempots supplies chemical potentials, either a single absolute
	// mapping or a multi-facet set. Nil plots with all potentials zero.
	Chempots *defectdata.ChempotSpec
	// Facets limits which facets render; empty means all of them.
	Facets []string
	// ChempotTable draws the chemical-potential table above the plot.
	ChempotTable bool
	// Entries selects the display mode; empty means stable-only.
	Entries EntriesMode
	// StyleFile points at a YAML plot style; empty uses the defaults.
	StyleFile string
	// XLim / YLim override the automatic axis ranges.
	XLim *[2]float64
	YLim *[2]float64
	// FermiLevel draws a dash-dot vertical marker, typically the
	// equilibrium Fermi level.
	FermiLevel *float64
	// Colormap names the line color scheme (Dark2, tab10, tab20).
	Colormap string
	// AutoLabels annotates transition levels with their charge states.
	AutoLabels bool
	// Filename writes each rendered facet to disk when set; with several
	// facets the facet name is appended before the extension.
	Filename string
}

// Figure is one rendered diagram.
type Figure struct {
	Chart    *chart.Chart
	PNG      []byte
	Image    image.Image
	Facet    string
	Warnings []string
}

// FormationEnergyPlot renders a defect formation-energy versus Fermi
// level diagram per facet and returns the figure for the last facet
// processed. Advisory conditions (missing or formal-looking chemical
// potentials, palette wrap-around, all-negative envelopes) are logged and
// collected on the Figure; they never abort the plot.
//
// Not thread-safe: one composition at a time per process.
func FormationEnergyPlot(d DefectDiagram, opts Options) (*Figure, error) {
	mode := opts.Entries
	if mode == "" {
		mode = EntriesStable
	}
	if mode != EntriesStable && mode != EntriesAll && mode != EntriesAllFaded {
		return nil, fmt.Errorf("entries mode must be stable, all or faded, not %q", string(opts.Entries))
	}
	if len(d.Entries()) == 0 {
		return nil, fmt.Errorf("diagram has no entries")
	}

	style, err := LoadStyle(opts.StyleFile)
	if err != nil {
		return nil, err
	}
	colormap := opts.Colormap
	if colormap == "" {
		colormap = style.Colormap
	}

	spec := opts.Chempots
	if spec != nil && spec.HasFacets() {
		facets := opts.Facets
		if len(facets) == 0 {
			facets = spec.FacetNames()
		}
		var fig *Figure
		for _, facet := range facets {
			chempots, err := spec.Facet(facet)
			if err != nil {
				return nil, err
			}
			filename := opts.Filename
			if filename != "" && len(facets) > 1 {
				filename = facetFilename(filename, facet)
			}
			fig, err = plotOne(d, chempots, spec.ElementalRefs, mode, style, colormap, facet, filename, opts)
			if err != nil {
				return nil, err
			}
		}
		return fig, nil
	}

	var chempots defectdata.ChemPots
	var advisories []string
	if spec != nil {
		chempots = spec.Single
		if len(spec.ElementalRefs) == 0 && looksFormal(chempots) {
			advisories = append(advisories, "at least one chemical potential is close to zero, which is likely "+
				"a formal potential, but no elemental reference energies were supplied; absolute formation "+
				"energies will be off (transition level positions are unaffected)")
		}
	}
	fig, err := plotOne(d, chempots, eltRefsOf(spec), mode, style, colormap, "", opts.Filename, opts)
	if err != nil {
		return nil, err
	}
	for _, msg := range advisories {
		warnf(msg)
	}
	fig.Warnings = append(advisories, fig.Warnings...)
	return fig, nil
}

func eltRefsOf(spec *defectdata.ChempotSpec) defectdata.ChemPots {
	if spec == nil {
		return nil
	}
	return spec.ElementalRefs
}

// looksFormal reports whether any potential sits near zero, the signature
// of formal (relative) chemical potentials.
func looksFormal(chempots defectdata.ChemPots) bool {
	for _, mu := range chempots {
		if math.Abs(mu) <= 0.1 {
			return true
		}
	}
	return false
}

func plotOne(d DefectDiagram, chempots, eltRefs defectdata.ChemPots, mode EntriesMode, style *Style, colormap, title, filename string, opts Options) (*Figure, error) {
	var warnings []string
	warn := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		warnings = append(warnings, msg)
		warnf(msg)
	}

	if len(chempots) == 0 {
		warn("no chemical potentials specified; all potentials set to zero, which will give large errors " +
			"in absolute formation energies (transition level positions are unaffected)")
		chempots = defectdata.ChemPots{}
	}

	xlim := [2]float64{-0.3, d.BandGap() + 0.3}
	if opts.XLim != nil {
		xlim = *opts.XLim
	}

	lines := buildFormationEnergyLines(d, chempots, xlim)

	lineCount := len(lines.species)
	yRange := lines.yRange
	if mode == EntriesAll {
		lineCount = len(lines.allIDs)
		yRange = lines.yRangeAll
	}
	if size := paletteSize(colormap); size > 0 && lineCount > size {
		warn("colormap %s has only %d colors for %d lines; colors will repeat (try tab10 or tab20)",
			colormap, size, lineCount)
	}
	colors, err := paletteColors(colormap, lineCount)
	if err != nil {
		return nil, err
	}

	var ylim [2]float64
	if opts.YLim != nil {
		ylim = *opts.YLim
	} else {
		lo, hi := Ylim(yRange, lines.ymin, opts.AutoLabels)
		ylim = [2]float64{lo, hi}
	}

	rc := &renderContext{
		d:          d,
		chempots:   chempots,
		eltRefs:    eltRefs,
		mode:       mode,
		style:      style,
		colors:     colors,
		xlim:       xlim,
		ylim:       ylim,
		fermiLevel: opts.FermiLevel,
		autoLabels: opts.AutoLabels,
		title:      title,
		showTable:  opts.ChempotTable,
	}
	ch := composeFigure(lines, rc)

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render figure: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("decode rendered figure: %w", err)
	}
	if filename != "" {
		if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("write figure: %w", err)
		}
		debugf("wrote %s", filename)
	}

	return &Figure{
		Chart:    ch,
		PNG:      buf.Bytes(),
		Image:    img,
		Facet:    title,
		Warnings: append(warnings, lines.warnings...),
	}, nil
}

// facetFilename appends the facet name before the file extension, e.g.
// "out.png" + "Cd-rich" -> "out_Cd-rich.png".
func facetFilename(filename, facet string) string {
	if i := strings.LastIndex(filename, "."); i > 0 {
		return filename[:i] + "_" + facet + filename[i:]
	}
	return filename + "_" + facet
}
