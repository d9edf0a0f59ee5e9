// Package plotting renders defect formation-energy versus Fermi-level
// diagrams (transition-level diagrams) from a precomputed defect phase
// diagram, to publication-quality PNG figures.
//
// Not thread-safe: the active plot style is process-wide, so run one plot
// composition at a time per process.
package plotting

import (
	"fmt"
	"sort"

	"defectplot/src/defectdata"
)

// DefectDiagram supplies the thermodynamic inputs for a plot. The
// formation-energy oracle must be defined and finite for any real Fermi
// level, including far outside [0, band gap], and affine in the Fermi
// level for a fixed entry and chemical potentials.
type DefectDiagram interface {
	Entries() []defectdata.Entry
	StableEntries() map[string][]defectdata.Entry
	TransitionLevels() map[string]defectdata.TransitionLevelMap
	BandGap() float64
	FormationEnergy(e defectdata.Entry, chempots defectdata.ChemPots, fermi float64) float64
}

// Polyline is an ordered set of (Fermi level, formation energy) samples
// with X non-decreasing.
type Polyline struct {
	X []float64
	Y []float64
}

// Lines are extended well past the plot window so the linear
// extrapolation stays visually straight under any axis override.
const (
	lowerCap = -100.0
	upperCap = 100.0
)

// formationEnergyLines collects every polyline and y-range sample needed
// to compose one figure.
type formationEnergyLines struct {
	// stable holds the piecewise-linear lower envelope per species, in
	// species order.
	stable map[string]Polyline
	// all holds one two-point line per (species, charge) entry, keyed by
	// entry ID, in allIDs order.
	all map[string]Polyline

	species []string
	allIDs  []string

	// formation energies sampled at the visible window edges, used for
	// y-axis auto-scaling in stable-only and all-entries modes.
	yRange    []float64
	yRangeAll []float64

	// ymin is lowered below zero when a species' envelope is negative
	// across the whole gap.
	ymin     float64
	warnings []string
}

func (l *formationEnergyLines) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.warnings = append(l.warnings, msg)
	warnf(msg)
}

// buildFormationEnergyLines walks the diagram and produces the stable
// envelope for every species plus an unconditional line per entry.
func buildFormationEnergyLines(d DefectDiagram, chempots defectdata.ChemPots, xlim [2]float64) *formationEnergyLines {
	lines := &formationEnergyLines{
		stable: make(map[string]Polyline),
		all:    make(map[string]Polyline),
	}

	for _, entry := range d.Entries() {
		id := entry.ID()
		lines.allIDs = append(lines.allIDs, id)
		lines.all[id] = Polyline{
			X: []float64{lowerCap, upperCap},
			Y: []float64{
				d.FormationEnergy(entry, chempots, lowerCap),
				d.FormationEnergy(entry, chempots, upperCap),
			},
		}
		lines.yRangeAll = append(lines.yRangeAll,
			d.FormationEnergy(entry, chempots, xlim[0]),
			d.FormationEnergy(entry, chempots, xlim[1]))
	}

	transitions := d.TransitionLevels()
	lines.species = make([]string, 0, len(transitions))
	for species := range transitions {
		lines.species = append(lines.species, species)
	}
	sort.Strings(lines.species)

	stableEntries := d.StableEntries()
	for _, species := range lines.species {
		tl := transitions[species]
		var pl Polyline
		if len(tl) == 0 {
			pl = lines.singleStateLine(d, species, stableEntries[species], chempots, xlim)
		} else {
			pl = lines.envelope(d, species, stableEntries[species], tl, chempots, xlim)
		}
		lines.stable[species] = pl
		lines.checkInGap(species, pl, d.BandGap())
	}

	return lines
}

// singleStateLine reuses the all-states line of the species' only stable
// entry: with no transition levels the envelope is that single line.
func (l *formationEnergyLines) singleStateLine(d DefectDiagram, species string, stable []defectdata.Entry, chempots defectdata.ChemPots, xlim [2]float64) Polyline {
	if len(stable) == 0 {
		l.warn("species %s has no stable entries; skipping", species)
		return Polyline{}
	}
	entry := stable[0]
	l.yRange = append(l.yRange,
		d.FormationEnergy(entry, chempots, xlim[0]),
		d.FormationEnergy(entry, chempots, xlim[1]))
	return l.all[entry.ID()]
}

// envelope emits the stable lower-envelope polyline across the species'
// transition levels: the highest charge is stable below the first
// breakpoint and the lowest above the last, so a map with k breakpoints
// yields k+2 points.
func (l *formationEnergyLines) envelope(d DefectDiagram, species string, stable []defectdata.Entry, tl defectdata.TransitionLevelMap, chempots defectdata.ChemPots, xlim [2]float64) Polyline {
	breakpoints := tl.Breakpoints()
	pl := Polyline{
		X: make([]float64, 0, len(breakpoints)+2),
		Y: make([]float64, 0, len(breakpoints)+2),
	}

	firstCharge := tl[breakpoints[0]].Max()
	if entry, ok := stableEntryForCharge(stable, firstCharge); ok {
		pl.X = append(pl.X, lowerCap)
		pl.Y = append(pl.Y, d.FormationEnergy(entry, chempots, lowerCap))
		l.yRange = append(l.yRange, d.FormationEnergy(entry, chempots, xlim[0]))
	} else {
		l.warn("species %s: no stable entry with charge %+d", species, firstCharge)
	}

	for _, fl := range breakpoints {
		charge := tl[fl].Max()
		entry, ok := stableEntryForCharge(stable, charge)
		if !ok {
			l.warn("species %s: no stable entry with charge %+d", species, charge)
			continue
		}
		formEn := d.FormationEnergy(entry, chempots, fl)
		pl.X = append(pl.X, fl)
		pl.Y = append(pl.Y, formEn)
		l.yRange = append(l.yRange, formEn)
	}

	lastCharge := tl[breakpoints[len(breakpoints)-1]].Min()
	if entry, ok := stableEntryForCharge(stable, lastCharge); ok {
		pl.X = append(pl.X, upperCap)
		pl.Y = append(pl.Y, d.FormationEnergy(entry, chempots, upperCap))
		l.yRange = append(l.yRange, d.FormationEnergy(entry, chempots, xlim[1]))
	} else {
		l.warn("species %s: no stable entry with charge %+d", species, lastCharge)
	}

	return pl
}

// checkInGap samples the polyline across the band gap and flags the
// physically implausible case of an envelope that is negative everywhere
// in the gap, lowering the y-axis floor to keep the curve visible.
func (l *formationEnergyLines) checkInGap(species string, pl Polyline, bandGap float64) {
	if len(pl.X) == 0 {
		return
	}
	yvals := interpSamples(pl.X, pl.Y, 0, bandGap, inGapSamples)
	minY := yvals[0]
	allNegative := true
	for _, y := range yvals {
		if y >= 0 {
			allNegative = false
			break
		}
		if y < minY {
			minY = y
		}
	}
	if allNegative {
		l.warn("all formation energies for %s are below zero across the entire band gap; "+
			"this is typically unphysical and likely a chemical-potential mis-specification", species)
		if minY < l.ymin {
			l.ymin = minY
		}
	}
}

// stableEntryForCharge picks the stable entry with the given charge.
// When several stable entries share the charge, the lexicographically
// smallest entry ID wins, so the choice is deterministic.
func stableEntryForCharge(stable []defectdata.Entry, charge int) (defectdata.Entry, bool) {
	var best defectdata.Entry
	found := false
	for _, e := range stable {
		if e.Charge != charge {
			continue
		}
		if !found || e.ID() < best.ID() {
			best = e
			found = true
		}
	}
	return best, found
}
