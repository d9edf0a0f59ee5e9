package defectdata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Diagram is a file-backed defect phase diagram. It carries the
// precomputed stable-entry groupings and transition-level maps (derived
// upstream by the thermodynamics analysis) and evaluates formation
// energies as affine functions of the Fermi level.
type Diagram struct {
	bandGap     float64
	entries     []Entry
	stable      map[string][]Entry
	transitions map[string]TransitionLevelMap
	records     map[string]entryRecord
}

type entryRecord struct {
	// Energy is the formation energy at Fermi level 0 with all chemical
	// potentials at zero.
	Energy float64
	// Elements holds the number of atoms of each element added to the
	// host when forming the defect (negative for removal).
	Elements map[string]float64
	Charge   int
}

type diagramFile struct {
	BandGap float64 `json:"band_gap"`
	Entries []struct {
		Name     string             `json:"name"`
		Charge   int                `json:"charge"`
		Energy   float64            `json:"energy"`
		Elements map[string]float64 `json:"elements"`
	} `json:"entries"`
	StableEntries    map[string][]int `json:"stable_entries"`
	TransitionLevels map[string][]struct {
		Fermi   float64 `json:"fermi"`
		Charges []int   `json:"charges"`
	} `json:"transition_levels"`
}

// LoadDiagram reads a defect phase diagram from a JSON file.
func LoadDiagram(path string) (*Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read diagram: %w", err)
	}
	var f diagramFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse diagram: %w", err)
	}
	return newDiagram(f)
}

func newDiagram(f diagramFile) (*Diagram, error) {
	if f.BandGap <= 0 {
		return nil, fmt.Errorf("diagram band_gap must be positive, got %v", f.BandGap)
	}
	d := &Diagram{
		bandGap:     f.BandGap,
		stable:      make(map[string][]Entry),
		transitions: make(map[string]TransitionLevelMap),
		records:     make(map[string]entryRecord),
	}
	for _, e := range f.Entries {
		entry := Entry{Name: e.Name, Charge: e.Charge}
		if _, dup := d.records[entry.ID()]; dup {
			return nil, fmt.Errorf("duplicate diagram entry %s", entry.ID())
		}
		d.entries = append(d.entries, entry)
		d.records[entry.ID()] = entryRecord{Energy: e.Energy, Elements: e.Elements, Charge: e.Charge}
	}
	for species, idxs := range f.StableEntries {
		for _, i := range idxs {
			if i < 0 || i >= len(d.entries) {
				return nil, fmt.Errorf("stable_entries[%s]: entry index %d out of range", species, i)
			}
			d.stable[species] = append(d.stable[species], d.entries[i])
		}
		// deterministic order regardless of file layout
		sort.Slice(d.stable[species], func(a, b int) bool {
			return d.stable[species][a].ID() < d.stable[species][b].ID()
		})
	}
	for species, levels := range f.TransitionLevels {
		tl := make(TransitionLevelMap, len(levels))
		for _, lvl := range levels {
			if len(lvl.Charges) < 2 {
				return nil, fmt.Errorf("transition_levels[%s]: level at %v needs >=2 charges", species, lvl.Fermi)
			}
			tl[lvl.Fermi] = NewChargeSet(lvl.Charges...)
		}
		d.transitions[species] = tl
	}
	// species with stable entries but no listed transitions still need a
	// (possibly empty) map entry, matching the upstream analysis output
	for species := range d.stable {
		if _, ok := d.transitions[species]; !ok {
			d.transitions[species] = TransitionLevelMap{}
		}
	}
	return d, nil
}

// BandGap returns the host band gap in eV.
func (d *Diagram) BandGap() float64 { return d.bandGap }

// Entries returns every (species, charge) entry in the diagram.
func (d *Diagram) Entries() []Entry { return d.entries }

// StableEntries maps each species to the entries that are the
// lowest-energy charge state somewhere in the gap.
func (d *Diagram) StableEntries() map[string][]Entry { return d.stable }

// TransitionLevels maps each species to its transition-level breakpoints.
func (d *Diagram) TransitionLevels() map[string]TransitionLevelMap { return d.transitions }

// FormationEnergy evaluates the formation energy of an entry at the given
// chemical potentials and Fermi level:
//
//	E_f = E_0 - sum_el(n_el * mu_el) + q * E_Fermi
//
// It is defined and finite for any real Fermi level, including far
// outside [0, band gap]. Unknown entries evaluate to 0.
func (d *Diagram) FormationEnergy(e Entry, chempots ChemPots, fermi float64) float64 {
	rec, ok := d.records[e.ID()]
	if !ok {
		return 0
	}
	ef := rec.Energy + float64(rec.Charge)*fermi
	for el, n := range rec.Elements {
		ef -= n * chempots[el]
	}
	return ef
}
