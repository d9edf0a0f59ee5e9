// Package defectdata holds the data model for defect phase diagrams:
// defect entries, charge-state sets, transition-level maps and
// chemical-potential specifications, plus file-backed loaders for each.
package defectdata

import (
	"fmt"
	"sort"
)

// Entry identifies one (defect species, charge state) combination.
type Entry struct {
	Name   string
	Charge int
}

// ID returns the conventional "<name>_<charge>" identifier used to key
// per-entry lines and legend text.
func (e Entry) ID() string {
	return fmt.Sprintf("%s_%d", e.Name, e.Charge)
}

// ChemPots maps element symbol to a chemical potential in eV.
type ChemPots map[string]float64

// Elements returns the element symbols in sorted order.
func (c ChemPots) Elements() []string {
	out := make([]string, 0, len(c))
	for el := range c {
		out = append(out, el)
	}
	sort.Strings(out)
	return out
}

// ChargeSet is the set of charge states that are degenerate (equal
// formation energy) at a transition level. Modeled as a set rather than a
// slice so the stability tie-break (max charge below a breakpoint, min
// charge above) reads directly off the type.
type ChargeSet map[int]struct{}

// NewChargeSet builds a set from the given charges.
func NewChargeSet(charges ...int) ChargeSet {
	s := make(ChargeSet, len(charges))
	for _, q := range charges {
		s[q] = struct{}{}
	}
	return s
}

// Has reports whether q is in the set.
func (s ChargeSet) Has(q int) bool {
	_, ok := s[q]
	return ok
}

// Max returns the most positive charge in the set. Empty sets return 0.
func (s ChargeSet) Max() int {
	first := true
	best := 0
	for q := range s {
		if first || q > best {
			best = q
			first = false
		}
	}
	return best
}

// Min returns the most negative charge in the set. Empty sets return 0.
func (s ChargeSet) Min() int {
	first := true
	best := 0
	for q := range s {
		if first || q < best {
			best = q
			first = false
		}
	}
	return best
}

// Charges returns the set contents sorted ascending.
func (s ChargeSet) Charges() []int {
	out := make([]int, 0, len(s))
	for q := range s {
		out = append(out, q)
	}
	sort.Ints(out)
	return out
}

// TransitionLevelMap holds, for one defect species, the Fermi-level
// breakpoints where the stable charge state changes. An empty map means a
// single charge state is stable across the whole window.
type TransitionLevelMap map[float64]ChargeSet

// Breakpoints returns the Fermi-level breakpoints sorted ascending.
func (m TransitionLevelMap) Breakpoints() []float64 {
	out := make([]float64, 0, len(m))
	for fl := range m {
		out = append(out, fl)
	}
	sort.Float64s(out)
	return out
}
