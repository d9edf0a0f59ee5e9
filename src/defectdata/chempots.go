package defectdata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// ChempotSpec is a chemical-potential specification: either a single
// absolute mapping (Single), or a set of named facets (chemical-potential
// limits) each with its own mapping plus shared elemental reference
// energies, as produced by chemical-potential analysis tools.
type ChempotSpec struct {
	Single        ChemPots
	Facets        map[string]ChemPots
	ElementalRefs ChemPots
}

// chempotFile mirrors the on-disk JSON shape. A flat {element: value}
// object is also accepted and becomes Single.
type chempotFile struct {
	Facets        map[string]ChemPots `json:"facets"`
	ElementalRefs ChemPots            `json:"elemental_refs"`
}

// LoadChempots reads a chemical-potential JSON file. The file is either a
// flat {element: potential} object, or the multi-facet form
// {"facets": {name: {element: potential}}, "elemental_refs": {...}}.
func LoadChempots(path string) (*ChempotSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chempots: %w", err)
	}
	var f chempotFile
	if err := json.Unmarshal(data, &f); err == nil && len(f.Facets) > 0 {
		return &ChempotSpec{Facets: f.Facets, ElementalRefs: f.ElementalRefs}, nil
	}
	var flat ChemPots
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parse chempots: %w", err)
	}
	return &ChempotSpec{Single: flat}, nil
}

// HasFacets reports whether the spec carries named facets.
func (c *ChempotSpec) HasFacets() bool {
	return c != nil && len(c.Facets) > 0
}

// FacetNames returns the facet names sorted for deterministic iteration.
func (c *ChempotSpec) FacetNames() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.Facets))
	for name := range c.Facets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Facet returns the chemical potentials for the named facet.
func (c *ChempotSpec) Facet(name string) (ChemPots, error) {
	cp, ok := c.Facets[name]
	if !ok {
		return nil, fmt.Errorf("facet %q not in chempots (have %v)", name, c.FacetNames())
	}
	return cp, nil
}

// Relative shifts absolute potentials by the elemental reference energies,
// giving formal chemical potentials for display. Potentials are returned
// unchanged when no references are known.
func Relative(chempots, eltRefs ChemPots) ChemPots {
	if len(eltRefs) == 0 {
		return chempots
	}
	out := make(ChemPots, len(chempots))
	for el, mu := range chempots {
		out[el] = mu - eltRefs[el]
	}
	return out
}
