package plotting

import (
	"math"
	"testing"

	"defectplot/src/defectdata"
)

// fakeDiagram is an affine formation-energy oracle over a fixed entry set.
type fakeDiagram struct {
	gap      float64
	entries  []defectdata.Entry
	stable   map[string][]defectdata.Entry
	tls      map[string]defectdata.TransitionLevelMap
	energies map[string]float64 // E_f at fermi=0 with zero chempots, by entry ID
}

func (f *fakeDiagram) Entries() []defectdata.Entry                  { return f.entries }
func (f *fakeDiagram) StableEntries() map[string][]defectdata.Entry { return f.stable }
func (f *fakeDiagram) TransitionLevels() map[string]defectdata.TransitionLevelMap {
	return f.tls
}
func (f *fakeDiagram) BandGap() float64 { return f.gap }
func (f *fakeDiagram) FormationEnergy(e defectdata.Entry, chempots defectdata.ChemPots, fermi float64) float64 {
	ef := f.energies[e.ID()] + float64(e.Charge)*fermi
	for _, mu := range chempots {
		ef -= mu
	}
	return ef
}

// twoChargeDiagram has one species with charges +1/-1 crossing at Fermi
// level 1.0 in a 2.0 eV gap.
func twoChargeDiagram() *fakeDiagram {
	plus := defectdata.Entry{Name: "v_Cd", Charge: 1}
	minus := defectdata.Entry{Name: "v_Cd", Charge: -1}
	return &fakeDiagram{
		gap:     2.0,
		entries: []defectdata.Entry{plus, minus},
		stable:  map[string][]defectdata.Entry{"v_Cd": {plus, minus}},
		tls: map[string]defectdata.TransitionLevelMap{
			"v_Cd": {1.0: defectdata.NewChargeSet(1, -1)},
		},
		// 0.5 + fermi and 2.5 - fermi intersect at fermi=1.0
		energies: map[string]float64{plus.ID(): 0.5, minus.ID(): 2.5},
	}
}

func TestEnvelopeHasBreakpointsPlusTwoPoints(t *testing.T) {
	d := twoChargeDiagram()
	lines := buildFormationEnergyLines(d, nil, [2]float64{-0.3, 2.3})

	pl, ok := lines.stable["v_Cd"]
	if !ok {
		t.Fatalf("expected envelope for v_Cd")
	}
	if len(pl.X) != 3 || len(pl.Y) != 3 {
		t.Fatalf("expected 3 envelope points (1 breakpoint + 2 caps), got %d", len(pl.X))
	}
	for i := 1; i < len(pl.X); i++ {
		if pl.X[i] <= pl.X[i-1] {
			t.Fatalf("envelope x not strictly increasing: %v", pl.X)
		}
	}
	if pl.X[1] != 1.0 {
		t.Errorf("middle point should sit at the transition level 1.0, got %v", pl.X[1])
	}
	if math.Abs(pl.Y[1]-1.5) > 1e-12 {
		t.Errorf("transition energy should be 1.5, got %v", pl.Y[1])
	}
	// highest charge extrapolates left, lowest right
	if math.Abs(pl.Y[0]-(0.5-100)) > 1e-12 {
		t.Errorf("left cap should evaluate the +1 entry at -100, got %v", pl.Y[0])
	}
	if math.Abs(pl.Y[2]-(2.5-100)) > 1e-12 {
		t.Errorf("right cap should evaluate the -1 entry at +100, got %v", pl.Y[2])
	}
}

func TestEnvelopeCollectsWindowEdgeSamples(t *testing.T) {
	d := twoChargeDiagram()
	lines := buildFormationEnergyLines(d, nil, [2]float64{-0.3, 2.3})

	// fe(+1, -0.3)=0.2, fe(breakpoint)=1.5, fe(-1, 2.3)=0.2
	if len(lines.yRange) != 3 {
		t.Fatalf("expected 3 y-range samples, got %d: %v", len(lines.yRange), lines.yRange)
	}
	want := []float64{0.2, 1.5, 0.2}
	for i, w := range want {
		if math.Abs(lines.yRange[i]-w) > 1e-12 {
			t.Errorf("yRange[%d] = %v, want %v", i, lines.yRange[i], w)
		}
	}
}

func TestAllStatesLinesSpanCaps(t *testing.T) {
	d := twoChargeDiagram()
	lines := buildFormationEnergyLines(d, nil, [2]float64{-0.3, 2.3})

	if len(lines.allIDs) != 2 {
		t.Fatalf("expected 2 all-states lines, got %d", len(lines.allIDs))
	}
	pl := lines.all["v_Cd_1"]
	if len(pl.X) != 2 || pl.X[0] != lowerCap || pl.X[1] != upperCap {
		t.Fatalf("all-states line should span the caps, got %v", pl.X)
	}
	// two window-edge samples per entry
	if len(lines.yRangeAll) != 4 {
		t.Errorf("expected 4 all-entries y-range samples, got %d", len(lines.yRangeAll))
	}
}

func TestEmptyTransitionMapReusesAllStatesLine(t *testing.T) {
	e := defectdata.Entry{Name: "Te_Cd", Charge: 0}
	d := &fakeDiagram{
		gap:      1.5,
		entries:  []defectdata.Entry{e},
		stable:   map[string][]defectdata.Entry{"Te_Cd": {e}},
		tls:      map[string]defectdata.TransitionLevelMap{"Te_Cd": {}},
		energies: map[string]float64{e.ID(): 1.2},
	}
	lines := buildFormationEnergyLines(d, nil, [2]float64{-0.3, 1.8})

	env := lines.stable["Te_Cd"]
	all := lines.all[e.ID()]
	if len(env.X) != 2 {
		t.Fatalf("single-state envelope should be the 2-point all-states line, got %d points", len(env.X))
	}
	for i := range env.X {
		if env.X[i] != all.X[i] || env.Y[i] != all.Y[i] {
			t.Fatalf("envelope %v/%v differs from all-states line %v/%v", env.X, env.Y, all.X, all.Y)
		}
	}
}

func TestAllNegativeInGapLowersFloorAndWarns(t *testing.T) {
	e := defectdata.Entry{Name: "Cd_i", Charge: 0}
	d := &fakeDiagram{
		gap:      2.0,
		entries:  []defectdata.Entry{e},
		stable:   map[string][]defectdata.Entry{"Cd_i": {e}},
		tls:      map[string]defectdata.TransitionLevelMap{"Cd_i": {}},
		energies: map[string]float64{e.ID(): -1.0},
	}
	lines := buildFormationEnergyLines(d, nil, [2]float64{-0.3, 2.3})

	if lines.ymin != -1.0 {
		t.Errorf("expected y floor lowered to -1.0, got %v", lines.ymin)
	}
	if len(lines.warnings) == 0 {
		t.Fatalf("expected an all-negative-in-gap warning")
	}
}

func TestPositiveEnvelopeDoesNotWarn(t *testing.T) {
	d := twoChargeDiagram()
	lines := buildFormationEnergyLines(d, nil, [2]float64{-0.3, 2.3})
	if len(lines.warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", lines.warnings)
	}
	if lines.ymin != 0 {
		t.Errorf("y floor should stay at 0, got %v", lines.ymin)
	}
}

// TestStableEntryTieBreak pins the documented deterministic choice when
// two stable entries share the selected charge at a breakpoint: the
// lexicographically smallest entry ID wins.
func TestStableEntryTieBreak(t *testing.T) {
	a := defectdata.Entry{Name: "v_Cd_s2", Charge: 1}
	b := defectdata.Entry{Name: "v_Cd_s1", Charge: 1}
	entry, ok := stableEntryForCharge([]defectdata.Entry{a, b}, 1)
	if !ok {
		t.Fatalf("expected a match")
	}
	if entry.Name != "v_Cd_s1" {
		t.Errorf("expected lexicographically smallest entry, got %s", entry.Name)
	}
}

func TestChemPotsShiftFormationEnergies(t *testing.T) {
	d := twoChargeDiagram()
	withPots := buildFormationEnergyLines(d, defectdata.ChemPots{"Cd": 0.5}, [2]float64{-0.3, 2.3})
	without := buildFormationEnergyLines(d, nil, [2]float64{-0.3, 2.3})
	diff := without.stable["v_Cd"].Y[1] - withPots.stable["v_Cd"].Y[1]
	if math.Abs(diff-0.5) > 1e-12 {
		t.Errorf("chemical potential should shift the envelope by 0.5 eV, got %v", diff)
	}
}
