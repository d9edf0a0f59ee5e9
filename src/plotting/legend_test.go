package plotting

import (
	"strings"
	"testing"

	"defectplot/src/defectdata"
)

func TestFormatDefectNameVariants(t *testing.T) {
	cases := []struct {
		name       string
		siteNum    bool
		withCharge bool
		want       string
	}{
		{"v_Cd", false, false, "$V_{Cd}$"},
		{"v_Cd_-2", false, true, "$V_{Cd}^{-2}$"},
		{"v_Cd_-2", false, false, "$V_{Cd}$"},
		{"Cd_i_+1", false, true, "$Cd_{i}^{+1}$"},
		{"Te_Cd_0", false, true, "$Te_{Cd}^{0}$"},
		{"v_Cd_s1_-2", true, true, "$V_{Cd_{1}}^{-2}$"},
		{"v_Cd_s1_-2", false, true, "$V_{Cd}^{-2}$"},
	}
	for _, c := range cases {
		got, err := FormatDefectName(c.name, c.siteNum, c.withCharge)
		if err != nil {
			t.Fatalf("FormatDefectName(%q): %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("FormatDefectName(%q, site=%v, charge=%v) = %q, want %q",
				c.name, c.siteNum, c.withCharge, got, c.want)
		}
	}
}

func TestFormatDefectNameRejectsUnparseable(t *testing.T) {
	if _, err := FormatDefectName("weird", false, false); err == nil {
		t.Fatalf("expected an error for a name with no site token")
	}
}

// TestLegendLabelsIdempotentSingle pins that a single unique name always
// gets its first-attempt formatting, never a suffix.
func TestLegendLabelsIdempotentSingle(t *testing.T) {
	got := LegendLabels([]string{"v_Cd"}, false)
	if len(got) != 1 || got[0] != "$V_{Cd}$" {
		t.Fatalf("expected [$V_{Cd}$], got %v", got)
	}
}

func TestLegendLabelsCollisionGetsLetterSuffix(t *testing.T) {
	// both strip to the same species label in stable mode
	got := LegendLabels([]string{"v_Cd_+1", "v_Cd_+2"}, false)
	if got[0] != "$V_{Cd}$" {
		t.Fatalf("first occurrence must be unsuffixed, got %q", got[0])
	}
	if got[1] != "$V_{Cd}a$" {
		t.Fatalf("expected letter suffix before the trailing delimiter, got %q", got[1])
	}
	if got[0] == got[1] {
		t.Fatalf("labels must be unique: %v", got)
	}
}

func TestLegendLabelsSiteIndexDisambiguation(t *testing.T) {
	got := LegendLabels([]string{"v_Cd_s1_0", "v_Cd_s2_0"}, false)
	if got[0] != "$V_{Cd}$" {
		t.Errorf("first label should omit the site index, got %q", got[0])
	}
	if got[1] != "$V_{Cd_{2}}$" {
		t.Errorf("second label should disambiguate with the site index, got %q", got[1])
	}
}

func TestLegendLabelsSuffixIncrements(t *testing.T) {
	got := LegendLabels([]string{"v_Cd_+1", "v_Cd_+2", "v_Cd_-1"}, false)
	want := []string{"$V_{Cd}$", "$V_{Cd}a$", "$V_{Cd}b$"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLegendLabelsFallbackOnFormatFailure(t *testing.T) {
	got := LegendLabels([]string{"weird", "weird"}, false)
	if got[0] != "weird" {
		t.Errorf("unparseable names fall back to the raw identifier, got %q", got[0])
	}
	if got[1] != "weirda" {
		t.Errorf("raw-name collisions still get a suffix, got %q", got[1])
	}
}

func TestLegendLabelsKeepChargesInAllEntriesMode(t *testing.T) {
	got := LegendLabels([]string{"v_Cd_+1", "v_Cd_-1"}, true)
	if got[0] != "$V_{Cd}^{+1}$" || got[1] != "$V_{Cd}^{-1}$" {
		t.Fatalf("all-entries mode keeps charge states distinct: %v", got)
	}
}

func TestTransitionLabel(t *testing.T) {
	got := transitionLabel(defectdata.NewChargeSet(1, -1))
	if got != "ε(+1/-1)" {
		t.Errorf("transitionLabel = %q", got)
	}
	got = transitionLabel(defectdata.NewChargeSet(0, -2))
	if got != "ε(0/-2)" {
		t.Errorf("transitionLabel = %q", got)
	}
}

func TestStripMath(t *testing.T) {
	got := stripMath("$V_{Cd}^{-2}a$")
	if got != "V_Cd^-2a" {
		t.Errorf("stripMath = %q", got)
	}
	if strings.Contains(got, "$") {
		t.Errorf("delimiter should be stripped: %q", got)
	}
}
