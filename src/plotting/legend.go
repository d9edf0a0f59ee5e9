package plotting

import (
	"fmt"
	"strconv"
	"strings"

	"defectplot/src/defectdata"
)

// Legend labels use math-style markup with a fixed trailing "$"
// delimiter, e.g. "$V_{Cd}^{-2}$". Collision suffixes are inserted
// immediately before that delimiter.
const labelDelimiter = "$"

// LegendLabels formats raw defect identifiers into unique legend strings,
// in input order. Formatting first tries without the site index; a
// collision retries with it; remaining collisions get a lowercase letter
// suffix (a, b, c, ...) before the trailing delimiter. A name the
// formatter cannot parse falls back to the raw identifier unchanged, so
// formatting never fails the plot.
func LegendLabels(names []string, allEntries bool) []string {
	labels := make([]string, 0, len(names))
	for _, name := range names {
		label, err := FormatDefectName(name, false, allEntries)
		if err != nil {
			label = name
		}
		if contains(labels, label) {
			if retry, err := FormatDefectName(name, true, allEntries); err == nil {
				label = retry
			}
		}
		labels = append(labels, uniqueLabel(labels, label))
	}
	return labels
}

// uniqueLabel resolves a collision against the labels emitted so far by
// inserting an incrementing letter before the trailing delimiter. The
// first occurrence of a label is returned untouched.
func uniqueLabel(emitted []string, label string) string {
	if !contains(emitted, label) {
		return label
	}
	for letter := 'a'; ; letter++ {
		candidate := insertSuffix(label, letter)
		if !contains(emitted, candidate) {
			return candidate
		}
	}
}

func insertSuffix(label string, letter rune) string {
	if strings.HasSuffix(label, labelDelimiter) {
		base := label[:len(label)-len(labelDelimiter)]
		return base + string(letter) + labelDelimiter
	}
	return label + string(letter)
}

func contains(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// FormatDefectName renders a raw defect identifier as a math-styled
// label. Recognized grammars (tokens joined by underscores):
//
//	v_Cd_-2      vacancy            -> $V_{Cd}^{-2}$
//	Cd_i_+1      interstitial       -> $Cd_{i}^{+1}$
//	Te_Cd_0      substitution       -> $Te_{Cd}^{0}$
//	v_Cd_s1_-2   with site index    -> $V_{Cd_{1}}^{-2}$ (when included)
//
// The trailing charge token is optional; withCharge controls whether it
// appears in the label. Unrecognized identifiers return an error so the
// caller can fall back to the raw name.
func FormatDefectName(name string, includeSiteNum, withCharge bool) (string, error) {
	tokens := strings.Split(name, "_")
	if len(tokens) < 2 {
		return "", fmt.Errorf("defect name %q has no site token", name)
	}

	charge, hasCharge := 0, false
	if q, err := strconv.Atoi(tokens[len(tokens)-1]); err == nil {
		charge, hasCharge = q, true
		tokens = tokens[:len(tokens)-1]
	}

	siteNum := ""
	if len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		if strings.HasPrefix(last, "s") && len(last) > 1 {
			if _, err := strconv.Atoi(last[1:]); err == nil {
				siteNum = last[1:]
				tokens = tokens[:len(tokens)-1]
			}
		}
	}
	if len(tokens) != 2 {
		return "", fmt.Errorf("defect name %q not in <defect>_<site> form", name)
	}

	head, site := tokens[0], tokens[1]
	if head == "" || site == "" {
		return "", fmt.Errorf("defect name %q has empty tokens", name)
	}
	if strings.EqualFold(head, "v") {
		head = "V" // vacancy
	}

	sub := site
	if includeSiteNum && siteNum != "" {
		sub = fmt.Sprintf("%s_{%s}", site, siteNum)
	}
	label := fmt.Sprintf("$%s_{%s}", head, sub)
	if withCharge && hasCharge {
		label += fmt.Sprintf("^{%s}", chargeString(charge))
	}
	return label + labelDelimiter, nil
}

// chargeString renders a charge with an explicit sign for nonzero values.
func chargeString(q int) string {
	if q > 0 {
		return fmt.Sprintf("+%d", q)
	}
	return strconv.Itoa(q)
}

// transitionLabel renders the epsilon(q1/q2) annotation for a set of
// charges degenerate at a transition level.
func transitionLabel(cs defectdata.ChargeSet) string {
	return fmt.Sprintf("ε(%s/%s)", chargeString(cs.Max()), chargeString(cs.Min()))
}

// stripMath flattens a math-styled label for renderers that draw raw
// text, e.g. "$V_{Cd}^{-2}$" -> "V_Cd^-2".
func stripMath(label string) string {
	r := strings.NewReplacer("$", "", "{", "", "}", "")
	return r.Replace(label)
}
