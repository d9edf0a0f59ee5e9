package plotting

import (
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// inGapSamples is the number of evenly spaced Fermi levels used when
// checking a polyline across the band gap.
const inGapSamples = 100

// Ylim derives y-axis limits from formation energies sampled at the plot
// window edges and breakpoints. The maximum gets 10% of the value window
// as headroom; with auto transition-level labels enabled the headroom is
// widened to 17% of the maximum when the spacer would leave less than
// 14.5% of the axis for label text. ymin is normally 0 and is only pushed
// below zero by the all-negative-in-gap floor.
//
// Callers must supply at least the two window-edge samples; an empty
// slice returns (ymin, ymin).
func Ylim(yRangeVals []float64, ymin float64, autoLabels bool) (float64, float64) {
	if len(yRangeVals) == 0 {
		return ymin, ymin
	}
	minV, maxV := yRangeVals[0], yRangeVals[0]
	for _, v := range yRangeVals[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	window := maxV - minV
	spacer := 0.1 * window
	ymax := maxV + spacer
	if autoLabels && spacer/ymax < 0.145 {
		ymax = maxV * 1.17
	}
	return ymin, ymax
}

// interpSamples linearly interpolates the polyline (xs, ys) at n evenly
// spaced points across [lo, hi]. Points outside the polyline clamp to the
// nearest end value; xs must be sorted ascending.
func interpSamples(xs, ys []float64, lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = interpAt(xs, ys, lo+float64(i)*step)
	}
	return out
}

func interpAt(xs, ys []float64, x float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[len(xs)-1] {
		return ys[len(ys)-1]
	}
	for i := 1; i < len(xs); i++ {
		if x <= xs[i] {
			span := xs[i] - xs[i-1]
			if span == 0 {
				return ys[i]
			}
			t := (x - xs[i-1]) / span
			return ys[i-1] + t*(ys[i]-ys[i-1])
		}
	}
	return ys[len(ys)-1]
}

// niceTicks generates up to n tick marks between [min, max] using nice
// increments (1, 2, 2.5, 5, 10 scaled by powers of ten).
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil((max - min) / step)
		if count < 2 {
			count = 2
		}
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	start := math.Ceil(min/bestStep) * bestStep
	ticks := []chart.Tick{}
	for v := start; v <= max+bestStep/2; v += bestStep {
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
		if len(ticks) > n+2 {
			break
		}
	}
	// anchor ticks to the axis ends so go-chart spans the full range
	if len(ticks) == 0 || ticks[0].Value > min {
		ticks = append([]chart.Tick{{Value: min, Label: formatTick(min)}}, ticks...)
	}
	if ticks[len(ticks)-1].Value < max {
		ticks = append(ticks, chart.Tick{Value: max, Label: formatTick(max)})
	}
	return ticks
}

func formatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	av := math.Abs(v)
	switch {
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
