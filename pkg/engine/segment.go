package engine

import "sort"

// Tier is a tercile band on one axis.
type Tier string

const (
	TierLow  Tier = "low"
	TierMed  Tier = "med"
	TierHigh Tier = "high"
)

var tiers = []Tier{TierHigh, TierMed, TierLow}

// nineBoxProfiles names each cell, keyed by efficiency tier then
// effectiveness tier.
var nineBoxProfiles = map[string]string{
	"high_high": "Star",
	"high_med":  "High Potential",
	"high_low":  "Enigma",
	"med_high":  "Strong Performer",
	"med_med":   "Core Player",
	"med_low":   "Inconsistent",
	"low_high":  "Workhorse",
	"low_med":   "Underperformer",
	"low_low":   "Critical Bottleneck",
}

// Terciles returns the 1/3 and 2/3 quantiles of xs.
func Terciles(xs []float64) [2]float64 {
	return [2]float64{quantile(xs, 1.0/3.0), quantile(xs, 2.0/3.0)}
}

// TierOf places v against tercile thresholds: low below t1, high at or above
// t2, med otherwise.
func TierOf(v float64, t [2]float64) Tier {
	switch {
	case v < t[0]:
		return TierLow
	case v >= t[1]:
		return TierHigh
	default:
		return TierMed
	}
}

// NineBoxKey renders the cell key for an efficiency and effectiveness tier.
func NineBoxKey(eff, effectiveness Tier) string {
	return string(eff) + "_" + string(effectiveness)
}

// Profile returns the named profile of a nine-box cell key.
func Profile(key string) string {
	return nineBoxProfiles[key]
}

// Segmentation is the result of placing a population on the nine-box grid.
type Segmentation struct {
	Thresholds TercileThresholds
	Cells      map[string]NineBoxCell
	Quadrants  []Quadrant
}

// Segment computes tercile thresholds on both axes, fills all nine cells
// (empty cells included) with member DMU ids sorted ascending, and derives
// each DMU's quadrant against the population means.
func Segment(ids []string, efficiency, effectiveness []float64) *Segmentation {
	seg := &Segmentation{
		Thresholds: TercileThresholds{
			Efficiency:    Terciles(efficiency),
			Effectiveness: Terciles(effectiveness),
		},
		Cells:     make(map[string]NineBoxCell, len(nineBoxProfiles)),
		Quadrants: make([]Quadrant, len(ids)),
	}

	members := make(map[string][]string, len(nineBoxProfiles))
	for i, id := range ids {
		key := NineBoxKey(
			TierOf(efficiency[i], seg.Thresholds.Efficiency),
			TierOf(effectiveness[i], seg.Thresholds.Effectiveness),
		)
		members[key] = append(members[key], id)
	}

	for _, e := range tiers {
		for _, f := range tiers {
			key := NineBoxKey(e, f)
			emps := members[key]
			if emps == nil {
				emps = []string{}
			}
			sort.Strings(emps)
			seg.Cells[key] = NineBoxCell{
				Position:  key,
				Count:     len(emps),
				Profile:   nineBoxProfiles[key],
				Employees: emps,
			}
		}
	}

	meanEff, meanEffectiveness := mean(efficiency), mean(effectiveness)
	for i := range ids {
		seg.Quadrants[i] = QuadrantOf(efficiency[i], effectiveness[i], meanEff, meanEffectiveness)
	}
	return seg
}

// QuadrantOf classifies a DMU against mean thresholds; values at the mean
// count as high.
func QuadrantOf(efficiency, effectiveness, meanEfficiency, meanEffectiveness float64) Quadrant {
	highEff := efficiency >= meanEfficiency-tieTolerance
	highOut := effectiveness >= meanEffectiveness-tieTolerance
	switch {
	case highEff && highOut:
		return QuadrantBenchmark
	case highEff:
		return QuadrantDiligent
	case highOut:
		return QuadrantOpportunistic
	default:
		return QuadrantUnderperformer
	}
}
