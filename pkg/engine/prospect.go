package engine

import (
	"math"

	"github.com/lucasprac/dea-choquet/pkg/framework"
)

// Tversky-Kahneman parameters for the prospect value function.
const (
	DefaultProspectAlpha = 0.88
	DefaultProspectBeta  = 0.88
	DefaultLossAversion  = 2.25
)

// ProspectMode tells whether a DMU's own efficiency clears its target.
type ProspectMode string

const (
	ProspectGain ProspectMode = "gain"
	ProspectLoss ProspectMode = "loss"
)

// Objective turns on prospect-adjusted cross-efficiency. Each peer score in
// the evaluator matrix is replaced by target + v(score - target), where v is
// concave for gains and loss-averse for shortfalls, and clamped to [0,1].
type Objective struct {
	// Target is the organizational efficiency target in (0,1].
	Target float64
	// Personal overrides Target per DMU id.
	Personal map[string]float64

	Alpha  float64
	Beta   float64
	Lambda float64
}

// ProspectValue is v(delta) = delta^alpha for gains and
// -lambda*(-delta)^beta for losses.
func ProspectValue(delta, alpha, beta, lambda float64) float64 {
	if delta >= 0 {
		return math.Pow(delta, alpha)
	}
	return -lambda * math.Pow(-delta, beta)
}

func (o *Objective) fillDefaults() {
	if o.Target == 0 {
		o.Target = 1
	}
	if o.Alpha == 0 {
		o.Alpha = DefaultProspectAlpha
	}
	if o.Beta == 0 {
		o.Beta = DefaultProspectBeta
	}
	if o.Lambda == 0 {
		o.Lambda = DefaultLossAversion
	}
}

func (o *Objective) target(dmuID string) float64 {
	if t, ok := o.Personal[dmuID]; ok {
		return t
	}
	return o.Target
}

func (o *Objective) validate(scores []framework.DMUScoreSet) error {
	if !inUnitInterval(o.Target) {
		return framework.Invalid(framework.InvalidObjective, "target %g must be in (0, 1]", o.Target)
	}
	if !(o.Alpha > 0 && o.Alpha <= 1) || !(o.Beta > 0 && o.Beta <= 1) {
		return framework.Invalid(framework.InvalidObjective, "alpha %g and beta %g must be in (0, 1]", o.Alpha, o.Beta)
	}
	if !(o.Lambda >= 1) || math.IsInf(o.Lambda, 0) {
		return framework.Invalid(framework.InvalidObjective, "loss aversion %g must be a finite value >= 1", o.Lambda)
	}
	known := make(map[string]bool, len(scores))
	for _, s := range scores {
		known[s.DMUID] = true
	}
	for id, t := range o.Personal {
		if !known[id] {
			return &ValidationError{Kind: framework.InvalidObjective, DMUID: id, Msg: "personal objective for unknown DMU"}
		}
		if !inUnitInterval(t) {
			return &ValidationError{Kind: framework.InvalidObjective, DMUID: id, Value: t, Msg: "personal objective must be in (0, 1]"}
		}
	}
	return nil
}

// adjust rewrites the off-diagonal peer scores of matrix (matrix[e][d] is
// d's score under evaluator e) and returns each DMU's mode and mean prospect
// value. Degenerate DMUs keep their zero column entries.
func (o *Objective) adjust(ns *NormalizedSet, self []float64, degenerate []bool, matrix [][]float64) ([]ProspectMode, []float64) {
	n := len(ns.DMUs)
	modes := make([]ProspectMode, n)
	values := make([]float64, n)
	for d, dmu := range ns.DMUs {
		theta := o.target(dmu.DMUID)
		modes[d] = ProspectGain
		if self[d] < theta {
			modes[d] = ProspectLoss
		}
		if degenerate[d] || n == 1 {
			continue
		}
		var sum float64
		for e := 0; e < n; e++ {
			if e == d {
				continue
			}
			p := ProspectValue(matrix[e][d]-theta, o.Alpha, o.Beta, o.Lambda)
			matrix[e][d] = clamp01(theta + p)
			sum += p
		}
		values[d] = sum / float64(n-1)
	}
	return modes, values
}

func inUnitInterval(v float64) bool {
	return v > 0 && v <= 1
}
