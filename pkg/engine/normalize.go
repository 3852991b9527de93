package engine

import (
	"fmt"
	"math"

	"github.com/lucasprac/dea-choquet/pkg/framework"
)

// NormalizedDMU is one DMU's indicator values rescaled onto [0,1], split into
// the input and output groups in framework declaration order.
type NormalizedDMU struct {
	DMUID        string
	EmployeeID   string
	EmployeeName string
	Inputs       []float64
	Outputs      []float64
}

// NormalizedSet is the normalized population plus the group layout it was
// built against.
type NormalizedSet struct {
	Inputs  []framework.Indicator
	Outputs []framework.Indicator
	DMUs    []NormalizedDMU
}

// Value returns the normalized value of indicator id for DMU index d.
func (ns *NormalizedSet) Value(d int, id string) (float64, bool) {
	for i, ind := range ns.Inputs {
		if ind.ID == id {
			return ns.DMUs[d].Inputs[i], true
		}
	}
	for i, ind := range ns.Outputs {
		if ind.ID == id {
			return ns.DMUs[d].Outputs[i], true
		}
	}
	return 0, false
}

// Normalize rescales every DMU's raw scores. The first invalid value aborts
// the whole population.
func Normalize(fw *framework.Framework, scores []framework.DMUScoreSet) (*NormalizedSet, error) {
	if len(scores) == 0 {
		return nil, framework.Invalid(framework.EmptyPopulation, "no DMU score sets supplied")
	}
	ns := &NormalizedSet{Inputs: fw.Inputs(), Outputs: fw.Outputs()}
	if len(ns.Inputs) == 0 {
		return nil, framework.Invalid(framework.EmptyIndicatorGroup, "framework %s has no input indicators", fw.ID)
	}
	if len(ns.Outputs) == 0 {
		return nil, framework.Invalid(framework.EmptyIndicatorGroup, "framework %s has no output indicators", fw.ID)
	}

	ns.DMUs = make([]NormalizedDMU, 0, len(scores))
	for _, s := range scores {
		in, err := normalizeGroup(ns.Inputs, s)
		if err != nil {
			return nil, err
		}
		out, err := normalizeGroup(ns.Outputs, s)
		if err != nil {
			return nil, err
		}
		ns.DMUs = append(ns.DMUs, NormalizedDMU{
			DMUID:        s.DMUID,
			EmployeeID:   s.EmployeeID,
			EmployeeName: s.EmployeeName,
			Inputs:       in,
			Outputs:      out,
		})
	}
	return ns, nil
}

func normalizeGroup(inds []framework.Indicator, s framework.DMUScoreSet) ([]float64, error) {
	vec := make([]float64, len(inds))
	for i, ind := range inds {
		raw, ok := s.Scores[ind.ID]
		if !ok {
			return nil, &ValidationError{Kind: framework.MissingScore, DMUID: s.DMUID, IndicatorID: ind.ID, Msg: "no score for indicator"}
		}
		v, err := NormalizeValue(ind, raw)
		if err != nil {
			err.DMUID = s.DMUID
			return nil, err
		}
		vec[i] = v
	}
	return vec, nil
}

// NormalizeValue maps one raw value onto [0,1]. Quantitative values are
// rescaled linearly over [min,max]; qualitative values map their 1-based
// rank r in the scale to (r-1)/(len-1).
func NormalizeValue(ind framework.Indicator, raw float64) (float64, *ValidationError) {
	if ind.IsQualitative() {
		for i, v := range ind.Scale {
			if math.Abs(v-raw) <= framework.ScaleTolerance {
				return float64(i) / float64(len(ind.Scale)-1), nil
			}
		}
		return 0, &ValidationError{
			Kind:        framework.InvalidScaleValue,
			IndicatorID: ind.ID,
			Value:       raw,
			Msg:         fmt.Sprintf("%g is not on the declared scale %v", raw, ind.Scale),
		}
	}

	if math.IsNaN(raw) || raw < ind.MinValue || raw > ind.MaxValue {
		return 0, &ValidationError{
			Kind:        framework.OutOfRange,
			IndicatorID: ind.ID,
			Value:       raw,
			Msg:         fmt.Sprintf("%g outside [%g, %g]", raw, ind.MinValue, ind.MaxValue),
		}
	}
	return clamp01((raw - ind.MinValue) / (ind.MaxValue - ind.MinValue)), nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
