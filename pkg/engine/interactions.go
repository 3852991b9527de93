package engine

import (
	"github.com/lucasprac/dea-choquet/pkg/framework"
)

// estimateScale damps correlation-based interaction estimates.
const estimateScale = 0.10

// groupInteractions holds interaction weights resolved to group-local index
// pairs (i < j).
type groupInteractions struct {
	inputs  map[[2]int]float64
	outputs map[[2]int]float64
}

// resolveInteractions maps declared interactions onto the input and output
// groups of ns. Pairs must be distinct indicators of the same group.
func resolveInteractions(ns *NormalizedSet, declared []framework.Interaction) (*groupInteractions, error) {
	gi := &groupInteractions{
		inputs:  make(map[[2]int]float64),
		outputs: make(map[[2]int]float64),
	}
	for _, in := range declared {
		ai, aInput, okA := groupIndex(ns, in.A)
		bi, bInput, okB := groupIndex(ns, in.B)
		switch {
		case !okA:
			return nil, &ValidationError{Kind: framework.InvalidInteraction, IndicatorID: in.A, Msg: "unknown indicator"}
		case !okB:
			return nil, &ValidationError{Kind: framework.InvalidInteraction, IndicatorID: in.B, Msg: "unknown indicator"}
		case aInput != bInput:
			return nil, framework.Invalid(framework.InvalidInteraction, "%s pairs an input with an output", in.Key())
		case ai == bi:
			return nil, framework.Invalid(framework.InvalidInteraction, "%s pairs an indicator with itself", in.Key())
		}
		pair := [2]int{ai, bi}
		if bi < ai {
			pair = [2]int{bi, ai}
		}
		target := gi.outputs
		if aInput {
			target = gi.inputs
		}
		if _, dup := target[pair]; dup {
			return nil, framework.Invalid(framework.InvalidInteraction, "%s declared more than once", in.Key())
		}
		target[pair] = in.Weight
	}
	return gi, nil
}

func groupIndex(ns *NormalizedSet, id string) (idx int, input, ok bool) {
	for i, ind := range ns.Inputs {
		if ind.ID == id {
			return i, true, true
		}
	}
	for i, ind := range ns.Outputs {
		if ind.ID == id {
			return i, false, true
		}
	}
	return 0, false, false
}

// EstimateInteractions derives pairwise interactions from the population:
// for every pair in a group, the correlation between min(x_i, x_j) and a
// proxy efficiency (sum of outputs over sum of inputs), scaled by 0.10.
// Pairs whose series are constant are omitted.
func EstimateInteractions(ns *NormalizedSet) []framework.Interaction {
	n := len(ns.DMUs)
	proxy := make([]float64, n)
	for d, dmu := range ns.DMUs {
		var sumIn, sumOut float64
		for _, v := range dmu.Inputs {
			sumIn += v
		}
		for _, v := range dmu.Outputs {
			sumOut += v
		}
		proxy[d] = sumOut / (sumIn + 1e-10)
	}
	if stdDev(proxy) <= 1e-10 {
		return nil
	}

	var out []framework.Interaction
	estimate := func(inds []framework.Indicator, values func(d int) []float64) {
		mins := make([]float64, n)
		for i := range inds {
			for j := i + 1; j < len(inds); j++ {
				for d := 0; d < n; d++ {
					v := values(d)
					mins[d] = min(v[i], v[j])
				}
				if stdDev(mins) <= 1e-10 {
					continue
				}
				out = append(out, framework.Interaction{
					A:      inds[i].ID,
					B:      inds[j].ID,
					Weight: pearson(mins, proxy) * estimateScale,
				})
			}
		}
	}
	estimate(ns.Inputs, func(d int) []float64 { return ns.DMUs[d].Inputs })
	estimate(ns.Outputs, func(d int) []float64 { return ns.DMUs[d].Outputs })
	return out
}
