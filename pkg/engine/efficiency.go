package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// tieTolerance is the distance under which two scores count as tied.
const tieTolerance = 1e-12

// Efficiency holds per-DMU aggregation and efficiency results, indexed like
// NormalizedSet.DMUs.
type Efficiency struct {
	AggregatedInput  []float64
	AggregatedOutput []float64
	Self             []float64
	Cross            []float64
	Degenerate       []bool

	// Set only when an Objective is configured.
	ProspectMode  []ProspectMode
	ProspectValue []float64
}

// crossConfig controls how the evaluator matrix is computed.
type crossConfig struct {
	parallelThreshold int
	maxWorkers        int
	objective         *Objective
}

// ComputeEfficiency aggregates every DMU with the group capacities and
// derives self and cross efficiency.
//
// Self efficiency is aggregatedOutput/aggregatedInput divided by the
// population maximum. For cross efficiency each DMU e acts as an evaluator:
// the descending ordering of e's own normalized vectors fixes the Choquet
// chain weights, every DMU's weighted output/input ratio is computed under
// them and the column is scaled so its best DMU scores 1. A DMU's cross
// efficiency is the mean over all evaluators, itself included. With an
// additive capacity every evaluator uses the declared weights and cross
// efficiency equals self efficiency.
//
// A DMU with zero aggregated input gets 0 for both scores and is flagged
// degenerate.
//
// With an Objective the peer entries of the matrix are prospect-adjusted
// against each DMU's target before averaging; self evaluations are kept.
func ComputeEfficiency(ctx context.Context, ns *NormalizedSet, in, out *Capacity) (*Efficiency, error) {
	return computeEfficiency(ctx, ns, in, out, crossConfig{parallelThreshold: DefaultParallelThreshold, maxWorkers: DefaultMaxWorkers})
}

func computeEfficiency(ctx context.Context, ns *NormalizedSet, in, out *Capacity, cfg crossConfig) (*Efficiency, error) {
	n := len(ns.DMUs)
	eff := &Efficiency{
		AggregatedInput:  make([]float64, n),
		AggregatedOutput: make([]float64, n),
		Self:             make([]float64, n),
		Cross:            make([]float64, n),
		Degenerate:       make([]bool, n),
	}

	ratio := make([]float64, n)
	var maxRatio float64
	for d, dmu := range ns.DMUs {
		eff.AggregatedInput[d] = in.Aggregate(dmu.Inputs)
		eff.AggregatedOutput[d] = out.Aggregate(dmu.Outputs)
		if eff.AggregatedInput[d] <= 0 {
			eff.Degenerate[d] = true
			continue
		}
		ratio[d] = eff.AggregatedOutput[d] / eff.AggregatedInput[d]
		if ratio[d] > maxRatio {
			maxRatio = ratio[d]
		}
	}
	if maxRatio > 0 {
		for d := range ratio {
			eff.Self[d] = ratio[d] / maxRatio
		}
	}

	matrix := make([][]float64, n)
	evaluate := func(e int) {
		wIn := in.ChainWeights(ns.DMUs[e].Inputs)
		wOut := out.ChainWeights(ns.DMUs[e].Outputs)
		col := make([]float64, n)
		var best float64
		for d, dmu := range ns.DMUs {
			if eff.Degenerate[d] {
				continue
			}
			den := dot(wIn, dmu.Inputs)
			if den <= 0 {
				continue
			}
			col[d] = dot(wOut, dmu.Outputs) / den
			if col[d] > best {
				best = col[d]
			}
		}
		if best > 0 {
			for d := range col {
				col[d] /= best
			}
		}
		matrix[e] = col
	}

	if cfg.parallelThreshold > 0 && n >= cfg.parallelThreshold {
		g, gctx := errgroup.WithContext(ctx)
		if cfg.maxWorkers > 0 {
			g.SetLimit(cfg.maxWorkers)
		}
		for e := 0; e < n; e++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				evaluate(e)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("computing cross-efficiency: %w", err)
		}
	} else {
		for e := 0; e < n; e++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("computing cross-efficiency: %w", err)
			}
			evaluate(e)
		}
	}

	if cfg.objective != nil {
		eff.ProspectMode, eff.ProspectValue = cfg.objective.adjust(ns, eff.Self, eff.Degenerate, matrix)
	}

	for d := 0; d < n; d++ {
		var sum float64
		for e := 0; e < n; e++ {
			sum += matrix[e][d]
		}
		eff.Cross[d] = sum / float64(n)
	}
	return eff, nil
}

// Percentiles returns each score's midpoint-rank percentile:
// (below + (tied+1)/2) / n, where tied counts the score itself. The best
// unique score gets 1 and tied scores share a value.
func Percentiles(scores []float64) []float64 {
	n := len(scores)
	out := make([]float64, n)
	for i, v := range scores {
		var below, tied int
		for _, w := range scores {
			switch {
			case w < v-tieTolerance:
				below++
			case w <= v+tieTolerance:
				tied++
			}
		}
		out[i] = (float64(below) + float64(tied+1)/2) / float64(n)
	}
	return out
}

// Ranks returns 1-based competition ranks, best score first. Tied scores
// share the best rank of their group.
func Ranks(scores []float64) []int {
	out := make([]int, len(scores))
	for i, v := range scores {
		rank := 1
		for _, w := range scores {
			if w > v+tieTolerance {
				rank++
			}
		}
		out[i] = rank
	}
	return out
}
