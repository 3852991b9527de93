package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lucasprac/dea-choquet/pkg/framework"
)

var tracer = otel.Tracer("dea-choquet.engine")

// Engine evaluates cycles. It holds only configuration, so one Engine may be
// shared by concurrent callers.
type Engine struct {
	opts Options
}

// NewEngine creates an engine with the given options applied over the
// defaults.
func NewEngine(opts ...Option) *Engine {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.fillDefaults()
	return &Engine{opts: o}
}

// ComputeCycleResults evaluates one cycle synchronously. It is the pure
// entry point: the same inputs always produce the same results apart from
// timing fields.
func ComputeCycleResults(cycleID string, fw *framework.Framework, scores []framework.DMUScoreSet, opts Options) (*CycleResults, error) {
	opts.fillDefaults()
	e := &Engine{opts: opts}
	return e.Compute(context.Background(), cycleID, fw, scores)
}

// ComputeCycle evaluates a cycle document. Interactions and personal
// objectives declared on the engine take precedence over those in the
// document.
func (e *Engine) ComputeCycle(ctx context.Context, c *framework.Cycle) (*CycleResults, error) {
	if c == nil {
		return nil, fmt.Errorf("cycle is nil")
	}
	o := e.opts
	if len(o.Interactions) == 0 && len(c.Interactions) > 0 {
		o.Interactions = c.Interactions
	}
	if len(c.Objectives) > 0 && (o.Objective == nil || o.Objective.Personal == nil) {
		obj := Objective{}
		if o.Objective != nil {
			obj = *o.Objective
		}
		obj.Personal = c.Objectives
		obj.fillDefaults()
		o.Objective = &obj
	}
	return (&Engine{opts: o}).Compute(ctx, c.ID, &c.Framework, c.Scores)
}

// Compute evaluates the population of scores against fw. Validation errors
// are returned before any computation starts; no partial results are ever
// returned.
func (e *Engine) Compute(ctx context.Context, cycleID string, fw *framework.Framework, scores []framework.DMUScoreSet) (*CycleResults, error) {
	ctx, span := tracer.Start(ctx, "engine.Engine.Compute",
		trace.WithAttributes(
			attribute.String("cycle.id", cycleID),
			attribute.Int("cycle.dmu_count", len(scores)),
		),
	)
	defer span.End()

	res, err := e.compute(ctx, cycleID, fw, scores)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.opts.Logger.Warn("cycle computation failed", "cycle_id", cycleID, "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("cycle.computation_ms", res.ComputationTimeMs))
	span.SetStatus(codes.Ok, "")
	e.opts.Logger.Info("cycle computed",
		"cycle_id", cycleID,
		"dmus", res.PopulationStats.TotalDMUs,
		"mean_efficiency", res.PopulationStats.MeanEfficiency,
		"warnings", len(res.Warnings),
		"elapsed_ms", res.ComputationTimeMs,
	)
	return res, nil
}

func (e *Engine) compute(ctx context.Context, cycleID string, fw *framework.Framework, scores []framework.DMUScoreSet) (*CycleResults, error) {
	log := e.opts.Logger
	start := e.opts.Now()

	if fw == nil {
		return nil, framework.Invalid(framework.InvalidFramework, "framework is nil")
	}
	if err := fw.Validate(); err != nil {
		return nil, err
	}
	if err := fw.ValidateInteractions(e.opts.Interactions); err != nil {
		return nil, err
	}
	if err := fw.ValidateScores(scores); err != nil {
		return nil, err
	}
	if id := e.opts.EffectivenessIndicator; id != "" && e.opts.EffectivenessFunc == nil && e.opts.EffectivenessValues == nil {
		if _, ok := fw.Indicator(id); !ok {
			return nil, &ValidationError{Kind: framework.UnknownIndicator, IndicatorID: id, Msg: "effectiveness indicator not in framework"}
		}
	}
	if vals := e.opts.EffectivenessValues; vals != nil && e.opts.EffectivenessFunc == nil {
		for _, s := range scores {
			if _, ok := vals[s.DMUID]; !ok {
				return nil, &ValidationError{Kind: framework.MissingScore, DMUID: s.DMUID, Msg: "no effectiveness value"}
			}
		}
	}

	if obj := e.opts.Objective; obj != nil {
		if err := obj.validate(scores); err != nil {
			return nil, err
		}
	}

	ns, err := Normalize(fw, scores)
	if err != nil {
		return nil, err
	}
	for _, g := range [][]framework.Indicator{ns.Inputs, ns.Outputs} {
		if len(g) > largeGroupWarning {
			log.Warn("large indicator group, capacity enumeration grows as 2^n",
				"framework_id", fw.ID, "indicators", len(g))
		}
	}

	interactions := e.opts.Interactions
	if len(interactions) == 0 && e.opts.EstimateInteractions {
		interactions = EstimateInteractions(ns)
		log.Debug("estimated interactions", "cycle_id", cycleID, "pairs", len(interactions))
	}
	gi, err := resolveInteractions(ns, interactions)
	if err != nil {
		return nil, err
	}

	inCap, err := BuildCapacity(weightsOf(ns.Inputs), gi.inputs)
	if err != nil {
		return nil, fmt.Errorf("building input capacity: %w", err)
	}
	outCap, err := BuildCapacity(weightsOf(ns.Outputs), gi.outputs)
	if err != nil {
		return nil, fmt.Errorf("building output capacity: %w", err)
	}

	res := &CycleResults{
		CycleID:            cycleID,
		FrameworkID:        fw.ID,
		EfficiencyScores:   make(map[string]EfficiencyScore, len(ns.DMUs)),
		ShapleyValues:      make(map[string]float64, len(fw.Indicators)),
		InteractionWeights: make(map[string]float64, len(interactions)),
		InteractionIndices: make(map[string]float64),
	}
	for _, in := range interactions {
		res.InteractionWeights[in.Key()] = in.Weight
	}

	for _, g := range []struct {
		inds     []framework.Indicator
		capacity *Capacity
	}{{ns.Inputs, inCap}, {ns.Outputs, outCap}} {
		phi, err := Shapley(g.capacity, e.opts.ShapleyTolerance)
		if err != nil {
			return nil, err
		}
		for i, ind := range g.inds {
			res.ShapleyValues[ind.ID] = phi[i]
		}
		for pair, v := range InteractionIndex(g.capacity) {
			res.InteractionIndices[framework.PairKey(g.inds[pair[0]].ID, g.inds[pair[1]].ID)] = v
		}
	}

	eff, err := computeEfficiency(ctx, ns, inCap, outCap, crossConfig{
		parallelThreshold: e.opts.ParallelThreshold,
		maxWorkers:        e.opts.MaxWorkers,
		objective:         e.opts.Objective,
	})
	if err != nil {
		return nil, err
	}

	effectiveness := e.effectiveness(ns, eff)
	percentiles := Percentiles(eff.Cross)
	ranks := Ranks(eff.Cross)

	ids := make([]string, len(ns.DMUs))
	for d, dmu := range ns.DMUs {
		ids[d] = dmu.DMUID
	}
	seg := Segment(ids, eff.Cross, effectiveness)
	res.TercileThresholds = seg.Thresholds
	res.NineBoxMatrix = seg.Cells

	n := len(ns.DMUs)
	for d, dmu := range ns.DMUs {
		score := EfficiencyScore{
			EmployeeID:       dmu.EmployeeID,
			EmployeeName:     dmu.EmployeeName,
			SelfEvaluation:   eff.Self[d],
			CrossEfficiency:  eff.Cross[d],
			Percentile:       percentiles[d],
			Rank:             ranks[d],
			Category:         CategoryFromRank(ranks[d], n),
			AggregatedInput:  eff.AggregatedInput[d],
			AggregatedOutput: eff.AggregatedOutput[d],
			Effectiveness:    effectiveness[d],
			Quadrant:         seg.Quadrants[d],
		}
		if eff.ProspectMode != nil {
			score.ProspectMode = eff.ProspectMode[d]
			v := eff.ProspectValue[d]
			score.ProspectValue = &v
		}
		if eff.Degenerate[d] {
			score.Flags = []WarningKind{DegenerateInput}
			res.Warnings = append(res.Warnings, Warning{
				Kind:    DegenerateInput,
				DMUID:   dmu.DMUID,
				Message: "aggregated input is zero; efficiency reported as 0",
			})
			log.Warn("degenerate input", "cycle_id", cycleID, "dmu_id", dmu.DMUID)
		}
		res.EfficiencyScores[dmu.DMUID] = score
	}

	res.PopulationStats = PopulationStats{
		TotalDMUs:      n,
		MeanEfficiency: mean(eff.Cross),
		StdEfficiency:  stdDev(eff.Cross),
	}

	end := e.opts.Now()
	res.ComputedAt = end.UTC()
	res.ComputationTimeMs = end.Sub(start).Milliseconds()
	return res, nil
}

func (e *Engine) effectiveness(ns *NormalizedSet, eff *Efficiency) []float64 {
	out := make([]float64, len(ns.DMUs))
	for d, dmu := range ns.DMUs {
		switch {
		case e.opts.EffectivenessFunc != nil:
			out[d] = e.opts.EffectivenessFunc(EffectivenessInput{
				DMU:              dmu,
				AggregatedInput:  eff.AggregatedInput[d],
				AggregatedOutput: eff.AggregatedOutput[d],
			})
		case e.opts.EffectivenessValues != nil:
			out[d] = e.opts.EffectivenessValues[dmu.DMUID]
		case e.opts.EffectivenessIndicator != "":
			out[d], _ = ns.Value(d, e.opts.EffectivenessIndicator)
		default:
			out[d] = eff.AggregatedOutput[d]
		}
	}
	return out
}

func weightsOf(inds []framework.Indicator) []float64 {
	w := make([]float64, len(inds))
	for i, ind := range inds {
		w[i] = ind.Weight
	}
	return w
}
