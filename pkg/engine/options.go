package engine

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/lucasprac/dea-choquet/pkg/framework"
)

const (
	// DefaultParallelThreshold is the population size from which evaluator
	// columns are computed concurrently.
	DefaultParallelThreshold = 64

	// largeGroupWarning is the group size above which enumeration cost is
	// logged as a warning.
	largeGroupWarning = 8
)

// DefaultMaxWorkers bounds concurrent evaluator columns.
var DefaultMaxWorkers = runtime.GOMAXPROCS(0)

// EffectivenessInput is what an effectiveness function sees for one DMU.
type EffectivenessInput struct {
	DMU              NormalizedDMU
	AggregatedInput  float64
	AggregatedOutput float64
}

// Options controls a single computation.
type Options struct {
	// Interactions are declared pairwise interaction weights. When empty and
	// EstimateInteractions is set, weights are estimated from the population.
	Interactions         []framework.Interaction
	EstimateInteractions bool

	// Effectiveness selects the second nine-box axis. Precedence:
	// EffectivenessFunc, EffectivenessValues, EffectivenessIndicator, then
	// aggregated output.
	EffectivenessFunc      func(EffectivenessInput) float64
	EffectivenessValues    map[string]float64
	EffectivenessIndicator string

	ParallelThreshold int
	MaxWorkers        int
	ShapleyTolerance  float64

	// Objective enables prospect-adjusted cross-efficiency when non-nil.
	Objective *Objective

	Logger *slog.Logger
	Now    func() time.Time
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		ParallelThreshold: DefaultParallelThreshold,
		MaxWorkers:        DefaultMaxWorkers,
		ShapleyTolerance:  DefaultShapleyTolerance,
		Logger:            slog.Default(),
		Now:               time.Now,
	}
}

func (o *Options) fillDefaults() {
	d := DefaultOptions()
	if o.ParallelThreshold == 0 {
		o.ParallelThreshold = d.ParallelThreshold
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = d.MaxWorkers
	}
	if o.ShapleyTolerance <= 0 {
		o.ShapleyTolerance = d.ShapleyTolerance
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	if o.Objective != nil {
		obj := *o.Objective
		obj.fillDefaults()
		o.Objective = &obj
	}
}

// WithInteractions declares pairwise interaction weights.
func WithInteractions(in ...framework.Interaction) Option {
	return func(o *Options) { o.Interactions = append(o.Interactions, in...) }
}

// WithEstimatedInteractions enables correlation-based estimation when no
// interactions are declared.
func WithEstimatedInteractions() Option {
	return func(o *Options) { o.EstimateInteractions = true }
}

// WithEffectivenessIndicator uses one indicator's normalized value as
// effectiveness.
func WithEffectivenessIndicator(id string) Option {
	return func(o *Options) { o.EffectivenessIndicator = id }
}

// WithEffectivenessValues supplies an externally computed effectiveness per
// DMU id. Every DMU must be covered.
func WithEffectivenessValues(values map[string]float64) Option {
	return func(o *Options) { o.EffectivenessValues = values }
}

// WithEffectivenessFunc computes effectiveness with a caller function.
func WithEffectivenessFunc(fn func(EffectivenessInput) float64) Option {
	return func(o *Options) { o.EffectivenessFunc = fn }
}

// WithParallelism sets the population threshold for concurrent
// cross-efficiency and the worker bound. A negative threshold disables
// concurrency.
func WithParallelism(threshold, workers int) Option {
	return func(o *Options) {
		o.ParallelThreshold = threshold
		o.MaxWorkers = workers
	}
}

// WithShapleyTolerance overrides the Shapley sum tolerance.
func WithShapleyTolerance(tol float64) Option {
	return func(o *Options) { o.ShapleyTolerance = tol }
}

// WithObjective enables prospect-adjusted cross-efficiency against an
// organizational efficiency target in (0,1].
func WithObjective(target float64) Option {
	return func(o *Options) {
		o.objective().Target = target
	}
}

// WithPersonalObjectives sets per-DMU efficiency targets. DMUs not in the
// map use the organizational target, or 1 when none is set.
func WithPersonalObjectives(targets map[string]float64) Option {
	return func(o *Options) {
		o.objective().Personal = targets
	}
}

// WithProspectParameters overrides the value function curvature for gains
// (alpha) and losses (beta) and the loss aversion coefficient (lambda).
func WithProspectParameters(alpha, beta, lambda float64) Option {
	return func(o *Options) {
		obj := o.objective()
		obj.Alpha, obj.Beta, obj.Lambda = alpha, beta, lambda
	}
}

func (o *Options) objective() *Objective {
	if o.Objective == nil {
		o.Objective = &Objective{}
	}
	return o.Objective
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithClock sets the time source used for timestamps and timing.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}
