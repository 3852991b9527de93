// Package engine implements the Choquet DEA cycle evaluation engine. It turns
// a framework and a population of raw DMU scores into cross-efficiency
// rankings, Shapley indicator importance, tercile segmentation and a nine-box
// placement grid.
package engine

import "time"

// CycleResults is the complete output of evaluating one cycle.
// Immutable once computed.
type CycleResults struct {
	CycleID            string                     `json:"cycleId"`
	FrameworkID        string                     `json:"frameworkId,omitempty"`
	RunID              string                     `json:"runId,omitempty"`
	ComputedAt         time.Time                  `json:"computedAt"`
	ComputationTimeMs  int64                      `json:"computationTimeMs"`
	EfficiencyScores   map[string]EfficiencyScore `json:"efficiencyScores"`
	ShapleyValues      map[string]float64         `json:"shapleyValues"`
	InteractionWeights map[string]float64         `json:"interactionWeights"`
	InteractionIndices map[string]float64         `json:"interactionIndices,omitempty"`
	TercileThresholds  TercileThresholds          `json:"tercileThresholds"`
	NineBoxMatrix      map[string]NineBoxCell     `json:"nineBoxMatrix"`
	PopulationStats    PopulationStats            `json:"populationStats"`
	Warnings           []Warning                  `json:"warnings,omitempty"`
}

// EfficiencyScore is one DMU's efficiency summary.
type EfficiencyScore struct {
	EmployeeID       string        `json:"employeeId"`
	EmployeeName     string        `json:"employeeName,omitempty"`
	SelfEvaluation   float64       `json:"selfEvaluation"`
	CrossEfficiency  float64       `json:"crossEfficiency"`
	Percentile       float64       `json:"percentile"`
	Rank             int           `json:"rank"`
	Category         Category      `json:"category"`
	AggregatedInput  float64       `json:"aggregatedInput"`
	AggregatedOutput float64       `json:"aggregatedOutput"`
	Effectiveness    float64       `json:"effectiveness"`
	Quadrant         Quadrant      `json:"quadrant"`
	Flags            []WarningKind `json:"flags,omitempty"`

	// Prospect fields are set only for objective-driven runs.
	ProspectMode  ProspectMode `json:"prospectMode,omitempty"`
	ProspectValue *float64     `json:"prospectValue,omitempty"`
}

// TercileThresholds holds the [p33, p67] cut points of each axis.
type TercileThresholds struct {
	Efficiency    [2]float64 `json:"efficiency"`
	Effectiveness [2]float64 `json:"effectiveness"`
}

// NineBoxCell is one cell of the efficiency x effectiveness grid.
type NineBoxCell struct {
	Position  string   `json:"position"`
	Count     int      `json:"count"`
	Profile   string   `json:"profile"`
	Employees []string `json:"employees"`
}

// PopulationStats summarizes cross-efficiency over the population.
type PopulationStats struct {
	TotalDMUs      int     `json:"totalDmus"`
	MeanEfficiency float64 `json:"meanEfficiency"`
	StdEfficiency  float64 `json:"stdEfficiency"`
}

// Category is a performance band derived from rank.
type Category string

const (
	CategoryExceptional Category = "Exceptional"
	CategoryAbove       Category = "Above Target"
	CategoryMeets       Category = "Meets Target"
	CategoryBelow       Category = "Below Target"
	CategoryCritical    Category = "Critical"
)

// CategoryFromRank maps a 1-based rank within n DMUs to a performance band.
func CategoryFromRank(rank, n int) Category {
	if n <= 0 {
		return CategoryCritical
	}
	pct := float64(rank) / float64(n) * 100
	switch {
	case pct <= 5:
		return CategoryExceptional
	case pct <= 25:
		return CategoryAbove
	case pct <= 75:
		return CategoryMeets
	case pct <= 95:
		return CategoryBelow
	default:
		return CategoryCritical
	}
}

// Quadrant is the four-way efficiency/effectiveness diagnosis against
// population means.
type Quadrant string

const (
	QuadrantBenchmark      Quadrant = "Benchmark"
	QuadrantDiligent       Quadrant = "Diligent"
	QuadrantOpportunistic  Quadrant = "Opportunistic"
	QuadrantUnderperformer Quadrant = "Underperformer"
)
