// Package framework defines the evaluation framework and per-cycle score data
// consumed by the Choquet DEA engine.
package framework

import "fmt"

// MaxGroupSize is the largest number of indicators allowed in one group.
// Capacities are stored densely over 2^n subsets.
const MaxGroupSize = 10

// Kind distinguishes numeric indicators from ordinal ones.
type Kind string

const (
	KindQuantitative Kind = "quantitative"
	KindQualitative  Kind = "qualitative"
)

// Status is a framework's activation state.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Indicator is a single measurable criterion. Inputs are consumed resources,
// outputs are produced outcomes.
type Indicator struct {
	ID          string            `json:"id" yaml:"id" validate:"required"`
	Name        string            `json:"name" yaml:"name" validate:"required"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        Kind              `json:"type" yaml:"type" validate:"required,oneof=quantitative qualitative"`
	Unit        string            `json:"unit,omitempty" yaml:"unit,omitempty"`
	MinValue    float64           `json:"minValue,omitempty" yaml:"min_value,omitempty"`
	MaxValue    float64           `json:"maxValue,omitempty" yaml:"max_value,omitempty"`
	Scale       []float64         `json:"scale,omitempty" yaml:"scale,omitempty"`
	ScaleLabels map[string]string `json:"scaleLabels,omitempty" yaml:"scale_labels,omitempty"`
	Weight      float64           `json:"weight" yaml:"weight" validate:"gt=0"`
	IsInput     bool              `json:"isInput" yaml:"is_input"`
}

// IsQualitative reports whether the indicator uses an ordinal scale.
func (ind Indicator) IsQualitative() bool {
	return ind.Kind == KindQualitative
}

// Framework is an ordered collection of indicators used to evaluate one
// department's employees.
type Framework struct {
	ID          string      `json:"id" yaml:"id" validate:"required"`
	Name        string      `json:"name" yaml:"name"`
	Department  string      `json:"department,omitempty" yaml:"department,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Indicators  []Indicator `json:"indicators" yaml:"indicators" validate:"required,dive"`
	Status      Status      `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// Inputs returns the input indicators in declaration order.
func (f *Framework) Inputs() []Indicator {
	return f.group(true)
}

// Outputs returns the output indicators in declaration order.
func (f *Framework) Outputs() []Indicator {
	return f.group(false)
}

func (f *Framework) group(input bool) []Indicator {
	var out []Indicator
	for _, ind := range f.Indicators {
		if ind.IsInput == input {
			out = append(out, ind)
		}
	}
	return out
}

// Indicator looks up an indicator by id.
func (f *Framework) Indicator(id string) (Indicator, bool) {
	for _, ind := range f.Indicators {
		if ind.ID == id {
			return ind, true
		}
	}
	return Indicator{}, false
}

// DMUScoreSet holds the raw scores of one decision-making unit (an employee
// evaluated in one cycle), keyed by indicator id.
type DMUScoreSet struct {
	DMUID        string             `json:"dmuId" yaml:"dmu_id" validate:"required"`
	EmployeeID   string             `json:"employeeId" yaml:"employee_id"`
	EmployeeName string             `json:"employeeName,omitempty" yaml:"employee_name,omitempty"`
	Scores       map[string]float64 `json:"scores" yaml:"scores"`
}

// Interaction is a pairwise synergy (positive) or redundancy (negative)
// between two indicators of the same group.
type Interaction struct {
	A      string  `json:"a" yaml:"a" validate:"required"`
	B      string  `json:"b" yaml:"b" validate:"required,nefield=A"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Key renders the pair as "A_x_B".
func (i Interaction) Key() string {
	return PairKey(i.A, i.B)
}

// PairKey renders an indicator pair in the form used by result maps.
func PairKey(a, b string) string {
	return fmt.Sprintf("%s_x_%s", a, b)
}

// Cycle is a complete evaluation input document: a framework, optional
// declared interactions and the population's score sets.
type Cycle struct {
	ID           string        `json:"cycleId" yaml:"cycle_id" validate:"required,safeid"`
	Name         string        `json:"name,omitempty" yaml:"name,omitempty"`
	Framework    Framework     `json:"framework" yaml:"framework"`
	Interactions []Interaction `json:"interactions,omitempty" yaml:"interactions,omitempty" validate:"dive"`
	Scores       []DMUScoreSet `json:"scores" yaml:"scores" validate:"dive"`

	// Objectives are optional per-DMU efficiency targets for
	// prospect-adjusted cross-efficiency.
	Objectives map[string]float64 `json:"objectives,omitempty" yaml:"objectives,omitempty"`
}
