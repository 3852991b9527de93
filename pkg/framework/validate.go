package framework

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// MaxIDLength bounds identifiers that end up in storage keys and URLs.
const MaxIDLength = 128

var safeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("safeid", func(fl validator.FieldLevel) bool {
		return isSafeID(fl.Field().String())
	})
	return v
}

func isSafeID(id string) bool {
	return id != "." && id != ".." && len(id) <= MaxIDLength && safeIDPattern.MatchString(id)
}

// ValidateID checks that id can be used as a path segment or object key:
// letters, digits, '_', '.' and '-' only, at most MaxIDLength long, and
// never "." or "..". field names the id in the error.
func ValidateID(field, id string) error {
	if err := validate.Var(id, "required,safeid"); err != nil {
		return Invalid(InvalidIdentifier, "%s %q must match [A-Za-z0-9_.-]+ and not be \".\" or \"..\"", field, id)
	}
	return nil
}

// structErr runs tag validation on v and converts the first failure into a
// ValidationError.
func structErr(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s failed %q (%s)", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return &ValidationError{Kind: InvalidFramework, Msg: msg}
	}
	return fmt.Errorf("validating %T: %w", v, err)
}

// Validate checks the framework's structure: field rules, unique indicator
// ids, well-formed ranges and scales, and non-empty input and output groups
// of at most MaxGroupSize indicators.
func (f *Framework) Validate() error {
	if err := structErr(f); err != nil {
		return err
	}

	seen := make(map[string]bool, len(f.Indicators))
	for _, ind := range f.Indicators {
		if seen[ind.ID] {
			return &ValidationError{Kind: InvalidFramework, IndicatorID: ind.ID, Msg: "duplicate indicator id"}
		}
		seen[ind.ID] = true

		if ind.IsQualitative() {
			if err := checkScale(ind); err != nil {
				return err
			}
			continue
		}
		if !finite(ind.MinValue) || !finite(ind.MaxValue) || ind.MinValue >= ind.MaxValue {
			return &ValidationError{
				Kind:        InvalidFramework,
				IndicatorID: ind.ID,
				Msg:         fmt.Sprintf("range [%g, %g] is not a valid interval", ind.MinValue, ind.MaxValue),
			}
		}
	}

	for _, g := range []struct {
		name string
		inds []Indicator
	}{{"input", f.Inputs()}, {"output", f.Outputs()}} {
		if len(g.inds) == 0 {
			return Invalid(EmptyIndicatorGroup, "framework %s has no %s indicators", f.ID, g.name)
		}
		if len(g.inds) > MaxGroupSize {
			return Invalid(GroupTooLarge, "framework %s has %d %s indicators (max %d)", f.ID, len(g.inds), g.name, MaxGroupSize)
		}
	}
	return nil
}

func checkScale(ind Indicator) error {
	if len(ind.Scale) < 2 {
		return &ValidationError{Kind: InvalidFramework, IndicatorID: ind.ID, Msg: "qualitative scale needs at least 2 entries"}
	}
	for i, v := range ind.Scale {
		if !finite(v) {
			return &ValidationError{Kind: InvalidFramework, IndicatorID: ind.ID, Msg: "scale entries must be finite"}
		}
		for _, prev := range ind.Scale[:i] {
			if math.Abs(prev-v) < ScaleTolerance {
				return &ValidationError{Kind: InvalidFramework, IndicatorID: ind.ID, Msg: fmt.Sprintf("duplicate scale entry %g", v)}
			}
		}
	}
	return nil
}

// ScaleTolerance is the tolerance used to match a raw value to a scale entry.
const ScaleTolerance = 1e-9

// ValidateInteractions checks that every interaction names two distinct
// indicators of the same group and that no pair is declared twice.
func (f *Framework) ValidateInteractions(interactions []Interaction) error {
	seen := make(map[[2]string]bool, len(interactions))
	for _, in := range interactions {
		if err := structErr(in); err != nil {
			return &ValidationError{Kind: InvalidInteraction, Msg: err.Error()}
		}
		a, okA := f.Indicator(in.A)
		b, okB := f.Indicator(in.B)
		switch {
		case !okA:
			return &ValidationError{Kind: InvalidInteraction, IndicatorID: in.A, Msg: "unknown indicator"}
		case !okB:
			return &ValidationError{Kind: InvalidInteraction, IndicatorID: in.B, Msg: "unknown indicator"}
		case a.IsInput != b.IsInput:
			return Invalid(InvalidInteraction, "%s pairs an input with an output", in.Key())
		case !finite(in.Weight):
			return Invalid(InvalidInteraction, "%s has a non-finite weight", in.Key())
		}
		pair := [2]string{in.A, in.B}
		if in.B < in.A {
			pair = [2]string{in.B, in.A}
		}
		if seen[pair] {
			return Invalid(InvalidInteraction, "%s declared more than once", in.Key())
		}
		seen[pair] = true
	}
	return nil
}

// ValidateScores checks population-level invariants: at least one DMU,
// unique DMU ids and exactly one score per framework indicator. Range and
// scale checks happen during normalization.
func (f *Framework) ValidateScores(scores []DMUScoreSet) error {
	if len(scores) == 0 {
		return Invalid(EmptyPopulation, "no DMU score sets supplied")
	}
	seen := make(map[string]bool, len(scores))
	for _, s := range scores {
		if s.DMUID == "" {
			return Invalid(InvalidFramework, "score set without a DMU id")
		}
		if seen[s.DMUID] {
			return &ValidationError{Kind: DuplicateDMU, DMUID: s.DMUID, Msg: "DMU id appears more than once"}
		}
		seen[s.DMUID] = true

		for _, ind := range f.Indicators {
			if _, ok := s.Scores[ind.ID]; !ok {
				return &ValidationError{Kind: MissingScore, DMUID: s.DMUID, IndicatorID: ind.ID, Msg: "no score for indicator"}
			}
		}
		for id := range s.Scores {
			if _, ok := f.Indicator(id); !ok {
				return &ValidationError{Kind: UnknownIndicator, DMUID: s.DMUID, IndicatorID: id, Msg: "score for indicator not in framework"}
			}
		}
	}
	return nil
}

// Validate checks the whole cycle document.
func (c *Cycle) Validate() error {
	if err := ValidateID("cycle id", c.ID); err != nil {
		return err
	}
	if err := c.Framework.Validate(); err != nil {
		return err
	}
	if err := c.Framework.ValidateInteractions(c.Interactions); err != nil {
		return err
	}
	return c.Framework.ValidateScores(c.Scores)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
