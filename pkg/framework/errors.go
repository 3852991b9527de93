package framework

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation error")

// ValidationKind classifies why input data was rejected.
type ValidationKind string

const (
	OutOfRange          ValidationKind = "OutOfRange"
	InvalidScaleValue   ValidationKind = "InvalidScaleValue"
	MissingScore        ValidationKind = "MissingScore"
	EmptyIndicatorGroup ValidationKind = "EmptyIndicatorGroup"
	EmptyPopulation     ValidationKind = "EmptyPopulation"
	GroupTooLarge       ValidationKind = "GroupTooLarge"
	UnknownIndicator    ValidationKind = "UnknownIndicator"
	DuplicateDMU        ValidationKind = "DuplicateDMU"
	InvalidInteraction  ValidationKind = "InvalidInteraction"
	InvalidFramework    ValidationKind = "InvalidFramework"
	InvalidIdentifier   ValidationKind = "InvalidIdentifier"
	InvalidObjective    ValidationKind = "InvalidObjective"
)

// ValidationError reports input data that cannot be evaluated. Computation
// never starts when one is returned.
type ValidationError struct {
	Kind        ValidationKind
	DMUID       string
	IndicatorID string
	Value       float64
	Msg         string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.DMUID != "" {
		fmt.Fprintf(&b, " dmu=%s", e.DMUID)
	}
	if e.IndicatorID != "" {
		fmt.Fprintf(&b, " indicator=%s", e.IndicatorID)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

// Is lets errors.Is(err, ErrValidation) match any validation error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError with a formatted message.
func Invalid(kind ValidationKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the validation kind of err, or "" if err is not a
// validation error.
func KindOf(err error) ValidationKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}
