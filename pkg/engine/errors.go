package engine

import (
	"errors"
	"fmt"

	"github.com/lucasprac/dea-choquet/pkg/framework"
)

// ValidationError is re-exported so callers of the engine need not import
// the framework package to inspect failures.
type ValidationError = framework.ValidationError

// ErrValidation matches every validation error via errors.Is.
var ErrValidation = framework.ErrValidation

// ErrInvariant matches every *InvariantViolation via errors.Is.
var ErrInvariant = errors.New("internal invariant violation")

// InvariantKind names a mathematical guarantee the engine failed to uphold.
type InvariantKind string

const (
	ShapleySumMismatch       InvariantKind = "ShapleySumMismatch"
	MonotonicityRepairFailed InvariantKind = "MonotonicityRepairFailed"
)

// InvariantViolation means the engine produced an inconsistent intermediate
// result. It always aborts the computation and is never worth retrying.
type InvariantViolation struct {
	Kind InvariantKind
	Msg  string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is lets errors.Is(err, ErrInvariant) match any invariant violation.
func (e *InvariantViolation) Is(target error) bool {
	return target == ErrInvariant
}

// WarningKind classifies a non-fatal condition recorded in results.
type WarningKind string

// DegenerateInput flags a DMU whose aggregated input is zero.
const DegenerateInput WarningKind = "DegenerateInput"

// Warning is a non-fatal condition attached to one DMU.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	DMUID   string      `json:"dmuId"`
	Message string      `json:"message"`
}
