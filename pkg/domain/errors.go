package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSearchExhausted is matched by SearchExhausted.
	ErrSearchExhausted = errors.New("no configuration found")
	// ErrContractViolation is matched by ContractViolation.
	ErrContractViolation = errors.New("contract violation")
	// ErrSnapshotNotFound is returned when a snapshot ID cannot be found in the store.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// ConstraintNotSatisfied is raised when a checker rejects a configuration.
// It is recoverable: the controller reacts by backtracking.
type ConstraintNotSatisfied struct {
	Decision DecisionRef
	Reason   string
}

func (e *ConstraintNotSatisfied) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("constraint not satisfied at %s: %s", e.Decision, e.Reason)
	}
	return fmt.Sprintf("constraint not satisfied at %s", e.Decision)
}

// SearchExhausted is returned when a failure has no revisable ancestor.
type SearchExhausted struct {
	Failing DecisionRef
	Stats   Stats
}

func (e *SearchExhausted) Error() string {
	return fmt.Sprintf("%s: no revisable decision above %s after %d attempts",
		ErrSearchExhausted, e.Failing, e.Stats.Attempts)
}

func (e *SearchExhausted) Is(target error) bool { return target == ErrSearchExhausted }

// ContractViolation reports an engine or internal misbehaviour: reading
// outside the declared access list, narrowing outside the accessible set,
// choosing outside the available set, or a dangling reference found during
// rollback. It is always fatal.
type ContractViolation struct {
	Engine string
	Step   int
	Reason string
	Err    error
}

func (e *ContractViolation) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrContractViolation, e.Reason)
	if e.Engine != "" {
		msg = fmt.Sprintf("%s (engine %q, step %d)", msg, e.Engine, e.Step)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ContractViolation) Is(target error) bool { return target == ErrContractViolation }

func (e *ContractViolation) Unwrap() error { return e.Err }

// Violationf builds a ContractViolation without engine context.
func Violationf(format string, args ...any) *ContractViolation {
	return &ContractViolation{Reason: fmt.Sprintf(format, args...)}
}
