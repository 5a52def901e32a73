package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError is raised at compile time for malformed expressions,
// unknown structured keys, unresolved trigger ids, or duplicate rule
// ids. Grounded on the teacher's flat fmt.Errorf style in
// preprocessor.parser.go, generalized into a typed, inspectable error
// the way a multi-package core needs (so an executor three layers up
// can errors.As its way back to the offending position).
type ParseError struct {
	Position int
	Expected string
	Detail   string
}

func (e *ParseError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("parse error at position %d: expected %s (%s)", e.Position, e.Expected, e.Detail)
	}
	return fmt.Sprintf("parse error: %s", e.Detail)
}

// CyclicDependency is raised at compile time when the rule dependency
// graph contains a cycle.
type CyclicDependency struct {
	Cycle []string
}

func (e *CyclicDependency) Error() string {
	return fmt.Sprintf("cyclic dependency among rules: %v", e.Cycle)
}

// UndefinedField is a runtime, per-rule failure: a bare Ref read a name
// absent from both the overlay and the original facts.
type UndefinedField struct {
	Name string
}

func (e *UndefinedField) Error() string {
	return fmt.Sprintf("undefined field: %s", e.Name)
}

// TypeError is a runtime, per-rule failure: an operator was applied to
// operands whose primitive categories do not match.
type TypeError struct {
	Op      string
	Detail  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error in %s: %s", e.Op, e.Detail)
}

// DivisionByZero is a runtime, per-rule failure, fatal to the call
// unless the permissive strategy is selected.
type DivisionByZero struct{}

func (e *DivisionByZero) Error() string { return "division by zero" }

// ArityMismatch is a runtime, per-rule failure: a function call was
// given too few or too many arguments.
type ArityMismatch struct {
	Func     string
	Got      int
	Min, Max int
}

func (e *ArityMismatch) Error() string {
	return fmt.Sprintf("arity mismatch calling %s: got %d args, want [%d,%d]", e.Func, e.Got, e.Min, e.Max)
}

// PromptUnavailable is returned by the built-in PROMPT function when no
// LLM adapter has been registered.
type PromptUnavailable struct{}

func (e *PromptUnavailable) Error() string { return "PROMPT unavailable: no LLM adapter registered" }

// PromptError wraps a failure surfaced by a registered LLM adapter.
type PromptError struct {
	Cause error
}

func (e *PromptError) Error() string { return fmt.Sprintf("PROMPT failed: %v", e.Cause) }
func (e *PromptError) Unwrap() error { return e.Cause }

// Timeout is a per-call failure: the reasoning deadline expired mid
// evaluation.
type Timeout struct{}

func (e *Timeout) Error() string { return "reasoning deadline exceeded" }

// Cancelled is a per-call failure: the caller's context was cancelled
// between rule evaluations.
type Cancelled struct{}

func (e *Cancelled) Error() string { return "reasoning cancelled" }

// Wrap annotates err with a stack-carrying message using the same
// github.com/pkg/errors idiom the teacher's dependency graph already
// carries (as an indirect dependency of github.com/rs/zerolog's test
// chain); used at the boundary where an evaluator-local error crosses
// into the executor so logs retain provenance without losing the
// concrete type for errors.As.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, message)
}

// IsDemotable reports whether err should demote a rule to "did not
// fire" rather than aborting the whole reason call, per spec §4.4/§7:
// UndefinedField and TypeError are always demotable; the rest are only
// demotable when the caller selected the permissive strategy.
func IsDemotable(err error, permissive bool) bool {
	var uf *UndefinedField
	var te *TypeError
	if errors.As(err, &uf) || errors.As(err, &te) {
		return true
	}
	if !permissive {
		return false
	}
	var dz *DivisionByZero
	var am *ArityMismatch
	var pu *PromptUnavailable
	var pe *PromptError
	return errors.As(err, &dz) || errors.As(err, &am) || errors.As(err, &pu) || errors.As(err, &pe)
}
