package core

import "time"

// TraceLevel controls how much detail the executor records per rule,
// supplementing spec §6's "verbose trace" mention with a concrete
// enum. At every level, fired rules and rules demoted by an evaluation
// failure are recorded with their condition text and writes. Basic adds
// entries for rules whose condition evaluated false and renders
// failures in the reasoning string; Detailed adds observed bindings to
// fired entries; Debug records the same as Detailed (impure calls are
// not kept in the trace).
type TraceLevel int

const (
	TraceNone TraceLevel = iota
	TraceBasic
	TraceDetailed
	TraceDebug
)

// FireReason records how a rule came to be evaluated in one reason
// call: either it was reached in the normal topological pass, or a
// predecessor's trigger enqueued it.
type FireReason int

const (
	FiredTopological FireReason = iota
	FiredByTrigger
)

// TraceEntry is the per-rule record described in spec §3: id, condition
// text, the observed bindings that mattered, the writes performed, and
// whether forward chaining was involved.
type TraceEntry struct {
	RuleID       string
	ConditionText string
	Fired        bool
	// FailureKind is non-empty when Fired is false because the
	// condition evaluation failed rather than simply evaluating falsy
	// (the error text, e.g. "undefined field: annual_income").
	FailureKind string
	Bindings     map[string]Value
	Writes       map[string]Value
	Reason       FireReason
	TriggeredBy  string
	DurationNS   int64
}

// ExecutionResult is the output of one Reason call, per spec §3 and the
// TraceLevel/ContextID/ExecutionTimeNS extensions in SPEC_FULL.md §3/§10.
type ExecutionResult struct {
	Verdict      map[string]Value
	FiredRuleIDs []string
	Reasoning    string
	Elapsed      time.Duration
	Traces       []TraceEntry
	ContextID    string
	Truncated    bool // deadline expired mid-evaluation
	Cancelled    bool // caller cancelled between rule evaluations
}

// ExecutionTimeNS returns the elapsed wall time in nanoseconds, for
// parity with the original implementation's dual ns/ms accessors.
func (r *ExecutionResult) ExecutionTimeNS() int64 { return r.Elapsed.Nanoseconds() }

// ExecutionTimeMS returns the elapsed wall time in fractional
// milliseconds.
func (r *ExecutionResult) ExecutionTimeMS() float64 {
	return float64(r.Elapsed.Nanoseconds()) / 1_000_000
}

// HasVerdict reports whether any field was written.
func (r *ExecutionResult) HasVerdict() bool { return len(r.Verdict) > 0 }
