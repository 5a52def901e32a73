// Package symbolica is the public facade over the internal rule
// engine: compile a declarative rule set, reason over a fact map,
// and ask the backward chainer whether a goal is reachable. It wraps
// internal/compile, internal/executor, and internal/backward behind a
// small surface so a host never imports an internal package directly,
// the way the teacher's cmd/* binaries only ever saw rgehrsitz/rex/pkg
// through a thin seam rather than reaching into its internal packages
// themselves.
package symbolica

import (
	"context"
	"time"

	"github.com/symbolica-rules/symbolica/internal/ast"
	"github.com/symbolica-rules/symbolica/internal/backward"
	"github.com/symbolica-rules/symbolica/internal/compile"
	"github.com/symbolica-rules/symbolica/internal/config"
	"github.com/symbolica-rules/symbolica/internal/core"
	"github.com/symbolica-rules/symbolica/internal/executor"
	"github.com/symbolica-rules/symbolica/internal/parser"
	"github.com/symbolica-rules/symbolica/internal/registry"
	"github.com/symbolica-rules/symbolica/internal/temporal"
)

// Type aliases re-exporting the domain types a host needs without
// importing internal/* directly.
type (
	Value              = core.Value
	Facts              = core.Facts
	Node               = ast.Node
	RuleDef            = compile.RuleDef
	ActionTemplate     = compile.ActionTemplate
	Rule               = compile.Rule
	RuleSet            = compile.RuleSet
	ExecutionResult    = core.ExecutionResult
	TraceEntry         = core.TraceEntry
	TraceLevel         = core.TraceLevel
	Goal               = backward.Goal
	LLMAdapter         = registry.LLMAdapter
	FunctionDescriptor = registry.Descriptor
	Config             = config.Config
)

// Value constructors re-exported for callers building Fact maps.
var (
	Null          = core.Null
	Bool          = core.Bool
	Int           = core.Int
	Float         = core.Float
	String        = core.String
	List          = core.List
	Map           = core.Map
	NewFacts      = core.NewFacts
	FromGo        = core.FromGo
	NewGoal       = backward.NewGoal
	NewFieldGoal  = backward.NewFieldGoal
	DefaultConfig = config.Default
)

// Trace level constants re-exported for CallOptions.
const (
	TraceNone     = core.TraceNone
	TraceBasic    = core.TraceBasic
	TraceDetailed = core.TraceDetailed
	TraceDebug    = core.TraceDebug
)

// ParseExpr parses a flat expression string into an AST node, for
// callers assembling a RuleDef programmatically.
func ParseExpr(src string) (Node, error) { return parser.ParseExpr(src) }

// ParseStructured parses a structured all/any/not condition tree.
func ParseStructured(node any) (Node, error) { return parser.ParseStructured(node) }

// ParseActionValue parses one action's value per the literal/template
// rules: a bare value is a literal, a `{{ expr }}`-wrapped string is
// parsed as an expression.
func ParseActionValue(val any) (Node, error) { return parser.ParseActionValue(val) }

// Compile validates rule definitions and produces the immutable,
// deterministically-ordered RuleSet the Engine reasons over.
func Compile(defs []RuleDef) (*RuleSet, error) { return compile.Compile(defs) }

// CallOptions overrides an Engine's Config defaults for one Reason
// call.
type CallOptions = executor.CallOptions

// Engine bundles a compiled RuleSet with the shared, mutable
// resources a reasoning session needs: the function registry, the
// temporal store, and an optional LLM adapter for PROMPT(...).
type Engine struct {
	ruleSet  *RuleSet
	registry *registry.Registry
	temporal *temporal.Store
	config   config.Config
	exec     *executor.Executor
	chainer  *backward.Chainer
}

// NewEngine constructs an Engine over a compiled RuleSet. A nil cfg
// uses config.Default(). The engine owns a fresh function registry
// (seeded with every built-in) and a fresh temporal store sized per
// cfg; use RegisterFunction/RegisterLLMAdapter before the first
// Reason call to extend either.
func NewEngine(ruleSet *RuleSet, cfg *Config) *Engine {
	resolved := config.Default()
	if cfg != nil {
		resolved = *cfg
	}
	reg := registry.Default()
	store := temporal.New(resolved.TemporalMaxAge, resolved.TemporalMaxPoints)
	return &Engine{
		ruleSet:  ruleSet,
		registry: reg,
		temporal: store,
		config:   resolved,
		exec:     executor.New(reg, store, resolved),
		chainer:  backward.New(ruleSet, reg, store, resolved.BackwardChainMaxDepth),
	}
}

// RuleSet returns the compiled RuleSet this Engine reasons over.
func (e *Engine) RuleSet() *RuleSet { return e.ruleSet }

// RegisterFunction adds a pure function to the Engine's registry.
// Must be called before the first Reason call; the registry is
// treated as read-only during evaluation per spec §5.
func (e *Engine) RegisterFunction(d FunctionDescriptor) error { return e.registry.Register(d) }

// RegisterUnsafeFunction adds an impure function to the Engine's
// registry, making the side-effecting intent explicit at the call
// site.
func (e *Engine) RegisterUnsafeFunction(d FunctionDescriptor) { e.registry.RegisterUnsafe(d) }

// RegisterLLMAdapter wires a host's LLM client into PROMPT(...).
func (e *Engine) RegisterLLMAdapter(adapter LLMAdapter) { e.exec.Adapter = adapter }

// SetClock overrides the Engine's "now" source, for deterministic
// tests.
func (e *Engine) SetClock(clock func() time.Time) { e.exec.Clock = clock }

// Record appends one temporal sample under key, for conditions that
// later call recent_avg/sustained_above/etc.
func (e *Engine) Record(key string, value float64, at time.Time) {
	e.temporal.Record(key, value, at)
}

// SetTTLFact records a single-value fact with an explicit expiration.
func (e *Engine) SetTTLFact(key string, value float64, now time.Time, ttl time.Duration) {
	e.temporal.SetTTLFact(key, value, now, ttl)
}

// Reason evaluates the Engine's RuleSet against facts, returning the
// Execution Result (spec §4.4).
func (e *Engine) Reason(ctx context.Context, facts *Facts, opts CallOptions) (*ExecutionResult, error) {
	return e.exec.Reason(ctx, e.ruleSet, facts, opts)
}

// RulesForGoal returns every rule that could produce goal, without
// executing anything (spec §4.6).
func (e *Engine) RulesForGoal(goal Goal) []*Rule { return e.chainer.RulesForGoal(goal) }

// CanAchieve reports whether some chain of rule firings, starting
// from facts, could plausibly produce goal (spec §4.6). A false
// result is sound; a true result is necessary but not sufficient.
func (e *Engine) CanAchieve(goal Goal, facts *Facts) bool { return e.chainer.CanAchieve(goal, facts) }
