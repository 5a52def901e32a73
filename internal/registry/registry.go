// Package registry implements the function lookup table spec §4.5
// describes: name to descriptor (arity, purity, callable). It owns the
// built-in temporal, null-check, and string/number coercion functions,
// the PROMPT(...) LLM hook, and the host registration surface for
// additional pure (or explicitly unsafe impure) functions. Grounded on
// original_source/symbolica/_internal/evaluation/builtin_functions.py
// for the built-in family and on
// rgehrsitz-rex_claude/internal/preprocessor's flat lookup-table style
// for registering named callables.
package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/symbolica-rules/symbolica/internal/core"
	"github.com/symbolica-rules/symbolica/internal/temporal"
)

// Descriptor describes one registered function: its arity bounds,
// whether it is pure, and the callable producing a Value from already
// evaluated arguments.
type Descriptor struct {
	Name     string
	Min, Max int // Max < 0 means unbounded.
	Pure     bool
	Fn       func(ctx *CallContext, args []core.Value) (core.Value, error)
}

// CallContext carries the per-call state a built-in may need: the
// frozen "now" (spec §4.7), the shared temporal store, the caller's
// context.Context (for PROMPT's adapter call), and the PROMPT result
// cache for this one reason call.
type CallContext struct {
	Ctx      context.Context
	Now      func() (seconds float64)
	Temporal *temporal.Store
	Adapter  LLMAdapter
	promptCache map[string]promptResult
}

type promptResult struct {
	text string
	err  error
}

// LLMAdapter is the single-method collaborator the PROMPT(...) built-in
// delegates to. It mirrors the shape of sashabaranov/go-openai's
// CreateChatCompletion and tmc/langchaingo's llms.Model.Call signatures
// (observed in the jinterlante1206-AleutianLocal example), so a host
// wiring either library needs only a one-method shim. Neither library
// is imported here: the adapter is a caller collaborator, out of the
// core's scope.
type LLMAdapter interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// NewCallContext constructs a CallContext for one reason call.
func NewCallContext(ctx context.Context, now func() float64, store *temporal.Store, adapter LLMAdapter) *CallContext {
	return &CallContext{
		Ctx:         ctx,
		Now:         now,
		Temporal:    store,
		Adapter:     adapter,
		promptCache: make(map[string]promptResult),
	}
}

// Registry is a lookup table from function name to Descriptor. New()
// returns an empty one and Default() one pre-populated with every
// built-in; the zero Registry has no map, so registering into it panics.
type Registry struct {
	funcs map[string]Descriptor
}

// New returns an empty Registry with no built-ins registered.
func New() *Registry {
	return &Registry{funcs: make(map[string]Descriptor)}
}

// Default returns a Registry populated with every spec built-in:
// temporal functions, null-check/coercion helpers, and PROMPT.
func Default() *Registry {
	r := New()
	registerTemporalFunctions(r)
	registerCoreFunctions(r)
	registerPrompt(r)
	return r
}

// Register adds or replaces a descriptor. Impure (Pure: false)
// registrations must be made with RegisterUnsafe to make the intent
// explicit at the call site, per spec §4.5's "impure registrations
// require an explicit unsafe flag" rule.
func (r *Registry) Register(d Descriptor) error {
	if !d.Pure {
		return fmt.Errorf("registry: %q is impure; use RegisterUnsafe", d.Name)
	}
	r.funcs[d.Name] = d
	return nil
}

// RegisterUnsafe adds or replaces an impure function descriptor. The
// name makes the caller state, at the call site, that it knowingly
// registers a function with side effects or non-determinism.
func (r *Registry) RegisterUnsafe(d Descriptor) {
	d.Pure = false
	r.funcs[d.Name] = d
}

// Lookup returns the descriptor for name, or (Descriptor{}, false) if
// unregistered.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.funcs[name]
	return d, ok
}

// CheckArity validates got against [Min, Max], returning an
// *core.ArityMismatch on failure.
func (d Descriptor) CheckArity(got int) error {
	if got < d.Min || (d.Max >= 0 && got > d.Max) {
		return &core.ArityMismatch{Func: d.Name, Got: got, Min: d.Min, Max: d.Max}
	}
	return nil
}

func registerCoreFunctions(r *Registry) {
	builtins := []Descriptor{
		{Name: "len", Min: 1, Max: 1, Pure: true, Fn: fnLen},
		{Name: "upper", Min: 1, Max: 1, Pure: true, Fn: fnUpper},
		{Name: "lower", Min: 1, Max: 1, Pure: true, Fn: fnLower},
		{Name: "contains", Min: 2, Max: 2, Pure: true, Fn: fnContains},
		{Name: "abs", Min: 1, Max: 1, Pure: true, Fn: fnAbs},
		{Name: "round", Min: 1, Max: 2, Pure: true, Fn: fnRound},
		{Name: "min", Min: 1, Max: -1, Pure: true, Fn: fnMin},
		{Name: "max", Min: 1, Max: -1, Pure: true, Fn: fnMax},
		{Name: "coalesce", Min: 1, Max: -1, Pure: true, Fn: fnCoalesce},
		{Name: "now", Min: 0, Max: 0, Pure: true, Fn: fnNow},
		{Name: "__list", Min: 0, Max: -1, Pure: true, Fn: fnList},
	}
	for _, d := range builtins {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

func fnList(_ *CallContext, args []core.Value) (core.Value, error) {
	return core.List(args), nil
}

func fnLen(_ *CallContext, args []core.Value) (core.Value, error) {
	switch args[0].Kind() {
	case core.KindString:
		s, _ := args[0].AsString()
		return core.Int(int64(len(s))), nil
	case core.KindList:
		l, _ := args[0].AsList()
		return core.Int(int64(len(l))), nil
	case core.KindMap:
		m, _ := args[0].AsMap()
		return core.Int(int64(len(m))), nil
	default:
		return core.Null, &core.TypeError{Op: "len", Detail: "expects string, list, or map"}
	}
}

func fnUpper(_ *CallContext, args []core.Value) (core.Value, error) {
	s, ok := args[0].AsString()
	if !ok {
		return core.Null, &core.TypeError{Op: "upper", Detail: "expects string"}
	}
	return core.String(strings.ToUpper(s)), nil
}

func fnLower(_ *CallContext, args []core.Value) (core.Value, error) {
	s, ok := args[0].AsString()
	if !ok {
		return core.Null, &core.TypeError{Op: "lower", Detail: "expects string"}
	}
	return core.String(strings.ToLower(s)), nil
}

func fnContains(_ *CallContext, args []core.Value) (core.Value, error) {
	switch args[0].Kind() {
	case core.KindString:
		hay, _ := args[0].AsString()
		needle, ok := args[1].AsString()
		if !ok {
			return core.Null, &core.TypeError{Op: "contains", Detail: "needle must be a string when haystack is a string"}
		}
		return core.Bool(strings.Contains(hay, needle)), nil
	case core.KindList:
		items, _ := args[0].AsList()
		for _, it := range items {
			if it.Equal(args[1]) {
				return core.Bool(true), nil
			}
		}
		return core.Bool(false), nil
	default:
		return core.Null, &core.TypeError{Op: "contains", Detail: "expects string or list"}
	}
}

func fnAbs(_ *CallContext, args []core.Value) (core.Value, error) {
	switch args[0].Kind() {
	case core.KindInt:
		i, _ := args[0].AsInt()
		if i < 0 {
			i = -i
		}
		return core.Int(i), nil
	case core.KindFloat:
		f, _ := args[0].AsFloat()
		if f < 0 {
			f = -f
		}
		return core.Float(f), nil
	default:
		return core.Null, &core.TypeError{Op: "abs", Detail: "expects a number"}
	}
}

func fnRound(_ *CallContext, args []core.Value) (core.Value, error) {
	f, ok := args[0].AsFloat()
	if !ok {
		return core.Null, &core.TypeError{Op: "round", Detail: "expects a number"}
	}
	digits := int64(0)
	if len(args) == 2 {
		d, ok := args[1].AsInt()
		if !ok {
			return core.Null, &core.TypeError{Op: "round", Detail: "digits must be an int"}
		}
		digits = d
	}
	scale := 1.0
	for i := int64(0); i < digits; i++ {
		scale *= 10
	}
	rounded := roundHalfAwayFromZero(f*scale) / scale
	if digits <= 0 {
		return core.Int(int64(rounded)), nil
	}
	return core.Float(rounded), nil
}

func roundHalfAwayFromZero(f float64) float64 {
	if f >= 0 {
		return float64(int64(f + 0.5))
	}
	return float64(int64(f - 0.5))
}

func fnMin(_ *CallContext, args []core.Value) (core.Value, error) {
	return numericFold(args, "min", func(a, b float64) bool { return a < b })
}

func fnMax(_ *CallContext, args []core.Value) (core.Value, error) {
	return numericFold(args, "max", func(a, b float64) bool { return a > b })
}

func numericFold(args []core.Value, op string, better func(a, b float64) bool) (core.Value, error) {
	best := args[0]
	bestF, ok := best.AsFloat()
	if !ok {
		return core.Null, &core.TypeError{Op: op, Detail: "expects numbers"}
	}
	for _, v := range args[1:] {
		f, ok := v.AsFloat()
		if !ok {
			return core.Null, &core.TypeError{Op: op, Detail: "expects numbers"}
		}
		if better(f, bestF) {
			best, bestF = v, f
		}
	}
	return best, nil
}

func fnCoalesce(_ *CallContext, args []core.Value) (core.Value, error) {
	for _, v := range args {
		if !v.IsNull() {
			return v, nil
		}
	}
	return core.Null, nil
}

func fnNow(cc *CallContext, _ []core.Value) (core.Value, error) {
	return core.Float(cc.Now()), nil
}
