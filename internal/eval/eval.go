// Package eval walks an internal/ast tree against an environment
// (overlay-over-facts lookup, function registry, temporal store) and
// produces a core.Value or a typed failure, per spec §4.2. It
// implements the visitor the ast package defines rather than a type
// switch, so every node variant is exhaustively handled at compile
// time. Grounded on
// original_source/symbolica/_internal/evaluation/evaluator.py for the
// operator semantics (falsy set, short-circuiting, safe-read idiom)
// and on rgehrsitz-rex_claude/internal/runtime's visitor-free
// stack-machine for the general "walk a compiled tree, carry typed
// errors" shape, adapted here to a direct tree-walking interpreter
// since the spec does not call for a bytecode compilation step.
package eval

import (
	"fmt"

	"github.com/symbolica-rules/symbolica/internal/ast"
	"github.com/symbolica-rules/symbolica/internal/core"
	"github.com/symbolica-rules/symbolica/internal/registry"
)

// Lookup resolves a field name against the current environment (the
// original facts overlaid by writes accumulated so far in the current
// reason call). The second return distinguishes "absent" from
// "present but null".
type Lookup func(name string) (core.Value, bool)

// ImpureCall records one evaluation-time call to an impure function
// (including PROMPT), exposed through ImpureCalls; the executor does
// not copy these records into its trace entries.
type ImpureCall struct {
	Name string
	Args []core.Value
}

// Evaluator walks one AST tree against one environment. It is
// stateful for the duration of a single Eval call and is not safe for
// concurrent reuse; callers construct a fresh Evaluator per
// evaluation (cheap: it holds only slice/pointer fields).
type Evaluator struct {
	lookup      Lookup
	reg         *registry.Registry
	cc          *registry.CallContext
	result      core.Value
	impureCalls []ImpureCall
}

// New constructs an Evaluator over the given environment.
func New(lookup Lookup, reg *registry.Registry, cc *registry.CallContext) *Evaluator {
	return &Evaluator{lookup: lookup, reg: reg, cc: cc}
}

// Eval evaluates node and returns its Value, or the first typed error
// encountered. ImpureCalls() reflects any PROMPT/impure calls made
// during this evaluation.
func (e *Evaluator) Eval(node ast.Node) (core.Value, error) {
	e.result = core.Null
	if err := node.Accept(e); err != nil {
		return core.Null, err
	}
	return e.result, nil
}

// ImpureCalls returns every impure (including PROMPT) call observed
// during the most recent Eval.
func (e *Evaluator) ImpureCalls() []ImpureCall { return e.impureCalls }

func (e *Evaluator) evalChild(n ast.Node) (core.Value, error) {
	child := &Evaluator{lookup: e.lookup, reg: e.reg, cc: e.cc}
	v, err := child.Eval(n)
	e.impureCalls = append(e.impureCalls, child.impureCalls...)
	return v, err
}

func (e *Evaluator) VisitLiteral(n *ast.Literal) error {
	e.result = n.Value
	return nil
}

func (e *Evaluator) VisitRef(n *ast.Ref) error {
	v, ok := e.lookup(n.Name)
	if !ok {
		if n.SafeDefault {
			e.result = core.Null
			return nil
		}
		return &core.UndefinedField{Name: n.Name}
	}
	e.result = v
	return nil
}

func (e *Evaluator) VisitUnaryOp(n *ast.UnaryOpNode) error {
	v, err := e.evalChild(n.Inner)
	if err != nil {
		return err
	}
	switch n.Op {
	case ast.OpNot:
		e.result = core.Bool(!v.Truthy())
		return nil
	case ast.OpNegate:
		switch v.Kind() {
		case core.KindInt:
			i, _ := v.AsInt()
			e.result = core.Int(-i)
			return nil
		case core.KindFloat:
			f, _ := v.AsFloat()
			e.result = core.Float(-f)
			return nil
		default:
			return &core.TypeError{Op: string(n.Op), Detail: fmt.Sprintf("cannot negate %s", v.Kind())}
		}
	default:
		return &core.TypeError{Op: string(n.Op), Detail: "unknown unary operator"}
	}
}

func (e *Evaluator) VisitBinaryOp(n *ast.BinaryOpNode) error {
	if n.Op == ast.OpOr || n.Op == ast.OpAnd {
		return e.visitBooleanOp(n)
	}

	left, err := e.evalChild(n.Left)
	if err != nil {
		return err
	}
	right, err := e.evalChild(n.Right)
	if err != nil {
		return err
	}
	v, err := applyBinaryOp(n.Op, left, right)
	if err != nil {
		return err
	}
	e.result = v
	return nil
}

// visitBooleanOp implements spec §4.2's and/or semantics: the reported
// Value is always Bool, EXCEPT for the safe-read idiom (`x or <literal>`
// where x was rewritten with SafeDefault at parse time), which yields
// the actual operand value so the literal default can be something
// other than a boolean, e.g. `x or 0`.
func (e *Evaluator) visitBooleanOp(n *ast.BinaryOpNode) error {
	if n.Op == ast.OpOr {
		if ref, ok := n.Left.(*ast.Ref); ok && ref.SafeDefault {
			if _, isLiteral := n.Right.(*ast.Literal); isLiteral {
				left, err := e.evalChild(n.Left)
				if err != nil {
					return err
				}
				if left.Truthy() {
					e.result = left
					return nil
				}
				right, err := e.evalChild(n.Right)
				if err != nil {
					return err
				}
				e.result = right
				return nil
			}
		}
	}

	left, err := e.evalChild(n.Left)
	if err != nil {
		return err
	}
	if n.Op == ast.OpOr {
		if left.Truthy() {
			e.result = core.Bool(true)
			return nil
		}
		right, err := e.evalChild(n.Right)
		if err != nil {
			return err
		}
		e.result = core.Bool(right.Truthy())
		return nil
	}
	// ast.OpAnd
	if !left.Truthy() {
		e.result = core.Bool(false)
		return nil
	}
	right, err := e.evalChild(n.Right)
	if err != nil {
		return err
	}
	e.result = core.Bool(right.Truthy())
	return nil
}

func (e *Evaluator) VisitCall(n *ast.Call) error {
	desc, ok := e.reg.Lookup(n.Name)
	if !ok {
		return &core.UndefinedField{Name: "function:" + n.Name}
	}
	args := make([]core.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := e.evalChild(a)
		if err != nil {
			return err
		}
		args[i] = v
	}
	if err := desc.CheckArity(len(args)); err != nil {
		return err
	}
	v, err := desc.Fn(e.cc, args)
	if !desc.Pure || n.Name == "PROMPT" {
		e.impureCalls = append(e.impureCalls, ImpureCall{Name: n.Name, Args: args})
	}
	if err != nil {
		return err
	}
	e.result = v
	return nil
}

func (e *Evaluator) VisitIndex(n *ast.Index) error {
	container, err := e.evalChild(n.Container)
	if err != nil {
		return err
	}
	key, err := e.evalChild(n.Key)
	if err != nil {
		return err
	}
	switch container.Kind() {
	case core.KindList:
		items, _ := container.AsList()
		idx, ok := key.AsInt()
		if !ok {
			return &core.TypeError{Op: "index", Detail: "list index must be an int"}
		}
		if idx < 0 || int(idx) >= len(items) {
			e.result = core.Null
			return nil
		}
		e.result = items[idx]
		return nil
	case core.KindMap:
		m, _ := container.AsMap()
		k, ok := key.AsString()
		if !ok {
			return &core.TypeError{Op: "index", Detail: "map key must be a string"}
		}
		v, ok := m[k]
		if !ok {
			e.result = core.Null
			return nil
		}
		e.result = v
		return nil
	default:
		return &core.TypeError{Op: "index", Detail: fmt.Sprintf("cannot index into %s", container.Kind())}
	}
}

func (e *Evaluator) VisitMemberOf(n *ast.MemberOf) error {
	value, err := e.evalChild(n.Value)
	if err != nil {
		return err
	}
	list, err := e.evalChild(n.List)
	if err != nil {
		return err
	}
	items, ok := list.AsList()
	if !ok {
		return &core.TypeError{Op: "in", Detail: fmt.Sprintf("right operand of 'in' must be a list, got %s", list.Kind())}
	}
	for _, it := range items {
		if it.Equal(value) {
			e.result = core.Bool(true)
			return nil
		}
	}
	e.result = core.Bool(false)
	return nil
}

func (e *Evaluator) VisitConditional(n *ast.Conditional) error {
	cond, err := e.evalChild(n.Cond)
	if err != nil {
		return err
	}
	if cond.Truthy() {
		v, err := e.evalChild(n.Then)
		if err != nil {
			return err
		}
		e.result = v
		return nil
	}
	v, err := e.evalChild(n.Else)
	if err != nil {
		return err
	}
	e.result = v
	return nil
}

func (e *Evaluator) VisitAll(n *ast.All) error {
	for _, child := range n.Children {
		v, err := e.evalChild(child)
		if err != nil {
			return err
		}
		if !v.Truthy() {
			e.result = core.Bool(false)
			return nil
		}
	}
	e.result = core.Bool(true)
	return nil
}

func (e *Evaluator) VisitAny(n *ast.Any) error {
	for _, child := range n.Children {
		v, err := e.evalChild(child)
		if err != nil {
			return err
		}
		if v.Truthy() {
			e.result = core.Bool(true)
			return nil
		}
	}
	e.result = core.Bool(false)
	return nil
}

func (e *Evaluator) VisitNot(n *ast.Not) error {
	v, err := e.evalChild(n.Inner)
	if err != nil {
		return err
	}
	e.result = core.Bool(!v.Truthy())
	return nil
}
