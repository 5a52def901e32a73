package backward

import (
	"context"
	"time"

	"github.com/symbolica-rules/symbolica/internal/ast"
	"github.com/symbolica-rules/symbolica/internal/core"
	"github.com/symbolica-rules/symbolica/internal/eval"
	"github.com/symbolica-rules/symbolica/internal/registry"
	"github.com/symbolica-rules/symbolica/internal/temporal"
)

// optimisticTruth evaluates a candidate rule's condition against facts
// the way spec §4.6 requires for backward chaining: a comparison that
// reads a field absent from facts is treated as indeterminate-true
// (the missing value might satisfy it) rather than raising
// UndefinedField, while and/or/not/all/any combine sub-results the
// normal way. Every other node kind (calls, indexing, membership,
// conditionals, bare Ref truthiness) falls back to real evaluation
// against facts, also treating any evaluation error as
// indeterminate-true.
func optimisticTruth(node ast.Node, facts *core.Facts, reg *registry.Registry, store *temporal.Store) bool {
	switch n := node.(type) {
	case *ast.UnaryOpNode:
		if n.Op == ast.OpNot {
			return !optimisticTruth(n.Inner, facts, reg, store)
		}
	case *ast.Not:
		return !optimisticTruth(n.Inner, facts, reg, store)
	case *ast.All:
		for _, c := range n.Children {
			if !optimisticTruth(c, facts, reg, store) {
				return false
			}
		}
		return true
	case *ast.Any:
		for _, c := range n.Children {
			if optimisticTruth(c, facts, reg, store) {
				return true
			}
		}
		return false
	case *ast.BinaryOpNode:
		switch n.Op {
		case ast.OpAnd:
			return optimisticTruth(n.Left, facts, reg, store) && optimisticTruth(n.Right, facts, reg, store)
		case ast.OpOr:
			return optimisticTruth(n.Left, facts, reg, store) || optimisticTruth(n.Right, facts, reg, store)
		case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
			if hasMissingRef(n, facts) {
				return true
			}
		}
	}

	if hasMissingRef(node, facts) {
		return true
	}
	v, err := evalAgainstFacts(node, facts, reg, store)
	if err != nil {
		return true
	}
	return v.Truthy()
}

func hasMissingRef(node ast.Node, facts *core.Facts) bool {
	refs, _ := ast.CollectRefs(node)
	for _, name := range refs {
		if _, ok := facts.Get(name); !ok {
			return true
		}
	}
	return false
}

func evalAgainstFacts(node ast.Node, facts *core.Facts, reg *registry.Registry, store *temporal.Store) (core.Value, error) {
	lookup := func(name string) (core.Value, bool) { return facts.Get(name) }
	now := func() float64 { return float64(time.Now().UnixNano()) / float64(time.Second) }
	cc := registry.NewCallContext(context.Background(), now, store, nil)
	return eval.New(lookup, reg, cc).Eval(node)
}
