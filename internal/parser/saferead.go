package parser

import "github.com/symbolica-rules/symbolica/internal/ast"

// applySafeReadRewrite implements spec §4.2's `x or 0` idiom: a bare
// Ref that is the left operand of an `or` whose right operand is a
// literal is marked SafeDefault so the evaluator treats a missing read
// as Null instead of UndefinedField. The rewrite walks the whole tree,
// not just the top level, because the idiom can appear nested inside
// any subexpression.
func applySafeReadRewrite(node ast.Node) ast.Node {
	switch n := node.(type) {
	case *ast.BinaryOpNode:
		n.Left = applySafeReadRewrite(n.Left)
		n.Right = applySafeReadRewrite(n.Right)
		if n.Op == ast.OpOr {
			if ref, ok := n.Left.(*ast.Ref); ok {
				if _, isLiteral := n.Right.(*ast.Literal); isLiteral {
					ref.SafeDefault = true
				}
			}
		}
		return n
	case *ast.UnaryOpNode:
		n.Inner = applySafeReadRewrite(n.Inner)
		return n
	case *ast.Call:
		for i, a := range n.Args {
			n.Args[i] = applySafeReadRewrite(a)
		}
		return n
	case *ast.Index:
		n.Container = applySafeReadRewrite(n.Container)
		n.Key = applySafeReadRewrite(n.Key)
		return n
	case *ast.MemberOf:
		n.Value = applySafeReadRewrite(n.Value)
		n.List = applySafeReadRewrite(n.List)
		return n
	case *ast.Conditional:
		n.Cond = applySafeReadRewrite(n.Cond)
		n.Then = applySafeReadRewrite(n.Then)
		n.Else = applySafeReadRewrite(n.Else)
		return n
	case *ast.All:
		for i, c := range n.Children {
			n.Children[i] = applySafeReadRewrite(c)
		}
		return n
	case *ast.Any:
		for i, c := range n.Children {
			n.Children[i] = applySafeReadRewrite(c)
		}
		return n
	case *ast.Not:
		n.Inner = applySafeReadRewrite(n.Inner)
		return n
	default:
		return node
	}
}
