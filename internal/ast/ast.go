// Package ast defines the expression abstract syntax tree Symbolica
// evaluates: the node variants of spec §4.1. Nodes are immutable once
// built by the parser; no node ever executes anything at parse time.
package ast

import "github.com/symbolica-rules/symbolica/internal/core"

// BinaryOp enumerates the binary operators spec §4.1 allows.
type BinaryOp string

const (
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
	OpMod BinaryOp = "%"
	OpEq  BinaryOp = "=="
	OpNeq BinaryOp = "!="
	OpLt  BinaryOp = "<"
	OpLte BinaryOp = "<="
	OpGt  BinaryOp = ">"
	OpGte BinaryOp = ">="
	OpAnd BinaryOp = "and"
	OpOr  BinaryOp = "or"
)

// UnaryOp enumerates the unary operators spec §4.1 allows.
type UnaryOp string

const (
	OpNot   UnaryOp = "not"
	OpNegate UnaryOp = "-"
)

// Node is implemented by every AST variant. Accept allows a Visitor to
// walk the tree without a type switch over every variant (the
// evaluator uses it; CollectRefs, Render, and the parser's safe-read
// rewrite use type switches instead).
type Node interface {
	Accept(v Visitor) error
}

// Visitor is implemented by callers that want to walk an AST by double
// dispatch: the evaluator in internal/eval.
type Visitor interface {
	VisitLiteral(*Literal) error
	VisitRef(*Ref) error
	VisitBinaryOp(*BinaryOpNode) error
	VisitUnaryOp(*UnaryOpNode) error
	VisitCall(*Call) error
	VisitIndex(*Index) error
	VisitMemberOf(*MemberOf) error
	VisitConditional(*Conditional) error
	VisitAll(*All) error
	VisitAny(*Any) error
	VisitNot(*Not) error
}

// Literal is a constant value baked into the AST at parse time.
type Literal struct {
	Value core.Value
}

func (n *Literal) Accept(v Visitor) error { return v.VisitLiteral(n) }

// Ref reads a named field from the environment. SafeDefault, when
// true, marks this Ref as the left operand of the `x or <literal>`
// idiom: a missing read should yield Null instead of UndefinedField
// (spec §4.2).
type Ref struct {
	Name       string
	SafeDefault bool
}

func (n *Ref) Accept(v Visitor) error { return v.VisitRef(n) }

// BinaryOpNode applies a BinaryOp to two subexpressions.
type BinaryOpNode struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

func (n *BinaryOpNode) Accept(v Visitor) error { return v.VisitBinaryOp(n) }

// UnaryOpNode applies a UnaryOp to one subexpression.
type UnaryOpNode struct {
	Op    UnaryOp
	Inner Node
}

func (n *UnaryOpNode) Accept(v Visitor) error { return v.VisitUnaryOp(n) }

// Call invokes a registered function by name with evaluated arguments.
type Call struct {
	Name string
	Args []Node
}

func (n *Call) Accept(v Visitor) error { return v.VisitCall(n) }

// Index supports both list indexing and map-key access:
// container[key].
type Index struct {
	Container Node
	Key       Node
}

func (n *Index) Accept(v Visitor) error { return v.VisitIndex(n) }

// MemberOf implements the `in` operator: Value in List.
type MemberOf struct {
	Value Node
	List  Node
}

func (n *MemberOf) Accept(v Visitor) error { return v.VisitMemberOf(n) }

// Conditional is the ternary `cond ? then : else` form.
type Conditional struct {
	Cond Node
	Then Node
	Else Node
}

func (n *Conditional) Accept(v Visitor) error { return v.VisitConditional(n) }

// All is the structured combinator: true iff every child is truthy,
// short-circuiting on the first falsy child.
type All struct {
	Children []Node
}

func (n *All) Accept(v Visitor) error { return v.VisitAll(n) }

// Any is the structured combinator: true iff some child is truthy,
// short-circuiting on the first truthy child.
type Any struct {
	Children []Node
}

func (n *Any) Accept(v Visitor) error { return v.VisitAny(n) }

// Not inverts a single child's truthiness.
type Not struct {
	Inner Node
}

func (n *Not) Accept(v Visitor) error { return v.VisitNot(n) }
