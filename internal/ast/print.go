package ast

import (
	"strconv"
	"strings"

	"github.com/symbolica-rules/symbolica/internal/core"
)

// Render produces a normalized flat-expression rendering of node, used
// both for the reasoning string (spec §6: "<id>: <normalized condition
// text>, ...") and for the round-trip testable property of §8 (parsing
// a normalized expression and re-printing it yields the same AST after
// re-parse). Structured all/any/not forms render as their flat-syntax
// equivalent (and/or/not) since that is the form a re-parse accepts.
func Render(node Node) string {
	var b strings.Builder
	renderNode(&b, node)
	return b.String()
}

func renderNode(b *strings.Builder, n Node) {
	switch t := n.(type) {
	case *Literal:
		renderLiteral(b, t)
	case *Ref:
		b.WriteString(t.Name)
	case *BinaryOpNode:
		b.WriteByte('(')
		renderNode(b, t.Left)
		b.WriteByte(' ')
		b.WriteString(string(t.Op))
		b.WriteByte(' ')
		renderNode(b, t.Right)
		b.WriteByte(')')
	case *UnaryOpNode:
		if t.Op == OpNegate {
			b.WriteByte('-')
			renderNode(b, t.Inner)
		} else {
			b.WriteString("not ")
			renderNode(b, t.Inner)
		}
	case *Call:
		if t.Name == "__list" {
			b.WriteByte('[')
			for i, a := range t.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				renderNode(b, a)
			}
			b.WriteByte(']')
			return
		}
		b.WriteString(t.Name)
		b.WriteByte('(')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			renderNode(b, a)
		}
		b.WriteByte(')')
	case *Index:
		renderNode(b, t.Container)
		b.WriteByte('[')
		renderNode(b, t.Key)
		b.WriteByte(']')
	case *MemberOf:
		renderNode(b, t.Value)
		b.WriteString(" in ")
		renderNode(b, t.List)
	case *Conditional:
		renderNode(b, t.Cond)
		b.WriteString(" ? ")
		renderNode(b, t.Then)
		b.WriteString(" : ")
		renderNode(b, t.Else)
	case *All:
		renderJoined(b, t.Children, " and ")
	case *Any:
		renderJoined(b, t.Children, " or ")
	case *Not:
		b.WriteString("not (")
		renderNode(b, t.Inner)
		b.WriteByte(')')
	}
}

func renderJoined(b *strings.Builder, children []Node, sep string) {
	b.WriteByte('(')
	for i, c := range children {
		if i > 0 {
			b.WriteString(sep)
		}
		renderNode(b, c)
	}
	b.WriteByte(')')
}

func renderLiteral(b *strings.Builder, lit *Literal) {
	v := lit.Value
	switch v.Kind() {
	case core.KindString:
		s, _ := v.AsString()
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(s, "'", "\\'"))
		b.WriteByte('\'')
	case core.KindNull:
		b.WriteString("null")
	case core.KindBool:
		bo, _ := v.AsBool()
		b.WriteString(strconv.FormatBool(bo))
	default:
		b.WriteString(v.String())
	}
}
