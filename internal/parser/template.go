package parser

import (
	"strings"

	"github.com/symbolica-rules/symbolica/internal/ast"
	"github.com/symbolica-rules/symbolica/internal/core"
)

// templateOpen and templateClose are the templating markers an action's
// string value must be wrapped in to be parsed as an expression rather
// than taken as a literal string, per spec §4.1.
const (
	templateOpen  = "{{"
	templateClose = "}}"
)

// ParseActionValue parses one action's value per spec §4.1: a bare
// non-string value is a literal of its inferred type; a string wrapped
// in {{ ... }} is parsed as an expression; any other string is a
// literal string.
func ParseActionValue(val any) (ast.Node, error) {
	if s, ok := val.(string); ok {
		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, templateOpen) && strings.HasSuffix(trimmed, templateClose) {
			inner := strings.TrimSpace(trimmed[len(templateOpen) : len(trimmed)-len(templateClose)])
			return ParseExpr(inner)
		}
		return &ast.Literal{Value: core.String(s)}, nil
	}
	v, err := core.FromGo(val)
	if err != nil {
		return nil, err
	}
	return &ast.Literal{Value: v}, nil
}
