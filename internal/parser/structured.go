package parser

import (
	"fmt"

	"github.com/symbolica-rules/symbolica/internal/ast"
	"github.com/symbolica-rules/symbolica/internal/core"
)

// ParseStructured parses a nested structured condition: a map with a
// single key "all", "any", or "not" whose value is either a list of
// sub-conditions, or (for "not") a single sub-condition. Each leaf is
// either another structured map or a flat expression string, parsed
// recursively, per spec §4.1.
func ParseStructured(node any) (ast.Node, error) {
	switch v := node.(type) {
	case string:
		return ParseExpr(v)
	case map[string]any:
		return parseStructuredMap(v)
	default:
		return nil, &core.ParseError{Position: -1, Expected: "structured condition or expression string", Detail: fmt.Sprintf("unexpected node of type %T", node)}
	}
}

func parseStructuredMap(m map[string]any) (ast.Node, error) {
	if len(m) != 1 {
		return nil, &core.ParseError{Position: -1, Expected: "single-key map with 'all', 'any', or 'not'", Detail: fmt.Sprintf("map has %d keys", len(m))}
	}
	for key, val := range m {
		switch key {
		case "all":
			children, err := parseConditionList(val)
			if err != nil {
				return nil, err
			}
			return &ast.All{Children: children}, nil
		case "any":
			children, err := parseConditionList(val)
			if err != nil {
				return nil, err
			}
			return &ast.Any{Children: children}, nil
		case "not":
			if list, ok := val.([]any); ok {
				// "not" conventionally takes a single sub-condition, but
				// a singleton list is accepted for symmetry with all/any.
				if len(list) != 1 {
					return nil, &core.ParseError{Position: -1, Expected: "single sub-condition for 'not'", Detail: fmt.Sprintf("got %d", len(list))}
				}
				inner, err := ParseStructured(list[0])
				if err != nil {
					return nil, err
				}
				return &ast.Not{Inner: inner}, nil
			}
			inner, err := ParseStructured(val)
			if err != nil {
				return nil, err
			}
			return &ast.Not{Inner: inner}, nil
		default:
			return nil, &core.ParseError{Position: -1, Expected: "'all', 'any', or 'not'", Detail: "unknown structured key '" + key + "'"}
		}
	}
	panic("unreachable")
}

func parseConditionList(val any) ([]ast.Node, error) {
	list, ok := val.([]any)
	if !ok {
		return nil, &core.ParseError{Position: -1, Expected: "list of sub-conditions", Detail: fmt.Sprintf("got %T", val)}
	}
	out := make([]ast.Node, 0, len(list))
	for _, item := range list {
		n, err := ParseStructured(item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
