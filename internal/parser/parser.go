// Package parser turns the two surface forms spec §4.1 allows — flat
// expression strings and structured all/any/not maps — into the
// internal/ast tree the evaluator walks. The parser is total over
// well-formed input and never executes an expression while parsing,
// per spec §4.1's failure-mode contract.
package parser

import (
	"github.com/symbolica-rules/symbolica/internal/ast"
	"github.com/symbolica-rules/symbolica/internal/core"
)

// ParseExpr parses a flat expression string into an AST, applying the
// safe-read rewrite (spec §4.2: `x or 0` idiom) across the whole tree.
func ParseExpr(src string) (ast.Node, error) {
	p := &exprParser{lex: newLexer(src), src: src}
	if err := p.advance(); err != nil {
		return nil, err
	}
	node, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, &core.ParseError{Position: p.cur.pos, Expected: "end of expression", Detail: "unexpected trailing input '" + p.cur.text + "'"}
	}
	return applySafeReadRewrite(node), nil
}

type exprParser struct {
	lex *lexer
	src string
	cur token
}

func (p *exprParser) advance() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *exprParser) expect(k tokenKind, expected string) (token, error) {
	if p.cur.kind != k {
		return token{}, &core.ParseError{Position: p.cur.pos, Expected: expected, Detail: "got '" + p.cur.text + "'"}
	}
	t := p.cur
	if err := p.advance(); err != nil {
		return token{}, err
	}
	return t, nil
}

// parseTernary :=  or ( '?' ternary ':' ternary )?
func (p *exprParser) parseTernary() (ast.Node, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokQuestion {
		return cond, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	thenNode, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokColon, "':' in ternary expression"); err != nil {
		return nil, err
	}
	elseNode, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ast.Conditional{Cond: cond, Then: thenNode, Else: elseNode}, nil
}

// parseOr := and ( 'or' and )*
func (p *exprParser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOpNode{Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

// parseAnd := comparison ( 'and' comparison )*
func (p *exprParser) parseAnd() (ast.Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOpNode{Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

// parseComparison := additive ( (== | != | < | <= | > | >= | in) additive )?
// Comparison and membership are non-associative: at most one operator.
func (p *exprParser) parseComparison() (ast.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	switch p.cur.kind {
	case tokEq, tokNeq, tokLt, tokLte, tokGt, tokGte:
		op := binOpFor(p.cur.kind)
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOpNode{Op: op, Left: left, Right: right}, nil
	case tokIn:
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.MemberOf{Value: left, List: right}, nil
	default:
		return left, nil
	}
}

func binOpFor(k tokenKind) ast.BinaryOp {
	switch k {
	case tokEq:
		return ast.OpEq
	case tokNeq:
		return ast.OpNeq
	case tokLt:
		return ast.OpLt
	case tokLte:
		return ast.OpLte
	case tokGt:
		return ast.OpGt
	case tokGte:
		return ast.OpGte
	}
	return ""
}

// parseAdditive := multiplicative ( (+|-) multiplicative )*
func (p *exprParser) parseAdditive() (ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := ast.OpAdd
		if p.cur.kind == tokMinus {
			op = ast.OpSub
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOpNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseMultiplicative := unary ( (*|/|%) unary )*
func (p *exprParser) parseMultiplicative() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokStar || p.cur.kind == tokSlash || p.cur.kind == tokPercent {
		var op ast.BinaryOp
		switch p.cur.kind {
		case tokStar:
			op = ast.OpMul
		case tokSlash:
			op = ast.OpDiv
		case tokPercent:
			op = ast.OpMod
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOpNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseUnary := ('not' | '-') unary | postfix
func (p *exprParser) parseUnary() (ast.Node, error) {
	switch p.cur.kind {
	case tokNot:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Inner: inner}, nil
	case tokMinus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOpNode{Op: ast.OpNegate, Inner: inner}, nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix := primary ( '[' expr ']' )*
func (p *exprParser) parsePostfix() (ast.Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokLBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		key, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}
		node = &ast.Index{Container: node, Key: key}
	}
	return node, nil
}

// parsePrimary handles literals, identifiers, calls, parens, and list
// literals.
func (p *exprParser) parsePrimary() (ast.Node, error) {
	switch p.cur.kind {
	case tokInt:
		v := core.Int(p.cur.ival)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{Value: v}, nil
	case tokFloat:
		v := core.Float(p.cur.fval)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{Value: v}, nil
	case tokString:
		v := core.String(p.cur.text)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{Value: v}, nil
	case tokTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{Value: core.Bool(true)}, nil
	case tokFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{Value: core.Bool(false)}, nil
	case tokNull:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{Value: core.Null}, nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokLBracket:
		return p.parseListLiteral()
	case tokIdent:
		name := p.cur.text
		pos := p.cur.pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind == tokLParen {
			return p.parseCallArgs(name)
		}
		_ = pos
		return &ast.Ref{Name: name}, nil
	default:
		return nil, &core.ParseError{Position: p.cur.pos, Expected: "expression", Detail: "unexpected token '" + p.cur.text + "'"}
	}
}

func (p *exprParser) parseListLiteral() (ast.Node, error) {
	if _, err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	var items []ast.Node
	for p.cur.kind != tokRBracket {
		item, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.cur.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	// A list literal lowers to the builtin "__list" call so the
	// evaluator has a single dispatch point for building a list Value,
	// rather than a dedicated AST variant for what is semantically just
	// a constructor call.
	return &ast.Call{Name: "__list", Args: items}, nil
}

func (p *exprParser) parseCallArgs(name string) (ast.Node, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	var args []ast.Node
	for p.cur.kind != tokRParen {
		arg, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.Call{Name: name, Args: args}, nil
}
