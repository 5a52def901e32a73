package eval

import (
	"fmt"
	"math"

	"github.com/symbolica-rules/symbolica/internal/ast"
	"github.com/symbolica-rules/symbolica/internal/core"
)

// applyBinaryOp implements the non-short-circuiting binary operators:
// arithmetic, comparison. Equality is defined for any pair of Values
// via core.Value.Equal; ordering comparisons require two numeric or two
// string operands; arithmetic requires both operands to be numeric
// (+ also concatenates two strings), per spec §4.1/§4.2.
func applyBinaryOp(op ast.BinaryOp, left, right core.Value) (core.Value, error) {
	switch op {
	case ast.OpEq:
		return core.Bool(left.Equal(right)), nil
	case ast.OpNeq:
		return core.Bool(!left.Equal(right)), nil
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return compare(op, left, right)
	case ast.OpAdd:
		return add(left, right)
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return arithmetic(op, left, right)
	default:
		return core.Null, &core.TypeError{Op: string(op), Detail: "unknown binary operator"}
	}
}

func compare(op ast.BinaryOp, left, right core.Value) (core.Value, error) {
	if left.IsNumeric() && right.IsNumeric() {
		lf, _ := left.AsFloat()
		rf, _ := right.AsFloat()
		return core.Bool(numericCompare(op, lf, rf)), nil
	}
	ls, lok := left.AsString()
	rs, rok := right.AsString()
	if lok && rok {
		return core.Bool(stringCompare(op, ls, rs)), nil
	}
	return core.Null, &core.TypeError{Op: string(op), Detail: fmt.Sprintf("cannot compare %s and %s", left.Kind(), right.Kind())}
}

func numericCompare(op ast.BinaryOp, l, r float64) bool {
	switch op {
	case ast.OpLt:
		return l < r
	case ast.OpLte:
		return l <= r
	case ast.OpGt:
		return l > r
	case ast.OpGte:
		return l >= r
	}
	return false
}

func stringCompare(op ast.BinaryOp, l, r string) bool {
	switch op {
	case ast.OpLt:
		return l < r
	case ast.OpLte:
		return l <= r
	case ast.OpGt:
		return l > r
	case ast.OpGte:
		return l >= r
	}
	return false
}

func add(left, right core.Value) (core.Value, error) {
	if left.Kind() == core.KindString && right.Kind() == core.KindString {
		ls, _ := left.AsString()
		rs, _ := right.AsString()
		return core.String(ls + rs), nil
	}
	if !left.IsNumeric() || !right.IsNumeric() {
		return core.Null, &core.TypeError{Op: "+", Detail: fmt.Sprintf("cannot add %s and %s", left.Kind(), right.Kind())}
	}
	if left.Kind() == core.KindInt && right.Kind() == core.KindInt {
		li, _ := left.AsInt()
		ri, _ := right.AsInt()
		return core.Int(li + ri), nil
	}
	lf, _ := left.AsFloat()
	rf, _ := right.AsFloat()
	return core.Float(lf + rf), nil
}

func arithmetic(op ast.BinaryOp, left, right core.Value) (core.Value, error) {
	if !left.IsNumeric() || !right.IsNumeric() {
		return core.Null, &core.TypeError{Op: string(op), Detail: fmt.Sprintf("%s requires numeric operands, got %s and %s", op, left.Kind(), right.Kind())}
	}
	bothInt := left.Kind() == core.KindInt && right.Kind() == core.KindInt
	if bothInt {
		li, _ := left.AsInt()
		ri, _ := right.AsInt()
		switch op {
		case ast.OpSub:
			return core.Int(li - ri), nil
		case ast.OpMul:
			return core.Int(li * ri), nil
		case ast.OpDiv:
			if ri == 0 {
				return core.Null, &core.DivisionByZero{}
			}
			if li%ri == 0 {
				return core.Int(li / ri), nil
			}
			return core.Float(float64(li) / float64(ri)), nil
		case ast.OpMod:
			if ri == 0 {
				return core.Null, &core.DivisionByZero{}
			}
			return core.Int(li % ri), nil
		}
	}
	lf, _ := left.AsFloat()
	rf, _ := right.AsFloat()
	switch op {
	case ast.OpSub:
		return core.Float(lf - rf), nil
	case ast.OpMul:
		return core.Float(lf * rf), nil
	case ast.OpDiv:
		if rf == 0 {
			return core.Null, &core.DivisionByZero{}
		}
		return core.Float(lf / rf), nil
	case ast.OpMod:
		if rf == 0 {
			return core.Null, &core.DivisionByZero{}
		}
		return core.Float(mod(lf, rf)), nil
	}
	return core.Null, &core.TypeError{Op: string(op), Detail: "unreachable"}
}

func mod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m < 0 {
		m += math.Abs(b)
	}
	return m
}
