package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbolica-rules/symbolica/internal/ast"
)

func TestParseExpr_Precedence(t *testing.T) {
	node, err := ParseExpr("a or b and c")
	require.NoError(t, err)
	or, ok := node.(*ast.BinaryOpNode)
	require.True(t, ok)
	assert.Equal(t, ast.OpOr, or.Op)
	_, leftIsRef := or.Left.(*ast.Ref)
	assert.True(t, leftIsRef)
	and, ok := or.Right.(*ast.BinaryOpNode)
	require.True(t, ok)
	assert.Equal(t, ast.OpAnd, and.Op)
}

func TestParseExpr_ComparisonBindsTighterThanAnd(t *testing.T) {
	node, err := ParseExpr("x > 1 and y < 2")
	require.NoError(t, err)
	and, ok := node.(*ast.BinaryOpNode)
	require.True(t, ok)
	assert.Equal(t, ast.OpAnd, and.Op)
	left, ok := and.Left.(*ast.BinaryOpNode)
	require.True(t, ok)
	assert.Equal(t, ast.OpGt, left.Op)
}

func TestParseExpr_SafeReadIdiom(t *testing.T) {
	node, err := ParseExpr("x or 0")
	require.NoError(t, err)
	or := node.(*ast.BinaryOpNode)
	ref := or.Left.(*ast.Ref)
	assert.True(t, ref.SafeDefault)
}

func TestParseExpr_SafeReadDoesNotApplyToNonLiteralDefault(t *testing.T) {
	node, err := ParseExpr("x or y")
	require.NoError(t, err)
	or := node.(*ast.BinaryOpNode)
	ref := or.Left.(*ast.Ref)
	assert.False(t, ref.SafeDefault)
}

func TestParseExpr_FunctionCall(t *testing.T) {
	node, err := ParseExpr("recent_avg('cpu', 60) > 90")
	require.NoError(t, err)
	gt := node.(*ast.BinaryOpNode)
	call := gt.Left.(*ast.Call)
	assert.Equal(t, "recent_avg", call.Name)
	require.Len(t, call.Args, 2)
}

func TestParseExpr_MemberOf(t *testing.T) {
	node, err := ParseExpr("status in ['a', 'b']")
	require.NoError(t, err)
	m := node.(*ast.MemberOf)
	listCall := m.List.(*ast.Call)
	assert.Equal(t, "__list", listCall.Name)
	require.Len(t, listCall.Args, 2)
}

func TestParseExpr_Ternary(t *testing.T) {
	node, err := ParseExpr("x > 0 ? 1 : 2")
	require.NoError(t, err)
	cond := node.(*ast.Conditional)
	_, ok := cond.Cond.(*ast.BinaryOpNode)
	assert.True(t, ok)
}

func TestParseExpr_IndexAccess(t *testing.T) {
	node, err := ParseExpr("items[0] == 'x'")
	require.NoError(t, err)
	eq := node.(*ast.BinaryOpNode)
	idx := eq.Left.(*ast.Index)
	_, ok := idx.Container.(*ast.Ref)
	assert.True(t, ok)
}

func TestParseExpr_StringLiteralsAndEscapes(t *testing.T) {
	node, err := ParseExpr(`name == "O\"Brien"`)
	require.NoError(t, err)
	eq := node.(*ast.BinaryOpNode)
	lit := eq.Right.(*ast.Literal)
	s, ok := lit.Value.AsString()
	require.True(t, ok)
	assert.Equal(t, `O"Brien`, s)
}

func TestParseExpr_Malformed(t *testing.T) {
	_, err := ParseExpr("x >")
	assert.Error(t, err)
}

func TestParseExpr_UnparsedTrailingInput(t *testing.T) {
	_, err := ParseExpr("x > 1 2")
	assert.Error(t, err)
}

func TestParseStructured_All(t *testing.T) {
	structured := map[string]any{
		"all": []any{"x > 0", "y < 10"},
	}
	node, err := ParseStructured(structured)
	require.NoError(t, err)
	all := node.(*ast.All)
	assert.Len(t, all.Children, 2)
}

func TestParseStructured_Nested(t *testing.T) {
	structured := map[string]any{
		"all": []any{
			"x > 0",
			map[string]any{
				"any": []any{"y == 1", "y == 2"},
			},
		},
	}
	node, err := ParseStructured(structured)
	require.NoError(t, err)
	all := node.(*ast.All)
	require.Len(t, all.Children, 2)
	_, ok := all.Children[1].(*ast.Any)
	assert.True(t, ok)
}

func TestParseStructured_Not(t *testing.T) {
	structured := map[string]any{"not": "x == 1"}
	node, err := ParseStructured(structured)
	require.NoError(t, err)
	_, ok := node.(*ast.Not)
	assert.True(t, ok)
}

func TestParseStructured_UnknownKey(t *testing.T) {
	_, err := ParseStructured(map[string]any{"xor": []any{"x"}})
	assert.Error(t, err)
}

func TestParseActionValue_Template(t *testing.T) {
	node, err := ParseActionValue("{{ credit_score * 2 }}")
	require.NoError(t, err)
	_, ok := node.(*ast.BinaryOpNode)
	assert.True(t, ok)
}

func TestParseActionValue_LiteralString(t *testing.T) {
	node, err := ParseActionValue("approved")
	require.NoError(t, err)
	lit := node.(*ast.Literal)
	s, _ := lit.Value.AsString()
	assert.Equal(t, "approved", s)
}

func TestParseActionValue_LiteralNumber(t *testing.T) {
	node, err := ParseActionValue(float64(50000))
	require.NoError(t, err)
	lit := node.(*ast.Literal)
	i, ok := lit.Value.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(50000), i)
}
