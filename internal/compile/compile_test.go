package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbolica-rules/symbolica/internal/ast"
	"github.com/symbolica-rules/symbolica/internal/core"
	"github.com/symbolica-rules/symbolica/internal/parser"
)

func mustParse(t *testing.T, src string) ast.Node {
	node, err := parser.ParseExpr(src)
	require.NoError(t, err)
	return node
}

func literalAction(field string, v core.Value) ActionTemplate {
	return ActionTemplate{Field: field, Template: &ast.Literal{Value: v}}
}

func TestCompile_SimpleRuleSet(t *testing.T) {
	defs := []RuleDef{
		{
			ID:            "vip_approval",
			Priority:      100,
			Condition:     mustParse(t, "customer_tier == 'vip' and credit_score > 750"),
			ConditionText: "customer_tier == 'vip' and credit_score > 750",
			Actions: []ActionTemplate{
				literalAction("approved", core.Bool(true)),
				literalAction("credit_limit", core.Int(50000)),
			},
		},
	}
	rs, err := Compile(defs)
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
	r, ok := rs.ByID("vip_approval")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"customer_tier", "credit_score"}, r.ReadSet)
	assert.ElementsMatch(t, []string{"approved", "credit_limit"}, r.WriteSet)
}

func TestCompile_DuplicateIDFails(t *testing.T) {
	defs := []RuleDef{
		{ID: "a", Condition: mustParse(t, "1 == 1")},
		{ID: "a", Condition: mustParse(t, "2 == 2")},
	}
	_, err := Compile(defs)
	var pe *core.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestCompile_UnresolvedTriggerFails(t *testing.T) {
	defs := []RuleDef{
		{ID: "a", Condition: mustParse(t, "1 == 1"), Triggers: []string{"missing"}},
	}
	_, err := Compile(defs)
	var pe *core.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestCompile_CyclicDependencyFails(t *testing.T) {
	defs := []RuleDef{
		{ID: "a", Condition: mustParse(t, "b > 0"), Actions: []ActionTemplate{literalAction("a_out", core.Int(1))}},
		{ID: "b", Condition: mustParse(t, "a_out > 0"), Actions: []ActionTemplate{literalAction("b", core.Int(1))}},
	}
	_, err := Compile(defs)
	var cd *core.CyclicDependency
	assert.ErrorAs(t, err, &cd)
}

func TestCompile_DependencyOrdersRulesTopologically(t *testing.T) {
	defs := []RuleDef{
		{ID: "B", Condition: mustParse(t, "y == 1"), Actions: []ActionTemplate{literalAction("z", core.Int(2))}},
		{ID: "A", Condition: mustParse(t, "x > 0"), Actions: []ActionTemplate{literalAction("y", core.Int(1))}, Triggers: []string{"B"}},
	}
	rs, err := Compile(defs)
	require.NoError(t, err)
	order := rs.Rules()
	require.Len(t, order, 2)
	assert.Equal(t, "A", order[0].ID)
	assert.Equal(t, "B", order[1].ID)
}

func TestCompile_PriorityTieBreak_HigherFiresLastInLayer(t *testing.T) {
	defs := []RuleDef{
		{ID: "low", Priority: 50, Condition: mustParse(t, "1 == 1"), Actions: []ActionTemplate{literalAction("credit_limit", core.Int(25000))}},
		{ID: "high", Priority: 100, Condition: mustParse(t, "1 == 1"), Actions: []ActionTemplate{literalAction("credit_limit", core.Int(50000))}},
	}
	rs, err := Compile(defs)
	require.NoError(t, err)
	layers := rs.Layers()
	require.Len(t, layers, 1)
	require.Len(t, layers[0], 2)
	assert.Equal(t, "low", layers[0][0].ID)
	assert.Equal(t, "high", layers[0][1].ID)
}

func TestCompile_ForwardReferenceWithinSameRuleStaysInReadSet(t *testing.T) {
	defs := []RuleDef{
		{
			ID:        "r",
			Condition: mustParse(t, "1 == 1"),
			Actions: []ActionTemplate{
				{Field: "first", Template: mustParse(t, "second")},
				literalAction("second", core.Int(1)),
			},
		},
	}
	rs, err := Compile(defs)
	require.NoError(t, err)
	r, _ := rs.ByID("r")
	assert.Contains(t, r.ReadSet, "second")
}

func TestCompile_EarlierActionWriteExcludedFromReadSet(t *testing.T) {
	defs := []RuleDef{
		{
			ID:        "r",
			Condition: mustParse(t, "1 == 1"),
			Actions: []ActionTemplate{
				literalAction("first", core.Int(1)),
				{Field: "second", Template: mustParse(t, "first")},
			},
		},
	}
	rs, err := Compile(defs)
	require.NoError(t, err)
	r, _ := rs.ByID("r")
	assert.NotContains(t, r.ReadSet, "first")
}

func TestCompile_FieldIndexMapsFieldToWriters(t *testing.T) {
	defs := []RuleDef{
		{ID: "a", Condition: mustParse(t, "1 == 1"), Actions: []ActionTemplate{literalAction("x", core.Int(1))}},
		{ID: "b", Condition: mustParse(t, "1 == 1"), Actions: []ActionTemplate{literalAction("x", core.Int(2))}},
	}
	rs, err := Compile(defs)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, rs.FieldIndex("x"))
}

func TestCompile_ChecksumStableAcrossDeclarationOrder(t *testing.T) {
	defsA := []RuleDef{
		{ID: "a", Condition: mustParse(t, "1 == 1"), ConditionText: "1 == 1"},
		{ID: "b", Condition: mustParse(t, "2 == 2"), ConditionText: "2 == 2"},
	}
	defsB := []RuleDef{
		{ID: "b", Condition: mustParse(t, "2 == 2"), ConditionText: "2 == 2"},
		{ID: "a", Condition: mustParse(t, "1 == 1"), ConditionText: "1 == 1"},
	}
	rsA, err := Compile(defsA)
	require.NoError(t, err)
	rsB, err := Compile(defsB)
	require.NoError(t, err)
	assert.Equal(t, rsA.Checksum(), rsB.Checksum())
}
