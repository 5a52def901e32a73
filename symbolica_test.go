package symbolica_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sym "github.com/symbolica-rules/symbolica"
)

func mustExpr(t *testing.T, src string) sym.Node {
	t.Helper()
	node, err := sym.ParseExpr(src)
	require.NoError(t, err)
	return node
}

func act(t *testing.T, field, src string) sym.ActionTemplate {
	t.Helper()
	return sym.ActionTemplate{Field: field, Template: mustExpr(t, src)}
}

func asBool(t *testing.T, v sym.Value) bool {
	t.Helper()
	b, ok := v.AsBool()
	require.True(t, ok, "value %v is not a bool", v)
	return b
}

func asInt(t *testing.T, v sym.Value) int64 {
	t.Helper()
	i, ok := v.AsInt()
	require.True(t, ok, "value %v is not an int", v)
	return i
}

// Scenario 1: VIP approval.
func TestSeed_VIPApproval(t *testing.T) {
	def := sym.RuleDef{
		ID:        "vip_approval",
		Priority:  100,
		Condition: mustExpr(t, "customer_tier == 'vip' and credit_score > 750"),
		Actions: []sym.ActionTemplate{
			act(t, "approved", "true"),
			act(t, "credit_limit", "50000"),
		},
	}
	rs, err := sym.Compile([]sym.RuleDef{def})
	require.NoError(t, err)

	engine := sym.NewEngine(rs, nil)
	facts := sym.NewFacts(map[string]sym.Value{
		"customer_tier":    sym.String("vip"),
		"credit_score":     sym.Int(800),
		"annual_income":    sym.Int(120000),
		"previous_defaults": sym.Int(0),
	})

	result, err := engine.Reason(context.Background(), facts, sym.CallOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"vip_approval"}, result.FiredRuleIDs)
	assert.True(t, asBool(t, result.Verdict["approved"]))
	assert.Equal(t, int64(50000), asInt(t, result.Verdict["credit_limit"]))
}

// Scenario 2: priority tie-break with conflicting writes. Higher
// priority fires last within its layer, so its write dominates.
func TestSeed_PriorityTieBreak(t *testing.T) {
	condA := mustExpr(t, "true")
	high := sym.RuleDef{
		ID:        "set_high",
		Priority:  100,
		Condition: condA,
		Actions:   []sym.ActionTemplate{act(t, "credit_limit", "50000")},
	}
	low := sym.RuleDef{
		ID:        "set_low",
		Priority:  50,
		Condition: mustExpr(t, "true"),
		Actions:   []sym.ActionTemplate{act(t, "credit_limit", "25000")},
	}
	rs, err := sym.Compile([]sym.RuleDef{low, high})
	require.NoError(t, err)

	engine := sym.NewEngine(rs, nil)
	result, err := engine.Reason(context.Background(), sym.NewFacts(nil), sym.CallOptions{})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"set_low", "set_high"}, result.FiredRuleIDs)
	assert.Equal(t, int64(50000), asInt(t, result.Verdict["credit_limit"]))
}

// Scenario 3: trigger chain.
func TestSeed_TriggerChain(t *testing.T) {
	ruleA := sym.RuleDef{
		ID:        "A",
		Priority:  100,
		Condition: mustExpr(t, "x > 0"),
		Actions:   []sym.ActionTemplate{act(t, "y", "1")},
		Triggers:  []string{"B"},
	}
	ruleB := sym.RuleDef{
		ID:        "B",
		Priority:  100,
		Condition: mustExpr(t, "y == 1"),
		Actions:   []sym.ActionTemplate{act(t, "z", "2")},
	}
	rs, err := sym.Compile([]sym.RuleDef{ruleA, ruleB})
	require.NoError(t, err)

	engine := sym.NewEngine(rs, nil)
	facts := sym.NewFacts(map[string]sym.Value{"x": sym.Int(3)})
	result, err := engine.Reason(context.Background(), facts, sym.CallOptions{})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"A", "B"}, result.FiredRuleIDs)
	assert.Equal(t, int64(1), asInt(t, result.Verdict["y"]))
	assert.Equal(t, int64(2), asInt(t, result.Verdict["z"]))
	assert.Contains(t, result.Reasoning, "triggered by A")
}

// Scenario 4: graceful missing field.
func TestSeed_GracefulMissingField(t *testing.T) {
	def := sym.RuleDef{
		ID:        "income_check",
		Priority:  100,
		Condition: mustExpr(t, "annual_income > 50000"),
		Actions:   []sym.ActionTemplate{act(t, "qualifies", "true")},
	}
	rs, err := sym.Compile([]sym.RuleDef{def})
	require.NoError(t, err)

	engine := sym.NewEngine(rs, nil)
	result, err := engine.Reason(context.Background(), sym.NewFacts(nil), sym.CallOptions{TraceLevel: sym.TraceBasic})
	require.NoError(t, err)

	assert.Empty(t, result.FiredRuleIDs)
	require.Len(t, result.Traces, 1)
	assert.False(t, result.Traces[0].Fired)
	assert.Contains(t, result.Traces[0].FailureKind, "annual_income")
}

// Scenario 5: sustained temporal alarm.
func TestSeed_SustainedTemporalAlarm(t *testing.T) {
	def := sym.RuleDef{
		ID:        "cpu_alarm",
		Priority:  100,
		Condition: mustExpr(t, "sustained_above('cpu', 90, 600)"),
		Actions:   []sym.ActionTemplate{act(t, "alarm", "true")},
	}
	rs, err := sym.Compile([]sym.RuleDef{def})
	require.NoError(t, err)

	engine := sym.NewEngine(rs, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		engine.Record("cpu", 95, base.Add(time.Duration(i)*30*time.Second))
	}
	now := base.Add(19 * 30 * time.Second)
	engine.SetClock(func() time.Time { return now })

	result, err := engine.Reason(context.Background(), sym.NewFacts(nil), sym.CallOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"cpu_alarm"}, result.FiredRuleIDs)
	assert.True(t, asBool(t, result.Verdict["alarm"]))
}

// Scenario 6: backward chaining against scenario 1's rule set.
func TestSeed_BackwardChaining(t *testing.T) {
	def := sym.RuleDef{
		ID:        "vip_approval",
		Priority:  100,
		Condition: mustExpr(t, "customer_tier == 'vip' and credit_score > 750"),
		Actions: []sym.ActionTemplate{
			act(t, "approved", "true"),
			act(t, "credit_limit", "50000"),
		},
	}
	rs, err := sym.Compile([]sym.RuleDef{def})
	require.NoError(t, err)

	engine := sym.NewEngine(rs, nil)
	goal := sym.NewGoal(map[string]sym.Value{"approved": sym.Bool(true)})

	rules := engine.RulesForGoal(goal)
	require.Len(t, rules, 1)
	assert.Equal(t, "vip_approval", rules[0].ID)

	supportingFacts := sym.NewFacts(map[string]sym.Value{
		"customer_tier": sym.String("vip"),
		"credit_score":  sym.Int(800),
	})
	assert.True(t, engine.CanAchieve(goal, supportingFacts))

	unsupportingFacts := sym.NewFacts(map[string]sym.Value{
		"customer_tier": sym.String("vip"),
		"credit_score":  sym.Int(100),
	})
	assert.False(t, engine.CanAchieve(goal, unsupportingFacts))
}

// Round-trip and boundary behaviors from spec §8.
func TestEmptyRuleSetLeavesVerdictEmptyAndFactsIntact(t *testing.T) {
	rs, err := sym.Compile(nil)
	require.NoError(t, err)

	engine := sym.NewEngine(rs, nil)
	facts := sym.NewFacts(map[string]sym.Value{"a": sym.Int(1)})
	result, err := engine.Reason(context.Background(), facts, sym.CallOptions{})
	require.NoError(t, err)

	assert.Empty(t, result.FiredRuleIDs)
	assert.Empty(t, result.Verdict)

	merged := sym.ApplyVerdict(facts, result)
	assert.Equal(t, int64(1), asInt(t, merged.Snapshot()["a"]))
}

func TestAlwaysTrueRuleFiresExactlyOnce(t *testing.T) {
	def := sym.RuleDef{
		ID:        "always",
		Priority:  100,
		Condition: mustExpr(t, "true"),
		Actions:   []sym.ActionTemplate{act(t, "ran", "true")},
	}
	rs, err := sym.Compile([]sym.RuleDef{def})
	require.NoError(t, err)

	engine := sym.NewEngine(rs, nil)
	result, err := engine.Reason(context.Background(), sym.NewFacts(nil), sym.CallOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"always"}, result.FiredRuleIDs)
}
