package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbolica-rules/symbolica/internal/ast"
	"github.com/symbolica-rules/symbolica/internal/compile"
	"github.com/symbolica-rules/symbolica/internal/config"
	"github.com/symbolica-rules/symbolica/internal/core"
	"github.com/symbolica-rules/symbolica/internal/executor"
	"github.com/symbolica-rules/symbolica/internal/parser"
)

func mustParseExpr(t *testing.T, src string) compile.ActionTemplate {
	t.Helper()
	node, err := parser.ParseExpr(src)
	require.NoError(t, err)
	return compile.ActionTemplate{Template: node}
}

func mustParseCond(t *testing.T, src string) ast.Node {
	t.Helper()
	node, err := parser.ParseExpr(src)
	require.NoError(t, err)
	return node
}

func action(t *testing.T, field, src string) compile.ActionTemplate {
	a := mustParseExpr(t, src)
	a.Field = field
	return a
}

func newExecutor() *executor.Executor {
	return executor.New(nil, nil, config.Default())
}

func TestReason_SimpleConditionFiresAndWrites(t *testing.T) {
	rule := compile.RuleDef{
		ID:        "vip-approval",
		Priority:  100,
		Condition: mustParseCond(t, "customer_tier == 'vip' and credit_score > 700"),
		Actions: []compile.ActionTemplate{
			action(t, "approved", "true"),
			action(t, "credit_limit", "50000"),
		},
	}
	rs, err := compile.Compile([]compile.RuleDef{rule})
	require.NoError(t, err)

	facts := core.NewFacts(map[string]core.Value{
		"customer_tier": core.String("vip"),
		"credit_score":  core.Int(780),
	})

	ex := newExecutor()
	result, err := ex.Reason(context.Background(), rs, facts, executor.CallOptions{})
	require.NoError(t, err)
	require.Contains(t, result.FiredRuleIDs, "vip-approval")
	approved, ok := result.Verdict["approved"]
	require.True(t, ok)
	assert.True(t, approved.Truthy())
	limit, ok := result.Verdict["credit_limit"]
	require.True(t, ok)
	i, _ := limit.AsInt()
	assert.Equal(t, int64(50000), i)
}

func TestReason_PriorityTieBreak_HigherFiresLastWins(t *testing.T) {
	low := compile.RuleDef{
		ID:        "low-priority",
		Priority:  10,
		Condition: mustParseCond(t, "x > 0"),
		Actions:   []compile.ActionTemplate{action(t, "status", "'low'")},
	}
	high := compile.RuleDef{
		ID:        "high-priority",
		Priority:  90,
		Condition: mustParseCond(t, "x > 0"),
		Actions:   []compile.ActionTemplate{action(t, "status", "'high'")},
	}
	rs, err := compile.Compile([]compile.RuleDef{low, high})
	require.NoError(t, err)

	facts := core.NewFacts(map[string]core.Value{"x": core.Int(1)})
	ex := newExecutor()
	result, err := ex.Reason(context.Background(), rs, facts, executor.CallOptions{})
	require.NoError(t, err)

	status, ok := result.Verdict["status"]
	require.True(t, ok)
	s, _ := status.AsString()
	assert.Equal(t, "high", s)
}

func TestReason_TriggerChainFiresDownstreamRule(t *testing.T) {
	first := compile.RuleDef{
		ID:        "first",
		Condition: mustParseCond(t, "x > 0"),
		Actions:   []compile.ActionTemplate{action(t, "y", "1")},
		Triggers:  []string{"second"},
	}
	second := compile.RuleDef{
		ID:        "second",
		Condition: mustParseCond(t, "y == 1"),
		Actions:   []compile.ActionTemplate{action(t, "z", "2")},
	}
	rs, err := compile.Compile([]compile.RuleDef{first, second})
	require.NoError(t, err)

	facts := core.NewFacts(map[string]core.Value{"x": core.Int(1)})
	ex := newExecutor()
	result, err := ex.Reason(context.Background(), rs, facts, executor.CallOptions{})
	require.NoError(t, err)

	assert.Contains(t, result.FiredRuleIDs, "second")
	z, ok := result.Verdict["z"]
	require.True(t, ok)
	i, _ := z.AsInt()
	assert.Equal(t, int64(2), i)
}

func TestReason_MissingFieldDemotesGracefully(t *testing.T) {
	rule := compile.RuleDef{
		ID:        "needs-income",
		Condition: mustParseCond(t, "annual_income > 50000"),
		Actions:   []compile.ActionTemplate{action(t, "flag", "true")},
	}
	rs, err := compile.Compile([]compile.RuleDef{rule})
	require.NoError(t, err)

	facts := core.NewFacts(map[string]core.Value{})
	ex := newExecutor()
	result, err := ex.Reason(context.Background(), rs, facts, executor.CallOptions{TraceLevel: core.TraceBasic})
	require.NoError(t, err)

	assert.Empty(t, result.FiredRuleIDs)
	require.Len(t, result.Traces, 1)
	assert.False(t, result.Traces[0].Fired)
	assert.Contains(t, result.Traces[0].FailureKind, "undefined field")
}

func TestReason_FatalErrorAbortsCallInStrictMode(t *testing.T) {
	rule := compile.RuleDef{
		ID:        "divide",
		Condition: mustParseCond(t, "true"),
		Actions:   []compile.ActionTemplate{action(t, "result", "10 / 0")},
	}
	rs, err := compile.Compile([]compile.RuleDef{rule})
	require.NoError(t, err)

	facts := core.NewFacts(map[string]core.Value{})
	ex := newExecutor()
	_, err = ex.Reason(context.Background(), rs, facts, executor.CallOptions{})
	require.Error(t, err)
}

func TestReason_PermissiveModeDemotesFatalErrors(t *testing.T) {
	rule := compile.RuleDef{
		ID:        "divide",
		Condition: mustParseCond(t, "true"),
		Actions:   []compile.ActionTemplate{action(t, "result", "10 / 0")},
	}
	rs, err := compile.Compile([]compile.RuleDef{rule})
	require.NoError(t, err)

	facts := core.NewFacts(map[string]core.Value{})
	ex := newExecutor()
	result, err := ex.Reason(context.Background(), rs, facts, executor.CallOptions{Permissive: true})
	require.NoError(t, err)
	assert.Empty(t, result.FiredRuleIDs)
}

func TestReason_DeadlineExceededProducesTruncatedResult(t *testing.T) {
	rule := compile.RuleDef{
		ID:        "r",
		Condition: mustParseCond(t, "true"),
		Actions:   []compile.ActionTemplate{action(t, "done", "true")},
	}
	rs, err := compile.Compile([]compile.RuleDef{rule})
	require.NoError(t, err)

	facts := core.NewFacts(map[string]core.Value{})
	ex := newExecutor()
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	result, err := ex.Reason(ctx, rs, facts, executor.CallOptions{})
	require.NoError(t, err)
	assert.True(t, result.Truncated)
}

func TestReason_ReasoningStringIncludesTriggerAnnotation(t *testing.T) {
	first := compile.RuleDef{
		ID:        "first",
		Condition: mustParseCond(t, "x > 0"),
		Actions:   []compile.ActionTemplate{action(t, "y", "1")},
		Triggers:  []string{"second"},
	}
	second := compile.RuleDef{
		ID:        "second",
		Condition: mustParseCond(t, "y == 1"),
		Actions:   []compile.ActionTemplate{action(t, "z", "2")},
	}
	rs, err := compile.Compile([]compile.RuleDef{first, second})
	require.NoError(t, err)

	facts := core.NewFacts(map[string]core.Value{"x": core.Int(1)})
	ex := newExecutor()
	result, err := ex.Reason(context.Background(), rs, facts, executor.CallOptions{})
	require.NoError(t, err)
	assert.Contains(t, result.Reasoning, "triggered by first")
}
