// Package backward implements the goal-directed reachability search
// spec §4.6 describes: rules_for_goal (which compiled rules could
// write a desired field, optionally to a desired value) and
// can_achieve (a depth-bounded, memoized DFS asking whether some chain
// of rule firings could plausibly produce a goal from the given
// facts). It never executes an action; it is purely a static analysis
// over an already-compiled RuleSet. Grounded on
// original_source/symbolica/_internal/strategies/backward_chainer.py's
// find_supporting_rules/can_achieve_goal for the base shape, extended
// per SPEC_FULL.md §4.6 to the recursive upstream-goal search the
// original's single-level scan does not perform.
package backward

import (
	"strings"

	"github.com/symbolica-rules/symbolica/internal/ast"
	"github.com/symbolica-rules/symbolica/internal/compile"
	"github.com/symbolica-rules/symbolica/internal/core"
	"github.com/symbolica-rules/symbolica/internal/registry"
	"github.com/symbolica-rules/symbolica/internal/temporal"
)

// Chainer answers reachability questions against one compiled RuleSet.
type Chainer struct {
	RuleSet  *compile.RuleSet
	Registry *registry.Registry
	Temporal *temporal.Store
	MaxDepth int
}

// New constructs a Chainer. A nil registry defaults to
// registry.Default(); a maxDepth of zero or less defaults to 64.
func New(rs *compile.RuleSet, reg *registry.Registry, store *temporal.Store, maxDepth int) *Chainer {
	if reg == nil {
		reg = registry.Default()
	}
	if maxDepth <= 0 {
		maxDepth = 64
	}
	return &Chainer{RuleSet: rs, Registry: reg, Temporal: store, MaxDepth: maxDepth}
}

// RulesForGoal returns every compiled rule whose write set intersects
// goal's fields and whose action template for that field could
// plausibly produce the requested value: a literal-to-literal match
// must be exact, a non-literal template (anything computed) matches
// conservatively since its runtime value is unknown statically.
func (c *Chainer) RulesForGoal(goal Goal) []*compile.Rule {
	seen := make(map[string]bool)
	var out []*compile.Rule
	for _, field := range goal.Fields {
		for _, ruleID := range c.RuleSet.FieldIndex(field) {
			if seen[ruleID] {
				continue
			}
			r, ok := c.RuleSet.ByID(ruleID)
			if !ok {
				continue
			}
			if ruleCanProduce(r, field, goal) {
				seen[ruleID] = true
				out = append(out, r)
			}
		}
	}
	return out
}

func ruleCanProduce(r *compile.Rule, field string, goal Goal) bool {
	for _, a := range r.Actions {
		if a.Field != field {
			continue
		}
		lit, isLiteral := a.Template.(*ast.Literal)
		if !isLiteral {
			return true
		}
		desired, wanted := goal.wants(field)
		if !wanted {
			return true
		}
		return lit.Value.Equal(desired)
	}
	return false
}

// CanAchieve reports whether some chain of rule firings, starting from
// facts, could plausibly produce goal. A false result is sound (no
// single-rule-deep or recursively-supported chain exists); a true
// result is necessary but not sufficient, per spec §8's documented
// existential-search caveat.
func (c *Chainer) CanAchieve(goal Goal, facts *core.Facts) bool {
	memo := make(map[string]bool)
	return c.canAchieve(goal, facts, c.MaxDepth, memo)
}

func (c *Chainer) canAchieve(goal Goal, facts *core.Facts, depth int, memo map[string]bool) bool {
	if depth < 0 {
		return false
	}
	candidates := c.RulesForGoal(goal)
	if len(candidates) == 0 {
		return false
	}
	for _, r := range candidates {
		key := r.ID + "|" + strings.Join(goal.Fields, ",")
		if cached, ok := memo[key]; ok {
			if cached {
				return true
			}
			continue
		}
		memo[key] = false // mark visiting before recursing, to break cycles conservatively
		if !c.upstreamAchievable(r, facts, depth, memo) {
			continue
		}
		if optimisticTruth(r.Condition, facts, c.Registry, c.Temporal) {
			memo[key] = true
			return true
		}
	}
	return false
}

// upstreamAchievable asks, for every field r's condition reads that is
// absent from facts, whether some rule could supply it — the
// recursive "missing inputs are themselves treated as goals for
// upstream rules" clause of spec §4.6. A missing field that no rule
// writes is an input the caller may still supply, so it does not block
// the candidate.
func (c *Chainer) upstreamAchievable(r *compile.Rule, facts *core.Facts, depth int, memo map[string]bool) bool {
	for _, name := range r.ReadSet {
		if _, ok := facts.Get(name); ok {
			continue
		}
		if len(c.RuleSet.FieldIndex(name)) == 0 {
			continue
		}
		if !c.canAchieve(NewFieldGoal(name), facts, depth-1, memo) {
			return false
		}
	}
	return true
}
