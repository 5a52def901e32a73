package symbolica

import "github.com/symbolica-rules/symbolica/internal/core"

// FiredRules resolves an ExecutionResult's FiredRuleIDs back into the
// compiled Rule values, in firing order, against the RuleSet that
// produced it. Unknown ids (there should be none) are skipped rather
// than causing an error, since this is a read-only convenience over
// already-validated data.
func FiredRules(result *ExecutionResult, ruleSet *RuleSet) []*Rule {
	rules := make([]*Rule, 0, len(result.FiredRuleIDs))
	for _, id := range result.FiredRuleIDs {
		if r, ok := ruleSet.ByID(id); ok {
			rules = append(rules, r)
		}
	}
	return rules
}

// ApplyVerdict returns a new Facts combining the original facts with
// an ExecutionResult's verdict, verdict fields taking precedence. This
// is the "carry the outcome of one Reason call into the next" pattern
// a host uses to chain decisions across successive fact updates,
// without reaching back into the overlay internals that produced the
// verdict in the first place.
func ApplyVerdict(facts *Facts, result *ExecutionResult) *Facts {
	merged := facts.Snapshot()
	for field, v := range result.Verdict {
		merged[field] = v
	}
	return core.NewFacts(merged)
}
