package compile

import (
	"fmt"

	"github.com/symbolica-rules/symbolica/internal/ast"
	"github.com/symbolica-rules/symbolica/internal/core"
)

// Compile validates defs, computes each rule's read/write sets, builds
// the dependency graph, detects cycles, and produces the topological-
// plus-priority firing order, returning the immutable RuleSet the
// executor and backward chainer operate on. Per spec §3/§4.3:
// duplicate ids and unresolved trigger ids are ParseErrors; a cyclic
// dependency graph is a CyclicDependency error.
func Compile(defs []RuleDef) (*RuleSet, error) {
	if err := validateUniqueIDs(defs); err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(defs))
	for _, d := range defs {
		ids[d.ID] = true
	}
	if err := validateTriggers(defs, ids); err != nil {
		return nil, err
	}

	rules := make([]*Rule, len(defs))
	for i, d := range defs {
		readSet, writeSet := analyzeReadWrite(d)
		conditionText := d.ConditionText
		if conditionText == "" && d.Condition != nil {
			conditionText = ast.Render(d.Condition)
		}
		rules[i] = &Rule{
			ID:            d.ID,
			Priority:      d.Priority,
			Condition:     d.Condition,
			ConditionText: conditionText,
			Actions:       d.Actions,
			Triggers:      d.Triggers,
			Tags:          d.Tags,
			ReadSet:       readSet,
			WriteSet:      writeSet,
		}
	}

	order, layers, err := topoSort(rules)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Rule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}

	rs := &RuleSet{
		rules:      rules,
		byID:       byID,
		order:      order,
		layers:     layers,
		fieldIndex: buildFieldIndex(rules),
	}
	rs.checksum = computeChecksum(order)
	return rs, nil
}

func validateUniqueIDs(defs []RuleDef) error {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return &core.ParseError{Position: -1, Expected: "non-empty rule id", Detail: "rule id must not be empty"}
		}
		if seen[d.ID] {
			return &core.ParseError{Position: -1, Expected: "unique rule id", Detail: fmt.Sprintf("duplicate rule id %q", d.ID)}
		}
		seen[d.ID] = true
	}
	return nil
}

func validateTriggers(defs []RuleDef, ids map[string]bool) error {
	for _, d := range defs {
		for _, t := range d.Triggers {
			if !ids[t] {
				return &core.ParseError{Position: -1, Expected: "resolvable trigger id", Detail: fmt.Sprintf("rule %q triggers unknown rule %q", d.ID, t)}
			}
		}
	}
	return nil
}
