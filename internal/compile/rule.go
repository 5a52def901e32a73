// Package compile turns a set of rule definitions into a compiled
// RuleSet: it computes each rule's read/write sets (spec §4.3), builds
// the dependency graph, detects cycles, and produces the deterministic
// topological-plus-priority firing order the executor walks. Grounded
// on rgehrsitz-rex_claude/internal/preprocessor's "validate, then
// derive the artifacts the runtime needs" compile step, generalized
// from its bytecode-emission concern to dependency analysis and DAG
// layering, and on
// original_source/symbolica/_internal/dag.py for the graph-building
// and cycle-detection algorithm.
package compile

import "github.com/symbolica-rules/symbolica/internal/ast"

// ActionTemplate pairs one action's target field name with the AST
// that produces its value when the owning rule fires.
type ActionTemplate struct {
	Field    string
	Template ast.Node
}

// RuleDef is the input shape Compile accepts: an already-parsed rule
// (the surface-syntax loader that turns declarative rule files into
// this shape is explicitly out of scope, per spec §1).
type RuleDef struct {
	ID            string
	Priority      int
	Condition     ast.Node
	ConditionText string
	Actions       []ActionTemplate
	Triggers      []string
	Tags          []string
}

// Rule is a RuleDef plus the read/write sets the dependency analyzer
// derives from it. Immutable once a RuleSet has been compiled.
type Rule struct {
	ID            string
	Priority      int
	Condition     ast.Node
	ConditionText string
	Actions       []ActionTemplate
	Triggers      []string
	Tags          []string

	ReadSet  []string
	WriteSet []string
}

// HasTag reports whether tag is present on the rule.
func (r *Rule) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
