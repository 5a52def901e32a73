package compile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// RuleSet is the immutable, compiled artifact: the rules plus the
// derived id index, firing order, topological layers, and reverse
// field-writer index (used by backward chaining), per spec §3.
type RuleSet struct {
	rules      []*Rule
	byID       map[string]*Rule
	order      []*Rule
	layers     [][]*Rule
	fieldIndex map[string][]string
	checksum   string
}

// Rules returns the rules in firing order (topological, priority- and
// id-tie-broken within each layer).
func (rs *RuleSet) Rules() []*Rule { return rs.order }

// Layers returns the topological layers in execution order; rules
// within a layer are already ordered by the priority/id tie-break.
func (rs *RuleSet) Layers() [][]*Rule { return rs.layers }

// ByID returns the rule with the given id, or (nil, false).
func (rs *RuleSet) ByID(id string) (*Rule, bool) {
	r, ok := rs.byID[id]
	return r, ok
}

// Len returns the number of compiled rules.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// FieldIndex returns, for the given field name, the ids of every rule
// that writes it (sorted by id), used by the backward chainer.
func (rs *RuleSet) FieldIndex(field string) []string {
	return rs.fieldIndex[field]
}

// Checksum returns a stable sha256 hex digest over each compiled rule's
// id, priority, condition text, action target fields, and triggers, in
// firing order (action template expressions are not hashed) — useful
// for a caller to detect whether a previously compiled RuleSet has
// drifted from a newly loaded definition without re-deriving the DAG.
func (rs *RuleSet) Checksum() string { return rs.checksum }

// Describe renders a short human-readable summary of the compiled
// rule set: rule count, layer count, and firing order.
func (rs *RuleSet) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d rules in %d layers\n", len(rs.rules), len(rs.layers))
	for i, l := range rs.layers {
		ids := make([]string, len(l))
		for j, r := range l {
			ids[j] = r.ID
		}
		fmt.Fprintf(&b, "  layer %d: %s\n", i, strings.Join(ids, ", "))
	}
	return b.String()
}

func computeChecksum(order []*Rule) string {
	h := sha256.New()
	for _, r := range order {
		fmt.Fprintf(h, "%s|%d|%s|", r.ID, r.Priority, r.ConditionText)
		for _, a := range r.Actions {
			fmt.Fprintf(h, "%s=", a.Field)
		}
		fmt.Fprintf(h, "|%s", strings.Join(r.Triggers, ","))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func buildFieldIndex(rules []*Rule) map[string][]string {
	idx := make(map[string][]string)
	for _, r := range rules {
		for _, f := range r.WriteSet {
			idx[f] = append(idx[f], r.ID)
		}
	}
	for f := range idx {
		sort.Strings(idx[f])
	}
	return idx
}
