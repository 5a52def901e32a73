package backward

import (
	"sort"

	"github.com/symbolica-rules/symbolica/internal/core"
)

// Goal is the input to rules_for_goal/can_achieve (spec §4.6): either a
// bare set of desired field names, or a mapping of field name to the
// specific desired value. Fields is always populated (derived from
// Values' keys when constructed via NewGoal); Values is nil/empty for a
// field-only goal.
type Goal struct {
	Fields []string
	Values map[string]core.Value
}

// NewGoal builds a value-specific goal from a desired field→value
// mapping, e.g. {approved: true}.
func NewGoal(values map[string]core.Value) Goal {
	fields := make([]string, 0, len(values))
	for k := range values {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return Goal{Fields: fields, Values: values}
}

// NewFieldGoal builds a value-agnostic goal: "some rule writes this
// field, I don't care what it writes."
func NewFieldGoal(fields ...string) Goal {
	cp := make([]string, len(fields))
	copy(cp, fields)
	return Goal{Fields: cp}
}

// wants returns the desired value for field and whether one was
// specified.
func (g Goal) wants(field string) (core.Value, bool) {
	v, ok := g.Values[field]
	return v, ok
}
