package executor

import (
	"sort"
	"strings"

	"github.com/symbolica-rules/symbolica/internal/core"
)

// renderReasoning assembles the human-readable reasoning string spec §6
// describes: one line per fired rule in firing order, "<id>: <condition
// text>, set <k1>=<v1>, <k2>=<v2>", with "(triggered by <parent_id>)"
// appended when the rule fired off the trigger queue rather than the
// topological pass. At TraceBasic and above, non-firing rules with a
// recorded failure are also rendered, prefixed distinctly, so a caller
// debugging a "why didn't X fire" question does not need the raw
// Traces slice for the common case.
func renderReasoning(traces []core.TraceEntry, level core.TraceLevel) string {
	var lines []string
	for _, t := range traces {
		if t.Fired {
			lines = append(lines, renderFired(t))
			continue
		}
		if level >= core.TraceBasic && t.FailureKind != "" {
			lines = append(lines, renderFailed(t))
		}
	}
	return strings.Join(lines, "\n")
}

func renderFired(t core.TraceEntry) string {
	var b strings.Builder
	b.WriteString("✓ ")
	b.WriteString(t.RuleID)
	b.WriteString(": ")
	b.WriteString(t.ConditionText)
	if len(t.Writes) > 0 {
		b.WriteString(", set ")
		b.WriteString(renderWrites(t.Writes))
	}
	if t.Reason == core.FiredByTrigger && t.TriggeredBy != "" {
		b.WriteString(" (triggered by ")
		b.WriteString(t.TriggeredBy)
		b.WriteString(")")
	}
	return b.String()
}

func renderFailed(t core.TraceEntry) string {
	return "✗ " + t.RuleID + ": " + t.FailureKind
}

func renderWrites(writes map[string]core.Value) string {
	keys := make([]string, 0, len(writes))
	for k := range writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + writes[k].String()
	}
	return strings.Join(parts, ", ")
}
