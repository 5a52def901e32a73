package executor

import "github.com/symbolica-rules/symbolica/internal/core"

// overlay layers writes accumulated during one reason call over a
// read-only Facts environment, per spec §3's Execution Context: reads
// check the overlay first so a rule observes every write a
// higher-firing-order predecessor already made, and falls back to the
// original facts otherwise.
type overlay struct {
	facts  *core.Facts
	writes map[string]core.Value
}

func newOverlay(facts *core.Facts) *overlay {
	return &overlay{facts: facts, writes: make(map[string]core.Value)}
}

func (o *overlay) lookup(name string) (core.Value, bool) {
	if v, ok := o.writes[name]; ok {
		return v, true
	}
	return o.facts.Get(name)
}

func (o *overlay) set(name string, v core.Value) {
	o.writes[name] = v
}

// snapshot returns a copy of the accumulated writes, which is the verdict
// map per spec §3: "facts ∪ accumulated writes, restricted to written
// keys" reduces to exactly the overlay's own contents, since a write
// always overrides the corresponding fact for the fields it touches and
// untouched facts are not part of the verdict.
func (o *overlay) snapshot() map[string]core.Value {
	out := make(map[string]core.Value, len(o.writes))
	for k, v := range o.writes {
		out[k] = v
	}
	return out
}
