package compile

import "github.com/symbolica-rules/symbolica/internal/ast"

// analyzeReadWrite computes a Rule's read and write sets per spec
// §4.3: the write set is the ordered, deduplicated list of action
// target names; the read set is every Ref name reachable from the
// condition and from every action template, excluding function call
// names (already excluded by ast.CollectRefs) and excluding any name
// written by an EARLIER action of the same rule (§3's "read set ...
// minus any field written by an earlier action of the same rule").
// A forward reference to a later action's target is deliberately left
// in the read set — at runtime it resolves as an ordinary
// UndefinedField demotion until that action has run, per the spec's
// resolved open question (c).
func analyzeReadWrite(def RuleDef) (readSet, writeSet []string) {
	writeSet = make([]string, 0, len(def.Actions))
	seenWrite := map[string]bool{}
	for _, a := range def.Actions {
		if !seenWrite[a.Field] {
			seenWrite[a.Field] = true
			writeSet = append(writeSet, a.Field)
		}
	}

	seenRead := map[string]bool{}
	writtenSoFar := map[string]bool{}

	addRefs := func(node ast.Node) {
		if node == nil {
			return
		}
		refs, _ := ast.CollectRefs(node)
		for _, name := range refs {
			if writtenSoFar[name] {
				continue
			}
			if !seenRead[name] {
				seenRead[name] = true
				readSet = append(readSet, name)
			}
		}
	}

	addRefs(def.Condition)
	for _, a := range def.Actions {
		addRefs(a.Template)
		writtenSoFar[a.Field] = true
	}
	return readSet, writeSet
}
