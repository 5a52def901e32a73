package ast

// CollectRefs returns every distinct Ref name and every distinct Call
// name reachable from node, used by the dependency analyzer to compute
// a rule's read set (spec §4.3) while excluding function names from
// it. Grounded on
// _examples/original_source/symbolica/_internal/evaluation/field_extractor.py,
// which performs the same static walk over the original's AST.
func CollectRefs(node Node) (refs []string, calls []string) {
	seenRefs := map[string]bool{}
	seenCalls := map[string]bool{}
	var walk func(Node)
	walk = func(n Node) {
		if n == nil {
			return
		}
		switch t := n.(type) {
		case *Literal:
			// no children
		case *Ref:
			if !seenRefs[t.Name] {
				seenRefs[t.Name] = true
				refs = append(refs, t.Name)
			}
		case *BinaryOpNode:
			walk(t.Left)
			walk(t.Right)
		case *UnaryOpNode:
			walk(t.Inner)
		case *Call:
			if !seenCalls[t.Name] {
				seenCalls[t.Name] = true
				calls = append(calls, t.Name)
			}
			for _, a := range t.Args {
				walk(a)
			}
		case *Index:
			walk(t.Container)
			walk(t.Key)
		case *MemberOf:
			walk(t.Value)
			walk(t.List)
		case *Conditional:
			walk(t.Cond)
			walk(t.Then)
			walk(t.Else)
		case *All:
			for _, c := range t.Children {
				walk(c)
			}
		case *Any:
			for _, c := range t.Children {
				walk(c)
			}
		case *Not:
			walk(t.Inner)
		}
	}
	walk(node)
	return refs, calls
}
