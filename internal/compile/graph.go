package compile

import (
	"sort"

	"github.com/symbolica-rules/symbolica/internal/core"
)

// graph is an adjacency list over rule ids: edges[a] is the set of ids
// that depend on a (a must fire, or at least be evaluated, before
// them in topological order).
type graph struct {
	edges map[string]map[string]bool
	ids   []string
}

func newGraph(ids []string) *graph {
	g := &graph{edges: make(map[string]map[string]bool, len(ids)), ids: ids}
	for _, id := range ids {
		g.edges[id] = make(map[string]bool)
	}
	return g
}

func (g *graph) addEdge(from, to string) {
	if from == to {
		return
	}
	g.edges[from][to] = true
}

// buildGraph implements spec §4.3: an edge A→B exists iff
// write(A) ∩ read(B) ≠ ∅, plus an edge A→B for every B in
// triggers(A) regardless of shared fields (trigger chains are
// ordering obligations even without a field dependency).
func buildGraph(rules []*Rule) *graph {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	g := newGraph(ids)
	for _, a := range rules {
		for _, b := range rules {
			if a.ID == b.ID {
				continue
			}
			if intersects(a.WriteSet, b.ReadSet) {
				g.addEdge(a.ID, b.ID)
			}
		}
		for _, t := range a.Triggers {
			g.addEdge(a.ID, t)
		}
	}
	return g
}

func intersects(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, x := range a {
		set[x] = true
	}
	for _, y := range b {
		if set[y] {
			return true
		}
	}
	return false
}

// detectCycle runs a DFS looking for a back edge. On finding one it
// returns the cycle as an ordered list of ids (the node repeated at
// both ends) and found=true; with no cycle it returns (nil, false).
func detectCycle(g *graph) (cycle []string, found bool) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(g.ids))
	var path []string
	var walk func(id string) []string
	walk = func(id string) []string {
		state[id] = visiting
		path = append(path, id)
		neighbors := sortedKeys(g.edges[id])
		for _, n := range neighbors {
			switch state[n] {
			case unvisited:
				if c := walk(n); c != nil {
					return c
				}
			case visiting:
				// Found the back edge; slice the path from n's first
				// occurrence to the current node, closing the loop.
				start := indexOf(path, n)
				cyc := append([]string{}, path[start:]...)
				cyc = append(cyc, n)
				return cyc
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return nil
	}
	ordered := append([]string{}, g.ids...)
	sort.Strings(ordered)
	for _, id := range ordered {
		if state[id] == unvisited {
			if c := walk(id); c != nil {
				return c, true
			}
		}
	}
	return nil, false
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// layer performs Kahn's algorithm, peeling off all currently-in-degree-
// zero nodes as one layer at a time. Within a layer, rules are ordered
// by ascending priority then ascending id, so that — per the pinned
// resolution of the priority/conflict open question — the
// higher-priority rule in a layer fires LAST and its writes dominate
// any lower-priority peer writing the same field in that layer.
func layer(g *graph, byID map[string]*Rule) [][]*Rule {
	indegree := make(map[string]int, len(g.ids))
	for _, id := range g.ids {
		indegree[id] = 0
	}
	for _, id := range g.ids {
		for to := range g.edges[id] {
			indegree[to]++
		}
	}

	remaining := make(map[string]bool, len(g.ids))
	for _, id := range g.ids {
		remaining[id] = true
	}

	var layers [][]*Rule
	for len(remaining) > 0 {
		var ready []string
		for id := range remaining {
			if indegree[id] == 0 {
				ready = append(ready, id)
			}
		}
		sort.Slice(ready, func(i, j int) bool {
			ri, rj := byID[ready[i]], byID[ready[j]]
			if ri.Priority != rj.Priority {
				return ri.Priority < rj.Priority
			}
			return ri.ID < rj.ID
		})
		layerRules := make([]*Rule, len(ready))
		for i, id := range ready {
			layerRules[i] = byID[id]
		}
		layers = append(layers, layerRules)
		for _, id := range ready {
			delete(remaining, id)
			for to := range g.edges[id] {
				indegree[to]--
			}
		}
	}
	return layers
}

// topoSort builds the graph, detects cycles, and returns the flattened
// firing order (layers concatenated in order).
func topoSort(rules []*Rule) ([]*Rule, [][]*Rule, error) {
	byID := make(map[string]*Rule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}
	g := buildGraph(rules)
	if cyc, found := detectCycle(g); found {
		return nil, nil, &core.CyclicDependency{Cycle: cyc}
	}
	layers := layer(g, byID)
	var flat []*Rule
	for _, l := range layers {
		flat = append(flat, l...)
	}
	return flat, layers, nil
}
