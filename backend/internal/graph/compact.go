package graph

import "sort"

type weighted struct {
	key    string
	weight int
}

// rank orders entries by weight descending, then key ascending. The
// lexicographic tie-break keeps compaction deterministic.
func rank(m map[string]int) []weighted {
	out := make([]weighted, 0, len(m))
	for k, v := range m {
		out = append(out, weighted{key: k, weight: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].weight != out[j].weight {
			return out[i].weight > out[j].weight
		}
		return out[i].key < out[j].key
	})
	return out
}

// Compact bounds g to at most maxNodes nodes and maxEdges edges by
// weight-ranked retention. Edges referencing a dropped node are dropped
// regardless of their own weight. A cap of zero disables that cap.
// Compacting an already-compacted graph with the same caps is a no-op.
// The input is not mutated.
func Compact(g *Graph, maxNodes, maxEdges int) *Graph {
	out := New()
	for k, v := range g.Nodes {
		out.Nodes[k] = v
	}
	for k, v := range g.Edges {
		out.Edges[k] = v
	}

	if maxNodes > 0 && len(out.Nodes) > maxNodes {
		keep := make(map[string]struct{}, maxNodes)
		for _, n := range rank(out.Nodes)[:maxNodes] {
			keep[n.key] = struct{}{}
		}
		for k := range out.Nodes {
			if _, ok := keep[k]; !ok {
				delete(out.Nodes, k)
			}
		}
		for k := range out.Edges {
			a, b := SplitEdgeKey(k)
			if _, ok := keep[a]; !ok {
				delete(out.Edges, k)
				continue
			}
			if _, ok := keep[b]; !ok {
				delete(out.Edges, k)
			}
		}
	}

	if maxEdges > 0 && len(out.Edges) > maxEdges {
		ranked := rank(out.Edges)
		trimmed := make(map[string]int, maxEdges)
		for _, e := range ranked[:maxEdges] {
			trimmed[e.key] = e.weight
		}
		out.Edges = trimmed
	}

	return out
}
