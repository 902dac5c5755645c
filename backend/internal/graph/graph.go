// Package graph derives bounded token co-occurrence graphs from chat text.
// A node weight counts the distinct texts a token appeared in; an edge
// weight counts the distinct texts two tokens co-occurred in.
package graph

import "strings"

// EdgeSeparator joins the two tokens of an edge key. The tokenizer strips
// every character except letters, digits, '-' and '_', so the separator can
// never appear inside a token.
const EdgeSeparator = "|"

// Graph is a token co-occurrence index. It marshals to the on-disk and
// wire document {"nodes":{token:weight},"edges":{"a|b":weight}}.
type Graph struct {
	Nodes map[string]int `json:"nodes"`
	Edges map[string]int `json:"edges"`
}

// New returns an empty graph with non-nil maps.
func New() *Graph {
	return &Graph{
		Nodes: make(map[string]int),
		Edges: make(map[string]int),
	}
}

// EdgeKey builds the canonical key for the unordered pair {a, b}:
// the two tokens in ascending order joined by the separator.
func EdgeKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + EdgeSeparator + b
}

// SplitEdgeKey returns the two endpoints of an edge key.
func SplitEdgeKey(key string) (string, string) {
	parts := strings.SplitN(key, EdgeSeparator, 2)
	if len(parts) != 2 {
		return key, ""
	}
	return parts[0], parts[1]
}

// Merge returns the key-wise sum of a and b. Neither input is mutated.
// Merge is commutative and associative, and merging with an empty graph
// is the identity.
func Merge(a, b *Graph) *Graph {
	out := New()
	for _, g := range []*Graph{a, b} {
		if g == nil {
			continue
		}
		for k, v := range g.Nodes {
			out.Nodes[k] += v
		}
		for k, v := range g.Edges {
			out.Edges[k] += v
		}
	}
	return out
}
