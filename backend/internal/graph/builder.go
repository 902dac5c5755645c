package graph

// Build accumulates the texts into one graph. Each text contributes its
// first-occurrence-order deduplicated token set: +1 node weight per unique
// token, +1 edge weight per unordered pair of unique tokens. The result is
// independent of the order of the input texts.
func Build(texts []string) *Graph {
	g := New()
	for _, text := range texts {
		unique := dedupe(Tokenize(text))
		for _, t := range unique {
			g.Nodes[t]++
		}
		for i := 0; i < len(unique); i++ {
			for j := i + 1; j < len(unique); j++ {
				g.Edges[EdgeKey(unique[i], unique[j])]++
			}
		}
	}
	return g
}

// dedupe keeps the first occurrence of every token, preserving order.
func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
