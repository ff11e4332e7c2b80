package graph

import (
	"sort"

	"github.com/docmap-dev/docmap/internal/model"
)

// Build constructs the link graph from stored pages and the link map.
//
// Nodes are exactly the stored pages. A link map pair becomes an edge when
// its destination is also a node; otherwise it is recorded as dangling.
// Every pair lands in exactly one of the two lists, so
//
//	len(Edges) + len(Dangling) == total link map pairs
//
// holds for any input.
//
// Build is pure: identical inputs always produce an identical graph. Nodes
// are sorted by URL and pairs are walked in sorted source order, so the
// output bytes are reproducible regardless of how the caller ordered the
// pages.
func Build(pages []*model.Page, lm model.LinkMap) *model.LinkGraph {
	g := &model.LinkGraph{
		Nodes:    make([]model.Node, 0, len(pages)),
		Edges:    make([]model.Edge, 0),
		Dangling: make([]model.Edge, 0),
	}

	nodeSet := make(map[string]bool, len(pages))
	for _, page := range pages {
		if nodeSet[page.URL] {
			continue
		}
		nodeSet[page.URL] = true
		g.Nodes = append(g.Nodes, model.Node{
			ID:    page.URL,
			Title: page.Title,
		})
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })

	sources := make([]string, 0, len(lm))
	for source := range lm {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		for _, target := range lm[source] {
			edge := model.Edge{Source: source, Target: target}
			if nodeSet[target] {
				g.Edges = append(g.Edges, edge)
			} else {
				g.Dangling = append(g.Dangling, edge)
			}
		}
	}

	return g
}
