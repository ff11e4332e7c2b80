package model

// LinkMap records which same-site URLs each stored page linked to.
// Keys and values are canonical URLs; each destination list is ordered by
// first occurrence with duplicates removed.
type LinkMap map[string][]string

// Add records destinations for a source page, skipping ones already present.
// Adding no destinations still creates the source entry, so pages without
// outgoing links are represented.
func (lm LinkMap) Add(source string, destinations ...string) {
	existing, ok := lm[source]
	if !ok {
		existing = make([]string, 0, len(destinations))
	}
	for _, d := range destinations {
		found := false
		for _, e := range existing {
			if e == d {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, d)
		}
	}
	lm[source] = existing
}

// TotalPairs returns the number of (source, destination) pairs.
func (lm LinkMap) TotalPairs() int {
	n := 0
	for _, dsts := range lm {
		n += len(dsts)
	}
	return n
}

// LinkGraph is the directed graph of stored pages.
//
// Nodes are exactly the stored pages. A link map pair becomes an edge when
// its destination is a node, and a dangling reference otherwise, so every
// pair is accounted for exactly once:
//
//	len(Edges) + len(Dangling) == total link map pairs
type LinkGraph struct {
	// Nodes lists the graph nodes sorted by URL.
	Nodes []Node `json:"nodes"`

	// Edges lists links whose destination is a stored page.
	Edges []Edge `json:"edges"`

	// Dangling lists links whose destination was discovered but never
	// stored (filtered out, over budget, or fetch failed).
	Dangling []Edge `json:"dangling"`
}

// Node is a stored page in the link graph.
type Node struct {
	// ID is the page's canonical URL.
	ID string `json:"id"`

	// Title is the page title, kept here so renderers need no store lookup.
	Title string `json:"title"`
}

// Edge is a directed link between two canonical URLs.
// In LinkGraph.Dangling the target is not a node.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// NodeCount returns the number of nodes.
func (g *LinkGraph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of resolved edges.
func (g *LinkGraph) EdgeCount() int { return len(g.Edges) }

// HasNode reports whether the given canonical URL is a node.
func (g *LinkGraph) HasNode(id string) bool {
	for _, n := range g.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Outgoing returns the targets of all resolved edges leaving the given node,
// in edge order.
func (g *LinkGraph) Outgoing(id string) []string {
	targets := make([]string, 0)
	for _, e := range g.Edges {
		if e.Source == id {
			targets = append(targets, e.Target)
		}
	}
	return targets
}
