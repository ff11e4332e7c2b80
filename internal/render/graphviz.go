package render

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/docmap-dev/docmap/internal/model"
)

// maxLayoutNodes caps the static SVG layout. Past this size the drawing is
// an unreadable hairball; the DOT file remains the useful artifact because
// Graphviz can apply a real layout engine to it.
const maxLayoutNodes = 100

// CanRenderSVG reports whether the graph is small enough for the built-in
// circular layout. Callers skip WriteSVG when this is false.
func CanRenderSVG(g *model.LinkGraph) bool {
	return g.NodeCount() <= maxLayoutNodes
}

// WriteDOT writes the graph in Graphviz DOT form. Stored pages render as
// solid boxes; dangling targets appear as dashed ghost nodes so a plot
// shows where the crawl stopped short.
func WriteDOT(w io.Writer, g *model.LinkGraph) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "digraph docs {")
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [shape=box, fontsize=10];")

	for _, node := range g.Nodes {
		fmt.Fprintf(bw, "  %s [label=%s];\n", dotQuote(node.ID), dotQuote(nodeLabel(node)))
	}

	ghosts := make([]string, 0)
	seen := make(map[string]bool)
	for _, edge := range g.Dangling {
		if !seen[edge.Target] {
			seen[edge.Target] = true
			ghosts = append(ghosts, edge.Target)
		}
	}
	sort.Strings(ghosts)
	for _, target := range ghosts {
		fmt.Fprintf(bw, "  %s [style=dashed, color=gray50, fontcolor=gray50];\n", dotQuote(target))
	}

	for _, edge := range g.Edges {
		fmt.Fprintf(bw, "  %s -> %s;\n", dotQuote(edge.Source), dotQuote(edge.Target))
	}
	for _, edge := range g.Dangling {
		fmt.Fprintf(bw, "  %s -> %s [style=dashed, color=gray50];\n", dotQuote(edge.Source), dotQuote(edge.Target))
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// WriteSVG writes a self-contained SVG of the graph.
//
// Design decision: We place nodes on a circle rather than force-direct
// them because:
// 1. The layout is deterministic, so the same graph yields the same bytes
// 2. It needs no iteration or physics, only trigonometry
// 3. At the sizes CanRenderSVG admits a circle stays readable
//
// Only stored pages are drawn; dangling targets have no position and
// belong in the DOT output instead.
func WriteSVG(w io.Writer, g *model.LinkGraph) error {
	const (
		size   = 1200.0
		margin = 140.0
	)
	center := size / 2
	radius := center - margin

	pos := make(map[string]struct{ x, y float64 }, g.NodeCount())
	for i, node := range g.Nodes {
		angle := 2 * math.Pi * float64(i) / float64(g.NodeCount())
		pos[node.ID] = struct{ x, y float64 }{
			x: center + radius*math.Cos(angle),
			y: center + radius*math.Sin(angle),
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`+"\n",
		size, size, size, size)
	fmt.Fprintln(bw, `<rect width="100%" height="100%" fill="white"/>`)

	for _, edge := range g.Edges {
		from, to := pos[edge.Source], pos[edge.Target]
		fmt.Fprintf(bw, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#bbbbbb" stroke-width="1"/>`+"\n",
			from.x, from.y, to.x, to.y)
	}
	for _, node := range g.Nodes {
		p := pos[node.ID]
		fmt.Fprintf(bw, `<circle cx="%.1f" cy="%.1f" r="6" fill="#4682b4"/>`+"\n", p.x, p.y)
		fmt.Fprintf(bw, `<text x="%.1f" y="%.1f" font-size="11" font-family="sans-serif">%s</text>`+"\n",
			p.x+9, p.y+4, html.EscapeString(truncateString(nodeLabel(node), 28)))
	}
	fmt.Fprintln(bw, `</svg>`)
	return bw.Flush()
}

// nodeLabel prefers the page title, falling back to the URL path.
func nodeLabel(node model.Node) string {
	if node.Title != "" {
		return node.Title
	}
	if u, err := url.Parse(node.ID); err == nil && u.Path != "" && u.Path != "/" {
		return u.Path
	}
	return node.ID
}

// dotQuote wraps s in DOT double quotes with inner quotes escaped.
func dotQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
