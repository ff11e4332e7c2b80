// Package graph builds the directed link graph over stored pages.
//
// Nodes are the stored pages and nothing else. Each recorded link either
// connects two stored pages (an edge) or points at a page the crawl never
// stored (a dangling reference); the two lists together account for every
// link map pair, so nothing silently vanishes between crawl and graph.
//
// Build is deterministic for identical inputs regardless of caller
// ordering, which keeps the serialized graph artifact reproducible across
// processing runs.
package graph
