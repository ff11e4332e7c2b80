// Package main provides the entry point for the docmap CLI.
//
// Docmap crawls a documentation website, stores every page locally, and
// turns the archive into a browsable site map: categorized page listings,
// a link graph, and an extracted knowledge base.
//
// Usage:
//
//	docmap crawl <start-url>
//	docmap process [archive-dir]
//	docmap serve [site-dir]
//
// See --help for all available options.
package main

// main is the entry point for docmap.
func main() {
	Execute()
}
