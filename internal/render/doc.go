// Package render turns a processed corpus into files for humans: an HTML
// tree of the pages with a category index, Graphviz and SVG views of the
// link graph, and a Markdown processing report.
//
// Nothing downstream parses these outputs. That boundary keeps the package
// free to change markup and layout without versioning concerns; the durable
// machine-readable artifacts are the JSON files the pipeline writes, not
// anything rendered here.
//
// Report writers share the Writer interface so the same summary can go to
// a file, a terminal, or both at once through MultiWriter.
package render
