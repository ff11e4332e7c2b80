// Package model defines the core data structures used throughout docmap.
//
// This package contains the following main types:
//   - Page: Represents a crawled documentation page with extracted content
//   - Index: The per-archive summary written as index.json
//   - LinkGraph: The directed graph of stored pages
//   - KnowledgeBase: Facts extracted from page text
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, store, graph, knowledge, render)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for the durable
// artifacts and database storage.
package model
