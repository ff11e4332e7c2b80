// Package knowledge extracts structured facts from crawled page text.
//
// The extractor runs a set of independent matchers over every stored page
// and merges what they find into a single knowledge base: recognized
// service names, recognized storage resource names, and FAQ-style
// question/answer pairs.
//
// Design decision: We run small pluggable per-page matchers rather than one
// monolithic scan because:
//  1. Each heuristic tests in isolation with plain table tests
//  2. A broken heuristic degrades its own facts, not the whole extraction
//  3. Replacing a regex matcher with something smarter later touches one
//     type, not the pipeline
//
// The heuristics are deliberately shallow. They read definition sentences
// and question paragraphs, not meaning; the output is a starting point for
// a human, not an authoritative catalog.
package knowledge
