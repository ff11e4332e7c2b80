// Package pipeline executes the processing steps that turn a crawl archive
// into a rendered site and derived artifacts.
//
// Processing runs through multiple stages: loading the archive, categorizing
// pages, building the link graph, extracting knowledge, rendering HTML and
// the graph views, and writing the summary and JSON artifacts. Each stage is
// implemented as a Step that receives the shared Corpus and can extend it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
//  1. It allows easy addition/removal of steps without modifying core logic
//  2. It provides consistent error handling and logging across steps
//  3. It supports cancellation via context between steps
//  4. Steps stay testable in isolation against a hand-built Corpus
//
// The pipeline supports both single-archive runs and batch processing of
// independent archives with concurrency control using errgroup. Steps within
// one pipeline always run in order; only whole archives run concurrently.
package pipeline
