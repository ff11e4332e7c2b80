// Package database provides SQLite-based storage for crawl session history.
//
// This package implements the ArchiveDB, which stores:
//   - One row per crawl invocation with its outcome counters
//   - One row per page a session stored, with fetch metadata
//
// Page content itself lives in the JSON archive managed by internal/store;
// the database answers questions across runs: when was a site last crawled,
// how many pages did each run store, how often has a URL been seen.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. Sufficient performance for our use case
//  4. WAL mode provides good concurrent read performance
package database
