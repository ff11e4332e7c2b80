// Package store persists crawl output as plain JSON files on disk.
//
// # Layout
//
// A store owns one directory with a fixed layout:
//
//	<dir>/
//	  pages/            one JSON file per archived page
//	  index.json        page count and per-page summary entries
//	  visited_urls.json canonical URLs with a completed fetch attempt, sorted
//	  pending_urls.json canonical URLs waiting to be fetched, in queue order
//	  link_map.json     canonical source URL to destination URL list
//
// Design decision: We persist to individual JSON files rather than a single
// database because:
//  1. Pages are written one at a time as they arrive, so an interrupted
//     crawl keeps everything fetched so far
//  2. The archive stays inspectable with nothing but a text editor
//  3. Downstream processing reads the whole corpus anyway, so per-record
//     lookup speed buys nothing
//  4. State files are small and rewritten wholesale, which keeps every
//     write a whole-record replace
//
// The session history database in internal/database complements this
// layout; it records crawl metadata across runs, not page content.
package store
