// Package crawler provides breadth-first crawling of documentation sites.
//
// # Architecture
//
// The crawler package is designed around the Crawler type, which coordinates
// the crawling process. It uses a FIFO frontier to manage URLs to visit and
// respects the page budget and politeness settings.
//
// Design decision: We implement our own crawler rather than using a third-party
// library because:
//  1. Documentation sites need same-host scoping with exact canonical URL rules
//  2. We need tight control over request timing to avoid overwhelming servers
//  3. Resumable frontier state must round-trip through plain JSON files
//  4. Reduces external dependencies and potential security issues
//
// # Components
//
//   - Crawler: The main loop that coordinates fetching, storing, and checkpoints
//   - Frontier: URL queue with deduplication, visited tracking, and a fetch budget
//   - Fetcher: Rate-limited HTTP client wrapper with a body size cap
//   - Parser: HTML parser that extracts titles, readable text, and links
//
// # Politeness
//
// The crawler is designed to be polite:
//   - One request at a time, strictly sequential
//   - Delays between requests (configurable)
//   - Identifies itself with a descriptive User-Agent
//   - Respects a hard page budget per run
//
// # Usage
//
//	c := crawler.NewCrawler(fetcher, parser, store, crawler.WithMaxPages(500))
//	result, err := c.Crawl(ctx, "https://docs.example.edu")
//
// # Resumability
//
// Frontier state is checkpointed to the store at a configurable interval and
// once more when the loop ends. A later run restores the visited set and the
// pending queue, so no URL is ever fetched twice across runs and an
// interrupted crawl loses at most the pages since the last checkpoint.
package crawler
