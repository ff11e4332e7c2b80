package crawler

import (
	"net/url"

	"github.com/docmap-dev/docmap/internal/urlutil"
)

// Frontier tracks which URLs have been fetched, which are waiting, and how
// many fetch attempts the current run has spent. It is the crawl's entire
// traversal state, held explicitly so it can be persisted and reloaded.
//
// Design decision: We keep the frontier as an explicit struct rather than
// implicit recursion or channel plumbing because:
//  1. Resuming an interrupted crawl means serializing this state and
//     nothing else
//  2. The accept rules for discovered URLs live in one method instead of
//     being scattered across the loop
//  3. The invariant "a URL is never both visited and queued" is enforceable
//     at a single choke point
//
// All URLs entering the frontier are canonicalized, so membership checks
// never see two spellings of the same page.
type Frontier struct {
	// host is the seed's host. Discovered URLs on any other host are
	// rejected; the crawl never leaves the site.
	host string

	// visited holds canonical URLs whose fetch attempt completed,
	// successfully or not.
	visited map[string]bool

	// queued holds canonical URLs currently in the queue, for O(1)
	// membership checks.
	queued map[string]bool

	// queue is the FIFO of canonical URLs waiting to be fetched.
	queue []string

	// fetched counts fetch attempts this run. It increments in
	// MarkVisited, never anywhere else.
	fetched int

	// maxPages is the fetch budget for this run.
	maxPages int
}

// NewFrontier creates a frontier bound to the given seed host with the
// given per-run fetch budget.
func NewFrontier(host string, maxPages int) *Frontier {
	return &Frontier{
		host:     host,
		visited:  make(map[string]bool),
		queued:   make(map[string]bool),
		queue:    make([]string, 0),
		maxPages: maxPages,
	}
}

// Seed adds the start URL to the queue. A seed that is already visited or
// queued (a resumed crawl) is dropped silently.
func (f *Frontier) Seed(rawURL string) error {
	canonical, err := urlutil.Canonicalize(rawURL)
	if err != nil {
		return err
	}
	if f.visited[canonical] || f.queued[canonical] {
		return nil
	}
	f.queued[canonical] = true
	f.queue = append(f.queue, canonical)
	return nil
}

// Next pops the next URL to fetch in FIFO order.
// The second return value is false when the queue is empty.
func (f *Frontier) Next() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	delete(f.queued, next)
	return next, true
}

// MarkVisited records that a fetch attempt for the URL completed and spends
// one unit of the budget. It must be called exactly once per attempt,
// whether the fetch succeeded or failed permanently.
func (f *Frontier) MarkVisited(canonicalURL string) {
	f.visited[canonicalURL] = true
	f.fetched++
}

// Enqueue offers discovered URLs to the frontier in order. Each candidate
// is appended only when all conditions hold:
//   - it is on the seed's host
//   - it has not been visited
//   - it is not already queued
//   - the fetch budget is not yet exhausted
//
// Candidates are assumed canonical; the parser canonicalizes links before
// they reach the frontier.
func (f *Frontier) Enqueue(urls []string) {
	for _, u := range urls {
		if f.fetched >= f.maxPages {
			return
		}
		if !urlutil.SameSite(f.host, u) {
			continue
		}
		if f.visited[u] || f.queued[u] {
			continue
		}
		f.queued[u] = true
		f.queue = append(f.queue, u)
	}
}

// Budget reports whether the fetch budget allows another attempt.
func (f *Frontier) Budget() bool {
	return f.fetched < f.maxPages
}

// Visited reports whether a fetch attempt for the URL has completed.
func (f *Frontier) Visited(canonicalURL string) bool {
	return f.visited[canonicalURL]
}

// Fetched returns the number of fetch attempts this run.
func (f *Frontier) Fetched() int {
	return f.fetched
}

// QueueLen returns the number of URLs waiting to be fetched.
func (f *Frontier) QueueLen() int {
	return len(f.queue)
}

// VisitedCount returns the number of URLs with a completed fetch attempt.
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}

// Snapshot returns the visited set as a slice and the queue in FIFO order,
// both safe for the caller to retain.
func (f *Frontier) Snapshot() (visited []string, queue []string) {
	visited = make([]string, 0, len(f.visited))
	for u := range f.visited {
		visited = append(visited, u)
	}
	queue = make([]string, len(f.queue))
	copy(queue, f.queue)
	return visited, queue
}

// Restore loads persisted frontier state. Queue entries that appear in the
// visited set are discarded so the invariant holds even if the two files
// were written at different moments. Duplicate queue entries collapse to
// their first position. The fetch counter is not restored: each run gets a
// fresh budget.
func (f *Frontier) Restore(visited []string, queue []string) {
	for _, u := range visited {
		f.visited[u] = true
	}
	for _, u := range queue {
		if f.visited[u] || f.queued[u] {
			continue
		}
		f.queued[u] = true
		f.queue = append(f.queue, u)
	}
}

// HostOf extracts the host of a URL for frontier construction.
func HostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.Host, nil
}
