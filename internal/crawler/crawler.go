package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/docmap-dev/docmap/internal/model"
	"github.com/docmap-dev/docmap/internal/urlutil"
)

// PageStore is the durable sink the crawler writes to.
// It is satisfied by store.Store; the crawler defines the interface so the
// dependency points outward.
type PageStore interface {
	// Put writes one page record immediately.
	Put(page *model.Page) error

	// SaveFrontier replaces the persisted visited set and pending queue.
	SaveFrontier(visited, queue []string) error

	// LoadFrontier reads the persisted visited set and pending queue.
	LoadFrontier() (visited, queue []string, err error)

	// SaveLinkMap replaces the persisted link map.
	SaveLinkMap(lm model.LinkMap) error

	// LoadLinkMap reads the persisted link map.
	LoadLinkMap() (model.LinkMap, error)

	// SaveIndex replaces the persisted archive index.
	SaveIndex(idx *model.Index) error

	// LoadIndex reads the persisted archive index.
	LoadIndex() (*model.Index, error)

	// HasState reports whether a previous crawl left frontier state behind.
	HasState() bool
}

// ArchiveRecorder receives a copy of every stored page for the session
// history database. Recording is best-effort; errors are logged, never fatal.
type ArchiveRecorder interface {
	RecordPage(ctx context.Context, page *model.Page) error
}

// Crawler walks a documentation site breadth-first and archives every page.
//
// The crawl is strictly sequential: one fetch at a time, in discovery
// order. Documentation hosts are shared infrastructure and a single polite
// client is deliberate, not an implementation shortcut.
type Crawler struct {
	// fetcher retrieves pages and enforces the politeness delay.
	fetcher *Fetcher

	// parser extracts title, text, and links from HTML.
	parser *Parser

	// store receives page records and frontier checkpoints.
	store PageStore

	// archive optionally records pages for the session history database.
	archive ArchiveRecorder

	// logger receives diagnostics. Defaults to slog.Default().
	logger *slog.Logger

	// progress, when set, receives one human-readable line per fetch.
	progress io.Writer

	// maxPages is the fetch budget for this run.
	maxPages int

	// checkpointEvery is the number of fetched pages between checkpoints.
	checkpointEvery int

	// skipExtensions are lowercased file extensions never crawled.
	skipExtensions []string

	// ignorePatterns are URL path glob patterns never crawled.
	ignorePatterns []string
}

// Result summarizes a finished or interrupted crawl run.
type Result struct {
	// PagesStored is the number of page records written this run.
	PagesStored int

	// FetchFailures is the number of failed fetch attempts this run.
	FetchFailures int

	// VisitedTotal is the size of the visited set, including entries
	// restored from a previous run.
	VisitedTotal int

	// QueueRemaining is the number of URLs left pending for a future run.
	QueueRemaining int

	// Interrupted reports whether the run stopped on context cancellation
	// rather than budget exhaustion or an empty queue.
	Interrupted bool
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithMaxPages sets the fetch budget for the run.
func WithMaxPages(maxPages int) CrawlerOption {
	return func(c *Crawler) {
		c.maxPages = maxPages
	}
}

// WithCheckpointEvery sets how many fetched pages pass between frontier
// checkpoints.
func WithCheckpointEvery(n int) CrawlerOption {
	return func(c *Crawler) {
		c.checkpointEvery = n
	}
}

// WithSkipExtensions sets file extensions excluded from crawling.
// Matching is case-insensitive against the URL path.
func WithSkipExtensions(exts []string) CrawlerOption {
	return func(c *Crawler) {
		c.skipExtensions = exts
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/search/*", "*.cgi").
func WithIgnorePatterns(patterns []string) CrawlerOption {
	return func(c *Crawler) {
		c.ignorePatterns = patterns
	}
}

// WithArchive sets the session history recorder.
func WithArchive(a ArchiveRecorder) CrawlerOption {
	return func(c *Crawler) {
		c.archive = a
	}
}

// WithLogger sets the logger for crawl diagnostics.
func WithLogger(logger *slog.Logger) CrawlerOption {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithProgress sets a writer that receives one line per fetch attempt,
// suitable for terminal output.
func WithProgress(w io.Writer) CrawlerOption {
	return func(c *Crawler) {
		c.progress = w
	}
}

// NewCrawler creates a Crawler writing to the given store.
func NewCrawler(fetcher *Fetcher, parser *Parser, store PageStore, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		fetcher:         fetcher,
		parser:          parser,
		store:           store,
		logger:          slog.Default(),
		maxPages:        1000,
		checkpointEvery: 10,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Crawl runs the crawl loop from the given seed URL until the budget is
// spent, the queue drains, or the context is cancelled.
//
// Per page the order is fixed: fetch, store the record, extend the link
// map, enqueue discovered links, then mark visited. Marking visited is
// what spends budget, so the links of the final in-budget page still make
// it into the queue for a future run.
//
// Page-level failures are not fatal: a failed fetch or parse is logged and
// the crawl moves on. Failures to persist state are fatal, because silently
// dropping archive writes would corrupt every later processing step.
func (c *Crawler) Crawl(ctx context.Context, startURL string) (*Result, error) {
	seed, err := urlutil.Canonicalize(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}
	host, err := HostOf(seed)
	if err != nil || host == "" {
		return nil, fmt.Errorf("start URL has no host: %q", startURL)
	}

	frontier := NewFrontier(host, c.maxPages)
	linkMap := make(model.LinkMap)
	entries := make(map[string]model.IndexEntry)

	// A previous run's state makes this run a resume: nothing in the
	// visited set is fetched again, and its pending queue is retried.
	if c.store.HasState() {
		visited, queue, err := c.store.LoadFrontier()
		if err != nil {
			return nil, fmt.Errorf("load frontier state: %w", err)
		}
		frontier.Restore(visited, queue)

		if lm, err := c.store.LoadLinkMap(); err == nil {
			linkMap = lm
		} else {
			c.logger.Warn("link map unreadable, starting empty", "error", err)
		}
		if idx, err := c.store.LoadIndex(); err == nil {
			for _, e := range idx.Pages {
				entries[e.URL] = e
			}
		}

		c.logger.Debug("resuming crawl",
			"visited", frontier.VisitedCount(),
			"pending", frontier.QueueLen())
	}

	if err := frontier.Seed(seed); err != nil {
		return nil, fmt.Errorf("seed frontier: %w", err)
	}

	result := &Result{}

	for frontier.Budget() {
		pageURL, ok := frontier.Next()
		if !ok {
			break
		}

		if ctx.Err() != nil {
			// Put the popped URL back for the next run before stopping.
			_ = frontier.Seed(pageURL)
			result.Interrupted = true
			break
		}

		fetched, err := c.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				_ = frontier.Seed(pageURL)
				result.Interrupted = true
				break
			}
			// Fetch failures are permanent for this URL: mark it visited
			// so it is not retried forever, and keep crawling.
			c.logger.Warn("fetch failed", "url", pageURL, "error", err)
			result.FetchFailures++
			frontier.MarkVisited(pageURL)
			if err := c.maybeCheckpoint(frontier, linkMap, entries); err != nil {
				return result, err
			}
			continue
		}

		page := c.buildPage(pageURL, fetched)

		if err := c.store.Put(page); err != nil {
			return result, fmt.Errorf("store page %s: %w", pageURL, err)
		}
		result.PagesStored++

		linkMap.Add(page.URL, page.Links...)
		frontier.Enqueue(page.Links)
		frontier.MarkVisited(page.URL)

		entries[page.URL] = model.IndexEntry{
			URL:           page.URL,
			Title:         page.Title,
			OutgoingLinks: len(page.Links),
		}

		if c.archive != nil {
			if err := c.archive.RecordPage(ctx, page); err != nil {
				c.logger.Warn("archive record failed", "url", page.URL, "error", err)
			}
		}

		if c.progress != nil {
			fmt.Fprintf(c.progress, "[%d/%d] %s\n", frontier.Fetched(), c.maxPages, page.URL)
		}
		c.logger.Debug("page stored",
			"url", page.URL,
			"title", page.Title,
			"links", len(page.Links))

		if err := c.maybeCheckpoint(frontier, linkMap, entries); err != nil {
			return result, err
		}
	}

	if err := c.checkpoint(frontier, linkMap, entries); err != nil {
		return result, err
	}

	result.VisitedTotal = frontier.VisitedCount()
	result.QueueRemaining = frontier.QueueLen()
	return result, nil
}

// buildPage turns a fetch result into a page record. Parse problems
// degrade to an empty record rather than failing the page: the fetch
// happened, so the URL must count against the visited set either way.
func (c *Crawler) buildPage(pageURL string, fetched *FetchResult) *model.Page {
	page := &model.Page{
		URL:       pageURL,
		Links:     make([]string, 0),
		FetchedAt: time.Now().UTC(),
	}

	if !isHTML(fetched.ContentType) {
		c.logger.Debug("non-HTML page stored without text",
			"url", pageURL,
			"content_type", fetched.ContentType)
		return page
	}

	parsed, err := c.parser.Parse(pageURL, bytes.NewReader(fetched.Body))
	if err != nil {
		c.logger.Warn("parse failed, storing empty record", "url", pageURL, "error", err)
		return page
	}

	page.Title = parsed.Title
	page.Text = parsed.Text
	page.Links = c.filterLinks(parsed.Links)
	return page
}

// filterLinks drops links the crawl must not follow: binary assets by
// extension and paths matching the configured ignore patterns.
func (c *Crawler) filterLinks(links []string) []string {
	out := make([]string, 0, len(links))
	for _, link := range links {
		if c.allowed(link) {
			out = append(out, link)
		}
	}
	return out
}

// allowed checks a link against the skip extension list and ignore patterns.
func (c *Crawler) allowed(link string) bool {
	path := strings.ToLower(urlPath(link))

	for _, ext := range c.skipExtensions {
		if strings.HasSuffix(path, strings.ToLower(ext)) {
			return false
		}
	}
	for _, pattern := range c.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}
	return true
}

// maybeCheckpoint persists frontier state when the fetch count crosses a
// checkpoint boundary.
func (c *Crawler) maybeCheckpoint(f *Frontier, lm model.LinkMap, entries map[string]model.IndexEntry) error {
	if c.checkpointEvery <= 0 || f.Fetched() == 0 || f.Fetched()%c.checkpointEvery != 0 {
		return nil
	}
	return c.checkpoint(f, lm, entries)
}

// checkpoint replaces the persisted frontier state, link map, and index.
// State files are rewritten wholesale; pages were already written one by
// one as they arrived.
func (c *Crawler) checkpoint(f *Frontier, lm model.LinkMap, entries map[string]model.IndexEntry) error {
	visited, queue := f.Snapshot()
	sort.Strings(visited)

	if err := c.store.SaveFrontier(visited, queue); err != nil {
		return fmt.Errorf("checkpoint frontier: %w", err)
	}
	if err := c.store.SaveLinkMap(lm); err != nil {
		return fmt.Errorf("checkpoint link map: %w", err)
	}
	if err := c.store.SaveIndex(buildIndex(entries)); err != nil {
		return fmt.Errorf("checkpoint index: %w", err)
	}

	c.logger.Debug("checkpoint written",
		"visited", len(visited),
		"pending", len(queue),
		"pages", len(entries))
	return nil
}

// buildIndex assembles the archive index with entries sorted by URL.
func buildIndex(entries map[string]model.IndexEntry) *model.Index {
	urls := make([]string, 0, len(entries))
	for u := range entries {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	idx := &model.Index{
		TotalPages: len(urls),
		Pages:      make([]model.IndexEntry, 0, len(urls)),
	}
	for _, u := range urls {
		idx.Pages = append(idx.Pages, entries[u])
	}
	return idx
}

// isHTML reports whether a Content-Type header names an HTML document.
// An absent header is treated as HTML and left to the parser to judge.
func isHTML(contentType string) bool {
	return contentType == "" ||
		strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml+xml")
}

// urlPath extracts the path component for filtering. Errors yield the raw
// string so malformed links can still match skip rules.
func urlPath(link string) string {
	if i := strings.Index(link, "://"); i >= 0 {
		rest := link[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			return rest[j:]
		}
		return "/"
	}
	return link
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/search/*" matches "/search/results", "/search/advanced"
//   - "*.cgi" matches "/cgi-bin/view.cgi"
func matchPattern(pattern, path string) bool {
	// Handle prefix patterns like "/search/*" matching any depth below.
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	// Handle extension patterns like "*.cgi" anywhere in the tree.
	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Also try matching just the filename for patterns like "*.cgi"
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}
