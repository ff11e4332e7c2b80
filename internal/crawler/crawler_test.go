package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docmap-dev/docmap/internal/model"
)

// memStore is an in-memory PageStore for crawl tests.
type memStore struct {
	pages    []*model.Page
	visited  []string
	queue    []string
	linkMap  model.LinkMap
	index    *model.Index
	saves    int
	hasState bool
	putErr   error
}

func newMemStore() *memStore {
	return &memStore{linkMap: make(model.LinkMap)}
}

func (m *memStore) Put(page *model.Page) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.pages = append(m.pages, page)
	return nil
}

func (m *memStore) SaveFrontier(visited, queue []string) error {
	m.visited = visited
	m.queue = queue
	m.saves++
	return nil
}

func (m *memStore) LoadFrontier() ([]string, []string, error) {
	return m.visited, m.queue, nil
}

func (m *memStore) SaveLinkMap(lm model.LinkMap) error {
	m.linkMap = lm
	return nil
}

func (m *memStore) LoadLinkMap() (model.LinkMap, error) {
	return m.linkMap, nil
}

func (m *memStore) SaveIndex(idx *model.Index) error {
	m.index = idx
	return nil
}

func (m *memStore) LoadIndex() (*model.Index, error) {
	if m.index == nil {
		return &model.Index{}, nil
	}
	return m.index, nil
}

func (m *memStore) HasState() bool { return m.hasState }

func (m *memStore) storedURLs() []string {
	urls := make([]string, 0, len(m.pages))
	for _, p := range m.pages {
		urls = append(urls, p.URL)
	}
	return urls
}

// TestFrontier tests queue ordering, deduplication, and the fetch budget.
func TestFrontier(t *testing.T) {
	t.Parallel()

	t.Run("pops in discovery order", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("docs.example.edu", 100)
		f.Enqueue([]string{
			"https://docs.example.edu/a",
			"https://docs.example.edu/b",
			"https://docs.example.edu/c",
		})

		want := []string{
			"https://docs.example.edu/a",
			"https://docs.example.edu/b",
			"https://docs.example.edu/c",
		}
		for _, w := range want {
			got, ok := f.Next()
			if !ok {
				t.Fatalf("queue drained early, wanted %q", w)
			}
			if got != w {
				t.Errorf("expected %q, got %q", w, got)
			}
		}
		if _, ok := f.Next(); ok {
			t.Error("expected empty queue after draining")
		}
	})

	t.Run("seed canonicalizes before queuing", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("docs.example.edu", 100)
		if err := f.Seed("HTTPS://DOCS.EXAMPLE.EDU/Arc/#section"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, ok := f.Next()
		if !ok {
			t.Fatal("expected one queued URL")
		}
		if got != "https://docs.example.edu/Arc" {
			t.Errorf("expected canonical URL, got %q", got)
		}
	})

	t.Run("seed drops already visited URL", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("docs.example.edu", 100)
		f.MarkVisited("https://docs.example.edu/arc")

		if err := f.Seed("https://docs.example.edu/arc"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.QueueLen() != 0 {
			t.Errorf("expected empty queue, got %d entries", f.QueueLen())
		}
	})

	t.Run("enqueue rejects other hosts", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("docs.example.edu", 100)
		f.Enqueue([]string{
			"https://docs.example.edu/keep",
			"https://other.example.edu/drop",
			"https://example.com/drop",
		})

		if f.QueueLen() != 1 {
			t.Errorf("expected 1 queued URL, got %d", f.QueueLen())
		}
	})

	t.Run("enqueue rejects visited and queued URLs", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("docs.example.edu", 100)
		f.MarkVisited("https://docs.example.edu/old")
		f.Enqueue([]string{
			"https://docs.example.edu/old",
			"https://docs.example.edu/new",
			"https://docs.example.edu/new",
		})

		if f.QueueLen() != 1 {
			t.Errorf("expected 1 queued URL, got %d", f.QueueLen())
		}
	})

	t.Run("enqueue stops when budget is spent", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("docs.example.edu", 2)
		f.MarkVisited("https://docs.example.edu/a")
		f.MarkVisited("https://docs.example.edu/b")

		f.Enqueue([]string{"https://docs.example.edu/c"})
		if f.QueueLen() != 0 {
			t.Errorf("expected no queued URLs past the budget, got %d", f.QueueLen())
		}
	})

	t.Run("budget spends on mark visited only", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("docs.example.edu", 2)
		f.Enqueue([]string{
			"https://docs.example.edu/a",
			"https://docs.example.edu/b",
			"https://docs.example.edu/c",
		})

		if !f.Budget() {
			t.Fatal("expected budget before any fetch")
		}
		f.MarkVisited("https://docs.example.edu/a")
		if !f.Budget() {
			t.Error("expected budget after one of two fetches")
		}
		f.MarkVisited("https://docs.example.edu/b")
		if f.Budget() {
			t.Error("expected spent budget after two fetches")
		}
	})

	t.Run("restore discards queue entries already visited", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("docs.example.edu", 100)
		f.Restore(
			[]string{"https://docs.example.edu/done"},
			[]string{
				"https://docs.example.edu/done",
				"https://docs.example.edu/pending",
				"https://docs.example.edu/pending",
			},
		)

		if f.QueueLen() != 1 {
			t.Errorf("expected 1 pending URL, got %d", f.QueueLen())
		}
		if !f.Visited("https://docs.example.edu/done") {
			t.Error("expected restored URL to be visited")
		}
		if f.Fetched() != 0 {
			t.Errorf("expected fresh fetch counter, got %d", f.Fetched())
		}
	})

	t.Run("snapshot round-trips through restore", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("docs.example.edu", 100)
		f.MarkVisited("https://docs.example.edu/a")
		f.Enqueue([]string{"https://docs.example.edu/b", "https://docs.example.edu/c"})

		visited, queue := f.Snapshot()

		g := NewFrontier("docs.example.edu", 100)
		g.Restore(visited, queue)

		if g.VisitedCount() != 1 {
			t.Errorf("expected 1 visited URL, got %d", g.VisitedCount())
		}
		if g.QueueLen() != 2 {
			t.Errorf("expected 2 queued URLs, got %d", g.QueueLen())
		}
		got, _ := g.Next()
		if got != "https://docs.example.edu/b" {
			t.Errorf("expected FIFO order to survive restore, got %q", got)
		}
	})
}

// TestFetcher tests the HTTP client wrapper.
func TestFetcher(t *testing.T) {
	t.Parallel()

	t.Run("sends identifying headers", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html></html>`)) //nolint:errcheck
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), WithDelay(0), WithUserAgent("docmap-test/1.0"))
		result, err := fetcher.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotUA != "docmap-test/1.0" {
			t.Errorf("expected custom User-Agent, got %q", gotUA)
		}
		if result.ContentType != "text/html" {
			t.Errorf("expected text/html content type, got %q", result.ContentType)
		}
	})

	t.Run("rejects non-success status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), WithDelay(0))
		_, err := fetcher.Fetch(context.Background(), server.URL)
		if !errors.Is(err, ErrBadStatus) {
			t.Errorf("expected ErrBadStatus, got %v", err)
		}
	})

	t.Run("caps body size", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 4096))) //nolint:errcheck
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), WithDelay(0), WithMaxBodySize(1024))
		result, err := fetcher.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Body) != 1024 {
			t.Errorf("expected 1024 byte body, got %d", len(result.Body))
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(500 * time.Millisecond)
			_, _ = w.Write([]byte(`<html></html>`)) //nolint:errcheck
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), WithDelay(0))
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := fetcher.Fetch(ctx, server.URL)
		if err == nil {
			t.Error("expected error from cancelled fetch")
		}
	})
}

// TestParser tests HTML parsing functionality.
func TestParser(t *testing.T) {
	t.Parallel()

	t.Run("extracts title", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title> ARC Overview </title></head><body></body></html>`
		parser := NewParser("div.region-content")

		result, err := parser.Parse("https://docs.example.edu/arc", strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if result.Title != "ARC Overview" {
			t.Errorf("expected title 'ARC Overview', got %q", result.Title)
		}
	})

	t.Run("splits links by host", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/internal">Internal Link</a>
			<a href="https://docs.example.edu/same">Same Site</a>
			<a href="https://other.example.edu/away">Other Subdomain</a>
			<a href="https://example.com/away">Different Domain</a>
		</body></html>`

		parser := NewParser("div.region-content")
		result, err := parser.Parse("https://docs.example.edu/page", strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(result.Links) != 2 {
			t.Errorf("expected 2 same-site links, got %d: %v", len(result.Links), result.Links)
		}
		if len(result.ExternalLinks) != 2 {
			t.Errorf("expected 2 external links, got %d: %v", len(result.ExternalLinks), result.ExternalLinks)
		}
	})

	t.Run("canonicalizes and dedupes links", func(t *testing.T) {
		t.Parallel()

		// Four spellings of the same page collapse to one canonical link.
		html := `<html><body>
			<a href="/guide">One</a>
			<a href="/guide/">Two</a>
			<a href="/guide#install">Three</a>
			<a href="/guide?ref=nav">Four</a>
		</body></html>`

		parser := NewParser("div.region-content")
		result, err := parser.Parse("https://docs.example.edu/page", strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(result.Links) != 1 {
			t.Fatalf("expected 1 deduplicated link, got %d: %v", len(result.Links), result.Links)
		}
		if result.Links[0] != "https://docs.example.edu/guide" {
			t.Errorf("expected canonical link, got %q", result.Links[0])
		}
	})

	t.Run("skips unusable schemes", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="javascript:void(0)">JS</a>
			<a href="mailto:arc@example.edu">Mail</a>
			<a href="tel:+15551234567">Phone</a>
			<a href="#">Anchor</a>
			<a href="/real">Real</a>
		</body></html>`

		parser := NewParser("div.region-content")
		result, err := parser.Parse("https://docs.example.edu/page", strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(result.Links) != 1 {
			t.Errorf("expected 1 link, got %d: %v", len(result.Links), result.Links)
		}
	})

	t.Run("prefers the configured content region", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<nav>Site navigation here</nav>
			<div class="region-content"><p>Real content.</p></div>
			<footer>Copyright footer</footer>
		</body></html>`

		parser := NewParser("div.region-content")
		result, err := parser.Parse("https://docs.example.edu/page", strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if result.Text != "Real content." {
			t.Errorf("expected content region text only, got %q", result.Text)
		}
	})

	t.Run("falls back through main then body", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<main><p>Main element content.</p></main>
		</body></html>`

		parser := NewParser("div.region-content")
		result, err := parser.Parse("https://docs.example.edu/page", strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if result.Text != "Main element content." {
			t.Errorf("expected main element text, got %q", result.Text)
		}
	})

	t.Run("drops scripts and chrome from content", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<div class="region-content">
				<script>var tracking = true;</script>
				<style>p { color: red; }</style>
				<nav>Section menu</nav>
				<p>Visible text.</p>
			</div>
		</body></html>`

		parser := NewParser("div.region-content")
		result, err := parser.Parse("https://docs.example.edu/page", strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if result.Text != "Visible text." {
			t.Errorf("expected scripts and chrome removed, got %q", result.Text)
		}
	})

	t.Run("separates blocks with blank lines", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div class="region-content">
			<h1>Services</h1>
			<p>First paragraph
			wraps across source lines.</p>
			<p>Second paragraph.</p>
		</div></body></html>`

		parser := NewParser("div.region-content")
		result, err := parser.Parse("https://docs.example.edu/page", strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		want := "Services\n\nFirst paragraph wraps across source lines.\n\nSecond paragraph."
		if result.Text != want {
			t.Errorf("expected %q, got %q", want, result.Text)
		}
	})

	t.Run("nested blocks do not duplicate text", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div class="region-content">
			<div><div><p>Once only.</p></div></div>
		</div></body></html>`

		parser := NewParser("div.region-content")
		result, err := parser.Parse("https://docs.example.edu/page", strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if result.Text != "Once only." {
			t.Errorf("expected single occurrence, got %q", result.Text)
		}
	})
}

// TestCrawler tests the crawl loop end to end against a local server.
func TestCrawler(t *testing.T) {
	t.Parallel()

	t.Run("crawls a site breadth-first", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			//nolint:errcheck // test handler
			_, _ = w.Write([]byte(`<html><head><title>Home</title></head><body><div class="region-content"><a href="/a">A</a><a href="/b">B</a></div></body></html>`))
		})
		mux.HandleFunc("/a", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			//nolint:errcheck // test handler
			_, _ = w.Write([]byte(`<html><head><title>A</title></head><body><div class="region-content"><a href="/b">B</a></div></body></html>`))
		})
		mux.HandleFunc("/b", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><title>B</title></head><body>B</body></html>`)) //nolint:errcheck
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		store := newMemStore()
		c := NewCrawler(
			NewFetcher(server.Client(), WithDelay(0)),
			NewParser("div.region-content"),
			store,
		)

		result, err := c.Crawl(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.PagesStored != 3 {
			t.Errorf("expected 3 pages stored, got %d", result.PagesStored)
		}
		if result.VisitedTotal != 3 {
			t.Errorf("expected 3 visited URLs, got %d", result.VisitedTotal)
		}
		if result.QueueRemaining != 0 {
			t.Errorf("expected drained queue, got %d remaining", result.QueueRemaining)
		}

		// Seed first, then its links in document order.
		urls := store.storedURLs()
		if len(urls) != 3 || !strings.HasSuffix(urls[1], "/a") || !strings.HasSuffix(urls[2], "/b") {
			t.Errorf("expected breadth-first order [seed /a /b], got %v", urls)
		}
	})

	t.Run("stops at the page budget but keeps discovered links", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			//nolint:errcheck // test handler
			_, _ = w.Write([]byte(`<html><head><title>Home</title></head><body><div class="region-content"><a href="/one">1</a><a href="/two">2</a></div></body></html>`))
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		store := newMemStore()
		c := NewCrawler(
			NewFetcher(server.Client(), WithDelay(0)),
			NewParser("div.region-content"),
			store,
			WithMaxPages(1),
		)

		result, err := c.Crawl(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.PagesStored != 1 {
			t.Errorf("expected 1 page stored, got %d", result.PagesStored)
		}
		if result.VisitedTotal != 1 {
			t.Errorf("expected 1 visited URL, got %d", result.VisitedTotal)
		}
		// The single in-budget page still contributes its links to the
		// pending queue so a later run can pick them up.
		if result.QueueRemaining != 2 {
			t.Errorf("expected 2 pending URLs, got %d", result.QueueRemaining)
		}
		if len(store.queue) != 2 {
			t.Errorf("expected 2 persisted pending URLs, got %v", store.queue)
		}
	})

	t.Run("records failed fetches as visited and continues", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			//nolint:errcheck // test handler
			_, _ = w.Write([]byte(`<html><body><div class="region-content"><a href="/gone">Gone</a><a href="/ok">OK</a></div></body></html>`))
		})
		mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		})
		mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><title>OK</title></head><body>fine</body></html>`)) //nolint:errcheck
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		store := newMemStore()
		c := NewCrawler(
			NewFetcher(server.Client(), WithDelay(0)),
			NewParser("div.region-content"),
			store,
		)

		result, err := c.Crawl(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.FetchFailures != 1 {
			t.Errorf("expected 1 fetch failure, got %d", result.FetchFailures)
		}
		if result.PagesStored != 2 {
			t.Errorf("expected 2 pages stored, got %d", result.PagesStored)
		}
		// The failed URL is visited so no later run retries it, but no
		// page record exists for it.
		if result.VisitedTotal != 3 {
			t.Errorf("expected 3 visited URLs, got %d", result.VisitedTotal)
		}
		for _, u := range store.storedURLs() {
			if strings.HasSuffix(u, "/gone") {
				t.Errorf("expected no page record for failed URL, got %v", store.storedURLs())
			}
		}
	})

	t.Run("resumes without refetching visited pages", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		hits := make(map[string]int)

		mux := http.NewServeMux()
		count := func(path string, body string) {
			mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				hits[r.URL.Path]++
				mu.Unlock()
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte(body)) //nolint:errcheck
			})
		}
		count("/", `<html><body><div class="region-content"><a href="/done">Done</a><a href="/fresh">Fresh</a></div></body></html>`)
		count("/done", `<html><body>already archived</body></html>`)
		count("/fresh", `<html><body>new page</body></html>`)

		server := httptest.NewServer(mux)
		defer server.Close()

		store := newMemStore()
		store.hasState = true
		store.visited = []string{server.URL + "/done"}

		c := NewCrawler(
			NewFetcher(server.Client(), WithDelay(0)),
			NewParser("div.region-content"),
			store,
		)

		if _, err := c.Crawl(context.Background(), server.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if hits["/done"] != 0 {
			t.Errorf("expected no fetch of visited URL, got %d hits", hits["/done"])
		}
		if hits["/fresh"] != 1 {
			t.Errorf("expected 1 fetch of fresh URL, got %d hits", hits["/fresh"])
		}
	})

	t.Run("retries pending queue from previous run", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body>home</body></html>`)) //nolint:errcheck
		})
		mux.HandleFunc("/pending", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><title>Pending</title></head><body>queued earlier</body></html>`)) //nolint:errcheck
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		store := newMemStore()
		store.hasState = true
		store.queue = []string{server.URL + "/pending"}

		c := NewCrawler(
			NewFetcher(server.Client(), WithDelay(0)),
			NewParser("div.region-content"),
			store,
		)

		result, err := c.Crawl(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.PagesStored != 2 {
			t.Errorf("expected restored queue entry plus seed, got %d pages", result.PagesStored)
		}
	})

	t.Run("stores non-HTML responses without text", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"not": "html"}`)) //nolint:errcheck
		}))
		defer server.Close()

		store := newMemStore()
		c := NewCrawler(
			NewFetcher(server.Client(), WithDelay(0)),
			NewParser("div.region-content"),
			store,
		)

		result, err := c.Crawl(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.PagesStored != 1 {
			t.Fatalf("expected 1 page stored, got %d", result.PagesStored)
		}
		page := store.pages[0]
		if page.Text != "" || len(page.Links) != 0 {
			t.Errorf("expected empty text and links for non-HTML page, got %q with %d links", page.Text, len(page.Links))
		}
	})

	t.Run("filters skipped extensions and ignored paths", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			//nolint:errcheck // test handler
			_, _ = w.Write([]byte(`<html><body><div class="region-content">
				<a href="/manual.pdf">PDF</a>
				<a href="/search/results">Search</a>
				<a href="/keep">Keep</a>
			</div></body></html>`))
		})
		mux.HandleFunc("/keep", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body>kept</body></html>`)) //nolint:errcheck
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		store := newMemStore()
		c := NewCrawler(
			NewFetcher(server.Client(), WithDelay(0)),
			NewParser("div.region-content"),
			store,
			WithSkipExtensions([]string{".pdf"}),
			WithIgnorePatterns([]string{"/search/*"}),
		)

		result, err := c.Crawl(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.PagesStored != 2 {
			t.Errorf("expected seed and /keep only, got %d pages: %v", result.PagesStored, store.storedURLs())
		}
	})

	t.Run("checkpoints during the run", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			//nolint:errcheck // test handler
			_, _ = w.Write([]byte(`<html><body><div class="region-content"><a href="/a">A</a><a href="/b">B</a></div></body></html>`))
		})
		for _, path := range []string{"/a", "/b"} {
			mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte(`<html><body>page</body></html>`)) //nolint:errcheck
			})
		}

		server := httptest.NewServer(mux)
		defer server.Close()

		store := newMemStore()
		c := NewCrawler(
			NewFetcher(server.Client(), WithDelay(0)),
			NewParser("div.region-content"),
			store,
			WithCheckpointEvery(1),
		)

		if _, err := c.Crawl(context.Background(), server.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// One checkpoint per page plus the final checkpoint.
		if store.saves < 3 {
			t.Errorf("expected at least 3 frontier saves, got %d", store.saves)
		}
		if store.index == nil || store.index.TotalPages != 3 {
			t.Errorf("expected final index with 3 pages, got %+v", store.index)
		}
	})

	t.Run("fails fast when the store rejects a page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body>page</body></html>`)) //nolint:errcheck
		}))
		defer server.Close()

		store := newMemStore()
		store.putErr = errors.New("disk full")

		c := NewCrawler(
			NewFetcher(server.Client(), WithDelay(0)),
			NewParser("div.region-content"),
			store,
		)

		if _, err := c.Crawl(context.Background(), server.URL); err == nil {
			t.Error("expected error when page write fails")
		}
	})

	t.Run("builds link map from stored pages", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			//nolint:errcheck // test handler
			_, _ = w.Write([]byte(`<html><body><div class="region-content"><a href="/leaf">Leaf</a></div></body></html>`))
		})
		mux.HandleFunc("/leaf", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body>no links here</body></html>`)) //nolint:errcheck
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		store := newMemStore()
		c := NewCrawler(
			NewFetcher(server.Client(), WithDelay(0)),
			NewParser("div.region-content"),
			store,
		)

		if _, err := c.Crawl(context.Background(), server.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(store.linkMap) != 2 {
			t.Fatalf("expected 2 link map sources, got %d", len(store.linkMap))
		}
		// The leaf page has an entry even though it links to nothing.
		leaf := server.URL + "/leaf"
		if dests, ok := store.linkMap[leaf]; !ok || len(dests) != 0 {
			t.Errorf("expected empty destination list for %q, got %v", leaf, store.linkMap)
		}
	})

	t.Run("rejects invalid start URL", func(t *testing.T) {
		t.Parallel()

		c := NewCrawler(
			NewFetcher(http.DefaultClient, WithDelay(0)),
			NewParser("div.region-content"),
			newMemStore(),
		)

		if _, err := c.Crawl(context.Background(), "://bad"); err == nil {
			t.Error("expected error for invalid start URL")
		}
	})
}

// TestCrawlerInterruption tests that cancellation preserves frontier state.
func TestCrawlerInterruption(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		var links strings.Builder
		for i := 0; i < 10; i++ {
			fmt.Fprintf(&links, `<a href="/page%d">%d</a>`, i, i)
		}
		//nolint:errcheck // test handler
		_, _ = w.Write([]byte(`<html><body><div class="region-content">` + links.String() + `</div></body></html>`))
	})
	for i := 0; i < 10; i++ {
		mux.HandleFunc(fmt.Sprintf("/page%d", i), func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(50 * time.Millisecond)
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body>page</body></html>`)) //nolint:errcheck
		})
	}

	server := httptest.NewServer(mux)
	defer server.Close()

	store := newMemStore()
	c := NewCrawler(
		NewFetcher(server.Client(), WithDelay(0)),
		NewParser("div.region-content"),
		store,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	result, err := c.Crawl(ctx, server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Interrupted {
		t.Error("expected interrupted result")
	}
	// The final checkpoint ran: whatever was not fetched is persisted as
	// pending, so a later run loses nothing.
	if len(store.visited)+len(store.queue) < 11 {
		t.Errorf("expected all 11 URLs accounted for, got %d visited and %d pending",
			len(store.visited), len(store.queue))
	}
}

// TestMatchPattern tests URL path glob matching.
func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		// Prefix patterns with /*
		{"search prefix match", "/search/*", "/search/results", true},
		{"search prefix exact", "/search/*", "/search", true},
		{"search prefix no match", "/search/*", "/guides/profile", false},
		{"search prefix partial no match", "/search/*", "/searching", false},

		// Extension patterns with *.
		{"cgi extension", "*.cgi", "/cgi-bin/view.cgi", true},
		{"cgi extension nested", "*.cgi", "/a/b/c/report.cgi", true},
		{"cgi extension no match", "*.cgi", "/docs/file.txt", false},

		// Exact match patterns
		{"exact match", "/logout", "/logout", true},
		{"exact no match", "/logout", "/login", false},

		// Wildcard in middle
		{"wildcard middle", "/api/v?/users", "/api/v1/users", true},
		{"wildcard middle no match", "/api/v?/users", "/api/v10/users", false},

		// Root path
		{"root path", "/", "/", true},
		{"root no match prefix", "/search/*", "/", false},

		// Nested prefix
		{"nested search", "/search/*", "/search/results/page2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := matchPattern(tt.pattern, tt.path)
			if got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

// TestIsHTML tests content type detection.
func TestIsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		want        bool
	}{
		{"plain html", "text/html", true},
		{"html with charset", "text/html; charset=utf-8", true},
		{"xhtml", "application/xhtml+xml", true},
		{"absent header", "", true},
		{"json", "application/json", false},
		{"pdf", "application/pdf", false},
		{"plain text", "text/plain", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isHTML(tt.contentType); got != tt.want {
				t.Errorf("isHTML(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}
