package model

import (
	"strings"
	"time"
)

// Page represents a crawled documentation page.
// This is the durable unit of the crawl archive: one Page, one JSON file.
//
// Design decision: We store extracted text rather than raw HTML because:
//  1. The processing phase works on text (categorization, knowledge
//     extraction, rendering), never on markup
//  2. Text records are an order of magnitude smaller than raw pages
//  3. Whole-record replace stays cheap when a page is re-crawled
type Page struct {
	// URL is the canonical URL of the page. It is the page's identity
	// across the visited set, the link map, and the graph.
	URL string `json:"url"`

	// Title is the page title from the <title> tag.
	// Empty when the page had none or parsing failed.
	Title string `json:"title"`

	// Text is the extracted plain text of the main content region.
	// Blocks are separated by newlines. Empty when parsing failed.
	Text string `json:"text"`

	// Links holds the canonical same-site URLs the page links to,
	// in document order with duplicates removed.
	Links []string `json:"links"`

	// FetchedAt is the UTC time the page was fetched.
	FetchedAt time.Time `json:"fetched_at"`
}

// HasText reports whether any content text was extracted.
func (p *Page) HasText() bool {
	return strings.TrimSpace(p.Text) != ""
}

// Paragraphs splits the page text into blocks separated by blank lines.
// Leading and trailing whitespace is trimmed from each block and empty
// blocks are dropped.
func (p *Page) Paragraphs() []string {
	parts := strings.Split(p.Text, "\n\n")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Index summarizes a crawl archive. It is written as index.json next to
// the page files: once by the crawler with categories still empty, then
// again by the processor with categories filled in.
type Index struct {
	// TotalPages is the number of stored pages.
	TotalPages int `json:"total_pages"`

	// Pages lists one summary entry per stored page.
	Pages []IndexEntry `json:"pages"`
}

// IndexEntry is one page's summary line in the index.
type IndexEntry struct {
	// URL is the page's canonical URL.
	URL string `json:"url"`

	// Title is the page title.
	Title string `json:"title"`

	// Category is the page's category label.
	// Empty until the processing phase assigns it.
	Category string `json:"category,omitempty"`

	// OutgoingLinks is the number of same-site links on the page.
	OutgoingLinks int `json:"outgoing_links"`
}
