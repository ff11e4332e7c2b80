package crawler

import (
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/docmap-dev/docmap/internal/urlutil"
)

// nonContentSelector matches elements that never carry document text.
// They are removed from the content region before text extraction.
const nonContentSelector = "script, style, noscript, nav, header, footer"

// contentFallbacks are tried in order when the configured content selector
// matches nothing on a page.
var contentFallbacks = []string{"main", "article", "body"}

// Parser extracts the title, content text, and links from HTML pages.
//
// Design decision: We use goquery for region selection and x/net/html for
// text walking rather than regex because:
//  1. Documentation sites wrap content in theme-specific containers that a
//     CSS selector pins down precisely
//  2. goquery correctly handles malformed HTML common on the web
//  3. Walking the DOM lets us preserve paragraph boundaries, which the
//     knowledge extractor depends on
type Parser struct {
	// contentSelector is the CSS selector for the main content region.
	contentSelector string
}

// ParseResult contains all information extracted from an HTML page.
//
// Design decision: We return a comprehensive result struct rather than
// multiple methods because:
//  1. Single parsing pass is more efficient
//  2. Related data can be collected together
//  3. Caller can choose what to use
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// Text is the plain text of the content region. Blocks are separated
	// by blank lines so paragraph structure survives into the archive.
	Text string

	// Links contains the canonical same-site URLs found in anchor tags,
	// in document order with duplicates removed.
	Links []string

	// ExternalLinks contains canonical URLs pointing off-site.
	ExternalLinks []string
}

// NewParser creates a parser that extracts content from the region matched
// by the given CSS selector, falling back to main, article, then body.
func NewParser(contentSelector string) *Parser {
	return &Parser{contentSelector: contentSelector}
}

// Parse parses HTML content fetched from pageURL and extracts the title,
// the content text, and the classified links.
func (p *Parser) Parse(pageURL string, content io.Reader) (*ParseResult, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Links:         make([]string, 0),
		ExternalLinks: make([]string, 0),
	}

	result.Title = strings.TrimSpace(doc.Find("title").First().Text())

	// Links are collected from the whole document, not just the content
	// region: navigation menus are how most documentation pages reach
	// their siblings.
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}
		canonical, err := urlutil.Canonicalize(resolved)
		if err != nil || seen[canonical] {
			return
		}
		seen[canonical] = true
		if urlutil.SameSite(base.Host, canonical) {
			result.Links = append(result.Links, canonical)
		} else {
			result.ExternalLinks = append(result.ExternalLinks, canonical)
		}
	})

	result.Text = p.extractContentText(doc)

	return result, nil
}

// extractContentText locates the content region and converts it to plain
// text with paragraph boundaries preserved.
func (p *Parser) extractContentText(doc *goquery.Document) string {
	region := doc.Find(p.contentSelector).First()
	for _, fallback := range contentFallbacks {
		if region.Length() > 0 {
			break
		}
		region = doc.Find(fallback).First()
	}
	if region.Length() == 0 {
		return ""
	}

	region.Find(nonContentSelector).Remove()

	blocks := make([]string, 0)
	for _, node := range region.Nodes {
		blocks = appendBlocks(blocks, node)
	}
	return strings.Join(blocks, "\n\n")
}

// blockElements are HTML elements that start a new text block.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "dl": true, "dt": true, "dd": true,
	"table": true, "tr": true, "td": true, "th": true,
	"pre": true, "blockquote": true, "figcaption": true,
	"br": true, "hr": true,
}

// skippedElements are subtrees that contribute no document text.
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"template": true, "iframe": true, "svg": true,
}

// appendBlocks walks the DOM below n and appends one entry per text block.
// Text nodes accumulate into the current block; entering or leaving a block
// element flushes it. Because text lands in exactly one flush, nested block
// elements never duplicate content.
func appendBlocks(blocks []string, n *html.Node) []string {
	var current strings.Builder

	flush := func() {
		if s := collapseSpace(current.String()); s != "" {
			blocks = append(blocks, s)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			current.WriteString(node.Data)
			current.WriteString(" ")
			return
		case html.ElementNode:
			if skippedElements[node.Data] {
				return
			}
			if blockElements[node.Data] {
				flush()
			}
		}

		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if node.Type == html.ElementNode && blockElements[node.Data] {
			flush()
		}
	}

	walk(n)
	flush()
	return blocks
}

// spaceRegex collapses runs of whitespace left by HTML source formatting.
var spaceRegex = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}

// resolveURL resolves a relative href against the page URL.
//
// Design decision: We resolve URLs rather than storing them as-is because:
//  1. Makes deduplication easier
//  2. Allows proper same-site classification
//  3. Reduces ambiguity in the archive
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		href == "#" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(u)
	if !urlutil.IsHTTP(resolved.String()) {
		return ""
	}
	return resolved.String()
}
