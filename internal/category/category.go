package category

import (
	"net/url"
	"strings"

	"github.com/docmap-dev/docmap/internal/model"
)

// Default is the category for pages at the base path itself and for URLs
// whose shape defies segmentation.
const Default = "overview"

// Categorize derives a category label from a page URL.
//
// The label is the first path segment after the base path. The base path
// itself maps to Default, as does the site root. URLs outside the base
// path fall back to their first path segment, so every same-site URL maps
// to exactly one category and the function never fails.
//
// Design decision: We categorize from the URL path rather than page
// content because:
//  1. Documentation sites encode their section structure in the path
//  2. The label is stable across content edits
//  3. The mapping stays total even for pages with empty text
func Categorize(pageURL, basePath string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Default
	}

	path := u.Path
	base := normalizeBase(basePath)

	// Inside the base path, categorize by the segment after it.
	if base != "" {
		if path == base {
			return Default
		}
		if strings.HasPrefix(path, base+"/") {
			path = path[len(base):]
		}
	}

	if segment := firstSegment(path); segment != "" {
		return segment
	}
	return Default
}

// Group buckets URLs by category, preserving the given URL order within
// each bucket. Callers pass URLs sorted so the buckets are deterministic.
func Group(urls []string, basePath string) model.Categories {
	categories := make(model.Categories)
	for _, u := range urls {
		label := Categorize(u, basePath)
		categories[label] = append(categories[label], u)
	}
	return categories
}

// normalizeBase trims a base path to the comparable "/segment" form.
// Empty and root base paths mean no base at all.
func normalizeBase(basePath string) string {
	base := strings.TrimSpace(basePath)
	if base == "" || base == "/" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimSuffix(base, "/")
}

// firstSegment returns the first non-empty path segment.
func firstSegment(path string) string {
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			return segment
		}
	}
	return ""
}
