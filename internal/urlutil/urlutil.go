package urlutil

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// Canonicalize reduces a URL to its canonical form.
//
// Design decision: We strip both fragment and query because:
//  1. Fragments never change the fetched document
//  2. On documentation sites, query parameters select presentation
//     (pagination, search highlighting), not distinct documents
//  3. One page must have exactly one identity across the visited set,
//     the store, the link map, and the graph
//
// The empty path becomes "/" and a trailing slash on any other path is
// trimmed, so "https://Docs.Example.org/arc/" and
// "https://docs.example.org/arc#top" canonicalize identically.
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = ""

	if u.Path == "" {
		u.Path = "/"
	} else if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	u.RawPath = ""

	return u.String(), nil
}

// SameSite reports whether a URL belongs to the given host.
// Comparison is case-insensitive and includes the port, so a staging
// instance on another port is a different site.
func SameSite(host, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

// IsHTTP reports whether the URL uses the http or https scheme.
// Links with mailto:, tel:, javascript: and similar schemes are not
// crawlable and should be discarded before they reach the frontier.
func IsHTTP(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// nonWordRegex matches every character that is unsafe in a file name.
var nonWordRegex = regexp.MustCompile(`[^\w\-.]`)

// maxSlugNameLen bounds the readable part of a slug so the full file name
// (slug + hash + extension) stays under common filesystem name limits.
const maxSlugNameLen = 120

// Slug converts a canonical URL into a file-name-safe identifier.
//
// The path has its slashes and other non-word characters replaced by
// underscores; the root path becomes "index". Because distinct paths can
// collapse to the same slug ("/a b" and "/a_b", or two deep paths cut at
// maxSlugNameLen), an 8-character hash of the full canonical URL is
// appended to keep slugs collision-free while staying readable and
// deterministic.
func Slug(canonicalURL string) string {
	name := "index"
	if u, err := url.Parse(canonicalURL); err == nil {
		p := strings.Trim(u.Path, "/")
		if p != "" {
			name = nonWordRegex.ReplaceAllString(p, "_")
		}
	}
	if len(name) > maxSlugNameLen {
		name = name[:maxSlugNameLen]
	}

	sum := sha256.Sum256([]byte(canonicalURL))
	return name + "-" + hex.EncodeToString(sum[:])[:8]
}

// PathSegments splits a URL path into its non-empty segments.
func PathSegments(path string) []string {
	segments := make([]string, 0)
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
