package knowledge

import (
	"regexp"
	"strings"

	"github.com/docmap-dev/docmap/internal/model"
)

// Kind selects which knowledge base set a vocabulary matcher feeds.
type Kind string

const (
	// KindService marks matched names as compute services.
	KindService Kind = "service"

	// KindResource marks matched names as storage resources.
	KindResource Kind = "resource"
)

// Default vocabularies, from the research computing sites the tool was
// first pointed at. Deployments with a different catalog build their own
// matchers with NewVocabMatcher.
var (
	// DefaultServices are the compute service names recognized out of the box.
	DefaultServices = []string{"Great Lakes", "Armis2", "Lighthouse"}

	// DefaultResources are the storage resource names recognized out of the box.
	DefaultResources = []string{"Turbo", "Locker", "Data Den"}
)

// VocabMatcher finds definition sentences for a fixed vocabulary of names.
//
// A page mentions a name when its text contains "<name> is <description>",
// matched case-insensitively with the name on a word boundary and the
// description running to the next period. The canonical spelling from the
// vocabulary is what lands in the knowledge base, so "great lakes is a
// cluster" and "Great Lakes is a cluster" count as the same service.
type VocabMatcher struct {
	name      string
	kind      Kind
	pattern   *regexp.Regexp
	canonical map[string]string
}

// NewVocabMatcher builds a matcher that feeds the given kind with names
// from vocab. An empty vocabulary matches nothing.
func NewVocabMatcher(kind Kind, vocab []string) *VocabMatcher {
	m := &VocabMatcher{
		name:      string(kind) + "-vocabulary",
		kind:      kind,
		canonical: make(map[string]string, len(vocab)),
	}

	quoted := make([]string, 0, len(vocab))
	for _, term := range vocab {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		m.canonical[strings.ToLower(term)] = term
		quoted = append(quoted, regexp.QuoteMeta(term))
	}
	if len(quoted) == 0 {
		return m
	}
	m.pattern = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\s+is\s+[^.]+`)
	return m
}

// NewServiceMatcher matches the default compute service vocabulary.
func NewServiceMatcher() *VocabMatcher {
	return NewVocabMatcher(KindService, DefaultServices)
}

// NewResourceMatcher matches the default storage resource vocabulary.
func NewResourceMatcher() *VocabMatcher {
	return NewVocabMatcher(KindResource, DefaultResources)
}

// Name implements Matcher.
func (m *VocabMatcher) Name() string { return m.name }

// Match implements Matcher. It reports each vocabulary name at most once
// per page, in first-mention order.
func (m *VocabMatcher) Match(page *model.Page) (Contribution, error) {
	var c Contribution
	if m.pattern == nil {
		return c, nil
	}

	seen := make(map[string]bool)
	for _, match := range m.pattern.FindAllStringSubmatch(page.Text, -1) {
		canon, ok := m.canonical[strings.ToLower(match[1])]
		if !ok || seen[canon] {
			continue
		}
		seen[canon] = true
		if m.kind == KindResource {
			c.Resources = append(c.Resources, canon)
		} else {
			c.Services = append(c.Services, canon)
		}
	}
	return c, nil
}
