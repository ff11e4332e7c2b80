package knowledge

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/docmap-dev/docmap/internal/model"
)

// Matcher scans a single page for knowledge base facts.
type Matcher interface {
	// Name identifies the matcher in diagnostics.
	Name() string

	// Match returns the page's contribution to the knowledge base.
	// An error skips this page for this matcher only; other matchers
	// and other pages are unaffected.
	Match(page *model.Page) (Contribution, error)
}

// Contribution is what one matcher found on one page.
// The zero value means the page contributed nothing.
type Contribution struct {
	// Services are canonical service names mentioned on the page.
	Services []string

	// Resources are canonical resource names mentioned on the page.
	Resources []string

	// FAQs are question/answer pairs in document order.
	FAQs []model.FAQ
}

// Extractor runs matchers over stored pages and merges their findings
// into a knowledge base.
type Extractor struct {
	matchers []Matcher
	logger   *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithMatchers replaces the default matcher set.
func WithMatchers(matchers ...Matcher) ExtractorOption {
	return func(e *Extractor) {
		e.matchers = matchers
	}
}

// WithLogger sets the logger for extraction diagnostics.
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor returns an extractor with the default matchers: the service
// vocabulary, the resource vocabulary, and the FAQ matcher.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		matchers: []Matcher{
			NewServiceMatcher(),
			NewResourceMatcher(),
			NewFAQMatcher(),
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract builds a knowledge base from the given pages.
//
// Pages are visited in sorted URL order so repeated runs over the same
// corpus produce identical output. Pages without text contribute nothing.
// Name sets are deduplicated case-insensitively and sorted; FAQ pairs keep
// extraction order with exact duplicates dropped, first occurrence winning.
// Extract never fails: a matcher error is logged and that page skipped for
// that matcher.
func (e *Extractor) Extract(pages []*model.Page) *model.KnowledgeBase {
	sorted := make([]*model.Page, 0, len(pages))
	for _, p := range pages {
		if p != nil {
			sorted = append(sorted, p)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].URL < sorted[j].URL })

	kb := &model.KnowledgeBase{
		Services:  make([]string, 0),
		Resources: make([]string, 0),
		FAQs:      make([]model.FAQ, 0),
	}

	// Lowercased name to first-seen canonical spelling.
	services := make(map[string]string)
	resources := make(map[string]string)

	type pair struct{ question, answer string }
	seenFAQ := make(map[pair]bool)

	for _, page := range sorted {
		if !page.HasText() {
			continue
		}
		for _, m := range e.matchers {
			contrib, err := m.Match(page)
			if err != nil {
				e.logger.Warn("matcher failed, skipping page",
					"matcher", m.Name(),
					"url", page.URL,
					"error", err)
				continue
			}
			for _, name := range contrib.Services {
				key := strings.ToLower(name)
				if _, ok := services[key]; !ok {
					services[key] = name
				}
			}
			for _, name := range contrib.Resources {
				key := strings.ToLower(name)
				if _, ok := resources[key]; !ok {
					resources[key] = name
				}
			}
			for _, faq := range contrib.FAQs {
				key := pair{question: faq.Question, answer: faq.Answer}
				if seenFAQ[key] {
					continue
				}
				seenFAQ[key] = true
				kb.FAQs = append(kb.FAQs, faq)
			}
		}
	}

	for _, name := range services {
		kb.Services = append(kb.Services, name)
	}
	for _, name := range resources {
		kb.Resources = append(kb.Resources, name)
	}
	sort.Strings(kb.Services)
	sort.Strings(kb.Resources)
	return kb
}
