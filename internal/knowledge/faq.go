package knowledge

import (
	"strings"
	"unicode/utf8"

	"github.com/docmap-dev/docmap/internal/model"
)

// maxQuestionRunes caps question length. Longer '?'-terminated prefixes are
// prose that happens to contain a question mark, not FAQ material.
const maxQuestionRunes = 200

// FAQMatcher finds question/answer pairs in page text.
//
// The boundary rule is deliberately literal: within a paragraph the first
// '?' ends the question and the rest of the paragraph is the answer. A
// paragraph that ends on its '?' takes the following paragraph as the
// answer instead. Multi-question paragraphs therefore collapse into a
// single pair. The rule is best-effort, not a sentence parser.
type FAQMatcher struct{}

// NewFAQMatcher returns a matcher for question/answer paragraphs.
func NewFAQMatcher() *FAQMatcher { return &FAQMatcher{} }

// Name implements Matcher.
func (m *FAQMatcher) Name() string { return "faq" }

// Match implements Matcher. Each FAQ carries the page URL as its source.
func (m *FAQMatcher) Match(page *model.Page) (Contribution, error) {
	var c Contribution
	paragraphs := page.Paragraphs()
	for i, para := range paragraphs {
		cut := strings.Index(para, "?")
		if cut < 0 {
			continue
		}
		question := strings.TrimSpace(para[:cut+1])
		if utf8.RuneCountInString(question) >= maxQuestionRunes {
			continue
		}
		answer := strings.TrimSpace(para[cut+1:])
		if answer == "" && i+1 < len(paragraphs) {
			answer = paragraphs[i+1]
		}
		if answer == "" {
			continue
		}
		c.FAQs = append(c.FAQs, model.FAQ{
			Question: question,
			Answer:   answer,
			Source:   page.URL,
		})
	}
	return c, nil
}
