package model

// KnowledgeBase holds structured facts extracted from page text.
type KnowledgeBase struct {
	// Services are the service names mentioned in definition sentences,
	// sorted and deduplicated case-insensitively.
	Services []string `json:"services"`

	// Resources are the storage resource names mentioned in definition
	// sentences, sorted and deduplicated case-insensitively.
	Resources []string `json:"resources"`

	// FAQs are question/answer pairs in extraction order.
	// Exact pairs appear once; the first occurrence wins.
	FAQs []FAQ `json:"faqs"`
}

// FAQ is one extracted question/answer pair.
type FAQ struct {
	// Question is the question sentence, ending with '?'.
	Question string `json:"question"`

	// Answer is the answer text that followed the question.
	Answer string `json:"answer"`

	// Source is the canonical URL of the page the pair was found on.
	Source string `json:"source,omitempty"`
}

// IsEmpty reports whether nothing was extracted.
func (kb *KnowledgeBase) IsEmpty() bool {
	return len(kb.Services) == 0 && len(kb.Resources) == 0 && len(kb.FAQs) == 0
}

// Categories maps a category label to the canonical URLs of its pages,
// each slice sorted by URL.
type Categories map[string][]string

// PageCount returns the total number of page entries across all labels.
func (c Categories) PageCount() int {
	n := 0
	for _, urls := range c {
		n += len(urls)
	}
	return n
}
