package render

import (
	"sort"
	"time"

	"github.com/docmap-dev/docmap/internal/model"
)

// Summary aggregates what a processing run produced. The report writers
// present it; they never recompute anything from the corpus.
type Summary struct {
	// Host is the site the corpus was crawled from.
	Host string

	// GeneratedAt is when the processing run finished.
	GeneratedAt time.Time

	// TotalPages is the number of stored pages.
	TotalPages int

	// OutputDir is the directory the rendered site was written to.
	OutputDir string

	// Categories maps category labels to their page URLs.
	Categories model.Categories

	// Graph is the link graph over stored pages. May be nil when graph
	// building was skipped.
	Graph *model.LinkGraph

	// Knowledge is the extracted fact set. May be nil when extraction
	// was skipped.
	Knowledge *model.KnowledgeBase
}

// SortedCategories returns the category labels in alphabetical order.
func (s *Summary) SortedCategories() []string {
	labels := make([]string, 0, len(s.Categories))
	for label := range s.Categories {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// NodeCount returns the graph node count, zero when no graph was built.
func (s *Summary) NodeCount() int {
	if s.Graph == nil {
		return 0
	}
	return s.Graph.NodeCount()
}

// EdgeCount returns the resolved edge count, zero when no graph was built.
func (s *Summary) EdgeCount() int {
	if s.Graph == nil {
		return 0
	}
	return s.Graph.EdgeCount()
}

// DanglingCount returns the number of links whose destination was never
// stored, zero when no graph was built.
func (s *Summary) DanglingCount() int {
	if s.Graph == nil {
		return 0
	}
	return len(s.Graph.Dangling)
}

// Dangling returns the unresolved links, empty when no graph was built.
func (s *Summary) Dangling() []model.Edge {
	if s.Graph == nil {
		return nil
	}
	return s.Graph.Dangling
}

// HasKnowledge reports whether extraction produced any facts.
func (s *Summary) HasKnowledge() bool {
	return s.Knowledge != nil && !s.Knowledge.IsEmpty()
}

// Services returns the extracted service names, empty when extraction was
// skipped.
func (s *Summary) Services() []string {
	if s.Knowledge == nil {
		return nil
	}
	return s.Knowledge.Services
}

// Resources returns the extracted resource names, empty when extraction
// was skipped.
func (s *Summary) Resources() []string {
	if s.Knowledge == nil {
		return nil
	}
	return s.Knowledge.Resources
}

// FAQCount returns the number of extracted question/answer pairs.
func (s *Summary) FAQCount() int {
	if s.Knowledge == nil {
		return 0
	}
	return len(s.Knowledge.FAQs)
}
