package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/docmap-dev/docmap/internal/category"
	"github.com/docmap-dev/docmap/internal/graph"
	"github.com/docmap-dev/docmap/internal/knowledge"
	"github.com/docmap-dev/docmap/internal/model"
	"github.com/docmap-dev/docmap/internal/render"
	"github.com/docmap-dev/docmap/internal/store"
)

// Artifact file names written into the output directory.
const (
	categoriesFile = "categories.json"
	linkGraphFile  = "link_graph.json"
	knowledgeFile  = "knowledge_base.json"
	dotFile        = "link_graph.dot"
	svgFile        = "link_graph.svg"
	summaryFile    = "summary.md"
)

// LoadStep opens the crawl archive and loads its pages, link map, and
// index into the corpus. It is always the first step: every later step
// works on what it loaded.
type LoadStep struct {
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadLogger sets the logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a load step with the given options.
func NewLoadStep(opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do opens the archive at corpus.Dir and loads the stored pages, the link
// map, and the crawl index. An archive with no pages is an error: there is
// nothing to process, and the caller should crawl first.
func (s *LoadStep) Do(_ context.Context, corpus *Corpus) error {
	st, err := store.Open(corpus.Dir)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	corpus.Store = st

	pages, err := st.Pages()
	if err != nil {
		return fmt.Errorf("load pages: %w", err)
	}
	corpus.Pages = pages

	lm, err := st.LoadLinkMap()
	if err != nil {
		return fmt.Errorf("load link map: %w", err)
	}
	corpus.LinkMap = lm

	idx, err := st.LoadIndex()
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	corpus.Index = idx

	s.logger.Info("corpus loaded",
		"archive", corpus.Dir,
		"pages", len(corpus.Pages),
		"links", corpus.LinkMap.TotalPairs(),
	)
	return nil
}

// CategorizeStep assigns every page to a category from its URL path and
// fills the category labels into the index entries.
type CategorizeStep struct{}

// NewCategorizeStep creates a categorize step.
func NewCategorizeStep() *CategorizeStep {
	return &CategorizeStep{}
}

// Name returns the step name.
func (s *CategorizeStep) Name() string {
	return "categorize"
}

// Do groups the loaded pages into categories. When the corpus has no
// explicit base path, one is derived from the stored pages so the caller
// does not have to remember what the crawl started from.
func (s *CategorizeStep) Do(_ context.Context, corpus *Corpus) error {
	base := corpus.BasePath
	if base == "" {
		base = deriveBasePath(corpus.Pages)
		corpus.BasePath = base
	}

	urls := make([]string, 0, len(corpus.Pages))
	for _, page := range corpus.Pages {
		if page != nil {
			urls = append(urls, page.URL)
		}
	}
	sort.Strings(urls)

	corpus.Categories = category.Group(urls, base)

	if corpus.Index != nil {
		for i := range corpus.Index.Pages {
			corpus.Index.Pages[i].Category = category.Categorize(corpus.Index.Pages[i].URL, base)
		}
	}
	return nil
}

// deriveBasePath guesses the site base path from the stored pages: the
// shortest page path, since crawls start at the section root and walk
// downward. Ties break lexicographically so the result is deterministic.
// A stored site root means categories hang directly off "/".
func deriveBasePath(pages []*model.Page) string {
	base := ""
	found := false
	for _, page := range pages {
		if page == nil {
			continue
		}
		u, err := url.Parse(page.URL)
		if err != nil {
			continue
		}
		path := strings.TrimSuffix(u.Path, "/")
		if path == "" {
			return ""
		}
		if !found || len(path) < len(base) || (len(path) == len(base) && path < base) {
			base = path
			found = true
		}
	}
	return base
}

// GraphStep builds the link graph from the loaded pages and link map.
type GraphStep struct{}

// NewGraphStep creates a graph step.
func NewGraphStep() *GraphStep {
	return &GraphStep{}
}

// Name returns the step name.
func (s *GraphStep) Name() string {
	return "graph"
}

// Do builds the graph. It cannot fail: unresolvable links become dangling
// entries rather than errors.
func (s *GraphStep) Do(_ context.Context, corpus *Corpus) error {
	corpus.Graph = graph.Build(corpus.Pages, corpus.LinkMap)
	return nil
}

// KnowledgeStep runs the fact extractor over the loaded pages.
type KnowledgeStep struct {
	extractor *knowledge.Extractor
	logger    *slog.Logger
}

// KnowledgeStepOption configures a KnowledgeStep.
type KnowledgeStepOption func(*KnowledgeStep)

// WithKnowledgeExtractor sets a custom extractor, replacing the default
// matcher set.
func WithKnowledgeExtractor(extractor *knowledge.Extractor) KnowledgeStepOption {
	return func(s *KnowledgeStep) {
		s.extractor = extractor
	}
}

// WithKnowledgeLogger sets the logger for the knowledge step.
func WithKnowledgeLogger(logger *slog.Logger) KnowledgeStepOption {
	return func(s *KnowledgeStep) {
		s.logger = logger
	}
}

// NewKnowledgeStep creates a knowledge step with the given options.
func NewKnowledgeStep(opts ...KnowledgeStepOption) *KnowledgeStep {
	s := &KnowledgeStep{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.extractor == nil {
		s.extractor = knowledge.NewExtractor(knowledge.WithLogger(s.logger))
	}
	return s
}

// Name returns the step name.
func (s *KnowledgeStep) Name() string {
	return "knowledge"
}

// Do extracts services, resources, and FAQ pairs from the corpus. The
// extractor absorbs per-page matcher failures, so this step only fails on
// a broken corpus, never on odd page content.
func (s *KnowledgeStep) Do(_ context.Context, corpus *Corpus) error {
	corpus.Knowledge = s.extractor.Extract(corpus.Pages)
	return nil
}

// RenderSiteStep writes the browsable HTML mirror of the corpus into the
// output directory.
type RenderSiteStep struct{}

// NewRenderSiteStep creates a render site step.
func NewRenderSiteStep() *RenderSiteStep {
	return &RenderSiteStep{}
}

// Name returns the step name.
func (s *RenderSiteStep) Name() string {
	return "render_site"
}

// Do renders one HTML file per page plus the category index.
func (s *RenderSiteStep) Do(_ context.Context, corpus *Corpus) error {
	site, err := render.NewSite(corpus.OutputDir)
	if err != nil {
		return fmt.Errorf("create site: %w", err)
	}
	if err := site.Render(corpus.Pages, corpus.Categories, corpus.Graph); err != nil {
		return fmt.Errorf("render site: %w", err)
	}
	return nil
}

// RenderGraphStep writes the graph visualization files: a Graphviz DOT
// file always, and an SVG when the graph is small enough to lay out.
type RenderGraphStep struct {
	logger *slog.Logger
}

// RenderGraphStepOption configures a RenderGraphStep.
type RenderGraphStepOption func(*RenderGraphStep)

// WithRenderGraphLogger sets the logger for the render graph step.
func WithRenderGraphLogger(logger *slog.Logger) RenderGraphStepOption {
	return func(s *RenderGraphStep) {
		s.logger = logger
	}
}

// NewRenderGraphStep creates a render graph step with the given options.
func NewRenderGraphStep(opts ...RenderGraphStepOption) *RenderGraphStep {
	s := &RenderGraphStep{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name returns the step name.
func (s *RenderGraphStep) Name() string {
	return "render_graph"
}

// Do writes link_graph.dot and, for graphs small enough to stay legible,
// link_graph.svg. Skipping the SVG is not an error: the DOT file covers
// large graphs through external tooling.
func (s *RenderGraphStep) Do(_ context.Context, corpus *Corpus) error {
	if corpus.Graph == nil {
		return nil
	}

	if err := os.MkdirAll(corpus.OutputDir, 0750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var dot bytes.Buffer
	if err := render.WriteDOT(&dot, corpus.Graph); err != nil {
		return fmt.Errorf("render dot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(corpus.OutputDir, dotFile), dot.Bytes(), 0600); err != nil {
		return fmt.Errorf("write dot: %w", err)
	}

	if !render.CanRenderSVG(corpus.Graph) {
		s.logger.Info("graph too large to visualize, skipping svg",
			"nodes", corpus.Graph.NodeCount(),
		)
		return nil
	}

	var svg bytes.Buffer
	if err := render.WriteSVG(&svg, corpus.Graph); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	if err := os.WriteFile(filepath.Join(corpus.OutputDir, svgFile), svg.Bytes(), 0600); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// SummaryStep assembles the run summary and writes the Markdown report.
type SummaryStep struct{}

// NewSummaryStep creates a summary step.
func NewSummaryStep() *SummaryStep {
	return &SummaryStep{}
}

// Name returns the step name.
func (s *SummaryStep) Name() string {
	return "summary"
}

// Do builds the summary from everything the earlier steps produced and
// writes summary.md. The summary also stays on the corpus so the caller
// can feed it to other report writers.
func (s *SummaryStep) Do(_ context.Context, corpus *Corpus) error {
	corpus.Summary = &render.Summary{
		Host:        corpusHost(corpus.Pages),
		GeneratedAt: time.Now(),
		TotalPages:  len(corpus.Pages),
		OutputDir:   corpus.OutputDir,
		Categories:  corpus.Categories,
		Graph:       corpus.Graph,
		Knowledge:   corpus.Knowledge,
	}

	if err := os.MkdirAll(corpus.OutputDir, 0750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var buf bytes.Buffer
	if _, err := render.NewMarkdownWriter(&buf).Write(corpus.Summary); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(corpus.OutputDir, summaryFile), buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// corpusHost returns the host of the first page whose URL parses with
// one. Pages of one archive share a host, so any page will do.
func corpusHost(pages []*model.Page) string {
	for _, page := range pages {
		if page == nil {
			continue
		}
		if u, err := url.Parse(page.URL); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return ""
}

// WriteArtifactsStep persists the derived data: the categories, graph,
// and knowledge base as JSON in the output directory, and the updated
// index back into the archive.
type WriteArtifactsStep struct{}

// NewWriteArtifactsStep creates a write artifacts step.
func NewWriteArtifactsStep() *WriteArtifactsStep {
	return &WriteArtifactsStep{}
}

// Name returns the step name.
func (s *WriteArtifactsStep) Name() string {
	return "write_artifacts"
}

// Do writes the JSON artifacts. Any write failure is fatal to the run:
// a partial artifact set is worse than none, and the default pipeline
// stops here anyway.
func (s *WriteArtifactsStep) Do(_ context.Context, corpus *Corpus) error {
	if err := os.MkdirAll(corpus.OutputDir, 0750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := store.WriteJSON(filepath.Join(corpus.OutputDir, categoriesFile), corpus.Categories); err != nil {
		return fmt.Errorf("write categories: %w", err)
	}
	if err := store.WriteJSON(filepath.Join(corpus.OutputDir, linkGraphFile), corpus.Graph); err != nil {
		return fmt.Errorf("write link graph: %w", err)
	}
	if err := store.WriteJSON(filepath.Join(corpus.OutputDir, knowledgeFile), corpus.Knowledge); err != nil {
		return fmt.Errorf("write knowledge base: %w", err)
	}

	if corpus.Store != nil && corpus.Index != nil {
		if err := corpus.Store.SaveIndex(corpus.Index); err != nil {
			return fmt.Errorf("save index: %w", err)
		}
	}
	return nil
}
