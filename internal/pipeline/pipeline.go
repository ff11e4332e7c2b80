package pipeline

import (
	"context"
	"log/slog"

	"github.com/docmap-dev/docmap/internal/knowledge"
	"github.com/docmap-dev/docmap/internal/model"
	"github.com/docmap-dev/docmap/internal/render"
	"github.com/docmap-dev/docmap/internal/store"
)

// Corpus is the shared state of one processing run. Steps read what earlier
// steps produced and attach their own results. A zero Corpus with Dir and
// OutputDir set is a valid starting point.
type Corpus struct {
	// Dir is the crawl archive directory to process.
	Dir string

	// OutputDir is where rendered files and derived artifacts go.
	OutputDir string

	// BasePath is the site path categorization is relative to.
	// Empty means derive it from the stored pages.
	BasePath string

	// Store is the opened archive. Set by the load step.
	Store *store.Store

	// Pages are the stored pages. Set by the load step.
	Pages []*model.Page

	// LinkMap records each page's outgoing links. Set by the load step.
	LinkMap model.LinkMap

	// Index is the crawl index. The categorize step fills in category
	// labels and the artifact step persists it back to the archive.
	Index *model.Index

	// Categories maps labels to page URLs. Set by the categorize step.
	Categories model.Categories

	// Graph is the link graph. Set by the graph step.
	Graph *model.LinkGraph

	// Knowledge is the extracted fact set. Set by the knowledge step.
	Knowledge *model.KnowledgeBase

	// Summary is the run summary for report writers. Set by the
	// summary step.
	Summary *render.Summary

	// Err is the first step failure, recorded by Execute.
	Err error

	// StepsRun lists executed step names in order.
	StepsRun []string
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the corpus accumulated
// by the previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation and the corpus to extend.
	// Returns an error if the step fails critically; recoverable problems
	// should be logged and absorbed inside the step.
	Do(ctx context.Context, corpus *Corpus) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, a default logger is created.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution even
// when a step fails. Failed steps are logged and recorded on the corpus,
// but subsequent steps still execute.
//
// Design decision: The default is to stop on error because the steps form
// a dependency chain: rendering without a loaded corpus or a built graph
// produces garbage, and a failed write means the archive or output
// directory is in trouble anyway.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// It respects context cancellation and logs each step's execution.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps should handle their own timeouts. This allows
// graceful cleanup between steps while still respecting cancellation.
//
// Returns the first error encountered if continueOnError is false,
// or nil if all steps complete (errors are recorded on the corpus).
func (p *Pipeline) Execute(ctx context.Context, corpus *Corpus) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			if corpus.Err == nil {
				corpus.Err = ctx.Err()
			}
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"archive", corpus.Dir,
		)

		if err := step.Do(ctx, corpus); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"archive", corpus.Dir,
				"error", err,
			)

			if corpus.Err == nil {
				corpus.Err = err
			}

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"archive", corpus.Dir,
			)
		}

		corpus.StepsRun = append(corpus.StepsRun, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// DefaultPipelineConfig holds settings for the steps DefaultPipeline
// assembles.
type DefaultPipelineConfig struct {
	// Services are the service names the knowledge step recognizes.
	Services []string

	// Resources are the resource names the knowledge step recognizes.
	Resources []string
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineServices sets the service vocabulary for the knowledge step.
func WithPipelineServices(services []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Services = services
	}
}

// WithPipelineResources sets the resource vocabulary for the knowledge step.
func WithPipelineResources(resources []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Resources = resources
	}
}

// DefaultPipeline creates a pipeline with the standard processing steps:
// load the archive, categorize, build the graph, extract knowledge, render
// the HTML site and graph files, write the summary, and persist the JSON
// artifacts.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the full set of artifacts
// 2. Reduces boilerplate in the CLI
// 3. Ensures consistent ordering
//
// The first parameter accepts pipeline options (WithLogger, etc). The
// variadic parameter accepts step config options (WithPipelineServices,
// etc), typically sourced from a site configuration file.
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Services:  knowledge.DefaultServices,
		Resources: knowledge.DefaultResources,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	extractor := knowledge.NewExtractor(
		knowledge.WithLogger(p.logger),
		knowledge.WithMatchers(
			knowledge.NewVocabMatcher(knowledge.KindService, cfg.Services),
			knowledge.NewVocabMatcher(knowledge.KindResource, cfg.Resources),
			knowledge.NewFAQMatcher(),
		),
	)

	p.AddSteps(
		NewLoadStep(WithLoadLogger(p.logger)),
		NewCategorizeStep(),
		NewGraphStep(),
		NewKnowledgeStep(WithKnowledgeExtractor(extractor), WithKnowledgeLogger(p.logger)),
		NewRenderSiteStep(),
		NewRenderGraphStep(WithRenderGraphLogger(p.logger)),
		NewSummaryStep(),
		NewWriteArtifactsStep(),
	)

	return p
}
