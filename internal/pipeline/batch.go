package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job describes one archive to process: where the crawl lives, where the
// output goes, and the base path to categorize against.
type Job struct {
	// InputDir is the crawl archive directory.
	InputDir string

	// OutputDir is where the rendered files and artifacts go.
	OutputDir string

	// BasePath is the site path categorization is relative to.
	// Empty means derive it from the stored pages.
	BasePath string
}

// BatchProcessor handles concurrent processing of multiple crawl archives.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-archive execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each archive.
	// We use a factory to ensure each run gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of archives processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed corpora.
	// Access is synchronized via mutex.
	results []*Corpus
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of archives processed at once.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each archive to create a
// fresh pipeline instance. This ensures that pipeline state doesn't leak
// between runs and allows for per-run customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*Corpus, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch processes multiple archives concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each archive gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all corpora in job order, including those whose runs failed.
// A per-archive failure is recorded on its corpus and does not abort the
// batch; the error return indicates cancellation.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []Job) ([]*Corpus, error) {
	bp.logger.Info("starting batch processing",
		"total_archives", len(jobs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*Corpus, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("processing archive",
				"archive", job.InputDir,
				"index", i+1,
				"total", len(jobs),
			)

			corpus := &Corpus{
				Dir:       job.InputDir,
				OutputDir: job.OutputDir,
				BasePath:  job.BasePath,
			}

			// Create and execute pipeline
			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, corpus)

			// Store result regardless of error
			// The corpus carries error information if the run failed
			bp.mu.Lock()
			bp.results[i] = corpus
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("archive processing failed",
					"archive", job.InputDir,
					"error", err,
				)
				// Don't return error to errgroup - we want to continue
				// the other archives. The error is recorded on the corpus.
				return nil
			}

			bp.logger.Info("archive processed",
				"archive", job.InputDir,
			)

			return nil
		})
	}

	// Wait for all runs to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_archives", len(jobs),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback processes multiple archives and calls a
// callback for each completed run. This is useful for streaming results.
//
// The callback receives the corpus and the index of the job in the
// original slice. The callback is called from the goroutine that completed
// the run, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	jobs []Job,
	callback func(corpus *Corpus, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_archives", len(jobs),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			corpus := &Corpus{
				Dir:       job.InputDir,
				OutputDir: job.OutputDir,
				BasePath:  job.BasePath,
			}
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, corpus) //nolint:errcheck // Error is stored on the corpus

			// Call the callback with the result
			callback(corpus, i)

			return nil
		})
	}

	return g.Wait()
}
