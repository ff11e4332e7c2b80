package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/docmap-dev/docmap/internal/config"
	"github.com/docmap-dev/docmap/internal/log"
	"github.com/docmap-dev/docmap/internal/pipeline"
	"github.com/docmap-dev/docmap/internal/render"
	"github.com/spf13/cobra"
)

// NewProcessCmd creates the process command.
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [archive-dir...]",
		Short: "Process crawl archives into browsable site maps",
		Long: `Process reads one or more crawl archives and produces, for each, a
browsable HTML site, category and link graph artifacts, an extracted
knowledge base, and a Markdown summary report.

With no arguments the default archive directory is processed. Multiple
archives are processed concurrently, each into its own subdirectory of
the output directory named after the archive.

Examples:
  # Process the default archive into the default site directory
  docmap process

  # Process a specific archive into a specific site directory
  docmap process -o site docmap_pages

  # Process several archives at once
  docmap process archives/compute archives/storage archives/network

  # Categorize pages relative to an explicit base path
  docmap process -b /guides docmap_pages`,
		Args: cobra.ArbitraryArgs,
		RunE: runProcessCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultSiteDir,
		"Directory the rendered site and artifacts are written to")
	cmd.Flags().StringP("base-path", "b", "",
		"Site path prefix categories are computed against (default: derived from the archive)")
	cmd.Flags().Int("concurrency", 4,
		"Number of archives processed in parallel")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .docmap.yml in current or home directory)")

	return cmd
}

// processConfig holds the resolved settings for one process run.
type processConfig struct {
	// Archives are the crawl archive directories to process.
	Archives []string

	// OutputDir is the directory results are written to. With multiple
	// archives each gets a subdirectory named after its archive.
	OutputDir string

	// BasePath is the explicit category base path. Empty derives it from
	// the stored pages.
	BasePath string

	// Concurrency is the number of archives processed in parallel.
	Concurrency int

	// SiteConfigs supplies extraction vocabularies from the config file.
	SiteConfigs *config.File
}

// runProcessCmd executes the process command.
func runProcessCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildProcessConfig(cmd, args)
	if err != nil {
		return err
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Processing reads the whole archive up front, so per-site
	// vocabularies keyed by host cannot be resolved until after the
	// pipeline has already been assembled. Only the defaults apply.
	if len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("processing uses default extraction vocabularies; per-site vocabularies are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	if len(cfg.Archives) > 1 {
		return runBatchProcess(ctx, cfg, logger)
	}
	return runProcess(ctx, cfg, logger)
}

// buildProcessConfig creates a processConfig from cobra command flags.
func buildProcessConfig(cmd *cobra.Command, args []string) (*processConfig, error) {
	cfg := &processConfig{}

	var err error

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.BasePath, err = cmd.Flags().GetString("base-path")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}
	if cfg.Concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be positive, got %d", cfg.Concurrency)
	}

	configFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.SiteConfigs, err = loadSiteConfigs(configFilePath)
	if err != nil {
		return nil, err
	}

	// Positional arguments (archive directories)
	cfg.Archives = args
	if len(cfg.Archives) == 0 {
		cfg.Archives = []string{config.DefaultCrawlDir}
	}

	return cfg, nil
}

// newProcessPipeline creates the processing pipeline for one archive.
// Extraction vocabularies come from the configuration file defaults.
func newProcessPipeline(cfg *processConfig, logger *slog.Logger) *pipeline.Pipeline {
	defaults := cfg.SiteConfigs.Defaults

	return pipeline.DefaultPipeline(
		[]pipeline.Option{pipeline.WithLogger(logger)},
		pipeline.WithPipelineServices(defaults.EffectiveServices()),
		pipeline.WithPipelineResources(defaults.EffectiveResources()),
	)
}

// runProcess processes a single archive into the output directory.
func runProcess(ctx context.Context, cfg *processConfig, logger *slog.Logger) error {
	archiveDir := cfg.Archives[0]

	fmt.Printf("Processing %s...\n", archiveDir)
	startTime := time.Now()

	corpus := &pipeline.Corpus{
		Dir:       archiveDir,
		OutputDir: cfg.OutputDir,
		BasePath:  cfg.BasePath,
	}
	p := newProcessPipeline(cfg, logger)

	if err := p.Execute(ctx, corpus); err != nil {
		return fmt.Errorf("processing failed for %s: %w", archiveDir, err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Processing completed in %s\n\n", elapsed.Round(time.Millisecond))

	// Human-readable summary on stdout
	if corpus.Summary != nil {
		writer := render.NewSimpleWriter(os.Stdout)
		if _, err := writer.Write(corpus.Summary); err != nil {
			logger.Error("summary output failed", "archive", archiveDir, "error", err)
		}
	}

	fmt.Printf("Site written to %s\n", cfg.OutputDir)
	return nil
}

// runBatchProcess processes multiple archives concurrently using
// BatchProcessor. Each archive renders into its own subdirectory.
func runBatchProcess(ctx context.Context, cfg *processConfig, logger *slog.Logger) error {
	fmt.Printf("Processing %d archives (concurrency: %d)...\n\n",
		len(cfg.Archives), cfg.Concurrency)

	startTime := time.Now()

	jobs := make([]pipeline.Job, len(cfg.Archives))
	for i, dir := range cfg.Archives {
		jobs[i] = pipeline.Job{
			InputDir:  dir,
			OutputDir: filepath.Join(cfg.OutputDir, filepath.Base(dir)),
			BasePath:  cfg.BasePath,
		}
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return newProcessPipeline(cfg, logger)
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	// Stream per-archive results as they complete
	var mu sync.Mutex
	failures := 0
	err := bp.ProcessBatchWithCallback(ctx, jobs, func(corpus *pipeline.Corpus, index int) {
		mu.Lock()
		defer mu.Unlock()

		if corpus.Err != nil {
			failures++
			fmt.Printf("[%d/%d] %s failed: %v\n", index+1, len(jobs), corpus.Dir, corpus.Err)
			return
		}
		fmt.Printf("[%d/%d] %s: %d pages -> %s\n",
			index+1, len(jobs), corpus.Dir, len(corpus.Pages), corpus.OutputDir)
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch processing completed in %s\n", elapsed.Round(time.Millisecond))

	if err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d archives failed", failures, len(jobs))
	}
	return nil
}
