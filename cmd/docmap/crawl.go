package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docmap-dev/docmap/internal/config"
	"github.com/docmap-dev/docmap/internal/crawler"
	"github.com/docmap-dev/docmap/internal/database"
	"github.com/docmap-dev/docmap/internal/log"
	"github.com/docmap-dev/docmap/internal/store"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [start-url]",
		Short: "Crawl a documentation website into a page archive",
		Long: `Crawl fetches a documentation website breadth-first from the given URL
and stores every page as a JSON record in the archive directory.

The crawl never leaves the start URL's host. Frontier state is
checkpointed periodically, so an interrupted crawl resumes where it
left off when pointed at the same archive directory. Each run is also
recorded in a local history database for the stats command.

Examples:
  # Crawl a documentation site into the default archive directory
  docmap crawl https://docs.example.org/guides

  # Limit the crawl and slow it down
  docmap crawl --max-pages 200 --delay 2s https://docs.example.org

  # Resume an interrupted crawl
  docmap crawl -o docmap_pages https://docs.example.org/guides

  # Use a custom configuration file
  docmap crawl -c mysite.yml https://docs.example.org

Configuration file (.docmap.yml) example:
  sites:
    docs.example.org:
      contentSelector: "main.docs-body"
      ignorePatterns:
        - "/search/*"
      services:
        - Atlas
        - Meridian`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().StringP("output", "o", config.DefaultCrawlDir,
		"Archive directory page records are written to")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of fetch attempts for this run")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Delay between HTTP requests (0 disables)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().Int("checkpoint-every", config.DefaultCheckpointEvery,
		"Number of fetched pages between frontier checkpoints")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with HTTP requests")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .docmap.yml in current or home directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, checkpointing...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildCrawlConfig creates a Config from cobra command flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CheckpointEvery, err = cmd.Flags().GetInt("checkpoint-every")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.SiteConfigs, err = loadSiteConfigs(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}

	// Always record crawl sessions using the XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Positional argument (seed URL)
	cfg.StartURL = args[0]

	return cfg, nil
}

// loadSiteConfigs loads the site configuration file.
// An explicitly specified path must exist; without one, a missing file
// silently degrades to an empty configuration.
func loadSiteConfigs(configFilePath string) (*config.File, error) {
	explicit := configFilePath != ""
	configPath := config.FindConfigFile(configFilePath)

	if configPath != "" {
		siteConfigs, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		return siteConfigs, nil
	}
	if explicit {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", configFilePath)
	}
	return &config.File{Sites: make(map[string]config.SiteConfig)}, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	host, err := crawler.HostOf(cfg.StartURL)
	if err != nil {
		return fmt.Errorf("invalid start URL %q: %w", cfg.StartURL, err)
	}
	if host == "" {
		return fmt.Errorf("invalid start URL %q: missing host", cfg.StartURL)
	}

	// Site-specific configuration for this host
	siteConfig := cfg.SiteConfigs.GetSiteConfig(host)

	logger.Info("starting crawl",
		"startURL", cfg.StartURL,
		"host", host,
		"archive", cfg.OutputDir,
		"maxPages", cfg.MaxPages,
	)

	st, err := store.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	// Open crawl history database if recording is enabled
	var db *database.ArchiveDB
	var sessionID int64
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)

		sessionID, err = db.BeginSession(ctx, cfg.StartURL, host)
		if err != nil {
			return fmt.Errorf("failed to begin crawl session: %w", err)
		}
	}

	client := &http.Client{Timeout: cfg.Timeout}
	fetcher := crawler.NewFetcher(client,
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	)
	parser := crawler.NewParser(siteConfig.EffectiveContentSelector())

	opts := []crawler.CrawlerOption{
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithCheckpointEvery(cfg.CheckpointEvery),
		crawler.WithSkipExtensions(siteConfig.EffectiveSkipExtensions()),
		crawler.WithLogger(logger),
		crawler.WithProgress(os.Stdout),
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		opts = append(opts, crawler.WithIgnorePatterns(siteConfig.IgnorePatterns))
	}
	if db != nil {
		opts = append(opts, crawler.WithArchive(db.Recorder(sessionID)))
	}

	c := crawler.NewCrawler(fetcher, parser, st, opts...)

	fmt.Printf("Crawling %s...\n", cfg.StartURL)
	startTime := time.Now()

	result, crawlErr := c.Crawl(ctx, cfg.StartURL)

	// Close out the session even when the crawl was interrupted. The
	// crawl context is likely cancelled at this point, so the session
	// update gets a fresh one.
	if db != nil && result != nil {
		finishCtx, finishCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer finishCancel()
		if err := db.FinishSession(finishCtx, sessionID,
			result.PagesStored, result.FetchFailures, result.Interrupted); err != nil {
			logger.Error("failed to record crawl session", "error", err)
		}
	}
	if crawlErr != nil {
		return fmt.Errorf("crawl failed: %w", crawlErr)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nCrawl completed in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  pages stored:    %d\n", result.PagesStored)
	fmt.Printf("  fetch failures:  %d\n", result.FetchFailures)
	fmt.Printf("  visited total:   %d\n", result.VisitedTotal)
	if result.QueueRemaining > 0 {
		fmt.Printf("  queue remaining: %d\n", result.QueueRemaining)
	}
	if result.Interrupted {
		fmt.Println("\nCrawl was interrupted; run the same command again to resume.")
	} else if result.QueueRemaining > 0 {
		fmt.Println("\nPage budget exhausted; run the same command again to continue.")
	}

	return nil
}
