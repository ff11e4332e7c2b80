package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values follow the conventions of the documentation sites this tool
// was built against and can all be overridden via CLI flags or the
// configuration file.
const (
	// DefaultTimeout is the per-request timeout. Documentation sites are
	// ordinary HTTP servers, so 30 seconds is generous; anything slower is
	// treated as a fetch failure and the crawl moves on.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxPages is the maximum number of fetch attempts per crawl run.
	// This prevents runaway crawling on large or infinitely-generating sites.
	// Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 1000

	// DefaultCrawlDelay is the delay between requests during crawling.
	// This is a politeness setting to avoid overwhelming documentation hosts.
	// 1 second is conservative and respectful of server resources.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultCheckpointEvery is how many fetched pages pass between frontier
	// checkpoints. Smaller values lose less work on interruption at the cost
	// of more state rewrites.
	DefaultCheckpointEvery = 10

	// DefaultUserAgent identifies docmap in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify crawler traffic in their logs.
	DefaultUserAgent = "docmap/1.0 (+https://github.com/docmap-dev/docmap)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for even the largest HTML documentation pages while
	// preventing memory exhaustion from unexpected responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultContentSelector is the CSS selector for the main content region.
	// "div.region-content" is the content container used by the Drupal-based
	// documentation sites this tool was first built for; sites using other
	// layouts configure their own selector. When the selector matches
	// nothing, the parser falls back to main, article, then body.
	DefaultContentSelector = "div.region-content"

	// DefaultCrawlDir is the directory the crawl archive is written to.
	DefaultCrawlDir = "docmap_pages"

	// DefaultSiteDir is the directory the processed site is written to.
	DefaultSiteDir = "docmap_site"

	// MaxGraphRenderNodes bounds the static graph visualization.
	// Layouts above this size render as unreadable hairballs, so the SVG is
	// skipped and only the DOT file is written.
	MaxGraphRenderNodes = 100

	// AppName is the application name used for XDG directory paths.
	AppName = "docmap"
)

// Config holds all configuration options for docmap.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ProcessConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// StartURL is the seed URL the crawl begins from. The crawl never
	// leaves the seed's host.
	StartURL string

	// OutputDir is the crawl archive directory. The crawler writes page
	// records and frontier state here; the processor reads them back and
	// adds its derived artifacts.
	OutputDir string

	// SiteDir is the directory the rendered site, graph files, and summary
	// report are written to by the processing phase.
	SiteDir string

	// MaxPages is the maximum number of fetch attempts for this run.
	// The counter is per run: resuming a crawl grants a fresh budget.
	MaxPages int

	// CrawlDelay is the delay between HTTP requests during crawling.
	// This is a "politeness" setting to avoid overwhelming documentation
	// hosts. Zero disables the delay entirely.
	CrawlDelay time.Duration

	// Timeout is the connection timeout for each HTTP request.
	// This applies to individual requests, not the overall crawl duration.
	Timeout time.Duration

	// CheckpointEvery is the number of fetched pages between frontier
	// checkpoints. An interrupted crawl loses at most this many pages of
	// frontier state.
	CheckpointEvery int

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps site operators identify crawler traffic.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// BasePath is the site path prefix categories are computed against.
	// Pages at the base path itself fall into the "overview" category.
	// When empty, the path of the start URL is used.
	BasePath string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .docmap.yml in the current directory,
	// the XDG config directory, and the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config
	// file. This is populated by LoadConfigFile and consulted by host.
	SiteConfigs *File

	// DBDir is the directory path for storing the SQLite crawl archive.
	// When set, crawl sessions are recorded for later inspection via the
	// stats command. Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to record crawl sessions in the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, delays).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		OutputDir:       DefaultCrawlDir,
		SiteDir:         DefaultSiteDir,
		MaxPages:        DefaultMaxPages,
		CrawlDelay:      DefaultCrawlDelay,
		Timeout:         DefaultTimeout,
		CheckpointEvery: DefaultCheckpointEvery,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for docmap.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/docmap
// On macOS: ~/Library/Application Support/docmap
// On Windows: %LOCALAPPDATA%\docmap
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for docmap.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/docmap
// On macOS: ~/Library/Application Support/docmap
// On Windows: %APPDATA%\docmap
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for docmap.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/docmap
// On macOS: ~/Library/Caches/docmap
// On Windows: %LOCALAPPDATA%\docmap\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the crawl configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have a seed URL to crawl from
	if c.StartURL == "" {
		return ErrNoStartURL
	}

	// Only http(s) URLs are crawlable
	if !strings.HasPrefix(c.StartURL, "http://") && !strings.HasPrefix(c.StartURL, "https://") {
		return ErrInvalidStartURL
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// MaxPages must be positive; zero would mean no crawling
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// CheckpointEvery must be positive; zero would silently disable
	// periodic checkpoints
	if c.CheckpointEvery <= 0 {
		return ErrInvalidCheckpoint
	}

	// MaxBodySize must be non-negative
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
