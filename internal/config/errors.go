package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoStartURL is returned when no seed URL is specified.
	// The crawl command requires exactly one positional URL argument.
	ErrNoStartURL = errors.New("no start URL specified: provide a documentation site URL")

	// ErrInvalidStartURL is returned when the seed URL does not use the
	// http or https scheme. Other schemes cannot be crawled.
	ErrInvalidStartURL = errors.New("invalid start URL: must begin with http:// or https://")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	// A budget of zero would mean the crawl fetches nothing.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidCheckpoint is returned when the checkpoint interval is not
	// positive. The crawler checkpoints every N pages and N must be at least 1.
	ErrInvalidCheckpoint = errors.New("invalid checkpoint interval: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
