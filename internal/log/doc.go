// Package log provides bounded logging functionality built on top of the
// standard slog package.
//
// This package extends slog to provide:
//   - Truncation of oversized string attribute values
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Bounded Attributes
//
// Crawler components log page titles, extracted text snippets, and link
// lists. A single documentation page can carry hundreds of kilobytes of
// text; logging one unchecked would bury every other line. The TrimHandler
// cuts string attribute values to MaxValueLen bytes and appends the
// original size, so log lines stay greppable no matter what a page
// contains.
//
// # Usage
//
//	// Create a logger with bounded attributes
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("page stored",
//	    "url", "https://docs.example.org/arc",
//	    "text", pageText, // Cut to MaxValueLen bytes
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
