package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/docmap-dev/docmap/internal/config"
	"github.com/docmap-dev/docmap/internal/database"
	"github.com/docmap-dev/docmap/internal/urlutil"
	"github.com/spf13/cobra"
)

// Constants for session status labels.
const (
	sessionStatusFinished    = "finished"
	sessionStatusInterrupted = "interrupted"
	sessionStatusRunning     = "running"
)

// NewStatsCmd creates the stats command.
// This command inspects the crawl history stored in the database.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show crawl history from the local database",
		Long: `Stats lists the crawl sessions recorded in the local history database,
newest first. The database lives in the XDG data directory and is written
by 'docmap crawl'.

With --url the command instead shows every recorded fetch of one page
across sessions, which helps spot how often a page changes title or gets
re-crawled.

Examples:
  # List all recorded crawl sessions
  docmap stats

  # Show the fetch history of one page
  docmap stats --url https://docs.example.org/storage

  # Output sessions in JSON format
  docmap stats --json`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	// History selection flags
	cmd.Flags().StringP("url", "u", "",
		"Show fetch history for this page URL")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output results in JSON format")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	pageURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if pageURL != "" {
		return showPageHistory(ctx, db, pageURL, jsonOutput)
	}
	return listCrawlSessions(ctx, db, jsonOutput)
}

// listCrawlSessions lists all crawl sessions recorded in the database.
func listCrawlSessions(ctx context.Context, db *database.ArchiveDB, jsonOutput bool) error {
	sessions, err := db.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list crawl sessions: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(sessions)
	}

	if len(sessions) == 0 {
		fmt.Println("No crawl sessions found in the database.")
		fmt.Println("\nUse 'docmap crawl <start-url>' to crawl a documentation site.")
		return nil
	}

	fmt.Printf("Crawl sessions (%d):\n\n", len(sessions))
	fmt.Printf("  %-4s  %-28s  %-19s  %6s  %8s  %s\n",
		"ID", "HOST", "STARTED", "PAGES", "FAILURES", "STATUS")
	fmt.Println("  " + strings.Repeat("-", 78))

	for _, session := range sessions {
		fmt.Printf("  %-4d  %-28s  %-19s  %6d  %8d  %s\n",
			session.ID,
			truncateHost(session.Host),
			session.StartedAt.Format("2006-01-02 15:04:05"),
			session.PagesStored,
			session.FetchFailures,
			sessionStatus(session),
		)
	}

	fmt.Println("\nUse 'docmap stats --url <page-url>' to see the fetch history of a page.")

	return nil
}

// sessionStatus derives a display status from the session record.
// A session with no finish timestamp is either still running or died
// before checkpointing; both read as "running" here.
func sessionStatus(session database.Session) string {
	switch {
	case session.FinishedAt.IsZero():
		return sessionStatusRunning
	case session.Interrupted:
		return sessionStatusInterrupted
	default:
		return sessionStatusFinished
	}
}

// truncateHost shortens long host names so the table stays aligned.
func truncateHost(host string) string {
	const maxLen = 28
	if len(host) <= maxLen {
		return host
	}
	return host[:maxLen-3] + "..."
}

// showPageHistory lists every recorded fetch of a single page URL.
// The URL is canonicalized first; the database only ever sees canonical URLs.
func showPageHistory(ctx context.Context, db *database.ArchiveDB, pageURL string, jsonOutput bool) error {
	canonical, err := urlutil.Canonicalize(pageURL)
	if err != nil {
		return fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	visits, err := db.PageHistory(ctx, canonical)
	if err != nil {
		return fmt.Errorf("failed to get page history: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(visits)
	}

	if len(visits) == 0 {
		fmt.Printf("No fetch history found for %s\n", canonical)
		fmt.Println("\nUse 'docmap crawl' to crawl the site this page belongs to.")
		return nil
	}

	fmt.Printf("Fetch history for %s (%d fetches):\n\n", canonical, len(visits))
	fmt.Printf("  %-8s  %-19s  %s\n", "SESSION", "FETCHED", "TITLE")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, visit := range visits {
		fmt.Printf("  %-8d  %-19s  %s\n",
			visit.SessionID,
			visit.FetchedAt.Format("2006-01-02 15:04:05"),
			visit.Title,
		)
	}

	return nil
}
