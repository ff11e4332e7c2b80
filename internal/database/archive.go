package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docmap-dev/docmap/internal/model"
)

// dbFileName is the SQLite file name inside the database directory.
const dbFileName = "docmap.db"

// ArchiveDB provides SQLite-based storage for crawl session history.
// It records when each site was crawled and which pages each run stored,
// complementing the JSON page archive with queryable metadata.
//
// Design decision: We use a single database file for all sessions rather
// than one file per site. This simplifies cross-session queries and
// backup/restore operations.
type ArchiveDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ArchiveDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an ArchiveDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ArchiveDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY errors entirely.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &ArchiveDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *ArchiveDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *ArchiveDB) createTables() error {
	schema := `
	-- One row per crawl invocation
	CREATE TABLE IF NOT EXISTS crawl_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_url TEXT NOT NULL,
		host TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME,
		pages_stored INTEGER DEFAULT 0,
		fetch_failures INTEGER DEFAULT 0,
		interrupted INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_host ON crawl_sessions(host);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON crawl_sessions(started_at);

	-- One row per page stored by a session
	CREATE TABLE IF NOT EXISTS session_pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		outgoing_links INTEGER DEFAULT 0,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(session_id, url),
		FOREIGN KEY(session_id) REFERENCES crawl_sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_session ON session_pages(session_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON session_pages(url);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// Session represents one crawl invocation's metadata.
type Session struct {
	// ID is the unique identifier of the session in the database.
	ID int64

	// StartURL is the seed URL the crawl began from.
	StartURL string

	// Host is the site host the session was bound to.
	Host string

	// StartedAt is when the session began.
	StartedAt time.Time

	// FinishedAt is when the session ended. Zero while running or if the
	// process died before finishing.
	FinishedAt time.Time

	// PagesStored is the number of page records the session wrote.
	PagesStored int

	// FetchFailures is the number of failed fetch attempts.
	FetchFailures int

	// Interrupted reports whether the session stopped on cancellation.
	Interrupted bool
}

// BeginSession inserts a new session row and returns its ID.
// The row exists from the moment the crawl starts, so a crashed run still
// leaves a trace.
func (adb *ArchiveDB) BeginSession(ctx context.Context, startURL, host string) (int64, error) {
	query := `
	INSERT INTO crawl_sessions (start_url, host)
	VALUES (?, ?)
	`

	result, err := adb.db.ExecContext(ctx, query, startURL, host)
	if err != nil {
		return 0, fmt.Errorf("failed to begin session: %w", err)
	}

	return result.LastInsertId()
}

// FinishSession records the final counters for a session.
func (adb *ArchiveDB) FinishSession(ctx context.Context, sessionID int64, pagesStored, fetchFailures int, interrupted bool) error {
	query := `
	UPDATE crawl_sessions
	SET finished_at = CURRENT_TIMESTAMP,
		pages_stored = ?,
		fetch_failures = ?,
		interrupted = ?
	WHERE id = ?
	`

	interruptedInt := 0
	if interrupted {
		interruptedInt = 1
	}

	_, err := adb.db.ExecContext(ctx, query, pagesStored, fetchFailures, interruptedInt, sessionID)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}
	return nil
}

// RecordPage inserts or updates a page row for the session.
// Uses UPSERT so re-storing a URL within one session replaces the row.
func (adb *ArchiveDB) RecordPage(ctx context.Context, sessionID int64, page *model.Page) error {
	query := `
	INSERT INTO session_pages (session_id, url, title, outgoing_links, fetched_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(session_id, url) DO UPDATE SET
		title = excluded.title,
		outgoing_links = excluded.outgoing_links,
		fetched_at = excluded.fetched_at
	`

	_, err := adb.db.ExecContext(ctx, query,
		sessionID,
		page.URL,
		page.Title,
		len(page.Links),
		page.FetchedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to record page: %w", err)
	}
	return nil
}

// Sessions returns all sessions, newest first.
func (adb *ArchiveDB) Sessions(ctx context.Context) ([]Session, error) {
	query := `
	SELECT id, start_url, host, started_at, finished_at, pages_stored, fetch_failures, interrupted
	FROM crawl_sessions
	ORDER BY started_at DESC, id DESC
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var startedAt string
		var finishedAt sql.NullString
		var interrupted int

		err := rows.Scan(
			&s.ID,
			&s.StartURL,
			&s.Host,
			&startedAt,
			&finishedAt,
			&s.PagesStored,
			&s.FetchFailures,
			&interrupted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		s.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			s.FinishedAt = parseTimestamp(finishedAt.String)
		}
		s.Interrupted = interrupted != 0

		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// SessionPageCount returns the number of page rows recorded for a session.
func (adb *ArchiveDB) SessionPageCount(ctx context.Context, sessionID int64) (int, error) {
	query := `
	SELECT COUNT(*) FROM session_pages
	WHERE session_id = ?
	`

	var count int
	if err := adb.db.QueryRowContext(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count session pages: %w", err)
	}
	return count, nil
}

// PageVisit is one recorded fetch of a URL within a session.
type PageVisit struct {
	// SessionID identifies the session that stored the page.
	SessionID int64

	// Title is the page title at the time of the fetch.
	Title string

	// FetchedAt is when the page was fetched.
	FetchedAt time.Time
}

// PageHistory returns all recorded fetches of a URL across sessions,
// newest first.
func (adb *ArchiveDB) PageHistory(ctx context.Context, url string) ([]PageVisit, error) {
	query := `
	SELECT session_id, title, fetched_at
	FROM session_pages
	WHERE url = ?
	ORDER BY fetched_at DESC, session_id DESC
	`

	rows, err := adb.db.QueryContext(ctx, query, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get page history: %w", err)
	}
	defer rows.Close()

	var visits []PageVisit
	for rows.Next() {
		var v PageVisit
		var fetchedAt string

		if err := rows.Scan(&v.SessionID, &v.Title, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page visit: %w", err)
		}

		v.FetchedAt = parseTimestamp(fetchedAt)
		visits = append(visits, v)
	}

	return visits, rows.Err()
}

// SessionRecorder binds page recording to one crawl session, so the crawl
// loop does not carry the session ID around.
type SessionRecorder struct {
	db        *ArchiveDB
	sessionID int64
}

// Recorder returns a SessionRecorder for the given session.
func (adb *ArchiveDB) Recorder(sessionID int64) *SessionRecorder {
	return &SessionRecorder{db: adb, sessionID: sessionID}
}

// RecordPage records one page for the bound session.
func (r *SessionRecorder) RecordPage(ctx context.Context, page *model.Page) error {
	return r.db.RecordPage(ctx, r.sessionID, page)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
