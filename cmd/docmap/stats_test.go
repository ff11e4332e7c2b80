package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docmap-dev/docmap/internal/database"
	"github.com/docmap-dev/docmap/internal/model"
)

// TestNewStatsCmd tests the stats command creation.
func TestNewStatsCmd(t *testing.T) {
	t.Parallel()

	cmd := NewStatsCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "stats" {
			t.Errorf("expected use 'stats', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has url flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("url")
		if flag == nil {
			t.Fatal("expected url flag")
		}
		if flag.Shorthand != "u" {
			t.Errorf("expected shorthand 'u', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("does not have db-dir flag (uses XDG)", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("db-dir")
		if flag != nil {
			t.Error("db-dir flag should not exist (always uses XDG data directory)")
		}
	})
}

// TestSessionStatus tests session display status derivation.
func TestSessionStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session database.Session
		want    string
	}{
		{
			name:    "no finish timestamp means running",
			session: database.Session{StartedAt: time.Now()},
			want:    sessionStatusRunning,
		},
		{
			name:    "finished and interrupted",
			session: database.Session{StartedAt: time.Now(), FinishedAt: time.Now(), Interrupted: true},
			want:    sessionStatusInterrupted,
		},
		{
			name:    "finished cleanly",
			session: database.Session{StartedAt: time.Now(), FinishedAt: time.Now()},
			want:    sessionStatusFinished,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := sessionStatus(tt.session); got != tt.want {
				t.Errorf("sessionStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestTruncateHost tests host name truncation for table display.
func TestTruncateHost(t *testing.T) {
	t.Parallel()

	t.Run("short host unchanged", func(t *testing.T) {
		t.Parallel()
		if got := truncateHost("docs.example.org"); got != "docs.example.org" {
			t.Errorf("expected host unchanged, got %q", got)
		}
	})

	t.Run("long host truncated", func(t *testing.T) {
		t.Parallel()
		host := "a-very-long-documentation-host.with-subdomains.example.org"
		got := truncateHost(host)
		if len(got) != 28 {
			t.Errorf("expected 28 characters, got %d (%q)", len(got), got)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("expected '...' suffix, got %q", got)
		}
	})
}

// TestListCrawlSessionsIntegration tests session listing against a real database.
func TestListCrawlSessionsIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Test with empty database
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err = listCrawlSessions(ctx, db, false)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("listCrawlSessions() error = %v", err)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	if !strings.Contains(output, "No crawl sessions found") {
		t.Error("expected 'No crawl sessions found' message")
	}

	// Add a finished session
	sessionID, err := db.BeginSession(ctx, "https://docs.example.org/guides", "docs.example.org")
	if err != nil {
		t.Fatalf("failed to begin session: %v", err)
	}
	if err := db.FinishSession(ctx, sessionID, 42, 1, false); err != nil {
		t.Fatalf("failed to finish session: %v", err)
	}

	// Test with data
	r, w, _ = os.Pipe()
	os.Stdout = w

	err = listCrawlSessions(ctx, db, false)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("listCrawlSessions() error = %v", err)
	}

	buf.Reset()
	_, _ = buf.ReadFrom(r)
	output = buf.String()

	if !strings.Contains(output, "Crawl sessions (1)") {
		t.Errorf("expected session count in output, got: %s", output)
	}
	if !strings.Contains(output, "docs.example.org") {
		t.Error("expected host to be listed")
	}
	if !strings.Contains(output, sessionStatusFinished) {
		t.Error("expected finished status to be listed")
	}
}

// TestListCrawlSessionsJSON tests JSON session output.
func TestListCrawlSessionsJSON(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	sessionID, err := db.BeginSession(ctx, "https://docs.example.org", "docs.example.org")
	if err != nil {
		t.Fatalf("failed to begin session: %v", err)
	}
	if err := db.FinishSession(ctx, sessionID, 7, 0, true); err != nil {
		t.Fatalf("failed to finish session: %v", err)
	}

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err = listCrawlSessions(ctx, db, true)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("listCrawlSessions() error = %v", err)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)

	var sessions []database.Session
	if err := json.Unmarshal(buf.Bytes(), &sessions); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Host != "docs.example.org" {
		t.Errorf("expected host 'docs.example.org', got %q", sessions[0].Host)
	}
	if !sessions[0].Interrupted {
		t.Error("expected interrupted session")
	}
}

// TestShowPageHistoryIntegration tests page history output against a real database.
func TestShowPageHistoryIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	pageURL := "https://docs.example.org/storage"

	// Test with no history
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err = showPageHistory(ctx, db, pageURL, false)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("showPageHistory() error = %v", err)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	if !strings.Contains(output, "No fetch history found") {
		t.Error("expected 'No fetch history found' message")
	}

	// Record two fetches of the page across two sessions
	for i := range 2 {
		sessionID, err := db.BeginSession(ctx, "https://docs.example.org", "docs.example.org")
		if err != nil {
			t.Fatalf("failed to begin session: %v", err)
		}
		page := &model.Page{
			URL:       pageURL,
			Title:     "Storage Services",
			FetchedAt: time.Now().UTC().Add(time.Duration(-i) * time.Hour),
		}
		if err := db.RecordPage(ctx, sessionID, page); err != nil {
			t.Fatalf("failed to record page: %v", err)
		}
	}

	// Query with a non-canonical spelling of the same URL. The lookup
	// canonicalizes, so the recorded fetches must still be found.
	r, w, _ = os.Pipe()
	os.Stdout = w

	err = showPageHistory(ctx, db, "https://DOCS.example.org/storage/#top", false)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("showPageHistory() error = %v", err)
	}

	buf.Reset()
	_, _ = buf.ReadFrom(r)
	output = buf.String()

	if !strings.Contains(output, "2 fetches") {
		t.Errorf("expected '2 fetches' in output, got: %s", output)
	}
	if !strings.Contains(output, "Storage Services") {
		t.Errorf("expected page title in output, got: %s", output)
	}
	if !strings.Contains(output, pageURL) {
		t.Errorf("expected canonical URL %q in output, got: %s", pageURL, output)
	}
}
