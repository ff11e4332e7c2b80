package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/docmap-dev/docmap/internal/config"
	"github.com/docmap-dev/docmap/internal/log"
	"github.com/docmap-dev/docmap/internal/render"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewServeCmd creates the serve command.
// This command serves a processed site directory over HTTP for local browsing.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [site-dir]",
		Short: "Serve a processed site map over HTTP",
		Long: `Serve starts a local HTTP server for a processed site directory so the
rendered map can be browsed. The directory must contain the output of
'docmap process'.

The server runs until interrupted with Ctrl+C.

Examples:
  # Serve the default site directory on :8080
  docmap serve

  # Serve a specific directory on a specific address
  docmap serve --addr 127.0.0.1:3000 mysite`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", ":8080",
		"Address to listen on")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, args []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	siteDir := config.DefaultSiteDir
	if len(args) > 0 {
		siteDir = args[0]
	}

	// A directory without an index page is not a processed site.
	if _, err := os.Stat(filepath.Join(siteDir, render.IndexFileName)); err != nil {
		return fmt.Errorf("no processed site found at %s (run 'docmap process' first): %w", siteDir, err)
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping server...")
		cancel()
	}()

	return runServe(ctx, addr, siteDir, logger)
}

// runServe serves siteDir on addr until the context is cancelled.
func runServe(ctx context.Context, addr, siteDir string, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           http.FileServer(http.Dir(siteDir)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("Serving %s at http://%s\n", siteDir, displayAddr(addr))
	fmt.Println("Press Ctrl+C to stop.")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		// In-flight requests get a grace period before the listener dies.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// displayAddr rewrites a bare port address into a browsable host name.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
