// Package main provides the entry point for the docmap CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for docmap.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docmap",
		Short: "Build browsable maps of documentation websites",
		Long: `Docmap crawls a documentation website and turns the stored pages into
a browsable map: categorized page listings, a link graph with dangling
link detection, and a knowledge base of services, resources, and FAQ
entries extracted from the page text.

Crawling and processing are separate phases. A crawl writes a page
archive to disk; processing reads the archive back and produces the
rendered site, graph files, and summary report. An interrupted crawl
resumes from its last checkpoint when run again.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewProcessCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
