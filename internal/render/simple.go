package render

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display after a processing run.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCategories(&sb, summary)
	w.writeKnowledge(&sb, summary)
	w.writeGraph(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with corpus information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      DOCUMENTATION MAP REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Site:       %s\n", summary.Host))
	sb.WriteString(fmt.Sprintf("Processed:  %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Pages:      %d\n", summary.TotalPages))
	if summary.OutputDir != "" {
		sb.WriteString(fmt.Sprintf("Output:     %s\n", summary.OutputDir))
	}
	sb.WriteString("\n")
}

// writeCategories writes the category breakdown section.
func (w *SimpleWriter) writeCategories(sb *strings.Builder, summary *Summary) {
	if len(summary.Categories) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CATEGORIES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.Categories) == 0 {
		sb.WriteString("  No categories assigned\n")
	} else {
		for _, label := range summary.SortedCategories() {
			sb.WriteString(fmt.Sprintf("  %-24s %d page(s)\n", label, len(summary.Categories[label])))
		}
	}
	sb.WriteString("\n")
}

// writeKnowledge writes the extracted facts section.
func (w *SimpleWriter) writeKnowledge(sb *strings.Builder, summary *Summary) {
	if !summary.HasKnowledge() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("EXTRACTED KNOWLEDGE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if !summary.HasKnowledge() {
		sb.WriteString("  No facts extracted\n\n")
		return
	}

	if services := summary.Services(); len(services) > 0 {
		sb.WriteString("  Services:\n")
		for _, name := range services {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", name))
		}
	}
	if resources := summary.Resources(); len(resources) > 0 {
		sb.WriteString("  Storage resources:\n")
		for _, name := range resources {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", name))
		}
	}
	if n := summary.FAQCount(); n > 0 {
		sb.WriteString(fmt.Sprintf("  FAQ pairs: %d\n", n))
		if w.verbose {
			for _, faq := range summary.Knowledge.FAQs {
				sb.WriteString(fmt.Sprintf("    * %s\n", faq.Question))
			}
		}
	}
	sb.WriteString("\n")
}

// writeGraph writes the link graph section.
func (w *SimpleWriter) writeGraph(sb *strings.Builder, summary *Summary) {
	if summary.Graph == nil && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("LINK GRAPH\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Nodes:    %d\n", summary.NodeCount()))
	sb.WriteString(fmt.Sprintf("  Edges:    %d\n", summary.EdgeCount()))
	sb.WriteString(fmt.Sprintf("  Dangling: %d\n", summary.DanglingCount()))

	if w.verbose && summary.DanglingCount() > 0 {
		sb.WriteString("\n")
		for _, edge := range summary.Dangling() {
			sb.WriteString(fmt.Sprintf("  * %s -> %s\n", edge.Source, edge.Target))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by docmap\n")
	sb.WriteString("https://github.com/docmap-dev/docmap\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
