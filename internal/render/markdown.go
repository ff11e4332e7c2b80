package render

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// maxDanglingRows caps the dangling-link table. A crawl cut off by a small
// page budget can leave thousands of unresolved links; the full list lives
// in link_graph.json.
const maxDanglingRows = 25

// MarkdownWriter outputs the processing report in Markdown format.
// This format is designed for committing next to the rendered site and
// for pasting into issues or pull requests.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCategories(md, summary)
	w.writeKnowledge(md, summary)
	w.writeDangling(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with corpus information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Documentation Map Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + summary.Host + "`"},
			{"Processed", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages", strconv.Itoa(summary.TotalPages)},
			{"Categories", strconv.Itoa(len(summary.Categories))},
			{"Graph Edges", strconv.Itoa(summary.EdgeCount())},
			{"Dangling Links", strconv.Itoa(summary.DanglingCount())},
		},
	})
	md.PlainText("")

	w.writeAlert(md, summary)
}

// writeAlert writes an appropriate alert based on the corpus state.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *Summary) {
	switch {
	case summary.TotalPages == 0:
		md.Note("The corpus is empty. Crawl the site before processing.")
	case summary.DanglingCount() > 0:
		md.Importantf(
			"%d link(s) point at pages that were never stored. They were filtered out, failed to fetch, or fell outside the page budget.",
			summary.DanglingCount(),
		)
	default:
		md.Tip("Every discovered link resolves to a stored page.")
	}
	md.PlainText("")
}

// writeCategories writes the category breakdown table and chart.
func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, summary *Summary) {
	md.H2("Categories")
	md.PlainText("")

	if len(summary.Categories) == 0 {
		md.PlainText("No categories were assigned.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(summary.Categories))
	for _, label := range summary.SortedCategories() {
		rows = append(rows, []string{label, strconv.Itoa(len(summary.Categories[label]))})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeCategoryChart(md, summary)
}

// writeCategoryChart writes a mermaid pie chart of pages per category.
func (w *MarkdownWriter) writeCategoryChart(md *markdown.Markdown, summary *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Pages per Category"),
		piechart.WithShowData(true),
	)

	for _, label := range summary.SortedCategories() {
		chart.LabelAndIntValue(label, uint64(len(summary.Categories[label])))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeKnowledge writes the extracted fact sections.
func (w *MarkdownWriter) writeKnowledge(md *markdown.Markdown, summary *Summary) {
	md.H2("Extracted Knowledge")
	md.PlainText("")

	if !summary.HasKnowledge() {
		md.PlainText("No facts were extracted.")
		md.PlainText("")
		return
	}

	if services := summary.Services(); len(services) > 0 {
		md.H3("Services")
		md.PlainText("")
		md.BulletList(services...)
		md.PlainText("")
	}

	if resources := summary.Resources(); len(resources) > 0 {
		md.H3("Storage Resources")
		md.PlainText("")
		md.BulletList(resources...)
		md.PlainText("")
	}

	if summary.FAQCount() > 0 {
		w.writeFAQTable(md, summary)
	}
}

// writeFAQTable writes the question/answer pairs with truncated cells.
func (w *MarkdownWriter) writeFAQTable(md *markdown.Markdown, summary *Summary) {
	md.H3("FAQ")
	md.PlainText("")

	rows := make([][]string, 0, summary.FAQCount())
	for _, faq := range summary.Knowledge.FAQs {
		rows = append(rows, []string{
			truncateString(faq.Question, 60),
			truncateString(faq.Answer, 80),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Question", "Answer"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDangling writes the unresolved link table.
func (w *MarkdownWriter) writeDangling(md *markdown.Markdown, summary *Summary) {
	if summary.DanglingCount() == 0 {
		return
	}

	md.H2("Dangling Links")
	md.PlainText("")

	rows := make([][]string, 0, maxDanglingRows)
	for i, edge := range summary.Dangling() {
		if i == maxDanglingRows {
			break
		}
		rows = append(rows, []string{
			truncateString(edge.Source, 50),
			truncateString(edge.Target, 50),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"From", "To"},
		Rows:   rows,
	})

	if extra := summary.DanglingCount() - maxDanglingRows; extra > 0 {
		md.PlainTextf("... and %d more.", extra)
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [docmap](https://github.com/docmap-dev/docmap)*")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
