package render

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/docmap-dev/docmap/internal/model"
	"github.com/docmap-dev/docmap/internal/urlutil"
)

// IndexFileName is the category index file at the site root.
const IndexFileName = "index.html"

// PageFileName returns the file a page renders to. Slug-based names keep
// the tree flat and collision-free regardless of the site's path depth.
func PageFileName(pageURL string) string {
	return urlutil.Slug(pageURL) + ".html"
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
header { display: flex; justify-content: space-between; border-bottom: 1px solid #ccc; padding-bottom: .5rem; }
.category { background: #eef2f7; border-radius: 4px; padding: .1rem .6rem; font-size: .85rem; }
section { border-top: 1px solid #eee; margin-top: 2rem; }
footer { border-top: 1px solid #ccc; margin-top: 2rem; padding-top: .5rem; font-size: .85rem; color: #555; }
</style>
</head>
<body>
<header><a href="index.html">&larr; Index</a>{{with .Category}}<span class="category">{{.}}</span>{{end}}</header>
<h1>{{.Title}}</h1>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}{{if .Related}}<section>
<h2>Related Pages</h2>
<ul>
{{range .Related}}<li><a href="{{.File}}">{{.Title}}</a></li>
{{end}}</ul>
</section>
{{end}}<footer>Source: <a href="{{.Source}}">{{.Source}}</a></footer>
</body>
</html>
`

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
h2 { border-bottom: 1px solid #ccc; padding-bottom: .3rem; }
footer { border-top: 1px solid #ccc; margin-top: 2rem; padding-top: .5rem; font-size: .85rem; color: #555; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Groups}}<h2>{{.Heading}} ({{.Count}})</h2>
<ul>
{{range .Pages}}<li><a href="{{.File}}">{{.Title}}</a></li>
{{end}}</ul>
{{end}}<footer>{{.TotalPages}} pages in {{len .Groups}} categories.</footer>
</body>
</html>
`

var (
	pageTmpl  = template.Must(template.New("page").Parse(pageTemplate))
	indexTmpl = template.Must(template.New("index").Parse(indexTemplate))
)

// pageLink is one entry in a related-pages or index list.
type pageLink struct {
	File  string
	Title string
}

// pageData feeds the per-page template.
type pageData struct {
	Title      string
	Category   string
	Paragraphs []string
	Related    []pageLink
	Source     string
}

// indexGroup is one category section on the index page.
type indexGroup struct {
	Heading string
	Count   int
	Pages   []pageLink
}

// indexData feeds the index template.
type indexData struct {
	Title      string
	TotalPages int
	Groups     []indexGroup
}

// Site writes the browsable HTML tree for a processed corpus.
// Output is deterministic: the same corpus renders to the same bytes.
type Site struct {
	dir    string
	titler cases.Caser
}

// NewSite creates the output directory and returns a Site writing into it.
func NewSite(dir string) (*Site, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create site directory: %w", err)
	}
	return &Site{
		dir:    dir,
		titler: cases.Title(language.English),
	}, nil
}

// Render writes one HTML file per page plus the category index.
//
// Related-page lists come from the graph's resolved edges, so a rendered
// page never links at a page that was not stored. Dangling references stay
// out of the site entirely; they are reported, not browsed.
func (s *Site) Render(pages []*model.Page, categories model.Categories, g *model.LinkGraph) error {
	if g == nil {
		g = &model.LinkGraph{}
	}

	byURL := make(map[string]*model.Page, len(pages))
	for _, page := range pages {
		byURL[page.URL] = page
	}
	labels := make(map[string]string, len(pages))
	for label, urls := range categories {
		for _, u := range urls {
			labels[u] = label
		}
	}

	for _, page := range pages {
		if err := s.renderPage(page, labels[page.URL], g, byURL); err != nil {
			return err
		}
	}
	return s.renderIndex(pages, categories, byURL)
}

// renderPage writes a single page file.
func (s *Site) renderPage(page *model.Page, label string, g *model.LinkGraph, byURL map[string]*model.Page) error {
	related := make([]pageLink, 0)
	for _, target := range g.Outgoing(page.URL) {
		stored, ok := byURL[target]
		if !ok {
			continue
		}
		related = append(related, pageLink{
			File:  PageFileName(target),
			Title: titleOrURL(stored),
		})
	}

	data := pageData{
		Title:      titleOrURL(page),
		Category:   s.heading(label),
		Paragraphs: page.Paragraphs(),
		Related:    related,
		Source:     page.URL,
	}
	return s.writeTemplate(PageFileName(page.URL), pageTmpl, data)
}

// renderIndex writes the category index file.
func (s *Site) renderIndex(pages []*model.Page, categories model.Categories, byURL map[string]*model.Page) error {
	labels := make([]string, 0, len(categories))
	for label := range categories {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	groups := make([]indexGroup, 0, len(labels))
	for _, label := range labels {
		urls := categories[label]
		links := make([]pageLink, 0, len(urls))
		for _, u := range urls {
			title := u
			if page, ok := byURL[u]; ok {
				title = titleOrURL(page)
			}
			links = append(links, pageLink{File: PageFileName(u), Title: title})
		}
		groups = append(groups, indexGroup{
			Heading: s.heading(label),
			Count:   len(links),
			Pages:   links,
		})
	}

	data := indexData{
		Title:      indexTitle(pages),
		TotalPages: len(pages),
		Groups:     groups,
	}
	return s.writeTemplate(IndexFileName, indexTmpl, data)
}

// writeTemplate renders into a buffer first so a template error never
// leaves a half-written file behind.
func (s *Site) writeTemplate(name string, tmpl *template.Template, data interface{}) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// heading turns a category label into a human heading: separators become
// spaces and words are title-cased, so "user-guide" renders as "User Guide".
func (s *Site) heading(label string) string {
	if label == "" {
		return ""
	}
	return s.titler.String(labelSeparators.Replace(label))
}

var labelSeparators = strings.NewReplacer("-", " ", "_", " ")

// indexTitle derives the index heading from the corpus host.
func indexTitle(pages []*model.Page) string {
	for _, page := range pages {
		u, err := url.Parse(page.URL)
		if err != nil || u.Host == "" {
			continue
		}
		return u.Host + " documentation map"
	}
	return "Documentation map"
}

// titleOrURL falls back to the URL when a page had no title tag.
func titleOrURL(page *model.Page) string {
	if strings.TrimSpace(page.Title) != "" {
		return page.Title
	}
	return page.URL
}
