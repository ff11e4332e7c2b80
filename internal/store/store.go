package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docmap-dev/docmap/internal/model"
	"github.com/docmap-dev/docmap/internal/urlutil"
)

// File names inside a store directory.
const (
	pagesDirName = "pages"
	indexFile    = "index.json"
	visitedFile  = "visited_urls.json"
	pendingFile  = "pending_urls.json"
	linkMapFile  = "link_map.json"
)

// ErrNoPages is returned when a store directory holds no page records.
var ErrNoPages = errors.New("no page records found")

// Store reads and writes crawl output in a single directory.
type Store struct {
	// dir is the root of the store layout.
	dir string
}

// New opens a store rooted at dir, creating the directory layout if it
// does not exist yet.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, pagesDirName), 0750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Open opens an existing store without creating anything. It fails when
// the directory does not exist, which distinguishes "nothing crawled yet"
// from an empty crawl.
func Open(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open store: %s is not a directory", dir)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put writes one page record immediately. The file name is derived from
// the page URL, so writing the same URL twice replaces the record.
func (s *Store) Put(page *model.Page) error {
	name := urlutil.Slug(page.URL) + ".json"
	return WriteJSON(filepath.Join(s.dir, pagesDirName, name), page)
}

// PageFiles returns the page record file names in lexical order.
func (s *Store) PageFiles() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, pagesDirName))
	if err != nil {
		return nil, fmt.Errorf("read pages directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ReadPage reads a single page record by file name.
func (s *Store) ReadPage(name string) (*model.Page, error) {
	var page model.Page
	if err := ReadJSON(filepath.Join(s.dir, pagesDirName, name), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Pages reads every page record, sorted by file name. A store with no
// records returns ErrNoPages.
func (s *Store) Pages() ([]*model.Page, error) {
	names, err := s.PageFiles()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoPages
	}

	pages := make([]*model.Page, 0, len(names))
	for _, name := range names {
		page, err := s.ReadPage(name)
		if err != nil {
			return nil, fmt.Errorf("read page %s: %w", name, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// SaveFrontier replaces the visited set and pending queue on disk.
// The visited set is written sorted so the file is deterministic; the
// queue keeps its FIFO order because order is its meaning.
func (s *Store) SaveFrontier(visited, queue []string) error {
	sortedVisited := make([]string, len(visited))
	copy(sortedVisited, visited)
	sort.Strings(sortedVisited)

	if err := WriteJSON(filepath.Join(s.dir, visitedFile), sortedVisited); err != nil {
		return err
	}
	return WriteJSON(filepath.Join(s.dir, pendingFile), queue)
}

// LoadFrontier reads the visited set and pending queue. Missing files
// yield empty slices, not errors: a fresh store simply has no state yet.
func (s *Store) LoadFrontier() (visited, queue []string, err error) {
	visited = make([]string, 0)
	queue = make([]string, 0)

	if err := ReadJSON(filepath.Join(s.dir, visitedFile), &visited); err != nil && !os.IsNotExist(err) {
		return nil, nil, err
	}
	if err := ReadJSON(filepath.Join(s.dir, pendingFile), &queue); err != nil && !os.IsNotExist(err) {
		return nil, nil, err
	}
	return visited, queue, nil
}

// SaveLinkMap replaces the persisted link map.
func (s *Store) SaveLinkMap(lm model.LinkMap) error {
	return WriteJSON(filepath.Join(s.dir, linkMapFile), lm)
}

// LoadLinkMap reads the persisted link map. A missing file yields an
// empty map.
func (s *Store) LoadLinkMap() (model.LinkMap, error) {
	lm := make(model.LinkMap)
	if err := ReadJSON(filepath.Join(s.dir, linkMapFile), &lm); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return lm, nil
}

// SaveIndex replaces the persisted archive index.
func (s *Store) SaveIndex(idx *model.Index) error {
	return WriteJSON(filepath.Join(s.dir, indexFile), idx)
}

// LoadIndex reads the persisted archive index. A missing file yields an
// empty index.
func (s *Store) LoadIndex() (*model.Index, error) {
	idx := &model.Index{Pages: make([]model.IndexEntry, 0)}
	if err := ReadJSON(filepath.Join(s.dir, indexFile), idx); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return idx, nil
}

// HasState reports whether a previous crawl left frontier state behind.
func (s *Store) HasState() bool {
	_, err := os.Stat(filepath.Join(s.dir, visitedFile))
	return err == nil
}
