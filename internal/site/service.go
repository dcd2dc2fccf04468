// Package site coordinates storage, index, markdown rendering, and analytics
// for the API and MCP layers.
package site

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/analytics"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/content"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/markdown"
	"github.com/starford/ansuz/internal/storage"
)

// EntryDetail is the full representation of an entry, including the rendered
// HTML body.
type EntryDetail struct {
	Path        string         `json:"path"`
	Collection  string         `json:"collection"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Date        time.Time      `json:"date,omitempty"`
	Tags        []string       `json:"tags"`
	Draft       bool           `json:"draft"`
	Weight      int            `json:"weight,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
	Content     string         `json:"content"`
	HTML        string         `json:"html"`
	Checksum    string         `json:"checksum"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// EntryListItem is a lightweight item in a list response.
type EntryListItem struct {
	Path        string    `json:"path"`
	Collection  string    `json:"collection"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date,omitempty"`
	Tags        []string  `json:"tags"`
	Draft       bool      `json:"draft"`
	Weight      int       `json:"weight,omitempty"`
	Checksum    string    `json:"checksum"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    index.EntryIndex
	md    *markdown.Engine
	stats *analytics.Client
}

// NewService creates a new site service.
func NewService(store storage.Provider, db index.EntryIndex, md *markdown.Engine, stats *analytics.Client) *Service {
	return &Service{store: store, db: db, md: md, stats: stats}
}

// GetEntry reads an entry from storage, parses and validates it, and renders
// its body to HTML.
func (s *Service) GetEntry(_ context.Context, path string) (*EntryDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDetail(path, data)
}

// CreateEntry validates and writes a new entry, then indexes it.
func (s *Service) CreateEntry(_ context.Context, path string, data []byte) (*EntryDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	// Reject invalid content before touching disk.
	e, err := content.Parse(path, data)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := s.db.UpsertEntry(index.RowFromEntry(e, checksum.Sum(data)), e.Body); err != nil {
		return nil, err
	}
	return s.buildDetail(path, data)
}

// UpdateEntry writes updated content with optimistic concurrency.
func (s *Service) UpdateEntry(_ context.Context, path string, data []byte, ifMatch string) (*EntryDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	e, err := content.Parse(path, data)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := s.db.UpsertEntry(index.RowFromEntry(e, checksum.Sum(data)), e.Body); err != nil {
		return nil, err
	}
	return s.buildDetail(path, data)
}

// DeleteEntry removes an entry from storage and index.
func (s *Service) DeleteEntry(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteEntry(path)
}

// ListEntries returns filtered, paginated entries.
func (s *Service) ListEntries(_ context.Context, q index.ListQuery) ([]EntryListItem, int, error) {
	rows, total, err := s.db.ListEntries(q)
	if err != nil {
		return nil, 0, err
	}
	items := make([]EntryListItem, len(rows))
	for i, r := range rows {
		items[i] = EntryListItem{
			Path:        r.Path,
			Collection:  r.Collection,
			Slug:        r.Slug,
			Title:       r.Title,
			Description: r.Description,
			Date:        r.Date,
			Tags:        nonNilSlice(r.Tags),
			Draft:       r.Draft,
			Weight:      r.Weight,
			Checksum:    r.Checksum,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Tags delegates to the index.
func (s *Service) Tags(_ context.Context) ([]index.TagCount, error) {
	return s.db.Tags()
}

// TopPages returns the most viewed pages, enriching live results with entry
// titles from the index where possible.
func (s *Service) TopPages(ctx context.Context, limit int) []analytics.PageStat {
	stats := s.stats.TopPages(ctx, limit)
	for i, st := range stats {
		if st.Title != "" {
			continue
		}
		stats[i].Title = s.lookupTitle(st.Path)
	}
	return stats
}

// lookupTitle maps a public page path like /posts/slug onto an indexed entry
// title. Best effort: empty string when nothing matches.
func (s *Service) lookupTitle(pagePath string) string {
	trimmed := strings.Trim(pagePath, "/")
	for _, ext := range []string{".md", ".mdx"} {
		if row, err := s.db.GetEntry(trimmed + ext); err == nil && row != nil {
			return row.Title
		}
	}
	return ""
}

func (s *Service) buildDetail(path string, data []byte) (*EntryDetail, error) {
	e, err := content.Parse(path, data)
	if err != nil {
		return nil, err
	}
	html, err := s.md.Render([]byte(e.Body))
	if err != nil {
		return nil, err
	}
	return &EntryDetail{
		Path:        e.Path,
		Collection:  string(e.Collection),
		Slug:        e.Slug,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Tags:        nonNilSlice(e.Tags),
		Draft:       e.Draft,
		Weight:      e.Weight,
		Extra:       e.Extra,
		Content:     string(data),
		HTML:        string(html),
		Checksum:    checksum.Sum(data),
		UpdatedAt:   time.Now(),
	}, nil
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
