package api

import (
	"github.com/starford/ansuz/internal/analytics"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/site"
)

// CreateEntryRequest is the request body for creating an entry.
type CreateEntryRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// UpdateEntryRequest is the request body for updating an entry.
type UpdateEntryRequest struct {
	Content string `json:"content"`
}

// EntryDetail is the full entry response type (aliased from the domain layer).
type EntryDetail = site.EntryDetail

// EntryListItem is a lightweight item in a list response (aliased from the
// domain layer).
type EntryListItem = site.EntryListItem

// EntryListResponse wraps paginated entry listings.
type EntryListResponse struct {
	Entries []EntryListItem `json:"entries"`
	Total   int             `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// TagsResponse wraps tag usage counts.
type TagsResponse struct {
	Tags []index.TagCount `json:"tags"`
}

// TopPagesResponse wraps analytics page stats.
type TopPagesResponse struct {
	Pages []analytics.PageStat `json:"pages"`
}

// AssetUploadResponse is returned after a successful asset upload.
type AssetUploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}
