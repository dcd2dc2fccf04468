// Package content defines the blog's content collections: schema-validated
// markdown entries grouped by the top-level directory they live in.
package content

import (
	"path"
	"strings"
	"time"
)

// Collection identifies a named set of entries with its own schema rules.
type Collection string

const (
	// CollectionPosts holds dated blog essays.
	CollectionPosts Collection = "posts"
	// CollectionPages holds standalone pages (about, workshop) ordered by weight.
	CollectionPages Collection = "pages"
	// CollectionPapers holds dated paper notes.
	CollectionPapers Collection = "papers"
)

// Collections returns all known collections in listing order.
func Collections() []Collection {
	return []Collection{CollectionPosts, CollectionPages, CollectionPapers}
}

// Valid reports whether c names a known collection.
func (c Collection) Valid() bool {
	switch c {
	case CollectionPosts, CollectionPages, CollectionPapers:
		return true
	}
	return false
}

// CollectionForPath derives the collection from the first element of a
// slash-separated entry path (e.g. "posts/hello.md" → posts).
func CollectionForPath(p string) (Collection, bool) {
	p = strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")
	first, _, found := strings.Cut(p, "/")
	if !found {
		return "", false
	}
	c := Collection(first)
	return c, c.Valid()
}

// Entry is a parsed, validated content file.
type Entry struct {
	Path        string         `json:"path"`
	Collection  Collection     `json:"collection"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Date        time.Time      `json:"date,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Draft       bool           `json:"draft"`
	Weight      int            `json:"weight,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
	Body        string         `json:"body"`
}
