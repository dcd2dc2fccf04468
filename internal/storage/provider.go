// Package storage defines the content-root file-system abstraction.
package storage

import (
	"strings"
	"time"
)

// FileMeta is lightweight metadata for one content file.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for content file operations. All paths are
// relative to the content root.
type Provider interface {
	// List walks dir and returns metadata for every content file under it.
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}

// IsContentFile reports whether name is a markdown or MDX entry file.
func IsContentFile(name string) bool {
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".mdx")
}
