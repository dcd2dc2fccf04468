package index

// EntryIndex defines the interface for entry indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type EntryIndex interface {
	UpsertEntry(row EntryRow, body string) error
	DeleteEntry(path string) error
	GetChecksum(path string) (string, error)
	GetEntry(path string) (*EntryRow, error)
	ListEntries(q ListQuery) ([]EntryRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Tags() ([]TagCount, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies EntryIndex at compile time.
var _ EntryIndex = (*DB)(nil)
