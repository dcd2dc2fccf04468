package index

import (
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/content"
	"github.com/starford/ansuz/internal/storage"
)

// Sync walks the content root and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files that fail schema validation are skipped with a warning
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path), slog.String("checksum", checksum.Short(data)))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteEntry(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses data and upserts it into the DB. Schema validation
// failures surface as errors so callers can log and skip.
func indexFile(db *DB, path string, data []byte) error {
	e, err := content.Parse(path, data)
	if err != nil {
		return err
	}
	return db.UpsertEntry(RowFromEntry(e, checksum.Sum(data)), e.Body)
}

// RowFromEntry maps a parsed entry onto its index row.
func RowFromEntry(e *content.Entry, cs string) EntryRow {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return EntryRow{
		Path:        e.Path,
		Collection:  string(e.Collection),
		Slug:        e.Slug,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Tags:        tags,
		Draft:       e.Draft,
		Weight:      e.Weight,
		Checksum:    cs,
		UpdatedAt:   time.Now(),
	}
}
