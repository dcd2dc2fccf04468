package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EntryRow represents a row in the entries table.
type EntryRow struct {
	Path        string
	Collection  string
	Slug        string
	Title       string
	Description string
	Date        time.Time
	Tags        []string
	Draft       bool
	Weight      int
	Checksum    string
	UpdatedAt   time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// TagCount is a tag with the number of non-draft entries carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ListQuery filters and orders a listing.
type ListQuery struct {
	Collection string
	Tag        string
	Drafts     bool // include draft entries
	Sort       string
	Limit      int
	Offset     int
}

// UpsertEntry inserts or replaces an entry and its FTS row within a transaction.
func (db *DB) UpsertEntry(row EntryRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(row.Tags)

	var dateArg any
	if !row.Date.IsZero() {
		dateArg = row.Date
	}

	_, err = tx.Exec(`
		INSERT INTO entries (path, collection, slug, title, description, date, tags, draft, weight, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			collection  = excluded.collection,
			slug        = excluded.slug,
			title       = excluded.title,
			description = excluded.description,
			date        = excluded.date,
			tags        = excluded.tags,
			draft       = excluded.draft,
			weight      = excluded.weight,
			checksum    = excluded.checksum,
			body        = excluded.body,
			updated_at  = excluded.updated_at
	`, row.Path, row.Collection, row.Slug, row.Title, row.Description, dateArg,
		string(tagsJSON), row.Draft, row.Weight, row.Checksum, body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert entry: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Path, row.Title, row.Description, body, row.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteEntry removes an entry and its FTS row.
func (db *DB) DeleteEntry(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM entries WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for an entry, or empty string if
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM entries WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetEntry returns the indexed row for path, or nil when not indexed.
func (db *DB) GetEntry(path string) (*EntryRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, collection, slug, title, description, date, tags, draft, weight, checksum, updated_at
		FROM entries WHERE path = ?
	`, path)
	e, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get entry: %w", err)
	}
	return e, nil
}

// ListEntries returns filtered, ordered entries plus the total match count.
func (db *DB) ListEntries(q ListQuery) ([]EntryRow, int, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	var where []string
	var args []any
	if q.Collection != "" {
		where = append(where, "collection = ?")
		args = append(args, q.Collection)
	}
	if !q.Drafts {
		where = append(where, "draft = 0")
	}
	if q.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(entries.tags) WHERE json_each.value = ?)")
		args = append(args, q.Tag)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count entries: %w", err)
	}

	order := orderBy(q.Sort)
	listArgs := append(append([]any{}, args...), q.Limit, q.Offset)
	rows, err := db.conn.Query(`
		SELECT path, collection, slug, title, description, date, tags, draft, weight, checksum, updated_at
		FROM entries`+clause+` ORDER BY `+order+` LIMIT ? OFFSET ?
	`, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list entries: %w", err)
	}
	defer rows.Close()

	var out []EntryRow
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

// Tags returns tag usage counts across non-draft entries, most used first.
func (db *DB) Tags() ([]TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT j.value, count(*)
		FROM entries e, json_each(e.tags) j
		WHERE e.draft = 0
		GROUP BY j.value
		ORDER BY count(*) DESC, j.value ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: tags: %w", err)
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every indexed entry.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// orderBy maps a sort name onto a whitelisted ORDER BY expression.
func orderBy(sort string) string {
	switch sort {
	case "title":
		return "title ASC"
	case "weight":
		return "weight ASC, title ASC"
	case "path":
		return "path ASC"
	case "date", "":
		return "date DESC, path ASC"
	default:
		return "date DESC, path ASC"
	}
}

func scanEntry(scan func(dest ...any) error) (*EntryRow, error) {
	var e EntryRow
	var date sql.NullTime
	var tagsJSON string
	if err := scan(&e.Path, &e.Collection, &e.Slug, &e.Title, &e.Description,
		&date, &tagsJSON, &e.Draft, &e.Weight, &e.Checksum, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if date.Valid {
		e.Date = date.Time
	}
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		e.Tags = nil
	}
	return &e, nil
}
