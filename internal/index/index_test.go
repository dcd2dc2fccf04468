package index

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func post(path, title string, date time.Time, tags []string, draft bool) EntryRow {
	return EntryRow{
		Path:       path,
		Collection: "posts",
		Slug:       title,
		Title:      title,
		Date:       date,
		Tags:       tags,
		Draft:      draft,
		Checksum:   "cs-" + path,
		UpdatedAt:  time.Now(),
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&count); err != nil {
		t.Fatalf("entries table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := post("posts/hello.md", "Hello", time.Now(), []string{"go"}, false)
	row.Checksum = "abc123"
	if err := db.UpsertEntry(row, "This is a hello world post."); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}
	cs, err := db.GetChecksum("posts/hello.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestGetEntry(t *testing.T) {
	db := testDB(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_ = db.UpsertEntry(post("posts/a.md", "A", date, []string{"go", "db"}, false), "body")

	e, err := db.GetEntry("posts/a.md")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if e == nil {
		t.Fatal("expected entry")
	}
	if e.Title != "A" || e.Collection != "posts" {
		t.Errorf("entry = %+v", e)
	}
	if !e.Date.Equal(date) {
		t.Errorf("date = %v, want %v", e.Date, date)
	}
	if len(e.Tags) != 2 {
		t.Errorf("tags = %v", e.Tags)
	}

	missing, err := db.GetEntry("posts/nope.md")
	if err != nil {
		t.Fatalf("GetEntry missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing entry, got %+v", missing)
	}
}

func TestListEntries_CollectionAndDraftFilter(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertEntry(post("posts/a.md", "A", now, nil, false), "")
	_ = db.UpsertEntry(post("posts/b.md", "B", now.Add(-time.Hour), nil, true), "")
	_ = db.UpsertEntry(EntryRow{Path: "pages/about.md", Collection: "pages", Slug: "about", Title: "About", Tags: []string{}, Weight: 1, Checksum: "x", UpdatedAt: now}, "")

	rows, total, err := db.ListEntries(ListQuery{Collection: "posts"})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Path != "posts/a.md" {
		t.Errorf("drafts should be excluded: total=%d rows=%+v", total, rows)
	}

	rows, total, err = db.ListEntries(ListQuery{Collection: "posts", Drafts: true})
	if err != nil {
		t.Fatalf("ListEntries drafts: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Errorf("with drafts: total=%d rows=%d", total, len(rows))
	}
}

func TestListEntries_TagFilter(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertEntry(post("posts/a.md", "A", now, []string{"go", "sql"}, false), "")
	_ = db.UpsertEntry(post("posts/b.md", "B", now, []string{"rust"}, false), "")

	rows, total, err := db.ListEntries(ListQuery{Tag: "sql"})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Path != "posts/a.md" {
		t.Errorf("tag filter failed: total=%d rows=%+v", total, rows)
	}
}

func TestListEntries_SortDateDescDefault(t *testing.T) {
	db := testDB(t)
	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = db.UpsertEntry(post("posts/old.md", "Old", older, nil, false), "")
	_ = db.UpsertEntry(post("posts/new.md", "New", newer, nil, false), "")

	rows, _, err := db.ListEntries(ListQuery{Collection: "posts"})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if rows[0].Path != "posts/new.md" {
		t.Errorf("expected newest first, got %+v", rows)
	}
}

func TestListEntries_SortWeight(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertEntry(EntryRow{Path: "pages/b.md", Collection: "pages", Slug: "b", Title: "B", Tags: []string{}, Weight: 2, Checksum: "1", UpdatedAt: now}, "")
	_ = db.UpsertEntry(EntryRow{Path: "pages/a.md", Collection: "pages", Slug: "a", Title: "A", Tags: []string{}, Weight: 1, Checksum: "2", UpdatedAt: now}, "")

	rows, _, err := db.ListEntries(ListQuery{Collection: "pages", Sort: "weight"})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if rows[0].Weight != 1 || rows[1].Weight != 2 {
		t.Errorf("weight order wrong: %+v", rows)
	}
}

func TestListEntries_Pagination(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	for _, p := range []string{"posts/1.md", "posts/2.md", "posts/3.md"} {
		_ = db.UpsertEntry(post(p, p, now, nil, false), "")
	}
	rows, total, err := db.ListEntries(ListQuery{Collection: "posts", Sort: "path", Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(rows) != 1 || rows[0].Path != "posts/3.md" {
		t.Errorf("page = %+v", rows)
	}
}

func TestTags(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertEntry(post("posts/a.md", "A", now, []string{"go", "sql"}, false), "")
	_ = db.UpsertEntry(post("posts/b.md", "B", now, []string{"go"}, false), "")
	_ = db.UpsertEntry(post("posts/c.md", "C", now, []string{"hidden"}, true), "")

	tags, err := db.Tags()
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("tags = %+v, want 2 (draft tags excluded)", tags)
	}
	if tags[0].Tag != "go" || tags[0].Count != 2 {
		t.Errorf("tags[0] = %+v, want go:2", tags[0])
	}
	if tags[1].Tag != "sql" || tags[1].Count != 1 {
		t.Errorf("tags[1] = %+v, want sql:1", tags[1])
	}
}

func TestDeleteEntry(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(post("posts/del.md", "Del", time.Now(), nil, false), "body")

	if err := db.DeleteEntry("posts/del.md"); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	cs, _ := db.GetChecksum("posts/del.md")
	if cs != "" {
		t.Errorf("deleted entry still has checksum %q", cs)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertEntry(post("posts/up.md", "Old", now, nil, false), "old body")
	updated := post("posts/up.md", "New", now, []string{"new"}, false)
	updated.Checksum = "2"
	_ = db.UpsertEntry(updated, "new body")

	e, _ := db.GetEntry("posts/up.md")
	if e == nil || e.Title != "New" || e.Checksum != "2" {
		t.Errorf("entry = %+v", e)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("posts/nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(post("posts/s.md", "Search Me", time.Now(), nil, false), "uniqueword appears here")

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "posts/s.md" {
		t.Errorf("search results = %+v, want 1 hit for posts/s.md", results)
	}
}

func TestEntryWithoutDate(t *testing.T) {
	db := testDB(t)
	row := EntryRow{Path: "pages/about.md", Collection: "pages", Slug: "about", Title: "About", Tags: []string{}, Checksum: "x", UpdatedAt: time.Now()}
	if err := db.UpsertEntry(row, "body"); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}
	e, err := db.GetEntry("pages/about.md")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if !e.Date.IsZero() {
		t.Errorf("date should be zero, got %v", e.Date)
	}
}
