package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("posts/hello.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("posts/hello.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestList_IncludesMDXAndSkipsOthers(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("posts/a.md", []byte("a"))
	_ = s.Write("posts/b.mdx", []byte("b"))
	_ = s.Write("posts/cover.png", []byte("not content"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.Checksum == "" {
			t.Errorf("missing checksum for %s", item.Path)
		}
	}
}

func TestList_Subdir(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("posts/a.md", []byte("a"))
	_ = s.Write("pages/about.md", []byte("b"))

	items, err := s.List("pages")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Path != "pages/about.md" {
		t.Errorf("items = %+v", items)
	}
}

func TestDelete(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("posts/del.md", []byte("bye"))
	if err := s.Delete("posts/del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("posts/del.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestMove(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("posts/old.md", []byte("data"))
	if err := s.Move("posts/old.md", "pages/new.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("pages/new.md")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("posts/old.md"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("posts/atomic.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("posts/atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("posts/atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, "posts", ".ansuz-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/ansuz-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "ansuz-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
