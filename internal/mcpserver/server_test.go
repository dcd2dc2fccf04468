package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/analytics"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/markdown"
	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/storage"
)

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()

	contentDir := t.TempDir()
	store, err := storage.NewFS(contentDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "ansuz-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats := analytics.New("", "", "", time.Second, logger)
	svc := site.NewService(store, db, markdown.NewEngine(), stats)

	srv := New(store, db, svc)
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call the
	// tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_entries":
		result, err = srv.searchEntries(ctx, req)
	case "read_entry":
		result, err = srv.readEntry(ctx, req)
	case "create_entry":
		result, err = srv.createEntry(ctx, req)
	case "list_entries":
		result, err = srv.listEntries(ctx, req)
	case "top_pages":
		result, err = srv.topPages(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadEntry(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_entry", map[string]interface{}{
		"path":    "pages/test.md",
		"content": "# Test\nHello",
	})
	text := resultText(r)
	if text != "created: pages/test.md" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_entry", map[string]interface{}{
		"path": "pages/test.md",
	})
	text = resultText(r)
	if text != "# Test\nHello" {
		t.Errorf("read result = %q", text)
	}
}

func TestCreateEntry_InvalidFrontmatter(t *testing.T) {
	srv, _ := testServer(t)

	// Posts require description and date.
	r := callTool(t, srv, "create_entry", map[string]interface{}{
		"path":    "posts/bad.md",
		"content": "---\ntitle: Bad\n---\nbody",
	})
	if !r.IsError {
		t.Error("expected error for invalid post frontmatter")
	}
	if !strings.Contains(resultText(r), "get_frontmatter_contract") {
		t.Errorf("error should point at the contract, got %q", resultText(r))
	}
}

func TestCreateEntry_Duplicate(t *testing.T) {
	srv, _ := testServer(t)

	args := map[string]interface{}{
		"path":    "pages/dup.md",
		"content": "# Dup\nbody",
	}
	_ = callTool(t, srv, "create_entry", args)
	r := callTool(t, srv, "create_entry", args)
	if !r.IsError {
		t.Error("expected error for duplicate entry")
	}
}

func TestListEntries(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "create_entry", map[string]interface{}{
		"path": "pages/a.md", "content": "# A\na",
	})
	_ = callTool(t, srv, "create_entry", map[string]interface{}{
		"path": "pages/b.md", "content": "# B\nb",
	})

	r := callTool(t, srv, "list_entries", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "pages/a.md") || !strings.Contains(text, "pages/b.md") {
		t.Errorf("list = %q", text)
	}

	// Collection filter.
	r = callTool(t, srv, "list_entries", map[string]interface{}{"collection": "posts"})
	if resultText(r) != "no entries found" {
		t.Errorf("posts list = %q, want empty", resultText(r))
	}

	r = callTool(t, srv, "list_entries", map[string]interface{}{"collection": "recipes"})
	if !r.IsError {
		t.Error("expected error for unknown collection")
	}
}

func TestReadEntryMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_entry", map[string]interface{}{"path": "posts/nope.md"})
	if !r.IsError {
		t.Error("expected error for missing entry")
	}
}

func TestTopPages(t *testing.T) {
	srv, _ := testServer(t)

	// No analytics credentials configured; the tool serves fallback data.
	r := callTool(t, srv, "top_pages", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "/posts/") {
		t.Errorf("top_pages = %q, want fallback page paths", text)
	}
}

func TestFrontmatterContractMentionsCollections(t *testing.T) {
	for _, want := range []string{"posts/", "pages/", "papers/", ":h[", "description"} {
		if !strings.Contains(FrontmatterContract, want) {
			t.Errorf("contract missing %q", want)
		}
	}
}
