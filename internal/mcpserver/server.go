// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/content"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/storage"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    index.EntryIndex
	svc   *site.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(store storage.Provider, db index.EntryIndex, svc *site.Service) *Server {
	s := &Server{store: store, db: db, svc: svc}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through blog entry content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("read_entry",
		mcp.WithDescription("Read the full content of a Markdown entry."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the entry (e.g. posts/hello.md)")),
	), s.readEntry)

	s.mcp.AddTool(mcp.NewTool("create_entry",
		mcp.WithDescription("Create a new Markdown entry at the specified path. "+
			"The path must start with a collection directory (posts/, pages/ or papers/). "+
			"Content MUST follow the canonical frontmatter format (posts require title, "+
			"description and date). Read the contract first via the "+
			"get_frontmatter_contract tool or the ansuz://frontmatter-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new entry (must end with .md or .mdx)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the Ansuz frontmatter contract")),
	), s.createEntry)

	s.mcp.AddTool(mcp.NewTool("get_frontmatter_contract",
		mcp.WithDescription("Returns the canonical Ansuz frontmatter contract. "+
			"Call this before creating or updating entries to ensure correct structure."),
	), s.getFrontmatterContract)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List entries, optionally filtered by collection."),
		mcp.WithString("collection", mcp.Description("Optional collection to list (posts, pages or papers; empty for all)")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("top_pages",
		mcp.WithDescription("Most viewed pages of the published site over the last 28 days."),
	), s.topPages)

	// Resource: frontmatter contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://frontmatter-format", "Frontmatter Contract",
			mcp.WithResourceDescription("Canonical frontmatter format that all entries must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFrontmatterResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := s.svc.CreateEntry(ctx, path, []byte(body)); err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			return mcp.NewToolResultError(fmt.Sprintf("entry already exists: %s", path)), nil
		case errors.Is(err, apperr.ErrInvalidEntry):
			return mcp.NewToolResultError(fmt.Sprintf("invalid entry: %v (see get_frontmatter_contract)", err)), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	coll := ""
	if c, err := req.RequireString("collection"); err == nil {
		coll = c
	}
	if coll != "" && !content.Collection(coll).Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown collection: %s", coll)), nil
	}

	rows, _, err := s.db.ListEntries(index.ListQuery{Collection: coll, Drafts: true, Limit: 500})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s\t%s", r.Path, r.Title))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no entries found"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) topPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages := s.svc.TopPages(ctx, 10)
	out, _ := json.MarshalIndent(pages, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getFrontmatterContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontmatterContract), nil
}

func (s *Server) readFrontmatterResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://frontmatter-format",
			MIMEType: "text/markdown",
			Text:     FrontmatterContract,
		},
	}, nil
}
