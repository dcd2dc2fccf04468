// Package markdown renders entry bodies to HTML with the blog's custom
// highlight directive enabled.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Engine wraps a configured goldmark instance. It is stateless, so a single
// instance can be shared across requests without locking.
type Engine struct {
	md goldmark.Markdown
}

// NewEngine builds the blog's markdown engine: GFM, autolinks, task lists,
// auto heading IDs, raw HTML passthrough (MDX component tags survive as-is),
// and the highlight directive.
func NewEngine() *Engine {
	return &Engine{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Linkify,
				extension.TaskList,
				Highlight,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Render converts markdown source to HTML.
func (e *Engine) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown: render: %w", err)
	}
	return buf.Bytes(), nil
}
