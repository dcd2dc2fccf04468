package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindHighlight is the NodeKind of the highlight directive.
var KindHighlight = ast.NewNodeKind("Highlight")

// HighlightNode is an inline node produced by the :h[...] directive.
type HighlightNode struct {
	ast.BaseInline
}

// Dump implements ast.Node.
func (n *HighlightNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Kind implements ast.Node.
func (n *HighlightNode) Kind() ast.NodeKind { return KindHighlight }

// NewHighlightNode returns a new highlight node.
func NewHighlightNode() *HighlightNode {
	return &HighlightNode{}
}

// highlightParser recognizes the inline form :h[text]. The brackets must
// close on the same line and the body must be non-empty; anything else is
// left for other parsers (and ultimately rendered as literal text).
type highlightParser struct{}

func (p *highlightParser) Trigger() []byte { return []byte{':'} }

func (p *highlightParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if len(line) < 5 || line[1] != 'h' || line[2] != '[' {
		return nil
	}
	closer := -1
	for i := 3; i < len(line); i++ {
		if line[i] == ']' {
			closer = i
			break
		}
	}
	if closer <= 3 {
		// Unterminated directive or empty body.
		return nil
	}
	n := NewHighlightNode()
	n.AppendChild(n, ast.NewTextSegment(text.NewSegment(seg.Start+3, seg.Start+closer)))
	block.Advance(closer + 1)
	return n
}

// HighlightHTMLRenderer renders highlight nodes as <mark class="hl">.
type HighlightHTMLRenderer struct{}

// NewHighlightHTMLRenderer returns a renderer for highlight nodes.
func NewHighlightHTMLRenderer() renderer.NodeRenderer {
	return &HighlightHTMLRenderer{}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *HighlightHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindHighlight, r.renderHighlight)
}

func (r *HighlightHTMLRenderer) renderHighlight(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<mark class="hl">`)
	} else {
		_, _ = w.WriteString(`</mark>`)
	}
	return ast.WalkContinue, nil
}

type highlight struct{}

// Highlight is the goldmark extension wiring the directive parser and its
// HTML renderer into an engine.
var Highlight = &highlight{}

func (h *highlight) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&highlightParser{}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewHighlightHTMLRenderer(), 500),
	))
}
