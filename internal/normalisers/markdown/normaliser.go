// Package markdown reduces Markdown (CommonMark with GitHub extensions)
// to plain text.
package markdown

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser converts Markdown to plain text.
type Normaliser struct {
	md goldmark.Markdown
}

// New returns a Markdown normaliser with GitHub Flavored Markdown enabled.
func New() *Normaliser {
	return &Normaliser{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority ranks above the plain text fallback.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise keeps paragraph breaks so the splitter can still cut on them.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	return &driven.NormaliseResult{
		Name:     filepath.Base(raw.URI),
		Content:  n.plain(raw.Content),
		MIMEType: raw.MIMEType,
	}, nil
}

// plain walks the parsed document and keeps only the text. Code block
// bodies are kept; raw HTML is dropped.
func (n *Normaliser) plain(src []byte) string {
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	doc := n.md.Parser().Parse(text.NewReader(src))

	var w textWriter
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			return w.enter(node, src), nil
		}
		w.leave(node)
		return ast.WalkContinue, nil
	})
	return w.String()
}

type textWriter struct {
	buf []byte
}

func (w *textWriter) enter(node ast.Node, src []byte) ast.WalkStatus {
	switch n := node.(type) {
	case *ast.Text:
		w.buf = append(w.buf, unescape(n.Segment.Value(src))...)
		if n.SoftLineBreak() || n.HardLineBreak() {
			w.buf = append(w.buf, '\n')
		}
	case *ast.String:
		w.buf = append(w.buf, n.Value...)
	case *ast.AutoLink:
		w.buf = append(w.buf, n.Label(src)...)
	case *ast.CodeBlock, *ast.FencedCodeBlock:
		lines := n.Lines()
		for i := range lines.Len() {
			seg := lines.At(i)
			w.buf = append(w.buf, seg.Value(src)...)
		}
		return ast.WalkSkipChildren
	case *ast.HTMLBlock, *ast.RawHTML, *east.TaskCheckBox:
		return ast.WalkSkipChildren
	}
	return ast.WalkContinue
}

func (w *textWriter) leave(node ast.Node) {
	switch node.(type) {
	case *east.TableCell:
		w.space()
	case *ast.ListItem, *ast.TextBlock, *east.TableRow, *east.TableHeader:
		w.newlines(1)
	default:
		if node.Type() == ast.TypeBlock {
			w.newlines(2)
		}
	}
}

func (w *textWriter) space() {
	if len(w.buf) > 0 && w.buf[len(w.buf)-1] != ' ' && w.buf[len(w.buf)-1] != '\n' {
		w.buf = append(w.buf, ' ')
	}
}

// newlines trims trailing spaces and tops the run of line breaks up to n.
func (w *textWriter) newlines(n int) {
	w.buf = bytes.TrimRight(w.buf, " \t")
	if len(w.buf) == 0 {
		return
	}
	have := len(w.buf) - len(bytes.TrimRight(w.buf, "\n"))
	for ; have < n; have++ {
		w.buf = append(w.buf, '\n')
	}
}

func (w *textWriter) String() string {
	return string(bytes.TrimSpace(w.buf))
}

func unescape(b []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(b)))
}
