// Package markdown provides a Markdown text extractor for the ingest
// pipeline. It parses with goldmark and walks the AST, so formatting
// markers never leak into chunk content, while heading lines survive as
// their own lines for the hierarchical chunker to match.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"lorebase/ingest"
)

// Extractor implements ingest.Extractor for Markdown documents.
type Extractor struct {
	md goldmark.Markdown
}

// NewExtractor creates a Markdown extractor.
func NewExtractor() *Extractor {
	return &Extractor{md: goldmark.New()}
}

// Extract renders a Markdown document to plain text, one block per line
// with blank lines between top-level blocks.
func (e *Extractor) Extract(content []byte) (string, error) {
	root := e.md.Parser().Parse(text.NewReader(content))

	var b strings.Builder
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(content))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(content))
			}
		case *ast.AutoLink:
			b.Write(node.URL(content))
		default:
			if n.Type() == ast.TypeBlock && b.Len() > 0 {
				b.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}

	out := strings.TrimSpace(b.String())
	return collapseBlankRuns(out), nil
}

func collapseBlankRuns(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}

var _ ingest.Extractor = (*Extractor)(nil)
