package source

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// OpenMarkdown renders Markdown to plain text with goldmark. Top-level
// thematic breaks ("***", or "---" after a blank line) start a new page,
// which matches how slide decks and long notes are usually split.
func OpenMarkdown(data []byte) Document {
	doc := goldmark.New().Parser().Parse(text.NewReader(data))

	var result pages
	var current strings.Builder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() == ast.KindThematicBreak {
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		writeMarkdownText(&current, n, data)
	}
	result = append(result, strings.TrimSpace(current.String()))

	return result
}

func writeMarkdownText(buf *strings.Builder, n ast.Node, src []byte) {
	switch node := n.(type) {
	case *ast.Text:
		buf.Write(node.Segment.Value(src))
		if node.SoftLineBreak() || node.HardLineBreak() {
			buf.WriteByte('\n')
		}
		return
	case *ast.String:
		buf.Write(node.Value)
		return
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		buf.WriteByte('\n')
		return
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		writeMarkdownText(buf, c, src)
	}
	if n.Type() == ast.TypeBlock {
		buf.WriteByte('\n')
	}
}
