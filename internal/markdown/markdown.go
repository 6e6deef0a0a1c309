// Package markdown extracts the structural pieces of a Markdown body that the
// manifest and search index need: headings, plain text and link targets.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Outline is the analysis result for one Markdown body.
type Outline struct {
	// Title is the text of the first level-one heading, if any.
	Title string
	// Headings lists every heading's text in document order.
	Headings []string
	// Text is the readable text with markup removed. Blocks are separated
	// by a single newline.
	Text string
	// Links lists link and image destinations in document order.
	Links []string
}

var parser = goldmark.New().Parser()

// Analyze parses a body (frontmatter already removed) and extracts its outline.
func Analyze(body []byte) Outline {
	root := parser.Parse(text.NewReader(body))

	var out Outline
	var plain strings.Builder
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			h := inlineText(node, body)
			if h != "" {
				out.Headings = append(out.Headings, h)
				if node.Level == 1 && out.Title == "" {
					out.Title = h
				}
			}
			appendBlock(&plain, h)
			return gmast.WalkSkipChildren, nil
		case *gmast.Paragraph, *gmast.TextBlock:
			appendBlock(&plain, inlineText(node, body))
			collectLinks(node, &out.Links)
			return gmast.WalkSkipChildren, nil
		case *gmast.FencedCodeBlock, *gmast.CodeBlock:
			appendBlock(&plain, string(bytes.TrimRight(linesOf(node, body), "\n")))
			return gmast.WalkSkipChildren, nil
		case *gmast.HTMLBlock:
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	out.Text = plain.String()
	return out
}

func appendBlock(b *strings.Builder, s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(s)
}

// inlineText concatenates the text of a block's inline descendants.
func inlineText(n gmast.Node, src []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		case *gmast.RawHTML:
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func linesOf(n gmast.Node, src []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}

func collectLinks(n gmast.Node, into *[]string) {
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch l := c.(type) {
		case *gmast.Link:
			*into = append(*into, string(l.Destination))
		case *gmast.Image:
			*into = append(*into, string(l.Destination))
		}
		return gmast.WalkContinue, nil
	})
}
