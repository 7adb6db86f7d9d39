package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-notion-export/ast"
	"github.com/goliatone/go-notion-export/pkg/interfaces"
)

// FormatHTML is the HTML sink's format id.
const FormatHTML = "html"

// HTMLSink renders documents to HTML by writing markdown first and feeding
// it through goldmark. Raw html blocks pass through unsanitized; exports are
// trusted content from the caller's own workspace.
type HTMLSink struct {
	markdown *MarkdownSink
	engine   goldmark.Markdown
}

var _ interfaces.RenderSink = (*HTMLSink)(nil)

// NewHTML builds the HTML sink on top of a markdown sink.
func NewHTML(markdown *MarkdownSink) *HTMLSink {
	if markdown == nil {
		markdown = NewMarkdown()
	}
	return &HTMLSink{
		markdown: markdown,
		engine: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.TaskList,
				extension.Footnote,
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

// Format returns the sink's format id.
func (s *HTMLSink) Format() string { return FormatHTML }

// Extension returns the filename extension including the dot.
func (s *HTMLSink) Extension() string { return ".html" }

// Render writes doc as HTML.
func (s *HTMLSink) Render(ctx context.Context, doc *ast.Document) ([]byte, error) {
	markdown, err := s.markdown.Render(ctx, doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("render: html convert: %w", err)
	}
	return buf.Bytes(), nil
}
