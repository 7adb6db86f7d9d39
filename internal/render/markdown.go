// Package render turns converted document trees into output bytes. The
// markdown writer emits GitHub-flavored markdown with dollar math; the HTML
// sink feeds that markdown through goldmark. Sinks are registered per
// format id and shared across export runs.
package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-notion-export/ast"
	"github.com/goliatone/go-notion-export/internal/logging"
	"github.com/goliatone/go-notion-export/pkg/interfaces"
)

// FormatMarkdown is the markdown sink's format id.
const FormatMarkdown = "markdown"

// MarkdownSink writes GitHub-flavored markdown. The zero options sink is
// ready to use; a single instance is safe for concurrent renders.
type MarkdownSink struct {
	logger interfaces.Logger
}

var _ interfaces.RenderSink = (*MarkdownSink)(nil)

// MarkdownOption configures a MarkdownSink.
type MarkdownOption func(*MarkdownSink)

// WithMarkdownLogger attaches a sink logger.
func WithMarkdownLogger(logger interfaces.Logger) MarkdownOption {
	return func(s *MarkdownSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMarkdownLoggerProvider scopes the sink logger from a provider.
func WithMarkdownLoggerProvider(provider interfaces.LoggerProvider) MarkdownOption {
	return func(s *MarkdownSink) {
		s.logger = logging.RenderLogger(provider)
	}
}

// NewMarkdown builds the markdown sink.
func NewMarkdown(opts ...MarkdownOption) *MarkdownSink {
	s := &MarkdownSink{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Format returns the sink's format id.
func (s *MarkdownSink) Format() string { return FormatMarkdown }

// Extension returns the filename extension including the dot.
func (s *MarkdownSink) Extension() string { return ".md" }

// Render writes doc as markdown. Output ends with a single newline.
func (s *MarkdownSink) Render(ctx context.Context, doc *ast.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("render: nil document")
	}
	w := &markdownWriter{logger: s.logger}
	body := w.blocks(doc.Blocks)
	if body == "" {
		return []byte{}, nil
	}
	return []byte(body + "\n"), nil
}

// markdownWriter renders one document. It is not reused across renders.
type markdownWriter struct {
	logger interfaces.Logger
}

func (w *markdownWriter) blocks(blocks []ast.Block) string {
	var fragments []string
	for _, b := range blocks {
		if fragment := w.block(b); fragment != "" {
			fragments = append(fragments, fragment)
		}
	}
	return strings.Join(fragments, "\n\n")
}

func (w *markdownWriter) block(b ast.Block) string {
	switch b := b.(type) {
	case *ast.Paragraph:
		return w.inlines(b.Children)
	case *ast.Heading:
		level := b.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		return strings.TrimRight(strings.Repeat("#", level)+" "+w.inlines(b.Children), " ")
	case *ast.CodeBlock:
		return w.codeBlock(b)
	case *ast.RawBlock:
		return w.rawBlock(b)
	case *ast.BlockQuote:
		return prefixLines(w.blocks(b.Children), "> ")
	case *ast.BulletList:
		return w.list(b.Items, func(int) string { return "- " })
	case *ast.OrderedList:
		start := b.Start
		if start < 1 {
			start = 1
		}
		return w.list(b.Items, func(i int) string { return fmt.Sprintf("%d. ", start+i) })
	case *ast.TaskList:
		return w.taskList(b)
	case *ast.Table:
		return w.table(b)
	case *ast.HorizontalRule:
		return "***"
	case *ast.MathBlock:
		return "$$\n" + strings.TrimRight(b.Value, "\n") + "\n$$"
	case *ast.Image:
		return w.image(b)
	case *ast.FootnoteDef:
		return w.footnoteDef(b)
	case *ast.TOC:
		w.logger.Debug("dropping unresolved table of contents marker")
		return ""
	case *ast.Placeholder:
		return ""
	default:
		w.logger.Warn("dropping unknown block node", "node", fmt.Sprintf("%T", b))
		return ""
	}
}

func (w *markdownWriter) codeBlock(b *ast.CodeBlock) string {
	fence := backtickRun(b.Value, 3)
	value := strings.TrimRight(b.Value, "\n")
	open := fence + b.Language
	if value == "" {
		return open + "\n" + fence
	}
	return open + "\n" + value + "\n" + fence
}

// rawBlock passes markdown and html through untouched; gfm consumers accept
// embedded html. Raw content for any other format is dropped.
func (w *markdownWriter) rawBlock(b *ast.RawBlock) string {
	switch strings.ToLower(b.Format) {
	case "markdown", "md", "gfm", "html":
		return strings.TrimRight(b.Value, "\n")
	default:
		w.logger.Debug("dropping raw block for other format", "format", b.Format)
		return ""
	}
}

func (w *markdownWriter) list(items [][]ast.Block, marker func(int) string) string {
	rendered := make([]string, 0, len(items))
	loose := false
	for i, item := range items {
		fragment := w.listItem(marker(i), item)
		if strings.Contains(fragment, "\n\n") {
			loose = true
		}
		rendered = append(rendered, fragment)
	}
	separator := "\n"
	if loose {
		separator = "\n\n"
	}
	return strings.Join(rendered, separator)
}

func (w *markdownWriter) taskList(b *ast.TaskList) string {
	rendered := make([]string, 0, len(b.Items))
	loose := false
	for _, item := range b.Items {
		marker := "- [ ] "
		if item.Checked {
			marker = "- [x] "
		}
		fragment := w.listItem(marker, item.Children)
		if strings.Contains(fragment, "\n\n") {
			loose = true
		}
		rendered = append(rendered, fragment)
	}
	separator := "\n"
	if loose {
		separator = "\n\n"
	}
	return strings.Join(rendered, separator)
}

func (w *markdownWriter) listItem(marker string, blocks []ast.Block) string {
	content := w.blocks(blocks)
	if content == "" {
		return strings.TrimRight(marker, " ")
	}
	return marker + indentLines(content, strings.Repeat(" ", len(marker)))
}

func (w *markdownWriter) table(b *ast.Table) string {
	if len(b.Rows) == 0 {
		return ""
	}
	width := 0
	ragged := false
	for _, row := range b.Rows {
		if len(row.Cells) != len(b.Rows[0].Cells) {
			ragged = true
		}
		if len(row.Cells) > width {
			width = len(row.Cells)
		}
	}
	if width == 0 {
		return ""
	}
	if ragged {
		w.logger.Warn("table rows are ragged, padding to widest row", "columns", width)
	}

	cells := make([][]string, len(b.Rows))
	colWidth := make([]int, width)
	for j := range colWidth {
		colWidth[j] = 3
	}
	for i, row := range b.Rows {
		cells[i] = make([]string, width)
		for j := 0; j < width; j++ {
			if j < len(row.Cells) {
				cells[i][j] = w.tableCell(row.Cells[j])
			}
			if n := len([]rune(cells[i][j])); n > colWidth[j] {
				colWidth[j] = n
			}
		}
	}

	var sb strings.Builder
	headerRows := b.HeaderRows
	if headerRows > len(cells) {
		headerRows = len(cells)
	}
	if headerRows == 0 {
		// gfm tables need a header row; degrade to an empty one.
		empty := make([]string, width)
		writeTableRow(&sb, empty, colWidth)
		sb.WriteByte('\n')
	} else {
		for _, row := range cells[:headerRows] {
			writeTableRow(&sb, row, colWidth)
			sb.WriteByte('\n')
		}
	}
	writeTableDelimiter(&sb, colWidth)
	for _, row := range cells[headerRows:] {
		sb.WriteByte('\n')
		writeTableRow(&sb, row, colWidth)
	}
	return sb.String()
}

func (w *markdownWriter) tableCell(inlines []ast.Inline) string {
	cell := w.inlines(inlines)
	cell = strings.ReplaceAll(cell, "\n", " ")
	return strings.ReplaceAll(cell, "|", `\|`)
}

func writeTableRow(sb *strings.Builder, cells []string, colWidth []int) {
	sb.WriteByte('|')
	for j, cell := range cells {
		sb.WriteByte(' ')
		sb.WriteString(cell)
		sb.WriteString(strings.Repeat(" ", colWidth[j]-len([]rune(cell))))
		sb.WriteString(" |")
	}
}

func writeTableDelimiter(sb *strings.Builder, colWidth []int) {
	sb.WriteByte('|')
	for _, width := range colWidth {
		sb.WriteString(strings.Repeat("-", width+2))
		sb.WriteByte('|')
	}
}

func (w *markdownWriter) image(b *ast.Image) string {
	alt := markdownEscaper.Replace(ast.PlainText(b.Caption))
	alt = strings.ReplaceAll(alt, "\n", " ")
	return "![" + alt + "](" + linkTarget(b.URL) + ")"
}

func (w *markdownWriter) footnoteDef(b *ast.FootnoteDef) string {
	content := w.blocks(b.Children)
	if content == "" {
		return "[^" + b.Label + "]:"
	}
	return "[^" + b.Label + "]: " + indentLines(content, "    ")
}

func (w *markdownWriter) inlines(inlines []ast.Inline) string {
	var sb strings.Builder
	for _, in := range inlines {
		sb.WriteString(w.inline(in))
	}
	return sb.String()
}

func (w *markdownWriter) inline(in ast.Inline) string {
	switch in := in.(type) {
	case *ast.Text:
		return markdownEscaper.Replace(in.Value)
	case *ast.LineBreak:
		return "\\\n"
	case *ast.Strong:
		return wrapNonEmpty(w.inlines(in.Children), "**")
	case *ast.Emph:
		return wrapNonEmpty(w.inlines(in.Children), "*")
	case *ast.Strikethrough:
		return wrapNonEmpty(w.inlines(in.Children), "~~")
	case *ast.Underline:
		// gfm has no underline; italic is the closest rendering.
		return wrapNonEmpty(w.inlines(in.Children), "*")
	case *ast.Code:
		return codeSpan(in.Value)
	case *ast.Math:
		return "$" + in.Value + "$"
	case *ast.Link:
		return w.link(in)
	case *ast.RefLink:
		// unresolved references degrade to their literal content
		return w.inlines(in.Children)
	case *ast.FootnoteRef:
		return "[^" + in.Label + "]"
	default:
		w.logger.Warn("dropping unknown inline node", "node", fmt.Sprintf("%T", in))
		return ""
	}
}

func (w *markdownWriter) link(in *ast.Link) string {
	label := w.inlines(in.Children)
	if label == "" {
		label = markdownEscaper.Replace(in.Target)
	}
	target := linkTarget(in.Target)
	if in.Title != "" {
		return "[" + label + "](" + target + " \"" + strings.ReplaceAll(in.Title, `"`, `\"`) + "\")"
	}
	return "[" + label + "](" + target + ")"
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
)

// linkTarget wraps targets that would break the inline link grammar.
func linkTarget(target string) string {
	if strings.ContainsAny(target, " ()") {
		return "<" + target + ">"
	}
	return target
}

func wrapNonEmpty(content, delimiter string) string {
	if content == "" {
		return ""
	}
	return delimiter + content + delimiter
}

// codeSpan picks a delimiter longer than any backtick run in the value and
// pads when the value touches the delimiter.
func codeSpan(value string) string {
	delimiter := backtickRun(value, 1)
	if value == "" {
		return delimiter + " " + delimiter
	}
	if strings.HasPrefix(value, "`") || strings.HasSuffix(value, "`") {
		return delimiter + " " + value + " " + delimiter
	}
	return delimiter + value + delimiter
}

func backtickRun(value string, min int) string {
	longest, run := 0, 0
	for _, r := range value {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	n := longest + 1
	if n < min {
		n = min
	}
	return strings.Repeat("`", n)
}

func prefixLines(content, prefix string) string {
	if content == "" {
		return ""
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = strings.TrimRight(prefix, " ")
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// indentLines indents every line after the first.
func indentLines(content, indent string) string {
	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
