package plugins

import (
	"context"
	"regexp"
	"strings"

	"github.com/goliatone/go-notion-export/ast"
	"github.com/goliatone/go-notion-export/notion"
)

// Footnotes turns paragraphs beginning with "[N]:" into footnote definitions
// and occurrences of "[^N]" in text runs into footnote references. References
// may appear before their definition; they resolve once the whole document is
// converted.
var Footnotes = notion.Module{
	Name: "footnotes",
	Blocks: map[string]notion.BlockFactory{
		"paragraph": newFootnoteParagraph,
	},
	RichTexts: map[string]notion.RichTextFactory{
		"text": newFootnoteText,
	},
}

var (
	footnoteDefPattern = regexp.MustCompile(`^\[(\d+)\]:\s*`)
	footnoteRefPattern = regexp.MustCompile(`\[\^(\d+)\]`)
)

type footnoteParagraph struct {
	*notion.ParagraphBlock
	label  string
	prefix string
}

func newFootnoteParagraph(ctx context.Context, c *notion.Converter, data map[string]any, page *notion.Page, fetchChildren bool) (notion.Block, error) {
	block, err := notion.NewParagraphBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	paragraph, ok := block.(*notion.ParagraphBlock)
	if !ok {
		return nil, notion.ErrDefer
	}
	match := footnoteDefPattern.FindStringSubmatch(paragraph.RichTexts().PlainText())
	if match == nil {
		return nil, notion.ErrDefer
	}
	return &footnoteParagraph{
		ParagraphBlock: paragraph,
		label:          match[1],
		prefix:         match[0],
	}, nil
}

func (b *footnoteParagraph) ToAST(ctx context.Context) ([]ast.Block, error) {
	blocks, err := b.ParagraphBlock.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	if len(blocks) > 0 {
		if paragraph, ok := blocks[0].(*ast.Paragraph); ok {
			blocks[0] = &ast.Paragraph{Children: stripTextPrefix(paragraph.Children, b.prefix)}
		}
	}
	b.Converter().DefineFootnote(b.label)
	return []ast.Block{&ast.FootnoteDef{Label: b.label, Children: blocks}}, nil
}

// stripTextPrefix removes the definition marker from the front of the
// paragraph content.
func stripTextPrefix(inlines []ast.Inline, prefix string) []ast.Inline {
	if len(inlines) == 0 {
		return inlines
	}
	text, ok := inlines[0].(*ast.Text)
	if !ok || !strings.HasPrefix(text.Value, prefix) {
		return inlines
	}
	rest := strings.TrimPrefix(text.Value, prefix)
	if rest == "" {
		return inlines[1:]
	}
	out := make([]ast.Inline, len(inlines))
	copy(out, inlines)
	out[0] = &ast.Text{Value: rest}
	return out
}

type footnoteText struct {
	notion.RichText
}

func newFootnoteText(ctx context.Context, c *notion.Converter, data map[string]any, block notion.Block) (notion.RichText, error) {
	text, err := notion.NewTextRichText(ctx, c, data, block)
	if err != nil {
		return nil, err
	}
	return &footnoteText{RichText: text}, nil
}

func (t *footnoteText) ToAST(ctx context.Context) ([]ast.Inline, error) {
	inlines, err := t.RichText.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	return markFootnoteRefs(inlines), nil
}

// markFootnoteRefs splits text values around "[^N]" markers, leaving
// reference nodes for the resolution pass. Styled content is walked in place.
func markFootnoteRefs(inlines []ast.Inline) []ast.Inline {
	out := make([]ast.Inline, 0, len(inlines))
	for _, in := range inlines {
		switch node := in.(type) {
		case *ast.Text:
			out = append(out, splitFootnoteText(node)...)
		case *ast.Strong:
			out = append(out, &ast.Strong{Children: markFootnoteRefs(node.Children)})
		case *ast.Emph:
			out = append(out, &ast.Emph{Children: markFootnoteRefs(node.Children)})
		case *ast.Underline:
			out = append(out, &ast.Underline{Children: markFootnoteRefs(node.Children)})
		case *ast.Strikethrough:
			out = append(out, &ast.Strikethrough{Children: markFootnoteRefs(node.Children)})
		case *ast.Link:
			out = append(out, &ast.Link{Children: markFootnoteRefs(node.Children), Target: node.Target, Title: node.Title})
		default:
			out = append(out, in)
		}
	}
	return out
}

func splitFootnoteText(text *ast.Text) []ast.Inline {
	matches := footnoteRefPattern.FindAllStringSubmatchIndex(text.Value, -1)
	if matches == nil {
		return []ast.Inline{text}
	}
	var out []ast.Inline
	last := 0
	for _, match := range matches {
		if match[0] > last {
			out = append(out, &ast.Text{Value: text.Value[last:match[0]]})
		}
		out = append(out, &ast.RefLink{
			Kind:     ast.RefFootnote,
			Key:      text.Value[match[2]:match[3]],
			Children: ast.Str(text.Value[match[0]:match[1]]),
		})
		last = match[1]
	}
	if last < len(text.Value) {
		out = append(out, &ast.Text{Value: text.Value[last:]})
	}
	return out
}
