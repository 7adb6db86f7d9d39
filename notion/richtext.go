package notion

import (
	"context"
	"strings"

	"github.com/goliatone/go-notion-export/ast"
)

// Annotations carries the style flags of a rich text run.
type Annotations struct {
	Bold          bool
	Italic        bool
	Strikethrough bool
	Underline     bool
	Code          bool
	Color         string
}

func parseAnnotations(data map[string]any) Annotations {
	annotations := getMap(data, "annotations")
	return Annotations{
		Bold:          getBool(annotations, "bold"),
		Italic:        getBool(annotations, "italic"),
		Strikethrough: getBool(annotations, "strikethrough"),
		Underline:     getBool(annotations, "underline"),
		Code:          getBool(annotations, "code"),
		Color:         getString(annotations, "color"),
	}
}

// Apply wraps inline content with the annotation styles. Code spans are the
// caller's concern since they replace the literal content; links wrap
// outside annotations and are also applied by the caller.
func (a Annotations) Apply(inlines []ast.Inline) []ast.Inline {
	if a.Bold {
		inlines = []ast.Inline{&ast.Strong{Children: inlines}}
	}
	if a.Italic {
		inlines = []ast.Inline{&ast.Emph{Children: inlines}}
	}
	if a.Underline {
		inlines = []ast.Inline{&ast.Underline{Children: inlines}}
	}
	if a.Strikethrough {
		inlines = []ast.Inline{&ast.Strikethrough{Children: inlines}}
	}
	return inlines
}

// RichText is one run of styled text. Variants cover literal text,
// equations, and mentions.
type RichText interface {
	Type() string
	PlainText() string
	Href() string
	Annotations() Annotations
	ToAST(ctx context.Context) ([]ast.Inline, error)
}

// RichTexts is an ordered rich text array.
type RichTexts []RichText

// PlainText concatenates the runs' literal text. The concatenation is
// lossless with respect to the source content.
func (r RichTexts) PlainText() string {
	var sb strings.Builder
	for _, text := range r {
		sb.WriteString(text.PlainText())
	}
	return sb.String()
}

// ToAST converts every run and concatenates the results in order.
func (r RichTexts) ToAST(ctx context.Context) ([]ast.Inline, error) {
	out := make([]ast.Inline, 0, len(r))
	for _, text := range r {
		inlines, err := text.ToAST(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, inlines...)
	}
	return out, nil
}

type baseRichText struct {
	typeName    string
	plainText   string
	href        string
	annotations Annotations
}

func newBaseRichText(data map[string]any) baseRichText {
	return baseRichText{
		typeName:    getString(data, "type"),
		plainText:   getString(data, "plain_text"),
		href:        getString(data, "href"),
		annotations: parseAnnotations(data),
	}
}

func (b baseRichText) Type() string             { return b.typeName }
func (b baseRichText) PlainText() string        { return b.plainText }
func (b baseRichText) Href() string             { return b.href }
func (b baseRichText) Annotations() Annotations { return b.annotations }

// decorate applies annotations and the href wrapper around base content in
// the order annotations nest: code or text innermost, link outermost.
func (b baseRichText) decorate(inlines []ast.Inline) []ast.Inline {
	inlines = b.annotations.Apply(inlines)
	if b.href != "" {
		inlines = []ast.Inline{&ast.Link{Children: inlines, Target: b.href}}
	}
	return inlines
}

// TextRichText is a literal text run.
type TextRichText struct {
	baseRichText
	content string
}

// NewTextRichText wraps a "text" rich text payload.
func NewTextRichText(ctx context.Context, c *Converter, data map[string]any, block Block) (RichText, error) {
	text := getMap(data, "text")
	return &TextRichText{
		baseRichText: newBaseRichText(data),
		content:      getString(text, "content"),
	}, nil
}

// Content returns the literal run content without annotations.
func (t *TextRichText) Content() string { return t.content }

func (t *TextRichText) ToAST(ctx context.Context) ([]ast.Inline, error) {
	var inlines []ast.Inline
	if t.annotations.Code {
		inlines = []ast.Inline{&ast.Code{Value: t.content}}
	} else {
		inlines = textInlines(t.content)
	}
	return t.decorate(inlines), nil
}

// EquationRichText is an inline TeX expression.
type EquationRichText struct {
	baseRichText
	expression string
}

// NewEquationRichText wraps an "equation" rich text payload.
func NewEquationRichText(ctx context.Context, c *Converter, data map[string]any, block Block) (RichText, error) {
	equation := getMap(data, "equation")
	return &EquationRichText{
		baseRichText: newBaseRichText(data),
		expression:   getString(equation, "expression"),
	}, nil
}

// Expression returns the TeX source.
func (e *EquationRichText) Expression() string { return e.expression }

func (e *EquationRichText) ToAST(ctx context.Context) ([]ast.Inline, error) {
	return e.decorate([]ast.Inline{&ast.Math{Value: e.expression}}), nil
}

// MentionRichText delegates its content to the wrapped mention.
type MentionRichText struct {
	baseRichText
	mention Mention
}

// NewMentionRichText wraps a "mention" rich text payload. The mention itself
// resolves through the registry so plugins can override individual kinds.
func NewMentionRichText(ctx context.Context, c *Converter, data map[string]any, block Block) (RichText, error) {
	base := newBaseRichText(data)
	mention, err := c.wrapMention(ctx, getMap(data, "mention"), base.plainText, block)
	if err != nil {
		return nil, err
	}
	return &MentionRichText{baseRichText: base, mention: mention}, nil
}

// Mention returns the wrapped mention.
func (m *MentionRichText) Mention() Mention { return m.mention }

func (m *MentionRichText) ToAST(ctx context.Context) ([]ast.Inline, error) {
	if m.mention == nil {
		return m.decorate(textInlines(m.plainText)), nil
	}
	inlines, err := m.mention.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	return m.decorate(inlines), nil
}

// textInlines splits literal text on newlines, which Notion uses for soft
// breaks inside a single run.
func textInlines(content string) []ast.Inline {
	if content == "" {
		return nil
	}
	parts := strings.Split(content, "\n")
	inlines := make([]ast.Inline, 0, len(parts)*2-1)
	for i, part := range parts {
		if i > 0 {
			inlines = append(inlines, &ast.LineBreak{})
		}
		if part != "" {
			inlines = append(inlines, &ast.Text{Value: part})
		}
	}
	return inlines
}
