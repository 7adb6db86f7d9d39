package notion

import (
	"context"
	"fmt"

	"github.com/goliatone/go-notion-export/ast"
)

// CodeBlock is a fenced code block. The caption is exposed for plugins that
// read render directives from it.
type CodeBlock struct {
	BaseBlock
	texts    RichTexts
	caption  RichTexts
	language string
}

// NewCodeBlock wraps a "code" block.
func NewCodeBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	payload := getMap(data, "code")
	texts, err := c.wrapRichTexts(ctx, getMapSlice(payload, "rich_text"), nil)
	if err != nil {
		return nil, err
	}
	caption, err := c.wrapRichTexts(ctx, getMapSlice(payload, "caption"), nil)
	if err != nil {
		return nil, err
	}
	return &CodeBlock{
		BaseBlock: base,
		texts:     texts,
		caption:   caption,
		language:  getString(payload, "language"),
	}, nil
}

// Language returns the syntax tag.
func (b *CodeBlock) Language() string { return b.language }

// Code returns the literal source.
func (b *CodeBlock) Code() string { return b.texts.PlainText() }

// Caption returns the caption runs.
func (b *CodeBlock) Caption() RichTexts { return b.caption }

func (b *CodeBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return []ast.Block{&ast.CodeBlock{
		Language: b.language,
		Value:    b.texts.PlainText(),
	}}, nil
}

// EquationBlock is a display equation.
type EquationBlock struct {
	BaseBlock
	expression string
}

// NewEquationBlock wraps an "equation" block.
func NewEquationBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	return &EquationBlock{
		BaseBlock:  base,
		expression: getString(getMap(data, "equation"), "expression"),
	}, nil
}

// Expression returns the TeX source.
func (b *EquationBlock) Expression() string { return b.expression }

func (b *EquationBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return []ast.Block{&ast.MathBlock{Value: b.expression}}, nil
}

// DividerBlock is a horizontal rule.
type DividerBlock struct {
	BaseBlock
}

// NewDividerBlock wraps a "divider" block.
func NewDividerBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	return &DividerBlock{BaseBlock: base}, nil
}

func (b *DividerBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return []ast.Block{&ast.HorizontalRule{}}, nil
}

// TableOfContentsBlock marks where the document's heading outline renders.
// The outline itself is assembled in the reference resolution pass once all
// headings are known.
type TableOfContentsBlock struct {
	BaseBlock
}

// NewTableOfContentsBlock wraps a "table_of_contents" block.
func NewTableOfContentsBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	return &TableOfContentsBlock{BaseBlock: base}, nil
}

func (b *TableOfContentsBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return []ast.Block{&ast.TOC{}}, nil
}

// BreadcrumbBlock has no meaningful rendering outside Notion.
type BreadcrumbBlock struct {
	BaseBlock
}

// NewBreadcrumbBlock wraps a "breadcrumb" block.
func NewBreadcrumbBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	return &BreadcrumbBlock{BaseBlock: base}, nil
}

func (b *BreadcrumbBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return nil, nil
}

// TemplateBlock holds button templates, which never render in exports.
type TemplateBlock struct {
	BaseBlock
}

// NewTemplateBlock wraps a "template" block.
func NewTemplateBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	return &TemplateBlock{BaseBlock: base}, nil
}

func (b *TemplateBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return nil, nil
}

// ColumnListBlock flattens its columns in order.
type ColumnListBlock struct {
	BaseBlock
}

// NewColumnListBlock wraps a "column_list" block.
func NewColumnListBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	return &ColumnListBlock{BaseBlock: base}, nil
}

func (b *ColumnListBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return b.childAST(ctx)
}

// ColumnBlock flattens its content.
type ColumnBlock struct {
	BaseBlock
}

// NewColumnBlock wraps a "column" block.
func NewColumnBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	return &ColumnBlock{BaseBlock: base}, nil
}

func (b *ColumnBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return b.childAST(ctx)
}

// TableBlock assembles its row children into a grid.
type TableBlock struct {
	BaseBlock
	hasColumnHeader bool
	hasRowHeader    bool
	width           int
}

// NewTableBlock wraps a "table" block.
func NewTableBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	payload := getMap(data, "table")
	width := 0
	if value, ok := getFloat(payload, "table_width"); ok {
		width = int(value)
	}
	return &TableBlock{
		BaseBlock:       base,
		hasColumnHeader: getBool(payload, "has_column_header"),
		hasRowHeader:    getBool(payload, "has_row_header"),
		width:           width,
	}, nil
}

// HasColumnHeader reports whether the first row is a header.
func (b *TableBlock) HasColumnHeader() bool { return b.hasColumnHeader }

// HasRowHeader reports whether the first column is a header.
func (b *TableBlock) HasRowHeader() bool { return b.hasRowHeader }

func (b *TableBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	width := b.width
	rows := make([]ast.TableRow, 0, len(b.children))
	for _, child := range b.children {
		row, ok := child.(*TableRowBlock)
		if !ok {
			continue
		}
		cells, err := row.Cells(ctx)
		if err != nil {
			return nil, err
		}
		if len(cells) > width {
			width = len(cells)
		}
		rows = append(rows, ast.TableRow{Cells: cells})
	}

	// Ragged rows widen to the table width so pipe tables stay aligned.
	for i := range rows {
		if len(rows[i].Cells) < width {
			b.conv.Warnf(b.id, "table row %d has %d of %d cells; padding", i, len(rows[i].Cells), width)
			for len(rows[i].Cells) < width {
				rows[i].Cells = append(rows[i].Cells, nil)
			}
		}
	}

	headerRows := 0
	if b.hasColumnHeader && len(rows) > 0 {
		headerRows = 1
	}
	return []ast.Block{&ast.Table{HeaderRows: headerRows, Rows: rows}}, nil
}

// TableRowBlock holds one row of cells. It renders nothing standalone; the
// enclosing table collects it.
type TableRowBlock struct {
	BaseBlock
	cells []RichTexts
}

// NewTableRowBlock wraps a "table_row" block.
func NewTableRowBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	payload := getMap(data, "table_row")
	raw := getSlice(payload, "cells")
	cells := make([]RichTexts, 0, len(raw))
	for _, cell := range raw {
		items, ok := cell.([]any)
		if !ok {
			continue
		}
		runs := make([]map[string]any, 0, len(items))
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				runs = append(runs, m)
			}
		}
		texts, err := c.wrapRichTexts(ctx, runs, nil)
		if err != nil {
			return nil, err
		}
		cells = append(cells, texts)
	}
	return &TableRowBlock{BaseBlock: base, cells: cells}, nil
}

// Cells converts each cell's runs.
func (b *TableRowBlock) Cells(ctx context.Context) ([][]ast.Inline, error) {
	out := make([][]ast.Inline, 0, len(b.cells))
	for _, cell := range b.cells {
		inlines, err := cell.ToAST(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, inlines)
	}
	return out, nil
}

func (b *TableRowBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return nil, nil
}

// UnsupportedBlock stands in for block types the API reports as
// unsupported and for types with no registered implementation.
type UnsupportedBlock struct {
	BaseBlock
}

// NewUnsupportedBlock wraps an "unsupported" block.
func NewUnsupportedBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, false)
	if err != nil {
		return nil, err
	}
	c.Warnf(base.id, "unsupported block type %q", base.typeName)
	return &UnsupportedBlock{BaseBlock: base}, nil
}

func (b *UnsupportedBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return []ast.Block{&ast.Placeholder{
		Reason: fmt.Sprintf("unsupported block type %q", b.typeName),
	}}, nil
}
