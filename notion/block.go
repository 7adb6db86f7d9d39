package notion

import (
	"context"
	"time"

	"github.com/goliatone/go-notion-export/ast"
)

// Block is a wrapped Notion block. Children are fetched once during
// wrapping when the parent asks for them; re-reading Children is free.
type Block interface {
	ID() string
	Type() string
	HasChildren() bool
	Children() []Block
	Page() *Page
	ToAST(ctx context.Context) ([]ast.Block, error)
}

// ListItem is implemented by block variants that group into enclosing list
// nodes. A maximal run of adjacent siblings sharing ListGroup is assembled
// by one AssembleList call on the first item of the run.
type ListItem interface {
	Block
	ListGroup() string
	ItemAST(ctx context.Context) ([]ast.Block, error)
	AssembleList(ctx context.Context, run []Block) (ast.Block, error)
}

const (
	listGroupBulleted = "bulleted"
	listGroupNumbered = "numbered"
	listGroupToDo     = "todo"
)

// BaseBlock carries the identity and children shared by every variant.
// Variants embed it; plugins embed variants.
type BaseBlock struct {
	conv           *Converter
	id             string
	typeName       string
	hasChildren    bool
	archived       bool
	createdTime    time.Time
	lastEditedTime time.Time
	page           *Page
	children       []Block
	raw            map[string]any
}

// NewBaseBlock wraps the identity fields of a block payload and, when
// fetchChildren is set and the payload reports children, fetches and wraps
// them through the converter.
func NewBaseBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (BaseBlock, error) {
	base := BaseBlock{
		conv:           c,
		id:             getString(data, "id"),
		typeName:       getString(data, "type"),
		hasChildren:    getBool(data, "has_children"),
		archived:       getBool(data, "archived"),
		createdTime:    getTime(data, "created_time"),
		lastEditedTime: getTime(data, "last_edited_time"),
		page:           page,
		raw:            data,
	}

	if fetchChildren && base.hasChildren {
		children, err := c.childBlocks(ctx, base.id, page)
		if err != nil {
			return base, err
		}
		base.children = children
	}
	return base, nil
}

func (b *BaseBlock) ID() string                { return b.id }
func (b *BaseBlock) Type() string              { return b.typeName }
func (b *BaseBlock) HasChildren() bool         { return b.hasChildren }
func (b *BaseBlock) Children() []Block         { return b.children }
func (b *BaseBlock) Page() *Page               { return b.page }
func (b *BaseBlock) Archived() bool            { return b.archived }
func (b *BaseBlock) CreatedTime() time.Time    { return b.createdTime }
func (b *BaseBlock) LastEditedTime() time.Time { return b.lastEditedTime }

// Converter returns the conversion run this block belongs to.
func (b *BaseBlock) Converter() *Converter { return b.conv }

// Raw returns the original payload. Plugins use it to read fields the
// default wrapper does not surface.
func (b *BaseBlock) Raw() map[string]any { return b.raw }

// childAST converts the block's children, which most variants append after
// their own content.
func (b *BaseBlock) childAST(ctx context.Context) ([]ast.Block, error) {
	if len(b.children) == 0 {
		return nil, nil
	}
	return b.conv.BlocksToAST(ctx, b.children)
}

// typePayload returns the type-specific sub-object of the payload.
func (b *BaseBlock) typePayload() map[string]any {
	return getMap(b.raw, b.typeName)
}

// ParagraphBlock is a plain text paragraph.
type ParagraphBlock struct {
	BaseBlock
	texts RichTexts
}

// NewParagraphBlock wraps a "paragraph" block.
func NewParagraphBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	texts, err := c.wrapRichTexts(ctx, getMapSlice(getMap(data, "paragraph"), "rich_text"), nil)
	if err != nil {
		return nil, err
	}
	block := &ParagraphBlock{BaseBlock: base, texts: texts}
	return block, nil
}

// RichTexts returns the paragraph runs.
func (b *ParagraphBlock) RichTexts() RichTexts { return b.texts }

func (b *ParagraphBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	inlines, err := b.texts.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	blocks := []ast.Block{&ast.Paragraph{Children: inlines}}
	children, err := b.childAST(ctx)
	if err != nil {
		return nil, err
	}
	return append(blocks, children...), nil
}

// HeadingBlock covers heading_1, heading_2, and heading_3. Toggleable
// headings carry children that render after the heading itself.
type HeadingBlock struct {
	BaseBlock
	level      int
	toggleable bool
	texts      RichTexts
}

// NewHeadingBlock wraps a heading block of any level.
func NewHeadingBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	level := 1
	switch base.typeName {
	case "heading_2":
		level = 2
	case "heading_3":
		level = 3
	}
	payload := getMap(data, base.typeName)
	texts, err := c.wrapRichTexts(ctx, getMapSlice(payload, "rich_text"), nil)
	if err != nil {
		return nil, err
	}
	return &HeadingBlock{
		BaseBlock:  base,
		level:      level,
		toggleable: getBool(payload, "is_toggleable"),
		texts:      texts,
	}, nil
}

// HeadingLevel returns the heading depth, 1 through 3.
func (b *HeadingBlock) HeadingLevel() int { return b.level }

// RichTexts returns the heading runs.
func (b *HeadingBlock) RichTexts() RichTexts { return b.texts }

func (b *HeadingBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	inlines, err := b.texts.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	blocks := []ast.Block{b.conv.RegisterHeading(b.id, b.level, inlines)}
	children, err := b.childAST(ctx)
	if err != nil {
		return nil, err
	}
	return append(blocks, children...), nil
}

// BulletedListItemBlock is one unordered list entry.
type BulletedListItemBlock struct {
	BaseBlock
	texts RichTexts
}

// NewBulletedListItemBlock wraps a "bulleted_list_item" block.
func NewBulletedListItemBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	texts, err := c.wrapRichTexts(ctx, getMapSlice(getMap(data, "bulleted_list_item"), "rich_text"), nil)
	if err != nil {
		return nil, err
	}
	return &BulletedListItemBlock{BaseBlock: base, texts: texts}, nil
}

// RichTexts returns the item runs.
func (b *BulletedListItemBlock) RichTexts() RichTexts { return b.texts }

func (b *BulletedListItemBlock) ListGroup() string { return listGroupBulleted }

func (b *BulletedListItemBlock) ItemAST(ctx context.Context) ([]ast.Block, error) {
	return listItemContent(ctx, &b.BaseBlock, b.texts)
}

func (b *BulletedListItemBlock) AssembleList(ctx context.Context, run []Block) (ast.Block, error) {
	items, err := b.conv.listItems(ctx, run)
	if err != nil {
		return nil, err
	}
	return &ast.BulletList{Items: items}, nil
}

func (b *BulletedListItemBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	list, err := b.AssembleList(ctx, []Block{b})
	if err != nil {
		return nil, err
	}
	return []ast.Block{list}, nil
}

// NumberedListItemBlock is one ordered list entry.
type NumberedListItemBlock struct {
	BaseBlock
	texts RichTexts
}

// NewNumberedListItemBlock wraps a "numbered_list_item" block.
func NewNumberedListItemBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	texts, err := c.wrapRichTexts(ctx, getMapSlice(getMap(data, "numbered_list_item"), "rich_text"), nil)
	if err != nil {
		return nil, err
	}
	return &NumberedListItemBlock{BaseBlock: base, texts: texts}, nil
}

// RichTexts returns the item runs.
func (b *NumberedListItemBlock) RichTexts() RichTexts { return b.texts }

func (b *NumberedListItemBlock) ListGroup() string { return listGroupNumbered }

func (b *NumberedListItemBlock) ItemAST(ctx context.Context) ([]ast.Block, error) {
	return listItemContent(ctx, &b.BaseBlock, b.texts)
}

func (b *NumberedListItemBlock) AssembleList(ctx context.Context, run []Block) (ast.Block, error) {
	items, err := b.conv.listItems(ctx, run)
	if err != nil {
		return nil, err
	}
	return &ast.OrderedList{Start: 1, Items: items}, nil
}

func (b *NumberedListItemBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	list, err := b.AssembleList(ctx, []Block{b})
	if err != nil {
		return nil, err
	}
	return []ast.Block{list}, nil
}

// ToDoBlock is one checklist entry.
type ToDoBlock struct {
	BaseBlock
	texts   RichTexts
	checked bool
}

// NewToDoBlock wraps a "to_do" block.
func NewToDoBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	payload := getMap(data, "to_do")
	texts, err := c.wrapRichTexts(ctx, getMapSlice(payload, "rich_text"), nil)
	if err != nil {
		return nil, err
	}
	return &ToDoBlock{
		BaseBlock: base,
		texts:     texts,
		checked:   getBool(payload, "checked"),
	}, nil
}

// RichTexts returns the item runs.
func (b *ToDoBlock) RichTexts() RichTexts { return b.texts }

// Checked reports the checkbox state.
func (b *ToDoBlock) Checked() bool { return b.checked }

func (b *ToDoBlock) ListGroup() string { return listGroupToDo }

func (b *ToDoBlock) ItemAST(ctx context.Context) ([]ast.Block, error) {
	return listItemContent(ctx, &b.BaseBlock, b.texts)
}

func (b *ToDoBlock) AssembleList(ctx context.Context, run []Block) (ast.Block, error) {
	items := make([]ast.TaskItem, 0, len(run))
	for _, block := range run {
		item, ok := block.(ListItem)
		if !ok {
			continue
		}
		content, err := item.ItemAST(ctx)
		if err != nil {
			b.conv.reportNodeError(block.ID(), err)
			content = []ast.Block{&ast.Placeholder{Reason: "list item conversion failed"}}
		}
		checked := false
		if todo, ok := block.(*ToDoBlock); ok {
			checked = todo.checked
		}
		items = append(items, ast.TaskItem{Checked: checked, Children: content})
	}
	return &ast.TaskList{Items: items}, nil
}

func (b *ToDoBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	list, err := b.AssembleList(ctx, []Block{b})
	if err != nil {
		return nil, err
	}
	return []ast.Block{list}, nil
}

// ToggleBlock renders as a single-item list carrying its children, which is
// how collapsed content degrades outside Notion.
type ToggleBlock struct {
	BaseBlock
	texts RichTexts
	color string
}

// NewToggleBlock wraps a "toggle" block.
func NewToggleBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	payload := getMap(data, "toggle")
	texts, err := c.wrapRichTexts(ctx, getMapSlice(payload, "rich_text"), nil)
	if err != nil {
		return nil, err
	}
	return &ToggleBlock{
		BaseBlock: base,
		texts:     texts,
		color:     getString(payload, "color"),
	}, nil
}

// RichTexts returns the toggle summary runs.
func (b *ToggleBlock) RichTexts() RichTexts { return b.texts }

// Color returns the toggle color tag.
func (b *ToggleBlock) Color() string { return b.color }

func (b *ToggleBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	inlines, err := b.texts.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	item := []ast.Block{&ast.Paragraph{Children: inlines}}
	children, err := b.childAST(ctx)
	if err != nil {
		return nil, err
	}
	item = append(item, children...)
	return []ast.Block{&ast.BulletList{Items: [][]ast.Block{item}}}, nil
}

// CalloutBlock renders its icon and text as a paragraph followed by the
// callout children.
type CalloutBlock struct {
	BaseBlock
	texts RichTexts
	icon  any
}

// NewCalloutBlock wraps a "callout" block.
func NewCalloutBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	payload := getMap(data, "callout")
	texts, err := c.wrapRichTexts(ctx, getMapSlice(payload, "rich_text"), nil)
	if err != nil {
		return nil, err
	}
	icon, err := c.wrapIcon(ctx, getMap(payload, "icon"))
	if err != nil {
		return nil, err
	}
	return &CalloutBlock{BaseBlock: base, texts: texts, icon: icon}, nil
}

// RichTexts returns the callout runs.
func (b *CalloutBlock) RichTexts() RichTexts { return b.texts }

// Icon returns the callout icon, a *File or *Emoji when present.
func (b *CalloutBlock) Icon() any { return b.icon }

func (b *CalloutBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	inlines, err := b.texts.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	if emoji, ok := b.icon.(*Emoji); ok && emoji.Character() != "" {
		inlines = append([]ast.Inline{&ast.Text{Value: emoji.Character() + " "}}, inlines...)
	}
	blocks := []ast.Block{&ast.Paragraph{Children: inlines}}
	children, err := b.childAST(ctx)
	if err != nil {
		return nil, err
	}
	return append(blocks, children...), nil
}

// QuoteBlock renders as a block quote wrapping its text and children.
type QuoteBlock struct {
	BaseBlock
	texts RichTexts
}

// NewQuoteBlock wraps a "quote" block.
func NewQuoteBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	texts, err := c.wrapRichTexts(ctx, getMapSlice(getMap(data, "quote"), "rich_text"), nil)
	if err != nil {
		return nil, err
	}
	return &QuoteBlock{BaseBlock: base, texts: texts}, nil
}

// RichTexts returns the quoted runs.
func (b *QuoteBlock) RichTexts() RichTexts { return b.texts }

func (b *QuoteBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	inlines, err := b.texts.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	content := []ast.Block{&ast.Paragraph{Children: inlines}}
	children, err := b.childAST(ctx)
	if err != nil {
		return nil, err
	}
	content = append(content, children...)
	return []ast.Block{&ast.BlockQuote{Children: content}}, nil
}

// listItemContent builds the block list for one list item: its own text
// followed by nested children.
func listItemContent(ctx context.Context, base *BaseBlock, texts RichTexts) ([]ast.Block, error) {
	inlines, err := texts.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	content := []ast.Block{&ast.Paragraph{Children: inlines}}
	children, err := base.childAST(ctx)
	if err != nil {
		return nil, err
	}
	return append(content, children...), nil
}
