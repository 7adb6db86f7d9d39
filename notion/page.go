package notion

import (
	"context"
	"time"
)

// Page is a wrapped page payload: identity, icon and cover, property values,
// and the lazily fetched content tree. Content is fetched at most once per
// run; re-reading it is free.
type Page struct {
	conv           *Converter
	id             string
	url            string
	archived       bool
	createdTime    time.Time
	lastEditedTime time.Time
	createdBy      *User
	lastEditedBy   *User
	icon           any
	cover          *File
	parent         Parent
	properties     map[string]PropertyValue
	raw            map[string]any

	content    []Block
	hasContent bool

	childPages     []*Page
	childDatabases []*Database
	discovered     bool
}

// NewPage wraps a page payload. Property values are wrapped eagerly so that
// malformed properties surface here instead of during rendering.
func NewPage(ctx context.Context, c *Converter, data map[string]any) (*Page, error) {
	page := &Page{
		conv:           c,
		id:             getString(data, "id"),
		url:            getString(data, "url"),
		archived:       getBool(data, "archived"),
		createdTime:    getTime(data, "created_time"),
		lastEditedTime: getTime(data, "last_edited_time"),
		parent:         parseParent(data),
		raw:            data,
	}

	var err error
	if page.createdBy, err = c.wrapUser(ctx, getMap(data, "created_by")); err != nil {
		return nil, err
	}
	if page.lastEditedBy, err = c.wrapUser(ctx, getMap(data, "last_edited_by")); err != nil {
		return nil, err
	}
	if page.icon, err = c.wrapIcon(ctx, getMap(data, "icon")); err != nil {
		return nil, err
	}
	if cover := getMap(data, "cover"); cover != nil {
		if page.cover, err = c.wrapFile(ctx, cover); err != nil {
			return nil, err
		}
	}

	page.properties = make(map[string]PropertyValue)
	for name, value := range getMap(data, "properties") {
		payload, ok := value.(map[string]any)
		if !ok {
			continue
		}
		wrapped, err := c.wrapPropertyValue(ctx, name, payload, page)
		if err != nil {
			return nil, err
		}
		page.properties[name] = wrapped
	}
	return page, nil
}

func (p *Page) ID() string                { return p.id }
func (p *Page) URL() string               { return p.url }
func (p *Page) Archived() bool            { return p.archived }
func (p *Page) CreatedTime() time.Time    { return p.createdTime }
func (p *Page) LastEditedTime() time.Time { return p.lastEditedTime }
func (p *Page) CreatedBy() *User          { return p.createdBy }
func (p *Page) LastEditedBy() *User       { return p.lastEditedBy }
func (p *Page) Parent() Parent            { return p.parent }

// Icon returns the page icon, a *File or *Emoji when present.
func (p *Page) Icon() any { return p.icon }

// Cover returns the cover image, nil when unset.
func (p *Page) Cover() *File { return p.cover }

// Properties returns the wrapped property values keyed by property name.
func (p *Page) Properties() map[string]PropertyValue { return p.properties }

// Raw returns the original payload.
func (p *Page) Raw() map[string]any { return p.raw }

// Title returns the title property's runs. Every page has exactly one title
// property; a page with none returns nil.
func (p *Page) Title() RichTexts {
	for _, value := range p.properties {
		if title, ok := value.(*TitlePropertyValue); ok {
			return title.RichTexts()
		}
	}
	return nil
}

// Filename returns a slug of the page title, usable as a file name.
func (p *Page) Filename() string {
	return slugify(p.Title().PlainText())
}

// Content fetches and wraps the page's block tree. The first successful
// fetch is memoized.
func (p *Page) Content(ctx context.Context) ([]Block, error) {
	if p.hasContent {
		return p.content, nil
	}
	blocks, err := p.conv.childBlocks(ctx, p.id, p)
	if err != nil {
		return nil, err
	}
	p.content = blocks
	p.hasContent = true
	return p.content, nil
}

// PropertiesToValues projects every property to its plain value, keyed by
// property name. The projection is what front matter serializes.
func (p *Page) PropertiesToValues(ctx context.Context) (map[string]any, error) {
	values := make(map[string]any, len(p.properties))
	for name, property := range p.properties {
		value, err := property.Value(ctx)
		if err != nil {
			return nil, err
		}
		values[name] = value
	}
	return values, nil
}

// ChildPages lists pages nested anywhere under this page's content.
func (p *Page) ChildPages(ctx context.Context) ([]*Page, error) {
	if err := p.discoverChildren(ctx); err != nil {
		return nil, err
	}
	return p.childPages, nil
}

// ChildDatabases lists databases nested anywhere under this page's content.
func (p *Page) ChildDatabases(ctx context.Context) ([]*Database, error) {
	if err := p.discoverChildren(ctx); err != nil {
		return nil, err
	}
	return p.childDatabases, nil
}

func (p *Page) discoverChildren(ctx context.Context) error {
	if p.discovered {
		return nil
	}
	content, err := p.Content(ctx)
	if err != nil {
		return err
	}
	if err := p.appendChildren(ctx, content); err != nil {
		return err
	}
	p.discovered = true
	return nil
}

func (p *Page) appendChildren(ctx context.Context, blocks []Block) error {
	for _, block := range blocks {
		switch b := block.(type) {
		case *ChildPageBlock:
			child, err := p.conv.Page(ctx, b.ID())
			if err != nil {
				return err
			}
			p.childPages = append(p.childPages, child)
		case *ChildDatabaseBlock:
			child, err := p.conv.Database(ctx, b.ID())
			if err != nil {
				return err
			}
			p.childDatabases = append(p.childDatabases, child)
		default:
			if err := p.appendChildren(ctx, block.Children()); err != nil {
				return err
			}
		}
	}
	return nil
}
