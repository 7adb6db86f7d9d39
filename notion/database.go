package notion

import (
	"context"
	"encoding/json"
	"time"
)

// Database is a wrapped database payload: identity, schema, and memoized
// page fetches. Filtered fetches are memoized per filter and sort
// combination.
type Database struct {
	conv           *Converter
	id             string
	url            string
	archived       bool
	createdTime    time.Time
	lastEditedTime time.Time
	createdBy      *User
	lastEditedBy   *User
	title          RichTexts
	icon           any
	cover          *File
	parent         Parent
	schema         map[string]Property
	raw            map[string]any

	pages    []*Page
	hasPages bool
	filtered map[string][]*Page
}

// NewDatabase wraps a database payload.
func NewDatabase(ctx context.Context, c *Converter, data map[string]any) (*Database, error) {
	db := &Database{
		conv:           c,
		id:             getString(data, "id"),
		url:            getString(data, "url"),
		archived:       getBool(data, "archived"),
		createdTime:    getTime(data, "created_time"),
		lastEditedTime: getTime(data, "last_edited_time"),
		parent:         parseParent(data),
		raw:            data,
		filtered:       make(map[string][]*Page),
	}

	var err error
	if db.createdBy, err = c.wrapUser(ctx, getMap(data, "created_by")); err != nil {
		return nil, err
	}
	if db.lastEditedBy, err = c.wrapUser(ctx, getMap(data, "last_edited_by")); err != nil {
		return nil, err
	}
	if db.title, err = c.wrapRichTexts(ctx, getMapSlice(data, "title"), nil); err != nil {
		return nil, err
	}
	if db.icon, err = c.wrapIcon(ctx, getMap(data, "icon")); err != nil {
		return nil, err
	}
	if cover := getMap(data, "cover"); cover != nil {
		if db.cover, err = c.wrapFile(ctx, cover); err != nil {
			return nil, err
		}
	}

	db.schema = make(map[string]Property)
	for name, value := range getMap(data, "properties") {
		payload, ok := value.(map[string]any)
		if !ok {
			continue
		}
		wrapped, err := c.wrapProperty(ctx, name, payload)
		if err != nil {
			return nil, err
		}
		db.schema[name] = wrapped
	}
	return db, nil
}

func (d *Database) ID() string                { return d.id }
func (d *Database) URL() string               { return d.url }
func (d *Database) Archived() bool            { return d.archived }
func (d *Database) CreatedTime() time.Time    { return d.createdTime }
func (d *Database) LastEditedTime() time.Time { return d.lastEditedTime }
func (d *Database) CreatedBy() *User          { return d.createdBy }
func (d *Database) LastEditedBy() *User       { return d.lastEditedBy }
func (d *Database) Parent() Parent            { return d.parent }

// Title returns the database title runs.
func (d *Database) Title() RichTexts { return d.title }

// Icon returns the database icon, a *File or *Emoji when present.
func (d *Database) Icon() any { return d.icon }

// Cover returns the cover image, nil when unset.
func (d *Database) Cover() *File { return d.cover }

// Schema returns the wrapped property definitions keyed by property name.
func (d *Database) Schema() map[string]Property { return d.schema }

// Raw returns the original payload.
func (d *Database) Raw() map[string]any { return d.raw }

// Filename returns a slug of the database title, usable as a file name.
func (d *Database) Filename() string {
	return slugify(d.title.PlainText())
}

// Pages fetches every page in the database, unfiltered. The first
// successful fetch is memoized.
func (d *Database) Pages(ctx context.Context) ([]*Page, error) {
	if d.hasPages {
		return d.pages, nil
	}
	pages, err := d.fetchPages(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	d.pages = pages
	d.hasPages = true
	return d.pages, nil
}

// PagesFiltered fetches pages matching a raw API filter and sort payload.
// Each distinct combination is fetched once.
func (d *Database) PagesFiltered(ctx context.Context, filter, sorts any) ([]*Page, error) {
	if filter == nil && sorts == nil {
		return d.Pages(ctx)
	}
	key, err := json.Marshal([2]any{filter, sorts})
	if err != nil {
		return nil, err
	}
	if pages, ok := d.filtered[string(key)]; ok {
		return pages, nil
	}
	pages, err := d.fetchPages(ctx, filter, sorts)
	if err != nil {
		return nil, err
	}
	d.filtered[string(key)] = pages
	return pages, nil
}

func (d *Database) fetchPages(ctx context.Context, filter, sorts any) ([]*Page, error) {
	payloads, err := d.conv.source.GetDatabasePages(ctx, d.id, filter, sorts)
	if err != nil {
		return nil, err
	}
	pages := make([]*Page, 0, len(payloads))
	for _, payload := range payloads {
		page, err := d.conv.wrapPage(ctx, payload)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}
