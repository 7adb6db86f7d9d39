package notion

import (
	"context"

	"github.com/goliatone/go-notion-export/ast"
)

// ChildPageBlock marks a page nested inside another page. The default
// rendering is a link; the child's own content belongs to its own export.
type ChildPageBlock struct {
	BaseBlock
	title string
}

// NewChildPageBlock wraps a "child_page" block. Children are never fetched
// here: the subtree is reached through the page itself.
func NewChildPageBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, false)
	if err != nil {
		return nil, err
	}
	return &ChildPageBlock{
		BaseBlock: base,
		title:     getString(getMap(data, "child_page"), "title"),
	}, nil
}

// Title returns the child page title.
func (b *ChildPageBlock) Title() string { return b.title }

func (b *ChildPageBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return []ast.Block{&ast.Paragraph{Children: []ast.Inline{&ast.Link{
		Children: ast.Str(b.title),
		Target:   ObjectURL(b.id),
	}}}}, nil
}

// ChildDatabaseBlock marks a database nested inside a page.
type ChildDatabaseBlock struct {
	BaseBlock
	title string
}

// NewChildDatabaseBlock wraps a "child_database" block.
func NewChildDatabaseBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, false)
	if err != nil {
		return nil, err
	}
	return &ChildDatabaseBlock{
		BaseBlock: base,
		title:     getString(getMap(data, "child_database"), "title"),
	}, nil
}

// Title returns the child database title.
func (b *ChildDatabaseBlock) Title() string { return b.title }

func (b *ChildDatabaseBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return []ast.Block{&ast.Paragraph{Children: []ast.Inline{&ast.Link{
		Children: ast.Str(b.title),
		Target:   ObjectURL(b.id),
	}}}}, nil
}

// SyncedBlock is either the original of a synced pair, which carries its own
// children, or a duplicate pointing at the original. Duplicates expand the
// original's subtree in place, guarded against reference cycles.
type SyncedBlock struct {
	BaseBlock
	originalID string
}

// NewSyncedBlock wraps a "synced_block" block. Originals fetch children
// normally; duplicates resolve theirs at conversion time.
func NewSyncedBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	originalID := getString(getMap(getMap(data, "synced_block"), "synced_from"), "block_id")
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren && originalID == "")
	if err != nil {
		return nil, err
	}
	return &SyncedBlock{BaseBlock: base, originalID: originalID}, nil
}

// Original reports whether this block owns its content.
func (b *SyncedBlock) Original() bool { return b.originalID == "" }

// OriginalID returns the source block id for a duplicate, empty for the
// original.
func (b *SyncedBlock) OriginalID() string { return b.originalID }

func (b *SyncedBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	if b.originalID == "" {
		release, ok := b.conv.enterTransclusion(b.id)
		if !ok {
			return b.conv.stubReference(b.id), nil
		}
		defer release()
		return b.childAST(ctx)
	}
	// A duplicate whose original is not shared with the integration reports
	// no children. It renders nothing rather than failing the page.
	if !b.hasChildren {
		return nil, nil
	}
	return b.conv.expandSyncedBlock(ctx, b.originalID, b.page)
}

// LinkToPageBlock links to another page or database. The default rendering
// is the target's title linked to its URL; a plugin may expand the target's
// content instead.
type LinkToPageBlock struct {
	BaseBlock
	linkType string
	targetID string
}

// NewLinkToPageBlock wraps a "link_to_page" block.
func NewLinkToPageBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	payload := getMap(data, "link_to_page")
	linkType := getString(payload, "type")
	return &LinkToPageBlock{
		BaseBlock: base,
		linkType:  linkType,
		targetID:  getString(payload, linkType),
	}, nil
}

// LinkType returns "page_id" or "database_id".
func (b *LinkToPageBlock) LinkType() string { return b.linkType }

// TargetID returns the linked object id.
func (b *LinkToPageBlock) TargetID() string { return b.targetID }

func (b *LinkToPageBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	var (
		title RichTexts
		err   error
	)
	switch b.linkType {
	case "page_id":
		var target *Page
		if target, err = b.conv.Page(ctx, b.targetID); err == nil {
			title = target.Title()
		}
	case "database_id":
		var target *Database
		if target, err = b.conv.Database(ctx, b.targetID); err == nil {
			title = target.Title()
		}
	default:
		return nil, unknownTypeError("link_to_page", b.linkType)
	}
	if err != nil {
		if isFatal(err) {
			return nil, err
		}
		b.conv.Warnf(b.id, "cannot access linked %s %s: %v", b.linkType, b.targetID, err)
		return nil, nil
	}

	inlines, err := title.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	if len(inlines) == 0 {
		inlines = ast.Str(DashlessID(b.targetID))
	}
	return []ast.Block{&ast.Paragraph{Children: []ast.Inline{&ast.Link{
		Children: inlines,
		Target:   ObjectURL(b.targetID),
	}}}}, nil
}
