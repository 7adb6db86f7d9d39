package plugins

import (
	"context"

	"github.com/goliatone/go-notion-export/ast"
	"github.com/goliatone/go-notion-export/notion"
)

// ExpandLinkToPages replaces links to other pages with the linked page's
// converted content, spliced in place. Links to databases defer to the
// builtin title link. Reference cycles degrade to a link stub at the second
// occurrence of a page.
var ExpandLinkToPages = notion.Module{
	Name: "expandlinktopages",
	Blocks: map[string]notion.BlockFactory{
		"link_to_page": newExpandingLinkToPage,
	},
}

// ExpandBlueToggles splices the children of blue toggles into the document
// without the summary line. Authors use the color to mark toggles that only
// organize the editing view. Other toggles defer to the builtin single-item
// list.
var ExpandBlueToggles = notion.Module{
	Name: "expandbluetoggles",
	Blocks: map[string]notion.BlockFactory{
		"toggle": newExpandedBlueToggle,
	},
}

type expandingLinkToPage struct {
	*notion.LinkToPageBlock
}

func newExpandingLinkToPage(ctx context.Context, c *notion.Converter, data map[string]any, page *notion.Page, fetchChildren bool) (notion.Block, error) {
	block, err := notion.NewLinkToPageBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	link, ok := block.(*notion.LinkToPageBlock)
	if !ok || link.LinkType() != "page_id" {
		return nil, notion.ErrDefer
	}
	return &expandingLinkToPage{LinkToPageBlock: link}, nil
}

func (b *expandingLinkToPage) ToAST(ctx context.Context) ([]ast.Block, error) {
	return b.Converter().ExpandPage(ctx, b.TargetID())
}

type expandedBlueToggle struct {
	*notion.ToggleBlock
}

func newExpandedBlueToggle(ctx context.Context, c *notion.Converter, data map[string]any, page *notion.Page, fetchChildren bool) (notion.Block, error) {
	block, err := notion.NewToggleBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	toggle, ok := block.(*notion.ToggleBlock)
	if !ok || toggle.Color() != "blue_background" {
		return nil, notion.ErrDefer
	}
	return &expandedBlueToggle{ToggleBlock: toggle}, nil
}

func (b *expandedBlueToggle) ToAST(ctx context.Context) ([]ast.Block, error) {
	if len(b.Children()) == 0 {
		return nil, nil
	}
	return b.Converter().BlocksToAST(ctx, b.Children())
}
