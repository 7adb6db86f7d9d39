package plugins

import (
	"context"
	"regexp"
	"strings"

	"github.com/goliatone/go-notion-export/ast"
	"github.com/goliatone/go-notion-export/notion"
)

// DeepHeaders extends Notion's three heading levels. A level three heading
// whose text starts with one or more "=" followed by a space renders that
// many levels deeper, with the marker stripped: "== Title" becomes an h5.
var DeepHeaders = notion.Module{
	Name: "deepheaders",
	Blocks: map[string]notion.BlockFactory{
		"heading_3": newDeepHeader,
	},
}

// LinkedHeaders wraps every heading's text in a link back to the Notion
// block, so rendered documents can jump to the editable source.
var LinkedHeaders = notion.Module{
	Name: "linkedheaders",
	Blocks: map[string]notion.BlockFactory{
		"heading_1": newLinkedHeading,
		"heading_2": newLinkedHeading,
		"heading_3": newLinkedHeading,
	},
}

var deepHeaderPattern = regexp.MustCompile(`^(=+) `)

type deepHeader struct {
	*notion.HeadingBlock
	prefix string
}

func newDeepHeader(ctx context.Context, c *notion.Converter, data map[string]any, page *notion.Page, fetchChildren bool) (notion.Block, error) {
	block, err := notion.NewHeadingBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	heading, ok := block.(*notion.HeadingBlock)
	if !ok {
		return nil, notion.ErrDefer
	}
	prefix := deepHeaderPattern.FindString(heading.RichTexts().PlainText())
	if prefix == "" {
		return nil, notion.ErrDefer
	}
	return &deepHeader{HeadingBlock: heading, prefix: prefix}, nil
}

func (b *deepHeader) ToAST(ctx context.Context) ([]ast.Block, error) {
	inlines, err := b.RichTexts().ToAST(ctx)
	if err != nil {
		return nil, err
	}
	inlines = stripTextPrefix(inlines, b.prefix)
	level := b.HeadingLevel() + strings.Count(b.prefix, "=")
	blocks := []ast.Block{b.Converter().RegisterHeading(b.ID(), level, inlines)}
	if len(b.Children()) > 0 {
		children, err := b.Converter().BlocksToAST(ctx, b.Children())
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, children...)
	}
	return blocks, nil
}

type linkedHeading struct {
	*notion.HeadingBlock
}

func newLinkedHeading(ctx context.Context, c *notion.Converter, data map[string]any, page *notion.Page, fetchChildren bool) (notion.Block, error) {
	block, err := notion.NewHeadingBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	heading, ok := block.(*notion.HeadingBlock)
	if !ok {
		return nil, notion.ErrDefer
	}
	return &linkedHeading{HeadingBlock: heading}, nil
}

func (b *linkedHeading) ToAST(ctx context.Context) ([]ast.Block, error) {
	inlines, err := b.RichTexts().ToAST(ctx)
	if err != nil {
		return nil, err
	}
	link := &ast.Link{Children: inlines, Target: notion.ObjectURL(b.ID())}
	blocks := []ast.Block{b.Converter().RegisterHeading(b.ID(), b.HeadingLevel(), []ast.Inline{link})}
	if len(b.Children()) > 0 {
		children, err := b.Converter().BlocksToAST(ctx, b.Children())
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, children...)
	}
	return blocks, nil
}
