package plugins

import (
	"context"
	"regexp"

	"github.com/goliatone/go-notion-export/ast"
	"github.com/goliatone/go-notion-export/notion"
)

// RawCodeBlocks passes code blocks through verbatim for one output format.
// A code block whose caption starts with "{=format}" becomes a raw block for
// that format instead of a fenced listing; sinks for other formats drop it.
var RawCodeBlocks = notion.Module{
	Name: "rawcodeblocks",
	Blocks: map[string]notion.BlockFactory{
		"code": newRawCodeBlock,
	},
}

// RemoveCallouts drops callout blocks and their children entirely. Useful
// when callouts hold authoring notes that must not reach generated output.
var RemoveCallouts = notion.Module{
	Name: "removecallouts",
	Blocks: map[string]notion.BlockFactory{
		"callout": newRemovedCallout,
	},
}

var rawFormatPattern = regexp.MustCompile(`^\{=([^}]+)\}`)

type rawCodeBlock struct {
	*notion.CodeBlock
	format string
}

func newRawCodeBlock(ctx context.Context, c *notion.Converter, data map[string]any, page *notion.Page, fetchChildren bool) (notion.Block, error) {
	block, err := notion.NewCodeBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	code, ok := block.(*notion.CodeBlock)
	if !ok {
		return nil, notion.ErrDefer
	}
	match := rawFormatPattern.FindStringSubmatch(code.Caption().PlainText())
	if match == nil {
		return nil, notion.ErrDefer
	}
	return &rawCodeBlock{CodeBlock: code, format: match[1]}, nil
}

func (b *rawCodeBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return []ast.Block{&ast.RawBlock{Format: b.format, Value: b.Code()}}, nil
}

type removedCallout struct {
	notion.BaseBlock
}

func newRemovedCallout(ctx context.Context, c *notion.Converter, data map[string]any, page *notion.Page, fetchChildren bool) (notion.Block, error) {
	base, err := notion.NewBaseBlock(ctx, c, data, page, false)
	if err != nil {
		return nil, err
	}
	return &removedCallout{BaseBlock: base}, nil
}

func (b *removedCallout) ToAST(ctx context.Context) ([]ast.Block, error) {
	return nil, nil
}
