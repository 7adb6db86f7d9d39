package plugins

import (
	"context"
	"strings"

	"github.com/goliatone/go-notion-export/ast"
	"github.com/goliatone/go-notion-export/notion"
)

// InternalLinks rewrites links that point at a block on the same page into
// fragment links targeting the block's heading anchor. Links to anything else
// defer to the builtin rendering.
var InternalLinks = notion.Module{
	Name: "internallinks",
	RichTexts: map[string]notion.RichTextFactory{
		"text": newInternalLinkText,
	},
}

type internalLinkText struct {
	notion.RichText
	targetID string
}

func newInternalLinkText(ctx context.Context, c *notion.Converter, data map[string]any, block notion.Block) (notion.RichText, error) {
	text, err := notion.NewTextRichText(ctx, c, data, block)
	if err != nil {
		return nil, err
	}
	if block == nil || block.Page() == nil {
		return nil, notion.ErrDefer
	}
	href := text.Href()
	if !strings.HasPrefix(href, "/"+notion.DashlessID(block.Page().ID())) {
		return nil, notion.ErrDefer
	}
	targetID := fragmentID(href)
	if targetID == "" {
		return nil, notion.ErrDefer
	}
	return &internalLinkText{RichText: text, targetID: targetID}, nil
}

func (t *internalLinkText) ToAST(ctx context.Context) ([]ast.Inline, error) {
	inlines, err := t.RichText.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	if len(inlines) == 1 {
		if link, ok := inlines[0].(*ast.Link); ok {
			return []ast.Inline{&ast.RefLink{
				Kind:     ast.RefAnchor,
				Key:      t.targetID,
				Children: link.Children,
			}}, nil
		}
	}
	return inlines, nil
}

// fragmentID extracts the block identifier from an internal href fragment.
// Fragments that are not Notion identifiers return empty.
func fragmentID(href string) string {
	_, fragment, ok := strings.Cut(href, "#")
	if !ok {
		return ""
	}
	id := strings.ReplaceAll(fragment, "-", "")
	if len(id) != 32 {
		return ""
	}
	for _, r := range id {
		if !isHexDigit(r) {
			return ""
		}
	}
	return id
}

func isHexDigit(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	}
	return false
}
