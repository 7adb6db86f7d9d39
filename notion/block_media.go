package notion

import (
	"context"

	"github.com/goliatone/go-notion-export/ast"
)

// ImageBlock embeds an image with an optional caption.
type ImageBlock struct {
	BaseBlock
	file    *File
	caption RichTexts
}

// NewImageBlock wraps an "image" block.
func NewImageBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	payload := getMap(data, "image")
	file, err := c.wrapFile(ctx, payload)
	if err != nil {
		return nil, err
	}
	caption, err := c.wrapRichTexts(ctx, getMapSlice(payload, "caption"), nil)
	if err != nil {
		return nil, err
	}
	return &ImageBlock{BaseBlock: base, file: file, caption: caption}, nil
}

// File returns the image asset.
func (b *ImageBlock) File() *File { return b.file }

// Caption returns the caption runs.
func (b *ImageBlock) Caption() RichTexts { return b.caption }

func (b *ImageBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	caption, err := b.caption.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	return []ast.Block{&ast.Image{
		URL:     b.conv.mediaURL(ctx, b.file, b.id),
		Caption: caption,
	}}, nil
}

// fileLinkBlock is shared by the downloadable attachment variants: file,
// pdf, audio, and video all render as a link paragraph.
type fileLinkBlock struct {
	BaseBlock
	file    *File
	caption RichTexts
}

func newFileLinkBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (fileLinkBlock, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return fileLinkBlock{}, err
	}
	payload := getMap(data, base.typeName)
	file, err := c.wrapFile(ctx, payload)
	if err != nil {
		return fileLinkBlock{}, err
	}
	caption, err := c.wrapRichTexts(ctx, getMapSlice(payload, "caption"), nil)
	if err != nil {
		return fileLinkBlock{}, err
	}
	return fileLinkBlock{BaseBlock: base, file: file, caption: caption}, nil
}

// File returns the linked asset.
func (b *fileLinkBlock) File() *File { return b.file }

// Caption returns the caption runs.
func (b *fileLinkBlock) Caption() RichTexts { return b.caption }

func (b *fileLinkBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	target := b.conv.mediaURL(ctx, b.file, b.id)
	label, err := b.caption.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	if len(label) == 0 {
		text := target
		if b.file != nil && b.file.Name() != "" {
			text = b.file.Name()
		}
		label = ast.Str(text)
	}
	return []ast.Block{&ast.Paragraph{
		Children: []ast.Inline{&ast.Link{Children: label, Target: target}},
	}}, nil
}

// FileBlock links a generic attachment.
type FileBlock struct{ fileLinkBlock }

// NewFileBlock wraps a "file" block.
func NewFileBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	inner, err := newFileLinkBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	return &FileBlock{fileLinkBlock: inner}, nil
}

// PDFBlock links a PDF attachment.
type PDFBlock struct{ fileLinkBlock }

// NewPDFBlock wraps a "pdf" block.
func NewPDFBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	inner, err := newFileLinkBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	return &PDFBlock{fileLinkBlock: inner}, nil
}

// AudioBlock links an audio attachment.
type AudioBlock struct{ fileLinkBlock }

// NewAudioBlock wraps an "audio" block.
func NewAudioBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	inner, err := newFileLinkBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	return &AudioBlock{fileLinkBlock: inner}, nil
}

// VideoBlock links a video attachment.
type VideoBlock struct{ fileLinkBlock }

// NewVideoBlock wraps a "video" block.
func NewVideoBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	inner, err := newFileLinkBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	return &VideoBlock{fileLinkBlock: inner}, nil
}

// EmbedBlock links embedded external content.
type EmbedBlock struct {
	BaseBlock
	url     string
	caption RichTexts
}

// NewEmbedBlock wraps an "embed" block.
func NewEmbedBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	payload := getMap(data, "embed")
	caption, err := c.wrapRichTexts(ctx, getMapSlice(payload, "caption"), nil)
	if err != nil {
		return nil, err
	}
	return &EmbedBlock{
		BaseBlock: base,
		url:       getString(payload, "url"),
		caption:   caption,
	}, nil
}

// URL returns the embedded location.
func (b *EmbedBlock) URL() string { return b.url }

func (b *EmbedBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return linkParagraph(ctx, b.caption, b.url)
}

// BookmarkBlock links a bookmarked page.
type BookmarkBlock struct {
	BaseBlock
	url     string
	caption RichTexts
}

// NewBookmarkBlock wraps a "bookmark" block.
func NewBookmarkBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	payload := getMap(data, "bookmark")
	caption, err := c.wrapRichTexts(ctx, getMapSlice(payload, "caption"), nil)
	if err != nil {
		return nil, err
	}
	return &BookmarkBlock{
		BaseBlock: base,
		url:       getString(payload, "url"),
		caption:   caption,
	}, nil
}

// URL returns the bookmarked location.
func (b *BookmarkBlock) URL() string { return b.url }

func (b *BookmarkBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return linkParagraph(ctx, b.caption, b.url)
}

// LinkPreviewBlock links a previewed external resource.
type LinkPreviewBlock struct {
	BaseBlock
	url string
}

// NewLinkPreviewBlock wraps a "link_preview" block.
func NewLinkPreviewBlock(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	base, err := NewBaseBlock(ctx, c, data, page, fetchChildren)
	if err != nil {
		return nil, err
	}
	return &LinkPreviewBlock{
		BaseBlock: base,
		url:       getString(getMap(data, "link_preview"), "url"),
	}, nil
}

// URL returns the previewed location.
func (b *LinkPreviewBlock) URL() string { return b.url }

func (b *LinkPreviewBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return linkParagraph(ctx, nil, b.url)
}

// linkParagraph renders a caption (or the target itself) linking to target.
func linkParagraph(ctx context.Context, caption RichTexts, target string) ([]ast.Block, error) {
	label, err := caption.ToAST(ctx)
	if err != nil {
		return nil, err
	}
	if len(label) == 0 {
		label = ast.Str(target)
	}
	return []ast.Block{&ast.Paragraph{
		Children: []ast.Inline{&ast.Link{Children: label, Target: target}},
	}}, nil
}
