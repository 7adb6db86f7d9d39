// Package ast defines the intermediate document tree produced by the
// conversion engine and consumed by render sinks. The node set is
// deliberately small: it covers what Notion content can express, not the
// full grammar of any output format.
package ast

// Node is implemented by every tree node.
type Node interface {
	node()
}

// Block is a vertical slice of a document: paragraphs, headings, lists.
type Block interface {
	Node
	block()
}

// Inline is a horizontal run inside a block: text, emphasis, links.
type Inline interface {
	Node
	inline()
}

// Document is the root of a converted tree.
type Document struct {
	Blocks []Block
}

// RefKind discriminates unresolved reference inlines. References are left in
// place during the first conversion pass and rewritten once every anchor is
// known.
type RefKind string

const (
	// RefAnchor points at another block on the same document, keyed by the
	// target block id.
	RefAnchor RefKind = "anchor"
	// RefFootnote points at a footnote definition, keyed by its label.
	RefFootnote RefKind = "footnote"
)

type (
	// Text is a literal run. Adjacent Text nodes are equivalent to their
	// concatenation.
	Text struct {
		Value string
	}

	// LineBreak is a hard break inside a block.
	LineBreak struct{}

	// Strong wraps bold content.
	Strong struct {
		Children []Inline
	}

	// Emph wraps italic content.
	Emph struct {
		Children []Inline
	}

	// Strikethrough wraps struck content.
	Strikethrough struct {
		Children []Inline
	}

	// Underline wraps underlined content. Markdown has no native form; the
	// writer falls back to emphasis.
	Underline struct {
		Children []Inline
	}

	// Code is an inline code span.
	Code struct {
		Value string
	}

	// Math is an inline equation in TeX notation.
	Math struct {
		Value string
	}

	// Link is a resolved hyperlink.
	Link struct {
		Children []Inline
		Target   string
		Title    string
	}

	// RefLink is an unresolved cross-reference. The second conversion pass
	// replaces it with a Link (RefAnchor) or footnote marker (RefFootnote);
	// unresolved keys degrade to the literal children.
	RefLink struct {
		Kind     RefKind
		Key      string
		Children []Inline
	}

	// FootnoteRef is a resolved footnote marker. Its label matches a
	// FootnoteDef somewhere in the document.
	FootnoteRef struct {
		Label string
	}
)

func (*Text) node()          {}
func (*LineBreak) node()     {}
func (*Strong) node()        {}
func (*Emph) node()          {}
func (*Strikethrough) node() {}
func (*Underline) node()     {}
func (*Code) node()          {}
func (*Math) node()          {}
func (*Link) node()          {}
func (*RefLink) node()       {}
func (*FootnoteRef) node()   {}

func (*Text) inline()          {}
func (*LineBreak) inline()     {}
func (*Strong) inline()        {}
func (*Emph) inline()          {}
func (*Strikethrough) inline() {}
func (*Underline) inline()     {}
func (*Code) inline()          {}
func (*Math) inline()          {}
func (*Link) inline()          {}
func (*RefLink) inline()       {}
func (*FootnoteRef) inline()   {}

type (
	// Paragraph is a run of inline content.
	Paragraph struct {
		Children []Inline
	}

	// Heading carries its resolved anchor so same-document links and tables
	// of contents can target it.
	Heading struct {
		Level    int
		Anchor   string
		Children []Inline
	}

	// CodeBlock is a fenced code block.
	CodeBlock struct {
		Language string
		Value    string
	}

	// RawBlock passes through verbatim for a single output format and is
	// dropped by sinks for any other format.
	RawBlock struct {
		Format string
		Value  string
	}

	// BlockQuote wraps nested block content.
	BlockQuote struct {
		Children []Block
	}

	// BulletList holds one slice of blocks per item.
	BulletList struct {
		Items [][]Block
	}

	// OrderedList holds one slice of blocks per item, numbered from Start.
	OrderedList struct {
		Start int
		Items [][]Block
	}

	// TaskList is a checklist. GitHub-flavored markdown renders it as
	// "- [x]" items.
	TaskList struct {
		Items []TaskItem
	}

	// TaskItem is a single checklist entry.
	TaskItem struct {
		Checked  bool
		Children []Block
	}

	// Table is a grid of inline cells. HeaderRows counts leading rows that
	// belong to the header.
	Table struct {
		HeaderRows int
		Rows       []TableRow
	}

	// TableRow is one row of cells.
	TableRow struct {
		Cells [][]Inline
	}

	// HorizontalRule is a thematic break.
	HorizontalRule struct{}

	// MathBlock is a display equation in TeX notation.
	MathBlock struct {
		Value string
	}

	// Image is a block-level image with an optional caption.
	Image struct {
		URL     string
		Caption []Inline
	}

	// FootnoteDef is a footnote body keyed by label. Writers emit
	// definitions where they appear in the tree.
	FootnoteDef struct {
		Label    string
		Children []Block
	}

	// TOC marks a table-of-contents position. The second conversion pass
	// replaces it with nested lists of the document's headings.
	TOC struct{}

	// Placeholder stands in for content that could not be converted. It
	// preserves the child count and order of its siblings.
	Placeholder struct {
		Reason string
	}
)

func (*Paragraph) node()      {}
func (*Heading) node()        {}
func (*CodeBlock) node()      {}
func (*RawBlock) node()       {}
func (*BlockQuote) node()     {}
func (*BulletList) node()     {}
func (*OrderedList) node()    {}
func (*TaskList) node()       {}
func (*Table) node()          {}
func (*HorizontalRule) node() {}
func (*MathBlock) node()      {}
func (*Image) node()          {}
func (*FootnoteDef) node()    {}
func (*TOC) node()            {}
func (*Placeholder) node()    {}

func (*Paragraph) block()      {}
func (*Heading) block()        {}
func (*CodeBlock) block()      {}
func (*RawBlock) block()       {}
func (*BlockQuote) block()     {}
func (*BulletList) block()     {}
func (*OrderedList) block()    {}
func (*TaskList) block()       {}
func (*Table) block()          {}
func (*HorizontalRule) block() {}
func (*MathBlock) block()      {}
func (*Image) block()          {}
func (*FootnoteDef) block()    {}
func (*TOC) block()            {}
func (*Placeholder) block()    {}

// Str wraps a literal string as an inline slice. Most converters build
// their inline content from rich text runs; Str covers synthesized labels.
func Str(value string) []Inline {
	if value == "" {
		return nil
	}
	return []Inline{&Text{Value: value}}
}
