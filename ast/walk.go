package ast

import "strings"

// PlainText flattens inline content to its literal text. Formatting is
// dropped; code and math contribute their raw values.
func PlainText(inlines []Inline) string {
	var sb strings.Builder
	writePlainText(&sb, inlines)
	return sb.String()
}

func writePlainText(sb *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch n := in.(type) {
		case *Text:
			sb.WriteString(n.Value)
		case *LineBreak:
			sb.WriteString("\n")
		case *Code:
			sb.WriteString(n.Value)
		case *Math:
			sb.WriteString(n.Value)
		case *Strong:
			writePlainText(sb, n.Children)
		case *Emph:
			writePlainText(sb, n.Children)
		case *Strikethrough:
			writePlainText(sb, n.Children)
		case *Underline:
			writePlainText(sb, n.Children)
		case *Link:
			writePlainText(sb, n.Children)
		case *RefLink:
			writePlainText(sb, n.Children)
		}
	}
}

// InlineRewriter inspects one inline node after its children have been
// rewritten. Returning ok reports that the node should be replaced by the
// returned slice; an empty slice removes it.
type InlineRewriter func(Inline) ([]Inline, bool)

// BlockRewriter inspects one block node after its children have been
// rewritten. Returning ok reports that the node should be replaced by the
// returned slice; an empty slice removes it.
type BlockRewriter func(Block) ([]Block, bool)

// RewriteInlines rebuilds the tree with every inline run passed through f.
// Block structure is preserved.
func RewriteInlines(blocks []Block, f InlineRewriter) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, rewriteBlockInlines(b, f))
	}
	return out
}

func rewriteBlockInlines(b Block, f InlineRewriter) Block {
	switch n := b.(type) {
	case *Paragraph:
		return &Paragraph{Children: rewriteInlineSeq(n.Children, f)}
	case *Heading:
		return &Heading{Level: n.Level, Anchor: n.Anchor, Children: rewriteInlineSeq(n.Children, f)}
	case *BlockQuote:
		return &BlockQuote{Children: RewriteInlines(n.Children, f)}
	case *BulletList:
		return &BulletList{Items: rewriteItemInlines(n.Items, f)}
	case *OrderedList:
		return &OrderedList{Start: n.Start, Items: rewriteItemInlines(n.Items, f)}
	case *TaskList:
		items := make([]TaskItem, len(n.Items))
		for i, item := range n.Items {
			items[i] = TaskItem{Checked: item.Checked, Children: RewriteInlines(item.Children, f)}
		}
		return &TaskList{Items: items}
	case *Table:
		rows := make([]TableRow, len(n.Rows))
		for i, row := range n.Rows {
			cells := make([][]Inline, len(row.Cells))
			for j, cell := range row.Cells {
				cells[j] = rewriteInlineSeq(cell, f)
			}
			rows[i] = TableRow{Cells: cells}
		}
		return &Table{HeaderRows: n.HeaderRows, Rows: rows}
	case *Image:
		return &Image{URL: n.URL, Caption: rewriteInlineSeq(n.Caption, f)}
	case *FootnoteDef:
		return &FootnoteDef{Label: n.Label, Children: RewriteInlines(n.Children, f)}
	default:
		return b
	}
}

func rewriteItemInlines(items [][]Block, f InlineRewriter) [][]Block {
	out := make([][]Block, len(items))
	for i, item := range items {
		out[i] = RewriteInlines(item, f)
	}
	return out
}

func rewriteInlineSeq(inlines []Inline, f InlineRewriter) []Inline {
	out := make([]Inline, 0, len(inlines))
	for _, in := range inlines {
		in = rewriteInlineChildren(in, f)
		if replacement, ok := f(in); ok {
			out = append(out, replacement...)
			continue
		}
		out = append(out, in)
	}
	return out
}

func rewriteInlineChildren(in Inline, f InlineRewriter) Inline {
	switch n := in.(type) {
	case *Strong:
		return &Strong{Children: rewriteInlineSeq(n.Children, f)}
	case *Emph:
		return &Emph{Children: rewriteInlineSeq(n.Children, f)}
	case *Strikethrough:
		return &Strikethrough{Children: rewriteInlineSeq(n.Children, f)}
	case *Underline:
		return &Underline{Children: rewriteInlineSeq(n.Children, f)}
	case *Link:
		return &Link{Children: rewriteInlineSeq(n.Children, f), Target: n.Target, Title: n.Title}
	case *RefLink:
		return &RefLink{Kind: n.Kind, Key: n.Key, Children: rewriteInlineSeq(n.Children, f)}
	default:
		return in
	}
}

// RewriteBlocks rebuilds the tree with every block passed through f, children
// first. Inline content is preserved.
func RewriteBlocks(blocks []Block, f BlockRewriter) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		rewritten := rewriteBlockChildren(b, f)
		if replacement, ok := f(rewritten); ok {
			out = append(out, replacement...)
			continue
		}
		out = append(out, rewritten)
	}
	return out
}

func rewriteBlockChildren(b Block, f BlockRewriter) Block {
	switch n := b.(type) {
	case *BlockQuote:
		return &BlockQuote{Children: RewriteBlocks(n.Children, f)}
	case *BulletList:
		return &BulletList{Items: rewriteItemBlocks(n.Items, f)}
	case *OrderedList:
		return &OrderedList{Start: n.Start, Items: rewriteItemBlocks(n.Items, f)}
	case *TaskList:
		items := make([]TaskItem, len(n.Items))
		for i, item := range n.Items {
			items[i] = TaskItem{Checked: item.Checked, Children: RewriteBlocks(item.Children, f)}
		}
		return &TaskList{Items: items}
	case *FootnoteDef:
		return &FootnoteDef{Label: n.Label, Children: RewriteBlocks(n.Children, f)}
	default:
		return b
	}
}

func rewriteItemBlocks(items [][]Block, f BlockRewriter) [][]Block {
	out := make([][]Block, len(items))
	for i, item := range items {
		out[i] = RewriteBlocks(item, f)
	}
	return out
}

// Inspect walks the tree depth first, calling fn for every node. Returning
// false from fn skips the node's children.
func Inspect(blocks []Block, fn func(Node) bool) {
	for _, b := range blocks {
		inspectBlock(b, fn)
	}
}

func inspectBlock(b Block, fn func(Node) bool) {
	if b == nil || !fn(b) {
		return
	}
	switch n := b.(type) {
	case *Paragraph:
		inspectInlines(n.Children, fn)
	case *Heading:
		inspectInlines(n.Children, fn)
	case *BlockQuote:
		Inspect(n.Children, fn)
	case *BulletList:
		for _, item := range n.Items {
			Inspect(item, fn)
		}
	case *OrderedList:
		for _, item := range n.Items {
			Inspect(item, fn)
		}
	case *TaskList:
		for _, item := range n.Items {
			Inspect(item.Children, fn)
		}
	case *Table:
		for _, row := range n.Rows {
			for _, cell := range row.Cells {
				inspectInlines(cell, fn)
			}
		}
	case *Image:
		inspectInlines(n.Caption, fn)
	case *FootnoteDef:
		Inspect(n.Children, fn)
	}
}

func inspectInlines(inlines []Inline, fn func(Node) bool) {
	for _, in := range inlines {
		if in == nil || !fn(in) {
			continue
		}
		switch n := in.(type) {
		case *Strong:
			inspectInlines(n.Children, fn)
		case *Emph:
			inspectInlines(n.Children, fn)
		case *Strikethrough:
			inspectInlines(n.Children, fn)
		case *Underline:
			inspectInlines(n.Children, fn)
		case *Link:
			inspectInlines(n.Children, fn)
		case *RefLink:
			inspectInlines(n.Children, fn)
		}
	}
}
