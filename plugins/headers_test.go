package plugins

import (
	"testing"

	"github.com/goliatone/go-notion-export/ast"
	"github.com/goliatone/go-notion-export/notion"
)

func TestDeepHeadersSinkBelowLevelThree(t *testing.T) {
	source := newFakeSource()
	seedPage(source, "page1", "Manual",
		headingPayload("h1", 3, "== Internals"),
	)

	doc, _ := convertPage(t, source, "page1", DeepHeaders)

	heading, ok := doc.Blocks[0].(*ast.Heading)
	if !ok {
		t.Fatalf("expected heading, got %T", doc.Blocks[0])
	}
	if heading.Level != 5 {
		t.Fatalf("heading level = %d, want 5", heading.Level)
	}
	if got := ast.PlainText(heading.Children); got != "Internals" {
		t.Fatalf("heading text = %q, want marker stripped", got)
	}
	if heading.Anchor != "internals" {
		t.Fatalf("anchor = %q, want slug of the stripped text", heading.Anchor)
	}
}

func TestDeepHeadersLeavePlainHeadings(t *testing.T) {
	source := newFakeSource()
	seedPage(source, "page1", "Manual",
		headingPayload("h1", 3, "Internals"),
	)

	doc, _ := convertPage(t, source, "page1", DeepHeaders)

	heading, ok := doc.Blocks[0].(*ast.Heading)
	if !ok {
		t.Fatalf("expected heading, got %T", doc.Blocks[0])
	}
	if heading.Level != 3 {
		t.Fatalf("heading level = %d, want 3", heading.Level)
	}
}

func TestLinkedHeadersPointBackToSource(t *testing.T) {
	headingID := "aaaabbbbccccddddeeeeffff00001111"
	source := newFakeSource()
	seedPage(source, "page1", "Manual",
		headingPayload(headingID, 2, "Topics"),
	)

	doc, _ := convertPage(t, source, "page1", LinkedHeaders)

	heading, ok := doc.Blocks[0].(*ast.Heading)
	if !ok {
		t.Fatalf("expected heading, got %T", doc.Blocks[0])
	}
	if heading.Level != 2 {
		t.Fatalf("heading level = %d, want 2", heading.Level)
	}
	link, ok := heading.Children[0].(*ast.Link)
	if !ok {
		t.Fatalf("expected link inside heading, got %T", heading.Children[0])
	}
	if link.Target != notion.ObjectURL(headingID) {
		t.Fatalf("link target = %q, want the block url", link.Target)
	}
	if got := ast.PlainText(link.Children); got != "Topics" {
		t.Fatalf("link text = %q", got)
	}
	if heading.Anchor != "topics" {
		t.Fatalf("anchor = %q, want topics", heading.Anchor)
	}
}

func TestHeaderModulesStack(t *testing.T) {
	source := newFakeSource()
	seedPage(source, "page1", "Manual",
		headingPayload("h1", 3, "= Appendix"),
		headingPayload("h2", 3, "Reference"),
	)

	// Later modules run first, so DeepHeaders loads after LinkedHeaders to
	// claim marked headings before the link wrapper sees them.
	doc, _ := convertPage(t, source, "page1", LinkedHeaders, DeepHeaders)

	deep, ok := doc.Blocks[0].(*ast.Heading)
	if !ok {
		t.Fatalf("expected heading, got %T", doc.Blocks[0])
	}
	if deep.Level != 4 {
		t.Fatalf("marked heading level = %d, want 4", deep.Level)
	}
	if _, ok := deep.Children[0].(*ast.Link); ok {
		t.Fatalf("marked heading should not be wrapped in a link")
	}

	linked, ok := doc.Blocks[1].(*ast.Heading)
	if !ok {
		t.Fatalf("expected heading, got %T", doc.Blocks[1])
	}
	if linked.Level != 3 {
		t.Fatalf("plain heading level = %d, want 3", linked.Level)
	}
	if _, ok := linked.Children[0].(*ast.Link); !ok {
		t.Fatalf("plain heading should carry the source link, got %#v", linked.Children[0])
	}
}
