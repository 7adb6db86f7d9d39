package plugins

import (
	"testing"

	"github.com/goliatone/go-notion-export/ast"
)

func TestSamePageLinkBecomesFragmentLink(t *testing.T) {
	pageID := "11112222333344445555666677778888"
	headingID := "aaaabbbbccccddddeeeeffff00001111"
	source := newFakeSource()
	seedPage(source, pageID, "Guide",
		headingPayload(headingID, 2, "Details"),
		runsParagraphPayload("p1", linkRunPayload("jump there", "/"+pageID+"#"+headingID)),
	)

	doc, c := convertPage(t, source, pageID, InternalLinks)

	para, ok := doc.Blocks[1].(*ast.Paragraph)
	if !ok {
		t.Fatalf("expected paragraph, got %T", doc.Blocks[1])
	}
	link, ok := para.Children[0].(*ast.Link)
	if !ok {
		t.Fatalf("expected link, got %T", para.Children[0])
	}
	if link.Target != "#details" {
		t.Fatalf("link target = %q, want #details", link.Target)
	}
	if got := ast.PlainText(link.Children); got != "jump there" {
		t.Fatalf("link text = %q", got)
	}
	if diags := c.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestOutsideLinksKeepTheirTarget(t *testing.T) {
	pageID := "11112222333344445555666677778888"
	source := newFakeSource()
	seedPage(source, pageID, "Guide",
		runsParagraphPayload("p1", linkRunPayload("docs", "https://example.com/docs")),
	)

	doc, _ := convertPage(t, source, pageID, InternalLinks)

	para := doc.Blocks[0].(*ast.Paragraph)
	link, ok := para.Children[0].(*ast.Link)
	if !ok {
		t.Fatalf("expected link, got %T", para.Children[0])
	}
	if link.Target != "https://example.com/docs" {
		t.Fatalf("link target = %q, want untouched", link.Target)
	}
}

func TestSlugFragmentsPassThrough(t *testing.T) {
	pageID := "11112222333344445555666677778888"
	href := "/" + pageID + "#some-section"
	source := newFakeSource()
	seedPage(source, pageID, "Guide",
		runsParagraphPayload("p1", linkRunPayload("see section", href)),
	)

	doc, c := convertPage(t, source, pageID, InternalLinks)

	para := doc.Blocks[0].(*ast.Paragraph)
	link, ok := para.Children[0].(*ast.Link)
	if !ok {
		t.Fatalf("expected link, got %T", para.Children[0])
	}
	if link.Target != href {
		t.Fatalf("link target = %q, want %q", link.Target, href)
	}
	if diags := c.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestLinkToMissingAnchorFallsBackToText(t *testing.T) {
	pageID := "11112222333344445555666677778888"
	headingID := "aaaabbbbccccddddeeeeffff00001111"
	source := newFakeSource()
	seedPage(source, pageID, "Guide",
		runsParagraphPayload("p1", linkRunPayload("jump there", "/"+pageID+"#"+headingID)),
	)

	doc, c := convertPage(t, source, pageID, InternalLinks)

	para := doc.Blocks[0].(*ast.Paragraph)
	if len(para.Children) != 1 {
		t.Fatalf("expected 1 inline, got %#v", para.Children)
	}
	text, ok := para.Children[0].(*ast.Text)
	if !ok || text.Value != "jump there" {
		t.Fatalf("expected plain text fallback, got %#v", para.Children[0])
	}
	if diags := c.Diagnostics(); len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
}
