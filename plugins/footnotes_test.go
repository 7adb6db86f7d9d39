package plugins

import (
	"testing"

	"github.com/goliatone/go-notion-export/ast"
	"github.com/goliatone/go-notion-export/notion"
)

func TestFootnoteReferenceResolvesToLaterDefinition(t *testing.T) {
	source := newFakeSource()
	seedPage(source, "page1", "Notes",
		paragraphPayload("p1", "See the details[^1] below."),
		paragraphPayload("p2", "[1]: Further reading."),
	)

	doc, c := convertPage(t, source, "page1", Footnotes)

	if len(doc.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Blocks))
	}
	para, ok := doc.Blocks[0].(*ast.Paragraph)
	if !ok {
		t.Fatalf("expected paragraph first, got %T", doc.Blocks[0])
	}
	if len(para.Children) != 3 {
		t.Fatalf("expected 3 inlines around the marker, got %d: %#v", len(para.Children), para.Children)
	}
	ref, ok := para.Children[1].(*ast.FootnoteRef)
	if !ok {
		t.Fatalf("expected footnote reference, got %T", para.Children[1])
	}
	if ref.Label != "1" {
		t.Fatalf("reference label = %q, want 1", ref.Label)
	}

	def, ok := doc.Blocks[1].(*ast.FootnoteDef)
	if !ok {
		t.Fatalf("expected footnote definition second, got %T", doc.Blocks[1])
	}
	if def.Label != "1" {
		t.Fatalf("definition label = %q, want 1", def.Label)
	}
	if len(def.Children) != 1 {
		t.Fatalf("expected 1 definition block, got %d", len(def.Children))
	}
	if got := paragraphText(t, def.Children[0]); got != "Further reading." {
		t.Fatalf("definition text = %q, want marker stripped", got)
	}
	if diags := c.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestFootnoteMarkerInsideStyledRun(t *testing.T) {
	source := newFakeSource()
	seedPage(source, "page1", "Notes",
		runsParagraphPayload("p1", boldRunPayload("see appendix[^2]")),
		paragraphPayload("p2", "[2]: Appendix A."),
	)

	doc, _ := convertPage(t, source, "page1", Footnotes)

	para, ok := doc.Blocks[0].(*ast.Paragraph)
	if !ok {
		t.Fatalf("expected paragraph, got %T", doc.Blocks[0])
	}
	strong, ok := para.Children[0].(*ast.Strong)
	if !ok {
		t.Fatalf("expected bold run, got %T", para.Children[0])
	}
	if len(strong.Children) != 2 {
		t.Fatalf("expected text plus marker inside bold, got %#v", strong.Children)
	}
	ref, ok := strong.Children[1].(*ast.FootnoteRef)
	if !ok || ref.Label != "2" {
		t.Fatalf("expected footnote reference 2 inside bold, got %#v", strong.Children[1])
	}
}

func TestUndefinedFootnoteStaysLiteral(t *testing.T) {
	source := newFakeSource()
	seedPage(source, "page1", "Notes",
		paragraphPayload("p1", "dangling[^9]"),
	)

	doc, c := convertPage(t, source, "page1", Footnotes)

	if len(doc.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Blocks))
	}
	if got := paragraphText(t, doc.Blocks[0]); got != "dangling[^9]" {
		t.Fatalf("paragraph text = %q, want the literal marker kept", got)
	}
	diags := c.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
	if diags[0].Severity != notion.SeverityWarning {
		t.Fatalf("severity = %v, want warning", diags[0].Severity)
	}
}

func TestPlainParagraphsUnaffectedByFootnotes(t *testing.T) {
	source := newFakeSource()
	seedPage(source, "page1", "Notes",
		paragraphPayload("p1", "no markers here"),
	)

	doc, c := convertPage(t, source, "page1", Footnotes)

	if got := paragraphText(t, doc.Blocks[0]); got != "no markers here" {
		t.Fatalf("paragraph text = %q", got)
	}
	if diags := c.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}
