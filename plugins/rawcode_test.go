package plugins

import (
	"testing"

	"github.com/goliatone/go-notion-export/ast"
)

func TestCaptionDirectiveMakesRawBlock(t *testing.T) {
	source := newFakeSource()
	seedPage(source, "page1", "Home",
		codePayload("c1", "plain text", "<aside>note</aside>", "{=html}"),
	)

	doc, _ := convertPage(t, source, "page1", RawCodeBlocks)

	raw, ok := doc.Blocks[0].(*ast.RawBlock)
	if !ok {
		t.Fatalf("expected raw block, got %T", doc.Blocks[0])
	}
	if raw.Format != "html" {
		t.Fatalf("format = %q, want html", raw.Format)
	}
	if raw.Value != "<aside>note</aside>" {
		t.Fatalf("value = %q", raw.Value)
	}
}

func TestUncaptionedCodeStaysFenced(t *testing.T) {
	source := newFakeSource()
	seedPage(source, "page1", "Home",
		codePayload("c1", "go", "x := 1", ""),
	)

	doc, _ := convertPage(t, source, "page1", RawCodeBlocks)

	code, ok := doc.Blocks[0].(*ast.CodeBlock)
	if !ok {
		t.Fatalf("expected code block, got %T", doc.Blocks[0])
	}
	if code.Language != "go" {
		t.Fatalf("language = %q, want go", code.Language)
	}
	if code.Value != "x := 1" {
		t.Fatalf("value = %q", code.Value)
	}
}

func TestCalloutsRemovedEntirely(t *testing.T) {
	source := newFakeSource()
	callout := calloutPayload("c1", "internal planning note")
	seedChildren(source, callout, paragraphPayload("p9", "never fetched"))
	seedPage(source, "page1", "Home",
		paragraphPayload("p1", "keep"),
		callout,
		paragraphPayload("p2", "also keep"),
	)

	doc, c := convertPage(t, source, "page1", RemoveCallouts)

	if len(doc.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Blocks))
	}
	if got := paragraphText(t, doc.Blocks[0]); got != "keep" {
		t.Fatalf("first block = %q", got)
	}
	if got := paragraphText(t, doc.Blocks[1]); got != "also keep" {
		t.Fatalf("second block = %q", got)
	}
	if calls := source.childCalls["c1"]; calls != 0 {
		t.Fatalf("removed callout fetched its children %d times", calls)
	}
	if diags := c.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}
