package plugins

import (
	"context"
	"fmt"
	"testing"

	"github.com/goliatone/go-notion-export/ast"
	"github.com/goliatone/go-notion-export/notion"
)

// fakeSource serves canned payloads from memory so plugin tests run without
// a workspace connection.
type fakeSource struct {
	pages     map[string]map[string]any
	databases map[string]map[string]any
	blocks    map[string]map[string]any
	children  map[string][]map[string]any
	queries   map[string][]map[string]any

	childCalls map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages:      map[string]map[string]any{},
		databases:  map[string]map[string]any{},
		blocks:     map[string]map[string]any{},
		children:   map[string][]map[string]any{},
		queries:    map[string][]map[string]any{},
		childCalls: map[string]int{},
	}
}

func (s *fakeSource) GetPage(ctx context.Context, pageID string) (map[string]any, error) {
	page, ok := s.pages[notion.DashlessID(pageID)]
	if !ok {
		return nil, fmt.Errorf("fake source: no page %s", pageID)
	}
	return page, nil
}

func (s *fakeSource) GetDatabase(ctx context.Context, databaseID string) (map[string]any, error) {
	database, ok := s.databases[notion.DashlessID(databaseID)]
	if !ok {
		return nil, fmt.Errorf("fake source: no database %s", databaseID)
	}
	return database, nil
}

func (s *fakeSource) GetBlock(ctx context.Context, blockID string) (map[string]any, error) {
	block, ok := s.blocks[notion.DashlessID(blockID)]
	if !ok {
		return nil, fmt.Errorf("fake source: no block %s", blockID)
	}
	return block, nil
}

func (s *fakeSource) GetChildBlocks(ctx context.Context, blockID string) ([]map[string]any, error) {
	s.childCalls[notion.DashlessID(blockID)]++
	return s.children[notion.DashlessID(blockID)], nil
}

func (s *fakeSource) GetDatabasePages(ctx context.Context, databaseID string, filter, sorts any) ([]map[string]any, error) {
	return s.queries[notion.DashlessID(databaseID)], nil
}

func (s *fakeSource) DownloadFile(ctx context.Context, fileURL, blockID string) (string, error) {
	return "", fmt.Errorf("fake source: downloads disabled")
}

// seedPage stores a page payload and its child blocks under one id.
func seedPage(s *fakeSource, id, title string, blocks ...map[string]any) {
	s.pages[id] = pagePayload(id, title)
	s.children[id] = blocks
}

// seedChildren stores child blocks for a block payload and marks the parent
// as carrying children.
func seedChildren(s *fakeSource, parent map[string]any, blocks ...map[string]any) {
	parent["has_children"] = true
	s.children[notion.DashlessID(parent["id"].(string))] = blocks
}

func pagePayload(id, title string) map[string]any {
	return map[string]any{
		"object": "page",
		"id":     id,
		"url":    "https://www.notion.so/" + notion.DashlessID(id),
		"properties": map[string]any{
			"Name": map[string]any{
				"id":    "title",
				"type":  "title",
				"title": []any{textRunPayload(title)},
			},
		},
	}
}

func databasePayload(id, title string) map[string]any {
	return map[string]any{
		"object": "database",
		"id":     id,
		"url":    "https://www.notion.so/" + notion.DashlessID(id),
		"title":  []any{textRunPayload(title)},
		"properties": map[string]any{
			"Name": map[string]any{"id": "title", "type": "title", "title": map[string]any{}},
		},
	}
}

func textRunPayload(content string) map[string]any {
	return map[string]any{
		"type":       "text",
		"plain_text": content,
		"text":       map[string]any{"content": content},
	}
}

func linkRunPayload(content, href string) map[string]any {
	run := textRunPayload(content)
	run["href"] = href
	run["text"] = map[string]any{
		"content": content,
		"link":    map[string]any{"url": href},
	}
	return run
}

func boldRunPayload(content string) map[string]any {
	run := textRunPayload(content)
	run["annotations"] = map[string]any{"bold": true}
	return run
}

func blockPayload(id, typeName string, body map[string]any) map[string]any {
	if body == nil {
		body = map[string]any{}
	}
	return map[string]any{
		"object":       "block",
		"id":           id,
		"type":         typeName,
		"has_children": false,
		typeName:       body,
	}
}

func paragraphPayload(id, text string) map[string]any {
	return blockPayload(id, "paragraph", map[string]any{
		"rich_text": []any{textRunPayload(text)},
	})
}

// runsParagraphPayload builds a paragraph from prepared rich text runs.
func runsParagraphPayload(id string, runs ...any) map[string]any {
	return blockPayload(id, "paragraph", map[string]any{"rich_text": runs})
}

func headingPayload(id string, level int, text string) map[string]any {
	return blockPayload(id, fmt.Sprintf("heading_%d", level), map[string]any{
		"rich_text": []any{textRunPayload(text)},
	})
}

func togglePayload(id, text, color string) map[string]any {
	return blockPayload(id, "toggle", map[string]any{
		"rich_text": []any{textRunPayload(text)},
		"color":     color,
	})
}

func calloutPayload(id, text string) map[string]any {
	return blockPayload(id, "callout", map[string]any{
		"rich_text": []any{textRunPayload(text)},
		"icon":      map[string]any{"type": "emoji", "emoji": "⚠️"},
	})
}

func codePayload(id, language, code, caption string) map[string]any {
	body := map[string]any{
		"rich_text": []any{textRunPayload(code)},
		"language":  language,
	}
	if caption != "" {
		body["caption"] = []any{textRunPayload(caption)}
	}
	return blockPayload(id, "code", body)
}

func linkToPagePayload(id, pageID string) map[string]any {
	return blockPayload(id, "link_to_page", map[string]any{
		"type":    "page_id",
		"page_id": pageID,
	})
}

func linkToDatabasePayload(id, databaseID string) map[string]any {
	return blockPayload(id, "link_to_page", map[string]any{
		"type":        "database_id",
		"database_id": databaseID,
	})
}

// convertPage runs one conversion with the given modules loaded, returning
// the document and the converter for diagnostic assertions.
func convertPage(t *testing.T, source *fakeSource, pageID string, modules ...notion.Module) (*ast.Document, *notion.Converter) {
	t.Helper()
	registry := notion.NewRegistry()
	for _, module := range modules {
		if err := registry.Use(module); err != nil {
			t.Fatalf("Use(%s): %v", module.Name, err)
		}
	}
	c := notion.NewConverter(source, notion.WithRegistry(registry))
	ctx := context.Background()
	page, err := c.Page(ctx, pageID)
	if err != nil {
		t.Fatalf("Page(%s): %v", pageID, err)
	}
	doc, err := c.Document(ctx, page)
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	return doc, c
}

// paragraphText asserts a block is a paragraph and flattens its text.
func paragraphText(t *testing.T, block ast.Block) string {
	t.Helper()
	para, ok := block.(*ast.Paragraph)
	if !ok {
		t.Fatalf("expected paragraph, got %T", block)
	}
	return ast.PlainText(para.Children)
}
