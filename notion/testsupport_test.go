package notion

import (
	"context"
	"fmt"
	"testing"

	"github.com/goliatone/go-notion-export/ast"
)

// fakeSource serves canned payloads from memory so conversion tests run
// without a workspace connection. Seed the maps through the payload builders
// below; the func fields override individual calls when set.
type fakeSource struct {
	pages     map[string]map[string]any
	databases map[string]map[string]any
	blocks    map[string]map[string]any
	children  map[string][]map[string]any
	queries   map[string][]map[string]any

	childCalls map[string]int
	queryCalls int

	getChildBlocksFunc   func(ctx context.Context, blockID string) ([]map[string]any, error)
	getDatabasePagesFunc func(ctx context.Context, databaseID string, filter, sorts any) ([]map[string]any, error)
	downloadFileFunc     func(ctx context.Context, fileURL, blockID string) (string, error)
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
	page, ok := s.pages[DashlessID(pageID)]
	if !ok {
		return nil, fmt.Errorf("fake source: no page %s", pageID)
	}
	return page, nil
}

func (s *fakeSource) GetDatabase(ctx context.Context, databaseID string) (map[string]any, error) {
	database, ok := s.databases[DashlessID(databaseID)]
	if !ok {
		return nil, fmt.Errorf("fake source: no database %s", databaseID)
	}
	return database, nil
}

func (s *fakeSource) GetBlock(ctx context.Context, blockID string) (map[string]any, error) {
	block, ok := s.blocks[DashlessID(blockID)]
	if !ok {
		return nil, fmt.Errorf("fake source: no block %s", blockID)
	}
	return block, nil
}

func (s *fakeSource) GetChildBlocks(ctx context.Context, blockID string) ([]map[string]any, error) {
	if s.getChildBlocksFunc != nil {
		return s.getChildBlocksFunc(ctx, blockID)
	}
	s.childCalls[DashlessID(blockID)]++
	return s.children[DashlessID(blockID)], nil
}

func (s *fakeSource) GetDatabasePages(ctx context.Context, databaseID string, filter, sorts any) ([]map[string]any, error) {
	if s.getDatabasePagesFunc != nil {
		return s.getDatabasePagesFunc(ctx, databaseID, filter, sorts)
	}
	s.queryCalls++
	return s.queries[DashlessID(databaseID)], nil
}

func (s *fakeSource) DownloadFile(ctx context.Context, fileURL, blockID string) (string, error) {
	if s.downloadFileFunc != nil {
		return s.downloadFileFunc(ctx, fileURL, blockID)
	}
	return "", fmt.Errorf("fake source: downloads disabled")
}

// seedPage stores a page payload and its child blocks under one id.
func seedPage(s *fakeSource, id, title string, blocks ...map[string]any) {
	s.pages[id] = pagePayload(id, title)
	s.children[id] = blocks
}

func pagePayload(id, title string) map[string]any {
	return map[string]any{
		"object": "page",
		"id":     id,
		"url":    "https://www.notion.so/" + DashlessID(id),
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
		"url":    "https://www.notion.so/" + DashlessID(id),
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

func headingPayload(id string, level int, text string) map[string]any {
	return blockPayload(id, fmt.Sprintf("heading_%d", level), map[string]any{
		"rich_text": []any{textRunPayload(text)},
	})
}

func bulletedPayload(id, text string) map[string]any {
	return blockPayload(id, "bulleted_list_item", map[string]any{
		"rich_text": []any{textRunPayload(text)},
	})
}

func numberedPayload(id, text string) map[string]any {
	return blockPayload(id, "numbered_list_item", map[string]any{
		"rich_text": []any{textRunPayload(text)},
	})
}

func todoPayload(id, text string, checked bool) map[string]any {
	return blockPayload(id, "to_do", map[string]any{
		"rich_text": []any{textRunPayload(text)},
		"checked":   checked,
	})
}

// syncedOriginalPayload builds the original half of a synced pair. Originals
// own their children.
func syncedOriginalPayload(id string) map[string]any {
	payload := blockPayload(id, "synced_block", map[string]any{"synced_from": nil})
	payload["has_children"] = true
	return payload
}

// syncedCopyPayload builds a duplicate pointing at an original block.
func syncedCopyPayload(id, originalID string) map[string]any {
	payload := blockPayload(id, "synced_block", map[string]any{
		"synced_from": map[string]any{"type": "block_id", "block_id": originalID},
	})
	payload["has_children"] = true
	return payload
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
