package export

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-notion-export/notion"
)

// fakeSource serves canned payloads from memory so export tests run against
// a fixed workspace. Seeds are keyed by dashless id. Call counters are
// mutex-guarded so parallel runs stay race-free.
type fakeSource struct {
	pages     map[string]map[string]any
	databases map[string]map[string]any
	children  map[string][]map[string]any
	queries   map[string][]map[string]any

	mu         sync.Mutex
	childCalls map[string]int
	queryCalls int
	lastFilter any
	lastSorts  any
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages:      map[string]map[string]any{},
		databases:  map[string]map[string]any{},
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
	return nil, fmt.Errorf("fake source: no block %s", blockID)
}

func (s *fakeSource) GetChildBlocks(ctx context.Context, blockID string) ([]map[string]any, error) {
	s.mu.Lock()
	s.childCalls[notion.DashlessID(blockID)]++
	s.mu.Unlock()
	return s.children[notion.DashlessID(blockID)], nil
}

func (s *fakeSource) GetDatabasePages(ctx context.Context, databaseID string, filter, sorts any) ([]map[string]any, error) {
	s.mu.Lock()
	s.queryCalls++
	s.lastFilter = filter
	s.lastSorts = sorts
	s.mu.Unlock()
	return s.queries[notion.DashlessID(databaseID)], nil
}

func (s *fakeSource) DownloadFile(ctx context.Context, fileURL, blockID string) (string, error) {
	return "", fmt.Errorf("fake source: downloads disabled")
}

// seedPage stores a page payload and its child blocks under one id.
func seedPage(s *fakeSource, id, title, edited string, blocks ...map[string]any) {
	s.pages[notion.DashlessID(id)] = pagePayload(id, title, edited)
	s.children[notion.DashlessID(id)] = blocks
}

func pagePayload(id, title, edited string) map[string]any {
	return map[string]any{
		"object":           "page",
		"id":               id,
		"url":              "https://www.notion.so/" + notion.DashlessID(id),
		"last_edited_time": edited,
		"properties": map[string]any{
			"Name": map[string]any{
				"id":    "title",
				"type":  "title",
				"title": []any{textRunPayload(title)},
			},
		},
	}
}

// pageProperties returns a payload's mutable property map so tests can add
// extra properties to a row.
func pageProperties(payload map[string]any) map[string]any {
	return payload["properties"].(map[string]any)
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

func paragraphPayload(id, text string) map[string]any {
	return map[string]any{
		"object":       "block",
		"id":           id,
		"type":         "paragraph",
		"has_children": false,
		"paragraph": map[string]any{
			"rich_text": []any{textRunPayload(text)},
		},
	}
}

func numberPropertyPayload(value float64) map[string]any {
	return map[string]any{"id": "num", "type": "number", "number": value}
}

func richTextPropertyPayload(content string) map[string]any {
	return map[string]any{
		"id":        "txt",
		"type":      "rich_text",
		"rich_text": []any{textRunPayload(content)},
	}
}

// testPage wraps a payload without going through a source fetch.
func testPage(t *testing.T, payload map[string]any) *notion.Page {
	t.Helper()
	conv := notion.NewConverter(newFakeSource())
	page, err := notion.NewPage(context.Background(), conv, payload)
	if err != nil {
		t.Fatalf("wrap page: %v", err)
	}
	return page
}
