package notionexport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-notion-export/notion"
)

type stubSource struct {
	pages    map[string]map[string]any
	children map[string][]map[string]any
}

func newStubSource() *stubSource {
	return &stubSource{
		pages:    map[string]map[string]any{},
		children: map[string][]map[string]any{},
	}
}

func (s *stubSource) GetPage(ctx context.Context, pageID string) (map[string]any, error) {
	page, ok := s.pages[notion.DashlessID(pageID)]
	if !ok {
		return nil, fmt.Errorf("stub source: no page %s", pageID)
	}
	return page, nil
}

func (s *stubSource) GetDatabase(ctx context.Context, databaseID string) (map[string]any, error) {
	return nil, fmt.Errorf("stub source: no database %s", databaseID)
}

func (s *stubSource) GetBlock(ctx context.Context, blockID string) (map[string]any, error) {
	return nil, fmt.Errorf("stub source: no block %s", blockID)
}

func (s *stubSource) GetChildBlocks(ctx context.Context, blockID string) ([]map[string]any, error) {
	return s.children[notion.DashlessID(blockID)], nil
}

func (s *stubSource) GetDatabasePages(ctx context.Context, databaseID string, filter, sorts any) ([]map[string]any, error) {
	return nil, fmt.Errorf("stub source: no database %s", databaseID)
}

func (s *stubSource) DownloadFile(ctx context.Context, fileURL, blockID string) (string, error) {
	return "", fmt.Errorf("stub source: downloads disabled")
}

func seedStubPage(s *stubSource, id, title, body string) {
	key := notion.DashlessID(id)
	s.pages[key] = map[string]any{
		"object":           "page",
		"id":               id,
		"url":              "https://www.notion.so/" + key,
		"last_edited_time": "2024-05-01T10:00:00Z",
		"properties": map[string]any{
			"Name": map[string]any{
				"id":    "title",
				"type":  "title",
				"title": []any{stubTextRun(title)},
			},
		},
	}
	s.children[key] = []map[string]any{{
		"object":       "block",
		"id":           id + "b1",
		"type":         "paragraph",
		"has_children": false,
		"paragraph": map[string]any{
			"rich_text": []any{stubTextRun(body)},
		},
	}}
}

func stubTextRun(content string) map[string]any {
	return map[string]any{
		"type":       "text",
		"plain_text": content,
		"text":       map[string]any{"content": content},
	}
}

func quietConfig(entries ...ExportConfig) Config {
	cfg := DefaultConfig()
	cfg.MediaRoot = ""
	cfg.Logging.Level = "error"
	cfg.Exports = entries
	return cfg
}

func TestModuleRunExportsConfiguredEntries(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := newStubSource()
	seedStubPage(src, "a3aeda3ac75f4fb1ad7ba71e6fdb9b3b", "Welcome", "Body text.")

	cfg := quietConfig(ExportConfig{
		ID:       "a3aeda3ac75f4fb1ad7ba71e6fdb9b3b",
		NodeType: NodePage,
		Output:   filepath.Join(dir, "welcome.md"),
	})

	mod, err := New(ctx, cfg, WithSource(src))
	if err != nil {
		t.Fatalf("New() returned unexpected error: %v", err)
	}
	defer mod.Close()

	if err := mod.Run(ctx); err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "welcome.md"))
	if err != nil {
		t.Fatalf("reading exported file: %v", err)
	}
	if !strings.HasPrefix(string(content), "---\n") {
		t.Fatalf("expected front matter, got %q", content)
	}
	if !strings.Contains(string(content), "Body text.") {
		t.Fatalf("expected body in output, got %q", content)
	}
}

func TestModuleRunHonoursSelection(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := newStubSource()
	seedStubPage(src, "a3aeda3ac75f4fb1ad7ba71e6fdb9b3b", "First", "First body.")
	seedStubPage(src, "b3aeda3ac75f4fb1ad7ba71e6fdb9b3b", "Second", "Second body.")

	cfg := quietConfig(
		ExportConfig{
			ID:       "a3aeda3ac75f4fb1ad7ba71e6fdb9b3b",
			NodeType: NodePage,
			Output:   filepath.Join(dir, "first.md"),
		},
		ExportConfig{
			ID:       "b3aeda3ac75f4fb1ad7ba71e6fdb9b3b",
			NodeType: NodePage,
			Output:   filepath.Join(dir, "second.md"),
		},
	)

	mod, err := New(ctx, cfg, WithSource(src))
	if err != nil {
		t.Fatalf("New() returned unexpected error: %v", err)
	}
	defer mod.Close()

	if err := mod.Run(ctx, "b3aeda3ac75f4fb1ad7ba71e6fdb9b3b"); err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "second.md")); err != nil {
		t.Fatalf("expected selected entry exported: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "first.md")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected unselected entry skipped, got %v", err)
	}
}

func TestModuleExportSingleEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := newStubSource()
	seedStubPage(src, "a3aeda3ac75f4fb1ad7ba71e6fdb9b3b", "Welcome", "Body text.")

	cfg := quietConfig(ExportConfig{
		ID:       "a3aeda3ac75f4fb1ad7ba71e6fdb9b3b",
		NodeType: NodePage,
		Output:   filepath.Join(dir, "configured.md"),
	})

	mod, err := New(ctx, cfg, WithSource(src))
	if err != nil {
		t.Fatalf("New() returned unexpected error: %v", err)
	}
	defer mod.Close()

	adhoc := filepath.Join(dir, "adhoc.md")
	result, err := mod.Export(ctx, ExportConfig{
		ID:       "a3aeda3ac75f4fb1ad7ba71e6fdb9b3b",
		NodeType: NodePage,
		Output:   adhoc,
	})
	if err != nil {
		t.Fatalf("Export() returned unexpected error: %v", err)
	}
	if len(result.Files) != 1 || result.Files[0].Path != adhoc {
		t.Fatalf("unexpected result files: %+v", result.Files)
	}
	if _, err := os.Stat(adhoc); err != nil {
		t.Fatalf("expected ad-hoc file written: %v", err)
	}
}

func TestModuleExportValidatesEntry(t *testing.T) {
	ctx := context.Background()
	src := newStubSource()

	cfg := quietConfig(ExportConfig{
		ID:       "a3aeda3ac75f4fb1ad7ba71e6fdb9b3b",
		NodeType: NodePage,
		Output:   "out.md",
	})
	mod, err := New(ctx, cfg, WithSource(src))
	if err != nil {
		t.Fatalf("New() returned unexpected error: %v", err)
	}
	defer mod.Close()

	if _, err := mod.Export(ctx, ExportConfig{NodeType: "folder"}); err == nil {
		t.Fatal("expected validation error for malformed entry")
	}
}

func TestNewRequiresToken(t *testing.T) {
	cfg := quietConfig(ExportConfig{
		ID:       "a3aeda3ac75f4fb1ad7ba71e6fdb9b3b",
		NodeType: NodePage,
		Output:   "out.md",
	})

	_, err := New(context.Background(), cfg)
	if !errors.Is(err, ErrTokenRequired) {
		t.Fatalf("expected ErrTokenRequired, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()

	_, err := New(context.Background(), cfg, WithSource(newStubSource()))
	if !errors.Is(err, ErrNoExports) {
		t.Fatalf("expected ErrNoExports, got %v", err)
	}
}
