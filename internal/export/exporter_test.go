package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-notion-export/internal/render"
	"github.com/goliatone/go-notion-export/notion"
	"github.com/goliatone/go-notion-export/plugins"
)

func TestPageExportWritesFrontMatterAndBody(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	seedPage(src, "p1", "Welcome", "2024-05-01T10:00:00Z",
		paragraphPayload("b1", "Body text."))

	path := filepath.Join(t.TempDir(), "welcome.md")
	exporter := New(src)
	result, err := exporter.Export(ctx, Target{
		ID:          "p1",
		Kind:        KindPage,
		Output:      path,
		FrontMatter: FrontMatter{IDProperty: "id", URLProperty: "url"},
	})
	if err != nil {
		t.Fatalf("export page: %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected one file, got %+v", result.Files)
	}
	if result.Files[0].Status != StatusWritten {
		t.Fatalf("status = %q, want %q", result.Files[0].Status, StatusWritten)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		t.Fatalf("output does not start with front matter:\n%s", text)
	}
	for _, want := range []string{
		"notion_id: p1",
		"notion_last_edited_time: 2024-05-01T10:00:00Z",
		"id: p1",
		"url: https://www.notion.so/p1",
		"Name: Welcome",
		"Body text.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestPageExportSkipsUnchangedSource(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	seedPage(src, "p1", "Welcome", "2024-05-01T10:00:00Z",
		paragraphPayload("b1", "Body text."))

	path := filepath.Join(t.TempDir(), "welcome.md")
	exporter := New(src)
	target := Target{ID: "p1", Kind: KindPage, Output: path}

	if _, err := exporter.Export(ctx, target); err != nil {
		t.Fatalf("first export: %v", err)
	}
	if src.childCalls["p1"] != 1 {
		t.Fatalf("first export fetched content %d times", src.childCalls["p1"])
	}

	result, err := exporter.Export(ctx, target)
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if result.Files[0].Status != StatusUnchanged {
		t.Fatalf("status = %q, want %q", result.Files[0].Status, StatusUnchanged)
	}
	if src.childCalls["p1"] != 1 {
		t.Fatalf("unchanged export refetched content: %d calls", src.childCalls["p1"])
	}

	src.pages["p1"]["last_edited_time"] = "2024-06-01T09:30:00Z"
	result, err = exporter.Export(ctx, target)
	if err != nil {
		t.Fatalf("third export: %v", err)
	}
	if result.Files[0].Status != StatusWritten {
		t.Fatalf("status after edit = %q, want %q", result.Files[0].Status, StatusWritten)
	}
	if src.childCalls["p1"] != 2 {
		t.Fatalf("edited export fetched content %d times, want 2", src.childCalls["p1"])
	}
}

func TestPageExportOmitsFrontMatter(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	seedPage(src, "p1", "Welcome", "2024-05-01T10:00:00Z",
		paragraphPayload("b1", "Body text."))

	path := filepath.Join(t.TempDir(), "welcome.md")
	exporter := New(src)
	target := Target{ID: "p1", Kind: KindPage, Output: path, OmitFrontMatter: true}

	if _, err := exporter.Export(ctx, target); err != nil {
		t.Fatalf("export page: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got, want := string(data), "Body text.\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// Without markers there is nothing to compare, so the file is always
	// rewritten.
	result, err := exporter.Export(ctx, target)
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if result.Files[0].Status != StatusWritten {
		t.Fatalf("status = %q, want %q", result.Files[0].Status, StatusWritten)
	}
	if src.childCalls["p1"] != 2 {
		t.Fatalf("expected content fetched twice, got %d", src.childCalls["p1"])
	}
}

func TestDatabaseToYAMLCollectsRows(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.databases["db1"] = databasePayload("db1", "Posts")

	row1 := pagePayload("p1", "First", "2024-05-01T10:00:00Z")
	pageProperties(row1)["Score"] = numberPropertyPayload(7.5)
	row2 := pagePayload("p2", "Second", "2024-05-02T10:00:00Z")
	pageProperties(row2)["Score"] = numberPropertyPayload(3.5)
	src.queries["db1"] = []map[string]any{row1, row2}
	src.children["p1"] = []map[string]any{paragraphPayload("b1", "First body.")}
	src.children["p2"] = []map[string]any{paragraphPayload("b2", "Second body.")}

	path := filepath.Join(t.TempDir(), "posts.yml")
	exporter := New(src)
	target := Target{
		ID:              "db1",
		Kind:            KindDatabaseYAML,
		Output:          path,
		ContentProperty: "content",
	}
	result, err := exporter.Export(ctx, target)
	if err != nil {
		t.Fatalf("export database: %v", err)
	}
	if len(result.Files) != 1 || result.Files[0].Status != StatusWritten {
		t.Fatalf("expected one written file, got %+v", result.Files)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var rows []map[string]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0]["Name"]; got != "First" {
		t.Fatalf("rows[0].Name = %v, want First", got)
	}
	if got := rows[0]["Score"]; got != 7.5 {
		t.Fatalf("rows[0].Score = %v, want 7.5", got)
	}
	if got := rows[0]["content"]; got != "First body.\n" {
		t.Fatalf("rows[0].content = %q", got)
	}
	if got := rows[1]["Name"]; got != "Second" {
		t.Fatalf("rows[1].Name = %v, want Second", got)
	}

	result, err = exporter.Export(ctx, target)
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if result.Files[0].Status != StatusUnchanged {
		t.Fatalf("status = %q, want %q", result.Files[0].Status, StatusUnchanged)
	}
}

func TestDatabaseExportPassesFilterAndSorts(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.databases["db1"] = databasePayload("db1", "Posts")
	src.queries["db1"] = []map[string]any{}

	filter := map[string]any{
		"property": "Status",
		"select":   map[string]any{"equals": "Published"},
	}
	sorts := []any{map[string]any{"property": "Name", "direction": "ascending"}}

	exporter := New(src)
	_, err := exporter.Export(ctx, Target{
		ID:     "db1",
		Kind:   KindDatabaseYAML,
		Output: filepath.Join(t.TempDir(), "posts.yml"),
		Filter: filter,
		Sorts:  sorts,
	})
	if err != nil {
		t.Fatalf("export database: %v", err)
	}
	if !reflect.DeepEqual(src.lastFilter, filter) {
		t.Fatalf("filter = %v, want %v", src.lastFilter, filter)
	}
	if !reflect.DeepEqual(src.lastSorts, sorts) {
		t.Fatalf("sorts = %v, want %v", src.lastSorts, sorts)
	}
}

func TestDatabaseToFilesSkipsDuplicatesAndUnnamed(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.databases["db1"] = databasePayload("db1", "Posts")
	src.queries["db1"] = []map[string]any{
		pagePayload("p1", "Alpha", "2024-05-01T10:00:00Z"),
		pagePayload("p2", "Alpha", "2024-05-01T11:00:00Z"),
		pagePayload("p3", "", "2024-05-01T12:00:00Z"),
	}
	src.children["p1"] = []map[string]any{paragraphPayload("b1", "Alpha body.")}

	dir := t.TempDir()
	exporter := New(src)
	result, err := exporter.Export(ctx, Target{ID: "db1", Kind: KindDatabaseFiles, Output: dir})
	if err != nil {
		t.Fatalf("export database: %v", err)
	}

	if len(result.Files) != 1 {
		t.Fatalf("expected one file, got %+v", result.Files)
	}
	if got, want := result.Files[0].Path, filepath.Join(dir, "alpha.md"); got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
	if result.SkippedRows != 2 {
		t.Fatalf("skipped rows = %d, want 2", result.SkippedRows)
	}

	var warnings []string
	for _, diag := range result.Diagnostics {
		if diag.Severity == notion.SeverityWarning {
			warnings = append(warnings, diag.Message)
		}
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
	if !strings.Contains(warnings[0], `"alpha.md" already produced by row p1`) {
		t.Fatalf("duplicate warning = %q", warnings[0])
	}
	if !strings.Contains(warnings[1], "no usable filename") {
		t.Fatalf("unnamed warning = %q", warnings[1])
	}

	if src.childCalls["p2"] != 0 || src.childCalls["p3"] != 0 {
		t.Fatalf("skipped rows fetched content: %v", src.childCalls)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one output file, found %d", len(entries))
	}
}

func TestDatabaseToFilesUsesFilenameTemplate(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.databases["db1"] = databasePayload("db1", "Posts")

	row := pagePayload("p1", "First Post", "2024-05-01T10:00:00Z")
	pageProperties(row)["Slug"] = richTextPropertyPayload("first-post")
	src.queries["db1"] = []map[string]any{row}
	src.children["p1"] = []map[string]any{paragraphPayload("b1", "First body.")}

	dir := t.TempDir()
	exporter := New(src)
	result, err := exporter.Export(ctx, Target{
		ID:               "db1",
		Kind:             KindDatabaseFiles,
		Output:           dir,
		FilenameTemplate: "{Slug}.md",
	})
	if err != nil {
		t.Fatalf("export database: %v", err)
	}
	want := filepath.Join(dir, "first-post.md")
	if len(result.Files) != 1 || result.Files[0].Path != want {
		t.Fatalf("files = %+v, want %q", result.Files, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("stat output: %v", err)
	}
}

func TestDatabaseToFilesHonorsFormat(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.databases["db1"] = databasePayload("db1", "Posts")
	src.queries["db1"] = []map[string]any{pagePayload("p1", "Alpha", "2024-05-01T10:00:00Z")}
	src.children["p1"] = []map[string]any{paragraphPayload("b1", "Alpha body.")}

	dir := t.TempDir()
	exporter := New(src)
	result, err := exporter.Export(ctx, Target{
		ID:     "db1",
		Kind:   KindDatabaseFiles,
		Output: dir,
		Format: render.FormatHTML,
	})
	if err != nil {
		t.Fatalf("export database: %v", err)
	}
	want := filepath.Join(dir, "alpha.html")
	if len(result.Files) != 1 || result.Files[0].Path != want {
		t.Fatalf("files = %+v, want %q", result.Files, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "<p>Alpha body.</p>") {
		t.Fatalf("html body missing:\n%s", data)
	}
}

func TestDatabaseToFilesTemplateFallsBackPerRow(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.databases["db1"] = databasePayload("db1", "Posts")

	slugged := pagePayload("p1", "First Post", "2024-05-01T10:00:00Z")
	pageProperties(slugged)["Slug"] = richTextPropertyPayload("first-post")
	bare := pagePayload("p2", "Second Post", "2024-05-02T10:00:00Z")
	src.queries["db1"] = []map[string]any{slugged, bare}
	src.children["p1"] = []map[string]any{paragraphPayload("b1", "First body.")}
	src.children["p2"] = []map[string]any{paragraphPayload("b2", "Second body.")}

	dir := t.TempDir()
	exporter := New(src)
	result, err := exporter.Export(ctx, Target{
		ID:               "db1",
		Kind:             KindDatabaseFiles,
		Output:           dir,
		FilenameTemplate: "{Slug}.md",
	})
	if err != nil {
		t.Fatalf("export database: %v", err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files, got %+v", result.Files)
	}
	if got, want := result.Files[1].Path, filepath.Join(dir, "second-post.md"); got != want {
		t.Fatalf("fallback path = %q, want %q", got, want)
	}
	found := false
	for _, diag := range result.Diagnostics {
		if diag.NotionID == "p2" && strings.Contains(diag.Message, "using the title instead") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing fallback warning in %v", result.Diagnostics)
	}
}

func TestExportAllAggregatesTargets(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	seedPage(src, "p1", "Welcome", "2024-05-01T10:00:00Z",
		paragraphPayload("b1", "Body text."))
	src.databases["db1"] = databasePayload("db1", "Posts")
	src.queries["db1"] = []map[string]any{pagePayload("p2", "Alpha", "2024-05-01T11:00:00Z")}
	src.children["p2"] = []map[string]any{paragraphPayload("b2", "Alpha body.")}

	dir := t.TempDir()
	exporter := New(src)
	targets := []Target{
		{ID: "p1", Kind: KindPage, Output: filepath.Join(dir, "welcome.md")},
		{ID: "db1", Kind: KindDatabaseFiles, Output: filepath.Join(dir, "posts")},
	}

	run, err := exporter.ExportAll(ctx, targets)
	if err != nil {
		t.Fatalf("export all: %v", err)
	}
	if len(run.Targets) != 2 {
		t.Fatalf("expected 2 target results, got %d", len(run.Targets))
	}
	if run.Targets[0].Target.ID != "p1" || run.Targets[1].Target.ID != "db1" {
		t.Fatalf("target order not preserved: %+v", run.Targets)
	}
	if run.Written != 2 {
		t.Fatalf("written = %d, want 2", run.Written)
	}
	if run.Unchanged != 0 || run.SkippedRows != 0 || len(run.Errors) != 0 {
		t.Fatalf("unexpected counters: %+v", run)
	}

	run, err = exporter.ExportAll(ctx, targets)
	if err != nil {
		t.Fatalf("second export all: %v", err)
	}
	if run.Written != 0 || run.Unchanged != 2 {
		t.Fatalf("second run written=%d unchanged=%d, want 0 and 2", run.Written, run.Unchanged)
	}
}

func TestExportAllContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	seedPage(src, "p1", "Welcome", "2024-05-01T10:00:00Z",
		paragraphPayload("b1", "Body text."))

	dir := t.TempDir()
	exporter := New(src)
	run, err := exporter.ExportAll(ctx, []Target{
		{ID: "ghost", Kind: KindPage, Output: filepath.Join(dir, "ghost.md")},
		{ID: "p1", Kind: KindPage, Output: filepath.Join(dir, "welcome.md")},
	})
	if err == nil {
		t.Fatal("expected the failing target to surface an error")
	}
	if !strings.Contains(err.Error(), "target ghost") {
		t.Fatalf("error does not name the target: %v", err)
	}
	if run.Targets[0].Err == nil || run.Targets[1].Err != nil {
		t.Fatalf("unexpected per-target errors: %+v", run.Targets)
	}
	if run.Written != 1 {
		t.Fatalf("written = %d, want 1", run.Written)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "welcome.md")); statErr != nil {
		t.Fatalf("surviving target not written: %v", statErr)
	}
}

func TestExportAllRunsTargetsInParallel(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	ids := []string{"p1", "p2", "p3", "p4"}
	for _, id := range ids {
		seedPage(src, id, "Page "+id, "2024-05-01T10:00:00Z",
			paragraphPayload("b"+id, "Body of "+id+"."))
	}

	dir := t.TempDir()
	exporter := New(src, WithWorkers(4))
	targets := make([]Target, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, Target{ID: id, Kind: KindPage, Output: filepath.Join(dir, id+".md")})
	}

	run, err := exporter.ExportAll(ctx, targets)
	if err != nil {
		t.Fatalf("export all: %v", err)
	}
	if run.Written != len(ids) {
		t.Fatalf("written = %d, want %d", run.Written, len(ids))
	}
	for _, id := range ids {
		if _, err := os.Stat(filepath.Join(dir, id+".md")); err != nil {
			t.Fatalf("missing output for %s: %v", id, err)
		}
	}
}

func TestExportAllHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := newFakeSource()
	seedPage(src, "p1", "Welcome", "2024-05-01T10:00:00Z")

	exporter := New(src)
	run, err := exporter.ExportAll(ctx, []Target{
		{ID: "p1", Kind: KindPage, Output: filepath.Join(t.TempDir(), "welcome.md")},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if run.Written != 0 {
		t.Fatalf("written = %d, want 0", run.Written)
	}
}

func TestExportRejectsUnknownKind(t *testing.T) {
	ctx := context.Background()
	exporter := New(newFakeSource())

	_, err := exporter.Export(ctx, Target{ID: "p1", Kind: "zip", Output: "out.md"})
	if err == nil {
		t.Fatal("expected an error for an unknown kind")
	}
	if !strings.Contains(err.Error(), `unknown target kind "zip"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExportRejectsUnknownPlugin(t *testing.T) {
	ctx := context.Background()
	exporter := New(newFakeSource())

	_, err := exporter.Export(ctx, Target{
		ID:      "p1",
		Kind:    KindPage,
		Output:  "out.md",
		Plugins: []string{"nope"},
	})
	if !errors.Is(err, plugins.ErrUnknownPlugin) {
		t.Fatalf("expected unknown plugin error, got %v", err)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	ctx := context.Background()
	exporter := New(newFakeSource())

	_, err := exporter.Export(ctx, Target{
		ID:     "p1",
		Kind:   KindPage,
		Output: "out.md",
		Format: "pdf",
	})
	if !errors.Is(err, render.ErrUnknownFormat) {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}
