package notionapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	testToken  = "secret-token"
	testPageID = "a3aeda3ac75f4fb1ad7ba71e6fdb9b3b"
)

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func apiObject(kind, id string) map[string]any {
	return map[string]any{"object": kind, "id": id}
}

type memoryCache struct {
	mu     sync.Mutex
	values map[string]any
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]any{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.sets++
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memoryCache) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = map[string]any{}
	return nil
}

func TestPageFetchedOncePerRun(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			t.Errorf("authorization header = %q, want bearer token", got)
		}
		if r.Header.Get("Notion-Version") == "" {
			t.Error("request missing Notion-Version header")
		}
		if r.URL.Path != "/pages/"+testPageID {
			t.Errorf("path = %q, want /pages/%s", r.URL.Path, testPageID)
		}
		writeJSON(w, apiObject("page", testPageID))
	}))
	defer srv.Close()

	client := New(testToken, WithBaseURL(srv.URL))
	ctx := context.Background()

	page, err := client.GetPage(ctx, testPageID)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if page["object"] != "page" {
		t.Fatalf("page object = %v, want page", page["object"])
	}

	dashed := "a3aeda3a-c75f-4fb1-ad7b-a71e6fdb9b3b"
	again, err := client.GetPage(ctx, dashed)
	if err != nil {
		t.Fatalf("GetPage dashed: %v", err)
	}
	if !reflect.DeepEqual(page, again) {
		t.Fatal("memoized page differs from first fetch")
	}
	if hits != 1 {
		t.Fatalf("server hits = %d, want 1", hits)
	}
}

func TestChildBlocksFlattenPagination(t *testing.T) {
	const parent = "b4f1c2d3e4f5a6b7c8d9e0f1a2b3c4d5"
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Query().Get("page_size") != "100" {
			t.Errorf("page_size = %q, want 100", r.URL.Query().Get("page_size"))
		}
		switch r.URL.Query().Get("start_cursor") {
		case "":
			writeJSON(w, map[string]any{
				"results":     []any{apiObject("block", "c1"), apiObject("block", "c2")},
				"has_more":    true,
				"next_cursor": "cursor-2",
			})
		case "cursor-2":
			writeJSON(w, map[string]any{
				"results":  []any{apiObject("block", "c3")},
				"has_more": false,
			})
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("start_cursor"))
		}
	}))
	defer srv.Close()

	client := New(testToken, WithBaseURL(srv.URL))
	ctx := context.Background()

	children, err := client.GetChildBlocks(ctx, parent)
	if err != nil {
		t.Fatalf("GetChildBlocks: %v", err)
	}
	ids := make([]string, len(children))
	for i, child := range children {
		ids[i], _ = child["id"].(string)
	}
	want := []string{"c1", "c2", "c3"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("child ids = %v, want %v", ids, want)
	}
	if hits != 2 {
		t.Fatalf("server hits = %d, want 2", hits)
	}

	if _, err := client.GetChildBlocks(ctx, parent); err != nil {
		t.Fatalf("GetChildBlocks again: %v", err)
	}
	if hits != 2 {
		t.Fatalf("memoized call hit the server, hits = %d", hits)
	}
}

func TestDatabaseQueryPassesFilterAndSorts(t *testing.T) {
	const databaseID = "d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6"
	filter := map[string]any{"property": "Status", "select": map[string]any{"equals": "Done"}}
	sorts := []any{map[string]any{"timestamp": "created_time", "direction": "ascending"}}

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode query body: %v", err)
		}
		if hits == 1 {
			if _, ok := body["filter"]; !ok {
				t.Error("query body missing filter")
			}
			if _, ok := body["sorts"]; !ok {
				t.Error("query body missing sorts")
			}
		}
		if cursor, ok := body["start_cursor"]; ok {
			if cursor != "more" {
				t.Errorf("start_cursor = %v, want more", cursor)
			}
			writeJSON(w, map[string]any{
				"results":  []any{apiObject("page", "row3")},
				"has_more": false,
			})
			return
		}
		writeJSON(w, map[string]any{
			"results":     []any{apiObject("page", "row1"), apiObject("page", "row2")},
			"has_more":    true,
			"next_cursor": "more",
		})
	}))
	defer srv.Close()

	client := New(testToken, WithBaseURL(srv.URL))
	ctx := context.Background()

	pages, err := client.GetDatabasePages(ctx, databaseID, filter, sorts)
	if err != nil {
		t.Fatalf("GetDatabasePages: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	if hits != 2 {
		t.Fatalf("server hits = %d, want 2", hits)
	}

	if _, err := client.GetDatabasePages(ctx, databaseID, filter, sorts); err != nil {
		t.Fatalf("GetDatabasePages again: %v", err)
	}
	if hits != 2 {
		t.Fatalf("repeat query hit the server, hits = %d", hits)
	}

	if _, err := client.GetDatabasePages(ctx, databaseID, nil, nil); err != nil {
		t.Fatalf("GetDatabasePages unfiltered: %v", err)
	}
	if hits != 4 {
		t.Fatalf("unfiltered query should refetch, hits = %d", hits)
	}
}

func TestRateLimitedRequestRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			writeJSON(w, map[string]any{"code": "rate_limited", "message": "slow down"})
			return
		}
		writeJSON(w, apiObject("page", testPageID))
	}))
	defer srv.Close()

	client := New(testToken, WithBaseURL(srv.URL), WithRetries(2, time.Millisecond))
	ctx := context.Background()

	if _, err := client.GetPage(ctx, testPageID); err != nil {
		t.Fatalf("GetPage after rate limit: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestServerErrorsExhaustRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]any{"code": "service_unavailable", "message": "down"})
	}))
	defer srv.Close()

	client := New(testToken, WithBaseURL(srv.URL), WithRetries(2, time.Millisecond))
	ctx := context.Background()

	_, err := client.GetPage(ctx, testPageID)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", apiErr.StatusCode)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestNotFoundDoesNotRetry(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{
			"object":  "error",
			"status":  404,
			"code":    "object_not_found",
			"message": "Could not find page",
		})
	}))
	defer srv.Close()

	client := New(testToken, WithBaseURL(srv.URL), WithRetries(3, time.Millisecond))
	ctx := context.Background()

	_, err := client.GetPage(ctx, testPageID)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Code != CodeObjectNotFound {
		t.Fatalf("code = %q, want %q", apiErr.Code, CodeObjectNotFound)
	}
	if !IsNotFound(err) {
		t.Fatal("IsNotFound = false, want true")
	}
	if hits != 1 {
		t.Fatalf("client retried a 404, hits = %d", hits)
	}
}

func TestResponseCacheServesRepeatRuns(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		writeJSON(w, apiObject("page", testPageID))
	}))
	defer srv.Close()

	cache := newMemoryCache()
	ctx := context.Background()

	first := New(testToken, WithBaseURL(srv.URL), WithCache(cache, time.Hour))
	if _, err := first.GetPage(ctx, testPageID); err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if hits != 1 {
		t.Fatalf("server hits = %d, want 1", hits)
	}
	if cache.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", cache.sets)
	}

	second := New(testToken, WithBaseURL(srv.URL), WithCache(cache, time.Hour))
	page, err := second.GetPage(ctx, testPageID)
	if err != nil {
		t.Fatalf("GetPage from cache: %v", err)
	}
	if page["id"] != testPageID {
		t.Fatalf("cached page id = %v, want %s", page["id"], testPageID)
	}
	if hits != 1 {
		t.Fatalf("cached run hit the server, hits = %d", hits)
	}
}

func TestDownloadFileNamesAreStable(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	client := New(testToken, WithMediaDir(dir, "https://cdn.example.com/media/"))
	ctx := context.Background()
	const blockID = "f0e1d2c3b4a5968788796a5b4c3d2e1f"

	link, err := client.DownloadFile(ctx, srv.URL+"/assets/cover.png?signature=first", blockID)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if !strings.HasPrefix(link, "https://cdn.example.com/media/") {
		t.Fatalf("link = %q, want media base prefix", link)
	}
	if !strings.HasSuffix(link, ".png") {
		t.Fatalf("link = %q, want .png extension", link)
	}

	again, err := client.DownloadFile(ctx, srv.URL+"/assets/cover.png?signature=rotated", blockID)
	if err != nil {
		t.Fatalf("DownloadFile again: %v", err)
	}
	if again != link {
		t.Fatalf("rotated signature changed link: %q vs %q", again, link)
	}
	if hits != 1 {
		t.Fatalf("server hits = %d, want 1", hits)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read media dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("media files = %d, want 1", len(entries))
	}
	data, err := os.ReadFile(dir + "/" + entries[0].Name())
	if err != nil {
		t.Fatalf("read media file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("media content = %q, want png-bytes", data)
	}
}

func TestDownloadFileNeedsMediaDir(t *testing.T) {
	client := New(testToken)
	ctx := context.Background()
	if _, err := client.DownloadFile(ctx, "https://example.com/file.png", "b1"); err == nil {
		t.Fatal("expected error without a media directory")
	}
}
