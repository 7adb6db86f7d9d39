// Package notionapi implements the Notion API client behind the conversion
// engine's Source boundary: paginated retrieval, bounded rate-limit retries,
// per-run memoization, an optional persistent response cache, and media
// downloads with deterministic filenames.
package notionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"

	"github.com/goliatone/go-notion-export/internal/logging"
	"github.com/goliatone/go-notion-export/notion"
	"github.com/goliatone/go-notion-export/pkg/interfaces"
)

const (
	defaultNotionVersion = "2021-08-16"
	defaultPageSize      = 100
	defaultMaxRetries    = 3
	defaultRetryBase     = 500 * time.Millisecond
	defaultCacheTTL      = 24 * time.Hour
)

// Client fetches Notion payloads. Every identifier is materialized at most
// once per client lifetime; the engine relies on that for cycle detection.
// A Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	routes     *urlkit.RouteManager
	token      string
	version    string
	logger     interfaces.Logger
	cache      interfaces.CacheProvider
	cacheTTL   time.Duration
	mediaRoot  string
	mediaURL   string
	maxRetries int
	retryBase  time.Duration

	mu        sync.Mutex
	pages     map[string]map[string]any
	databases map[string]map[string]any
	blocks    map[string]map[string]any
	children  map[string][]map[string]any
	queries   map[string][]map[string]any
}

var _ notion.Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithBaseURL points the client at a different API root, usually a test
// server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.routes = newRouteManager(strings.TrimSuffix(baseURL, "/"))
		}
	}
}

// WithLogger attaches a client logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLoggerProvider scopes the client logger from a provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Client) {
		c.logger = logging.NotionLogger(provider)
	}
}

// WithCache stores raw API responses in the provider so repeated exports
// skip unchanged requests. A zero ttl keeps the default.
func WithCache(cache interfaces.CacheProvider, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithMediaDir enables media downloads: files land in root and links are
// rewritten under baseURL (or the bare filename when baseURL is empty).
func WithMediaDir(root, baseURL string) Option {
	return func(c *Client) {
		c.mediaRoot = root
		c.mediaURL = baseURL
	}
}

// WithRetries bounds the retry loop for rate limits and server errors.
func WithRetries(max int, base time.Duration) Option {
	return func(c *Client) {
		if max >= 0 {
			c.maxRetries = max
		}
		if base > 0 {
			c.retryBase = base
		}
	}
}

// WithNotionVersion overrides the Notion-Version request header.
func WithNotionVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.version = version
		}
	}
}

// New builds a client using the given integration token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: time.Minute},
		routes:     newRouteManager(DefaultBaseURL),
		token:      token,
		version:    defaultNotionVersion,
		logger:     logging.NoOp(),
		cacheTTL:   defaultCacheTTL,
		maxRetries: defaultMaxRetries,
		retryBase:  defaultRetryBase,
		pages:      make(map[string]map[string]any),
		databases:  make(map[string]map[string]any),
		blocks:     make(map[string]map[string]any),
		children:   make(map[string][]map[string]any),
		queries:    make(map[string][]map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPage fetches a page payload.
func (c *Client) GetPage(ctx context.Context, pageID string) (map[string]any, error) {
	key := notion.DashlessID(pageID)
	c.mu.Lock()
	if page, ok := c.pages[key]; ok {
		c.mu.Unlock()
		return page, nil
	}
	c.mu.Unlock()

	endpoint, err := c.buildURL("page", routeParams{"id": key}, nil)
	if err != nil {
		return nil, err
	}
	payload, err := c.getJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.pages[key] = payload
	c.mu.Unlock()
	return payload, nil
}

// GetDatabase fetches a database payload.
func (c *Client) GetDatabase(ctx context.Context, databaseID string) (map[string]any, error) {
	key := notion.DashlessID(databaseID)
	c.mu.Lock()
	if database, ok := c.databases[key]; ok {
		c.mu.Unlock()
		return database, nil
	}
	c.mu.Unlock()

	endpoint, err := c.buildURL("database", routeParams{"id": key}, nil)
	if err != nil {
		return nil, err
	}
	payload, err := c.getJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.databases[key] = payload
	c.mu.Unlock()
	return payload, nil
}

// GetBlock fetches a single block payload.
func (c *Client) GetBlock(ctx context.Context, blockID string) (map[string]any, error) {
	key := notion.DashlessID(blockID)
	c.mu.Lock()
	if block, ok := c.blocks[key]; ok {
		c.mu.Unlock()
		return block, nil
	}
	c.mu.Unlock()

	endpoint, err := c.buildURL("block", routeParams{"id": key}, nil)
	if err != nil {
		return nil, err
	}
	payload, err := c.getJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.blocks[key] = payload
	c.mu.Unlock()
	return payload, nil
}

// GetChildBlocks fetches the ordered children of a block or page, flattening
// pagination.
func (c *Client) GetChildBlocks(ctx context.Context, blockID string) ([]map[string]any, error) {
	key := notion.DashlessID(blockID)
	c.mu.Lock()
	if children, ok := c.children[key]; ok {
		c.mu.Unlock()
		return children, nil
	}
	c.mu.Unlock()

	var out []map[string]any
	cursor := ""
	for {
		query := routeQuery{"page_size": strconv.Itoa(defaultPageSize)}
		if cursor != "" {
			query["start_cursor"] = cursor
		}
		endpoint, err := c.buildURL("block_children", routeParams{"id": key}, query)
		if err != nil {
			return nil, err
		}
		payload, err := c.getJSON(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		out = append(out, resultEntries(payload)...)
		cursor = nextCursor(payload)
		if cursor == "" {
			break
		}
	}

	c.mu.Lock()
	c.children[key] = out
	c.mu.Unlock()
	return out, nil
}

// GetDatabasePages queries a database, flattening pagination. Filter and
// sorts pass through to the API as given; nil means unfiltered.
func (c *Client) GetDatabasePages(ctx context.Context, databaseID string, filter, sorts any) ([]map[string]any, error) {
	key := notion.DashlessID(databaseID)
	memoKey, err := queryKey(key, filter, sorts)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if pages, ok := c.queries[memoKey]; ok {
		c.mu.Unlock()
		return pages, nil
	}
	c.mu.Unlock()

	endpoint, err := c.buildURL("database_query", routeParams{"id": key}, nil)
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	cursor := ""
	for {
		body := map[string]any{"page_size": defaultPageSize}
		if filter != nil {
			body["filter"] = filter
		}
		if sorts != nil {
			body["sorts"] = sorts
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		payload, err := c.postJSON(ctx, endpoint, body)
		if err != nil {
			return nil, err
		}
		out = append(out, resultEntries(payload)...)
		cursor = nextCursor(payload)
		if cursor == "" {
			break
		}
	}

	c.mu.Lock()
	c.queries[memoKey] = out
	c.mu.Unlock()
	return out, nil
}

// DownloadFile fetches a hosted asset into the media directory and returns
// the link to embed. The filename is derived from the block and the URL path
// so re-exports land on the same file even though hosted URL signatures
// rotate; an already-present file is not fetched again.
func (c *Client) DownloadFile(ctx context.Context, fileURL, blockID string) (string, error) {
	if c.mediaRoot == "" {
		return "", errors.New("notionapi: media downloads need a media directory")
	}
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("notionapi: media url: %w", err)
	}
	name := mediaFilename(blockID, parsed)
	if err := os.MkdirAll(c.mediaRoot, 0o755); err != nil {
		return "", fmt.Errorf("notionapi: create media directory: %w", err)
	}
	target := filepath.Join(c.mediaRoot, name)
	if _, err := os.Stat(target); err == nil {
		return c.mediaLink(name), nil
	}

	data, err := c.doRetry(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	})
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("notionapi: write media file: %w", err)
	}
	c.logger.Debug("downloaded media file", "block_id", blockID, "file", name)
	return c.mediaLink(name), nil
}

func (c *Client) mediaLink(name string) string {
	if c.mediaURL == "" {
		return name
	}
	return strings.TrimSuffix(c.mediaURL, "/") + "/" + name
}

// mediaFilename derives a stable asset name from the block identity and the
// URL path, ignoring the rotating signature in the query string.
func mediaFilename(blockID string, parsed *url.URL) string {
	key := "notion-export:media:" + notion.DashlessID(blockID) + ":" + parsed.Host + parsed.Path
	uid, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256))
	if err != nil || uid == uuid.Nil {
		uid = uuid.NewSHA1(uuid.NameSpaceURL, []byte(key))
	}
	return strings.ReplaceAll(uid.String(), "-", "") + path.Ext(parsed.Path)
}

func queryKey(databaseID string, filter, sorts any) (string, error) {
	encodedFilter, err := json.Marshal(filter)
	if err != nil {
		return "", fmt.Errorf("notionapi: encode query filter: %w", err)
	}
	encodedSorts, err := json.Marshal(sorts)
	if err != nil {
		return "", fmt.Errorf("notionapi: encode query sorts: %w", err)
	}
	return databaseID + "\n" + string(encodedFilter) + "\n" + string(encodedSorts), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string) (map[string]any, error) {
	return c.requestJSON(ctx, http.MethodGet, endpoint, nil)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body any) (map[string]any, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("notionapi: encode request body: %w", err)
	}
	return c.requestJSON(ctx, http.MethodPost, endpoint, encoded)
}

func (c *Client) requestJSON(ctx context.Context, method, endpoint string, body []byte) (map[string]any, error) {
	cacheKey := method + " " + endpoint + "\n" + string(body)
	if payload, ok := c.cacheLookup(ctx, cacheKey); ok {
		return payload, nil
	}

	data, err := c.doRetry(ctx, func() (*http.Request, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Notion-Version", c.version)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("notionapi: decode response: %w", err)
	}
	c.cacheStore(ctx, cacheKey, data)
	return payload, nil
}

// doRetry runs a request, retrying rate limits and server errors with a
// bounded backoff. Retry-After wins over the computed delay when present.
func (c *Client) doRetry(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, c.retryDelay(attempt, lastErr)); err != nil {
				return nil, err
			}
		}
		req, err := build()
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("notionapi: %s %s: %w", req.Method, req.URL.Path, err)
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("notionapi: read response: %w", err)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}
		apiErr := newAPIError(resp, data)
		if !apiErr.Temporary() {
			return nil, apiErr
		}
		lastErr = apiErr
		c.logger.Debug("retrying notion request",
			"status", resp.StatusCode, "attempt", attempt+1, "path", req.URL.Path)
	}
	return nil, lastErr
}

func (c *Client) retryDelay(attempt int, lastErr error) time.Duration {
	var apiErr *APIError
	if errors.As(lastErr, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}
	return c.retryBase * time.Duration(1<<(attempt-1))
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var parsed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Code = parsed.Code
		apiErr.Message = parsed.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.ParseFloat(header, 64); err == nil && seconds > 0 {
			apiErr.RetryAfter = time.Duration(seconds * float64(time.Second))
		}
	}
	return apiErr
}

func (c *Client) cacheLookup(ctx context.Context, key string) (map[string]any, bool) {
	if c.cache == nil {
		return nil, false
	}
	value, err := c.cache.Get(ctx, key)
	if err != nil || value == nil {
		return nil, false
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, false
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	return payload, true
}

func (c *Client) cacheStore(ctx context.Context, key string, data []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Debug("response cache write failed", "error", err)
	}
}

func resultEntries(payload map[string]any) []map[string]any {
	raw, _ := payload["results"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func nextCursor(payload map[string]any) string {
	if more, ok := payload["has_more"].(bool); !ok || !more {
		return ""
	}
	cursor, _ := payload["next_cursor"].(string)
	return cursor
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
