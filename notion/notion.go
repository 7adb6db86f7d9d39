// Package notion models Notion pages, databases, blocks, and rich text as
// typed wrappers over raw API payloads, and converts them into the ast
// document tree. Wrapping is driven by a Registry of factories so plugins
// can replace how any object type is interpreted.
package notion

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// Source supplies raw Notion payloads to a conversion run. Implementations
// are expected to memoize per identifier so repeated lookups during one run
// are cheap and identity-stable, and to retry transient API failures before
// surfacing an error.
type Source interface {
	GetPage(ctx context.Context, pageID string) (map[string]any, error)
	GetDatabase(ctx context.Context, databaseID string) (map[string]any, error)
	GetBlock(ctx context.Context, blockID string) (map[string]any, error)
	GetChildBlocks(ctx context.Context, blockID string) ([]map[string]any, error)
	GetDatabasePages(ctx context.Context, databaseID string, filter, sorts any) ([]map[string]any, error)
	DownloadFile(ctx context.Context, fileURL, blockID string) (string, error)
}

// Parent identifies the container of a page or database. Exactly one of the
// recognized parent kinds applies to any object.
type Parent struct {
	Type string
	ID   string
}

const (
	ParentPage      = "page_id"
	ParentDatabase  = "database_id"
	ParentBlock     = "block_id"
	ParentWorkspace = "workspace"
)

func parseParent(data map[string]any) Parent {
	parent := getMap(data, "parent")
	if parent == nil {
		return Parent{}
	}
	kind := getString(parent, "type")
	switch kind {
	case ParentPage, ParentDatabase, ParentBlock:
		return Parent{Type: kind, ID: getString(parent, kind)}
	case ParentWorkspace:
		return Parent{Type: ParentWorkspace}
	default:
		return Parent{Type: kind}
	}
}

// NormalizeID canonicalizes a Notion identifier. It accepts dashed UUIDs,
// bare 32 character hex ids, and share links copied from the Notion UI.
func NormalizeID(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", fmt.Errorf("notion: empty identifier")
	}

	if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
		extracted, err := idFromShareLink(candidate)
		if err != nil {
			return "", err
		}
		candidate = extracted
	}

	hex := strings.ReplaceAll(candidate, "-", "")
	if len(hex) != 32 {
		return "", fmt.Errorf("notion: %q is not a Notion identifier", raw)
	}

	parsed, err := uuid.Parse(hex)
	if err != nil {
		return "", fmt.Errorf("notion: %q is not a Notion identifier: %w", raw, err)
	}
	return parsed.String(), nil
}

func idFromShareLink(link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("notion: invalid share link %q: %w", link, err)
	}

	// Database views carry the object id in the path and the view in the
	// query; both page and database links end the path with the id.
	path := strings.Trim(parsed.Path, "/")
	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	if idx := strings.LastIndex(last, "-"); idx >= 0 {
		last = last[idx+1:]
	}
	if last == "" {
		return "", fmt.Errorf("notion: share link %q carries no identifier", link)
	}
	return last, nil
}

// DashlessID strips separators from a canonical identifier. Notion URLs and
// same-page href fragments use this form.
func DashlessID(id string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(id), "-", ""))
}

// ObjectURL reconstructs the public notion.so URL for an object id.
func ObjectURL(id string) string {
	return "https://www.notion.so/" + DashlessID(id)
}

// slugify normalizes a title into an anchor or file name slug, keeping the
// raw value when normalization rejects it.
func slugify(value string) string {
	normalized, err := slug.Normalize(value)
	if err != nil || normalized == "" {
		return strings.TrimSpace(value)
	}
	return normalized
}
