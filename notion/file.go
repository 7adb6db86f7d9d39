package notion

import (
	"context"
	"time"
)

// File is an external link or a Notion-hosted asset. Hosted asset URLs
// expire; exports that need stable references download them through the
// Source instead of embedding the signed URL.
type File struct {
	fileType string
	url      string
	expiry   time.Time
	name     string
}

// NewFile wraps a file payload of either the "external" or "file" shape.
func NewFile(ctx context.Context, c *Converter, data map[string]any) (*File, error) {
	file := &File{
		fileType: getString(data, "type"),
		name:     getString(data, "name"),
	}
	switch file.fileType {
	case "external":
		external := getMap(data, "external")
		file.url = getString(external, "url")
	case "file":
		hosted := getMap(data, "file")
		file.url = getString(hosted, "url")
		file.expiry = getTime(hosted, "expiry_time")
	default:
		// Some payloads inline the url without a type tag.
		file.url = getString(data, "url")
	}
	return file, nil
}

// URL returns the asset location. For hosted files this link expires.
func (f *File) URL() string { return f.url }

// Name returns the original name when the payload carries one.
func (f *File) Name() string { return f.name }

// IsExternal reports whether the asset lives outside Notion.
func (f *File) IsExternal() bool { return f.fileType == "external" }

// IsHosted reports whether Notion hosts the asset behind an expiring URL.
func (f *File) IsHosted() bool { return f.fileType == "file" }

// ExpiryTime returns when a hosted URL stops working.
func (f *File) ExpiryTime() time.Time { return f.expiry }

// Emoji is an emoji icon.
type Emoji struct {
	character string
}

// NewEmoji wraps an emoji payload.
func NewEmoji(ctx context.Context, c *Converter, data map[string]any) (*Emoji, error) {
	return &Emoji{character: getString(data, "emoji")}, nil
}

// Character returns the emoji glyph.
func (e *Emoji) Character() string { return e.character }
