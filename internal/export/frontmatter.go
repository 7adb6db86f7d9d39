package export

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-notion-export/notion"
)

// Identity markers the exporter stores alongside user-visible properties so
// a later run can tell whether the source page changed.
const (
	markerNotionID   = "notion_id"
	markerLastEdited = "notion_last_edited_time"
)

// FrontMatter configures how page properties project into metadata.
type FrontMatter struct {
	// IDProperty injects the page id under this name.
	IDProperty string
	// URLProperty injects the page url under this name.
	URLProperty string
	// Renames maps property names to the names they are exported under.
	Renames map[string]string
}

// propertyFields applies renames and id/url injection to a row's property
// values. Shadowed and missing names degrade to warnings, never errors.
func propertyFields(page *notion.Page, values map[string]any, opts FrontMatter) (map[string]any, []notion.Diagnostic) {
	out := make(map[string]any, len(values)+2)
	for name, value := range values {
		out[name] = value
	}

	var diags []notion.Diagnostic
	warn := func(format string, args ...any) {
		diags = append(diags, notion.Diagnostic{
			Severity: notion.SeverityWarning,
			NotionID: page.ID(),
			Message:  fmt.Sprintf(format, args...),
		})
	}

	renamed := make([]string, 0, len(opts.Renames))
	for oldName := range opts.Renames {
		renamed = append(renamed, oldName)
	}
	sort.Strings(renamed)
	for _, oldName := range renamed {
		newName := opts.Renames[oldName]
		value, ok := out[oldName]
		if !ok {
			warn("front matter rename source %q is not a property of this page", oldName)
			continue
		}
		if _, exists := out[newName]; exists {
			warn("front matter rename target %q overwrites an existing property", newName)
		}
		delete(out, oldName)
		out[newName] = value
	}

	if opts.IDProperty != "" {
		if _, exists := out[opts.IDProperty]; exists {
			warn("id property %q overwrites an existing property", opts.IDProperty)
		}
		out[opts.IDProperty] = page.ID()
	}
	if opts.URLProperty != "" {
		if _, exists := out[opts.URLProperty]; exists {
			warn("url property %q overwrites an existing property", opts.URLProperty)
		}
		out[opts.URLProperty] = page.URL()
	}
	return out, diags
}

// buildFrontMatter is propertyFields plus the identity markers incremental
// export compares against.
func buildFrontMatter(page *notion.Page, values map[string]any, opts FrontMatter) (map[string]any, []notion.Diagnostic) {
	fields, diags := propertyFields(page, values, opts)
	fields[markerNotionID] = page.ID()
	fields[markerLastEdited] = page.LastEditedTime().UTC()
	return fields, diags
}

func encodeFrontMatter(fields map[string]any) ([]byte, error) {
	data, err := yaml.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("export: encode front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(data)
	buf.WriteString("---\n\n")
	return buf.Bytes(), nil
}

type storedFrontMatter struct {
	NotionID   string    `yaml:"notion_id"`
	LastEdited time.Time `yaml:"notion_last_edited_time"`
}

// probeDestination reads the identity markers out of an existing export.
// Missing files, foreign files, and unreadable front matter all mean "no
// prior export here".
func probeDestination(path string) (storedFrontMatter, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return storedFrontMatter{}, false
	}
	var stored storedFrontMatter
	if _, err := frontmatter.Parse(bytes.NewReader(data), &stored); err != nil {
		return storedFrontMatter{}, false
	}
	if stored.NotionID == "" {
		return storedFrontMatter{}, false
	}
	return stored, true
}
