package exportcmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-notion-export/internal/export"
	"github.com/goliatone/go-notion-export/internal/runtimeconfig"
	"github.com/goliatone/go-notion-export/notion"
)

// ErrUnknownEntry reports an Only selector that matches no config entry.
var ErrUnknownEntry = errors.New("export command: no config entry with that id")

// TargetsFromConfig maps validated config entries onto exporter targets,
// optionally restricted to the ids in only. Selectors compare by normalized
// Notion id, so a dashed id still matches a dashless entry.
func TargetsFromConfig(cfg *runtimeconfig.Config, only []string) ([]export.Target, error) {
	if cfg == nil {
		return nil, errors.New("export command: config is nil")
	}

	if len(only) == 0 {
		targets := make([]export.Target, 0, len(cfg.Exports))
		for _, entry := range cfg.Exports {
			targets = append(targets, targetFromEntry(entry))
		}
		return targets, nil
	}

	wanted := make(map[string]bool, len(only))
	for _, id := range only {
		wanted[notion.DashlessID(id)] = false
	}

	targets := make([]export.Target, 0, len(only))
	for _, entry := range cfg.Exports {
		key := notion.DashlessID(entry.ID)
		if _, ok := wanted[key]; !ok {
			continue
		}
		wanted[key] = true
		targets = append(targets, targetFromEntry(entry))
	}

	var missing []string
	for _, id := range only {
		if !wanted[notion.DashlessID(id)] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntry, strings.Join(missing, ", "))
	}
	return targets, nil
}

func targetFromEntry(entry runtimeconfig.ExportConfig) export.Target {
	target := export.Target{
		ID:               entry.ID,
		Kind:             entry.NodeType,
		Output:           entry.Output,
		Format:           entry.Format,
		Plugins:          entry.Plugins,
		FilenameTemplate: entry.FilenameTemplate,
		ContentProperty:  entry.ContentProperty,
		OmitFrontMatter:  entry.OmitFrontMatter,
		FrontMatter: export.FrontMatter{
			IDProperty:  entry.IDProperty,
			URLProperty: entry.URLProperty,
			Renames:     entry.PropertyMap,
		},
	}
	// Empty filter and sorts must stay untyped nil so database queries keep
	// their unfiltered fast path.
	if len(entry.NotionFilter) > 0 {
		target.Filter = entry.NotionFilter
	}
	if len(entry.NotionSorts) > 0 {
		target.Sorts = entry.NotionSorts
	}
	return target
}
