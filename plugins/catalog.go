// Package plugins bundles the optional conversion modules that ship with the
// exporter. Each module overrides a small set of block or rich text factories
// and defers to the builtin behavior for everything outside its trigger, so
// modules stack in load order.
package plugins

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-notion-export/notion"
)

// ErrUnknownPlugin reports a plugin name with no registered module.
var ErrUnknownPlugin = errors.New("plugins: unknown plugin")

var catalog = map[string]notion.Module{
	"deepheaders":       DeepHeaders,
	"expandbluetoggles": ExpandBlueToggles,
	"expandlinktopages": ExpandLinkToPages,
	"footnotes":         Footnotes,
	"internallinks":     InternalLinks,
	"linkedheaders":     LinkedHeaders,
	"rawcodeblocks":     RawCodeBlocks,
	"removecallouts":    RemoveCallouts,
}

// Get returns the named module. Names match the Names list; anything else is
// a configuration error the caller should surface before converting.
func Get(name string) (notion.Module, error) {
	module, ok := catalog[name]
	if !ok {
		return notion.Module{}, fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
	}
	return module, nil
}

// Names lists the available plugin names in stable order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load resolves each name and registers the module on the registry, in the
// order given.
func Load(registry *notion.Registry, names []string) error {
	for _, name := range names {
		module, err := Get(name)
		if err != nil {
			return err
		}
		if err := registry.Use(module); err != nil {
			return err
		}
	}
	return nil
}
