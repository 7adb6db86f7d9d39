package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-notion-export/pkg/interfaces"
)

// ErrUnknownFormat is returned when no sink is registered for a format id.
var ErrUnknownFormat = errors.New("render: unknown output format")

// Registry maps format ids to render sinks. Registration happens during
// setup; lookups are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	sinks map[string]interfaces.RenderSink
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sinks: make(map[string]interfaces.RenderSink)}
}

// DefaultRegistry wires the builtin markdown and HTML sinks. The HTML sink
// shares the markdown sink instance.
func DefaultRegistry(opts ...MarkdownOption) *Registry {
	registry := NewRegistry()
	markdown := NewMarkdown(opts...)
	registry.Register(markdown)
	registry.Register(NewHTML(markdown))
	return registry
}

// Register adds sink under its format id, replacing any earlier sink for
// the same format.
func (r *Registry) Register(sink interfaces.RenderSink) error {
	if sink == nil {
		return errors.New("render: nil sink")
	}
	format := normalizeFormat(sink.Format())
	if format == "" {
		return errors.New("render: sink has no format id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[format] = sink
	return nil
}

// Get returns the sink for format.
func (r *Registry) Get(format string) (interfaces.RenderSink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[normalizeFormat(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return sink, nil
}

// Formats lists the registered format ids in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]string, 0, len(r.sinks))
	for format := range r.sinks {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}
