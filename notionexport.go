package notionexport

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-notion-export/internal/cache"
	exportcmd "github.com/goliatone/go-notion-export/internal/commands/export"
	"github.com/goliatone/go-notion-export/internal/export"
	"github.com/goliatone/go-notion-export/internal/logging/gologger"
	"github.com/goliatone/go-notion-export/internal/notionapi"
	"github.com/goliatone/go-notion-export/internal/runtimeconfig"
	"github.com/goliatone/go-notion-export/notion"
	"github.com/goliatone/go-notion-export/pkg/interfaces"
)

// ErrTokenRequired is returned by New when neither a token nor a custom
// source is supplied.
var ErrTokenRequired = errors.New("export: a notion token is required")

// Exporter exports the export orchestration contract for consumers of the
// notionexport package.
type Exporter = export.Exporter

// ExportTarget exports the per-target export request.
type ExportTarget = export.Target

// ExportResult exports the per-target outcome.
type ExportResult = export.Result

// RunResult exports the whole-run outcome.
type RunResult = export.RunResult

// CacheStore exports the response cache contract.
type CacheStore = cache.Store

// Converter exports the conversion engine contract.
type Converter = notion.Converter

// Source exports the Notion retrieval contract.
type Source = notion.Source

// Logger and LoggerProvider export the logging contracts hosts implement to
// route export logs into their own stack.
type (
	Logger         = interfaces.Logger
	LoggerProvider = interfaces.LoggerProvider
)

// Module is the top level export runtime façade: it owns the API client (or
// a caller-supplied source), the optional response cache, and the exporter,
// all wired from one validated configuration.
type Module struct {
	cfg      *runtimeconfig.Config
	token    string
	provider interfaces.LoggerProvider
	source   notion.Source
	cache    *cache.Store
	exporter *export.Exporter
	handlers *exportcmd.HandlerSet
}

// Option overrides parts of the module wiring.
type Option func(*Module)

// WithToken supplies the Notion integration token used by the API client.
func WithToken(token string) Option {
	return func(m *Module) {
		m.token = strings.TrimSpace(token)
	}
}

// WithSource replaces the API client with a caller-supplied source. The
// cache and token are ignored when set.
func WithSource(source notion.Source) Option {
	return func(m *Module) {
		if source != nil {
			m.source = source
		}
	}
}

// WithLoggerProvider replaces the go-logger provider built from the config's
// logging section.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		if provider != nil {
			m.provider = provider
		}
	}
}

// New constructs an export module from the provided configuration. The
// context bounds cache setup; pass the run context.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{cfg: &cfg}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	mediaRoot := strings.TrimSpace(cfg.MediaRoot)

	if m.source == nil {
		if m.token == "" {
			return nil, ErrTokenRequired
		}
		clientOpts := []notionapi.Option{
			notionapi.WithLoggerProvider(m.provider),
		}
		if mediaRoot != "" {
			clientOpts = append(clientOpts, notionapi.WithMediaDir(mediaRoot, cfg.MediaURL))
		}
		if cfg.Cache.Enabled {
			store, err := cache.Open(ctx, cfg.Cache.Path, cache.WithLoggerProvider(m.provider))
			if err != nil {
				return nil, err
			}
			m.cache = store
			clientOpts = append(clientOpts, notionapi.WithCache(store, cfg.Cache.TTL.Std()))
		}
		m.source = notionapi.New(m.token, clientOpts...)
	}

	m.exporter = export.New(m.source,
		export.WithLoggerProvider(m.provider),
		export.WithMediaDownloads(mediaRoot != ""),
		export.WithWorkers(cfg.Workers),
	)

	handlers, err := exportcmd.RegisterExportCommands(nil, m.exporter, m.cfg, m.provider)
	if err != nil {
		m.Close()
		return nil, err
	}
	m.handlers = handlers

	return m, nil
}

// Run executes every configured export entry, or just the entries whose ids
// are listed in only.
func (m *Module) Run(ctx context.Context, only ...string) error {
	return m.handlers.Run.Execute(ctx, exportcmd.RunExportsCommand{Only: only})
}

// Export runs a single export entry that is not part of the loaded
// configuration.
func (m *Module) Export(ctx context.Context, entry ExportConfig) (*ExportResult, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	synthetic := &runtimeconfig.Config{Exports: []runtimeconfig.ExportConfig{entry}}
	targets, err := exportcmd.TargetsFromConfig(synthetic, nil)
	if err != nil {
		return nil, err
	}
	return m.exporter.Export(ctx, targets[0])
}

// Exporter returns the configured exporter.
func (m *Module) Exporter() *Exporter {
	return m.exporter
}

// Source returns the Notion source backing the module, usually the API
// client.
func (m *Module) Source() Source {
	return m.source
}

// LoggerProvider returns the provider module components log through.
func (m *Module) LoggerProvider() LoggerProvider {
	return m.provider
}

// Cache returns the response cache, or nil when caching is disabled.
func (m *Module) Cache() *CacheStore {
	if m == nil {
		return nil
	}
	return m.cache
}

// Converter builds a conversion engine over the module's source for hosts
// that drive the AST directly.
func (m *Module) Converter(opts ...notion.Option) *Converter {
	base := []notion.Option{
		notion.WithLoggerProvider(m.provider),
		notion.WithMediaDownloads(strings.TrimSpace(m.cfg.MediaRoot) != ""),
	}
	return notion.NewConverter(m.source, append(base, opts...)...)
}

// Close releases resources owned by the module, currently the response
// cache handle.
func (m *Module) Close() error {
	if m == nil || m.cache == nil {
		return nil
	}
	return m.cache.Close()
}
