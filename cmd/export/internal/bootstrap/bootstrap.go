package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"

	notionexport "github.com/goliatone/go-notion-export"
	exportcmd "github.com/goliatone/go-notion-export/internal/commands/export"
	"github.com/goliatone/go-notion-export/internal/logging"
	"github.com/goliatone/go-notion-export/pkg/interfaces"
)

// TokenEnvVars lists the environment variables consulted for the Notion
// token, in order.
var TokenEnvVars = []string{"NOTION_ACCESS_TOKEN", "NOTION_TOKEN"}

// Options captures configuration for the export CLI bootstrap.
type Options struct {
	ConfigPath     string
	Token          string
	Workers        int
	LogLevel       string
	LogFormat      string
	Entry          *notionexport.ExportConfig
	LoggerProvider interfaces.LoggerProvider
	Source         notionexport.Source
}

// Module wraps the export module and the configured service/logger handles
// the CLI drives.
type Module struct {
	Module  *notionexport.Module
	Service exportcmd.Service
	Config  *notionexport.Config
	Logger  interfaces.Logger
}

// Close releases resources held by the underlying export module.
func (m *Module) Close() error {
	if m == nil || m.Module == nil {
		return nil
	}
	return m.Module.Close()
}

// BuildModule constructs an export module from a config file, or from a
// single ad hoc entry when no path is supplied.
func BuildModule(ctx context.Context, opts Options) (*Module, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}

	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if trimmed := strings.TrimSpace(opts.LogLevel); trimmed != "" {
		cfg.Logging.Level = trimmed
	}
	if trimmed := strings.TrimSpace(opts.LogFormat); trimmed != "" {
		cfg.Logging.Format = trimmed
	}

	moduleOpts := []notionexport.Option{}
	if trimmed := strings.TrimSpace(opts.Token); trimmed != "" {
		moduleOpts = append(moduleOpts, notionexport.WithToken(trimmed))
	}
	if opts.LoggerProvider != nil {
		moduleOpts = append(moduleOpts, notionexport.WithLoggerProvider(opts.LoggerProvider))
	}
	if opts.Source != nil {
		moduleOpts = append(moduleOpts, notionexport.WithSource(opts.Source))
	}

	module, err := notionexport.New(ctx, *cfg, moduleOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise export module: %w", err)
	}

	return &Module{
		Module:  module,
		Service: module.Exporter(),
		Config:  cfg,
		Logger:  logging.CommandsLogger(module.LoggerProvider()),
	}, nil
}

func resolveConfig(opts Options) (*notionexport.Config, error) {
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		return notionexport.LoadConfig(path)
	}
	if opts.Entry == nil {
		return nil, fmt.Errorf("a config file or an export entry is required")
	}
	cfg := notionexport.DefaultConfig()
	cfg.Exports = []notionexport.ExportConfig{*opts.Entry}
	return &cfg, nil
}

// ResolveToken returns the supplied token when set, otherwise the first
// non-empty environment variable in TokenEnvVars.
func ResolveToken(value string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	for _, name := range TokenEnvVars {
		if trimmed := strings.TrimSpace(os.Getenv(name)); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// SplitList parses a comma separated value into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
