package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-notion-export/pkg/interfaces"
)

const (
	rootModule     = "export"
	notionModule   = "export.notion"
	convertModule  = "export.convert"
	renderModule   = "export.render"
	filesModule    = "export.files"
	cacheModule    = "export.cache"
	commandsModule = "export.commands"
)

const (
	fieldNotionID = "notion_id"
	fieldFormat   = "format"
	fieldPath     = "path"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// NotionLogger returns the logger namespace reserved for the API client.
func NotionLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, notionModule)
}

// ConvertLogger returns the logger namespace reserved for the conversion engine.
func ConvertLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, convertModule)
}

// RenderLogger returns the logger namespace reserved for render sinks.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// FilesLogger returns the logger namespace reserved for file export workflows.
func FilesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, filesModule)
}

// CacheLogger returns the logger namespace reserved for the response cache.
func CacheLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, cacheModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithExportContext enriches the provided logger with common export fields such
// as the Notion object id, output format, and destination path. Empty values
// are ignored.
func WithExportContext(logger interfaces.Logger, notionID, format, path string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(notionID); trimmed != "" {
		fields[fieldNotionID] = trimmed
	}
	if trimmed := strings.TrimSpace(format); trimmed != "" {
		fields[fieldFormat] = trimmed
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldPath] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(ctx context.Context) interfaces.Logger {
	return n
}
