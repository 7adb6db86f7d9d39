package notionexport

import "github.com/goliatone/go-notion-export/internal/runtimeconfig"

var (
	ErrNoExports            = runtimeconfig.ErrNoExports
	ErrCachePathRequired    = runtimeconfig.ErrCachePathRequired
	ErrWorkersInvalid       = runtimeconfig.ErrWorkersInvalid
	ErrLoggingLevelInvalid  = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	CacheConfig    = runtimeconfig.CacheConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	ExportDefaults = runtimeconfig.ExportDefaults
	ExportConfig   = runtimeconfig.ExportConfig
	Duration       = runtimeconfig.Duration
)

// Node types an export entry may name.
const (
	NodePage          = runtimeconfig.NodePage
	NodeDatabaseYAML  = runtimeconfig.NodeDatabaseYAML
	NodeDatabaseFiles = runtimeconfig.NodeDatabaseFiles
)

// Formats served by the builtin render sinks.
const (
	FormatMarkdown = runtimeconfig.FormatMarkdown
	FormatHTML     = runtimeconfig.FormatHTML
)

// DefaultConfig returns the values a minimal config file inherits.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	return runtimeconfig.Load(path)
}

// ParseConfig decodes and validates raw YAML config bytes.
func ParseConfig(data []byte) (*Config, error) {
	return runtimeconfig.Parse(data)
}
