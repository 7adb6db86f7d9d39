// Package runtimeconfig loads and validates the exporter's YAML
// configuration: which Notion nodes to export, where their output lands,
// and how the surrounding toolchain (cache, media, logging, workers)
// behaves.
package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Node types an export entry may name.
const (
	NodePage          = "page"
	NodeDatabaseYAML  = "database_as_yaml"
	NodeDatabaseFiles = "database_as_files"
)

// Formats the builtin sink registry serves.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ErrNoExports indicates a config without any export entries.
var ErrNoExports = errors.New("export config: at least one export entry is required")

// ErrCachePathRequired ensures an enabled cache names its database file.
var ErrCachePathRequired = errors.New("export config: cache path is required when the cache is enabled")

var ErrWorkersInvalid = errors.New("export config: workers must be zero or positive")
var ErrLoggingLevelInvalid = errors.New("export config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("export config: logging format is invalid")

// Duration accepts YAML scalars in time.ParseDuration notation, "24h" and
// the like.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the top of the exporter's config file. The Notion token is
// deliberately absent; it only travels through the environment.
type Config struct {
	// MediaRoot is the directory downloaded assets land in.
	MediaRoot string `yaml:"media_root"`
	// MediaURL prefixes asset links in rendered output.
	MediaURL string `yaml:"media_url"`
	// Workers caps how many export entries run at once.
	Workers int `yaml:"workers"`

	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`

	// ExportDefaults fills fields individual entries leave unset.
	ExportDefaults ExportDefaults `yaml:"export_defaults"`
	Exports        []ExportConfig `yaml:"exports"`
}

// CacheConfig controls the local response cache.
type CacheConfig struct {
	Enabled bool     `yaml:"enabled"`
	Path    string   `yaml:"path"`
	TTL     Duration `yaml:"ttl"`
}

// LoggingConfig mirrors the go-logger adapter options.
type LoggingConfig struct {
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// ExportDefaults carries the per-entry settings shared across a config.
type ExportDefaults struct {
	Format      string            `yaml:"format"`
	Plugins     []string          `yaml:"plugins"`
	IDProperty  string            `yaml:"id_property"`
	URLProperty string            `yaml:"url_property"`
	PropertyMap map[string]string `yaml:"property_map"`
}

// ExportConfig describes one export entry.
type ExportConfig struct {
	// ID is a Notion id or share link.
	ID string `yaml:"id"`
	// NodeType selects the export shape: page, database_as_yaml, or
	// database_as_files.
	NodeType string `yaml:"node_type"`
	// Output is the destination file, or directory for database_as_files.
	Output string `yaml:"output"`
	// Format names the render sink.
	Format  string   `yaml:"format"`
	Plugins []string `yaml:"plugins"`
	// NotionFilter and NotionSorts pass through to database queries.
	NotionFilter map[string]any `yaml:"notion_filter"`
	NotionSorts  []any          `yaml:"notion_sorts"`
	// FilenameTemplate names row files via {Property} placeholders.
	FilenameTemplate string `yaml:"filename_template"`
	// ContentProperty carries rendered page content in YAML exports.
	ContentProperty string `yaml:"content_property"`
	// IDProperty and URLProperty inject page identity into front matter.
	IDProperty  string `yaml:"id_property"`
	URLProperty string `yaml:"url_property"`
	// PropertyMap renames properties on the way out.
	PropertyMap map[string]string `yaml:"property_map"`
	// OmitFrontMatter drops the metadata block entirely.
	OmitFrontMatter bool `yaml:"omit_front_matter"`
}

// DefaultConfig returns the values a minimal config file inherits.
func DefaultConfig() Config {
	return Config{
		MediaRoot: "media",
		MediaURL:  "./media/",
		Workers:   1,
		Cache: CacheConfig{
			Enabled: false,
			Path:    ".notion-export-cache.db",
			TTL:     Duration(24 * time.Hour),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		ExportDefaults: ExportDefaults{
			Format: FormatMarkdown,
		},
	}
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("export config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes raw YAML over the defaults, merges export_defaults into
// each entry, and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("export config: parse yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	for i := range cfg.Exports {
		entry := &cfg.Exports[i]
		if entry.Format == "" {
			entry.Format = cfg.ExportDefaults.Format
		}
		if len(entry.Plugins) == 0 {
			entry.Plugins = cfg.ExportDefaults.Plugins
		}
		if entry.IDProperty == "" {
			entry.IDProperty = cfg.ExportDefaults.IDProperty
		}
		if entry.URLProperty == "" {
			entry.URLProperty = cfg.ExportDefaults.URLProperty
		}
		if len(entry.PropertyMap) == 0 {
			entry.PropertyMap = cfg.ExportDefaults.PropertyMap
		}
	}
}

// Validate performs consistency checks over the whole config.
func (cfg Config) Validate() error {
	if len(cfg.Exports) == 0 {
		return ErrNoExports
	}
	if cfg.Workers < 0 {
		return ErrWorkersInvalid
	}
	if cfg.Cache.Enabled && strings.TrimSpace(cfg.Cache.Path) == "" {
		return ErrCachePathRequired
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	for i, entry := range cfg.Exports {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("export config: exports[%d]: %w", i, err)
		}
	}
	return nil
}

// Validate checks one export entry.
func (e ExportConfig) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.NodeType, validation.Required,
			validation.In(NodePage, NodeDatabaseYAML, NodeDatabaseFiles)),
		validation.Field(&e.Output, validation.Required),
		validation.Field(&e.Format, validation.In(FormatMarkdown, FormatHTML)),
	)
	if err != nil {
		return err
	}
	if err := ValidateFilter(e.NotionFilter); err != nil {
		return err
	}
	return ValidateSorts(e.NotionSorts)
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
