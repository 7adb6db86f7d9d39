// Package export turns converted Notion content into files: single pages,
// whole databases as YAML, or one file per database row. Exports are
// incremental; a destination whose stored identity markers still match the
// source page is left untouched.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-notion-export/internal/logging"
	"github.com/goliatone/go-notion-export/internal/render"
	"github.com/goliatone/go-notion-export/notion"
	"github.com/goliatone/go-notion-export/pkg/interfaces"
	"github.com/goliatone/go-notion-export/plugins"
)

// Target kinds.
const (
	KindPage          = "page"
	KindDatabaseYAML  = "database_as_yaml"
	KindDatabaseFiles = "database_as_files"
)

// Target describes one export: which object, how to convert it, and where
// the output lands.
type Target struct {
	// ID is the Notion object id.
	ID string
	// Kind selects the export shape: KindPage, KindDatabaseYAML, or
	// KindDatabaseFiles.
	Kind string
	// Output is the destination file, or directory for KindDatabaseFiles.
	Output string
	// Format is the render sink id, "markdown" unless configured otherwise.
	Format string
	// Plugins are loaded into the conversion registry in order.
	Plugins []string
	// Filter and Sorts pass through to database queries.
	Filter any
	Sorts  any
	// FilenameTemplate names row files via {Property} placeholders.
	FilenameTemplate string
	// ContentProperty, for YAML exports, carries each row's rendered page
	// content under this name.
	ContentProperty string
	// FrontMatter controls property projection.
	FrontMatter FrontMatter
	// OmitFrontMatter drops the metadata block; such exports are always
	// rewritten since the identity markers live in front matter.
	OmitFrontMatter bool
}

// FileStatus reports what happened to one destination file.
type FileStatus string

const (
	// StatusWritten means the file was created or replaced.
	StatusWritten FileStatus = "written"
	// StatusUnchanged means the source had not changed and the file was
	// left alone.
	StatusUnchanged FileStatus = "unchanged"
)

// File is one destination the export touched or deliberately skipped.
type File struct {
	Path   string
	Status FileStatus
}

// Result is what one export run produced.
type Result struct {
	Files []File
	// SkippedRows counts database rows dropped for missing or duplicate
	// filenames.
	SkippedRows int
	// Diagnostics aggregates conversion and projection warnings.
	Diagnostics []notion.Diagnostic
}

// Exporter runs export targets against one source. Each target gets its own
// conversion run; targets may run concurrently on a shared Exporter.
type Exporter struct {
	source   notion.Source
	sinks    *render.Registry
	provider interfaces.LoggerProvider
	logger   interfaces.Logger
	media    bool
	workers  int
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithSinks replaces the render sink registry.
func WithSinks(sinks *render.Registry) Option {
	return func(e *Exporter) {
		if sinks != nil {
			e.sinks = sinks
		}
	}
}

// WithLogger attaches an exporter logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLoggerProvider scopes loggers for the exporter and its conversion
// runs from a provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(e *Exporter) {
		e.provider = provider
		e.logger = logging.FilesLogger(provider)
	}
}

// WithMediaDownloads forwards media handling to conversion runs.
func WithMediaDownloads(enabled bool) Option {
	return func(e *Exporter) {
		e.media = enabled
	}
}

// WithWorkers sets how many targets ExportAll runs at once. Zero and below
// mean one worker per CPU; the default is sequential.
func WithWorkers(workers int) Option {
	return func(e *Exporter) {
		e.workers = workers
	}
}

// New builds an Exporter over source.
func New(source notion.Source, opts ...Option) *Exporter {
	e := &Exporter{
		source:  source,
		sinks:   render.DefaultRegistry(),
		logger:  logging.NoOp(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export dispatches target by kind.
func (e *Exporter) Export(ctx context.Context, target Target) (*Result, error) {
	switch target.Kind {
	case KindPage:
		return e.Page(ctx, target)
	case KindDatabaseYAML:
		return e.DatabaseToYAML(ctx, target)
	case KindDatabaseFiles:
		return e.DatabaseToFiles(ctx, target)
	default:
		return nil, fmt.Errorf("export: unknown target kind %q", target.Kind)
	}
}

// TargetResult pairs one target with its outcome. Result is nil when Err is
// set.
type TargetResult struct {
	Target Target
	Result *Result
	Err    error
}

// RunResult aggregates a multi-target run. Targets keeps input order.
type RunResult struct {
	Targets     []TargetResult
	Written     int
	Unchanged   int
	SkippedRows int
	Errors      []error
}

// ExportAll runs every target, fanning out over the configured worker count.
// A failing target does not stop the others; the joined error covers all
// failures.
func (e *Exporter) ExportAll(ctx context.Context, targets []Target) (*RunResult, error) {
	run := &RunResult{Targets: make([]TargetResult, len(targets))}
	workers := e.effectiveWorkers(len(targets))

	if workers <= 1 || len(targets) <= 1 {
		for i, target := range targets {
			run.Targets[i] = e.runTarget(ctx, target)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					run.Targets[i] = e.runTarget(ctx, targets[i])
				}
			}()
		}
	dispatch:
		for i := range targets {
			select {
			case <-ctx.Done():
				for j := i; j < len(targets); j++ {
					run.Targets[j] = TargetResult{Target: targets[j], Err: ctx.Err()}
				}
				break dispatch
			case jobs <- i:
			}
		}
		close(jobs)
		wg.Wait()
	}

	for _, outcome := range run.Targets {
		if outcome.Err != nil {
			run.Errors = append(run.Errors, fmt.Errorf("target %s: %w", outcome.Target.ID, outcome.Err))
			continue
		}
		run.SkippedRows += outcome.Result.SkippedRows
		for _, file := range outcome.Result.Files {
			switch file.Status {
			case StatusWritten:
				run.Written++
			case StatusUnchanged:
				run.Unchanged++
			}
		}
	}
	if len(run.Errors) > 0 {
		return run, errors.Join(run.Errors...)
	}
	return run, nil
}

func (e *Exporter) runTarget(ctx context.Context, target Target) TargetResult {
	select {
	case <-ctx.Done():
		return TargetResult{Target: target, Err: ctx.Err()}
	default:
	}
	result, err := e.Export(ctx, target)
	return TargetResult{Target: target, Result: result, Err: err}
}

func (e *Exporter) effectiveWorkers(targetCount int) int {
	workers := e.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if targetCount > 0 && workers > targetCount {
		workers = targetCount
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Page exports a single page to target.Output.
func (e *Exporter) Page(ctx context.Context, target Target) (*Result, error) {
	if target.Output == "" {
		return nil, errors.New("export: page target needs an output path")
	}
	conv, sink, err := e.prepare(target)
	if err != nil {
		return nil, err
	}
	page, err := conv.Page(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	file, diags, err := e.exportPage(ctx, conv, sink, page, target, target.Output, nil)
	if err != nil {
		return nil, err
	}
	result.Files = append(result.Files, file)
	result.Diagnostics = append(result.Diagnostics, diags...)
	result.Diagnostics = append(result.Diagnostics, conv.Diagnostics()...)
	return result, nil
}

// DatabaseToYAML exports a database's rows as one YAML list. When a content
// property is configured, each row also carries its rendered page content.
func (e *Exporter) DatabaseToYAML(ctx context.Context, target Target) (*Result, error) {
	if target.Output == "" {
		return nil, errors.New("export: database target needs an output path")
	}
	conv, sink, err := e.prepare(target)
	if err != nil {
		return nil, err
	}
	database, err := conv.Database(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	pages, err := database.PagesFiltered(ctx, target.Filter, target.Sorts)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	rows := make([]map[string]any, 0, len(pages))
	for _, page := range pages {
		values, err := page.PropertiesToValues(ctx)
		if err != nil {
			return nil, err
		}
		fields, diags := propertyFields(page, values, target.FrontMatter)
		result.Diagnostics = append(result.Diagnostics, diags...)

		if target.ContentProperty != "" {
			if _, exists := fields[target.ContentProperty]; exists {
				result.Diagnostics = append(result.Diagnostics, notion.Diagnostic{
					Severity: notion.SeverityWarning,
					NotionID: page.ID(),
					Message:  fmt.Sprintf("content property %q overwrites an existing property", target.ContentProperty),
				})
			}
			doc, err := conv.Document(ctx, page)
			if err != nil {
				return nil, err
			}
			body, err := sink.Render(ctx, doc)
			if err != nil {
				return nil, err
			}
			fields[target.ContentProperty] = string(body)
		}
		rows = append(rows, fields)
	}

	content, err := yaml.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("export: encode database rows: %w", err)
	}
	status := StatusWritten
	if existing, err := os.ReadFile(target.Output); err == nil && bytes.Equal(existing, content) {
		status = StatusUnchanged
	} else if err := writeFile(target.Output, content); err != nil {
		return nil, err
	}
	logging.WithExportContext(e.logger, target.ID, "yaml", target.Output).
		Info("exported database", "rows", len(rows), "status", string(status))

	result.Files = append(result.Files, File{Path: target.Output, Status: status})
	result.Diagnostics = append(result.Diagnostics, conv.Diagnostics()...)
	return result, nil
}

// DatabaseToFiles exports one file per database row under target.Output.
// Rows that produce no filename, or a filename an earlier row already took,
// are skipped with a warning.
func (e *Exporter) DatabaseToFiles(ctx context.Context, target Target) (*Result, error) {
	if target.Output == "" {
		return nil, errors.New("export: database target needs an output directory")
	}
	conv, sink, err := e.prepare(target)
	if err != nil {
		return nil, err
	}
	database, err := conv.Database(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	pages, err := database.PagesFiltered(ctx, target.Filter, target.Sorts)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	seen := make(map[string]string, len(pages))
	for _, page := range pages {
		values, err := page.PropertiesToValues(ctx)
		if err != nil {
			return nil, err
		}
		name, warn, err := rowFilename(target.FilenameTemplate, values, page, sink.Extension())
		if err != nil {
			return nil, err
		}
		if warn != "" {
			result.Diagnostics = append(result.Diagnostics, notion.Diagnostic{
				Severity: notion.SeverityWarning,
				NotionID: page.ID(),
				Message:  warn,
			})
		}
		if name == "" {
			result.SkippedRows++
			result.Diagnostics = append(result.Diagnostics, notion.Diagnostic{
				Severity: notion.SeverityWarning,
				NotionID: page.ID(),
				Message:  "row has no usable filename, skipping",
			})
			continue
		}
		if takenBy, duplicate := seen[name]; duplicate {
			result.SkippedRows++
			result.Diagnostics = append(result.Diagnostics, notion.Diagnostic{
				Severity: notion.SeverityWarning,
				NotionID: page.ID(),
				Message:  fmt.Sprintf("filename %q already produced by row %s, skipping", name, takenBy),
			})
			continue
		}
		seen[name] = page.ID()

		file, diags, err := e.exportPage(ctx, conv, sink, page, target, filepath.Join(target.Output, name), values)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, file)
		result.Diagnostics = append(result.Diagnostics, diags...)
	}
	result.Diagnostics = append(result.Diagnostics, conv.Diagnostics()...)
	return result, nil
}

// prepare builds the conversion run and resolves the sink for a target.
func (e *Exporter) prepare(target Target) (*notion.Converter, interfaces.RenderSink, error) {
	format := target.Format
	if format == "" {
		format = render.FormatMarkdown
	}
	sink, err := e.sinks.Get(format)
	if err != nil {
		return nil, nil, err
	}

	registry := notion.NewRegistry()
	if err := plugins.Load(registry, target.Plugins); err != nil {
		return nil, nil, err
	}
	opts := []notion.Option{
		notion.WithRegistry(registry),
		notion.WithMediaDownloads(e.media),
	}
	if e.provider != nil {
		opts = append(opts, notion.WithLoggerProvider(e.provider))
	} else {
		opts = append(opts, notion.WithLogger(e.logger))
	}
	return notion.NewConverter(e.source, opts...), sink, nil
}

// exportPage renders one page to path. A destination whose markers match
// the page's identity is reported unchanged without fetching content.
// values may be nil; property values are resolved when front matter needs
// them.
func (e *Exporter) exportPage(ctx context.Context, conv *notion.Converter, sink interfaces.RenderSink, page *notion.Page, target Target, path string, values map[string]any) (File, []notion.Diagnostic, error) {
	logger := logging.WithExportContext(e.logger, page.ID(), sink.Format(), path)

	if !target.OmitFrontMatter {
		stored, ok := probeDestination(path)
		if ok && stored.NotionID == page.ID() && stored.LastEdited.Equal(page.LastEditedTime()) {
			logger.Info("source unchanged, skipping")
			return File{Path: path, Status: StatusUnchanged}, nil, nil
		}
	}

	doc, err := conv.Document(ctx, page)
	if err != nil {
		return File{}, nil, err
	}
	body, err := sink.Render(ctx, doc)
	if err != nil {
		return File{}, nil, err
	}

	content := body
	var diags []notion.Diagnostic
	if !target.OmitFrontMatter {
		if values == nil {
			if values, err = page.PropertiesToValues(ctx); err != nil {
				return File{}, nil, err
			}
		}
		fields, fieldDiags := buildFrontMatter(page, values, target.FrontMatter)
		diags = fieldDiags
		header, err := encodeFrontMatter(fields)
		if err != nil {
			return File{}, nil, err
		}
		content = append(header, body...)
	}

	if err := writeFile(path, content); err != nil {
		return File{}, nil, err
	}
	logger.Info("exported page")
	return File{Path: path, Status: StatusWritten}, diags, nil
}

func writeFile(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}
