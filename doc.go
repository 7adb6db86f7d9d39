// Package notionexport exports Notion pages and databases into markdown,
// HTML, or YAML files.
//
// The conversion core lives in the notion package: a Source feeds raw API
// payloads to a Converter, plugins override how node types map onto the
// intermediate AST, and render sinks turn the AST into bytes. This package
// wires those pieces from a YAML configuration: an API client with optional
// response caching, an exporter that writes front-mattered files and skips
// unchanged pages, and the command handlers the CLI drives.
//
// Minimal use:
//
//	cfg, err := notionexport.LoadConfig("export.yml")
//	if err != nil {
//		return err
//	}
//	mod, err := notionexport.New(ctx, *cfg, notionexport.WithToken(token))
//	if err != nil {
//		return err
//	}
//	defer mod.Close()
//	return mod.Run(ctx)
package notionexport
