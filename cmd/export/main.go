package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	notionexport "github.com/goliatone/go-notion-export"
	"github.com/goliatone/go-notion-export/cmd/export/internal/bootstrap"
	exportcmd "github.com/goliatone/go-notion-export/internal/commands/export"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runExport(os.Args[1:]); err != nil {
		log.Fatalf("notion export: %v", err)
	}
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("notion-export", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to the export config file")
	token := fs.String("token", "", "Notion integration token (falls back to NOTION_ACCESS_TOKEN)")
	only := fs.String("only", "", "Comma separated entry ids to export (defaults to every entry)")
	workers := fs.Int("workers", 0, "Concurrent export targets (zero keeps the configured value)")
	logLevel := fs.String("log-level", "", "Override the configured log level")
	logFormat := fs.String("log-format", "", "Override the configured log format: json, console, or pretty")

	nodeID := fs.String("id", "", "Notion id or share link for a single export without a config file")
	nodeType := fs.String("node-type", notionexport.NodePage, "Node type used with -id: page, database_as_yaml, or database_as_files")
	output := fs.String("output", "", "Destination path used with -id")
	format := fs.String("format", "", "Render format used with -id: markdown or html")
	plugins := fs.String("plugins", "", "Comma separated plugin names used with -id")
	omitFrontMatter := fs.Bool("omit-front-matter", false, "Skip the front matter block when exporting with -id")

	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := bootstrap.Options{
		ConfigPath: *configPath,
		Token:      bootstrap.ResolveToken(*token),
		Workers:    *workers,
		LogLevel:   *logLevel,
		LogFormat:  *logFormat,
	}

	single := strings.TrimSpace(*nodeID) != ""
	if single {
		opts.Entry = &notionexport.ExportConfig{
			ID:              *nodeID,
			NodeType:        *nodeType,
			Output:          *output,
			Format:          *format,
			Plugins:         bootstrap.SplitList(*plugins),
			OmitFrontMatter: *omitFrontMatter,
		}
	}

	ctx := context.Background()

	module, err := moduleBuilder(ctx, opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module == nil || module.Service == nil {
		return fmt.Errorf("export service not configured")
	}
	defer module.Close()

	if single {
		handler := exportcmd.NewExportNodeHandler(module.Service, module.Logger)
		cmd := exportcmd.ExportNodeCommand{
			ID:              *nodeID,
			NodeType:        *nodeType,
			Output:          *output,
			Format:          *format,
			Plugins:         bootstrap.SplitList(*plugins),
			OmitFrontMatter: *omitFrontMatter,
		}
		if err := handler.Execute(ctx, cmd); err != nil {
			return fmt.Errorf("execute export command: %w", err)
		}
		fmt.Fprintln(os.Stdout, "export node command executed successfully")
		return nil
	}

	handler := exportcmd.NewRunExportsHandler(module.Service, module.Config, module.Logger)
	cmd := exportcmd.RunExportsCommand{Only: bootstrap.SplitList(*only)}
	if err := handler.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("execute export command: %w", err)
	}
	fmt.Fprintln(os.Stdout, "export run command executed successfully")

	return nil
}
