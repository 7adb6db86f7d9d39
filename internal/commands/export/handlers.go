package exportcmd

import (
	"context"
	"strings"

	"github.com/goliatone/go-notion-export/internal/commands"
	"github.com/goliatone/go-notion-export/internal/export"
	"github.com/goliatone/go-notion-export/internal/logging"
	"github.com/goliatone/go-notion-export/internal/runtimeconfig"
	"github.com/goliatone/go-notion-export/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	runOperation  = "export.run"
	nodeOperation = "export.node"
)

// Service is the slice of the exporter the command handlers drive.
type Service interface {
	Export(ctx context.Context, target export.Target) (*export.Result, error)
	ExportAll(ctx context.Context, targets []export.Target) (*export.RunResult, error)
}

var (
	_ command.Commander[RunExportsCommand] = (*RunExportsHandler)(nil)
	_ command.Commander[ExportNodeCommand] = (*ExportNodeHandler)(nil)
)

// RunExportsHandler executes configured exports via the shared command
// handler foundation.
type RunExportsHandler struct {
	inner *commands.Handler[RunExportsCommand]
}

// NewRunExportsHandler creates a handler bound to the supplied exporter and
// configuration.
func NewRunExportsHandler(service Service, cfg *runtimeconfig.Config, logger interfaces.Logger, opts ...commands.HandlerOption[RunExportsCommand]) *RunExportsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RunExportsCommand) error {
		targets, err := TargetsFromConfig(cfg, msg.Only)
		if err != nil {
			return err
		}

		run, err := service.ExportAll(ctx, targets)
		if err != nil {
			return err
		}
		if run != nil {
			logging.WithFields(baseLogger, map[string]any{
				"targets":      len(targets),
				"written":      run.Written,
				"unchanged":    run.Unchanged,
				"skipped_rows": run.SkippedRows,
			}).Info("export.command.run.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[RunExportsCommand]{
		commands.WithLogger[RunExportsCommand](baseLogger),
		commands.WithOperation[RunExportsCommand](runOperation),
		commands.WithMessageFields(func(msg RunExportsCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Only) > 0 {
				fields["only"] = strings.Join(msg.Only, ",")
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RunExportsHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RunExportsCommand].
func (h *RunExportsHandler) Execute(ctx context.Context, msg RunExportsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ExportNodeHandler exports a single node via the shared command handler
// foundation.
type ExportNodeHandler struct {
	inner *commands.Handler[ExportNodeCommand]
}

// NewExportNodeHandler creates a handler bound to the supplied exporter.
func NewExportNodeHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[ExportNodeCommand]) *ExportNodeHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ExportNodeCommand) error {
		result, err := service.Export(ctx, export.Target{
			ID:              msg.ID,
			Kind:            msg.NodeType,
			Output:          msg.Output,
			Format:          msg.Format,
			Plugins:         msg.Plugins,
			OmitFrontMatter: msg.OmitFrontMatter,
		})
		if err != nil {
			return err
		}
		if result != nil {
			written := 0
			unchanged := 0
			for _, file := range result.Files {
				if file.Status == export.StatusWritten {
					written++
				} else {
					unchanged++
				}
			}
			logging.WithFields(baseLogger, map[string]any{
				"written":      written,
				"unchanged":    unchanged,
				"skipped_rows": result.SkippedRows,
				"warnings":     len(result.Diagnostics),
			}).Info("export.command.node.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ExportNodeCommand]{
		commands.WithLogger[ExportNodeCommand](baseLogger),
		commands.WithOperation[ExportNodeCommand](nodeOperation),
		commands.WithMessageFields(func(msg ExportNodeCommand) map[string]any {
			return map[string]any{
				"notion_id": msg.ID,
				"node_type": msg.NodeType,
				"output":    msg.Output,
			}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ExportNodeHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ExportNodeCommand].
func (h *ExportNodeHandler) Execute(ctx context.Context, msg ExportNodeCommand) error {
	return h.inner.Execute(ctx, msg)
}
