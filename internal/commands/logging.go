package commands

import (
	"strings"

	"github.com/goliatone/go-notion-export/internal/logging"
	"github.com/goliatone/go-notion-export/pkg/interfaces"
)

const commandModuleRoot = "export.commands"

// CommandLogger returns a module-scoped logger for command handlers,
// enriching it with consistent structured fields so command executions can be
// filtered alongside the rest of the export pipeline.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
