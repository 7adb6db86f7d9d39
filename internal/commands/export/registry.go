package exportcmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-notion-export/internal/commands"
	"github.com/goliatone/go-notion-export/internal/runtimeconfig"
	"github.com/goliatone/go-notion-export/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// CommandRegistry is the minimal registration contract expected when wiring
// command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the export command handlers produced by
// RegisterExportCommands.
type HandlerSet struct {
	Run  *RunExportsHandler
	Node *ExportNodeHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	runHandlerOpts  []commands.HandlerOption[RunExportsCommand]
	nodeHandlerOpts []commands.HandlerOption[ExportNodeCommand]
}

// WithRunHandlerOptions forwards options to the RunExportsHandler constructor.
func WithRunHandlerOptions(opts ...commands.HandlerOption[RunExportsCommand]) Option {
	return func(cfg *options) {
		cfg.runHandlerOpts = append(cfg.runHandlerOpts, opts...)
	}
}

// WithNodeHandlerOptions forwards options to the ExportNodeHandler constructor.
func WithNodeHandlerOptions(opts ...commands.HandlerOption[ExportNodeCommand]) Option {
	return func(cfg *options) {
		cfg.nodeHandlerOpts = append(cfg.nodeHandlerOpts, opts...)
	}
}

// RegisterExportCommands builds the export command handlers and registers
// them with the provided registry. The constructed handlers are returned so
// callers can wire additional integrations (dispatcher, cron) as needed.
func RegisterExportCommands(reg CommandRegistry, service Service, cfg *runtimeconfig.Config, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("export command registration: service is nil")
	}

	wiring := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&wiring)
		}
	}

	logger := commands.CommandLogger(provider, "export")

	runHandler := NewRunExportsHandler(service, cfg, logger, wiring.runHandlerOpts...)
	nodeHandler := NewExportNodeHandler(service, logger, wiring.nodeHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(runHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(nodeHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Run:  runHandler,
		Node: nodeHandler,
	}, nil
}

// RegisterExportCron wires the provided run handler into a cron registrar
// using the supplied command configuration and message payload, for recurring
// export runs. The handler is executed with a background context.
func RegisterExportCron(reg CronRegistrar, handler *RunExportsHandler, cfg command.HandlerConfig, msg RunExportsCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
