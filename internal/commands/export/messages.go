package exportcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-notion-export/internal/runtimeconfig"
)

const (
	runExportsMessageType = "export.run"
	exportNodeMessageType = "export.node"
)

// RunExportsCommand executes the export entries of a loaded configuration.
// An empty Only list runs every entry; otherwise only the entries whose ids
// match are exported.
type RunExportsCommand struct {
	// Only restricts the run to config entries with matching ids.
	Only []string `json:"only,omitempty"`
}

// Type implements command.Message.
func (RunExportsCommand) Type() string { return runExportsMessageType }

// Validate rejects blank entry selectors.
func (cmd RunExportsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Only, validation.Each(validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("export.run.only_blank", "entry selector cannot be blank")
			}
			return nil
		}))),
	)
}

// ExportNodeCommand exports a single Notion node without a configuration
// file, the ad-hoc path used by the CLI's positional form.
type ExportNodeCommand struct {
	// ID is the Notion id or share link of the page or database.
	ID string `json:"id"`
	// NodeType selects the export shape: page, database_as_yaml, or
	// database_as_files.
	NodeType string `json:"node_type"`
	// Output is the destination file, or directory for database_as_files.
	Output string `json:"output"`
	// Format names the render sink; empty means markdown.
	Format string `json:"format,omitempty"`
	// Plugins lists conversion plugins to enable.
	Plugins []string `json:"plugins,omitempty"`
	// OmitFrontMatter drops the metadata block from page output.
	OmitFrontMatter bool `json:"omit_front_matter,omitempty"`
}

// Type implements command.Message.
func (ExportNodeCommand) Type() string { return exportNodeMessageType }

// Validate ensures the node identity and destination are present before
// handlers execute.
func (cmd ExportNodeCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ID, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("export.node.id_required", "id is required")
			}
			return nil
		})),
		validation.Field(&cmd.NodeType, validation.Required,
			validation.In(runtimeconfig.NodePage, runtimeconfig.NodeDatabaseYAML, runtimeconfig.NodeDatabaseFiles)),
		validation.Field(&cmd.Output, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("export.node.output_required", "output is required")
			}
			return nil
		})),
		validation.Field(&cmd.Format, validation.In(runtimeconfig.FormatMarkdown, runtimeconfig.FormatHTML)),
	)
}
