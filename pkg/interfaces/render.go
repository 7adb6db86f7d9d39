package interfaces

import (
	"context"

	"github.com/goliatone/go-notion-export/ast"
)

// RenderSink turns a converted document into output bytes for one format.
// Sinks are configured at construction and must be safe for concurrent use;
// parallel exports share sink instances.
type RenderSink interface {
	// Format returns the identifier the sink registers under, e.g. "markdown".
	Format() string
	// Extension returns the output file extension, including the dot.
	Extension() string
	Render(ctx context.Context, doc *ast.Document) ([]byte, error)
}
