package model

import (
	"context"

	"github.com/specialistvlad/dashgridgo/internal/table"
)

// Renderer is the rendering factory of a visual component kind. Render must
// be pure given its inputs; data may be nil for figures without a dataset.
type Renderer interface {
	Render(ctx context.Context, data *table.Table, config map[string]any) (any, error)
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(ctx context.Context, data *table.Table, config map[string]any) (any, error)

// Render calls f.
func (f RenderFunc) Render(ctx context.Context, data *table.Table, config map[string]any) (any, error) {
	return f(ctx, data, config)
}

// Interactable is implemented by renderers whose targets can be narrowed by a
// selection made on another component.
type Interactable interface {
	HandleInteraction(ctx context.Context, data *table.Table, sel Selection) (*table.Table, error)
}

// Selection is the payload routed to a target's interaction handler.
type Selection struct {
	SourceID   string
	SourceType string
	// Property is the source property that carried the selection, e.g.
	// "clickData" for a chart or "active_cell" for a table.
	Property string
	Payload  any
	// SourceConfig is a private copy of the source's declared configuration.
	SourceConfig map[string]any
}
