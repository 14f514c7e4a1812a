// Package datatable renders the "table" figure kind.
package datatable

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/params"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/internal/table"
	"github.com/specialistvlad/dashgridgo/modules/interact"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the table renderer.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRenderer("table", &Renderer{})
}

// Config is the rendering configuration of a table.
type Config struct {
	Title    string   `json:"title"`
	Columns  []string `json:"columns"`
	PageSize int      `json:"page_size"`
}

// Grid is the artifact of a table.
type Grid struct {
	Kind      string   `json:"kind"`
	Title     string   `json:"title,omitempty"`
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	TotalRows int      `json:"total_rows"`
	PageSize  int      `json:"page_size,omitempty"`
}

// Renderer renders tables and narrows their data by selections.
type Renderer struct {
	interact.Handler
}

// Render builds the grid. The first page only is included when page_size
// is set; TotalRows always counts every row.
func (d *Renderer) Render(_ context.Context, data *table.Table, cfg map[string]any) (any, error) {
	var c Config
	if err := params.Decode(cfg, &c, true); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: table needs a dataset", model.ErrConfiguration)
	}
	if c.PageSize < 0 {
		return nil, fmt.Errorf("%w: page_size must not be negative", model.ErrConfiguration)
	}

	view := data
	if len(c.Columns) > 0 {
		var err error
		if view, err = data.Select(c.Columns...); err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrConfiguration, err)
		}
	}

	grid := &Grid{
		Kind:      "table",
		Title:     c.Title,
		Columns:   view.Columns(),
		TotalRows: view.Len(),
		PageSize:  c.PageSize,
	}
	if c.PageSize > 0 {
		view = view.Head(c.PageSize)
	}
	grid.Rows = make([][]any, view.Len())
	for i := range view.Len() {
		grid.Rows[i] = view.Row(i)
	}
	return grid, nil
}
