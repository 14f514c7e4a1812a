// Package graph renders the "graph" figure kind: bar, line and scatter
// charts built from two columns of the resolved dataset, optionally split
// into one trace per value of a color column.
package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/params"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/internal/table"
	"github.com/specialistvlad/dashgridgo/modules/interact"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the graph renderer.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRenderer("graph", &Renderer{})
}

// Config is the rendering configuration of a graph.
type Config struct {
	X          string   `json:"x"`
	Y          string   `json:"y"`
	Color      string   `json:"color"`
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	TopN       *int     `json:"top_n"`
	CustomData []string `json:"custom_data"`
}

var knownKeys = []string{"x", "y", "color", "type", "title", "top_n", "custom_data"}

// Figure is the artifact of a graph.
type Figure struct {
	Kind   string         `json:"kind"`
	Type   string         `json:"type"`
	Title  string         `json:"title,omitempty"`
	Traces []Trace        `json:"traces"`
	Layout map[string]any `json:"layout,omitempty"`
}

// Trace is one series of a figure.
type Trace struct {
	Name       string  `json:"name,omitempty"`
	X          []any   `json:"x"`
	Y          []any   `json:"y"`
	CustomData [][]any `json:"customdata,omitempty"`
}

// Renderer renders graphs and narrows their data by selections.
type Renderer struct {
	interact.Handler
}

// Render builds the figure. Keys other than the known ones are passed
// through as layout.
func (g *Renderer) Render(ctx context.Context, data *table.Table, cfg map[string]any) (any, error) {
	var c Config
	if err := params.Decode(cfg, &c, false); err != nil {
		return nil, err
	}
	if c.Type == "" {
		c.Type = "bar"
	}
	switch c.Type {
	case "bar", "line", "scatter":
	default:
		return nil, fmt.Errorf("%w: unknown graph type %q", model.ErrConfiguration, c.Type)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: graph needs a dataset", model.ErrConfiguration)
	}
	for _, col := range append([]string{c.X, c.Y, c.Color}, c.CustomData...) {
		if col != "" && !data.Has(col) {
			return nil, fmt.Errorf("%w: %w %q", model.ErrConfiguration, table.ErrUnknownColumn, col)
		}
	}
	if c.X == "" || c.Y == "" {
		return nil, fmt.Errorf("%w: graph needs x and y columns", model.ErrConfiguration)
	}

	rows, err := g.order(data, c)
	if err != nil {
		return nil, err
	}

	fig := &Figure{Kind: "graph", Type: c.Type, Title: c.Title, Layout: layout(cfg)}
	traces := map[string]int{}
	for _, i := range rows {
		name := ""
		if c.Color != "" {
			v, _ := data.Value(i, c.Color)
			name = fmt.Sprint(v)
		}
		k, ok := traces[name]
		if !ok {
			k = len(fig.Traces)
			traces[name] = k
			fig.Traces = append(fig.Traces, Trace{Name: name, X: []any{}, Y: []any{}})
		}
		x, _ := data.Value(i, c.X)
		y, _ := data.Value(i, c.Y)
		tr := &fig.Traces[k]
		tr.X = append(tr.X, x)
		tr.Y = append(tr.Y, y)
		if len(c.CustomData) > 0 {
			point := make([]any, len(c.CustomData))
			for j, col := range c.CustomData {
				point[j], _ = data.Value(i, col)
			}
			tr.CustomData = append(tr.CustomData, point)
		}
	}

	ctxlog.FromContext(ctx).Debug("Rendered graph.", "type", c.Type, "points", len(rows), "traces", len(fig.Traces))
	return fig, nil
}

// order returns the row indexes to plot. With top_n set, the rows with the
// largest y values are kept, largest first.
func (g *Renderer) order(data *table.Table, c Config) ([]int, error) {
	rows := make([]int, data.Len())
	for i := range rows {
		rows[i] = i
	}
	if c.TopN == nil {
		return rows, nil
	}
	if *c.TopN < 0 {
		return nil, fmt.Errorf("%w: top_n must not be negative", model.ErrConfiguration)
	}

	var cmpErr error
	slices.SortStableFunc(rows, func(a, b int) int {
		ya, _ := data.Value(a, c.Y)
		yb, _ := data.Value(b, c.Y)
		if ya == nil || yb == nil {
			// Nulls sort last.
			switch {
			case ya == nil && yb == nil:
				return 0
			case ya == nil:
				return 1
			}
			return -1
		}
		n, err := table.Compare(yb, ya)
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		return n
	})
	if cmpErr != nil {
		return nil, fmt.Errorf("%w: ordering by %q: %w", model.ErrConfiguration, c.Y, cmpErr)
	}
	return rows[:min(*c.TopN, len(rows))], nil
}

func layout(cfg map[string]any) map[string]any {
	out := params.DeepCopy(cfg)
	for _, k := range knownKeys {
		delete(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
