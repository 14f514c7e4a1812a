// Package inline provides the "inline" dataset source: a table declared
// directly in the dashboard, either as columns and rows or as records.
package inline

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dashgridgo/internal/dataset"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/internal/table"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the inline source.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSource("inline", New)
}

// New builds a loader over the table declared in args.
func New(_ context.Context, args map[string]any) (dataset.Loader, error) {
	t, err := table.FromValue(args)
	if err != nil {
		return nil, err
	}
	return dataset.LoaderFunc(func(_ context.Context, params map[string]any) (*table.Table, error) {
		return Limit(t, params)
	}), nil
}

// Limit applies the optional "limit" load parameter.
func Limit(t *table.Table, params map[string]any) (*table.Table, error) {
	raw, ok := params["limit"]
	if !ok || raw == nil {
		return t, nil
	}
	n, ok := table.Normalize(raw).(float64)
	if !ok || n < 0 {
		return nil, fmt.Errorf("%w: limit must be a non-negative number, got %v", model.ErrConfiguration, raw)
	}
	return t.Head(int(n)), nil
}
