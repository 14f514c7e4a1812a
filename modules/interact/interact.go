// Package interact narrows a target's data by a selection made on another
// figure. Graphs report clicked points through "clickData", whose points
// carry the values of the source's custom_data columns; tables report the
// selected cell through "active_cell".
package interact

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/table"
)

// Handler implements model.Interactable for the built-in figure kinds. It is
// embedded by the graph and table renderers.
type Handler struct{}

// HandleInteraction dispatches on the property that carried the selection.
func (Handler) HandleInteraction(ctx context.Context, data *table.Table, sel model.Selection) (*table.Table, error) {
	switch sel.Property {
	case "clickData", "selectedData":
		return ByClick(data, sel)
	case "active_cell":
		return ByActiveCell(data, sel)
	}
	return nil, fmt.Errorf("unsupported selection property %q from %q", sel.Property, sel.SourceID)
}

// ByClick keeps the rows matching any clicked point. A point matches when
// every custom_data column of the source equals the point's customdata value
// at the same position. A click without points selects nothing and leaves
// data unchanged.
func ByClick(data *table.Table, sel model.Selection) (*table.Table, error) {
	columns, err := customDataColumns(sel.SourceConfig)
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", sel.SourceID, err)
	}
	payload, ok := sel.Payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("clickData must be an object, got %T", sel.Payload)
	}
	if payload["points"] == nil {
		return data, nil
	}
	points, ok := payload["points"].([]any)
	if !ok {
		return nil, fmt.Errorf("clickData points must be a list, got %T", payload["points"])
	}
	if len(points) == 0 {
		return data, nil
	}

	var wanted [][]any
	for i, p := range points {
		point, ok := p.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("point %d is not an object", i)
		}
		values := model.AsList(point["customdata"])
		if point["customdata"] == nil || len(values) < len(columns) {
			return nil, fmt.Errorf("point %d carries %d customdata values, need %d", i, len(values), len(columns))
		}
		wanted = append(wanted, values[:len(columns)])
	}
	for _, col := range columns {
		if !data.Has(col) {
			return nil, fmt.Errorf("%w %q", table.ErrUnknownColumn, col)
		}
	}
	return keepRows(data, columns, wanted)
}

// ByActiveCell keeps the rows whose cell in the selected column equals the
// selected value. The payload is {"column_id": ..., "value": ...}.
func ByActiveCell(data *table.Table, sel model.Selection) (*table.Table, error) {
	payload, ok := sel.Payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("active_cell must be an object, got %T", sel.Payload)
	}
	col, _ := payload["column_id"].(string)
	if col == "" {
		return nil, fmt.Errorf("active_cell has no column_id")
	}
	value, ok := payload["value"]
	if !ok {
		return nil, fmt.Errorf("active_cell has no value")
	}
	if !data.Has(col) {
		return nil, fmt.Errorf("%w %q", table.ErrUnknownColumn, col)
	}
	return data.Where(col, func(v any) (bool, error) { return table.Equal(v, value), nil })
}

func customDataColumns(cfg map[string]any) ([]string, error) {
	raw, ok := cfg["custom_data"]
	if !ok {
		return nil, fmt.Errorf("no custom_data columns declared")
	}
	var columns []string
	for _, c := range model.AsList(raw) {
		s, ok := c.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("custom_data must list column names")
		}
		columns = append(columns, s)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no custom_data columns declared")
	}
	return columns, nil
}

func keepRows(data *table.Table, columns []string, wanted [][]any) (*table.Table, error) {
	idx := make(map[int]bool)
	for i := range data.Len() {
		for _, values := range wanted {
			if rowMatches(data, i, columns, values) {
				idx[i] = true
				break
			}
		}
	}
	rows := make([][]any, 0, len(idx))
	for i := range data.Len() {
		if idx[i] {
			rows = append(rows, data.Row(i))
		}
	}
	return table.New(data.Columns(), rows)
}

func rowMatches(data *table.Table, i int, columns []string, values []any) bool {
	for k, col := range columns {
		v, err := data.Value(i, col)
		if err != nil || !table.Equal(v, values[k]) {
			return false
		}
	}
	return true
}
