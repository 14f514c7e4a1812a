// Package export writes the filtered data behind figures to files, the way
// the export_data action delivers it: filters and interactions applied,
// rendering parameters ignored.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/dispatch"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/table"
)

// Source yields the filtered data of targets. *dispatch.Dispatcher satisfies it.
type Source interface {
	FilteredData(ctx context.Context, records []model.TriggerRecord, targets []string) map[string]dispatch.Outcome
}

// File is one exported file.
type File struct {
	Name string
	Data []byte
}

// Export produces one file per target in the requested format ("csv" or
// "json"). Targets that fail are reported together; the files of the other
// targets are still returned.
func Export(ctx context.Context, src Source, records []model.TriggerRecord, targets []string, format string) ([]File, error) {
	format = strings.ToLower(format)
	var encode func(*table.Table) ([]byte, error)
	switch format {
	case "csv":
		encode = encodeCSV
	case "json":
		encode = encodeJSON
	case "xlsx":
		return nil, fmt.Errorf("%w: xlsx export is not supported, use csv or json", model.ErrConfiguration)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", model.ErrConfiguration, format)
	}

	outcomes := src.FilteredData(ctx, records, targets)

	var (
		files []File
		errs  []error
		seen  = make(map[string]bool)
	)
	for _, id := range targets {
		if seen[id] {
			continue
		}
		seen[id] = true

		out := outcomes[id]
		switch {
		case out.Err != nil:
			errs = append(errs, out.Err)
			continue
		case out.Data == nil:
			errs = append(errs, fmt.Errorf("%w: %q has no dataset to export", model.ErrConfiguration, id))
			continue
		}
		data, err := encode(out.Data)
		if err != nil {
			errs = append(errs, fmt.Errorf("encoding %q: %w", id, err))
			continue
		}
		files = append(files, File{Name: id + "." + format, Data: data})
	}

	ctxlog.FromContext(ctx).Info("Exported data.", "format", format, "files", len(files), "failed", len(errs))
	return files, errors.Join(errs...)
}

func encodeCSV(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns()); err != nil {
		return nil, err
	}
	cells := make([]string, len(t.Columns()))
	for i := range t.Len() {
		for j, v := range t.Row(i) {
			cells[j] = formatCell(v)
		}
		if err := w.Write(cells); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

func encodeJSON(t *table.Table) ([]byte, error) {
	return json.MarshalIndent(t.Records(), "", "  ")
}
