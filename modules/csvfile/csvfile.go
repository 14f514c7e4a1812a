// Package csvfile provides the "csv" dataset source. The file is read on
// every load, so edits are picked up by the next pass; column types are
// inferred from the cells.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/dataset"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/params"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/internal/table"
	"github.com/specialistvlad/dashgridgo/modules/inline"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the csv source.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSource("csv", New)
}

// Args are the arguments of a csv dataset.
type Args struct {
	Path      string `json:"path"`
	Delimiter string `json:"delimiter"`
}

type loader struct {
	path  string
	comma rune
}

// New validates args and returns a loader for the file.
func New(_ context.Context, raw map[string]any) (dataset.Loader, error) {
	var args Args
	if err := params.Decode(raw, &args, true); err != nil {
		return nil, err
	}
	if args.Path == "" {
		return nil, fmt.Errorf("%w: csv source needs a path", model.ErrConfiguration)
	}
	comma, err := ParseDelimiter(args.Delimiter)
	if err != nil {
		return nil, err
	}
	return &loader{path: args.Path, comma: comma}, nil
}

func (l *loader) Load(ctx context.Context, p map[string]any) (*table.Table, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f, l.comma)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	ctxlog.FromContext(ctx).Debug("Read csv file.", "path", l.path, "rows", t.Len())
	return inline.Limit(t, p)
}

// Parse reads a CSV document whose first record is the header, inferring
// the type of every column from its cells.
func Parse(src io.Reader, comma rune) (*table.Table, error) {
	r := csv.NewReader(src)
	r.Comma = comma
	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, err
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	columns := make([][]any, len(header))
	for j := range header {
		cells := make([]string, len(records))
		for i, rec := range records {
			cells[i] = rec[j]
		}
		columns[j] = table.ParseColumn(cells)
	}
	rows := make([][]any, len(records))
	for i := range records {
		row := make([]any, len(header))
		for j := range header {
			row[j] = columns[j][i]
		}
		rows[i] = row
	}
	return table.New(header, rows)
}

// ParseDelimiter returns the single rune of a delimiter argument, or ','
// when it is empty.
func ParseDelimiter(delim string) (rune, error) {
	if delim == "" {
		return ',', nil
	}
	r, size := utf8.DecodeRuneInString(delim)
	if size != len(delim) {
		return 0, fmt.Errorf("%w: delimiter must be a single character", model.ErrConfiguration)
	}
	return r, nil
}
