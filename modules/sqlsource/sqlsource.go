// Package sqlsource provides the "sql" dataset source. A dataset runs one
// query against a database/sql handle opened at build time; the query's
// placeholders are bound, in order, from the load parameters named in
// `params`, falling back to `defaults`.
//
// Supported drivers are "sqlite" (modernc.org/sqlite, pure Go) and "pgx"
// (github.com/jackc/pgx/v5/stdlib, PostgreSQL).
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"slices"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/dataset"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/params"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/internal/table"
)

var drivers = []string{"sqlite", "pgx"}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the sql source.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSource("sql", New)
}

// Args are the arguments of a sql dataset.
type Args struct {
	Driver   string         `json:"driver"`
	DSN      string         `json:"dsn"`
	Query    string         `json:"query"`
	Params   []string       `json:"params"`
	Defaults map[string]any `json:"defaults"`
}

// Loader runs the dataset query. It owns its *sql.DB.
type Loader struct {
	db   *sql.DB
	args Args
}

// New opens the database handle and verifies it with a ping.
func New(ctx context.Context, raw map[string]any) (dataset.Loader, error) {
	var args Args
	if err := params.Decode(raw, &args, true); err != nil {
		return nil, err
	}
	if !slices.Contains(drivers, args.Driver) {
		return nil, fmt.Errorf("%w: unsupported sql driver %q, want one of %v", model.ErrConfiguration, args.Driver, drivers)
	}
	if args.DSN == "" || args.Query == "" {
		return nil, fmt.Errorf("%w: sql source needs a dsn and a query", model.ErrConfiguration)
	}

	db, err := sql.Open(args.Driver, args.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", args.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", args.Driver, err)
	}
	ctxlog.FromContext(ctx).Debug("Opened sql dataset source.", "driver", args.Driver)
	return &Loader{db: db, args: args}, nil
}

// Load runs the query with the bound parameters.
func (l *Loader) Load(ctx context.Context, p map[string]any) (*table.Table, error) {
	bind := make([]any, len(l.args.Params))
	for i, name := range l.args.Params {
		v, ok := p[name]
		if !ok {
			v, ok = l.args.Defaults[name]
		}
		if !ok {
			return nil, fmt.Errorf("%w: query parameter %q has no value and no default", model.ErrConfiguration, name)
		}
		bind[i] = bindValue(v)
	}

	rows, err := l.db.QueryContext(ctx, l.args.Query, bind...)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out [][]any
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table.New(columns, out)
}

// bindValue passes whole numbers as int64, since declaration values are
// float64 and both drivers reject floats where an integer is required.
func bindValue(v any) any {
	if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return v
}

// Close closes the database handle.
func (l *Loader) Close() error {
	return l.db.Close()
}
