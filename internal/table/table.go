// Package table provides the immutable tabular value that datasets load into
// and that filters narrow. A Table is rows by named columns with mixed cell
// types: numbers, strings, booleans, time.Time values and nil for missing cells.
//
// Tables are never mutated after construction. Every narrowing operation
// returns a new Table that may share row storage with its source, which is
// what allows one loaded dataset to be filtered independently by several
// targets at once.
package table

import (
	"errors"
	"fmt"
)

// ErrUnknownColumn is returned when an operation names a column the table does not have.
var ErrUnknownColumn = errors.New("unknown column")

// Table is an immutable, row-oriented table.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New builds a table from column names and rows. Every row must have exactly
// one cell per column and column names must be unique. The rows are copied.
func New(columns []string, rows [][]any) (*Table, error) {
	t, err := empty(columns)
	if err != nil {
		return nil, err
	}
	t.rows = make([][]any, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(columns))
		}
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = Normalize(v)
		}
		t.rows = append(t.rows, cells)
	}
	return t, nil
}

// MustNew is like New but panics on error. It is intended for tests and
// static fixtures.
func MustNew(columns []string, rows [][]any) *Table {
	t, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// FromRecords builds a table from a list of records. When columns is empty,
// the column set is the sorted union of record keys. Missing keys become nil
// cells.
func FromRecords(columns []string, records []map[string]any) (*Table, error) {
	if len(columns) == 0 {
		columns = recordKeys(records)
	}
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = rec[col]
		}
		rows[i] = row
	}
	return New(columns, rows)
}

func empty(columns []string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if col == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := index[col]; dup {
			return nil, fmt.Errorf("duplicate column %q", col)
		}
		index[col] = i
	}
	return &Table{columns: append([]string(nil), columns...), index: index}, nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Has reports whether the table has the named column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []any {
	return append([]any(nil), t.rows[i]...)
}

// Value returns the cell at row i in the named column.
func (t *Table) Value(i int, column string) (any, error) {
	j, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownColumn, column)
	}
	return t.rows[i][j], nil
}

// Column returns a copy of all cells of the named column.
func (t *Table) Column(column string) ([]any, error) {
	j, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownColumn, column)
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, nil
}

// Where returns a table holding only the rows whose cell in column satisfies
// keep. The first error returned by keep aborts the scan.
func (t *Table) Where(column string, keep func(v any) (bool, error)) (*Table, error) {
	j, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownColumn, column)
	}
	out := t.derive()
	for _, row := range t.rows {
		ok, err := keep(row[j])
		if err != nil {
			return nil, err
		}
		if ok {
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

// Head returns the first n rows. A negative n returns the table unchanged.
func (t *Table) Head(n int) *Table {
	if n < 0 || n >= len(t.rows) {
		return t
	}
	out := t.derive()
	out.rows = t.rows[:n:n]
	return out
}

// Select returns a table restricted to the given columns, in the given order.
func (t *Table) Select(columns ...string) (*Table, error) {
	idx := make([]int, len(columns))
	for i, col := range columns {
		j, ok := t.index[col]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownColumn, col)
		}
		idx[i] = j
	}
	out, err := empty(columns)
	if err != nil {
		return nil, err
	}
	out.rows = make([][]any, len(t.rows))
	for i, row := range t.rows {
		cells := make([]any, len(idx))
		for k, j := range idx {
			cells[k] = row[j]
		}
		out.rows[i] = cells
	}
	return out, nil
}

// Records returns the rows as maps keyed by column name.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.rows))
	for i, row := range t.rows {
		rec := make(map[string]any, len(t.columns))
		for j, col := range t.columns {
			rec[col] = row[j]
		}
		out[i] = rec
	}
	return out
}

// derive returns an empty table sharing this table's column layout.
func (t *Table) derive() *Table {
	return &Table{columns: t.columns, index: t.index, rows: make([][]any, 0)}
}
