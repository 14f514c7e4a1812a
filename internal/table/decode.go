package table

import (
	"fmt"
	"sort"
	"strings"
)

// FromValue builds a table from a loosely typed value as produced by JSON or
// HCL decoding. Accepted shapes:
//
//	[{"a": 1, "b": "x"}, ...]                       // list of records
//	{"records": [{...}, ...], "columns": [...]}      // records with optional column order
//	{"columns": ["a", "b"], "rows": [[1, "x"], ...]} // column-major header + rows
func FromValue(v any) (*Table, error) {
	switch x := v.(type) {
	case nil:
		return New(nil, nil)
	case []any:
		records, err := toRecords(x)
		if err != nil {
			return nil, err
		}
		return FromRecords(nil, records)
	case []map[string]any:
		return FromRecords(nil, x)
	case map[string]any:
		columns, err := toStrings(x["columns"])
		if err != nil {
			return nil, fmt.Errorf("columns: %w", err)
		}
		if recs, ok := x["records"]; ok {
			list, ok := recs.([]any)
			if !ok {
				return nil, fmt.Errorf("records must be a list, got %T", recs)
			}
			records, err := toRecords(list)
			if err != nil {
				return nil, err
			}
			return FromRecords(columns, records)
		}
		rawRows, ok := x["rows"].([]any)
		if !ok && x["rows"] != nil {
			return nil, fmt.Errorf("rows must be a list, got %T", x["rows"])
		}
		rows := make([][]any, len(rawRows))
		for i, r := range rawRows {
			row, ok := r.([]any)
			if !ok {
				return nil, fmt.Errorf("row %d must be a list, got %T", i, r)
			}
			rows[i] = row
		}
		return New(columns, rows)
	}
	return nil, fmt.Errorf("cannot build a table from %T", v)
}

// ParseColumn converts the raw text cells of one column. The column is typed
// as a whole: if every non-empty cell is a number the column is numeric, then
// boolean and datetime are tried, and otherwise cells stay strings. Empty
// cells are nil in every case.
func ParseColumn(cells []string) []any {
	out := make([]any, len(cells))
	kinds := []func(string) (any, bool){
		func(s string) (any, bool) {
			v := ParseCell(s)
			f, ok := v.(float64)
			return f, ok
		},
		func(s string) (any, bool) {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true":
				return true, true
			case "false":
				return false, true
			}
			return nil, false
		},
		func(s string) (any, bool) {
			t, ok := ParseTime(strings.TrimSpace(s))
			return t, ok
		},
	}
	for _, parse := range kinds {
		ok := true
		for i, c := range cells {
			if strings.TrimSpace(c) == "" {
				out[i] = nil
				continue
			}
			v, parsed := parse(c)
			if !parsed {
				ok = false
				break
			}
			out[i] = v
		}
		if ok {
			return out
		}
	}
	for i, c := range cells {
		if strings.TrimSpace(c) == "" {
			out[i] = nil
			continue
		}
		out[i] = c
	}
	return out
}

func toRecords(list []any) ([]map[string]any, error) {
	records := make([]map[string]any, len(list))
	for i, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d must be an object, got %T", i, item)
		}
		records[i] = rec
	}
	return records, nil
}

func toStrings(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return x, nil
	case []any:
		out := make([]string, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("entry %d must be a string, got %T", i, item)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("must be a list of strings, got %T", v)
}

func recordKeys(records []map[string]any) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, rec := range records {
		for k := range rec {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
