package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrIncomparable is returned by Compare when two values have no ordering.
var ErrIncomparable = errors.New("values are not comparable")

// timeLayouts are tried in order when a string has to be read as a datetime.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize maps Go values onto the cell types a Table stores: integers and
// floats become float64, byte slices become strings. Other values pass
// through unchanged.
func Normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	}
	return v
}

// ParseTime reads s with the accepted datetime layouts.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func asFloat(v any) (float64, bool) {
	switch x := Normalize(v).(type) {
	case float64:
		return x, true
	}
	return 0, false
}

// asTime reads v as a datetime, accepting time.Time and parseable strings.
func asTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		return ParseTime(x)
	}
	return time.Time{}, false
}

// Equal reports whether a and b denote the same cell value. Numbers compare
// by value regardless of Go type, and a datetime equals a string that parses
// to the same instant. nil equals only nil.
func Equal(a, b any) bool {
	a, b = Normalize(a), Normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		return ok && fa == fb
	}
	_, aTime := a.(time.Time)
	_, bTime := b.(time.Time)
	if aTime || bTime {
		ta, ok := asTime(a)
		if !ok {
			return false
		}
		tb, ok := asTime(b)
		return ok && ta.Equal(tb)
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// Compare orders a against b, returning -1, 0 or +1. Numbers, datetimes,
// strings and booleans are ordered; anything else, including nil, yields
// ErrIncomparable.
func Compare(a, b any) (int, error) {
	a, b = Normalize(a), Normalize(b)
	if a == nil || b == nil {
		return 0, fmt.Errorf("%w: %v and %v", ErrIncomparable, a, b)
	}
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		if !ok {
			return 0, fmt.Errorf("%w: number %v and %T", ErrIncomparable, fa, b)
		}
		return cmpFloat(fa, fb), nil
	}
	_, aTime := a.(time.Time)
	_, bTime := b.(time.Time)
	if aTime || bTime {
		ta, okA := asTime(a)
		tb, okB := asTime(b)
		if !okA || !okB {
			return 0, fmt.Errorf("%w: datetime and %v", ErrIncomparable, b)
		}
		return ta.Compare(tb), nil
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !x:
				return -1, nil
			default:
				return 1, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %T and %T", ErrIncomparable, a, b)
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ParseCell converts a raw text cell into the most specific cell type:
// empty is nil, then bool, number and datetime are tried before falling back
// to the string itself.
func ParseCell(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	if t, ok := ParseTime(trimmed); ok {
		return t
	}
	return s
}
