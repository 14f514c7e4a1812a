package model

import "strings"

const (
	// AllOption is the control value meaning "no filtering" for filters and
	// "every declared option" for parameters. It matches case-insensitively.
	AllOption = "ALL"
	// NoneOption is the control value standing for a literal null.
	NoneOption = "NONE"
)

// TriggerRecord is an immutable snapshot of one input supplied for a pass.
type TriggerRecord struct {
	// ComponentID is the originating component.
	ComponentID string
	// Property is the input property that was read ("value", "clickData", ...).
	Property string
	// Value is the property value at fire time.
	Value any
	// Triggered marks the record that caused the pass, as opposed to state
	// supplied alongside it.
	Triggered bool
}

// TriggeredBy returns the component ids of the records that caused the pass.
func TriggeredBy(records []TriggerRecord) []string {
	var ids []string
	for _, r := range records {
		if r.Triggered {
			ids = append(ids, r.ComponentID)
		}
	}
	return ids
}

// IsAll reports whether v is the "all options" sentinel, either as a scalar
// or as a member of a list selection.
func IsAll(v any) bool {
	switch x := v.(type) {
	case string:
		return strings.EqualFold(x, AllOption)
	case []any:
		for _, item := range x {
			if s, ok := item.(string); ok && strings.EqualFold(s, AllOption) {
				return true
			}
		}
	case []string:
		for _, s := range x {
			if strings.EqualFold(s, AllOption) {
				return true
			}
		}
	}
	return false
}

// IsNone reports whether v is the NONE sentinel.
func IsNone(v any) bool {
	s, ok := v.(string)
	return ok && s == NoneOption
}

// AsList returns v as a list selection: lists are copied, scalars are wrapped.
func AsList(v any) []any {
	switch x := v.(type) {
	case []any:
		return append([]any(nil), x...)
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	}
	return []any{v}
}
