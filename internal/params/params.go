// Package params merges parameter overrides into a target's rendering
// configuration and extracts the dataset-loading arguments addressed by
// data_frame paths.
//
// The declared configuration is never modified: every merge works on a deep
// copy, and every assigned value is copied as well, so no two targets of a
// pass share mutable state.
package params

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/trigger"
)

// DataFrameKey is the configuration key holding dataset-loading arguments.
const DataFrameKey = "data_frame"

// Resolved is the outcome of merging the parameters that apply to a target.
type Resolved struct {
	// Config is the rendering configuration, without the data_frame key.
	Config map[string]any
	// LoadParams are the arguments passed to the dataset loader.
	LoadParams map[string]any
}

// ResolveValue turns a control value into the value a parameter assigns.
// The ALL sentinel expands to the control's declared options. NONE becomes
// nil; inside a list NONE entries are dropped and a list left empty becomes
// a list holding a single nil.
func ResolveValue(control *model.Component, v any) any {
	if model.IsAll(v) {
		return deepCopyValue(control.Options)
	}
	if model.IsNone(v) {
		return nil
	}
	switch v.(type) {
	case []any, []string:
		var out []any
		for _, item := range model.AsList(v) {
			if !model.IsNone(item) {
				out = append(out, deepCopyValue(item))
			}
		}
		if len(out) == 0 {
			return []any{nil}
		}
		return out
	}
	return deepCopyValue(v)
}

// Merge applies parameters to a copy of base. Paths below data_frame are
// routed to the loader arguments, seeded from the declared data_frame
// mapping if there is one; every other path is set in the configuration.
func Merge(base map[string]any, parameters []trigger.Match) (Resolved, error) {
	cfg := DeepCopy(base)
	if cfg == nil {
		cfg = map[string]any{}
	}
	load := map[string]any{}
	if declared, ok := cfg[DataFrameKey].(map[string]any); ok {
		load = declared
	}
	delete(cfg, DataFrameKey)

	for _, m := range parameters {
		value := ResolveValue(m.Component, m.Record.Value)
		for _, path := range m.Paths {
			var err error
			switch {
			case path == DataFrameKey:
				err = fmt.Errorf("%w: parameter %q must address a key below %s", model.ErrConfiguration, m.Component.ID, DataFrameKey)
			case strings.HasPrefix(path, DataFrameKey+"."):
				err = SetPath(load, strings.TrimPrefix(path, DataFrameKey+"."), deepCopyValue(value))
			default:
				err = SetPath(cfg, path, deepCopyValue(value))
			}
			if err != nil {
				return Resolved{}, fmt.Errorf("parameter %q: %w", m.Component.ID, err)
			}
		}
	}
	return Resolved{Config: cfg, LoadParams: load}, nil
}

// SetPath assigns v at the dotted path inside tree, creating intermediate
// mappings as needed. Crossing a value that is not a mapping is an error.
func SetPath(tree map[string]any, path string, v any) error {
	keys := strings.Split(path, ".")
	node := tree
	for i, key := range keys {
		if key == "" {
			return fmt.Errorf("%w: empty segment in path %q", model.ErrConfiguration, path)
		}
		if i == len(keys)-1 {
			node[key] = v
			return nil
		}
		next, exists := node[key]
		if !exists || next == nil {
			child := map[string]any{}
			node[key] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: path %q crosses non-mapping key %q", model.ErrConfiguration, path, strings.Join(keys[:i+1], "."))
		}
		node = child
	}
	return nil
}

// DeepCopy returns a structural copy of a configuration tree.
func DeepCopy(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return DeepCopy(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = deepCopyValue(item)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	}
	return v
}
