// Package config defines the format-agnostic declaration model of a
// dashboard, along with the Loader interface that format-specific packages
// such as internal/hcl implement.
//
// The config.Dashboard is the single source the registry is populated from.
// Values inside Config, Args, Options and Value are plain Go values
// (string, float64, bool, nil, []any, map[string]any).
package config
