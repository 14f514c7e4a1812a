// Package registry provides the central "glue" between a dashboard
// declaration and the Go code that serves it.
//
// The Registry stores the declared components and controls, keyed by id and
// grouped by page, together with the renderers (one per figure kind) and the
// dataset source factories that modules contribute through Register.
//
// During application startup the registry is populated from a
// config.Dashboard and then validated, so that every target, column and
// dataset reference a pass relies on is checked before the first event is
// resolved. After that the registry is read-only and safe for concurrent use.
package registry
