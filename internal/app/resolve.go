package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/specialistvlad/dashgridgo/internal/dispatch"
	"github.com/specialistvlad/dashgridgo/internal/export"
	"github.com/specialistvlad/dashgridgo/internal/model"
)

// Result is the serializable outcome of one target.
type Result struct {
	Artifact any                `json:"artifact,omitempty"`
	Error    *model.ErrorMarker `json:"error,omitempty"`
	Degraded []string           `json:"degraded,omitempty"`
}

// Targets returns the targets the event refreshes: its explicit targets, or
// else every figure affected by its triggering components, or else, when
// nothing triggered, every figure of the dashboard.
func (a *App) Targets(ev *Event) []string {
	if len(ev.Targets) > 0 {
		return ev.Targets
	}
	var out []string
	for _, id := range model.TriggeredBy(ev.Records()) {
		for _, t := range a.registry.AffectedBy(id) {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	if len(out) > 0 || len(model.TriggeredBy(ev.Records())) > 0 {
		return out
	}
	for _, c := range a.registry.Components() {
		if c.IsFigure() {
			out = append(out, c.ID)
		}
	}
	return out
}

// Resolve runs one resolution pass for the event.
func (a *App) Resolve(ctx context.Context, ev *Event) map[string]Result {
	ctx = a.withLogger(ctx)
	targets := a.Targets(ev)
	a.logger.Debug("Resolving event.", "targets", targets, "triggers", len(ev.Triggers))

	outcomes := a.dispatcher.Resolve(ctx, ev.Records(), targets)
	results := make(map[string]Result, len(outcomes))
	for id, out := range outcomes {
		results[id] = toResult(id, out)
	}
	return results
}

func toResult(id string, out dispatch.Outcome) Result {
	var r Result
	if out.Failed() {
		r.Error = model.NewErrorMarker(id, out.Err)
	} else {
		r.Artifact = out.Artifact
	}
	for _, err := range out.Degraded {
		r.Degraded = append(r.Degraded, err.Error())
	}
	return r
}

// Export writes the filtered data of the event's targets to dir, one file
// per target. Files of targets that resolved are written even when others
// fail; the failures are returned together.
func (a *App) Export(ctx context.Context, ev *Event, format, dir string) ([]string, error) {
	ctx = a.withLogger(ctx)
	targets := a.exportTargets(ev)
	files, exportErr := export.Export(ctx, a.dispatcher, ev.Records(), targets, format)
	if len(files) == 0 {
		return nil, exportErr
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	var written []string
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return written, errors.Join(exportErr, fmt.Errorf("failed to write %s: %w", path, err))
		}
		a.logger.Info("Exported data.", "file", path, "bytes", len(f.Data))
		written = append(written, path)
	}
	return written, exportErr
}

// exportTargets prefers the export_data targets of the event's triggering
// components over the generic refresh targets.
func (a *App) exportTargets(ev *Event) []string {
	if len(ev.Targets) > 0 {
		return ev.Targets
	}
	var out []string
	for _, id := range model.TriggeredBy(ev.Records()) {
		for _, t := range a.registry.ExportTargets(id) {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	return a.Targets(ev)
}
