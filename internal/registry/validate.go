package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/params"
)

// Validate checks the referential integrity a resolution pass relies on.
// hasDataset reports whether a dataset name is loadable; when nil, only the
// declared datasets count. All problems are reported together.
func (r *Registry) Validate(ctx context.Context, hasDataset func(string) bool) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	declared := make(map[string]bool)
	for _, def := range r.DeclaredDatasets() {
		if declared[def.Name] {
			errs = append(errs, fmt.Sprintf("dataset '%s': declared more than once", def.Name))
		}
		declared[def.Name] = true
		if _, ok := r.Source(def.Source); !ok {
			errs = append(errs, fmt.Sprintf("dataset '%s': unknown source '%s'", def.Name, def.Source))
		}
	}
	if hasDataset == nil {
		hasDataset = func(name string) bool { return declared[name] }
	}

	for _, c := range r.Components() {
		if c.IsFigure() {
			rd, ok := r.Renderer(c.Type)
			if !ok {
				errs = append(errs, fmt.Sprintf("component '%s': unknown renderer kind '%s'", c.ID, c.Type))
			}
			if c.Dataset != "" && !hasDataset(c.Dataset) && !declared[c.Dataset] {
				errs = append(errs, fmt.Sprintf("component '%s': unknown dataset '%s'", c.ID, c.Dataset))
			}
			if ok && len(c.ActionsOf(model.ActionFilterInteraction)) > 0 {
				if _, interactable := rd.(model.Interactable); !interactable {
					logger.Warn("Interaction source renders a kind that cannot handle selections itself.", "component", c.ID, "kind", c.Type)
				}
			}
		}

		for _, a := range c.Actions {
			errs = append(errs, r.validateAction(c, a)...)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: registry validation failed:\n- %s", model.ErrConfiguration, strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validated.", "components", len(r.Components()))
	return nil
}

func (r *Registry) validateAction(owner *model.Component, a model.Action) []string {
	var errs []string
	prefix := fmt.Sprintf("component '%s', action '%s'", owner.ID, a.Name)

	if owner.IsFigure() && (a.Kind == model.ActionFilter || a.Kind == model.ActionParameter) {
		errs = append(errs, fmt.Sprintf("%s: %s is only valid on a control", prefix, a.Name))
	}

	switch a.Kind {
	case model.ActionFilter:
		if a.Column == "" {
			errs = append(errs, prefix+": filter must declare a column")
		}
		for _, id := range a.Targets {
			target, msg := r.figure(id)
			if msg != "" {
				errs = append(errs, prefix+": "+msg)
				continue
			}
			if target.Dataset == "" {
				errs = append(errs, fmt.Sprintf("%s: target '%s' has no dataset to filter", prefix, id))
			}
		}

	case model.ActionParameter:
		if len(a.Targets) == 0 {
			errs = append(errs, prefix+": parameter must declare at least one target")
		}
		for _, t := range a.Targets {
			id, path, err := model.SplitTarget(t)
			if err != nil {
				errs = append(errs, prefix+": "+err.Error())
				continue
			}
			if path == params.DataFrameKey {
				errs = append(errs, fmt.Sprintf("%s: target '%s' must address a key below %s", prefix, t, params.DataFrameKey))
			}
			if _, msg := r.figure(id); msg != "" {
				errs = append(errs, prefix+": "+msg)
			}
		}

	case model.ActionFilterInteraction:
		if !owner.IsFigure() {
			errs = append(errs, prefix+": only figures can be interaction sources")
		}
		for _, id := range a.Targets {
			target, msg := r.figure(id)
			switch {
			case msg != "":
				errs = append(errs, prefix+": "+msg)
			case target.ID == owner.ID:
				errs = append(errs, prefix+": a component cannot target itself")
			case target.PageID != owner.PageID:
				errs = append(errs, fmt.Sprintf("%s: target '%s' is on page '%s', not '%s'", prefix, id, target.PageID, owner.PageID))
			}
		}

	case model.ActionExportData:
		switch a.Format {
		case "csv", "json":
		default:
			errs = append(errs, fmt.Sprintf("%s: unsupported export format '%s'", prefix, a.Format))
		}
		for _, id := range a.Targets {
			if _, msg := r.figure(id); msg != "" {
				errs = append(errs, prefix+": "+msg)
			}
		}
	}
	return errs
}

func (r *Registry) figure(id string) (*model.Component, string) {
	c, ok := r.Component(id)
	if !ok {
		return nil, fmt.Sprintf("unknown target '%s'", id)
	}
	if !c.IsFigure() {
		return nil, fmt.Sprintf("target '%s' is not a figure", id)
	}
	return c, ""
}
