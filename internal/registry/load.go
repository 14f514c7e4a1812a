package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/dashgridgo/internal/config"
	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/dataset"
	"github.com/specialistvlad/dashgridgo/internal/model"
)

// rangeSelectors default their filters to the between operator.
var rangeSelectors = map[string]bool{
	"range_slider": true,
	"date_range":   true,
}

// Populate translates a declaration into components, applying the implicit
// defaults of the declaration format: missing filter and export targets mean
// every figure on the page that has a dataset, missing interaction targets
// mean every other figure on the page.
func (r *Registry) Populate(ctx context.Context, dash *config.Dashboard) error {
	logger := ctxlog.FromContext(ctx)

	r.mu.Lock()
	r.datasets = append(r.datasets, dash.Datasets...)
	r.mu.Unlock()

	for _, page := range dash.Pages {
		// Figures first, so control defaults can see the whole page.
		for _, def := range page.Components {
			c := &model.Component{
				ID:      def.ID,
				PageID:  page.ID,
				Kind:    model.Figure,
				Type:    def.Type,
				Title:   def.Title,
				Dataset: def.Dataset,
				Config:  def.Config,
			}
			if c.Config == nil {
				c.Config = map[string]any{}
			}
			if err := r.AddComponent(c); err != nil {
				return err
			}
		}
		for _, def := range page.Controls {
			property := def.Property
			if property == "" {
				property = "value"
			}
			c := &model.Component{
				ID:       def.ID,
				PageID:   page.ID,
				Kind:     model.Control,
				Type:     def.Selector,
				Title:    def.Title,
				Property: property,
				Options:  def.Options,
				Value:    def.Value,
			}
			if err := r.AddComponent(c); err != nil {
				return err
			}
		}

		// Actions are resolved once all components of the page exist.
		for _, def := range page.Components {
			c, _ := r.Component(def.ID)
			actions, err := r.buildActions(c, def.Actions)
			if err != nil {
				return err
			}
			c.Actions = actions
		}
		for _, def := range page.Controls {
			c, _ := r.Component(def.ID)
			actions, err := r.buildActions(c, def.Actions)
			if err != nil {
				return err
			}
			c.Actions = actions
		}
		logger.Debug("Populated page.", "page", page.ID, "components", len(page.Components), "controls", len(page.Controls))
	}

	logger.Info("Registry populated.", "components", len(r.Components()), "datasets", len(dash.Datasets))
	return nil
}

func (r *Registry) buildActions(owner *model.Component, defs []*config.Action) ([]model.Action, error) {
	out := make([]model.Action, 0, len(defs))
	for _, def := range defs {
		a := model.Action{
			Kind:    model.ParseActionKind(def.Kind),
			Name:    def.Kind,
			Targets: append([]string(nil), def.Targets...),
			Column:  def.Column,
			Format:  def.Format,
		}

		switch a.Kind {
		case model.ActionFilter:
			fallback := model.OpIsIn
			if rangeSelectors[owner.Type] {
				fallback = model.OpBetween
			}
			op, err := model.ParseFilterOperator(def.Operator, fallback)
			if err != nil {
				return nil, fmt.Errorf("control %q: %w", owner.ID, err)
			}
			a.Operator = op
			if len(a.Targets) == 0 {
				a.Targets = r.figureIDs(owner.PageID, func(c *model.Component) bool { return c.Dataset != "" })
				a.Implicit = true
			}
		case model.ActionFilterInteraction:
			if len(a.Targets) == 0 {
				a.Targets = r.figureIDs(owner.PageID, func(c *model.Component) bool { return c.ID != owner.ID })
				a.Implicit = true
			}
		case model.ActionExportData:
			if a.Format == "" {
				a.Format = "csv"
			}
			a.Format = strings.ToLower(a.Format)
			if len(a.Targets) == 0 {
				a.Targets = r.figureIDs(owner.PageID, func(c *model.Component) bool { return c.Dataset != "" })
				a.Implicit = true
			}
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *Registry) figureIDs(page string, keep func(*model.Component) bool) []string {
	var ids []string
	for _, c := range r.FiguresOnPage(page) {
		if keep(c) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// BuildDatasets instantiates a loader for every declared dataset through its
// source factory and registers it with ds.
func (r *Registry) BuildDatasets(ctx context.Context, ds *dataset.Registry) error {
	logger := ctxlog.FromContext(ctx)
	for _, def := range r.DeclaredDatasets() {
		factory, ok := r.Source(def.Source)
		if !ok {
			return fmt.Errorf("%w: dataset %q uses unknown source %q", model.ErrConfiguration, def.Name, def.Source)
		}
		loader, err := factory(ctx, def.Args)
		if err != nil {
			return fmt.Errorf("%w: dataset %q: %w", model.ErrConfiguration, def.Name, err)
		}
		if err := ds.Register(def.Name, loader); err != nil {
			return err
		}
		logger.Debug("Registered dataset.", "dataset", def.Name, "source", def.Source)
	}
	return nil
}
