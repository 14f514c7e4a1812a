package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/dashgridgo/internal/config"
	"github.com/specialistvlad/dashgridgo/internal/dataset"
	"github.com/specialistvlad/dashgridgo/internal/model"
)

// Module is the interface that all renderer and source modules must
// implement to be registered.
type Module interface {
	Register(r *Registry)
}

// SourceFactory builds a dataset loader from the `args` of a dataset block.
type SourceFactory func(ctx context.Context, args map[string]any) (dataset.Loader, error)

// Registry holds the declared components and the registered renderers and
// sources for a single application instance.
type Registry struct {
	mu sync.RWMutex

	components map[string]*model.Component
	order      []string
	pages      []string
	members    map[string][]string
	datasets   []*config.Dataset

	renderers map[string]model.Renderer
	sources   map[string]SourceFactory
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		components: make(map[string]*model.Component),
		members:    make(map[string][]string),
		renderers:  make(map[string]model.Renderer),
		sources:    make(map[string]SourceFactory),
	}
}

// AddComponent registers a component under its id and page.
func (r *Registry) AddComponent(c *model.Component) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("%w: component must have an id", model.ErrConfiguration)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[c.ID]; exists {
		return fmt.Errorf("%w: duplicate component id %q", model.ErrConfiguration, c.ID)
	}
	r.components[c.ID] = c
	r.order = append(r.order, c.ID)
	if _, ok := r.members[c.PageID]; !ok {
		r.pages = append(r.pages, c.PageID)
	}
	r.members[c.PageID] = append(r.members[c.PageID], c.ID)
	return nil
}

// Component returns the component registered under id.
func (r *Registry) Component(id string) (*model.Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[id]
	return c, ok
}

// Components returns every component in registration order.
func (r *Registry) Components() []*model.Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Component, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.components[id])
	}
	return out
}

// Pages returns the page ids in declaration order.
func (r *Registry) Pages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.pages...)
}

// PageOf returns the page a component belongs to.
func (r *Registry) PageOf(id string) (string, bool) {
	c, ok := r.Component(id)
	if !ok {
		return "", false
	}
	return c.PageID, true
}

// FiguresOnPage returns the figures of a page in declaration order.
func (r *Registry) FiguresOnPage(page string) []*model.Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Component
	for _, id := range r.members[page] {
		if c := r.components[id]; c.IsFigure() {
			out = append(out, c)
		}
	}
	return out
}

// ExportTargets returns the figures whose data the export_data actions of
// component id export.
func (r *Registry) ExportTargets(id string) []string {
	c, ok := r.Component(id)
	if !ok {
		return nil
	}
	var out []string
	for _, a := range c.ActionsOf(model.ActionExportData) {
		out = append(out, a.Targets...)
	}
	return out
}

// AffectedBy returns the figures whose resolution depends on component id:
// the targets of its filter, parameter and filter_interaction actions, in
// declaration order without duplicates.
func (r *Registry) AffectedBy(id string) []string {
	c, ok := r.Component(id)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	add := func(target string) {
		if !seen[target] {
			seen[target] = true
			out = append(out, target)
		}
	}
	for _, a := range c.Actions {
		switch a.Kind {
		case model.ActionFilter, model.ActionFilterInteraction:
			for _, t := range a.Targets {
				add(t)
			}
		case model.ActionParameter:
			for _, t := range a.Targets {
				if comp, _, err := model.SplitTarget(t); err == nil {
					add(comp)
				}
			}
		}
	}
	return out
}

// DeclaredDatasets returns the dataset blocks the registry was populated with.
func (r *Registry) DeclaredDatasets() []*config.Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*config.Dataset(nil), r.datasets...)
}
