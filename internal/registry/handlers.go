package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/dashgridgo/internal/model"
)

// RegisterRenderer registers the rendering factory of a figure kind.
func (r *Registry) RegisterRenderer(kind string, renderer model.Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[kind]; exists {
		panic(fmt.Sprintf("renderer for kind '%s' already registered", kind))
	}
	_, interactable := renderer.(model.Interactable)
	slog.Debug("Registering renderer.", "kind", kind, "interactable", interactable)
	r.renderers[kind] = renderer
}

// RegisterSource registers a dataset source factory.
func (r *Registry) RegisterSource(name string, factory SourceFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[name]; exists {
		panic(fmt.Sprintf("source with name '%s' already registered", name))
	}
	slog.Debug("Registering dataset source.", "name", name)
	r.sources[name] = factory
}

// Renderer returns the renderer registered for a figure kind.
func (r *Registry) Renderer(kind string) (model.Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rd, ok := r.renderers[kind]
	return rd, ok
}

// Source returns the source factory registered under name.
func (r *Registry) Source(name string) (SourceFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.sources[name]
	return f, ok
}

// RendererKinds returns the registered figure kinds in sorted order.
func (r *Registry) RendererKinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.renderers))
	for k := range r.renderers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
