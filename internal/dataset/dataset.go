package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/table"
)

// Loader produces a table from zero or more named parameters. Loaders must be
// safe for concurrent use and free of observable side effects.
type Loader interface {
	Load(ctx context.Context, params map[string]any) (*table.Table, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, params map[string]any) (*table.Table, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, params map[string]any) (*table.Table, error) {
	return f(ctx, params)
}

// Static returns a loader that always yields t, ignoring parameters.
func Static(t *table.Table) Loader {
	return LoaderFunc(func(context.Context, map[string]any) (*table.Table, error) {
		return t, nil
	})
}

// Registry maps dataset names to loaders.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
}

// NewRegistry creates an empty dataset registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register binds name to loader. Registering the same name twice is an error.
func (r *Registry) Register(name string, loader Loader) error {
	if name == "" {
		return fmt.Errorf("%w: dataset name must not be empty", model.ErrConfiguration)
	}
	if loader == nil {
		return fmt.Errorf("%w: dataset %q has a nil loader", model.ErrConfiguration, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.loaders[name]; exists {
		return fmt.Errorf("%w: dataset %q already registered", model.ErrConfiguration, name)
	}
	r.loaders[name] = loader
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loaders[name]
	return ok
}

// Names returns the registered dataset names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.loaders))
	for name := range r.loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load invokes the loader registered under name. An unknown name is a
// configuration error; a failing loader is reported as a loader error.
func (r *Registry) Load(ctx context.Context, name string, params map[string]any) (*table.Table, error) {
	r.mu.RLock()
	loader, ok := r.loaders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: dataset %q is not registered", model.ErrConfiguration, name)
	}

	ctxlog.FromContext(ctx).Debug("Loading dataset.", "dataset", name, "params", params)
	t, err := loader.Load(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: dataset %q: %w", model.ErrLoader, name, err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: dataset %q: loader returned no table", model.ErrLoader, name)
	}
	return t, nil
}

// Close releases loaders that hold resources, such as database handles.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for name, loader := range r.loaders {
		if c, ok := loader.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing dataset %q: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}
