package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/dashgridgo/internal/config"
	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/dataset"
	"github.com/specialistvlad/dashgridgo/internal/dispatch"
	"github.com/specialistvlad/dashgridgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	datasets   *dataset.Registry
	dispatcher *dispatch.Dispatcher
}

// NewApp loads the dashboard declaration, registers the given modules (the
// core modules when none are given), builds the component and dataset
// registries and validates them. A dashboard that fails validation yields an
// error wrapping model.ErrConfiguration.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	dash, err := loader.Load(ctx, cfg.DashboardPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}
	logger.Debug("Dashboard loaded into unified model.", "pages", len(dash.Pages), "datasets", len(dash.Datasets))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.Populate(ctx, dash); err != nil {
		return nil, err
	}
	if err := reg.Validate(ctx, nil); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	datasets := dataset.NewRegistry()
	if err := reg.BuildDatasets(ctx, datasets); err != nil {
		if cerr := datasets.Close(); cerr != nil {
			logger.Warn("Failed to release datasets.", "error", cerr)
		}
		return nil, err
	}
	logger.Info("Dashboard ready.", "components", len(reg.Components()), "datasets", len(datasets.Names()))

	return &App{
		outW:       outW,
		logger:     logger,
		config:     cfg,
		registry:   reg,
		datasets:   datasets,
		dispatcher: dispatch.New(reg, datasets, dispatch.WithWorkers(cfg.Workers)),
	}, nil
}

// Registry returns the application's component registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Dispatcher returns the dispatcher resolving passes against the app's registries.
func (a *App) Dispatcher() *dispatch.Dispatcher {
	return a.dispatcher
}

// Close releases the resources held by dataset loaders.
func (a *App) Close() error {
	a.logger.Debug("Closing datasets.")
	return a.datasets.Close()
}

func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
