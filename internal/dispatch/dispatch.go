package dispatch

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/dataset"
	"github.com/specialistvlad/dashgridgo/internal/filter"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/params"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/internal/table"
	"github.com/specialistvlad/dashgridgo/internal/trigger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/specialistvlad/dashgridgo/internal/dispatch")

// Outcome is the result of resolving one target.
type Outcome struct {
	// Artifact is the rendered artifact, or a *model.ErrorMarker when Err is set.
	Artifact any
	// Data is the filtered table the artifact was rendered from.
	Data *table.Table
	Err  error
	// Degraded lists interaction errors that were tolerated.
	Degraded []error
}

// Failed reports whether the target could not be resolved.
func (o Outcome) Failed() bool { return o.Err != nil }

// Dispatcher resolves targets against shared, read-only registries.
type Dispatcher struct {
	reg      *registry.Registry
	datasets *dataset.Registry
	workers  int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkers bounds the number of targets resolved concurrently. Values
// below one mean one worker per CPU.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) { d.workers = n }
}

// New creates a Dispatcher.
func New(reg *registry.Registry, datasets *dataset.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{reg: reg, datasets: datasets}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = runtime.NumCPU()
	}
	return d
}

// Resolve runs one resolution pass and returns an outcome per target.
func (d *Dispatcher) Resolve(ctx context.Context, records []model.TriggerRecord, targets []string) map[string]Outcome {
	return d.run(ctx, "dispatch.Resolve", records, targets, true)
}

// FilteredData runs the pass up to and including the filter stage, without
// rendering. Outcomes carry Data but no Artifact.
func (d *Dispatcher) FilteredData(ctx context.Context, records []model.TriggerRecord, targets []string) map[string]Outcome {
	return d.run(ctx, "dispatch.FilteredData", records, targets, false)
}

// pass is the state shared by the targets of one pass. Both fields are
// read-only or safe for concurrent use.
type pass struct {
	classified trigger.Classified
	loads      *dataset.Pass
}

func (d *Dispatcher) run(ctx context.Context, name string, records []model.TriggerRecord, targets []string, render bool) map[string]Outcome {
	passID := uuid.NewString()
	ctx = ctxlog.With(ctx, "pass_id", passID)
	logger := ctxlog.FromContext(ctx)

	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("pass_id", passID),
		attribute.Int("targets", len(targets)),
		attribute.StringSlice("triggered_by", model.TriggeredBy(records)),
	))
	defer span.End()

	p := &pass{
		classified: trigger.Classify(d.reg, records),
		loads:      d.datasets.NewPass(),
	}
	logger.Debug("Classified triggers.",
		"filters", len(p.classified.Filters),
		"interactions", len(p.classified.Interactions),
		"parameters", len(p.classified.Parameters),
	)

	var (
		mu       sync.Mutex
		outcomes = make(map[string]Outcome, len(targets))
		g        errgroup.Group
	)
	g.SetLimit(d.workers)

	seen := make(map[string]bool, len(targets))
	for _, id := range targets {
		if seen[id] {
			continue
		}
		seen[id] = true
		g.Go(func() error {
			out := d.resolveTarget(ctx, p, id, render)
			mu.Lock()
			outcomes[id] = out
			mu.Unlock()
			// Failures are carried in the outcome so siblings keep running.
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, out := range outcomes {
		if out.Failed() {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("failed", failed), attribute.Int("dataset_loads", p.loads.Loads()))
	logger.Info("Resolution pass finished.", "targets", len(outcomes), "failed", failed, "dataset_loads", p.loads.Loads())
	return outcomes
}

func (d *Dispatcher) resolveTarget(ctx context.Context, p *pass, id string, render bool) (out Outcome) {
	ctx = ctxlog.With(ctx, "target", id)
	logger := ctxlog.FromContext(ctx)
	ctx, span := tracer.Start(ctx, "dispatch.target", trace.WithAttributes(attribute.String("target", id)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("panic while resolving %q: %v", id, r)}
		}
		if out.Err != nil {
			marker := model.NewErrorMarker(id, out.Err)
			out.Artifact = marker
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, marker.Kind)
			logger.Error("Target failed.", "kind", marker.Kind, "error", out.Err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return Outcome{Err: err}
	}

	c, ok := d.reg.Component(id)
	if !ok || !c.IsFigure() {
		return Outcome{Err: fmt.Errorf("%w: %q is not a registered figure", model.ErrConfiguration, id)}
	}
	renderer, ok := d.reg.Renderer(c.Type)
	if !ok {
		return Outcome{Err: fmt.Errorf("%w: no renderer for kind %q", model.ErrConfiguration, c.Type)}
	}

	applicable := trigger.ForTarget(d.reg, p.classified, id)
	resolved, err := params.Merge(c.Config, applicable.Parameters)
	if err != nil {
		return Outcome{Err: err}
	}
	logger.Debug("Merged parameters.", "parameters", len(applicable.Parameters), "load_params", resolved.LoadParams)

	var (
		data     *table.Table
		degraded []error
	)
	if c.Dataset != "" {
		data, err = p.loads.Load(ctx, c.Dataset, resolved.LoadParams)
		if err != nil {
			return Outcome{Err: err}
		}
		loaded := data.Len()
		data, err = filter.Apply(data, applicable.Filters)
		if err != nil {
			return Outcome{Err: err}
		}
		data, degraded = filter.ApplyInteractions(ctx, data, c, renderer, applicable.Interactions)
		logger.Debug("Filtered dataset.", "dataset", c.Dataset, "rows_loaded", loaded, "rows_kept", data.Len())
		span.SetAttributes(attribute.Int("rows", data.Len()))
	}

	out = Outcome{Data: data, Degraded: degraded}
	if !render {
		return out
	}

	artifact, err := renderer.Render(ctx, data, resolved.Config)
	if err != nil {
		return Outcome{Err: fmt.Errorf("%w: %q: %w", model.ErrRender, id, err), Degraded: degraded}
	}
	out.Artifact = artifact
	return out
}
