package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/dashgridgo/internal/dataset"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/params"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type artifact struct {
	Rows   []map[string]any
	Config map[string]any
}

// echoRenderer returns what it was given and narrows by a clicked region.
type echoRenderer struct{}

func (echoRenderer) Render(_ context.Context, data *table.Table, cfg map[string]any) (any, error) {
	if cfg["explode"] == true {
		panic("renderer exploded")
	}
	if cfg["fail"] == true {
		return nil, errors.New("cannot draw")
	}
	a := artifact{Config: cfg}
	if data != nil {
		a.Rows = data.Records()
	}
	return a, nil
}

func (echoRenderer) HandleInteraction(_ context.Context, data *table.Table, sel model.Selection) (*table.Table, error) {
	point, ok := sel.Payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T", sel.Payload)
	}
	return data.Where("region", func(v any) (bool, error) { return v == point["region"], nil })
}

type fixture struct {
	reg   *registry.Registry
	ds    *dataset.Registry
	loads atomic.Int32
	// lastParams holds the parameters of the latest sales load.
	lastParams atomic.Value
}

func newFixture(t *testing.T, components ...*model.Component) *fixture {
	t.Helper()
	f := &fixture{reg: registry.New(), ds: dataset.NewRegistry()}
	f.reg.RegisterRenderer("graph", echoRenderer{})
	for _, c := range components {
		require.NoError(t, f.reg.AddComponent(c))
	}

	salesTable := table.MustNew([]string{"region", "amount"}, [][]any{
		{"EU", 10}, {"US", 20}, {"APAC", 5},
	})
	require.NoError(t, f.ds.Register("sales", dataset.LoaderFunc(func(_ context.Context, p map[string]any) (*table.Table, error) {
		f.loads.Add(1)
		f.lastParams.Store(p)
		if n, ok := p["top_n"].(float64); ok {
			return salesTable.Head(int(n)), nil
		}
		return salesTable, nil
	})))
	require.NoError(t, f.ds.Register("broken", dataset.LoaderFunc(func(context.Context, map[string]any) (*table.Table, error) {
		return nil, errors.New("connection refused")
	})))
	return f
}

func figure(id, ds string, cfg map[string]any, actions ...model.Action) *model.Component {
	if cfg == nil {
		cfg = map[string]any{}
	}
	return &model.Component{ID: id, PageID: "p", Kind: model.Figure, Type: "graph", Dataset: ds, Config: cfg, Actions: actions}
}

func control(id string, options []any, actions ...model.Action) *model.Component {
	return &model.Component{ID: id, PageID: "p", Kind: model.Control, Type: "dropdown", Property: "value", Options: options, Actions: actions}
}

func rows(t *testing.T, out Outcome) []map[string]any {
	t.Helper()
	require.NoError(t, out.Err)
	a, ok := out.Artifact.(artifact)
	require.True(t, ok, "artifact has type %T", out.Artifact)
	return a.Rows
}

func TestResolve_FilterScenario(t *testing.T) {
	f := newFixture(t,
		figure("C1", "sales", nil),
		control("region", nil, model.Action{Kind: model.ActionFilter, Column: "region", Targets: []string{"C1"}}),
	)
	d := New(f.reg, f.ds, WithWorkers(2))

	got := d.Resolve(context.Background(), []model.TriggerRecord{
		{ComponentID: "region", Property: "value", Value: []any{"EU", "US"}, Triggered: true},
	}, []string{"C1"})

	want := []map[string]any{
		{"region": "EU", "amount": 10.0},
		{"region": "US", "amount": 20.0},
	}
	if diff := cmp.Diff(want, rows(t, got["C1"])); diff != "" {
		t.Errorf("filtered rows mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_SeveralActionsOnOneControl(t *testing.T) {
	f := newFixture(t,
		figure("C1", "sales", nil),
		figure("C2", "sales", nil),
		control("region", nil,
			model.Action{Kind: model.ActionFilter, Column: "region", Targets: []string{"C1"}},
			model.Action{Kind: model.ActionFilter, Column: "region", Targets: []string{"C2"}},
		),
		control("label", nil,
			model.Action{Kind: model.ActionParameter, Targets: []string{"C1.title"}},
			model.Action{Kind: model.ActionParameter, Targets: []string{"C1.subtitle"}},
		),
	)
	d := New(f.reg, f.ds, WithWorkers(2))

	got := d.Resolve(context.Background(), []model.TriggerRecord{
		{ComponentID: "region", Value: []any{"EU"}, Triggered: true},
		{ComponentID: "label", Value: "Sales"},
	}, []string{"C1", "C2"})

	want := []map[string]any{{"region": "EU", "amount": 10.0}}
	for _, id := range []string{"C1", "C2"} {
		if diff := cmp.Diff(want, rows(t, got[id])); diff != "" {
			t.Errorf("%s rows mismatch (-want +got):\n%s", id, diff)
		}
	}
	assert.Equal(t, map[string]any{"title": "Sales", "subtitle": "Sales"}, got["C1"].Artifact.(artifact).Config)
	assert.Empty(t, got["C2"].Artifact.(artifact).Config)
}

func TestResolve_Parameters(t *testing.T) {
	f := newFixture(t,
		figure("C1", "sales", map[string]any{"x": "region", "data_frame": map[string]any{"top_n": 3.0}}),
		control("top", []any{1.0, 2.0, 3.0}, model.Action{Kind: model.ActionParameter, Targets: []string{"C1.data_frame.top_n", "C1.layout.title"}}),
		control("cats", []any{"A", "B", "C"}, model.Action{Kind: model.ActionParameter, Targets: []string{"C1.categories"}}),
	)
	d := New(f.reg, f.ds)

	got := d.Resolve(context.Background(), []model.TriggerRecord{
		{ComponentID: "top", Value: 2.0, Triggered: true},
		{ComponentID: "cats", Value: "all"},
	}, []string{"C1"})

	out := got["C1"]
	assert.Len(t, rows(t, out), 2)
	cfg := out.Artifact.(artifact).Config

	assert.NotContains(t, cfg, "data_frame")
	assert.Equal(t, []any{"A", "B", "C"}, cfg["categories"])
	assert.Equal(t, map[string]any{"title": 2.0}, cfg["layout"])
	assert.Equal(t, map[string]any{"top_n": 2.0}, f.lastParams.Load())

	c, _ := f.reg.Component("C1")
	assert.Equal(t, map[string]any{"x": "region", "data_frame": map[string]any{"top_n": 3.0}}, c.Config, "declared config must not change")
}

func TestResolve_TargetIndependence(t *testing.T) {
	f := newFixture(t,
		figure("ok", "sales", nil),
		figure("bad", "broken", nil),
		figure("boom", "sales", map[string]any{"explode": true}),
		figure("ugly", "sales", map[string]any{"fail": true}),
	)
	d := New(f.reg, f.ds, WithWorkers(4))

	got := d.Resolve(context.Background(), nil, []string{"ok", "bad", "boom", "ugly", "ghost", "ok"})
	require.Len(t, got, 5)

	assert.Len(t, rows(t, got["ok"]), 3)

	for id, kind := range map[string]string{
		"bad":   "loader",
		"boom":  "internal",
		"ugly":  "render",
		"ghost": "configuration",
	} {
		out := got[id]
		require.True(t, out.Failed(), id)
		marker, ok := out.Artifact.(*model.ErrorMarker)
		require.True(t, ok, id)
		assert.Equal(t, kind, marker.Kind, id)
		assert.Equal(t, id, marker.Target)
	}
	assert.ErrorIs(t, got["bad"].Err, model.ErrLoader)
}

func TestResolve_Interactions(t *testing.T) {
	interactsWithC2 := model.Action{Kind: model.ActionFilterInteraction, Targets: []string{"C2"}}
	f := newFixture(t,
		figure("S1", "sales", nil, interactsWithC2),
		figure("S2", "sales", nil, interactsWithC2),
		figure("C2", "sales", nil),
	)
	d := New(f.reg, f.ds)

	t.Run("only the fired source applies", func(t *testing.T) {
		got := d.Resolve(context.Background(), []model.TriggerRecord{
			{ComponentID: "S1", Property: "clickData", Value: map[string]any{"region": "US"}, Triggered: true},
			{ComponentID: "S2", Property: "clickData", Value: nil},
		}, []string{"C2"})

		assert.Equal(t, []map[string]any{{"region": "US", "amount": 20.0}}, rows(t, got["C2"]))
	})

	t.Run("bad payload degrades", func(t *testing.T) {
		got := d.Resolve(context.Background(), []model.TriggerRecord{
			{ComponentID: "S1", Property: "clickData", Value: "not a point", Triggered: true},
		}, []string{"C2"})

		out := got["C2"]
		assert.Len(t, rows(t, out), 3)
		require.Len(t, out.Degraded, 1)
		assert.ErrorIs(t, out.Degraded[0], model.ErrInteraction)
	})
}

func TestResolve_MemoizesLoads(t *testing.T) {
	f := newFixture(t, figure("A", "sales", nil), figure("B", "sales", nil), figure("C", "sales", nil))
	d := New(f.reg, f.ds, WithWorkers(3))

	got := d.Resolve(context.Background(), nil, []string{"A", "B", "C"})
	require.Len(t, got, 3)
	assert.Equal(t, int32(1), f.loads.Load())

	d.Resolve(context.Background(), nil, []string{"A"})
	assert.Equal(t, int32(2), f.loads.Load(), "cache must not outlive a pass")
}

func TestFilteredData(t *testing.T) {
	f := newFixture(t,
		figure("C1", "sales", map[string]any{"explode": true}),
		control("region", nil, model.Action{Kind: model.ActionFilter, Column: "region", Targets: []string{"C1"}}),
	)
	d := New(f.reg, f.ds)

	got := d.FilteredData(context.Background(), []model.TriggerRecord{
		{ComponentID: "region", Value: "APAC"},
	}, []string{"C1"})

	out := got["C1"]
	require.NoError(t, out.Err, "rendering is skipped")
	assert.Nil(t, out.Artifact)
	assert.Equal(t, 1, out.Data.Len())
}

func TestResolve_ConcurrentPasses(t *testing.T) {
	declared := map[string]any{"layout": map[string]any{"title": "declared"}, "data_frame": map[string]any{"top_n": 3.0}}
	f := newFixture(t,
		figure("C1", "sales", declared),
		control("region", nil, model.Action{Kind: model.ActionFilter, Column: "region", Targets: []string{"C1"}}),
		control("title", nil, model.Action{Kind: model.ActionParameter, Targets: []string{"C1.layout.title", "C1.data_frame.top_n"}}),
	)
	c, _ := f.reg.Component("C1")
	before := params.DeepCopy(c.Config)
	d := New(f.reg, f.ds, WithWorkers(2))

	regions := []string{"EU", "US", "APAC"}
	amounts := map[string]float64{"EU": 10, "US": 20, "APAC": 5}

	const passes = 32
	var wg sync.WaitGroup
	errs := make(chan string, 2*passes)
	for i := range passes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			region := regions[i%len(regions)]
			got := d.Resolve(context.Background(), []model.TriggerRecord{
				{ComponentID: "region", Value: []any{region}, Triggered: i%2 == 0},
				{ComponentID: "title", Value: float64(i + 3), Triggered: i%2 == 1},
			}, []string{"C1"})

			out := got["C1"]
			if out.Err != nil {
				errs <- fmt.Sprintf("pass %d: %v", i, out.Err)
				return
			}
			a := out.Artifact.(artifact)
			want := []map[string]any{{"region": region, "amount": amounts[region]}}
			if diff := cmp.Diff(want, a.Rows); diff != "" {
				errs <- fmt.Sprintf("pass %d rows (-want +got):\n%s", i, diff)
			}
			if diff := cmp.Diff(map[string]any{"layout": map[string]any{"title": float64(i + 3)}}, a.Config); diff != "" {
				errs <- fmt.Sprintf("pass %d config (-want +got):\n%s", i, diff)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}

	if diff := cmp.Diff(before, c.Config); diff != "" {
		t.Errorf("declared config changed (-before +after):\n%s", diff)
	}
}
