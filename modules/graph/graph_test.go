package graph

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sales() *table.Table {
	return table.MustNew([]string{"region", "channel", "amount"}, [][]any{
		{"EU", "web", 10},
		{"US", "web", 20},
		{"APAC", "store", 5},
		{"EU", "store", 7},
	})
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	r := &Renderer{}

	t.Run("color splits traces", func(t *testing.T) {
		got, err := r.Render(ctx, sales(), map[string]any{
			"x": "region", "y": "amount", "color": "channel", "custom_data": []any{"region"},
			"height": 400.0,
		})
		require.NoError(t, err)

		want := &Figure{
			Kind: "graph",
			Type: "bar",
			Traces: []Trace{
				{Name: "web", X: []any{"EU", "US"}, Y: []any{10.0, 20.0}, CustomData: [][]any{{"EU"}, {"US"}}},
				{Name: "store", X: []any{"APAC", "EU"}, Y: []any{5.0, 7.0}, CustomData: [][]any{{"APAC"}, {"EU"}}},
			},
			Layout: map[string]any{"height": 400.0},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("figure mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("top_n keeps the largest values", func(t *testing.T) {
		got, err := r.Render(ctx, sales(), map[string]any{"x": "region", "y": "amount", "type": "line", "top_n": 2.0})
		require.NoError(t, err)
		fig := got.(*Figure)
		require.Len(t, fig.Traces, 1)
		assert.Equal(t, []any{20.0, 10.0}, fig.Traces[0].Y)
		assert.Nil(t, fig.Layout)
	})

	t.Run("error cases", func(t *testing.T) {
		for name, cfg := range map[string]map[string]any{
			"unknown column": {"x": "country", "y": "amount"},
			"missing y":      {"x": "region"},
			"bad type":       {"x": "region", "y": "amount", "type": "pie"},
			"negative top_n": {"x": "region", "y": "amount", "top_n": -1.0},
		} {
			_, err := r.Render(ctx, sales(), cfg)
			assert.ErrorIs(t, err, model.ErrConfiguration, name)
		}
		_, err := r.Render(ctx, nil, map[string]any{"x": "region", "y": "amount"})
		assert.ErrorIs(t, err, model.ErrConfiguration)
	})
}

func TestModule(t *testing.T) {
	reg := registry.New()
	(&Module{}).Register(reg)
	rd, ok := reg.Renderer("graph")
	require.True(t, ok)
	_, interactable := rd.(model.Interactable)
	assert.True(t, interactable)
}
