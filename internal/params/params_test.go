package params

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func param(control *model.Component, value any, paths ...string) trigger.Match {
	return trigger.Match{
		Record:    model.TriggerRecord{ComponentID: control.ID, Value: value},
		Component: control,
		Paths:     paths,
	}
}

func TestMerge(t *testing.T) {
	slider := &model.Component{ID: "slider", Kind: model.Control}

	t.Run("path isolation", func(t *testing.T) {
		base := map[string]any{"x": map[string]any{"y": 1.0, "z": 2.0}}

		got, err := Merge(base, []trigger.Match{param(slider, 5.0, "x.y")})
		require.NoError(t, err)

		want := map[string]any{"x": map[string]any{"y": 5.0, "z": 2.0}}
		if diff := cmp.Diff(want, got.Config); diff != "" {
			t.Errorf("merged config mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, 1.0, base["x"].(map[string]any)["y"], "base must not be mutated")
	})

	t.Run("creates absent paths", func(t *testing.T) {
		got, err := Merge(nil, []trigger.Match{param(slider, "dark", "layout.theme.name")})
		require.NoError(t, err)
		want := map[string]any{"layout": map[string]any{"theme": map[string]any{"name": "dark"}}}
		if diff := cmp.Diff(want, got.Config); diff != "" {
			t.Errorf("merged config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("data_frame parameters go to the loader", func(t *testing.T) {
		base := map[string]any{"x": "region", "data_frame": map[string]any{"top_n": 10.0, "year": 2023.0}}

		got, err := Merge(base, []trigger.Match{param(slider, 3.0, "data_frame.top_n", "title")})
		require.NoError(t, err)

		assert.NotContains(t, got.Config, "data_frame")
		assert.Equal(t, map[string]any{"x": "region", "title": 3.0}, got.Config)
		assert.Equal(t, map[string]any{"top_n": 3.0, "year": 2023.0}, got.LoadParams)
		assert.Equal(t, 10.0, base["data_frame"].(map[string]any)["top_n"])
	})

	t.Run("targets never share assigned values", func(t *testing.T) {
		list := &model.Component{ID: "cats", Options: []any{"A", "B"}}
		m := param(list, "ALL", "categories")

		a, err := Merge(nil, []trigger.Match{m})
		require.NoError(t, err)
		b, err := Merge(nil, []trigger.Match{m})
		require.NoError(t, err)

		a.Config["categories"].([]any)[0] = "mutated"
		assert.Equal(t, []any{"A", "B"}, b.Config["categories"])
		assert.Equal(t, []any{"A", "B"}, list.Options)
	})

	t.Run("error cases", func(t *testing.T) {
		base := map[string]any{"title": "Sales"}
		_, err := Merge(base, []trigger.Match{param(slider, 1.0, "title.size")})
		assert.ErrorIs(t, err, model.ErrConfiguration)

		_, err = Merge(nil, []trigger.Match{param(slider, 1.0, "data_frame")})
		assert.ErrorIs(t, err, model.ErrConfiguration)
	})
}

func TestResolveValue(t *testing.T) {
	control := &model.Component{ID: "c", Options: []any{"A", "B", "C"}}

	assert.Equal(t, []any{"A", "B", "C"}, ResolveValue(control, "all"))
	assert.Equal(t, []any{"A", "B", "C"}, ResolveValue(control, []any{"ALL"}))
	assert.Nil(t, ResolveValue(control, "NONE"))
	assert.Equal(t, []any{"A"}, ResolveValue(control, []any{"A", "NONE"}))
	assert.Equal(t, []any{nil}, ResolveValue(control, []any{"NONE"}))
	assert.Equal(t, 7.0, ResolveValue(control, 7.0))
}

func TestSetPath(t *testing.T) {
	tree := map[string]any{"a": nil}
	require.NoError(t, SetPath(tree, "a.b", 1))
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1}}, tree)

	assert.ErrorIs(t, SetPath(tree, "a..c", 1), model.ErrConfiguration)
	assert.ErrorIs(t, SetPath(tree, "a.b.c", 1), model.ErrConfiguration)
}

func TestDecode(t *testing.T) {
	var out struct {
		URL     string   `json:"url"`
		Columns []string `json:"columns"`
		Limit   int      `json:"limit"`
	}

	require.NoError(t, Decode(map[string]any{"url": "http://x", "columns": []any{"a"}, "limit": 3.0}, &out, true))
	assert.Equal(t, "http://x", out.URL)
	assert.Equal(t, []string{"a"}, out.Columns)
	assert.Equal(t, 3, out.Limit)

	assert.ErrorIs(t, Decode(map[string]any{"nope": 1}, &out, true), model.ErrConfiguration)
	assert.NoError(t, Decode(map[string]any{"nope": 1}, &out, false))
	assert.ErrorIs(t, Decode(map[string]any{"limit": "x"}, &out, false), model.ErrConfiguration)
}
