package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/dashgridgo/internal/app"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/testutil"
	"github.com/specialistvlad/dashgridgo/modules/datatable"
	"github.com/specialistvlad/dashgridgo/modules/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesApp(t *testing.T) *app.App {
	t.Helper()
	return testutil.MustBuildApp(t, map[string]string{"dashboard.hcl": testutil.SalesDashboard})
}

func TestNewApp(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		a := salesApp(t)
		ids := []string{}
		for _, c := range a.Registry().Components() {
			ids = append(ids, c.ID)
		}
		assert.Equal(t, []string{"by_region", "detail", "intro", "region_filter", "amount_range", "top", "download"}, ids)
	})

	t.Run("error cases", func(t *testing.T) {
		res := testutil.BuildApp(t, map[string]string{"dashboard.hcl": `
page "p" {
  component "graph" "g" {
    dataset = "missing"
  }
  control "dropdown" "d" {
    action "filter" {
      column  = "region"
      targets = ["nope"]
    }
  }
}
`})
		require.Error(t, res.Err)
		assert.True(t, errors.Is(res.Err, model.ErrConfiguration))
		assert.Contains(t, res.Err.Error(), "unknown dataset 'missing'")
		assert.Contains(t, res.Err.Error(), "nope")

		res = testutil.BuildApp(t, map[string]string{"README.md": "no dashboards here"})
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "failed to load dashboard")
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	a := salesApp(t)

	t.Run("filter narrows every default target", func(t *testing.T) {
		ev := &app.Event{Triggers: []app.TriggerEntry{{ID: "region_filter", Value: []any{"EU"}, Triggered: true}}}
		assert.Equal(t, []string{"by_region", "detail"}, a.Targets(ev))

		results := a.Resolve(ctx, ev)
		require.Len(t, results, 2)

		fig, ok := results["by_region"].Artifact.(*graph.Figure)
		require.True(t, ok, "artifact: %#v", results["by_region"])
		require.Len(t, fig.Traces, 1)
		assert.Equal(t, []any{"EU", "EU"}, fig.Traces[0].X)

		grid, ok := results["detail"].Artifact.(*datatable.Grid)
		require.True(t, ok)
		assert.Equal(t, 2, grid.TotalRows)
	})

	t.Run("parameter with integer value", func(t *testing.T) {
		ev := &app.Event{Triggers: []app.TriggerEntry{{ID: "top", Value: 1, Triggered: true}}}
		results := a.Resolve(ctx, ev)
		require.Len(t, results, 1)

		fig := results["by_region"].Artifact.(*graph.Figure)
		assert.Equal(t, []any{30.0}, fig.Traces[0].Y)
	})

	t.Run("click interaction narrows the target", func(t *testing.T) {
		ev := &app.Event{Triggers: []app.TriggerEntry{{
			ID:        "by_region",
			Property:  "clickData",
			Value:     map[string]any{"points": []any{map[string]any{"customdata": []any{"US"}}}},
			Triggered: true,
		}}}
		results := a.Resolve(ctx, ev)
		require.Contains(t, results, "detail")

		grid := results["detail"].Artifact.(*datatable.Grid)
		assert.Equal(t, [][]any{{"US", "apples", 20.0}}, grid.Rows)
		assert.Empty(t, results["detail"].Degraded)
	})

	t.Run("initial load refreshes every figure", func(t *testing.T) {
		ev := &app.Event{}
		assert.Equal(t, []string{"by_region", "detail", "intro"}, a.Targets(ev))
		for id, r := range a.Resolve(ctx, ev) {
			assert.Nil(t, r.Error, id)
			assert.NotNil(t, r.Artifact, id)
		}
	})

	t.Run("failed target becomes an error marker", func(t *testing.T) {
		ev := &app.Event{Targets: []string{"detail", "ghost"}}
		results := a.Resolve(ctx, ev)
		require.NotNil(t, results["ghost"].Error)
		assert.Equal(t, "configuration", results["ghost"].Error.Kind)
		assert.Nil(t, results["detail"].Error)
	})
}

func TestExport(t *testing.T) {
	a := salesApp(t)
	dir := t.TempDir()

	t.Run("success case", func(t *testing.T) {
		ev := &app.Event{Triggers: []app.TriggerEntry{
			{ID: "download", Value: 1, Triggered: true},
			{ID: "region_filter", Value: []any{"APAC"}},
		}}
		written, err := a.Export(context.Background(), ev, "csv", dir)
		require.NoError(t, err)
		require.Equal(t, []string{filepath.Join(dir, "detail.csv")}, written)

		data, err := os.ReadFile(written[0])
		require.NoError(t, err)
		assert.Equal(t, "region,product,amount\nAPAC,pears,5\n", string(data))
	})

	t.Run("error cases", func(t *testing.T) {
		_, err := a.Export(context.Background(), &app.Event{Targets: []string{"detail"}}, "xlsx", dir)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrConfiguration))
	})
}

func TestHandler(t *testing.T) {
	srv := httptest.NewServer(salesApp(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := `{"triggers":[{"id":"region_filter","value":["US"],"triggered":true}]}`
	resp, err = http.Post(srv.URL+"/resolve", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Post(srv.URL+"/resolve", "application/json", strings.NewReader(`{"triggers":[{"value":1}]}`))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)

	oversized := `{"triggers":[{"id":"region_filter","value":"` + strings.Repeat("x", 1<<20) + `"}]}`
	resp3, err := http.Post(srv.URL+"/resolve", "application/json", strings.NewReader(oversized))
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp3.StatusCode)
}

func TestResolve_MixedDatasets(t *testing.T) {
	const dashboard = `
dataset "sales" {
  source = "inline"
  args = {
    columns = ["region", "amount"]
    rows    = [["EU", 10], ["US", 20]]
  }
}

dataset "people" {
  source = "inline"
  args = {
    columns = ["name"]
    rows    = [["ada"], ["linus"]]
  }
}

page "p" {
  component "graph" "by_region" {
    dataset = "sales"
    config  = { x = "region", y = "amount", type = "bar" }
  }

  component "table" "roster" {
    dataset = "people"
    config  = { columns = ["name"] }
  }

  control "checklist" "region_filter" {
    options = ["EU", "US"]
    action "filter" {
      column = "region"
    }
  }

  control "dropdown" "strict_region" {
    options = ["EU", "US"]
    action "filter" {
      column  = "region"
      targets = ["roster"]
    }
  }
}
`
	ctx := context.Background()
	a := testutil.MustBuildApp(t, map[string]string{"dashboard.hcl": dashboard})

	t.Run("success case", func(t *testing.T) {
		ev := &app.Event{Triggers: []app.TriggerEntry{{ID: "region_filter", Value: []any{"EU"}, Triggered: true}}}
		assert.Equal(t, []string{"by_region", "roster"}, a.Targets(ev))

		results := a.Resolve(ctx, ev)
		require.Nil(t, results["by_region"].Error)
		fig := results["by_region"].Artifact.(*graph.Figure)
		assert.Equal(t, []any{"EU"}, fig.Traces[0].X)

		require.Nil(t, results["roster"].Error, "a defaulted filter passes over a dataset without its column")
		grid := results["roster"].Artifact.(*datatable.Grid)
		assert.Equal(t, 2, grid.TotalRows)
	})

	t.Run("error cases", func(t *testing.T) {
		ev := &app.Event{Triggers: []app.TriggerEntry{{ID: "strict_region", Value: "EU", Triggered: true}}}
		results := a.Resolve(ctx, ev)
		require.NotNil(t, results["roster"].Error)
		assert.Equal(t, "configuration", results["roster"].Error.Kind)
	})
}
