package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingLoader(calls *atomic.Int32) Loader {
	return LoaderFunc(func(_ context.Context, params map[string]any) (*table.Table, error) {
		calls.Add(1)
		return table.MustNew([]string{"n"}, [][]any{{params["n"]}}), nil
	})
}

func TestRegister(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("b", Static(table.MustNew([]string{"x"}, nil))))
		require.NoError(t, r.Register("a", Static(table.MustNew([]string{"x"}, nil))))

		assert.True(t, r.Has("a"))
		assert.False(t, r.Has("c"))
		assert.Equal(t, []string{"a", "b"}, r.Names())
	})

	t.Run("error cases", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("a", Static(nil)))

		err := r.Register("a", Static(nil))
		assert.ErrorIs(t, err, model.ErrConfiguration)
		assert.ErrorContains(t, err, "already registered")

		assert.ErrorIs(t, r.Register("", Static(nil)), model.ErrConfiguration)
		assert.ErrorIs(t, r.Register("b", nil), model.ErrConfiguration)
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("passes params to loader", func(t *testing.T) {
		var calls atomic.Int32
		r := NewRegistry()
		require.NoError(t, r.Register("nums", countingLoader(&calls)))

		got, err := r.Load(ctx, "nums", map[string]any{"n": 3})
		require.NoError(t, err)
		v, err := got.Value(0, "n")
		require.NoError(t, err)
		assert.Equal(t, 3.0, v)
	})

	t.Run("unknown dataset is a configuration error", func(t *testing.T) {
		_, err := NewRegistry().Load(ctx, "missing", nil)
		assert.ErrorIs(t, err, model.ErrConfiguration)
	})

	t.Run("loader failure is a loader error", func(t *testing.T) {
		boom := errors.New("disk on fire")
		r := NewRegistry()
		require.NoError(t, r.Register("bad", LoaderFunc(func(context.Context, map[string]any) (*table.Table, error) {
			return nil, boom
		})))

		_, err := r.Load(ctx, "bad", nil)
		assert.ErrorIs(t, err, model.ErrLoader)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("nil table is a loader error", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("nil", Static(nil)))
		_, err := r.Load(ctx, "nil", nil)
		assert.ErrorIs(t, err, model.ErrLoader)
	})
}

func TestPass(t *testing.T) {
	ctx := context.Background()

	t.Run("memoizes identical loads", func(t *testing.T) {
		var calls atomic.Int32
		r := NewRegistry()
		require.NoError(t, r.Register("nums", countingLoader(&calls)))
		p := r.NewPass()

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := p.Load(ctx, "nums", map[string]any{"n": 1, "m": "x"})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		_, err := p.Load(ctx, "nums", map[string]any{"m": "x", "n": 1})
		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, 1, p.Loads())

		_, err = p.Load(ctx, "nums", map[string]any{"n": 2})
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("failures are not cached", func(t *testing.T) {
		var calls atomic.Int32
		r := NewRegistry()
		require.NoError(t, r.Register("flaky", LoaderFunc(func(context.Context, map[string]any) (*table.Table, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("transient")
			}
			return table.MustNew([]string{"x"}, nil), nil
		})))
		p := r.NewPass()

		_, err := p.Load(ctx, "flaky", nil)
		require.Error(t, err)
		_, err = p.Load(ctx, "flaky", nil)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("passes do not share cache", func(t *testing.T) {
		var calls atomic.Int32
		r := NewRegistry()
		require.NoError(t, r.Register("nums", countingLoader(&calls)))

		_, err := r.NewPass().Load(ctx, "nums", nil)
		require.NoError(t, err)
		_, err = r.NewPass().Load(ctx, "nums", nil)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})
}
