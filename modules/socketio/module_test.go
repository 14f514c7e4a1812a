package socketio

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("success case", func(t *testing.T) {
		loader, err := New(ctx, map[string]any{
			"url":        "http://localhost:3000/socket.io/",
			"emit_event": "load",
			"on_event":   "table",
			"timeout":    "250ms",
		})
		require.NoError(t, err)

		l := loader.(*Loader)
		assert.Equal(t, "http://localhost:3000", l.baseURL)
		assert.Equal(t, "/socket.io/", l.path)
		assert.Equal(t, "/", l.args.Namespace)
		assert.Equal(t, 250*time.Millisecond, l.timeout)
	})

	t.Run("error cases", func(t *testing.T) {
		for name, args := range map[string]map[string]any{
			"missing events": {"url": "http://localhost:3000"},
			"relative url":   {"url": "/socket.io", "emit_event": "a", "on_event": "b"},
			"bad timeout":    {"url": "http://localhost:3000", "emit_event": "a", "on_event": "b", "timeout": "later"},
		} {
			_, err := New(ctx, args)
			assert.ErrorIs(t, err, model.ErrConfiguration, name)
		}
	})
}

func TestModule(t *testing.T) {
	reg := registry.New()
	(&Module{}).Register(reg)
	_, ok := reg.Source("socketio")
	assert.True(t, ok)
}
