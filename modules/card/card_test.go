package card

import (
	"context"
	"testing"

	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	got, err := Render(context.Background(), nil, map[string]any{"text": "Hello", "href": "/sales"})
	require.NoError(t, err)
	assert.Equal(t, &Card{Kind: "card", Text: "Hello", Href: "/sales"}, got)

	_, err = Render(context.Background(), nil, map[string]any{})
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestModule(t *testing.T) {
	reg := registry.New()
	(&Module{}).Register(reg)
	rd, ok := reg.Renderer("card")
	require.True(t, ok)
	_, interactable := rd.(model.Interactable)
	assert.False(t, interactable)
}
