// Package card renders the "card" figure kind: static text with an optional
// link. Cards need no dataset and do not react to selections.
package card

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/params"
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/internal/table"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the card renderer.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRenderer("card", model.RenderFunc(Render))
}

// Card is the artifact of a card.
type Card struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
	// Rows is set when the card is backed by a dataset.
	Rows *int `json:"rows,omitempty"`
}

// Render builds the card from its text and href.
func Render(_ context.Context, data *table.Table, cfg map[string]any) (any, error) {
	var c struct {
		Text string `json:"text"`
		Href string `json:"href"`
	}
	if err := params.Decode(cfg, &c, true); err != nil {
		return nil, err
	}
	if c.Text == "" {
		return nil, fmt.Errorf("%w: card needs text", model.ErrConfiguration)
	}
	card := &Card{Kind: "card", Text: c.Text, Href: c.Href}
	if data != nil {
		n := data.Len()
		card.Rows = &n
	}
	return card, nil
}
