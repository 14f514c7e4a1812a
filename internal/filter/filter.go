// Package filter narrows a loaded dataset by the column-predicate filters and
// the cross-component selections that apply to a target.
package filter

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dashgridgo/internal/ctxlog"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/specialistvlad/dashgridgo/internal/params"
	"github.com/specialistvlad/dashgridgo/internal/table"
	"github.com/specialistvlad/dashgridgo/internal/trigger"
)

// Apply narrows t by each filter in order. Filters compose with logical AND.
// A filter whose value is the ALL sentinel is skipped. NONE entries in a
// selection are literal nulls to match. A filter whose targets were defaulted
// from the page passes over a dataset that lacks its column; a declared target
// without the column is a configuration error.
func Apply(t *table.Table, filters []trigger.Match) (*table.Table, error) {
	out := t
	for _, m := range filters {
		v := m.Record.Value
		if model.IsAll(v) {
			continue
		}
		col := m.Action.Column
		if !out.Has(col) {
			if m.Action.Implicit {
				continue
			}
			return nil, fmt.Errorf("%w: filter %q: %w %q", model.ErrConfiguration, m.Component.ID, table.ErrUnknownColumn, col)
		}

		var (
			keep func(any) (bool, error)
			err  error
		)
		switch m.Action.Operator {
		case model.OpBetween:
			keep, err = between(v)
		default:
			keep = isIn(v)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: filter %q: %w", model.ErrConfiguration, m.Component.ID, err)
		}

		out, err = out.Where(col, keep)
		if err != nil {
			return nil, fmt.Errorf("%w: filter %q on column %q: %w", model.ErrConfiguration, m.Component.ID, col, err)
		}
	}
	return out, nil
}

func isIn(v any) func(any) (bool, error) {
	selected := model.AsList(v)
	for i, s := range selected {
		if model.IsNone(s) {
			selected[i] = nil
		} else {
			selected[i] = table.Normalize(s)
		}
	}
	return func(cell any) (bool, error) {
		for _, s := range selected {
			if table.Equal(cell, s) {
				return true, nil
			}
		}
		return false, nil
	}
}

// between keeps cells within [lo, hi], both inclusive. A nil bound is open.
// Null cells never fall within a range.
func between(v any) (func(any) (bool, error), error) {
	bounds := model.AsList(v)
	if len(bounds) != 2 {
		return nil, fmt.Errorf("range filter expects [min, max], got %v", v)
	}
	lo, hi := table.Normalize(bounds[0]), table.Normalize(bounds[1])
	if model.IsNone(lo) {
		lo = nil
	}
	if model.IsNone(hi) {
		hi = nil
	}
	return func(cell any) (bool, error) {
		if cell == nil {
			return false, nil
		}
		if lo != nil {
			c, err := table.Compare(cell, lo)
			if err != nil {
				return false, err
			}
			if c < 0 {
				return false, nil
			}
		}
		if hi != nil {
			c, err := table.Compare(cell, hi)
			if err != nil {
				return false, err
			}
			if c > 0 {
				return false, nil
			}
		}
		return true, nil
	}, nil
}

// ApplyInteractions routes each interaction to the target's own handler.
// A renderer without the Interactable capability, or a handler that rejects
// a payload, degrades the target: the data from before that interaction is
// kept and the problem is returned alongside it.
func ApplyInteractions(ctx context.Context, t *table.Table, target *model.Component, renderer model.Renderer, interactions []trigger.Match) (*table.Table, []error) {
	if len(interactions) == 0 {
		return t, nil
	}
	logger := ctxlog.FromContext(ctx)

	handler, ok := renderer.(model.Interactable)
	if !ok {
		err := fmt.Errorf("%w: %q renders kind %q, which cannot handle selections", model.ErrInteraction, target.ID, target.Type)
		logger.Warn("Ignoring interactions.", "target", target.ID, "error", err)
		return t, []error{err}
	}

	var degraded []error
	current := t
	for _, m := range interactions {
		sel := model.Selection{
			SourceID:     m.Component.ID,
			SourceType:   m.Component.Type,
			Property:     m.Record.Property,
			Payload:      m.Record.Value,
			SourceConfig: params.DeepCopy(m.Component.Config),
		}
		next, err := handler.HandleInteraction(ctx, current, sel)
		if err != nil {
			err = fmt.Errorf("%w: selection from %q on %q: %w", model.ErrInteraction, m.Component.ID, target.ID, err)
			logger.Warn("Interaction degraded.", "target", target.ID, "source", m.Component.ID, "error", err)
			degraded = append(degraded, err)
			continue
		}
		if next != nil {
			current = next
		}
	}
	return current, degraded
}
