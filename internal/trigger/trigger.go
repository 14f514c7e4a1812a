// Package trigger classifies the trigger records of a resolution pass and
// resolves which of them apply to a given target.
package trigger

import (
	"github.com/specialistvlad/dashgridgo/internal/model"
)

// Lookup resolves component ids. *registry.Registry satisfies it.
type Lookup interface {
	Component(id string) (*model.Component, bool)
}

// Match is a trigger record bound to the component that produced it and the
// action through which it reaches a target.
type Match struct {
	Record    model.TriggerRecord
	Component *model.Component
	Action    model.Action
	// Paths are the argument paths a parameter sets on the target.
	Paths []string
}

// Classified holds the records of one pass partitioned by action kind. Each
// sequence preserves the order of the input records and, within a record,
// the declaration order of its actions.
type Classified struct {
	Filters      []Match
	Interactions []Match
	Parameters   []Match
}

// Classify partitions records by the declared action kind of their
// originating component. A record yields one filter or parameter match per
// action of that kind, so every declared action is honored. Records from
// unknown components, or from components without a filter, parameter or
// filter_interaction action, contribute nothing.
func Classify(lookup Lookup, records []model.TriggerRecord) Classified {
	var out Classified
	for _, rec := range records {
		c, ok := lookup.Component(rec.ComponentID)
		if !ok {
			continue
		}
		kind, ok := c.ResolutionKind()
		if !ok {
			continue
		}
		actions := c.ActionsOf(kind)
		switch kind {
		case model.ActionFilter:
			for _, a := range actions {
				out.Filters = append(out.Filters, Match{Record: rec, Component: c, Action: a})
			}
		case model.ActionParameter:
			for _, a := range actions {
				out.Parameters = append(out.Parameters, Match{Record: rec, Component: c, Action: a})
			}
		case model.ActionFilterInteraction:
			// ForTarget picks the action that reaches each target.
			out.Interactions = append(out.Interactions, Match{Record: rec, Component: c, Action: actions[0]})
		}
	}
	return out
}

// ForTarget returns the subset of each classified sequence that applies to
// target.
//
// Filters and parameters apply when their action lists the target. An
// interaction applies when its source is a different figure on the target's
// page whose interaction action lists the target, and the source carries a
// selection in this pass.
func ForTarget(lookup Lookup, c Classified, target string) Classified {
	var out Classified

	for _, m := range c.Filters {
		if m.Action.HasTarget(target) {
			out.Filters = append(out.Filters, m)
		}
	}

	for _, m := range c.Parameters {
		if m.Action.HasTarget(target) {
			m.Paths = m.Action.PathsFor(target)
			out.Parameters = append(out.Parameters, m)
		}
	}

	tc, ok := lookup.Component(target)
	if !ok {
		return out
	}
	for _, m := range c.Interactions {
		if m.Component.ID == target || m.Component.PageID != tc.PageID {
			continue
		}
		if m.Record.Value == nil {
			continue
		}
		for _, a := range m.Component.ActionsOf(model.ActionFilterInteraction) {
			if a.HasTarget(target) {
				m.Action = a
				out.Interactions = append(out.Interactions, m)
				break
			}
		}
	}
	return out
}

// Empty reports whether no record applies.
func (c Classified) Empty() bool {
	return len(c.Filters) == 0 && len(c.Interactions) == 0 && len(c.Parameters) == 0
}
