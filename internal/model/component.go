package model

import (
	"fmt"
	"slices"
	"strings"
)

// Kind distinguishes visual components from controls.
type Kind int

const (
	// Figure is a visual component backed by a renderer (chart, table, card).
	Figure Kind = iota
	// Control is an interactive input (selector) that can trigger a pass.
	Control
)

func (k Kind) String() string {
	switch k {
	case Figure:
		return "figure"
	case Control:
		return "control"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ActionKind is the closed set of action kinds the engine understands.
type ActionKind int

const (
	// ActionOther is any declared action irrelevant to data resolution, such
	// as navigation. It is kept on the component and ignored.
	ActionOther ActionKind = iota
	ActionFilter
	ActionParameter
	ActionFilterInteraction
	ActionExportData
)

var actionNames = map[ActionKind]string{
	ActionOther:             "other",
	ActionFilter:            "filter",
	ActionParameter:         "parameter",
	ActionFilterInteraction: "filter_interaction",
	ActionExportData:        "export_data",
}

// ParseActionKind maps a declared action name onto its kind. Unknown names
// map to ActionOther rather than failing.
func ParseActionKind(name string) ActionKind {
	for kind, n := range actionNames {
		if n == name {
			return kind
		}
	}
	return ActionOther
}

func (k ActionKind) String() string {
	if n, ok := actionNames[k]; ok {
		return n
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// FilterOperator selects how a filter compares a column against the control value.
type FilterOperator int

const (
	// OpIsIn keeps rows whose cell is a member of the selected values.
	OpIsIn FilterOperator = iota
	// OpBetween keeps rows whose cell lies within [min, max], both inclusive.
	OpBetween
)

// ParseFilterOperator parses "isin" or "between". An empty string yields def.
func ParseFilterOperator(s string, def FilterOperator) (FilterOperator, error) {
	switch s {
	case "":
		return def, nil
	case "isin":
		return OpIsIn, nil
	case "between":
		return OpBetween, nil
	}
	return def, fmt.Errorf("%w: unknown filter operator %q", ErrConfiguration, s)
}

func (o FilterOperator) String() string {
	if o == OpBetween {
		return "between"
	}
	return "isin"
}

// Action is one declared action of a component.
type Action struct {
	Kind ActionKind
	// Name is the declared action name, kept for logs when Kind is ActionOther.
	Name string
	// Targets are component ids, or "component.dotted.path" for parameters.
	Targets []string
	// Column and Operator apply to filters.
	Column   string
	Operator FilterOperator
	// Format applies to export_data.
	Format string
	// Implicit marks targets defaulted from the page rather than declared.
	Implicit bool
}

// HasTarget reports whether the action lists id among its targets. For
// parameter actions the component prefix of each target is compared.
func (a Action) HasTarget(id string) bool {
	if a.Kind != ActionParameter {
		return slices.Contains(a.Targets, id)
	}
	for _, t := range a.Targets {
		if comp, _, err := SplitTarget(t); err == nil && comp == id {
			return true
		}
	}
	return false
}

// PathsFor returns the argument paths a parameter action sets on component id.
func (a Action) PathsFor(id string) []string {
	var paths []string
	for _, t := range a.Targets {
		if comp, path, err := SplitTarget(t); err == nil && comp == id {
			paths = append(paths, path)
		}
	}
	return paths
}

// SplitTarget splits a parameter target "component.dotted.path" into its
// component id and the remaining path.
func SplitTarget(target string) (component, path string, err error) {
	component, path, ok := strings.Cut(target, ".")
	if !ok {
		return "", "", fmt.Errorf("%w: parameter target %q must contain a '.'", ErrConfiguration, target)
	}
	if component == "" {
		return "", "", fmt.Errorf("%w: parameter target %q has an empty component", ErrConfiguration, target)
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return "", "", fmt.Errorf("%w: parameter target %q has an empty path segment", ErrConfiguration, target)
		}
	}
	return component, path, nil
}

// Component is a declared node of the dashboard: a figure or a control.
type Component struct {
	ID     string
	PageID string
	Kind   Kind
	// Type is the renderer kind of a figure ("graph", "table", "card") or the
	// selector type of a control ("dropdown", "checklist", "range_slider", ...).
	Type  string
	Title string

	// Dataset names the dataset a figure renders. Empty for data-less figures.
	Dataset string
	// Config is the declared rendering configuration. Never mutated.
	Config map[string]any

	// Property is the input property a control reports, "value" by default.
	Property string
	// Options are the declared choices of a control.
	Options []any
	// Value is the declared default value of a control.
	Value any

	Actions []Action
}

// IsFigure reports whether c is a visual component.
func (c *Component) IsFigure() bool { return c.Kind == Figure }

// ActionsOf returns the component's actions of the given kind in declaration order.
func (c *Component) ActionsOf(kind ActionKind) []Action {
	var out []Action
	for _, a := range c.Actions {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// ResolutionKind returns the first declared action kind that takes part in
// data resolution (filter, parameter or filter_interaction).
func (c *Component) ResolutionKind() (ActionKind, bool) {
	for _, a := range c.Actions {
		switch a.Kind {
		case ActionFilter, ActionParameter:
			return a.Kind, true
		case ActionFilterInteraction:
			if c.IsFigure() {
				return a.Kind, true
			}
		}
	}
	return ActionOther, false
}
