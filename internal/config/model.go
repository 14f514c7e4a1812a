package config

// Dashboard is the unified representation of a dashboard declaration.
type Dashboard struct {
	Datasets []*Dataset
	Pages    []*Page
}

// Dataset is the representation of a `dataset` block.
type Dataset struct {
	Name string
	// Source names a registered source factory ("inline", "csv", "sql", ...).
	Source string
	Args   map[string]any
}

// Page is the representation of a `page` block.
type Page struct {
	ID         string
	Title      string
	Components []*Component
	Controls   []*Control
}

// Component is the representation of a `component` block: a figure.
type Component struct {
	Type    string
	ID      string
	Title   string
	Dataset string
	Config  map[string]any
	Actions []*Action
}

// Control is the representation of a `control` block: a selector.
type Control struct {
	Selector string
	ID       string
	Title    string
	Property string
	Options  []any
	Value    any
	Actions  []*Action
}

// Action is the representation of an `action` block.
type Action struct {
	Kind     string
	Targets  []string
	Column   string
	Operator string
	Format   string
}

// Merge appends the datasets and pages of other into d.
func (d *Dashboard) Merge(other *Dashboard) {
	if other == nil {
		return
	}
	d.Datasets = append(d.Datasets, other.Datasets...)
	d.Pages = append(d.Pages, other.Pages...)
}
