package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all top-level blocks from any file.
type fileRoot struct {
	Datasets []*datasetBlock `hcl:"dataset,block"`
	Pages    []*pageBlock    `hcl:"page,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

type datasetBlock struct {
	Name   string         `hcl:"name,label"`
	Source string         `hcl:"source"`
	Args   hcl.Expression `hcl:"args,optional"`
}

type pageBlock struct {
	ID         string            `hcl:"id,label"`
	Title      string            `hcl:"title,optional"`
	Components []*componentBlock `hcl:"component,block"`
	Controls   []*controlBlock   `hcl:"control,block"`
}

type componentBlock struct {
	Type    string         `hcl:"type,label"`
	ID      string         `hcl:"id,label"`
	Title   string         `hcl:"title,optional"`
	Dataset string         `hcl:"dataset,optional"`
	Config  hcl.Expression `hcl:"config,optional"`
	Actions []*actionBlock `hcl:"action,block"`
}

type controlBlock struct {
	Selector string         `hcl:"selector,label"`
	ID       string         `hcl:"id,label"`
	Title    string         `hcl:"title,optional"`
	Property string         `hcl:"property,optional"`
	Options  hcl.Expression `hcl:"options,optional"`
	Value    hcl.Expression `hcl:"value,optional"`
	Actions  []*actionBlock `hcl:"action,block"`
}

// actionBlock keeps unknown attributes in Remain so that action kinds the
// engine ignores can carry their own arguments.
type actionBlock struct {
	Kind     string   `hcl:"kind,label"`
	Targets  []string `hcl:"targets,optional"`
	Column   string   `hcl:"column,optional"`
	Operator string   `hcl:"operator,optional"`
	Format   string   `hcl:"format,optional"`
	Remain   hcl.Body `hcl:",remain"`
}
