// This file translates the decoded HCL blocks into the format-agnostic
// declaration model of the config package.

package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/dashgridgo/internal/config"
	"github.com/specialistvlad/dashgridgo/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// newEvalContext predeclares the control sentinels so declarations can write
// `value = ALL` instead of a quoted string.
func newEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"ALL":  cty.StringVal(model.AllOption),
			"NONE": cty.StringVal(model.NoneOption),
		},
	}
}

func translate(evalCtx *hcl.EvalContext, root *fileRoot) (*config.Dashboard, error) {
	dash := &config.Dashboard{}

	for _, b := range root.Datasets {
		args, err := evalMap(evalCtx, b.Args)
		if err != nil {
			return nil, fmt.Errorf("dataset %q, attribute 'args': %w", b.Name, err)
		}
		dash.Datasets = append(dash.Datasets, &config.Dataset{Name: b.Name, Source: b.Source, Args: args})
	}

	for _, p := range root.Pages {
		page := &config.Page{ID: p.ID, Title: p.Title}
		for _, b := range p.Components {
			cfg, err := evalMap(evalCtx, b.Config)
			if err != nil {
				return nil, fmt.Errorf("component %q, attribute 'config': %w", b.ID, err)
			}
			page.Components = append(page.Components, &config.Component{
				Type:    b.Type,
				ID:      b.ID,
				Title:   b.Title,
				Dataset: b.Dataset,
				Config:  cfg,
				Actions: translateActions(b.Actions),
			})
		}
		for _, b := range p.Controls {
			options, err := evalList(evalCtx, b.Options)
			if err != nil {
				return nil, fmt.Errorf("control %q, attribute 'options': %w", b.ID, err)
			}
			value, err := evalNative(evalCtx, b.Value)
			if err != nil {
				return nil, fmt.Errorf("control %q, attribute 'value': %w", b.ID, err)
			}
			page.Controls = append(page.Controls, &config.Control{
				Selector: b.Selector,
				ID:       b.ID,
				Title:    b.Title,
				Property: b.Property,
				Options:  options,
				Value:    value,
				Actions:  translateActions(b.Actions),
			})
		}
		dash.Pages = append(dash.Pages, page)
	}
	return dash, nil
}

func translateActions(blocks []*actionBlock) []*config.Action {
	out := make([]*config.Action, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, &config.Action{
			Kind:     b.Kind,
			Targets:  b.Targets,
			Column:   b.Column,
			Operator: b.Operator,
			Format:   b.Format,
		})
	}
	return out
}

func evalNative(evalCtx *hcl.EvalContext, expr hcl.Expression) (any, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	return ctyToNative(val)
}

func evalMap(evalCtx *hcl.EvalContext, expr hcl.Expression) (map[string]any, error) {
	v, err := evalNative(evalCtx, expr)
	if err != nil || v == nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", v)
	}
	return m, nil
}

func evalList(evalCtx *hcl.EvalContext, expr hcl.Expression) ([]any, error) {
	v, err := evalNative(evalCtx, expr)
	if err != nil || v == nil {
		return nil, err
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	return l, nil
}
