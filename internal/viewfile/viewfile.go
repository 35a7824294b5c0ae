// Package viewfile loads user-authored views from an HCL file.
//
// A file holds any number of view blocks:
//
//	view "fresh-dialogue" {
//	  name     = "Fresh dialogue"
//	  category = "summary"
//
//	  level "actor_id" {}
//	  level "media_id" {
//	    icon = "mic"
//	  }
//
//	  rule {
//	    field = "status"
//	    op    = "in"
//	    value = ["new", "approved"]
//	  }
//	}
package viewfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/hpungsan/cuebin/internal/view"
)

type hclFile struct {
	Views []*hclView `hcl:"view,block"`
}

type hclView struct {
	ID       string      `hcl:"id,label"`
	Name     string      `hcl:"name,optional"`
	Category string      `hcl:"category,optional"`
	LeafType string      `hcl:"leaf_type,optional"`
	Levels   []*hclLevel `hcl:"level,block"`
	Rules    []*hclRule  `hcl:"rule,block"`
}

type hclLevel struct {
	Field        string            `hcl:"field,label"`
	DisplayField string            `hcl:"display_field,optional"`
	Icon         string            `hcl:"icon,optional"`
	Terminal     bool              `hcl:"terminal,optional"`
	LabelMap     map[string]string `hcl:"label_map,optional"`
}

type hclRule struct {
	Field string         `hcl:"field"`
	Op    string         `hcl:"op"`
	Value hcl.Expression `hcl:"value,optional"`
}

// Load reads views from path. A missing file yields no views.
func Load(path string) ([]view.View, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse view file %s: %w", path, diags)
	}
	return decode(file, path)
}

// Parse decodes views from HCL source. filename is used in error messages.
func Parse(src []byte, filename string) ([]view.View, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse view file %s: %w", filename, diags)
	}
	return decode(file, filename)
}

func decode(file *hcl.File, filename string) ([]view.View, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode view file %s: %w", filename, diags)
	}

	seen := make(map[string]bool, len(parsed.Views))
	views := make([]view.View, 0, len(parsed.Views))
	for _, hv := range parsed.Views {
		if seen[hv.ID] {
			return nil, fmt.Errorf("view file %s: duplicate view %q", filename, hv.ID)
		}
		seen[hv.ID] = true

		v, err := hv.toView()
		if err != nil {
			return nil, fmt.Errorf("view file %s: view %q: %w", filename, hv.ID, err)
		}
		views = append(views, v)
	}
	return views, nil
}

func (hv *hclView) toView() (view.View, error) {
	v := view.View{
		ID:       hv.ID,
		Name:     hv.Name,
		Category: view.Category(hv.Category),
		LeafType: hv.LeafType,
		Levels:   make([]view.Level, 0, len(hv.Levels)),
		Source:   view.SourceFile,
	}
	if v.Category == "" {
		v.Category = view.CategoryView
	}

	for _, l := range hv.Levels {
		v.Levels = append(v.Levels, view.Level{
			Field:        view.Field(l.Field),
			DisplayField: view.Field(l.DisplayField),
			Icon:         l.Icon,
			IsTerminal:   l.Terminal,
			LabelMap:     l.LabelMap,
		})
	}

	if len(hv.Rules) == 0 {
		return v, nil
	}
	rules := make([]view.Rule, 0, len(hv.Rules))
	for i, r := range hv.Rules {
		val, diags := r.Value.Value(nil)
		if diags.HasErrors() {
			return view.View{}, fmt.Errorf("rule %d: %w", i, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return view.View{}, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, view.Rule{Field: view.Field(r.Field), Op: view.Op(r.Op), Value: native})
	}
	v.Filter = view.RuleSet(rules...)
	return v, nil
}

// ctyToNative converts a rule value to the plain Go shape the filter
// evaluator compares against: string, float64, bool, []any or
// map[string]any.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number: %w", err)
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			nv, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			nv, err := ctyToNative(ev)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", k.AsString(), err)
			}
			out[k.AsString()] = nv
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}
