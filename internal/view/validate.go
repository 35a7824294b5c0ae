package view

import (
	"fmt"
	"regexp"
	"slices"
)

// Severity grades a Diagnostic. Errors make a view unrenderable; warnings
// describe behavior the author may not expect.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one problem found in a view configuration.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Path     string   `json:"path" yaml:"path"`
	Message  string   `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Path, d.Message)
}

// Validate checks a view against the field enum, the dimension catalog and
// the operator set.
func Validate(v View) []Diagnostic {
	var diags []Diagnostic
	add := func(sev Severity, path, format string, args ...any) {
		diags = append(diags, Diagnostic{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if v.ID == "" {
		add(SeverityError, "id", "view id is required")
	}
	switch v.Category {
	case CategoryView, CategorySummary, "":
	default:
		add(SeverityWarning, "category", "unknown category %q", v.Category)
	}

	terminalAt := -1
	for i, l := range v.Levels {
		path := fmt.Sprintf("levels[%d]", i)
		if !IsField(l.Field) {
			add(SeverityError, path+".field", "unknown field %q", l.Field)
			continue
		}
		d, isDim := LookupDimension(l.Field)
		if !isDim {
			add(SeverityWarning, path+".field", "%q is not a dimension; groups use raw values", l.Field)
		}
		if l.DisplayField != "" && !IsField(l.DisplayField) {
			add(SeverityError, path+".displayField", "unknown field %q", l.DisplayField)
		}
		if terminalAt < 0 && (l.IsTerminal || d.IsTerminal) {
			terminalAt = i
		}
	}
	if terminalAt >= 0 && terminalAt < len(v.Levels)-1 {
		add(SeverityWarning, fmt.Sprintf("levels[%d]", terminalAt+1),
			"levels after terminal level %q are ignored", v.Levels[terminalAt].Field)
	}

	switch v.Filter.Kind {
	case FilterPredicate:
		add(SeverityWarning, "filter", "predicate filters cannot be saved")
	case FilterRules:
		for i, r := range v.Filter.Rules {
			diags = append(diags, validateRule(fmt.Sprintf("filter[%d]", i), r)...)
		}
	}
	return diags
}

func validateRule(path string, r Rule) []Diagnostic {
	var diags []Diagnostic
	if !IsField(r.Field) {
		diags = append(diags, Diagnostic{SeverityError, path + ".field", fmt.Sprintf("unknown field %q", r.Field)})
	}
	switch {
	case !slices.Contains(Ops, r.Op):
		diags = append(diags, Diagnostic{SeverityWarning, path + ".op", fmt.Sprintf("unknown operator %q matches every row", r.Op)})
	case r.Op == OpIn:
		if _, ok := r.Value.([]any); !ok {
			if _, ok := r.Value.([]string); !ok {
				diags = append(diags, Diagnostic{SeverityWarning, path + ".value", "in expects a list and matches nothing otherwise"})
			}
		}
	case r.Op == OpRegex:
		if _, err := regexp.Compile("(?i)" + coerce(r.Value)); err != nil {
			diags = append(diags, Diagnostic{SeverityWarning, path + ".value", "invalid pattern matches every row: " + err.Error()})
		}
	}
	return diags
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []Diagnostic) bool {
	return slices.ContainsFunc(diags, func(d Diagnostic) bool { return d.Severity == SeverityError })
}
