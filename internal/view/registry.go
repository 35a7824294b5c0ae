package view

import (
	"maps"
	"slices"
	"strings"
)

// Category separates navigational views from summary views.
type Category string

const (
	CategoryView    Category = "view"
	CategorySummary Category = "summary"
)

// Source records where a view definition came from.
type Source string

const (
	SourcePreset Source = "preset"
	SourceFile   Source = "file"
	SourceCustom Source = "custom"
)

// View is a named grouping configuration: ordered levels plus an optional
// filter.
type View struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Category Category `json:"category" yaml:"category"`
	Levels   []Level  `json:"levels" yaml:"levels"`
	Filter   Filter   `json:"filter" yaml:"filter,omitempty"`
	LeafType string   `json:"leafType,omitempty" yaml:"leaf_type,omitempty"`
	Source   Source   `json:"source,omitempty" yaml:"source,omitempty"`
}

// DisplayName returns Name, or "by <dimension>" for unnamed views.
func (v View) DisplayName() string {
	if v.Name != "" {
		return v.Name
	}
	if len(v.Levels) == 0 {
		return v.ID
	}
	f := v.Levels[0].Field
	if d, ok := LookupDimension(f); ok {
		return "by " + d.Label
	}
	return "by " + strings.ReplaceAll(string(f), "_", " ")
}

// Clone returns a deep copy of the view's levels and rules.
func (v View) Clone() View {
	levels := make([]Level, len(v.Levels))
	for i, l := range v.Levels {
		l.LabelMap = maps.Clone(l.LabelMap)
		levels[i] = l
	}
	v.Levels = levels
	if v.Filter.Kind == FilterRules {
		v.Filter.Rules = slices.Clone(v.Filter.Rules)
	}
	return v
}

func rule(field Field, op Op, value any) Rule {
	return Rule{Field: field, Op: op, Value: value}
}

var presetViews = []View{
	{
		ID:       "by-actor",
		Name:     "By Actor",
		Category: CategoryView,
		Levels:   []Level{{Field: FieldActorID}, {Field: FieldBinID}, {Field: FieldMediaID}},
		Filter:   RuleSet(rule(FieldOwnerType, OpEq, "actor")),
	},
	{
		ID:       "by-scene",
		Name:     "By Scene",
		Category: CategoryView,
		Levels:   []Level{{Field: FieldSceneID}, {Field: FieldBinID}, {Field: FieldMediaID}},
	},
	{
		ID:       "by-owner",
		Name:     "By Owner",
		Category: CategoryView,
		Levels: []Level{
			{Field: FieldOwnerType},
			{Field: FieldOwnerID},
			{Field: FieldBinID},
			{Field: FieldMediaID},
		},
	},
	{
		ID:       "by-type",
		Name:     "By Media Type",
		Category: CategoryView,
		Levels:   []Level{{Field: FieldMediaType}, {Field: FieldOwnerID}, {Field: FieldMediaID}},
	},
	{
		ID:       "by-status",
		Name:     "By Status",
		Category: CategorySummary,
		Levels:   []Level{{Field: FieldStatus}, {Field: FieldOwnerID}, {Field: FieldMediaID}},
		Filter:   RuleSet(rule(FieldTakeID, OpNe, nil)),
	},
	{
		ID:       "review-queue",
		Name:     "Review Queue",
		Category: CategorySummary,
		Levels:   []Level{{Field: FieldOwnerID}, {Field: FieldMediaID}},
		Filter:   RuleSet(rule(FieldStatus, OpEq, "new")),
	},
	{
		ID:       "missing-takes",
		Name:     "Missing Takes",
		Category: CategorySummary,
		Levels:   []Level{{Field: FieldOwnerID}, {Field: FieldMediaID}},
		Filter:   RuleSet(rule(FieldStatus, OpEq, StatusNone)),
	},
	{
		ID:       "by-date",
		Name:     "By Date",
		Category: CategorySummary,
		Levels:   []Level{{Field: FieldCreatedDate}, {Field: FieldMediaID}},
	},
}

// Presets returns copies of the built-in views.
func Presets() []View {
	out := make([]View, len(presetViews))
	for i, v := range presetViews {
		out[i] = v.Clone()
		out[i].Source = SourcePreset
	}
	return out
}

// GetViewByID resolves id against custom views first, then presets.
func GetViewByID(id string, custom []View) (View, bool) {
	for _, v := range custom {
		if v.ID == id {
			return v.Clone(), true
		}
	}
	for _, v := range presetViews {
		if v.ID == id {
			out := v.Clone()
			out.Source = SourcePreset
			return out, true
		}
	}
	return View{}, false
}

// GetAllViews returns the presets not shadowed by a custom view, followed
// by the custom views in their given order. Later duplicates of a custom
// id are dropped.
func GetAllViews(custom []View) []View {
	seen := make(map[string]bool, len(custom))
	customs := make([]View, 0, len(custom))
	for _, v := range custom {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		customs = append(customs, v.Clone())
	}

	out := make([]View, 0, len(presetViews)+len(customs))
	for _, p := range Presets() {
		if !seen[p.ID] {
			out = append(out, p)
		}
	}
	return append(out, customs...)
}

// MergeViews layers view sets: a view in a later set shadows one with the
// same id in an earlier set. Order follows first appearance.
func MergeViews(sets ...[]View) []View {
	index := make(map[string]int)
	var out []View
	for _, set := range sets {
		for _, v := range set {
			if i, ok := index[v.ID]; ok {
				out[i] = v
				continue
			}
			index[v.ID] = len(out)
			out = append(out, v)
		}
	}
	return out
}
