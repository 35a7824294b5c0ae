package view

import (
	"errors"

	"github.com/hpungsan/cuebin/internal/catalog"
)

// ErrViewNotFound is returned when a view id resolves to neither a custom
// view nor a preset.
var ErrViewNotFound = errors.New("view not found")

// Stats counts what went into a tree.
type Stats struct {
	Rows    int `json:"rows" yaml:"rows"`
	Matched int `json:"matched" yaml:"matched"`
	Groups  int `json:"groups" yaml:"groups"`
	Leaves  int `json:"leaves" yaml:"leaves"`
}

// Tree is a rendered view.
type Tree struct {
	View        View         `json:"view" yaml:"view"`
	Nodes       []*Node      `json:"nodes" yaml:"nodes"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Stats       Stats        `json:"stats" yaml:"stats"`
}

// BuildViewTree resolves viewID, indexes the snapshot, filters and groups.
func BuildViewTree(viewID string, s catalog.Snapshot, custom []View) (*Tree, error) {
	return BuildViewTreeFromRows(viewID, BuildIndex(s), custom)
}

// BuildViewTreeFromRows is BuildViewTree over an existing index.
func BuildViewTreeFromRows(viewID string, rows []Row, custom []View) (*Tree, error) {
	v, ok := GetViewByID(viewID, custom)
	if !ok {
		return nil, ErrViewNotFound
	}
	return Render(v, rows)
}

// Render filters and groups rows for v. A view with error diagnostics
// renders as an empty tree carrying those diagnostics. The only error is
// ErrPredicatePanic.
func Render(v View, rows []Row) (*Tree, error) {
	t := &Tree{
		View:        v,
		Nodes:       []*Node{},
		Diagnostics: Validate(v),
		Stats:       Stats{Rows: len(rows)},
	}
	if HasErrors(t.Diagnostics) {
		return t, nil
	}

	matched, err := ApplyFilter(rows, v.Filter)
	if err != nil {
		return nil, err
	}
	t.Stats.Matched = len(matched)

	t.Nodes = GroupByLevels(matched, v.Levels, WithLeafType(v.LeafType))
	Walk(t.Nodes, func(n *Node, _ int) {
		if n.Leaf {
			t.Stats.Leaves++
		} else {
			t.Stats.Groups++
		}
	})
	return t, nil
}

// Walk visits nodes depth-first in order.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	var walk func([]*Node, int)
	walk = func(ns []*Node, depth int) {
		for _, n := range ns {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)
}
