package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/cuebin/internal/config"
	"github.com/hpungsan/cuebin/internal/db"
	"github.com/hpungsan/cuebin/internal/errors"
	"github.com/hpungsan/cuebin/internal/view"
)

// TreeInput contains parameters for the Tree operation.
type TreeInput struct {
	// ViewID defaults to cfg.DefaultView.
	ViewID string `json:"view_id,omitempty"`

	// LeafType overrides the noun used in synthesized leaf labels.
	LeafType string `json:"leaf_type,omitempty"`
}

// Tree renders a view over the current catalog. An unknown view id is
// VIEW_NOT_FOUND; a view that fails validation renders as an empty tree
// with its diagnostics.
func Tree(ctx context.Context, database *sql.DB, cfg *config.Config, lib *Library, input TreeInput) (*view.Tree, error) {
	viewID := strings.TrimSpace(input.ViewID)
	if viewID == "" && cfg != nil {
		viewID = cfg.DefaultView
	}
	if viewID == "" {
		return nil, errors.NewInvalidRequest("view_id is required")
	}

	custom, err := customViews(ctx, database, lib)
	if err != nil {
		return nil, err
	}
	v, ok := view.GetViewByID(viewID, custom)
	if !ok {
		return nil, errors.NewViewNotFound(viewID)
	}
	switch {
	case input.LeafType != "":
		v.LeafType = strings.TrimSpace(input.LeafType)
	case v.LeafType == "" && cfg != nil:
		v.LeafType = cfg.LeafType
	}

	snap, err := db.LoadSnapshot(ctx, database)
	if err != nil {
		return nil, err
	}
	if err := checkCancelled(ctx, "tree"); err != nil {
		return nil, err
	}

	tree, err := view.Render(v, lib.rows(*snap))
	if err != nil {
		// Only a panicking predicate filter gets here.
		return nil, errors.NewInternal(err)
	}
	if view.HasErrors(tree.Diagnostics) {
		lib.logger().Warn("view has errors; rendered empty", "view", v.ID, "diagnostics", tree.Diagnostics)
	}
	return tree, nil
}

// customViews returns file views shadowed by saved views.
func customViews(ctx context.Context, database *sql.DB, lib *Library) ([]view.View, error) {
	saved, err := db.ListViews(ctx, database)
	if err != nil {
		return nil, err
	}
	return view.MergeViews(lib.fileViews(), saved), nil
}
