package ops

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/hpungsan/cuebin/internal/db"
	"github.com/hpungsan/cuebin/internal/errors"
	"github.com/hpungsan/cuebin/internal/view"
)

var viewIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// validateViewID rejects ids that lookups could not match exactly. Ids are
// never rewritten.
func validateViewID(id string) error {
	if !viewIDRegex.MatchString(id) {
		return errors.NewInvalidRequest(fmt.Sprintf(
			"view id %q must be 1-64 characters of lowercase letters, digits, '-' or '_', starting with a letter or digit", id))
	}
	return nil
}

// ViewSummary is one row of ListViews.
type ViewSummary struct {
	ID       string        `json:"id" yaml:"id"`
	Name     string        `json:"name" yaml:"name"`
	Category view.Category `json:"category" yaml:"category"`
	Source   view.Source   `json:"source" yaml:"source"`
	Levels   []view.Field  `json:"levels" yaml:"levels"`
	Filtered bool          `json:"filtered" yaml:"filtered"`
}

// ListViewsOutput contains the result of the ListViews operation.
type ListViewsOutput struct {
	Views []ViewSummary `json:"views" yaml:"views"`
}

// ListViews returns presets, then file views, then saved views, each id
// once. A custom view replaces the preset it shadows.
func ListViews(ctx context.Context, database *sql.DB, lib *Library) (*ListViewsOutput, error) {
	custom, err := customViews(ctx, database, lib)
	if err != nil {
		return nil, err
	}
	all := view.GetAllViews(custom)
	out := &ListViewsOutput{Views: make([]ViewSummary, 0, len(all))}
	for _, v := range all {
		levels := make([]view.Field, len(v.Levels))
		for i, l := range v.Levels {
			levels[i] = l.Field
		}
		out.Views = append(out.Views, ViewSummary{
			ID:       v.ID,
			Name:     v.DisplayName(),
			Category: v.Category,
			Source:   v.Source,
			Levels:   levels,
			Filtered: !v.Filter.IsZero(),
		})
	}
	return out, nil
}

// GetViewInput contains parameters for the GetView operation.
type GetViewInput struct {
	ID string `json:"id"`
}

// GetViewOutput contains the result of the GetView operation.
type GetViewOutput struct {
	View        view.View         `json:"view" yaml:"view"`
	Diagnostics []view.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// GetView resolves a view id the way Tree does and validates the result.
func GetView(ctx context.Context, database *sql.DB, lib *Library, input GetViewInput) (*GetViewOutput, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}
	custom, err := customViews(ctx, database, lib)
	if err != nil {
		return nil, err
	}
	v, ok := view.GetViewByID(id, custom)
	if !ok {
		return nil, errors.NewViewNotFound(id)
	}
	return &GetViewOutput{View: v, Diagnostics: view.Validate(v)}, nil
}

// SaveViewInput contains parameters for the SaveView operation.
type SaveViewInput struct {
	View view.View `json:"view"`
}

// SaveViewOutput contains the result of the SaveView operation.
type SaveViewOutput struct {
	View view.View `json:"view"`

	// Warnings are non-fatal diagnostics; views with errors are not saved.
	Warnings []view.Diagnostic `json:"warnings,omitempty"`

	// Shadows names the preset or file view this id now hides, if any.
	Shadows view.Source `json:"shadows,omitempty"`
}

// SaveView validates and stores a custom view, replacing any saved view
// with the same id.
func SaveView(ctx context.Context, database *sql.DB, lib *Library, input SaveViewInput) (*SaveViewOutput, error) {
	v := input.View.Clone()
	v.ID = strings.TrimSpace(v.ID)
	if err := validateViewID(v.ID); err != nil {
		return nil, err
	}
	if v.Filter.Kind == view.FilterPredicate {
		return nil, errors.NewInvalidRequest("predicate filters cannot be saved")
	}
	v.Name = strings.TrimSpace(v.Name)
	if v.Category == "" {
		v.Category = view.CategoryView
	}
	v.Source = view.SourceCustom

	diags := view.Validate(v)
	if view.HasErrors(diags) {
		return nil, errors.NewInvalidView(v.ID, diags)
	}

	out := &SaveViewOutput{View: v, Warnings: diags}
	if _, err := db.GetView(ctx, database, v.ID); errors.Is(err, errors.ErrViewNotFound) {
		custom, err := customViews(ctx, database, lib)
		if err != nil {
			return nil, err
		}
		if prev, ok := view.GetViewByID(v.ID, custom); ok {
			out.Shadows = prev.Source
		}
	} else if err != nil {
		return nil, err
	}

	if err := db.SaveView(ctx, database, v); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteViewInput contains parameters for the DeleteView operation.
type DeleteViewInput struct {
	ID string `json:"id"`
}

// DeleteView removes a saved view. Presets and file views cannot be
// deleted; deleting a saved view that shadowed one makes it visible again.
func DeleteView(ctx context.Context, database *sql.DB, lib *Library, input DeleteViewInput) (*DeleteOutput, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}
	err = db.DeleteView(ctx, database, id)
	if errors.Is(err, errors.ErrViewNotFound) {
		if v, ok := view.GetViewByID(id, lib.fileViews()); ok {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("%s view %q cannot be deleted", v.Source, id))
		}
	}
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: true, Kind: KindView, ID: id}, nil
}
