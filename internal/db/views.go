package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/hpungsan/cuebin/internal/errors"
	"github.com/hpungsan/cuebin/internal/view"
)

const viewColumns = `id, name, category, levels_json, filter_json, leaf_type`

// SaveView inserts or replaces a custom view. Predicate filters are not
// persisted; the view is stored without a filter.
func SaveView(ctx context.Context, q Querier, v view.View) error {
	levels, err := json.Marshal(v.Levels)
	if err != nil {
		return errors.NewInternal(err)
	}
	var filter sql.NullString
	if v.Filter.Kind == view.FilterRules {
		data, err := json.Marshal(v.Filter)
		if err != nil {
			return errors.NewInternal(err)
		}
		filter = sql.NullString{String: string(data), Valid: true}
	}

	now := time.Now().Unix()
	_, err = q.ExecContext(ctx,
		`INSERT INTO custom_views (`+viewColumns+`, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, category = excluded.category,
		   levels_json = excluded.levels_json, filter_json = excluded.filter_json,
		   leaf_type = excluded.leaf_type, updated_at = excluded.updated_at`,
		v.ID, toNullString(v.Name), string(v.Category), string(levels), filter, toNullString(v.LeafType), now, now)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func scanView(scan func(...any) error) (view.View, error) {
	var (
		v        view.View
		name     sql.NullString
		category string
		levels   string
		filter   sql.NullString
		leafType sql.NullString
	)
	if err := scan(&v.ID, &name, &category, &levels, &filter, &leafType); err != nil {
		return v, err
	}
	v.Name = name.String
	v.Category = view.Category(category)
	v.LeafType = leafType.String
	v.Source = view.SourceCustom
	if err := json.Unmarshal([]byte(levels), &v.Levels); err != nil {
		return v, err
	}
	if filter.Valid {
		if err := json.Unmarshal([]byte(filter.String), &v.Filter); err != nil {
			return v, err
		}
	}
	return v, nil
}

// GetView retrieves a custom view by id.
func GetView(ctx context.Context, q Querier, id string) (*view.View, error) {
	v, err := scanView(q.QueryRowContext(ctx, `SELECT `+viewColumns+` FROM custom_views WHERE id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewViewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &v, nil
}

// ListViews returns custom views in creation order.
func ListViews(ctx context.Context, q Querier) ([]view.View, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+viewColumns+` FROM custom_views ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []view.View{}
	for rows.Next() {
		v, err := scanView(rows.Scan)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// DeleteView removes a custom view.
func DeleteView(ctx context.Context, q Querier, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM custom_views WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewViewNotFound(id)
	}
	return nil
}
