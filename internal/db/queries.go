package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/errors"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.CuebinError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY constraint failed")
}

func execWrite(ctx context.Context, q Querier, query string, args ...any) error {
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return BumpRevision(ctx, q)
}

// execDelete removes one row and reports NOT_FOUND when nothing matched.
func execDelete(ctx context.Context, q Querier, kind, query, id string) error {
	result, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(kind, id)
	}
	return BumpRevision(ctx, q)
}

// Revision returns the catalog revision counter.
func Revision(ctx context.Context, q Querier) (int64, error) {
	var rev int64
	err := q.QueryRowContext(ctx, `SELECT value FROM catalog_meta WHERE key = 'revision'`).Scan(&rev)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return rev, nil
}

// BumpRevision advances the catalog revision. Every catalog write calls it.
func BumpRevision(ctx context.Context, q Querier) error {
	if _, err := q.ExecContext(ctx, `UPDATE catalog_meta SET value = value + 1 WHERE key = 'revision'`); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// =============================================================================
// Actors
// =============================================================================

// InsertActor stores a new actor.
func InsertActor(ctx context.Context, q Querier, a *catalog.Actor) error {
	return execWrite(ctx, q,
		`INSERT INTO actors (id, display_name, name_norm, created_at) VALUES (?, ?, ?, ?)`,
		a.ID, a.DisplayName, catalog.Normalize(a.DisplayName), a.CreatedAt)
}

// UpsertActor inserts or replaces an actor by id.
func UpsertActor(ctx context.Context, q Querier, a *catalog.Actor) error {
	return execWrite(ctx, q,
		`INSERT INTO actors (id, display_name, name_norm, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name, name_norm = excluded.name_norm`,
		a.ID, a.DisplayName, catalog.Normalize(a.DisplayName), a.CreatedAt)
}

// GetActor retrieves an actor by id.
func GetActor(ctx context.Context, q Querier, id string) (*catalog.Actor, error) {
	var a catalog.Actor
	err := q.QueryRowContext(ctx, `SELECT id, display_name, created_at FROM actors WHERE id = ?`, id).
		Scan(&a.ID, &a.DisplayName, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("actor", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &a, nil
}

// ListActors returns every actor in creation order.
func ListActors(ctx context.Context, q Querier) ([]catalog.Actor, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, display_name, created_at FROM actors ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []catalog.Actor{}
	for rows.Next() {
		var a catalog.Actor
		if err := rows.Scan(&a.ID, &a.DisplayName, &a.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// DeleteActor removes an actor.
func DeleteActor(ctx context.Context, q Querier, id string) error {
	return execDelete(ctx, q, "actor", `DELETE FROM actors WHERE id = ?`, id)
}

// =============================================================================
// Scenes
// =============================================================================

// InsertScene stores a new scene.
func InsertScene(ctx context.Context, q Querier, s *catalog.Scene) error {
	ids, err := actorIDsJSON(s.ActorIDs)
	if err != nil {
		return err
	}
	return execWrite(ctx, q,
		`INSERT INTO scenes (id, name, name_norm, actor_ids_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Name, catalog.Normalize(s.Name), ids, s.CreatedAt)
}

// UpsertScene inserts or replaces a scene by id.
func UpsertScene(ctx context.Context, q Querier, s *catalog.Scene) error {
	ids, err := actorIDsJSON(s.ActorIDs)
	if err != nil {
		return err
	}
	return execWrite(ctx, q,
		`INSERT INTO scenes (id, name, name_norm, actor_ids_json, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, name_norm = excluded.name_norm,
		   actor_ids_json = excluded.actor_ids_json`,
		s.ID, s.Name, catalog.Normalize(s.Name), ids, s.CreatedAt)
}

func actorIDsJSON(ids []string) (sql.NullString, error) {
	if len(ids) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return sql.NullString{}, errors.NewInternal(err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

const sceneColumns = `id, name, actor_ids_json, created_at`

func scanScene(scan func(...any) error) (catalog.Scene, error) {
	var (
		s   catalog.Scene
		ids sql.NullString
	)
	if err := scan(&s.ID, &s.Name, &ids, &s.CreatedAt); err != nil {
		return s, err
	}
	if ids.Valid && ids.String != "" {
		if err := json.Unmarshal([]byte(ids.String), &s.ActorIDs); err != nil {
			return s, err
		}
	}
	return s, nil
}

// GetScene retrieves a scene by id.
func GetScene(ctx context.Context, q Querier, id string) (*catalog.Scene, error) {
	s, err := scanScene(q.QueryRowContext(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("scene", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &s, nil
}

// ListScenes returns every scene in creation order.
func ListScenes(ctx context.Context, q Querier) ([]catalog.Scene, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+sceneColumns+` FROM scenes ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []catalog.Scene{}
	for rows.Next() {
		s, err := scanScene(rows.Scan)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// DeleteScene removes a scene.
func DeleteScene(ctx context.Context, q Querier, id string) error {
	return execDelete(ctx, q, "scene", `DELETE FROM scenes WHERE id = ?`, id)
}

// =============================================================================
// Bins
// =============================================================================

const binColumns = `id, name, media_type, owner_type, owner_id, scene_id, created_at`

// InsertBin stores a new bin.
func InsertBin(ctx context.Context, q Querier, b *catalog.Bin) error {
	return execWrite(ctx, q,
		`INSERT INTO bins (id, name, name_norm, media_type, owner_type, owner_id, scene_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, catalog.Normalize(b.Name), b.MediaType, b.OwnerType, b.OwnerID,
		toNullString(b.SceneID), b.CreatedAt)
}

// UpsertBin inserts or replaces a bin by id.
func UpsertBin(ctx context.Context, q Querier, b *catalog.Bin) error {
	return execWrite(ctx, q,
		`INSERT INTO bins (id, name, name_norm, media_type, owner_type, owner_id, scene_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, name_norm = excluded.name_norm,
		   media_type = excluded.media_type, owner_type = excluded.owner_type,
		   owner_id = excluded.owner_id, scene_id = excluded.scene_id`,
		b.ID, b.Name, catalog.Normalize(b.Name), b.MediaType, b.OwnerType, b.OwnerID,
		toNullString(b.SceneID), b.CreatedAt)
}

func scanBin(scan func(...any) error) (catalog.Bin, error) {
	var (
		b       catalog.Bin
		sceneID sql.NullString
	)
	err := scan(&b.ID, &b.Name, &b.MediaType, &b.OwnerType, &b.OwnerID, &sceneID, &b.CreatedAt)
	b.SceneID = sceneID.String
	return b, err
}

// GetBin retrieves a bin by id.
func GetBin(ctx context.Context, q Querier, id string) (*catalog.Bin, error) {
	b, err := scanBin(q.QueryRowContext(ctx, `SELECT `+binColumns+` FROM bins WHERE id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("bin", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &b, nil
}

// ListBins returns every bin in creation order.
func ListBins(ctx context.Context, q Querier) ([]catalog.Bin, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+binColumns+` FROM bins ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []catalog.Bin{}
	for rows.Next() {
		b, err := scanBin(rows.Scan)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// DeleteBin removes a bin.
func DeleteBin(ctx context.Context, q Querier, id string) error {
	return execDelete(ctx, q, "bin", `DELETE FROM bins WHERE id = ?`, id)
}

// CountMediaInBin returns how many media items reference a bin.
func CountMediaInBin(ctx context.Context, q Querier, binID string) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM media WHERE bin_id = ?`, binID).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// CountOwned returns how many bins and media items an owner holds.
func CountOwned(ctx context.Context, q Querier, ownerType, ownerID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM bins WHERE owner_type = ? AND owner_id = ?)
		      + (SELECT COUNT(*) FROM media WHERE owner_type = ? AND owner_id = ?)`,
		ownerType, ownerID, ownerType, ownerID).Scan(&n)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// CountBinsInScene returns how many bins are associated with a scene.
func CountBinsInScene(ctx context.Context, q Querier, sceneID string) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bins WHERE scene_id = ?`, sceneID).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// =============================================================================
// Media
// =============================================================================

const mediaColumns = `id, name, media_type, bin_id, owner_type, owner_id, prompt, complete, created_at`

// InsertMedia stores a new media item.
func InsertMedia(ctx context.Context, q Querier, m *catalog.Media) error {
	return execWrite(ctx, q,
		`INSERT INTO media (id, name, media_type, bin_id, owner_type, owner_id, prompt, complete, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.MediaType, toNullString(m.BinID), m.OwnerType, m.OwnerID, m.Prompt, m.Complete, m.CreatedAt)
}

// UpsertMedia inserts or replaces a media item by id.
func UpsertMedia(ctx context.Context, q Querier, m *catalog.Media) error {
	return execWrite(ctx, q,
		`INSERT INTO media (id, name, media_type, bin_id, owner_type, owner_id, prompt, complete, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, media_type = excluded.media_type,
		   bin_id = excluded.bin_id, owner_type = excluded.owner_type, owner_id = excluded.owner_id,
		   prompt = excluded.prompt, complete = excluded.complete`,
		m.ID, m.Name, m.MediaType, toNullString(m.BinID), m.OwnerType, m.OwnerID, m.Prompt, m.Complete, m.CreatedAt)
}

func scanMedia(scan func(...any) error) (catalog.Media, error) {
	var (
		m     catalog.Media
		binID sql.NullString
	)
	err := scan(&m.ID, &m.Name, &m.MediaType, &binID, &m.OwnerType, &m.OwnerID, &m.Prompt, &m.Complete, &m.CreatedAt)
	m.BinID = binID.String
	return m, err
}

// GetMedia retrieves a media item by id.
func GetMedia(ctx context.Context, q Querier, id string) (*catalog.Media, error) {
	m, err := scanMedia(q.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("media", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &m, nil
}

// ListMedia returns every media item in creation order.
func ListMedia(ctx context.Context, q Querier) ([]catalog.Media, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []catalog.Media{}
	for rows.Next() {
		m, err := scanMedia(rows.Scan)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// SetMediaComplete updates a media item's completion flag.
func SetMediaComplete(ctx context.Context, q Querier, id string, complete bool) error {
	result, err := q.ExecContext(ctx, `UPDATE media SET complete = ? WHERE id = ?`, complete, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NewNotFound("media", id)
	}
	return BumpRevision(ctx, q)
}

// DeleteMedia removes a media item. Its takes go with it.
func DeleteMedia(ctx context.Context, q Querier, id string) error {
	return execDelete(ctx, q, "media", `DELETE FROM media WHERE id = ?`, id)
}

// =============================================================================
// Takes
// =============================================================================

const takeColumns = `id, media_id, take_number, status, filename, duration_sec, created_at, status_changed_at`

// InsertTake stores a new take.
func InsertTake(ctx context.Context, q Querier, t *catalog.Take) error {
	return execWrite(ctx, q,
		`INSERT INTO takes (`+takeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.MediaID, t.TakeNumber, t.Status, t.Filename, t.DurationSec, t.CreatedAt, toNullInt64(t.StatusChangedAt))
}

// UpsertTake inserts or replaces a take by id.
func UpsertTake(ctx context.Context, q Querier, t *catalog.Take) error {
	return execWrite(ctx, q,
		`INSERT INTO takes (`+takeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET media_id = excluded.media_id, take_number = excluded.take_number,
		   status = excluded.status, filename = excluded.filename, duration_sec = excluded.duration_sec,
		   status_changed_at = excluded.status_changed_at`,
		t.ID, t.MediaID, t.TakeNumber, t.Status, t.Filename, t.DurationSec, t.CreatedAt, toNullInt64(t.StatusChangedAt))
}

func scanTake(scan func(...any) error) (catalog.Take, error) {
	var (
		t       catalog.Take
		changed sql.NullInt64
	)
	err := scan(&t.ID, &t.MediaID, &t.TakeNumber, &t.Status, &t.Filename, &t.DurationSec, &t.CreatedAt, &changed)
	if changed.Valid {
		t.StatusChangedAt = &changed.Int64
	}
	return t, err
}

// GetTake retrieves a take by id.
func GetTake(ctx context.Context, q Querier, id string) (*catalog.Take, error) {
	t, err := scanTake(q.QueryRowContext(ctx, `SELECT `+takeColumns+` FROM takes WHERE id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("take", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &t, nil
}

// ListTakes returns every take ordered by media and take number.
func ListTakes(ctx context.Context, q Querier) ([]catalog.Take, error) {
	return queryTakes(ctx, q, `SELECT `+takeColumns+` FROM takes ORDER BY media_id, take_number`)
}

// ListTakesByMedia returns a media item's takes in take-number order.
func ListTakesByMedia(ctx context.Context, q Querier, mediaID string) ([]catalog.Take, error) {
	return queryTakes(ctx, q, `SELECT `+takeColumns+` FROM takes WHERE media_id = ? ORDER BY take_number`, mediaID)
}

func queryTakes(ctx context.Context, q Querier, query string, args ...any) ([]catalog.Take, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []catalog.Take{}
	for rows.Next() {
		t, err := scanTake(rows.Scan)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// NextTakeNumber returns one past the highest take number of a media item.
func NextTakeNumber(ctx context.Context, q Querier, mediaID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(take_number), 0) + 1 FROM takes WHERE media_id = ?`, mediaID).Scan(&n)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// SetTakeStatus updates a take's status and stamps status_changed_at.
func SetTakeStatus(ctx context.Context, q Querier, id, status string, changedAt int64) error {
	result, err := q.ExecContext(ctx,
		`UPDATE takes SET status = ?, status_changed_at = ? WHERE id = ?`, status, changedAt, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("take", id)
	}
	return BumpRevision(ctx, q)
}

// DeleteTake removes a take.
func DeleteTake(ctx context.Context, q Querier, id string) error {
	return execDelete(ctx, q, "take", `DELETE FROM takes WHERE id = ?`, id)
}

// =============================================================================
// Snapshot
// =============================================================================

// LoadSnapshot reads every collection and the revision in one read-only
// transaction so the snapshot is consistent.
func LoadSnapshot(ctx context.Context, database *sql.DB) (*catalog.Snapshot, error) {
	tx, err := database.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	var s catalog.Snapshot
	if s.Revision, err = Revision(ctx, tx); err != nil {
		return nil, err
	}
	if s.Actors, err = ListActors(ctx, tx); err != nil {
		return nil, err
	}
	if s.Scenes, err = ListScenes(ctx, tx); err != nil {
		return nil, err
	}
	if s.Bins, err = ListBins(ctx, tx); err != nil {
		return nil, err
	}
	if s.Media, err = ListMedia(ctx, tx); err != nil {
		return nil, err
	}
	if s.Takes, err = ListTakes(ctx, tx); err != nil {
		return nil, err
	}
	return &s, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
