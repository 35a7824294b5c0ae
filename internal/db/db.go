package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/cuebin/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Querier is the subset of *sql.DB and *sql.Tx the query functions use.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Init initializes the SQLite database at baseDir/cuebin.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.cuebin.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Pragmas in the DSN apply to every pooled connection.
	dbPath := filepath.Join(baseDir, "cuebin.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS actors (
		  id           TEXT PRIMARY KEY,
		  display_name TEXT NOT NULL,
		  name_norm    TEXT NOT NULL,
		  created_at   INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_actors_name_norm ON actors(name_norm);

		CREATE TABLE IF NOT EXISTS scenes (
		  id             TEXT PRIMARY KEY,
		  name           TEXT NOT NULL,
		  name_norm      TEXT NOT NULL,
		  actor_ids_json TEXT,
		  created_at     INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_scenes_name_norm ON scenes(name_norm);

		CREATE TABLE IF NOT EXISTS bins (
		  id         TEXT PRIMARY KEY,
		  name       TEXT NOT NULL,
		  name_norm  TEXT NOT NULL,
		  media_type TEXT NOT NULL,
		  owner_type TEXT NOT NULL,
		  owner_id   TEXT NOT NULL DEFAULT '',
		  scene_id   TEXT,
		  created_at INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_bins_owner_name
		ON bins(owner_type, owner_id, name_norm);

		CREATE TABLE IF NOT EXISTS media (
		  id         TEXT PRIMARY KEY,
		  name       TEXT NOT NULL,
		  media_type TEXT NOT NULL,
		  bin_id     TEXT,
		  owner_type TEXT NOT NULL,
		  owner_id   TEXT NOT NULL DEFAULT '',
		  prompt     TEXT NOT NULL DEFAULT '',
		  complete   INTEGER NOT NULL DEFAULT 0,
		  created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_media_bin ON media(bin_id) WHERE bin_id IS NOT NULL;

		CREATE TABLE IF NOT EXISTS takes (
		  id                TEXT PRIMARY KEY,
		  media_id          TEXT NOT NULL REFERENCES media(id) ON DELETE CASCADE,
		  take_number       INTEGER NOT NULL,
		  status            TEXT NOT NULL,
		  filename          TEXT NOT NULL DEFAULT '',
		  duration_sec      REAL NOT NULL DEFAULT 0,
		  created_at        INTEGER NOT NULL,
		  status_changed_at INTEGER
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_takes_media_number ON takes(media_id, take_number);

		CREATE TABLE IF NOT EXISTS custom_views (
		  id          TEXT PRIMARY KEY,
		  name        TEXT,
		  category    TEXT NOT NULL,
		  levels_json TEXT NOT NULL,
		  filter_json TEXT,
		  leaf_type   TEXT,
		  created_at  INTEGER NOT NULL,
		  updated_at  INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS catalog_meta (
		  key   TEXT PRIMARY KEY,
		  value INTEGER NOT NULL
		);

		INSERT OR IGNORE INTO catalog_meta (key, value) VALUES ('revision', 0);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

// WithTx runs fn in a transaction, committing when fn returns nil.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
