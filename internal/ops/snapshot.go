package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/db"
)

// Snapshot returns every catalog collection at one revision.
func Snapshot(ctx context.Context, database *sql.DB) (*catalog.Snapshot, error) {
	return db.LoadSnapshot(ctx, database)
}
