package ops

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/db"
	"github.com/hpungsan/cuebin/internal/errors"
)

// AddTakeInput contains parameters for the AddTake operation.
type AddTakeInput struct {
	MediaID     string  `json:"media_id"`
	Filename    string  `json:"filename,omitempty"`
	DurationSec float64 `json:"duration_sec,omitempty"`
}

// AddTake records a new take for a media item. Takes are numbered per media
// item starting at 1 and start in status "new".
func AddTake(ctx context.Context, database *sql.DB, input AddTakeInput) (*catalog.Take, error) {
	mediaID, err := requireID("media_id", input.MediaID)
	if err != nil {
		return nil, err
	}
	if input.DurationSec < 0 {
		return nil, errors.NewInvalidRequest("duration_sec must not be negative")
	}
	filename := strings.TrimSpace(input.Filename)
	if filename != "" && filepath.Base(filename) != filename {
		return nil, errors.NewInvalidRequest("filename must not contain a directory")
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	t := &catalog.Take{
		ID:          id,
		MediaID:     mediaID,
		Status:      catalog.StatusNew,
		Filename:    filename,
		DurationSec: input.DurationSec,
		CreatedAt:   time.Now().Unix(),
	}

	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		if _, err := db.GetMedia(ctx, tx, mediaID); err != nil {
			return err
		}
		n, err := db.NextTakeNumber(ctx, tx, mediaID)
		if err != nil {
			return err
		}
		t.TakeNumber = n
		return db.InsertTake(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SetTakeStatusInput contains parameters for the SetTakeStatus operation.
type SetTakeStatusInput struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SetTakeStatus moves a take through the review workflow. Any status may
// follow any other.
func SetTakeStatus(ctx context.Context, database *sql.DB, input SetTakeStatusInput) (*catalog.Take, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}
	status := catalog.Normalize(input.Status)
	if !catalog.IsTakeStatus(status) {
		return nil, errors.NewInvalidRequest(
			fmt.Sprintf("status must be one of %s", strings.Join(catalog.TakeStatuses, ", ")))
	}
	if err := db.SetTakeStatus(ctx, database, id, status, time.Now().Unix()); err != nil {
		return nil, err
	}
	return db.GetTake(ctx, database, id)
}
