package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/db"
	"github.com/hpungsan/cuebin/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	Kind    string `json:"kind"`
	ID      string `json:"id"`
}

// Delete removes one catalog entity. Deleting a media item removes its
// takes. Actors, scenes and bins that still hold something are refused with
// CONFLICT.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	kind := catalog.Normalize(input.Kind)
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}

	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		switch kind {
		case KindActor:
			if err := refuseIfOwning(ctx, tx, catalog.OwnerActor, id); err != nil {
				return err
			}
			return db.DeleteActor(ctx, tx, id)
		case KindScene:
			if err := refuseIfOwning(ctx, tx, catalog.OwnerScene, id); err != nil {
				return err
			}
			n, err := db.CountBinsInScene(ctx, tx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return errors.NewConflict(fmt.Sprintf("scene %s is referenced by %d bins", id, n))
			}
			return db.DeleteScene(ctx, tx, id)
		case KindBin:
			n, err := db.CountMediaInBin(ctx, tx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return errors.NewConflict(fmt.Sprintf("bin %s still holds %d media items", id, n))
			}
			return db.DeleteBin(ctx, tx, id)
		case KindMedia:
			return db.DeleteMedia(ctx, tx, id)
		case KindTake:
			return db.DeleteTake(ctx, tx, id)
		}
		return errors.NewInvalidRequest(fmt.Sprintf("kind must be one of %s",
			strings.Join([]string{KindActor, KindScene, KindBin, KindMedia, KindTake}, ", ")))
	})
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: true, Kind: kind, ID: id}, nil
}

func refuseIfOwning(ctx context.Context, q db.Querier, ownerType, id string) error {
	n, err := db.CountOwned(ctx, q, ownerType, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return errors.NewConflict(fmt.Sprintf("%s %s still owns %d bins or media items", ownerType, id, n))
	}
	return nil
}
