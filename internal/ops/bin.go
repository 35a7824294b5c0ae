package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/db"
	"github.com/hpungsan/cuebin/internal/errors"
)

// AddBinInput contains parameters for the AddBin operation.
type AddBinInput struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	OwnerType string `json:"owner_type"`
	OwnerID   string `json:"owner_id,omitempty"`
	SceneID   string `json:"scene_id,omitempty"`
}

// AddBin creates a bin under an existing owner. Bin names are unique per
// owner.
func AddBin(ctx context.Context, database *sql.DB, input AddBinInput) (*catalog.Bin, error) {
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}

	b := &catalog.Bin{
		Name:      name,
		MediaType: catalog.Normalize(input.MediaType),
		OwnerType: catalog.Normalize(input.OwnerType),
		OwnerID:   strings.TrimSpace(input.OwnerID),
		SceneID:   strings.TrimSpace(input.SceneID),
	}
	if b.OwnerType == "" {
		b.OwnerType = catalog.OwnerGlobal
	}
	if b.OwnerType == catalog.OwnerGlobal {
		b.OwnerID = ""
	}
	if err := catalog.CheckBin(*b); err != nil {
		return nil, errors.NewPolicyViolation(err)
	}
	if b.ID, err = newID(); err != nil {
		return nil, err
	}
	b.CreatedAt = time.Now().Unix()

	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		if err := checkOwner(ctx, tx, b.OwnerType, b.OwnerID); err != nil {
			return err
		}
		if b.SceneID != "" {
			if _, err := db.GetScene(ctx, tx, b.SceneID); err != nil {
				return err
			}
		}
		return db.InsertBin(ctx, tx, b)
	})
	if err == db.ErrUniqueConstraint {
		return nil, errors.NewConflict(fmt.Sprintf("bin %q already exists for this owner", name))
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// checkOwner verifies that the actor or scene named by an owner exists.
func checkOwner(ctx context.Context, q db.Querier, ownerType, ownerID string) error {
	switch ownerType {
	case catalog.OwnerActor:
		_, err := db.GetActor(ctx, q, ownerID)
		return err
	case catalog.OwnerScene:
		_, err := db.GetScene(ctx, q, ownerID)
		return err
	}
	return nil
}
