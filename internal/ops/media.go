package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/db"
	"github.com/hpungsan/cuebin/internal/errors"
)

// AddMediaInput contains parameters for the AddMedia operation.
// With a BinID, an empty owner or media type is taken from the bin.
type AddMediaInput struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type,omitempty"`
	BinID     string `json:"bin_id,omitempty"`
	OwnerType string `json:"owner_type,omitempty"`
	OwnerID   string `json:"owner_id,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
}

// AddMedia creates a media item, checked against its bin's media-type
// policy and owner.
func AddMedia(ctx context.Context, database *sql.DB, input AddMediaInput) (*catalog.Media, error) {
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}

	m := &catalog.Media{
		Name:      name,
		MediaType: catalog.Normalize(input.MediaType),
		BinID:     strings.TrimSpace(input.BinID),
		OwnerType: catalog.Normalize(input.OwnerType),
		OwnerID:   strings.TrimSpace(input.OwnerID),
		Prompt:    strings.TrimSpace(input.Prompt),
	}

	if m.ID, err = newID(); err != nil {
		return nil, err
	}
	m.CreatedAt = time.Now().Unix()

	// Bin and owner checks run in the insert's transaction.
	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		var bin *catalog.Bin
		if m.BinID != "" {
			var err error
			if bin, err = db.GetBin(ctx, tx, m.BinID); err != nil {
				return err
			}
			if m.OwnerType == "" {
				m.OwnerType, m.OwnerID = bin.OwnerType, bin.OwnerID
			}
			if m.MediaType == "" {
				m.MediaType = bin.MediaType
			}
		}
		if m.OwnerType == "" {
			m.OwnerType = catalog.OwnerGlobal
		}
		if m.OwnerType == catalog.OwnerGlobal {
			m.OwnerID = ""
		}
		if err := catalog.CheckMedia(*m, bin); err != nil {
			return errors.NewPolicyViolation(err)
		}
		if err := checkOwner(ctx, tx, m.OwnerType, m.OwnerID); err != nil {
			return err
		}
		return db.InsertMedia(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// SetMediaCompleteInput contains parameters for the SetMediaComplete operation.
type SetMediaCompleteInput struct {
	ID       string `json:"id"`
	Complete bool   `json:"complete"`
}

// SetMediaComplete marks a media item done (or not).
func SetMediaComplete(ctx context.Context, database *sql.DB, input SetMediaCompleteInput) (*catalog.Media, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}
	if err := db.SetMediaComplete(ctx, database, id, input.Complete); err != nil {
		return nil, err
	}
	return db.GetMedia(ctx, database, id)
}

// GetMediaInput contains parameters for the GetMedia operation.
type GetMediaInput struct {
	ID string `json:"id"`
}

// GetMediaOutput is a media item with its bin (if any) and takes in
// take-number order.
type GetMediaOutput struct {
	Media catalog.Media  `json:"media"`
	Bin   *catalog.Bin   `json:"bin,omitempty"`
	Takes []catalog.Take `json:"takes"`
}

// GetMedia fetches one media item with its takes.
func GetMedia(ctx context.Context, database *sql.DB, input GetMediaInput) (*GetMediaOutput, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}
	m, err := db.GetMedia(ctx, database, id)
	if err != nil {
		return nil, err
	}
	out := &GetMediaOutput{Media: *m}
	if m.BinID != "" {
		bin, err := db.GetBin(ctx, database, m.BinID)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		out.Bin = bin
	}
	takes, err := db.ListTakesByMedia(ctx, database, id)
	if err != nil {
		return nil, err
	}
	out.Takes = takes
	return out, nil
}
