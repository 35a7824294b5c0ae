package ops

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/db"
	"github.com/hpungsan/cuebin/internal/errors"
)

// AddActorInput contains parameters for the AddActor operation.
type AddActorInput struct {
	DisplayName string `json:"display_name"`
}

// AddActor creates an actor. Display names are unique after normalization.
func AddActor(ctx context.Context, database *sql.DB, input AddActorInput) (*catalog.Actor, error) {
	name, err := requireName("display_name", input.DisplayName)
	if err != nil {
		return nil, err
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}

	a := &catalog.Actor{ID: id, DisplayName: name, CreatedAt: time.Now().Unix()}
	if err := db.InsertActor(ctx, database, a); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewConflict(fmt.Sprintf("actor %q already exists", name))
		}
		return nil, err
	}
	return a, nil
}
