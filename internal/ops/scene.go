package ops

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/db"
	"github.com/hpungsan/cuebin/internal/errors"
)

// AddSceneInput contains parameters for the AddScene operation.
type AddSceneInput struct {
	Name     string   `json:"name"`
	ActorIDs []string `json:"actor_ids,omitempty"`
}

// AddScene creates a scene. Every listed actor must exist; duplicates are
// dropped keeping the first occurrence.
func AddScene(ctx context.Context, database *sql.DB, input AddSceneInput) (*catalog.Scene, error) {
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}

	var actorIDs []string
	for _, raw := range input.ActorIDs {
		id := strings.TrimSpace(raw)
		if id == "" || slices.Contains(actorIDs, id) {
			continue
		}
		if _, err := db.GetActor(ctx, database, id); err != nil {
			return nil, err
		}
		actorIDs = append(actorIDs, id)
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	s := &catalog.Scene{ID: id, Name: name, ActorIDs: actorIDs, CreatedAt: time.Now().Unix()}
	if err := db.InsertScene(ctx, database, s); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewConflict(fmt.Sprintf("scene %q already exists", name))
		}
		return nil, err
	}
	return s, nil
}
