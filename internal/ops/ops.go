package ops

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/errors"
)

// Entity kinds, as used in errors, deletes and export records.
const (
	KindActor = "actor"
	KindScene = "scene"
	KindBin   = "bin"
	KindMedia = "media"
	KindTake  = "take"
	KindView  = "view"
)

// Kinds lists the entity kinds in dependency order: a record only refers
// to kinds before it.
var Kinds = []string{KindActor, KindScene, KindBin, KindMedia, KindTake, KindView}

// newID returns a fresh ULID.
func newID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to generate ID: %w", err))
	}
	return id.String(), nil
}

// requireName cleans a display name and rejects an empty result.
func requireName(field, raw string) (string, error) {
	name := catalog.CleanName(raw)
	if name == "" {
		return "", errors.NewInvalidRequest(field + " is required")
	}
	return name, nil
}

// requireID trims an id and rejects an empty result.
func requireID(field, raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", errors.NewInvalidRequest(field + " is required")
	}
	return id, nil
}

// checkCancelled returns CANCELLED once ctx is done.
func checkCancelled(ctx context.Context, op string) error {
	if ctx.Err() != nil {
		return errors.NewCancelled(op)
	}
	return nil
}
