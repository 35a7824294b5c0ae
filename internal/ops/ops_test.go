package ops

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/db"
)

// isolateBase points CUEBIN_HOME at a fresh directory with an exports dir.
func isolateBase(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("CUEBIN_HOME", base)
	if err := os.MkdirAll(filepath.Join(base, "exports"), 0700); err != nil {
		t.Fatalf("failed to create exports dir: %v", err)
	}
	return base
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(isolateBase(t))
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// fixture is the catalog built by seedCatalog: Tim owns a dialogue bin
// with one line and two takes (the first approved); Mira owns nothing.
type fixture struct {
	tim, mira    *catalog.Actor
	lines        *catalog.Bin
	hello        *catalog.Media
	take1, take2 *catalog.Take
}

func seedCatalog(t *testing.T, database *sql.DB) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error

	f.tim, err = AddActor(ctx, database, AddActorInput{DisplayName: "Tim"})
	require.NoError(t, err)
	f.mira, err = AddActor(ctx, database, AddActorInput{DisplayName: "Mira"})
	require.NoError(t, err)
	f.lines, err = AddBin(ctx, database, AddBinInput{
		Name: "Lines", MediaType: "Dialogue", OwnerType: "actor", OwnerID: f.tim.ID,
	})
	require.NoError(t, err)
	f.hello, err = AddMedia(ctx, database, AddMediaInput{Name: "Hello", BinID: f.lines.ID, Prompt: "Say *hello*"})
	require.NoError(t, err)
	f.take1, err = AddTake(ctx, database, AddTakeInput{MediaID: f.hello.ID, Filename: "hello_1.wav", DurationSec: 1.5})
	require.NoError(t, err)
	f.take2, err = AddTake(ctx, database, AddTakeInput{MediaID: f.hello.ID})
	require.NoError(t, err)
	f.take1, err = SetTakeStatus(ctx, database, SetTakeStatusInput{ID: f.take1.ID, Status: "approved"})
	require.NoError(t, err)
	return f
}

func TestNewID(t *testing.T) {
	a, err := newID()
	if err != nil {
		t.Fatalf("newID() error = %v", err)
	}
	b, err := newID()
	if err != nil {
		t.Fatalf("newID() error = %v", err)
	}
	if len(a) != 26 {
		t.Errorf("len(newID()) = %d, want 26", len(a))
	}
	if a == b {
		t.Errorf("newID() returned %q twice", a)
	}
}

func TestRequireName(t *testing.T) {
	got, err := requireName("name", "  Big   Scene ")
	if err != nil || got != "Big Scene" {
		t.Errorf("requireName() = %q, %v; want %q, nil", got, err, "Big Scene")
	}
	if _, err := requireName("name", " \t "); err == nil {
		t.Error("requireName(blank) = nil error, want INVALID_REQUEST")
	}
}
