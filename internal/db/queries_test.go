package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/errors"
	"github.com/hpungsan/cuebin/internal/view"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seed stores one actor with a dialogue bin, a media item and two takes.
func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, InsertActor(ctx, db, &catalog.Actor{ID: "a1", DisplayName: "Tim", CreatedAt: 1}))
	require.NoError(t, InsertBin(ctx, db, &catalog.Bin{ID: "b1", Name: "Lines", MediaType: catalog.MediaDialogue,
		OwnerType: catalog.OwnerActor, OwnerID: "a1", CreatedAt: 2}))
	require.NoError(t, InsertMedia(ctx, db, &catalog.Media{ID: "m1", Name: "Hello", MediaType: catalog.MediaDialogue,
		BinID: "b1", OwnerType: catalog.OwnerActor, OwnerID: "a1", Prompt: "Say *hello*", CreatedAt: 3}))
	require.NoError(t, InsertTake(ctx, db, &catalog.Take{ID: "t1", MediaID: "m1", TakeNumber: 1,
		Status: catalog.StatusApproved, Filename: "hello_1.wav", DurationSec: 1.5, CreatedAt: 4}))
	require.NoError(t, InsertTake(ctx, db, &catalog.Take{ID: "t2", MediaID: "m1", TakeNumber: 2,
		Status: catalog.StatusNew, CreatedAt: 5}))
}

func TestInsertAndGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed(t, db)

	a, err := GetActor(ctx, db, "a1")
	require.NoError(t, err)
	require.Equal(t, "Tim", a.DisplayName)

	b, err := GetBin(ctx, db, "b1")
	require.NoError(t, err)
	require.Equal(t, catalog.OwnerActor, b.OwnerType)
	require.Equal(t, "", b.SceneID)

	m, err := GetMedia(ctx, db, "m1")
	require.NoError(t, err)
	require.Equal(t, "b1", m.BinID)
	require.Equal(t, "Say *hello*", m.Prompt)
	require.False(t, m.Complete)

	tk, err := GetTake(ctx, db, "t1")
	require.NoError(t, err)
	require.Equal(t, 1.5, tk.DurationSec)
	require.Nil(t, tk.StatusChangedAt)
}

func TestGet_NotFound(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := GetActor(ctx, db, "nope")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetActor err = %v, want NOT_FOUND", err)
	}
	_, err = GetTake(ctx, db, "nope")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetTake err = %v, want NOT_FOUND", err)
	}
	if err := DeleteBin(ctx, db, "nope"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("DeleteBin err = %v, want NOT_FOUND", err)
	}
}

func TestInsertActor_DuplicateName(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, InsertActor(ctx, db, &catalog.Actor{ID: "a1", DisplayName: "Tim", CreatedAt: 1}))
	err := InsertActor(ctx, db, &catalog.Actor{ID: "a2", DisplayName: "  tim ", CreatedAt: 2})
	if err != ErrUniqueConstraint {
		t.Errorf("err = %v, want ErrUniqueConstraint", err)
	}
}

func TestScene_ActorIDs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, InsertScene(ctx, db, &catalog.Scene{ID: "s1", Name: "Opening", ActorIDs: []string{"a1", "a2"}, CreatedAt: 1}))
	require.NoError(t, InsertScene(ctx, db, &catalog.Scene{ID: "s2", Name: "Finale", CreatedAt: 2}))

	scenes, err := ListScenes(ctx, db)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	require.Equal(t, []string{"a1", "a2"}, scenes[0].ActorIDs)
	require.Nil(t, scenes[1].ActorIDs)
}

func TestTakes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed(t, db)

	n, err := NextTakeNumber(ctx, db, "m1")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	n, err = NextTakeNumber(ctx, db, "m-none")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, SetTakeStatus(ctx, db, "t2", catalog.StatusRejected, 99))
	tk, err := GetTake(ctx, db, "t2")
	require.NoError(t, err)
	require.Equal(t, catalog.StatusRejected, tk.Status)
	require.NotNil(t, tk.StatusChangedAt)
	require.Equal(t, int64(99), *tk.StatusChangedAt)

	err = InsertTake(ctx, db, &catalog.Take{ID: "t3", MediaID: "m1", TakeNumber: 1, Status: catalog.StatusNew, CreatedAt: 6})
	require.Equal(t, ErrUniqueConstraint, err)

	takes, err := ListTakesByMedia(ctx, db, "m1")
	require.NoError(t, err)
	require.Len(t, takes, 2)
}

func TestDeleteMedia_CascadesTakes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed(t, db)

	require.NoError(t, DeleteMedia(ctx, db, "m1"))
	takes, err := ListTakes(ctx, db)
	require.NoError(t, err)
	require.Empty(t, takes)
}

func TestCounts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed(t, db)

	n, err := CountMediaInBin(ctx, db, "b1")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = CountOwned(ctx, db, catalog.OwnerActor, "a1")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, InsertScene(ctx, db, &catalog.Scene{ID: "s1", Name: "Opening", CreatedAt: 6}))
	require.NoError(t, InsertBin(ctx, db, &catalog.Bin{ID: "b2", Name: "Cues", MediaType: catalog.MediaMusic,
		OwnerType: catalog.OwnerGlobal, SceneID: "s1", CreatedAt: 7}))
	n, err = CountBinsInScene(ctx, db, "s1")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestLoadSnapshot(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	empty, err := LoadSnapshot(ctx, db)
	require.NoError(t, err)
	require.Equal(t, int64(0), empty.Revision)
	require.NotNil(t, empty.Actors)

	seed(t, db)
	s, err := LoadSnapshot(ctx, db)
	require.NoError(t, err)
	require.Equal(t, int64(5), s.Revision)
	require.Len(t, s.Actors, 1)
	require.Len(t, s.Bins, 1)
	require.Len(t, s.Media, 1)
	require.Len(t, s.Takes, 2)

	tree, err := view.BuildViewTree("by-actor", *s, nil)
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 1)
	require.Equal(t, "Tim", tree.Nodes[0].Label)
}

func TestUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed(t, db)

	require.NoError(t, UpsertActor(ctx, db, &catalog.Actor{ID: "a1", DisplayName: "Timothy", CreatedAt: 1}))
	a, err := GetActor(ctx, db, "a1")
	require.NoError(t, err)
	require.Equal(t, "Timothy", a.DisplayName)

	require.NoError(t, UpsertTake(ctx, db, &catalog.Take{ID: "t9", MediaID: "m1", TakeNumber: 9, Status: catalog.StatusHidden, CreatedAt: 7}))
	tk, err := GetTake(ctx, db, "t9")
	require.NoError(t, err)
	require.Equal(t, catalog.StatusHidden, tk.Status)
}

func TestWithTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := InsertActor(ctx, tx, &catalog.Actor{ID: "a1", DisplayName: "Tim", CreatedAt: 1}); err != nil {
			return err
		}
		return errors.NewConflict("abort")
	})
	require.True(t, errors.Is(err, errors.ErrConflict))

	actors, err := ListActors(ctx, db)
	require.NoError(t, err)
	require.Empty(t, actors)

	rev, err := Revision(ctx, db)
	require.NoError(t, err)
	require.Equal(t, int64(0), rev)
}

func TestCustomViews(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	v := view.View{
		ID:       "fresh",
		Name:     "Fresh",
		Category: view.CategorySummary,
		Levels:   []view.Level{{Field: view.FieldActorID}, {Field: view.FieldMediaID, Icon: "mic"}},
		Filter:   view.RuleSet(view.Rule{Field: view.FieldStatus, Op: view.OpIn, Value: []any{"new"}}),
		LeafType: "line",
	}
	require.NoError(t, SaveView(ctx, db, v))
	require.NoError(t, SaveView(ctx, db, view.View{ID: "plain", Category: view.CategoryView, Levels: []view.Level{{Field: view.FieldStatus}}}))

	got, err := GetView(ctx, db, "fresh")
	require.NoError(t, err)
	require.Equal(t, "Fresh", got.Name)
	require.Equal(t, view.SourceCustom, got.Source)
	require.Equal(t, "mic", got.Levels[1].Icon)
	require.Equal(t, view.FilterRules, got.Filter.Kind)
	require.True(t, view.Matches(view.Row{Status: "new"}, got.Filter))

	v.Name = "Fresher"
	require.NoError(t, SaveView(ctx, db, v))

	all, err := ListViews(ctx, db)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Fresher", all[0].Name)
	require.True(t, all[1].Filter.IsZero())

	require.NoError(t, DeleteView(ctx, db, "fresh"))
	_, err = GetView(ctx, db, "fresh")
	require.True(t, errors.Is(err, errors.ErrViewNotFound))
	require.True(t, errors.Is(DeleteView(ctx, db, "fresh"), errors.ErrViewNotFound))
}
