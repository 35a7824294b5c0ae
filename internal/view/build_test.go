package view

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/cuebin/internal/catalog"
)

func TestBuildViewTree_TimAndMira(t *testing.T) {
	tree, err := BuildViewTree("by-actor", timAndMira(), nil)
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 2)

	var tim, mira *Node
	for _, n := range tree.Nodes {
		switch n.Label {
		case "Tim":
			tim = n
		case "Mira":
			mira = n
		}
	}
	require.NotNil(t, tim, "Tim node")
	require.NotNil(t, mira, "Mira node")

	require.Equal(t, string(ColorYellow), tim.Status)
	require.Len(t, tim.Children, 1)
	bin := tim.Children[0]
	require.Equal(t, "Lines", bin.Label)
	require.Len(t, bin.Children, 1)
	media := bin.Children[0]
	require.Equal(t, "Hello", media.Label)
	require.Len(t, media.Children, 2)
	for _, leaf := range media.Children {
		require.True(t, leaf.Leaf)
		require.NotNil(t, leaf.Data)
	}

	require.Equal(t, string(ColorGray), mira.Status)
	require.Empty(t, mira.Children)
	require.False(t, mira.Leaf)

	require.Equal(t, 3, tree.Stats.Rows)
	require.Equal(t, 2, tree.Stats.Leaves)
}

func TestBuildViewTree_NotFound(t *testing.T) {
	_, err := BuildViewTree("nope", timAndMira(), nil)
	if !errors.Is(err, ErrViewNotFound) {
		t.Errorf("err = %v, want ErrViewNotFound", err)
	}
}

func TestBuildViewTree_EmptyCatalog(t *testing.T) {
	tree, err := BuildViewTree("by-owner", catalog.Snapshot{}, nil)
	if err != nil {
		t.Fatalf("BuildViewTree: %v", err)
	}
	if tree.Nodes == nil || len(tree.Nodes) != 0 {
		t.Errorf("Nodes = %v, want empty", tree.Nodes)
	}
}

func TestBuildViewTree_InvalidView(t *testing.T) {
	custom := []View{{ID: "broken", Levels: []Level{{Field: "colour"}}}}

	tree, err := BuildViewTree("broken", mixedCatalog(), custom)
	if err != nil {
		t.Fatalf("BuildViewTree: %v", err)
	}
	if len(tree.Nodes) != 0 {
		t.Errorf("len(Nodes) = %d, want 0", len(tree.Nodes))
	}
	if !HasErrors(tree.Diagnostics) {
		t.Errorf("Diagnostics = %v, want an error", tree.Diagnostics)
	}
}

func TestBuildViewTree_PredicatePanic(t *testing.T) {
	rows := BuildIndex(mixedCatalog())
	v := View{ID: "p", Levels: []Level{{Field: FieldStatus}}, Filter: Predicate(func(r Row) bool {
		var m map[string]int
		m[r.ID]++
		return true
	})}

	if _, err := Render(v, rows); !errors.Is(err, ErrPredicatePanic) {
		t.Errorf("err = %v, want ErrPredicatePanic", err)
	}
}

func TestBuildViewTree_LeafUniqueness(t *testing.T) {
	s := mixedCatalog()
	custom := []View{
		{ID: "flat", Category: CategoryView},
		{ID: "deep", Levels: []Level{{Field: FieldOwnerType}, {Field: FieldSceneID}, {Field: FieldStatus}, {Field: FieldMediaID}}},
	}

	for _, v := range GetAllViews(custom) {
		tree, err := BuildViewTree(v.ID, s, custom)
		if err != nil {
			t.Fatalf("%s: %v", v.ID, err)
		}
		seen := map[string]bool{}
		Walk(tree.Nodes, func(n *Node, _ int) {
			if seen[n.ID] {
				t.Errorf("%s: duplicate id %q", v.ID, n.ID)
			}
			seen[n.ID] = true
		})
	}
}

func TestBuildViewTree_Idempotent(t *testing.T) {
	s := mixedCatalog()
	for _, v := range Presets() {
		a, err := BuildViewTree(v.ID, s, nil)
		require.NoError(t, err)
		b, err := BuildViewTree(v.ID, s, nil)
		require.NoError(t, err)

		ja, err := json.Marshal(a)
		require.NoError(t, err)
		jb, err := json.Marshal(b)
		require.NoError(t, err)
		require.JSONEq(t, string(ja), string(jb), v.ID)
	}
}

func TestBuildViewTree_ReviewQueue(t *testing.T) {
	tree, err := BuildViewTree("review-queue", mixedCatalog(), nil)
	require.NoError(t, err)

	var leaves []string
	Walk(tree.Nodes, func(n *Node, _ int) {
		if n.Leaf {
			leaves = append(leaves, n.Data.TakeID)
		}
	})
	require.Equal(t, []string{"t3"}, leaves)
}

func TestBuildViewTreeFromRows_Cache(t *testing.T) {
	s := mixedCatalog()
	s.Revision = 7
	var cache IndexCache

	first, err := BuildViewTreeFromRows("by-owner", cache.Rows(s), nil)
	require.NoError(t, err)
	second, err := BuildViewTreeFromRows("by-owner", cache.Rows(s), nil)
	require.NoError(t, err)
	require.Equal(t, first.Stats, second.Stats)

	hits, misses := cache.Counts()
	require.Equal(t, 1, hits)
	require.Equal(t, 1, misses)

	s.Revision = 8
	s.Takes = s.Takes[:1]
	third := cache.Rows(s)
	_, misses = cache.Counts()
	require.Equal(t, 2, misses)
	require.Less(t, len(third), len(BuildIndex(mixedCatalog())))

	cache.Invalidate()
	cache.Rows(s)
	_, misses = cache.Counts()
	require.Equal(t, 3, misses)
}

func TestIndexCache_UnrevisionedSnapshotsBypass(t *testing.T) {
	var cache IndexCache
	cache.Rows(timAndMira())
	cache.Rows(timAndMira())

	hits, misses := cache.Counts()
	if hits != 0 || misses != 0 {
		t.Errorf("hits, misses = %d, %d, want 0, 0", hits, misses)
	}
}

func TestWriteOutline(t *testing.T) {
	tree, err := BuildViewTree("by-actor", timAndMira(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteOutline(&buf, tree.Nodes))

	want := strings.Join([]string{
		"[ ] Mira (0)",
		"[~] Tim (2)",
		"  [~] Lines (2)",
		"    [~] Hello (2)",
		"      + hello_1.wav",
		"      * take 2",
		"",
	}, "\n")
	require.Equal(t, want, buf.String())
}
