package view

import (
	"github.com/hpungsan/cuebin/internal/catalog"
)

// Shell row id prefixes. Take rows use the take id as-is.
const (
	shellMediaPrefix = "media:"
	shellBinPrefix   = "bin:"
	shellActorPrefix = "actor:"
	shellScenePrefix = "scene:"
)

// BuildIndex builds the asset index for a catalog snapshot.
func BuildIndex(s catalog.Snapshot) []Row {
	return BuildAssetIndex(s.Actors, s.Bins, s.Media, s.Takes, s.Scenes)
}

// BuildAssetIndex joins the catalog collections into denormalized rows:
// one per take, one StatusNone row per media item without takes, and one
// StatusEmpty row per bin, actor or scene that nothing else represents.
// Row order follows the input collections. Ids must be unique within each
// collection.
func BuildAssetIndex(actors []catalog.Actor, bins []catalog.Bin, media []catalog.Media, takes []catalog.Take, scenes []catalog.Scene) []Row {
	actorByID := make(map[string]catalog.Actor, len(actors))
	for _, a := range actors {
		actorByID[a.ID] = a
	}
	binByID := make(map[string]catalog.Bin, len(bins))
	for _, b := range bins {
		binByID[b.ID] = b
	}
	sceneByID := make(map[string]catalog.Scene, len(scenes))
	for _, s := range scenes {
		sceneByID[s.ID] = s
	}
	takesByMedia := make(map[string][]catalog.Take, len(media))
	for _, t := range takes {
		takesByMedia[t.MediaID] = append(takesByMedia[t.MediaID], t)
	}

	ix := indexer{
		actors:     actorByID,
		scenes:     sceneByID,
		seenActors: make(map[string]bool),
		seenScenes: make(map[string]bool),
		rows:       make([]Row, 0, len(takes)+len(media)+len(bins)),
	}

	binUsed := make(map[string]bool, len(bins))
	for _, m := range media {
		base := ix.owner(m.OwnerType, m.OwnerID)
		base.MediaID = m.ID
		base.MediaName = m.Name
		base.MediaType = m.MediaType
		base.Prompt = m.Prompt

		var bin *catalog.Bin
		if m.BinID != "" {
			// A dangling bin keeps its id as the name, like owners.
			base.BinID = m.BinID
			base.BinName = m.BinID
			if b, ok := binByID[m.BinID]; ok {
				bin = &b
				binUsed[b.ID] = true
				base.BinName = b.Name
			}
		}
		ix.attachScene(&base, bin)

		ts := takesByMedia[m.ID]
		if len(ts) == 0 {
			row := base
			row.ID = shellMediaPrefix + m.ID
			row.Status = StatusNone
			ix.emit(row)
			continue
		}
		for _, t := range ts {
			row := base
			row.ID = t.ID
			row.TakeID = t.ID
			row.TakeNumber = t.TakeNumber
			row.Status = t.Status
			row.Filename = t.Filename
			row.DurationSec = t.DurationSec
			row.CreatedAt = t.CreatedAt
			row.StatusChangedAt = t.StatusChangedAt
			ix.emit(row)
		}
	}

	for _, b := range bins {
		if binUsed[b.ID] {
			continue
		}
		row := ix.owner(b.OwnerType, b.OwnerID)
		row.ID = shellBinPrefix + b.ID
		row.Status = StatusEmpty
		row.BinID = b.ID
		row.BinName = b.Name
		row.MediaType = b.MediaType
		ix.attachScene(&row, &b)
		ix.emit(row)
	}

	for _, a := range actors {
		if ix.seenActors[a.ID] {
			continue
		}
		row := ix.owner(catalog.OwnerActor, a.ID)
		row.ID = shellActorPrefix + a.ID
		row.Status = StatusEmpty
		ix.emit(row)
	}

	for _, s := range scenes {
		if ix.seenScenes[s.ID] {
			continue
		}
		row := ix.owner(catalog.OwnerScene, s.ID)
		row.ID = shellScenePrefix + s.ID
		row.Status = StatusEmpty
		ix.emit(row)
	}

	return ix.rows
}

type indexer struct {
	actors     map[string]catalog.Actor
	scenes     map[string]catalog.Scene
	seenActors map[string]bool
	seenScenes map[string]bool
	rows       []Row
}

// owner returns a row carrying the resolved owner columns.
func (ix *indexer) owner(ownerType, ownerID string) Row {
	row := Row{OwnerType: ownerType, OwnerID: ownerID}
	switch ownerType {
	case catalog.OwnerActor:
		row.ActorID = ownerID
		row.ActorName = ownerID
		if a, ok := ix.actors[ownerID]; ok && a.DisplayName != "" {
			row.ActorName = a.DisplayName
		}
		row.OwnerName = row.ActorName
	case catalog.OwnerScene:
		row.SceneID = ownerID
		row.SceneName = ix.sceneName(ownerID)
		row.OwnerName = row.SceneName
	default:
		row.OwnerType = catalog.OwnerGlobal
		if row.OwnerID == "" {
			row.OwnerID = catalog.OwnerGlobal
		}
		row.OwnerName = catalog.GlobalOwnerName
	}
	return row
}

// attachScene links a row to a scene through its bin when the owner is
// not itself a scene.
func (ix *indexer) attachScene(row *Row, bin *catalog.Bin) {
	if row.SceneID != "" || bin == nil || bin.SceneID == "" {
		return
	}
	row.SceneID = bin.SceneID
	row.SceneName = ix.sceneName(bin.SceneID)
}

func (ix *indexer) sceneName(id string) string {
	if s, ok := ix.scenes[id]; ok && s.Name != "" {
		return s.Name
	}
	return id
}

func (ix *indexer) emit(row Row) {
	if row.ActorID != "" {
		ix.seenActors[row.ActorID] = true
	}
	if row.SceneID != "" {
		ix.seenScenes[row.SceneID] = true
	}
	ix.rows = append(ix.rows, row)
}
