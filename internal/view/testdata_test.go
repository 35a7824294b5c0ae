package view

import "github.com/hpungsan/cuebin/internal/catalog"

// timAndMira is two actors: Tim with one bin, one media item and an
// approved plus a new take; Mira with nothing.
func timAndMira() catalog.Snapshot {
	return catalog.Snapshot{
		Actors: []catalog.Actor{
			{ID: "a1", DisplayName: "Tim"},
			{ID: "a2", DisplayName: "Mira"},
		},
		Bins: []catalog.Bin{
			{ID: "b1", Name: "Lines", MediaType: catalog.MediaDialogue, OwnerType: catalog.OwnerActor, OwnerID: "a1"},
		},
		Media: []catalog.Media{
			{ID: "m1", Name: "Hello", MediaType: catalog.MediaDialogue, BinID: "b1", OwnerType: catalog.OwnerActor, OwnerID: "a1", Prompt: "Say hello"},
		},
		Takes: []catalog.Take{
			{ID: "t1", MediaID: "m1", TakeNumber: 1, Status: catalog.StatusApproved, Filename: "hello_1.wav", CreatedAt: 1700000000},
			{ID: "t2", MediaID: "m1", TakeNumber: 2, Status: catalog.StatusNew, CreatedAt: 1700086400},
		},
	}
}

// mixedCatalog exercises scenes, global media, empty bins and take-less media.
func mixedCatalog() catalog.Snapshot {
	return catalog.Snapshot{
		Actors: []catalog.Actor{
			{ID: "a1", DisplayName: "Tim"},
			{ID: "a2", DisplayName: "Mira"},
		},
		Scenes: []catalog.Scene{
			{ID: "s1", Name: "Opening"},
			{ID: "s2", Name: "Finale"},
		},
		Bins: []catalog.Bin{
			{ID: "b1", Name: "Lines", MediaType: catalog.MediaDialogue, OwnerType: catalog.OwnerActor, OwnerID: "a1", SceneID: "s1"},
			{ID: "b2", Name: "Ambience", MediaType: catalog.MediaSFX, OwnerType: catalog.OwnerScene, OwnerID: "s1"},
			{ID: "b3", Name: "Score", MediaType: catalog.MediaMusic, OwnerType: catalog.OwnerGlobal},
			{ID: "b4", Name: "Unused", MediaType: catalog.MediaDialogue, OwnerType: catalog.OwnerActor, OwnerID: "a1"},
		},
		Media: []catalog.Media{
			{ID: "m1", Name: "Hello", MediaType: catalog.MediaDialogue, BinID: "b1", OwnerType: catalog.OwnerActor, OwnerID: "a1"},
			{ID: "m2", Name: "Wind", MediaType: catalog.MediaSFX, BinID: "b2", OwnerType: catalog.OwnerScene, OwnerID: "s1"},
			{ID: "m3", Name: "Theme", MediaType: catalog.MediaMusic, BinID: "b3", OwnerType: catalog.OwnerGlobal},
			{ID: "m4", Name: "Goodbye", MediaType: catalog.MediaDialogue, BinID: "b1", OwnerType: catalog.OwnerActor, OwnerID: "a1"},
		},
		Takes: []catalog.Take{
			{ID: "t1", MediaID: "m1", TakeNumber: 1, Status: catalog.StatusApproved, Filename: "hello_1.wav"},
			{ID: "t2", MediaID: "m1", TakeNumber: 2, Status: catalog.StatusRejected},
			{ID: "t3", MediaID: "m2", TakeNumber: 1, Status: catalog.StatusNew, Filename: "wind.ogg"},
			{ID: "t4", MediaID: "m3", TakeNumber: 1, Status: catalog.StatusApproved, Filename: "theme.mp3"},
		},
	}
}

func findRow(rows []Row, id string) (Row, bool) {
	for _, r := range rows {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}
