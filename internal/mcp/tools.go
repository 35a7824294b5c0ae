package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/ops"
)

var viewTreeToolDef = mcp.NewTool("view_tree",
	mcp.WithDescription("Render a view of the catalog as a tree of groups and takes. "+
		"Group status colors roll up take statuses: red (rejected, or only new), yellow (new and approved), "+
		"green (approved), gray (nothing reviewable)."),
	mcp.WithString("view_id", mcp.Description("View id; defaults to the configured default view. See view_list.")),
	mcp.WithString("leaf_type", mcp.Description("Noun for unnamed leaves, e.g. \"take\" → \"take 3\".")),
)

var viewListToolDef = mcp.NewTool("view_list",
	mcp.WithDescription("List preset, file-declared and saved views."),
)

var viewGetToolDef = mcp.NewTool("view_get",
	mcp.WithDescription("Get one view definition and its validation diagnostics."),
	mcp.WithString("id", mcp.Required(), mcp.Description("View id")),
)

var viewSaveToolDef = mcp.NewTool("view_save",
	mcp.WithDescription("Save a custom view. A saved view replaces any preset or file view with the same id. "+
		"Levels group by row fields (actor_id, scene_id, owner_type, owner_id, bin_id, media_id, media_type, "+
		"status, created_date, ...). Filter rules are AND-combined; ops: eq, ne, contains, regex, in."),
	mcp.WithObject("view", mcp.Required(),
		mcp.Description(`{"id":"fresh","name":"Fresh","category":"view|summary","levels":[{"field":"actor_id"}],`+
			`"filter":[{"field":"status","op":"in","value":["new"]}],"leafType":"take"}`)),
)

var viewDeleteToolDef = mcp.NewTool("view_delete",
	mcp.WithDescription("Delete a saved view. Presets and file views cannot be deleted."),
	mcp.WithString("id", mcp.Required(), mcp.Description("View id")),
)

var actorAddToolDef = mcp.NewTool("actor_add",
	mcp.WithDescription("Add an actor. Display names are unique, ignoring case and spacing."),
	mcp.WithString("display_name", mcp.Required()),
)

var sceneAddToolDef = mcp.NewTool("scene_add",
	mcp.WithDescription("Add a scene, optionally listing the actors who appear in it."),
	mcp.WithString("name", mcp.Required()),
	mcp.WithArray("actor_ids", mcp.Items(map[string]any{"type": "string"})),
)

var binAddToolDef = mcp.NewTool("bin_add",
	mcp.WithDescription("Add a bin (section) holding one media type. Actors may own dialogue and script bins; "+
		"scenes and the global owner may own any."),
	mcp.WithString("name", mcp.Required()),
	mcp.WithString("media_type", mcp.Required(), mcp.Enum(catalog.MediaTypes...)),
	mcp.WithString("owner_type", mcp.Enum(catalog.OwnerGlobal, catalog.OwnerActor, catalog.OwnerScene),
		mcp.Description("Defaults to global")),
	mcp.WithString("owner_id", mcp.Description("Actor or scene id; required unless global")),
	mcp.WithString("scene_id", mcp.Description("Associate the bin with a scene without changing its owner")),
)

var mediaAddToolDef = mcp.NewTool("media_add",
	mcp.WithDescription("Add a media item (a prompt requesting one asset). Owner and media type default to the bin's."),
	mcp.WithString("name", mcp.Required()),
	mcp.WithString("bin_id"),
	mcp.WithString("media_type", mcp.Enum(catalog.MediaTypes...)),
	mcp.WithString("owner_type", mcp.Enum(catalog.OwnerGlobal, catalog.OwnerActor, catalog.OwnerScene)),
	mcp.WithString("owner_id"),
	mcp.WithString("prompt", mcp.Description("Markdown")),
)

var mediaCompleteToolDef = mcp.NewTool("media_complete",
	mcp.WithDescription("Mark a media item complete or not."),
	mcp.WithString("id", mcp.Required()),
	mcp.WithBoolean("complete", mcp.Required()),
)

var takeAddToolDef = mcp.NewTool("take_add",
	mcp.WithDescription("Record a take for a media item. Takes are numbered per media item and start as new."),
	mcp.WithString("media_id", mcp.Required()),
	mcp.WithString("filename", mcp.Description("Base file name, no directories")),
	mcp.WithNumber("duration_sec"),
)

var takeStatusToolDef = mcp.NewTool("take_status",
	mcp.WithDescription("Set a take's review status."),
	mcp.WithString("id", mcp.Required()),
	mcp.WithString("status", mcp.Required(), mcp.Enum(catalog.TakeStatuses...)),
)

var catalogSnapshotToolDef = mcp.NewTool("catalog_snapshot",
	mcp.WithDescription("Return every actor, scene, bin, media item and take, with the catalog revision."),
)

var catalogDeleteToolDef = mcp.NewTool("catalog_delete",
	mcp.WithDescription("Delete one entity. Media deletes remove their takes; non-empty actors, scenes and bins are refused."),
	mcp.WithString("kind", mcp.Required(),
		mcp.Enum(ops.KindActor, ops.KindScene, ops.KindBin, ops.KindMedia, ops.KindTake)),
	mcp.WithString("id", mcp.Required()),
)

var catalogExportToolDef = mcp.NewTool("catalog_export",
	mcp.WithDescription("Export the catalog and saved views to a JSONL file in ~/.cuebin/exports or an allowed path."),
	mcp.WithString("path", mcp.Description("Destination .jsonl; defaults to a timestamped file in the exports dir")),
)

var catalogImportToolDef = mcp.NewTool("catalog_import",
	mcp.WithDescription("Import a JSONL export. Modes: "+strings.Join([]string{
		"error (abort on any collision, nothing written)",
		"replace (overwrite existing ids)",
		"skip (keep existing ids)",
	}, "; ")+"."),
	mcp.WithString("path", mcp.Required()),
	mcp.WithString("mode", mcp.Enum(string(ops.ImportModeError), string(ops.ImportModeReplace), string(ops.ImportModeSkip))),
)
