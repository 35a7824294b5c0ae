package catalog

// Owner types. A bin or media item belongs to exactly one owner.
const (
	OwnerGlobal = "global"
	OwnerActor  = "actor"
	OwnerScene  = "scene"
)

// GlobalOwnerName is the display name of the synthetic global owner.
const GlobalOwnerName = "Global"

// Media types accepted by bins and media items.
const (
	MediaDialogue = "dialogue"
	MediaMusic    = "music"
	MediaSFX      = "sfx"
	MediaImage    = "image"
	MediaVideo    = "video"
	MediaScript   = "script"
)

// MediaTypes lists every known media type in display order.
var MediaTypes = []string{MediaDialogue, MediaMusic, MediaSFX, MediaImage, MediaVideo, MediaScript}

// Take statuses in the approval workflow.
const (
	StatusNew      = "new"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusHidden   = "hidden"
)

// TakeStatuses lists the statuses a take may be set to.
var TakeStatuses = []string{StatusNew, StatusApproved, StatusRejected, StatusHidden}

// Actor is a voice (or other) performer that owns bins and media.
type Actor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

// Scene is a production scene. ActorIDs records which actors appear in it;
// it does not make the scene own their media.
type Scene struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ActorIDs  []string `json:"actor_ids,omitempty"`
	CreatedAt int64    `json:"created_at"`
}

// Bin is a named section holding media items of one media type.
type Bin struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	OwnerType string `json:"owner_type"`
	OwnerID   string `json:"owner_id,omitempty"`

	// SceneID associates the bin with a scene independently of who owns it.
	SceneID   string `json:"scene_id,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// Media is a unit of creative intent: a named prompt requesting one asset.
type Media struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	BinID     string `json:"bin_id,omitempty"`
	OwnerType string `json:"owner_type"`
	OwnerID   string `json:"owner_id,omitempty"`
	Prompt    string `json:"prompt"`
	Complete  bool   `json:"complete"`
	CreatedAt int64  `json:"created_at"`
}

// Take is one generated artifact for a media item.
type Take struct {
	ID              string  `json:"id"`
	MediaID         string  `json:"media_id"`
	TakeNumber      int     `json:"take_number"`
	Status          string  `json:"status"`
	Filename        string  `json:"filename"`
	DurationSec     float64 `json:"duration_sec"`
	CreatedAt       int64   `json:"created_at"`
	StatusChangedAt *int64  `json:"status_changed_at,omitempty"`
}

// Snapshot is a read-only copy of every catalog collection.
// Revision increases whenever any collection changes.
type Snapshot struct {
	Revision int64   `json:"revision"`
	Actors   []Actor `json:"actors"`
	Scenes   []Scene `json:"scenes"`
	Bins     []Bin   `json:"bins"`
	Media    []Media `json:"media"`
	Takes    []Take  `json:"takes"`
}
