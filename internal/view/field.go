package view

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Field names one addressable column of a Row. Levels group by fields and
// filter rules compare against them; anything outside this set is rejected
// by Validate.
type Field string

const (
	FieldID              Field = "id"
	FieldTakeID          Field = "take_id"
	FieldTakeNumber      Field = "take_number"
	FieldStatus          Field = "status"
	FieldFilename        Field = "filename"
	FieldDurationSec     Field = "duration_sec"
	FieldCreatedAt       Field = "created_at"
	FieldCreatedDate     Field = "created_date"
	FieldStatusChangedAt Field = "status_changed_at"
	FieldMediaID         Field = "media_id"
	FieldMediaName       Field = "media_name"
	FieldMediaType       Field = "media_type"
	FieldPrompt          Field = "prompt"
	FieldBinID           Field = "bin_id"
	FieldBinName         Field = "bin_name"
	FieldOwnerType       Field = "owner_type"
	FieldOwnerID         Field = "owner_id"
	FieldOwnerName       Field = "owner_name"
	FieldActorID         Field = "actor_id"
	FieldActorName       Field = "actor_name"
	FieldSceneID         Field = "scene_id"
	FieldSceneName       Field = "scene_name"
)

var allFields = []Field{
	FieldID, FieldTakeID, FieldTakeNumber, FieldStatus, FieldFilename,
	FieldDurationSec, FieldCreatedAt, FieldCreatedDate, FieldStatusChangedAt,
	FieldMediaID, FieldMediaName, FieldMediaType, FieldPrompt,
	FieldBinID, FieldBinName,
	FieldOwnerType, FieldOwnerID, FieldOwnerName,
	FieldActorID, FieldActorName, FieldSceneID, FieldSceneName,
}

// Fields returns every known row field.
func Fields() []Field {
	return slices.Clone(allFields)
}

// IsField reports whether f names a known row field.
func IsField(f Field) bool {
	return slices.Contains(allFields, f)
}

// Shell statuses mark placeholder rows.
const (
	// StatusNone marks a media item that has no takes yet.
	StatusNone = "__none__"
	// StatusEmpty marks an actor, scene or bin with no media items.
	StatusEmpty = "__empty__"
)

// IsShellStatus reports whether status belongs to a placeholder row.
func IsShellStatus(status string) bool {
	return status == StatusNone || status == StatusEmpty
}

// Row is one denormalized entry of the asset index: a take, a media item
// without takes, or an empty container. Rows are never mutated after
// BuildAssetIndex returns them.
type Row struct {
	ID string `json:"id" yaml:"id"`

	TakeID          string  `json:"take_id,omitempty" yaml:"take_id,omitempty"`
	TakeNumber      int     `json:"take_number,omitempty" yaml:"take_number,omitempty"`
	Status          string  `json:"status" yaml:"status"`
	Filename        string  `json:"filename,omitempty" yaml:"filename,omitempty"`
	DurationSec     float64 `json:"duration_sec,omitempty" yaml:"duration_sec,omitempty"`
	CreatedAt       int64   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	StatusChangedAt *int64  `json:"status_changed_at,omitempty" yaml:"status_changed_at,omitempty"`

	MediaID   string `json:"media_id,omitempty" yaml:"media_id,omitempty"`
	MediaName string `json:"media_name,omitempty" yaml:"media_name,omitempty"`
	MediaType string `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	Prompt    string `json:"prompt,omitempty" yaml:"prompt,omitempty"`

	BinID   string `json:"bin_id,omitempty" yaml:"bin_id,omitempty"`
	BinName string `json:"bin_name,omitempty" yaml:"bin_name,omitempty"`

	OwnerType string `json:"owner_type" yaml:"owner_type"`
	OwnerID   string `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	OwnerName string `json:"owner_name,omitempty" yaml:"owner_name,omitempty"`

	ActorID   string `json:"actor_id,omitempty" yaml:"actor_id,omitempty"`
	ActorName string `json:"actor_name,omitempty" yaml:"actor_name,omitempty"`
	SceneID   string `json:"scene_id,omitempty" yaml:"scene_id,omitempty"`
	SceneName string `json:"scene_name,omitempty" yaml:"scene_name,omitempty"`
}

// HasTake reports whether the row represents a generated take.
func (r Row) HasTake() bool {
	return r.TakeID != ""
}

// Value returns the raw value of field f. Empty strings and take columns
// of take-less rows come back as nil. ok is false for unknown fields.
func (r Row) Value(f Field) (v any, ok bool) {
	switch f {
	case FieldID:
		return str(r.ID), true
	case FieldTakeID:
		return str(r.TakeID), true
	case FieldTakeNumber:
		if !r.HasTake() {
			return nil, true
		}
		return r.TakeNumber, true
	case FieldStatus:
		return str(r.Status), true
	case FieldFilename:
		return str(r.Filename), true
	case FieldDurationSec:
		if !r.HasTake() {
			return nil, true
		}
		return r.DurationSec, true
	case FieldCreatedAt:
		if !r.HasTake() {
			return nil, true
		}
		return r.CreatedAt, true
	case FieldCreatedDate:
		if !r.HasTake() {
			return nil, true
		}
		return time.Unix(r.CreatedAt, 0).UTC().Format("2006-01-02"), true
	case FieldStatusChangedAt:
		if r.StatusChangedAt == nil {
			return nil, true
		}
		return *r.StatusChangedAt, true
	case FieldMediaID:
		return str(r.MediaID), true
	case FieldMediaName:
		return str(r.MediaName), true
	case FieldMediaType:
		return str(r.MediaType), true
	case FieldPrompt:
		return str(r.Prompt), true
	case FieldBinID:
		return str(r.BinID), true
	case FieldBinName:
		return str(r.BinName), true
	case FieldOwnerType:
		return str(r.OwnerType), true
	case FieldOwnerID:
		return str(r.OwnerID), true
	case FieldOwnerName:
		return str(r.OwnerName), true
	case FieldActorID:
		return str(r.ActorID), true
	case FieldActorName:
		return str(r.ActorName), true
	case FieldSceneID:
		return str(r.SceneID), true
	case FieldSceneName:
		return str(r.SceneName), true
	}
	return nil, false
}

// Key returns the grouping key for field f, or "" when the row has no
// value there.
func (r Row) Key(f Field) string {
	v, _ := r.Value(f)
	if v == nil {
		return ""
	}
	return coerce(v)
}

func str(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// coerce renders a value the way the filter language compares it:
// nil is "null", numbers print without trailing zeros, slices join with ",".
func coerce(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			if e != nil {
				parts[i] = coerce(e)
			}
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(x, ",")
	}
	return fmt.Sprint(v)
}
