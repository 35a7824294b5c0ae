package view

import "maps"

// Dimension is one groupable field with its display defaults.
type Dimension struct {
	Field        Field             `json:"field" yaml:"field"`
	Label        string            `json:"label" yaml:"label"`
	Icon         string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	DisplayField Field             `json:"displayField,omitempty" yaml:"display_field,omitempty"`
	LabelMap     map[string]string `json:"labelMap,omitempty" yaml:"label_map,omitempty"`
	IsTerminal   bool              `json:"isTerminal,omitempty" yaml:"is_terminal,omitempty"`
}

var dimensions = []Dimension{
	{
		Field: FieldOwnerType,
		Label: "Owner Type",
		Icon:  "layers",
		LabelMap: map[string]string{
			"global": "Global",
			"actor":  "Actors",
			"scene":  "Scenes",
		},
	},
	{Field: FieldOwnerID, Label: "Owner", Icon: "user", DisplayField: FieldOwnerName},
	{Field: FieldActorID, Label: "Actor", Icon: "person", DisplayField: FieldActorName},
	{Field: FieldSceneID, Label: "Scene", Icon: "movie", DisplayField: FieldSceneName},
	{Field: FieldBinID, Label: "Bin", Icon: "folder", DisplayField: FieldBinName},
	{
		Field: FieldMediaType,
		Label: "Media Type",
		Icon:  "category",
		LabelMap: map[string]string{
			"dialogue": "Dialogue",
			"music":    "Music",
			"sfx":      "SFX",
			"image":    "Images",
			"video":    "Video",
			"script":   "Scripts",
		},
	},
	{Field: FieldMediaID, Label: "Media", Icon: "audio", DisplayField: FieldMediaName, IsTerminal: true},
	{
		Field: FieldStatus,
		Label: "Status",
		Icon:  "flag",
		LabelMap: map[string]string{
			"approved":  "Approved",
			"new":       "New",
			"rejected":  "Rejected",
			"hidden":    "Hidden",
			StatusNone:  "No takes",
			StatusEmpty: "Empty",
		},
	},
	{Field: FieldCreatedDate, Label: "Created", Icon: "calendar"},
}

// Dimensions returns the groupable dimension catalog in picker order.
// The result is a copy; callers may modify it freely.
func Dimensions() []Dimension {
	out := make([]Dimension, len(dimensions))
	for i, d := range dimensions {
		out[i] = d.clone()
	}
	return out
}

// LookupDimension returns the catalog entry for field f.
func LookupDimension(f Field) (Dimension, bool) {
	for _, d := range dimensions {
		if d.Field == f {
			return d.clone(), true
		}
	}
	return Dimension{}, false
}

func (d Dimension) clone() Dimension {
	d.LabelMap = maps.Clone(d.LabelMap)
	return d
}

// resolveLevel fills a level's unset display settings from its dimension.
// A level is terminal when either the level or the dimension says so.
func resolveLevel(l Level) Level {
	d, ok := LookupDimension(l.Field)
	if !ok {
		return l
	}
	if l.DisplayField == "" {
		l.DisplayField = d.DisplayField
	}
	if l.Icon == "" {
		l.Icon = d.Icon
	}
	if l.LabelMap == nil {
		l.LabelMap = d.LabelMap
	}
	l.IsTerminal = l.IsTerminal || d.IsTerminal
	return l
}
