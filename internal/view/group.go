package view

import (
	"path"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hpungsan/cuebin/internal/catalog"
)

// terminalDepth is past any configured level count; recursing at this depth
// turns the remaining rows into leaves.
const terminalDepth = 999

// DefaultLeafType names leaves when a view does not.
const DefaultLeafType = "take"

// Color is a group's rolled-up approval state.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorGray   Color = "gray"
)

// Node is one entry of a view tree: a group (Field/Key set, Children
// possibly empty) or a leaf (Leaf true, Data set).
type Node struct {
	ID     string `json:"id" yaml:"id"`
	Label  string `json:"label" yaml:"label"`
	Icon   string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Field  Field  `json:"field,omitempty" yaml:"field,omitempty"`
	Key    string `json:"key,omitempty" yaml:"key,omitempty"`
	Leaf   bool   `json:"leaf" yaml:"leaf"`
	Status string `json:"status" yaml:"status"`

	// Count is the number of takes under a group.
	Count    int     `json:"count" yaml:"count"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
	Data     *Row    `json:"data,omitempty" yaml:"data,omitempty"`
}

// Level is one grouping step of a view. Unset display settings fall back
// to the field's dimension.
type Level struct {
	Field        Field             `json:"field" yaml:"field"`
	DisplayField Field             `json:"displayField,omitempty" yaml:"display_field,omitempty"`
	Icon         string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	IsTerminal   bool              `json:"isTerminal,omitempty" yaml:"is_terminal,omitempty"`
	LabelMap     map[string]string `json:"labelMap,omitempty" yaml:"label_map,omitempty"`
}

// GroupOption tweaks GroupByLevels.
type GroupOption func(*grouper)

// WithLeafType sets the noun used in synthesized leaf labels.
func WithLeafType(leafType string) GroupOption {
	return func(g *grouper) {
		if leafType != "" {
			g.leafType = leafType
		}
	}
}

// GroupByLevels partitions rows into a tree along levels. Rows with no
// value for a level's field are left out of that branch. With no levels
// every non-shell row becomes a top-level leaf. Output order is fully
// determined by the sort rules and the input order.
func GroupByLevels(rows []Row, levels []Level, opts ...GroupOption) []*Node {
	if len(rows) == 0 {
		return []*Node{}
	}
	g := &grouper{
		levels:   make([]Level, len(levels)),
		leafType: DefaultLeafType,
		collator: collate.New(language.Und),
	}
	for i, l := range levels {
		g.levels[i] = resolveLevel(l)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g.group(rows, 0, "")
}

// grouper holds per-call state. collate.Collator is not safe for
// concurrent use, so each call gets its own.
type grouper struct {
	levels   []Level
	leafType string
	collator *collate.Collator
}

func (g *grouper) group(rows []Row, depth int, parentPath string) []*Node {
	if depth >= len(g.levels) {
		return g.leaves(rows, parentPath)
	}
	lvl := g.levels[depth]

	var keys []string
	buckets := make(map[string][]Row)
	for _, row := range rows {
		key := row.Key(lvl.Field)
		if key == "" {
			continue
		}
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], row)
	}

	next := depth + 1
	if lvl.IsTerminal {
		next = terminalDepth
	}

	nodes := make([]*Node, 0, len(keys))
	for _, key := range keys {
		children := buckets[key]
		id := parentPath + "/" + string(lvl.Field) + ":" + key
		nodes = append(nodes, &Node{
			ID:       id,
			Label:    groupLabel(lvl, key, children),
			Icon:     lvl.Icon,
			Field:    lvl.Field,
			Key:      key,
			Status:   string(Rollup(children)),
			Count:    countTakes(children),
			Children: g.group(children, next, id),
		})
	}

	g.sort(lvl.Field, nodes)
	return nodes
}

// leaves turns rows into leaf nodes, dropping empty-container shells.
func (g *grouper) leaves(rows []Row, parentPath string) []*Node {
	nodes := make([]*Node, 0, len(rows))
	for _, row := range rows {
		if row.Status == StatusEmpty || row.MediaID == "" {
			continue
		}
		data := row
		nodes = append(nodes, &Node{
			ID:     parentPath + "/leaf:" + row.ID,
			Label:  g.leafLabel(row),
			Icon:   leafIcon(row),
			Leaf:   true,
			Status: row.Status,
			Count:  countTakes([]Row{row}),
			Data:   &data,
		})
	}
	return nodes
}

func (g *grouper) leafLabel(row Row) string {
	switch {
	case row.Filename != "":
		return row.Filename
	case row.HasTake():
		return g.leafType + " " + coerce(row.TakeNumber)
	default:
		return "(no " + g.leafType + "s)"
	}
}

// groupLabel resolves labelMap, then the display field of the first row,
// then the raw key.
func groupLabel(lvl Level, key string, rows []Row) string {
	if label, ok := lvl.LabelMap[key]; ok && label != "" {
		return label
	}
	if lvl.DisplayField != "" && len(rows) > 0 {
		if v := rows[0].Key(lvl.DisplayField); v != "" {
			return v
		}
	}
	return key
}

var (
	ownerTypeOrder = map[string]int{catalog.OwnerGlobal: 0, catalog.OwnerActor: 1, catalog.OwnerScene: 2}
	statusOrder    = map[string]int{
		catalog.StatusApproved: 0,
		catalog.StatusNew:      1,
		catalog.StatusRejected: 2,
		catalog.StatusHidden:   3,
	}
)

const unlistedOrder = 99

// sort orders sibling groups: owner_type and status by fixed order, the
// rest by label under the collator. Ties fall back to the key.
func (g *grouper) sort(field Field, nodes []*Node) {
	var order map[string]int
	switch field {
	case FieldOwnerType:
		order = ownerTypeOrder
	case FieldStatus:
		order = statusOrder
	}

	slices.SortStableFunc(nodes, func(a, b *Node) int {
		if order != nil {
			if c := rank(order, a.Key) - rank(order, b.Key); c != 0 {
				return c
			}
		} else if c := g.collator.CompareString(a.Label, b.Label); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
}

func rank(order map[string]int, key string) int {
	if r, ok := order[key]; ok {
		return r
	}
	return unlistedOrder
}

// Rollup summarizes the approval state of rows, ignoring shells:
// any rejected, or new without approved, is red; new plus approved is
// yellow; approved only is green; nothing real is gray.
func Rollup(rows []Row) Color {
	statuses := make([]string, len(rows))
	for i, r := range rows {
		statuses[i] = r.Status
	}
	return RollupStatuses(statuses)
}

// RollupStatuses applies the Rollup rule to raw status strings.
func RollupStatuses(statuses []string) Color {
	var hasNew, hasApproved, hasRejected bool
	for _, s := range statuses {
		switch s {
		case catalog.StatusNew:
			hasNew = true
		case catalog.StatusApproved:
			hasApproved = true
		case catalog.StatusRejected:
			hasRejected = true
		}
	}
	switch {
	case hasRejected || (hasNew && !hasApproved):
		return ColorRed
	case hasNew && hasApproved:
		return ColorYellow
	case hasApproved:
		return ColorGreen
	default:
		return ColorGray
	}
}

func countTakes(rows []Row) int {
	n := 0
	for _, r := range rows {
		if r.HasTake() {
			n++
		}
	}
	return n
}

var extIcons = map[string]string{
	".wav":  "file-audio",
	".mp3":  "file-audio",
	".ogg":  "file-audio",
	".flac": "file-audio",
	".png":  "file-image",
	".jpg":  "file-image",
	".jpeg": "file-image",
	".webp": "file-image",
	".mp4":  "file-video",
	".mov":  "file-video",
	".webm": "file-video",
	".txt":  "file-text",
	".md":   "file-text",
}

var mediaTypeIcons = map[string]string{
	catalog.MediaDialogue: "mic",
	catalog.MediaMusic:    "music",
	catalog.MediaSFX:      "zap",
	catalog.MediaImage:    "image",
	catalog.MediaVideo:    "film",
	catalog.MediaScript:   "file-text",
}

// leafIcon picks an icon from the take's file extension, then its media type.
func leafIcon(row Row) string {
	if icon, ok := extIcons[strings.ToLower(path.Ext(row.Filename))]; ok {
		return icon
	}
	if icon, ok := mediaTypeIcons[row.MediaType]; ok {
		return icon
	}
	return "file"
}
