package view

import (
	"testing"
)

func TestGetViewByID_Preset(t *testing.T) {
	v, ok := GetViewByID("by-actor", nil)
	if !ok {
		t.Fatal("by-actor not found")
	}
	if v.Source != SourcePreset {
		t.Errorf("Source = %q, want preset", v.Source)
	}
	if len(v.Levels) != 3 || v.Levels[0].Field != FieldActorID {
		t.Errorf("Levels = %+v", v.Levels)
	}
}

func TestGetViewByID_CustomShadowsPreset(t *testing.T) {
	custom := []View{{ID: "by-actor", Name: "Mine", Levels: []Level{{Field: FieldStatus}}, Source: SourceCustom}}

	v, ok := GetViewByID("by-actor", custom)
	if !ok {
		t.Fatal("by-actor not found")
	}
	if v.Name != "Mine" || v.Source != SourceCustom {
		t.Errorf("got %q (%s), want custom view", v.Name, v.Source)
	}
}

func TestGetViewByID_Unknown(t *testing.T) {
	if _, ok := GetViewByID("nope", nil); ok {
		t.Error("unknown id resolved")
	}
}

func TestGetViewByID_ReturnsCopy(t *testing.T) {
	v, _ := GetViewByID("by-owner", nil)
	v.Levels[0].Field = FieldStatus
	v.Levels[0].LabelMap = map[string]string{"x": "y"}

	again, _ := GetViewByID("by-owner", nil)
	if again.Levels[0].Field != FieldOwnerType {
		t.Error("preset table was modified through a returned view")
	}
}

func TestGetAllViews(t *testing.T) {
	presets := Presets()
	custom := []View{
		{ID: "by-scene", Name: "Scenes (mine)"},
		{ID: "favorites", Name: "Favorites"},
		{ID: "favorites", Name: "Duplicate"},
	}

	all := GetAllViews(custom)
	if len(all) != len(presets)+1 {
		t.Fatalf("len(all) = %d, want %d", len(all), len(presets)+1)
	}

	byID := map[string]View{}
	for _, v := range all {
		if _, dup := byID[v.ID]; dup {
			t.Errorf("duplicate id %q", v.ID)
		}
		byID[v.ID] = v
	}
	if byID["by-scene"].Name != "Scenes (mine)" {
		t.Errorf("by-scene = %q, want custom", byID["by-scene"].Name)
	}
	if byID["favorites"].Name != "Favorites" {
		t.Errorf("favorites = %q, want first definition", byID["favorites"].Name)
	}
	if all[len(all)-1].ID != "favorites" {
		t.Errorf("last view = %q, want custom views after presets", all[len(all)-1].ID)
	}
}

func TestMergeViews(t *testing.T) {
	file := []View{{ID: "a", Name: "file a"}, {ID: "b", Name: "file b"}}
	db := []View{{ID: "b", Name: "db b"}, {ID: "c", Name: "db c"}}

	merged := MergeViews(file, db)
	want := []string{"file a", "db b", "db c"}
	if len(merged) != len(want) {
		t.Fatalf("len(merged) = %d, want %d", len(merged), len(want))
	}
	for i, v := range merged {
		if v.Name != want[i] {
			t.Errorf("merged[%d] = %q, want %q", i, v.Name, want[i])
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		view View
		want string
	}{
		{View{ID: "x", Name: "Named"}, "Named"},
		{View{ID: "x", Levels: []Level{{Field: FieldSceneID}}}, "by Scene"},
		{View{ID: "x", Levels: []Level{{Field: FieldBinName}}}, "by bin name"},
		{View{ID: "x"}, "x"},
	}
	for _, tt := range tests {
		if got := tt.view.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%+v) = %q, want %q", tt.view, got, tt.want)
		}
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, v := range Presets() {
		if diags := Validate(v); len(diags) != 0 {
			t.Errorf("preset %s: %v", v.ID, diags)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		view      View
		wantErr   bool
		wantPaths []string
	}{
		{
			name:    "missing id",
			view:    View{Levels: []Level{{Field: FieldStatus}}},
			wantErr: true, wantPaths: []string{"id"},
		},
		{
			name:    "unknown level field",
			view:    View{ID: "v", Levels: []Level{{Field: "colour"}}},
			wantErr: true, wantPaths: []string{"levels[0].field"},
		},
		{
			name:    "unknown rule field",
			view:    View{ID: "v", Filter: RuleSet(Rule{Field: "colour", Op: OpEq, Value: "red"})},
			wantErr: true, wantPaths: []string{"filter[0].field"},
		},
		{
			name:      "terminal before more levels",
			view:      View{ID: "v", Levels: []Level{{Field: FieldMediaID}, {Field: FieldStatus}}},
			wantPaths: []string{"levels[1]"},
		},
		{
			name:      "bad regex and op",
			view:      View{ID: "v", Filter: RuleSet(Rule{Field: FieldStatus, Op: OpRegex, Value: "(["}, Rule{Field: FieldStatus, Op: "gt"})},
			wantPaths: []string{"filter[0].value", "filter[1].op"},
		},
		{
			name:      "non-dimension level",
			view:      View{ID: "v", Levels: []Level{{Field: FieldFilename}}},
			wantPaths: []string{"levels[0].field"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := Validate(tt.view)
			if got := HasErrors(diags); got != tt.wantErr {
				t.Errorf("HasErrors = %v, want %v (%v)", got, tt.wantErr, diags)
			}
			if len(diags) != len(tt.wantPaths) {
				t.Fatalf("diags = %v, want paths %v", diags, tt.wantPaths)
			}
			for i, d := range diags {
				if d.Path != tt.wantPaths[i] {
					t.Errorf("diag %d path = %q, want %q", i, d.Path, tt.wantPaths[i])
				}
			}
		})
	}
}
