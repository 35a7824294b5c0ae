package viewfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/cuebin/internal/view"
)

const sample = `
view "fresh-dialogue" {
  name      = "Fresh dialogue"
  category  = "summary"
  leaf_type = "line"

  level "actor_id" {}
  level "media_id" {
    icon      = "mic"
    label_map = { m1 = "Opening line" }
  }

  rule {
    field = "media_type"
    op    = "eq"
    value = "dialogue"
  }
  rule {
    field = "take_number"
    op    = "in"
    value = [1, 2]
  }
}

view "flat" {
  level "status" {
    terminal = true
  }
}
`

func TestParse(t *testing.T) {
	views, err := Parse([]byte(sample), "views.hcl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len(views) = %d, want 2", len(views))
	}

	v := views[0]
	if v.ID != "fresh-dialogue" || v.Name != "Fresh dialogue" {
		t.Errorf("view = %q/%q", v.ID, v.Name)
	}
	if v.Category != view.CategorySummary || v.LeafType != "line" || v.Source != view.SourceFile {
		t.Errorf("category/leaf/source = %q/%q/%q", v.Category, v.LeafType, v.Source)
	}
	if len(v.Levels) != 2 || v.Levels[1].Icon != "mic" || v.Levels[1].LabelMap["m1"] != "Opening line" {
		t.Errorf("levels = %+v", v.Levels)
	}
	if v.Filter.Kind != view.FilterRules || len(v.Filter.Rules) != 2 {
		t.Fatalf("filter = %+v", v.Filter)
	}

	list, ok := v.Filter.Rules[1].Value.([]any)
	if !ok || len(list) != 2 || list[0] != float64(1) {
		t.Errorf("in value = %#v, want [1 2]", v.Filter.Rules[1].Value)
	}
	if !view.Matches(view.Row{TakeID: "t", TakeNumber: 2, MediaType: "dialogue"}, v.Filter) {
		t.Error("decoded filter should match take 2 dialogue")
	}

	flat := views[1]
	if flat.Category != view.CategoryView {
		t.Errorf("default category = %q, want view", flat.Category)
	}
	if !flat.Filter.IsZero() {
		t.Errorf("filter = %+v, want none", flat.Filter)
	}
	if !flat.Levels[0].IsTerminal {
		t.Error("terminal flag lost")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `view "x" {`, "failed to parse"},
		{"unknown attribute", `view "x" { colour = "red" }`, "failed to decode"},
		{"duplicate", "view \"x\" {}\nview \"x\" {}\n", "duplicate view"},
		{"variable in value", `view "x" {
  rule {
    field = "status"
    op    = "eq"
    value = var.status
  }
}`, "rule 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "views.hcl")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestParse_MissingValueIsNull(t *testing.T) {
	views, err := Parse([]byte(`view "x" {
  rule {
    field = "bin_id"
    op    = "eq"
  }
}`), "views.hcl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := views[0].Filter.Rules[0].Value; got != nil {
		t.Errorf("value = %#v, want nil", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	views, err := Load(filepath.Join(dir, "missing.hcl"))
	if err != nil || views != nil {
		t.Fatalf("Load(missing) = %v, %v; want nil, nil", views, err)
	}

	path := filepath.Join(dir, "views.hcl")
	if err := os.WriteFile(path, []byte(sample), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	views, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(views) != 2 {
		t.Errorf("len(views) = %d, want 2", len(views))
	}
}
