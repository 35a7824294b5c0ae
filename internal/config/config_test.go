package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := DefaultConfig()
	if cfg.DefaultView != want.DefaultView || cfg.LeafType != want.LeafType || cfg.WebPort != want.WebPort {
		t.Fatalf("Load() = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"default_view": "by-scene", "leaf_type": "cue", "web_port": 9000}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultView != "by-scene" {
		t.Errorf("DefaultView = %q, want by-scene", cfg.DefaultView)
	}
	if cfg.LeafType != "cue" {
		t.Errorf("LeafType = %q, want cue", cfg.LeafType)
	}
	if cfg.WebPort != 9000 {
		t.Errorf("WebPort = %d, want 9000", cfg.WebPort)
	}
	if cfg.WebBind != "127.0.0.1" {
		t.Errorf("WebBind = %q, want default", cfg.WebBind)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	writeConfig(t, globalDir, `{"default_view": "by-owner", "disabled_tools": ["catalog_import"]}`)
	writeConfig(t, filepath.Join(repoRoot, ".cuebin"), `{"default_view": "review-queue", "disabled_tools": ["view_delete"]}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.DefaultView != "review-queue" {
		t.Errorf("DefaultView = %q, want review-queue (repo override)", cfg.DefaultView)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want 2 entries", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.DefaultView != "by-actor" {
		t.Errorf("DefaultView = %q, want by-actor", cfg.DefaultView)
	}
	if len(cfg.DisabledTools) != 0 {
		t.Errorf("DisabledTools = %v, want empty", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".cuebin"), `{"disabled_types": ["catalog"]}`)

	subdir := filepath.Join(tmpDir, "subdir", "deeper")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(t.TempDir(), subdir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if len(cfg.DisabledTypes) != 1 || cfg.DisabledTypes[0] != "catalog" {
		t.Errorf("DisabledTypes = %v, want [catalog]", cfg.DisabledTypes)
	}
}

func TestFindRepoConfig(t *testing.T) {
	tmpDir := t.TempDir()
	if found := FindRepoConfig(tmpDir); found != "" {
		t.Errorf("FindRepoConfig() = %q, want empty string", found)
	}

	configPath := writeConfig(t, filepath.Join(tmpDir, ".cuebin"), `{}`)
	if found := FindRepoConfig(tmpDir); found != configPath {
		t.Errorf("FindRepoConfig() = %q, want %q", found, configPath)
	}
	if found := FindRepoConfig(""); found != "" {
		t.Errorf("FindRepoConfig(\"\") = %q, want empty string", found)
	}
}

func TestMerge(t *testing.T) {
	base := &Config{DefaultView: "by-actor", DBMaxOpenConns: 5, AllowUnsafePaths: true,
		DisabledTools: []string{"view_save", " catalog_import "}}
	overlay := &Config{DefaultView: "by-scene", DisabledTools: []string{"catalog_import", "take_add"}}

	result := Merge(base, overlay)

	if result.DefaultView != "by-scene" {
		t.Errorf("DefaultView = %q, want by-scene (overlay)", result.DefaultView)
	}
	if result.DBMaxOpenConns != 5 {
		t.Errorf("DBMaxOpenConns = %d, want 5 (base, overlay is zero)", result.DBMaxOpenConns)
	}
	if !result.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be true (base OR overlay)")
	}
	want := []string{"view_save", "catalog_import", "take_add"}
	if len(result.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", result.DisabledTools, want)
	}
	for i, s := range want {
		if result.DisabledTools[i] != s {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, result.DisabledTools[i], s)
		}
	}
}

func TestBaseDir_Env(t *testing.T) {
	t.Setenv("CUEBIN_HOME", "/srv/cuebin")
	dir, err := BaseDir()
	if err != nil {
		t.Fatalf("BaseDir() error = %v", err)
	}
	if dir != "/srv/cuebin" {
		t.Errorf("BaseDir() = %q, want /srv/cuebin", dir)
	}
}

func TestViewsPath(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"views.hcl", filepath.Join("/base", "views.hcl")},
		{"/etc/cuebin/views.hcl", "/etc/cuebin/views.hcl"},
		{"", ""},
	}
	for _, tt := range tests {
		cfg := &Config{ViewsFile: tt.file}
		if got := cfg.ViewsPath("/base"); got != tt.want {
			t.Errorf("ViewsPath(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}
