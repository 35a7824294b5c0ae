package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/cuebin/internal/config"
	"github.com/hpungsan/cuebin/internal/errors"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("{}\n"), 0600); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

func TestValidatePath_Rejections(t *testing.T) {
	base := isolateBase(t)
	cfg := config.DefaultConfig()

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"parent traversal", "../backup.jsonl"},
		{"mid-path traversal", "/tmp/../etc/backup.jsonl"},
		{"no extension", filepath.Join(base, "exports", "backup")},
		{"wrong extension", filepath.Join(base, "exports", "backup.json")},
		{"outside allowed dirs", filepath.Join(t.TempDir(), "backup.jsonl")},
		{"nested in exports", filepath.Join(base, "exports", "sub", "backup.jsonl")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path, PathCheckWrite, cfg)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("ValidatePath(%q) = %v, want INVALID_REQUEST", tc.path, err)
			}
		})
	}
}

func TestValidatePath_DefaultExportsDir(t *testing.T) {
	base := isolateBase(t)

	dir, err := DefaultExportsDir()
	if err != nil {
		t.Fatalf("DefaultExportsDir() error = %v", err)
	}
	if want := filepath.Join(base, "exports"); dir != want {
		t.Errorf("DefaultExportsDir() = %q, want %q", dir, want)
	}
	if err := ValidatePath(filepath.Join(dir, "out.jsonl"), PathCheckWrite, config.DefaultConfig()); err != nil {
		t.Errorf("ValidatePath in exports dir: %v", err)
	}
}

func TestValidatePath_AllowedPaths(t *testing.T) {
	isolateBase(t)
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	in := filepath.Join(allowed, "in.jsonl")
	writeFile(t, in)
	if err := ValidatePath(in, PathCheckRead, cfg); err != nil {
		t.Errorf("ValidatePath(allowed) error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.jsonl")
	writeFile(t, out)
	if err := ValidatePath(out, PathCheckRead, cfg); err == nil {
		t.Error("ValidatePath(outside) = nil, want error")
	}
}

func TestValidatePath_FileNotFound(t *testing.T) {
	isolateBase(t)
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	err := ValidatePath(filepath.Join(t.TempDir(), "missing.jsonl"), PathCheckRead, cfg)
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestValidatePath_UnsafePathsStillRejectSymlinks(t *testing.T) {
	isolateBase(t)
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	target := filepath.Join(dir, "target.jsonl")
	writeFile(t, target)
	if err := ValidatePath(target, PathCheckRead, cfg); err != nil {
		t.Fatalf("ValidatePath(unsafe dir) error = %v", err)
	}

	link := filepath.Join(dir, "link.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}
	for _, mode := range []PathCheckMode{PathCheckRead, PathCheckWrite} {
		if err := ValidatePath(link, mode, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("ValidatePath(symlink, %d) = %v, want INVALID_REQUEST", mode, err)
		}
	}
}

func TestValidatePath_SymlinkOutOfAllowedDir(t *testing.T) {
	isolateBase(t)
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed}

	secret := filepath.Join(t.TempDir(), "secret.jsonl")
	writeFile(t, secret)
	link := filepath.Join(allowed, "link.jsonl")
	if err := os.Symlink(secret, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	if err := ValidatePath(link, PathCheckRead, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/home/user/file.jsonl", false},
		{"../file.jsonl", true},
		{"/home/../etc/passwd", true},
		{"./file.jsonl", false},
		{"file..name.jsonl", false},
		{"a/b/../c.jsonl", true},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if got := containsTraversal(tc.path); got != tc.want {
				t.Errorf("containsTraversal(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}
