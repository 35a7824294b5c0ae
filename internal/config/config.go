package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// DefaultView is the view rendered when none is named.
	DefaultView string `json:"default_view,omitempty"`

	// LeafType is the noun used for leaves in synthesized labels ("take 3").
	LeafType string `json:"leaf_type,omitempty"`

	// ViewsFile is an HCL file of user views. Relative paths resolve against
	// the base directory.
	ViewsFile string `json:"views_file,omitempty"`

	// LogMode is "dev" (console, debug) or "prod" (JSON, info).
	LogMode string `json:"log_mode,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.cuebin/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits open database connections. 1 serializes access.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes disables every tool of a type ("view", "catalog", ...).
	DisabledTypes []string `json:"disabled_types,omitempty"`

	// WebBind and WebPort are the listen address of `cuebin serve`.
	WebBind string `json:"web_bind,omitempty"`
	WebPort int    `json:"web_port,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultView: "by-actor",
		LeafType:    "take",
		ViewsFile:   "views.hcl",
		LogMode:     "dev",
		WebBind:     "127.0.0.1",
		WebPort:     7474,
	}
}

// BaseDir returns $CUEBIN_HOME, or ~/.cuebin.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("CUEBIN_HOME")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cuebin"), nil
}

// ViewsPath resolves ViewsFile against baseDir. Empty means no views file.
func (c *Config) ViewsPath(baseDir string) string {
	if c.ViewsFile == "" {
		return ""
	}
	if filepath.IsAbs(c.ViewsFile) {
		return c.ViewsFile
	}
	return filepath.Join(baseDir, c.ViewsFile)
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both the global directory and the
// nearest .cuebin/config.json at or above startDir. Repo scalars win; arrays
// are merged (deduplicated). Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .cuebin/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".cuebin", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw returns a zero config (not defaults) for a missing file.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		DefaultView:    pick(overlay.DefaultView, base.DefaultView),
		LeafType:       pick(overlay.LeafType, base.LeafType),
		ViewsFile:      pick(overlay.ViewsFile, base.ViewsFile),
		LogMode:        pick(overlay.LogMode, base.LogMode),
		WebBind:        pick(overlay.WebBind, base.WebBind),
		WebPort:        pick(overlay.WebPort, base.WebPort),
		DBMaxOpenConns: pick(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns: pick(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// pick returns overlay unless it is the zero value.
func pick[T comparable](overlay, base T) T {
	var zero T
	if overlay != zero {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string(nil), a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
