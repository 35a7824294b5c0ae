package mcp

import (
	"database/sql"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/cuebin/internal/config"
	"github.com/hpungsan/cuebin/internal/logger"
	"github.com/hpungsan/cuebin/internal/ops"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"view", "actor", "scene", "bin", "media", "take", "catalog"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"view_tree":        {viewTreeToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleViewTree }},
	"view_list":        {viewListToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleViewList }},
	"view_get":         {viewGetToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleViewGet }},
	"view_save":        {viewSaveToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleViewSave }},
	"view_delete":      {viewDeleteToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleViewDelete }},
	"actor_add":        {actorAddToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleActorAdd }},
	"scene_add":        {sceneAddToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSceneAdd }},
	"bin_add":          {binAddToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleBinAdd }},
	"media_add":        {mediaAddToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleMediaAdd }},
	"media_complete":   {mediaCompleteToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleMediaComplete }},
	"take_add":         {takeAddToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleTakeAdd }},
	"take_status":      {takeStatusToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleTakeStatus }},
	"catalog_snapshot": {catalogSnapshotToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleCatalogSnapshot }},
	"catalog_delete":   {catalogDeleteToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleCatalogDelete }},
	"catalog_export":   {catalogExportToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleCatalogExport }},
	"catalog_import":   {catalogImportToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleCatalogImport }},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns the names that are not registered tools.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns the names that are not known tool types.
func ValidateDisabledTypes(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if !slices.Contains(KnownTypes, name) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool returns the prefix before the first underscore
// ("take_status" → "take").
func GetTypeForTool(toolName string) string {
	typ, _, ok := strings.Cut(toolName, "_")
	if !ok || typ == "" {
		return ""
	}
	return typ
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}
	tools := make([]string, 0)
	for _, name := range AllToolNames() {
		if slices.Contains(types, GetTypeForTool(name)) {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates an MCP server with the cuebin tools registered, minus
// cfg.DisabledTools and every tool of cfg.DisabledTypes. Unknown names in
// either list are logged and ignored.
func NewServer(db *sql.DB, cfg *config.Config, lib *ops.Library, log *logger.Logger, version string) *server.MCPServer {
	if log == nil {
		log = logger.Nop()
	}
	s := server.NewMCPServer(
		"cuebin",
		version,
		server.WithToolCapabilities(true),
	)

	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("unknown tools in disabled_tools", "tools", unknown)
	}
	if unknown := ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		log.Warn("unknown types in disabled_types", "types", unknown)
	}

	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	h := NewHandlers(db, cfg, lib)
	registered := 0
	for _, name := range AllToolNames() {
		if disabled[name] {
			continue
		}
		entry := toolRegistry[name]
		s.AddTool(entry.def, entry.handler(h))
		registered++
	}
	log.Debug("mcp tools registered", "count", registered, "disabled", len(disabled))
	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, lib *ops.Library, log *logger.Logger, version string) error {
	return server.ServeStdio(NewServer(db, cfg, lib, log, version))
}
