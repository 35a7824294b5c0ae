package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/cuebin/internal/config"
	"github.com/hpungsan/cuebin/internal/errors"
	"github.com/hpungsan/cuebin/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
	lib *ops.Library
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, lib *ops.Library) *Handlers {
	return &Handlers{db: db, cfg: cfg, lib: lib}
}

// IDRequest represents the arguments of tools addressing one view or entity.
type IDRequest struct {
	ID string `json:"id"`
}

// handle decodes the arguments into In and runs fn, turning any failure
// into an error result.
func handle[In, Out any](ctx context.Context, req mcp.CallToolRequest, fn func(context.Context, In) (Out, error)) (*mcp.CallToolResult, error) {
	input, err := decode[In](req)
	if err != nil {
		return errorResult(err), nil
	}
	out, err := fn(ctx, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleViewTree handles the view_tree tool call.
func (h *Handlers) HandleViewTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ops.TreeInput) (any, error) {
		return ops.Tree(ctx, h.db, h.cfg, h.lib, in)
	})
}

// HandleViewList handles the view_list tool call.
func (h *Handlers) HandleViewList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := ops.ListViews(ctx, h.db, h.lib)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleViewGet handles the view_get tool call.
func (h *Handlers) HandleViewGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in IDRequest) (any, error) {
		return ops.GetView(ctx, h.db, h.lib, ops.GetViewInput{ID: in.ID})
	})
}

// HandleViewSave handles the view_save tool call.
func (h *Handlers) HandleViewSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ops.SaveViewInput) (any, error) {
		return ops.SaveView(ctx, h.db, h.lib, in)
	})
}

// HandleViewDelete handles the view_delete tool call.
func (h *Handlers) HandleViewDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in IDRequest) (any, error) {
		return ops.DeleteView(ctx, h.db, h.lib, ops.DeleteViewInput{ID: in.ID})
	})
}

// HandleActorAdd handles the actor_add tool call.
func (h *Handlers) HandleActorAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ops.AddActorInput) (any, error) {
		return ops.AddActor(ctx, h.db, in)
	})
}

// HandleSceneAdd handles the scene_add tool call.
func (h *Handlers) HandleSceneAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ops.AddSceneInput) (any, error) {
		return ops.AddScene(ctx, h.db, in)
	})
}

// HandleBinAdd handles the bin_add tool call.
func (h *Handlers) HandleBinAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ops.AddBinInput) (any, error) {
		return ops.AddBin(ctx, h.db, in)
	})
}

// HandleMediaAdd handles the media_add tool call.
func (h *Handlers) HandleMediaAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ops.AddMediaInput) (any, error) {
		return ops.AddMedia(ctx, h.db, in)
	})
}

// HandleMediaComplete handles the media_complete tool call.
func (h *Handlers) HandleMediaComplete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ops.SetMediaCompleteInput) (any, error) {
		return ops.SetMediaComplete(ctx, h.db, in)
	})
}

// HandleTakeAdd handles the take_add tool call.
func (h *Handlers) HandleTakeAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ops.AddTakeInput) (any, error) {
		return ops.AddTake(ctx, h.db, in)
	})
}

// HandleTakeStatus handles the take_status tool call.
func (h *Handlers) HandleTakeStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ops.SetTakeStatusInput) (any, error) {
		return ops.SetTakeStatus(ctx, h.db, in)
	})
}

// HandleCatalogSnapshot handles the catalog_snapshot tool call.
func (h *Handlers) HandleCatalogSnapshot(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := ops.Snapshot(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleCatalogDelete handles the catalog_delete tool call.
func (h *Handlers) HandleCatalogDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ops.DeleteInput) (any, error) {
		return ops.Delete(ctx, h.db, in)
	})
}

// HandleCatalogExport handles the catalog_export tool call.
func (h *Handlers) HandleCatalogExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ops.ExportInput) (any, error) {
		return ops.Export(ctx, h.db, h.cfg, in)
	})
}

// HandleCatalogImport handles the catalog_import tool call.
func (h *Handlers) HandleCatalogImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ops.ImportInput) (any, error) {
		return ops.Import(ctx, h.db, h.cfg, in)
	})
}

// Result helpers

// errorResult builds an IsError result carrying {error:{code,message,status,details}}.
// Details are dropped for INTERNAL errors; they may hold paths or SQL.
func errorResult(err error) *mcp.CallToolResult {
	errObj := map[string]any{
		"code":    string(errors.ErrInternal),
		"message": "an internal error occurred",
		"status":  500,
	}
	if ce := errors.As(err); ce != nil {
		errObj["code"] = string(ce.Code)
		errObj["status"] = ce.Status
		errObj["message"] = ce.Message
		if err != error(ce) {
			// Keep the context added by wrapping, minus the code prefix.
			errObj["message"] = strings.Replace(err.Error(), ce.Error(), ce.Message, 1)
		}
		if ce.Code != errors.ErrInternal && ce.Details != nil {
			errObj["details"] = ce.Details
		}
	}

	content, _ := json.Marshal(map[string]any{"error": errObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
