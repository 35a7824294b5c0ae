package web

import (
	"database/sql"
	"html/template"
	"net/http"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/config"
	"github.com/hpungsan/cuebin/internal/errors"
	"github.com/hpungsan/cuebin/internal/ops"
	"github.com/hpungsan/cuebin/internal/view"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	lib      *ops.Library
	renderer *Renderer
}

// ViewsPageData is the template data for the view list page.
type ViewsPageData struct {
	PageData
	Views       []ops.ViewSummary
	DefaultView string
}

// TreePageData is the template data for a rendered view.
type TreePageData struct {
	PageData
	Tree *view.Tree
}

// MediaPageData is the template data for the media detail page.
type MediaPageData struct {
	PageData
	Detail       *ops.GetMediaOutput
	RenderedHTML template.HTML
	Statuses     []string
}

// HandleViews handles GET /views: every view, presets first.
func (h *Handlers) HandleViews(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListViews(r.Context(), h.db, h.lib)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "views", ViewsPageData{
		PageData: PageData{
			Title:   "Views",
			Version: h.renderer.version,
			Nav:     "views",
		},
		Views:       result.Views,
		DefaultView: h.cfg.DefaultView,
	})
}

// HandleTree handles GET /views/{id}: the catalog grouped by one view.
func (h *Handlers) HandleTree(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("view ID is required"))
		return
	}

	tree, err := ops.Tree(r.Context(), h.db, h.cfg, h.lib, ops.TreeInput{
		ViewID:   id,
		LeafType: r.URL.Query().Get("leaf_type"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, tree)
		return
	}

	h.renderer.renderPage(w, r, "tree", TreePageData{
		PageData: PageData{
			Title:   tree.View.DisplayName(),
			Version: h.renderer.version,
			Nav:     "views",
		},
		Tree: tree,
	})
}

// HandleMedia handles GET /media/{id}: prompt and takes of one media item.
func (h *Handlers) HandleMedia(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("media ID is required"))
		return
	}

	detail, err := ops.GetMedia(r.Context(), h.db, ops.GetMediaInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, detail)
		return
	}

	h.renderer.renderPage(w, r, "media", MediaPageData{
		PageData: PageData{
			Title:   detail.Media.Name,
			Version: h.renderer.version,
			Nav:     "media",
		},
		Detail:       detail,
		RenderedHTML: renderMarkdown(detail.Media.Prompt),
		Statuses:     catalog.TakeStatuses,
	})
}

// HandleTakeStatus handles POST /takes/{id}/status with form field "status".
func (h *Handlers) HandleTakeStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("take ID is required"))
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	take, err := ops.SetTakeStatus(r.Context(), h.db, ops.SetTakeStatusInput{
		ID:     id,
		Status: r.FormValue("status"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.log.Debug("take status changed", "take", take.ID, "status", take.Status)

	// HTMX request: return the new status badge
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<span class="status status-` + template.HTMLEscapeString(take.Status) + `">` +
			template.HTMLEscapeString(take.Status) + `</span>`))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, take)
		return
	}

	// Default: back to the media page
	http.Redirect(w, r, "/media/"+take.MediaID, http.StatusSeeOther)
}
