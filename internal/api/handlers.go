package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/boxgraph/internal/apperr"
	"github.com/starford/boxgraph/internal/query"
)

const defaultSearchLimit = 10

// Handler holds API route handlers.
type Handler struct {
	graph *query.Graph
}

// NewHandler creates a new Handler.
func NewHandler(g *query.Graph) *Handler {
	return &Handler{graph: g}
}

// ListCategories handles GET /api/categories.
//
//	@Summary		List categories, largest first
//	@Tags			categories
//	@Produce		json
//	@Success		200		{object}	CategoryListResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, CategoryListResponse{Categories: h.graph.Categories()})
}

// GetCategory handles GET /api/categories/{name}.
//
//	@Summary		List the boxes of a category
//	@Tags			categories
//	@Produce		json
//	@Param			name	path		string	true	"Category label"
//	@Success		200		{object}	BoxListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{name} [get]
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	boxes, err := h.graph.Category(name)
	if err != nil {
		resp := errorBody("category not found")
		for _, c := range h.graph.CategoryCounts() {
			resp.Suggestions = append(resp.Suggestions, c.Name)
		}
		h.fail(w, err, resp)
		return
	}
	writeCached(w, r, BoxListResponse{Name: name, Total: len(boxes), Boxes: boxes})
}

// Search handles GET /api/search.
//
//	@Summary		Rank boxes by keyword occurrences
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Keyword"
//	@Param			limit	query		int		false	"Maximum results (default 10)"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, h.graph.Keyword, "")
}

// Semantic handles GET /api/semantic. Results come from keyword search and
// the response says so in its fallback field.
//
//	@Summary		Natural-language search (keyword fallback)
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Query"
//	@Param			limit	query		int		false	"Maximum results (default 10)"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/semantic [get]
func (h *Handler) Semantic(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, h.graph.Semantic, "keyword")
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request, find func(string) ([]query.Match, error), fallback string) {
	q := r.URL.Query().Get("q")
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultSearchLimit
	}
	matches, err := find(q)
	if err != nil {
		h.fail(w, err, errorBody("q is required"))
		return
	}
	writeCached(w, r, SearchResponse{
		Query:    q,
		Total:    len(matches),
		Results:  matches[:min(len(matches), limit)],
		Fallback: fallback,
	})
}

// Depends handles GET /api/depends.
//
//	@Summary		List the boxes that include a file
//	@Tags			dependencies
//	@Produce		json
//	@Param			name	query		string	true	"Include name, e.g. util.h"
//	@Success		200		{object}	BoxListResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/depends [get]
func (h *Handler) Depends(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	boxes, err := h.graph.Dependents(name)
	if err != nil {
		resp := errorBody("no boxes depend on " + name)
		resp.Suggestions = h.graph.SimilarDependencies(name)
		h.fail(w, err, resp)
		return
	}
	writeCached(w, r, BoxListResponse{Name: name, Total: len(boxes), Boxes: boxes})
}

// GetBox handles GET /api/boxes/{id}.
//
//	@Summary		Get a box by id
//	@Tags			boxes
//	@Produce		json
//	@Param			id		path		string	true	"Box id, e.g. ScriptBox"
//	@Success		200		{object}	models.Box
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boxes/{id} [get]
func (h *Handler) GetBox(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	box, err := h.graph.Box(id)
	if err != nil {
		resp := errorBody("box not found")
		resp.Suggestions = h.graph.SimilarBoxes(id)
		h.fail(w, err, resp)
		return
	}
	writeCached(w, r, box)
}

// GetTemplate handles GET /api/templates/{id}.
//
//	@Summary		Get the error template of a box
//	@Tags			boxes
//	@Produce		json
//	@Param			id		path		string	true	"Box id"
//	@Success		200		{object}	models.ErrorTemplate
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/templates/{id} [get]
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tpl, err := h.graph.Template(id)
	if err != nil {
		h.fail(w, err, errorBody("template not found"))
		return
	}
	writeCached(w, r, tpl)
}

// Stats handles GET /api/stats.
//
//	@Summary		Graph statistics
//	@Tags			stats
//	@Produce		json
//	@Success		200		{object}	Stats
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, h.graph.Stats())
}

// fail maps a query error to its HTTP status.
func (h *Handler) fail(w http.ResponseWriter, err error, body errResponse) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, body)
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, body)
	default:
		slog.Error("query failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
