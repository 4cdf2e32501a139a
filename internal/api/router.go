package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/boxgraph/internal/query"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(g *query.Graph, authEnabled bool, token string) chi.Router {
	h := NewHandler(g)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{name}", h.GetCategory)
	r.Get("/search", h.Search)
	r.Get("/semantic", h.Semantic)
	r.Get("/depends", h.Depends)
	r.Get("/boxes/{id}", h.GetBox)
	r.Get("/templates/{id}", h.GetTemplate)
	r.Get("/stats", h.Stats)

	return r
}
