package api

import (
	"github.com/starford/boxgraph/internal/models"
	"github.com/starford/boxgraph/internal/query"
)

// Match is a single keyword hit (aliased from the query layer).
type Match = query.Match

// CategoryCount is one row of the category listing (aliased from the query layer).
type CategoryCount = query.CategoryCount

// Stats is the graph summary (aliased from the query layer).
type Stats = query.Stats

// CategoryListResponse wraps the category listing.
type CategoryListResponse struct {
	Categories []CategoryCount `json:"categories" validate:"required"`
}

// BoxListResponse lists the boxes of a category or the dependents of a file.
type BoxListResponse struct {
	Name  string        `json:"name" example:"util.h" validate:"required"`
	Total int           `json:"total" example:"3" validate:"required"`
	Boxes []*models.Box `json:"boxes" validate:"required"`
}

// SearchResponse wraps keyword matches. Total counts every match; Results
// holds at most the requested limit.
type SearchResponse struct {
	Query    string  `json:"query" example:"transaction" validate:"required"`
	Total    int     `json:"total" example:"12" validate:"required"`
	Results  []Match `json:"results" validate:"required"`
	Fallback string  `json:"fallback,omitempty" example:"keyword"`
}
