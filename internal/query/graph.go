// Package query answers lookups over a persisted knowledge graph.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/boxgraph/internal/apperr"
	"github.com/starford/boxgraph/internal/models"
	"github.com/starford/boxgraph/internal/storage"
)

const (
	maxSimilarDependencies = 5
	maxSimilarBoxes        = 10
)

// Graph holds the loaded artifacts. Every lookup goes through a Graph value;
// there is no package-level state.
type Graph struct {
	legend    *models.Legend
	index     *models.SearchIndex
	templates *models.ErrorTemplates
}

// Load reads the legend, search index and error templates from p.
// All three must be present.
func Load(p storage.Provider) (*Graph, error) {
	var lg models.Legend
	if err := storage.ReadJSON(p, models.LegendFile, &lg); err != nil {
		return nil, fmt.Errorf("query: load legend: %w", err)
	}
	var idx models.SearchIndex
	if err := storage.ReadJSON(p, models.SearchIndexFile, &idx); err != nil {
		return nil, fmt.Errorf("query: load search index: %w", err)
	}
	var tpl models.ErrorTemplates
	if err := storage.ReadJSON(p, models.TemplatesFile, &tpl); err != nil {
		return nil, fmt.Errorf("query: load error templates: %w", err)
	}
	return New(&lg, &idx, &tpl), nil
}

// New wraps artifacts that are already in memory. Missing collections are
// replaced with empty ones.
func New(lg *models.Legend, idx *models.SearchIndex, tpl *models.ErrorTemplates) *Graph {
	if lg.Boxes == nil {
		lg.Boxes = orderedmap.New[string, *models.Box]()
	}
	if lg.Categories == nil {
		lg.Categories = orderedmap.New[string, []string]()
	}
	if lg.Dependencies == nil {
		lg.Dependencies = orderedmap.New[string, []string]()
	}
	if idx.Vectors == nil {
		idx.Vectors = orderedmap.New[string, models.VectorEntry]()
	}
	if tpl.Templates == nil {
		tpl.Templates = orderedmap.New[string, *models.ErrorTemplate]()
	}
	return &Graph{legend: lg, index: idx, templates: tpl}
}

// Legend returns the loaded legend.
func (g *Graph) Legend() *models.Legend { return g.legend }

// Match is one keyword hit.
type Match struct {
	ID        string      `json:"id"`
	Box       *models.Box `json:"box"`
	Relevance int         `json:"relevance"`
}

// CategoryCount pairs a category label with its number of box entries.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats summarizes the loaded graph.
type Stats struct {
	Boxes        int                   `json:"boxes"`
	Categories   int                   `json:"categories"`
	Dependencies int                   `json:"dependencies"`
	Embeddings   int                   `json:"embeddings"`
	Templates    int                   `json:"templates"`
	Metadata     models.LegendMetadata `json:"metadata"`
	Security     models.Security       `json:"security"`
}

// Category returns the boxes filed under name, in registration order.
func (g *Graph) Category(name string) ([]*models.Box, error) {
	ids, ok := g.legend.Categories.Get(name)
	if !ok {
		return nil, fmt.Errorf("query: category %q: %w", name, apperr.ErrNotFound)
	}
	return g.lookup(ids), nil
}

// CategoryCounts lists every category in legend order.
func (g *Graph) CategoryCounts() []CategoryCount {
	out := make([]CategoryCount, 0, g.legend.Categories.Len())
	for pair := g.legend.Categories.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, CategoryCount{Name: pair.Key, Count: len(pair.Value)})
	}
	return out
}

// Categories lists every category, largest first. Equal counts keep legend order.
func (g *Graph) Categories() []CategoryCount {
	out := g.CategoryCounts()
	slices.SortStableFunc(out, func(a, b CategoryCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

// Keyword ranks boxes by how often word occurs, case-insensitively, in their
// searchable text. Occurrences are counted literally and without overlap.
// Boxes with equal counts keep registration order.
func (g *Graph) Keyword(word string) ([]Match, error) {
	needle := strings.ToLower(word)
	if strings.TrimSpace(needle) == "" {
		return nil, fmt.Errorf("query: keyword: empty search term: %w", apperr.ErrInvalidInput)
	}
	matches := []Match{}
	for pair := g.legend.Boxes.Oldest(); pair != nil; pair = pair.Next() {
		if n := strings.Count(searchText(pair.Value), needle); n > 0 {
			matches = append(matches, Match{ID: pair.Key, Box: pair.Value, Relevance: n})
		}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Relevance, a.Relevance)
	})
	return matches, nil
}

// Semantic answers a natural-language query. No vector search exists: the
// stored embeddings are hash placeholders, so this is Keyword under another
// name and callers must say so.
func (g *Graph) Semantic(q string) ([]Match, error) {
	return g.Keyword(q)
}

func searchText(b *models.Box) string {
	return strings.ToLower(strings.Join([]string{
		b.Path,
		b.Description,
		b.AIContext,
		strings.Join(b.Interface.Functions, " "),
		strings.Join(b.Interface.Classes, " "),
		strings.Join(b.Interface.Opcodes, " "),
	}, "\n"))
}

// Dependents returns the boxes that include name.
func (g *Graph) Dependents(name string) ([]*models.Box, error) {
	ids, ok := g.legend.Dependencies.Get(name)
	if !ok {
		return nil, fmt.Errorf("query: dependents of %q: %w", name, apperr.ErrNotFound)
	}
	return g.lookup(ids), nil
}

// SimilarDependencies suggests known include names where either name
// contains the other.
func (g *Graph) SimilarDependencies(name string) []string {
	out := []string{}
	for pair := g.legend.Dependencies.Oldest(); pair != nil && len(out) < maxSimilarDependencies; pair = pair.Next() {
		if strings.Contains(pair.Key, name) || strings.Contains(name, pair.Key) {
			out = append(out, pair.Key)
		}
	}
	return out
}

// Box returns the box registered under id.
func (g *Graph) Box(id string) (*models.Box, error) {
	box, ok := g.legend.Boxes.Get(id)
	if !ok {
		return nil, fmt.Errorf("query: box %q: %w", id, apperr.ErrNotFound)
	}
	return box, nil
}

// SimilarBoxes suggests box ids containing id, ignoring case.
func (g *Graph) SimilarBoxes(id string) []string {
	needle := strings.ToLower(id)
	out := []string{}
	for pair := g.legend.Boxes.Oldest(); pair != nil && len(out) < maxSimilarBoxes; pair = pair.Next() {
		if strings.Contains(strings.ToLower(pair.Key), needle) {
			out = append(out, pair.Key)
		}
	}
	return out
}

// Template returns the error template generated for id.
func (g *Graph) Template(id string) (*models.ErrorTemplate, error) {
	tpl, ok := g.templates.Templates.Get(id)
	if !ok {
		return nil, fmt.Errorf("query: template %q: %w", id, apperr.ErrNotFound)
	}
	return tpl, nil
}

// Stats counts the loaded collections and echoes the legend metadata.
func (g *Graph) Stats() Stats {
	return Stats{
		Boxes:        g.legend.Boxes.Len(),
		Categories:   g.legend.Categories.Len(),
		Dependencies: g.legend.Dependencies.Len(),
		Embeddings:   g.index.Vectors.Len(),
		Templates:    g.templates.Templates.Len(),
		Metadata:     g.legend.Metadata,
		Security:     g.legend.Security,
	}
}

// lookup resolves ids to boxes. Ids without a box are skipped.
func (g *Graph) lookup(ids []string) []*models.Box {
	out := make([]*models.Box, 0, len(ids))
	for _, id := range ids {
		if box, ok := g.legend.Boxes.Get(id); ok {
			out = append(out, box)
		}
	}
	return out
}
