// Package legend builds the box registry from analyzed files.
package legend

import (
	"log/slog"
	"slices"
	"time"

	"github.com/starford/boxgraph/internal/models"
)

// Project is the descriptive part of the legend metadata.
type Project struct {
	Name        string
	Description string
	Version     string
	Protocol    string
}

// Option configures a Builder.
type Option func(*Builder)

// WithRules replaces the default category rules.
func WithRules(rules []CategoryRule) Option {
	return func(b *Builder) {
		b.rules = rules
	}
}

// WithEmbedding sets the embedding block attached to every box.
func WithEmbedding(model string, dimensions int) Option {
	return func(b *Builder) {
		b.embedding = models.EmbeddingInfo{Available: true, Model: model, Dimensions: dimensions}
	}
}

// WithLogger sets the logger used to report box id collisions.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithClock sets the time source for the metadata timestamp.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// Builder turns analyzed files into a Legend.
type Builder struct {
	project   Project
	security  models.Security
	rules     []CategoryRule
	embedding models.EmbeddingInfo
	logger    *slog.Logger
	now       func() time.Time
}

// NewBuilder creates a Builder with the default category rules and the
// 16-dimension hash embedding block.
func NewBuilder(project Project, security models.Security, opts ...Option) *Builder {
	b := &Builder{
		project:   project,
		security:  security,
		rules:     DefaultCategoryRules(),
		embedding: models.EmbeddingInfo{Available: true, Model: "lumen-bridge-v1", Dimensions: 16},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build registers every file in order. The category and dependency indexes
// are filled in the same pass, so their id lists are in discovery order.
//
// A file whose box id is already registered replaces the earlier box in
// place; both files still appear in the category and dependency lists.
func (b *Builder) Build(files []models.FileMetadata) *models.Legend {
	sec := b.security
	sec.Phase2Pending = slices.Clone(sec.Phase2Pending)
	if sec.Phase2Pending == nil {
		sec.Phase2Pending = []string{}
	}

	lg := models.NewLegend(models.LegendMetadata{
		Project:     b.project.Name,
		Description: b.project.Description,
		Version:     b.project.Version,
		Created:     models.Timestamp(b.now()),
		Protocol:    b.project.Protocol,
		TotalFiles:  len(files),
	}, sec)

	for _, fm := range files {
		box := b.Box(fm)

		if prev, ok := lg.Boxes.Get(box.ID); ok && prev.Path != box.Path {
			b.logger.Warn("legend: box id collision, later file replaces earlier",
				slog.String("box_id", box.ID),
				slog.String("replaced", prev.Path),
				slog.String("path", box.Path))
		}
		lg.Boxes.Set(box.ID, box)

		models.Append(lg.Categories, box.Category, box.ID)
		for _, dep := range box.Dependencies {
			models.Append(lg.Dependencies, dep, box.ID)
		}
	}
	return lg
}

// Box converts one analyzed file into its box.
func (b *Builder) Box(fm models.FileMetadata) *models.Box {
	return &models.Box{
		ID:          BoxID(fm.Path),
		Path:        fm.Path,
		Type:        fm.Type,
		Category:    Categorize(b.rules, fm.Path),
		Description: fm.Description,
		AIContext:   fm.AIContext,
		Interface: models.Interface{
			Functions: functionNames(fm.Functions),
			Classes:   classNames(fm.Classes),
			Opcodes:   nonNil(fm.Opcodes),
		},
		Dependencies: nonNil(fm.Dependencies),
		Metadata: models.BoxMetadata{
			Lines: fm.Lines,
			Size:  fm.Size,
			Hash:  fm.Hash,
		},
		Contract:  Contract(fm),
		Embedding: b.embedding,
	}
}

func functionNames(fns []models.Function) []string {
	out := make([]string, 0, len(fns))
	for _, f := range fns {
		out = append(out, f.Name)
	}
	return out
}

func classNames(cs []models.Class) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
