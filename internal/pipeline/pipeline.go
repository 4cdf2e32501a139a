// Package pipeline runs the knowledge-graph build from discovery to the
// written artifacts.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/boxgraph/internal/analyzer"
	"github.com/starford/boxgraph/internal/discovery"
	"github.com/starford/boxgraph/internal/embedding"
	"github.com/starford/boxgraph/internal/errtemplate"
	"github.com/starford/boxgraph/internal/legend"
	"github.com/starford/boxgraph/internal/models"
	"github.com/starford/boxgraph/internal/report"
	"github.com/starford/boxgraph/internal/searchindex"
	"github.com/starford/boxgraph/internal/storage"
)

// Config describes one build.
type Config struct {
	Root      string
	Include   []string
	Exclude   []string
	OutputDir string
	Project   legend.Project
	Security  models.Security
	Rules     []legend.CategoryRule
	KeyBoxes  []string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAnalyzer replaces the default regex analyzer.
func WithAnalyzer(a *analyzer.Analyzer) Option {
	return func(p *Pipeline) {
		p.analyzer = a
	}
}

// WithEmbedder replaces the default hash embedder.
func WithEmbedder(e embedding.Embedder) Option {
	return func(p *Pipeline) {
		p.embedder = e
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithClock sets the time source used for every timestamp of a run.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// Pipeline wires the build stages together. Stages run one after another;
// nothing is parallelized.
type Pipeline struct {
	cfg        Config
	discoverer *discovery.Discoverer
	analyzer   *analyzer.Analyzer
	embedder   embedding.Embedder
	logger     *slog.Logger
	now        func() time.Time
}

// Result reports what a run produced.
type Result struct {
	Files      int
	Boxes      int
	Categories int
	Embeddings int
	Templates  int
	OutputDir  string
	Duration   time.Duration
	Legend     *models.Legend
}

// New creates a Pipeline. The output directory is excluded from discovery
// when it lies under the scan root, so a rebuild never analyzes its own
// summary.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:      cfg,
		analyzer: analyzer.New(),
		embedder: embedding.NewHashEmbedder(0),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cfg.Rules == nil {
		p.cfg.Rules = legend.DefaultCategoryRules()
	}

	var dopts []discovery.Option
	if rel, ok := outputUnderRoot(cfg.Root, cfg.OutputDir); ok {
		dopts = append(dopts, discovery.WithSkipDirs(rel))
	}
	d, err := discovery.New(cfg.Root, cfg.Include, cfg.Exclude, dopts...)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	p.discoverer = d
	return p, nil
}

// Run performs a full build and writes every artifact.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := p.now()

	store, err := storage.CreateFS(p.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	p.logger.Info("Discovering project files", slog.String("root", p.discoverer.Root()))
	files, err := p.discoverer.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: discover: %w", err)
	}
	p.logger.Info("Files discovered", slog.Int("count", len(files)))

	analyzed := make([]models.FileMetadata, 0, len(files))
	for _, fd := range files {
		fm, err := p.analyzer.AnalyzeFile(fd)
		if err != nil {
			return nil, fmt.Errorf("pipeline: analyze %s: %w", fd.RelPath, err)
		}
		analyzed = append(analyzed, fm)
	}
	p.logger.Info("Files analyzed", slog.Int("count", len(analyzed)))

	embeddings := models.NewEmbeddingMap()
	for _, fm := range analyzed {
		rec, err := embedding.Record(ctx, p.embedder, fm.AIContext+"\n\n"+fm.Excerpt, p.now())
		if err != nil {
			return nil, fmt.Errorf("pipeline: embed %s: %w", fm.Path, err)
		}
		embeddings.Set(legend.BoxID(fm.Path), rec)
	}
	p.logger.Info("Embeddings generated",
		slog.Int("count", embeddings.Len()),
		slog.String("model", p.embedder.Model()))

	builder := legend.NewBuilder(p.cfg.Project, p.cfg.Security,
		legend.WithRules(p.cfg.Rules),
		legend.WithEmbedding(p.embedder.Model(), p.embedder.Dimensions()),
		legend.WithLogger(p.logger),
		legend.WithClock(p.now),
	)
	lg := builder.Build(analyzed)
	p.logger.Info("Legend built",
		slog.Int("boxes", lg.Boxes.Len()),
		slog.Int("categories", lg.Categories.Len()))

	idx := searchindex.Build(lg, embeddings, p.embedder.Dimensions(), p.now())
	templates := errtemplate.Generate(lg, p.now())

	artifacts := []struct {
		name string
		v    any
	}{
		{models.LegendFile, lg},
		{models.EmbeddingsFile, embeddings},
		{models.SearchIndexFile, idx},
		{models.TemplatesFile, templates},
	}
	for _, a := range artifacts {
		if err := storage.WriteJSON(store, a.name, a.v); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		p.logger.Info("Artifact saved", slog.String("file", a.name))
	}

	summary := report.Summary(lg, idx, templates, p.cfg.KeyBoxes, p.now())
	if err := store.Write(models.SummaryFile, []byte(summary)); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	p.logger.Info("Artifact saved", slog.String("file", models.SummaryFile))

	res := &Result{
		Files:      len(files),
		Boxes:      lg.Boxes.Len(),
		Categories: lg.Categories.Len(),
		Embeddings: embeddings.Len(),
		Templates:  templates.Templates.Len(),
		OutputDir:  store.Root(),
		Duration:   p.now().Sub(start),
		Legend:     lg,
	}
	p.logger.Info("Knowledge graph complete",
		slog.Int("boxes", res.Boxes),
		slog.Int("categories", res.Categories),
		slog.Int("embeddings", res.Embeddings),
		slog.Int("templates", res.Templates),
		slog.String("output_dir", res.OutputDir),
		slog.Duration("duration", res.Duration))
	return res, nil
}

// OutputDir returns the configured artifact directory.
func (p *Pipeline) OutputDir() string { return p.cfg.OutputDir }

// Discoverer exposes the file selector, so callers can filter change events
// with the same rules as a build.
func (p *Pipeline) Discoverer() *discovery.Discoverer { return p.discoverer }

// outputUnderRoot returns the slash-separated path of out relative to root
// when out lies inside root.
func outputUnderRoot(root, out string) (string, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absOut)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
