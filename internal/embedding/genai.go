package embedding

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const defaultGenAIModel = "gemini-embedding-001"

// GenAIEmbedder calls the Gemini embedding API.
type GenAIEmbedder struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	dims    atomic.Int64
}

// NewGenAIEmbedder creates a Gemini backend from cfg.
func NewGenAIEmbedder(ctx context.Context, cfg Config) (*GenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding: genai api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultGenAIModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: create genai client: %w", err)
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &GenAIEmbedder{client: client, model: model, limiter: rate.NewLimiter(limit, 1)}, nil
}

// Embed implements Embedder.
func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding: genai rate limit: %w", err)
	}
	res, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_DOCUMENT",
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: genai embed: %w", err)
	}
	if len(res.Embeddings) == 0 || len(res.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embedding: genai returned no embeddings")
	}
	values := res.Embeddings[0].Values
	e.dims.Store(int64(len(values)))
	return toFloat64(values), nil
}

// Dimensions implements Embedder.
func (e *GenAIEmbedder) Dimensions() int { return int(e.dims.Load()) }

// Model implements Embedder.
func (e *GenAIEmbedder) Model() string { return "genai:" + e.model }
