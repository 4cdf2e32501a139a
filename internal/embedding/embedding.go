// Package embedding produces the vectors stored alongside each box.
//
// The default backend is a hash placeholder: it is deterministic and offline,
// and cosine similarity between its vectors measures digest similarity, not
// meaning. Network backends can be selected by configuration.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/starford/boxgraph/internal/models"
)

// Provider names.
const (
	ProviderHash   = "hash"
	ProviderOllama = "ollama"
	ProviderGenAI  = "genai"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	// Dimensions is the vector length. Network backends may only know it
	// after the first successful call and report 0 until then.
	Dimensions() int
	Model() string
}

// Config selects and tunes a backend.
type Config struct {
	Provider  string
	Model     string
	Delay     time.Duration // hash only: artificial per-call latency
	Endpoint  string        // ollama base URL
	APIKey    string        // genai key
	Timeout   time.Duration
	RateLimit float64 // requests per second for network backends, 0 = unlimited
}

// New creates the backend named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "", ProviderHash:
		return NewHashEmbedder(cfg.Delay), nil
	case ProviderOllama:
		return NewOllamaEmbedder(cfg)
	case ProviderGenAI:
		return NewGenAIEmbedder(ctx, cfg)
	default:
		return nil, fmt.Errorf("embedding: unsupported provider %q", cfg.Provider)
	}
}

// Record embeds text and wraps the vector with the model tag, a rough token
// estimate (one token per four characters) and a timestamp.
func Record(ctx context.Context, e Embedder, text string, now time.Time) (models.Embedding, error) {
	vec, err := e.Embed(ctx, text)
	if err != nil {
		return models.Embedding{}, err
	}
	return models.Embedding{
		Model:     e.Model(),
		Embedding: vec,
		Tokens:    (utf8.RuneCountInString(text) + 3) / 4,
		Timestamp: models.Timestamp(now),
	}, nil
}

// CosineSimilarity returns the cosine of the angle between a and b. For hash
// embeddings this compares digests, not meaning.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding: dimension mismatch: %d != %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, errors.New("embedding: empty vectors")
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
