package embedding

import (
	"context"
	"time"

	"github.com/starford/boxgraph/internal/checksum"
)

// HashModel is the model tag written for hash embeddings.
const HashModel = "lumen-bridge-v1"

// HashDimensions is the length of a hash embedding.
const HashDimensions = 16

// HashEmbedder derives vectors from the SHA-256 digest of the text: component
// i is digest byte i divided by 255. It carries no semantic information.
type HashEmbedder struct {
	delay time.Duration
}

// NewHashEmbedder creates a HashEmbedder that sleeps delay before each call,
// standing in for network latency.
func NewHashEmbedder(delay time.Duration) *HashEmbedder {
	return &HashEmbedder{delay: delay}
}

// Embed implements Embedder.
func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if h.delay > 0 {
		t := time.NewTimer(h.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	digest := checksum.Digest([]byte(text))
	vec := make([]float64, HashDimensions)
	for i := range vec {
		vec[i] = float64(digest[i]) / 255.0
	}
	return vec, nil
}

// Dimensions implements Embedder.
func (h *HashEmbedder) Dimensions() int { return HashDimensions }

// Model implements Embedder.
func (h *HashEmbedder) Model() string { return HashModel }
