package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/skarvik/produktbot/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests: the same text always
// maps to the same unit vector, and different texts almost always differ.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder producing vectors of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed derives the embedding from an FNV hash of the text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := float64(h.Sum32())

	emb := make([]float32, e.dimensions)
	for i := range emb {
		emb[i] = float32(math.Sin(seed*float64(i+1))*0.1 + 0.01)
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *MockEmbedder) Close() error {
	return nil
}
