// Package embedding provides text embedding for semantic intent scoring,
// via ONNX when a model is configured and caching in front of it.
package embedding

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/skarvik/produktbot/internal/config"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// ErrDisabled is returned by the null embedder.
var ErrDisabled = errors.New("semantic embedding disabled")

// NullEmbedder is used when no embedding model is configured. Every call
// fails with ErrDisabled, which callers treat as "no semantic signal".
type NullEmbedder struct{}

// NewNullEmbedder returns an embedder with no model behind it.
func NewNullEmbedder() *NullEmbedder { return &NullEmbedder{} }

func (*NullEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, ErrDisabled
}

func (*NullEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, ErrDisabled
}

func (*NullEmbedder) Dimensions() int { return 0 }

func (*NullEmbedder) Close() error { return nil }

// NewFromConfig builds the embedder the configuration asks for. A missing or
// unloadable model degrades to the null embedder so the engine still runs
// with keyword, entity and context scoring only.
func NewFromConfig(cfg *config.NLPConfig, logger *zap.Logger) Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.UseNLP || cfg.EmbeddingModelPath == "" {
		logger.Info("semantic embedding disabled")
		return NewNullEmbedder()
	}

	embedder, err := NewONNXEmbedder(cfg.EmbeddingModelPath, cfg.EmbeddingDims, cfg.EmbeddingMaxTokens, cfg.EmbeddingCacheSize)
	if err != nil {
		logger.Warn("embedding model unavailable, semantic scoring disabled",
			zap.String("model", cfg.EmbeddingModelPath), zap.Error(err))
		return NewNullEmbedder()
	}
	logger.Info("embedding model loaded",
		zap.String("model", cfg.EmbeddingModelPath),
		zap.Int("dimensions", embedder.Dimensions()))
	return embedder
}
