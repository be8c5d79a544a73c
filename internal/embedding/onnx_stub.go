//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

var errNoCGO = errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")

// ONNXEmbedder stub type when built without CGO (see onnx.go for the real
// implementation). The methods exist so both build variants satisfy Embedder.
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when built without CGO (ONNX not available).
func NewONNXEmbedder(_ string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, errNoCGO
}

func (*ONNXEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, errNoCGO }

func (*ONNXEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errNoCGO
}

func (*ONNXEmbedder) Dimensions() int { return 0 }

func (*ONNXEmbedder) Close() error { return nil }
