package domain

import (
	"context"
)

// VectorEncoder defines the interface for generating embeddings.
// Implementations return an error wrapping ErrEmbedding on any upstream failure.
type VectorEncoder interface {
	Encode(ctx context.Context, text string) ([]float64, error)
	Version() string
}
