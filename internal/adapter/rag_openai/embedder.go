package rag_openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sheetqa/internal/domain"

	"github.com/openai/openai-go"
)

// Embedder calls the embeddings endpoint of an OpenAI-compatible API.
type Embedder struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewEmbedder constructs an embedder for the given model.
func NewEmbedder(client openai.Client, model string, logger *slog.Logger) *Embedder {
	return &Embedder{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Encode returns the embedding of text. Failures, including an empty result list, wrap domain.ErrEmbedding.
func (e *Embedder) Encode(ctx context.Context, text string) ([]float64, error) {
	start := time.Now()

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "embed_failed",
			slog.String("model", e.model),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: response contained no embeddings", domain.ErrEmbedding)
	}
	vector := resp.Data[0].Embedding
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: first embedding is empty", domain.ErrEmbedding)
	}

	e.logger.DebugContext(ctx, "embed_completed",
		slog.String("model", e.model),
		slog.Int("dimension", len(vector)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return vector, nil
}

// Version returns the embedding model name.
func (e *Embedder) Version() string {
	return e.model
}

var _ domain.VectorEncoder = (*Embedder)(nil)
