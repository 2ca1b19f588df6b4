package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"sheetqa/internal/domain"
	"sheetqa/internal/usecase"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockVectorEncoder struct {
	mock.Mock
}

func (m *mockVectorEncoder) Encode(ctx context.Context, text string) ([]float64, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

func (m *mockVectorEncoder) Version() string {
	return "mock-embedding"
}

type mockLLMClient struct {
	mock.Mock
}

func (m *mockLLMClient) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

func (m *mockLLMClient) Version() string {
	return "mock-completion"
}

type mockRowSource struct {
	mock.Mock
}

func (m *mockRowSource) Rows(ctx context.Context) ([]domain.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *mockRowSource) Name() string {
	return "mock"
}

type recordingMetrics struct {
	usecase.NoopMetrics
	answers   []usecase.Stage
	cacheHits []bool
	loads     []int
}

func (r *recordingMetrics) ObserveAnswer(outcome usecase.Stage, _, _ int) {
	r.answers = append(r.answers, outcome)
}

func (r *recordingMetrics) ObserveEmbeddingCache(hit bool) {
	r.cacheHits = append(r.cacheHits, hit)
}

func (r *recordingMetrics) ObserveLoad(documents int, _ time.Duration, _ error) {
	r.loads = append(r.loads, documents)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newSnapshot builds a snapshot whose embeddings are given per title, in docs order.
func newSnapshot(t *testing.T, docs []domain.Document, vectors map[string][]float64) *domain.DocumentSnapshot {
	t.Helper()
	embeddings := make([]domain.DocumentEmbedding, 0, len(docs))
	for _, d := range docs {
		embeddings = append(embeddings, domain.DocumentEmbedding{Title: d.Title, Vector: vectors[d.Title]})
	}
	snapshot, err := domain.NewDocumentSnapshot(docs, embeddings)
	require.NoError(t, err)
	return snapshot
}
