package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"sheetqa/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RankDocumentsUsecase orders every document in a snapshot by similarity to a question.
type RankDocumentsUsecase interface {
	Execute(ctx context.Context, question string, snapshot *domain.DocumentSnapshot) ([]domain.ScoredDocument, error)
}

type rankDocumentsUsecase struct {
	encoder domain.VectorEncoder
}

// NewRankDocumentsUsecase creates a ranker that embeds questions with encoder.
func NewRankDocumentsUsecase(encoder domain.VectorEncoder) RankDocumentsUsecase {
	return &rankDocumentsUsecase{encoder: encoder}
}

// Execute returns the full ranked list, highest score first. Equal scores keep
// the snapshot's load order.
func (u *rankDocumentsUsecase) Execute(ctx context.Context, question string, snapshot *domain.DocumentSnapshot) ([]domain.ScoredDocument, error) {
	ctx, span := otel.Tracer("sheetqa/usecase").Start(ctx, "rank_documents")
	defer span.End()

	if snapshot == nil {
		return nil, errors.New("document snapshot is not loaded")
	}

	questionVector, err := u.encoder.Encode(ctx, question)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "question embedding failed")
		if errors.Is(err, domain.ErrEmbedding) {
			return nil, fmt.Errorf("embed question: %w", err)
		}
		return nil, fmt.Errorf("embed question: %w: %w", domain.ErrEmbedding, err)
	}

	embeddings := snapshot.Embeddings()
	ranked := make([]domain.ScoredDocument, 0, len(embeddings))
	for _, e := range embeddings {
		if len(e.Vector) != len(questionVector) {
			return nil, fmt.Errorf("%w: question has %d dimensions, document %q has %d",
				domain.ErrEmbedding, len(questionVector), e.Title, len(e.Vector))
		}
		ranked = append(ranked, domain.ScoredDocument{
			Title: e.Title,
			Score: domain.CosineSimilarity(e.Vector, questionVector),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	span.SetAttributes(attribute.Int("rank.documents", len(ranked)))
	return ranked, nil
}
