package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sheetqa/internal/domain"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// LoadDocumentsUsecase builds the document snapshot served for the process lifetime.
type LoadDocumentsUsecase interface {
	Execute(ctx context.Context) (*domain.DocumentSnapshot, error)
}

// LoadDocumentsConfig bounds the embedding fan-out during a load.
type LoadDocumentsConfig struct {
	Concurrency   int
	RatePerSecond float64
	Burst         int
}

type loadDocumentsUsecase struct {
	source  domain.RowSource
	encoder domain.VectorEncoder
	cfg     LoadDocumentsConfig
	metrics PipelineMetrics
	logger  *slog.Logger
}

// NewLoadDocumentsUsecase creates a loader reading rows from source and embedding them with encoder.
func NewLoadDocumentsUsecase(
	source domain.RowSource,
	encoder domain.VectorEncoder,
	cfg LoadDocumentsConfig,
	metrics PipelineMetrics,
	logger *slog.Logger,
) LoadDocumentsUsecase {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &loadDocumentsUsecase{
		source:  source,
		encoder: encoder,
		cfg:     cfg,
		metrics: metricsOrNoop(metrics),
		logger:  logger,
	}
}

// Execute reads every row, embeds title and body, and returns the snapshot.
// Every failure wraps domain.ErrStoreLoad. The first embedding error cancels
// the calls still in flight.
func (u *loadDocumentsUsecase) Execute(ctx context.Context) (*domain.DocumentSnapshot, error) {
	start := time.Now()

	snapshot, err := u.load(ctx)
	u.metrics.ObserveLoad(snapshotLen(snapshot), time.Since(start), err)
	if err != nil {
		u.logger.ErrorContext(ctx, "document_load_failed",
			slog.String("source", u.source.Name()),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return nil, err
	}

	u.logger.InfoContext(ctx, "documents_loaded",
		slog.String("source", u.source.Name()),
		slog.Int("documents", snapshot.Len()),
		slog.String("embedding_model", u.encoder.Version()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return snapshot, nil
}

func (u *loadDocumentsUsecase) load(ctx context.Context) (*domain.DocumentSnapshot, error) {
	rows, err := u.source.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read rows from %s: %w", domain.ErrStoreLoad, u.source.Name(), err)
	}

	docs := u.normalizeRows(ctx, rows)
	if len(docs) == 0 {
		u.logger.WarnContext(ctx, "document_source_empty", slog.String("source", u.source.Name()))
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if u.cfg.RatePerSecond > 0 {
		burst := u.cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(u.cfg.RatePerSecond), burst)
	}

	vectors := make([][]float64, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.cfg.Concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			vector, err := u.encoder.Encode(gctx, doc.EmbeddingText())
			if err != nil {
				return fmt.Errorf("embed document %q: %w", doc.Title, err)
			}
			vectors[i] = vector
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreLoad, err)
	}

	embeddings := make([]domain.DocumentEmbedding, len(docs))
	for i, doc := range docs {
		embeddings[i] = domain.DocumentEmbedding{Title: doc.Title, Vector: vectors[i]}
	}
	snapshot, err := domain.NewDocumentSnapshot(docs, embeddings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreLoad, err)
	}
	return snapshot, nil
}

// normalizeRows drops rows without a title and collapses repeated titles.
// A repeated title keeps its first position and takes the later row's body.
func (u *loadDocumentsUsecase) normalizeRows(ctx context.Context, rows []domain.Document) []domain.Document {
	docs := make([]domain.Document, 0, len(rows))
	index := make(map[string]int, len(rows))
	for rowNum, row := range rows {
		if strings.TrimSpace(row.Title) == "" {
			u.logger.WarnContext(ctx, "document_row_skipped",
				slog.Int("row", rowNum),
				slog.String("reason", "empty title"),
			)
			continue
		}
		if i, dup := index[row.Title]; dup {
			u.logger.WarnContext(ctx, "document_title_duplicated",
				slog.Int("row", rowNum),
				slog.String("title", row.Title),
			)
			docs[i].Body = row.Body
			continue
		}
		index[row.Title] = len(docs)
		docs = append(docs, row)
	}
	return docs
}

func snapshotLen(s *domain.DocumentSnapshot) int {
	if s == nil {
		return 0
	}
	return s.Len()
}
