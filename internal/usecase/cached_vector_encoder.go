package usecase

import (
	"context"
	"time"

	"sheetqa/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// cachedVectorEncoder memoizes question embeddings in a bounded, expiring LRU.
// Entries live only in process memory.
type cachedVectorEncoder struct {
	inner   domain.VectorEncoder
	cache   *expirable.LRU[string, []float64]
	metrics PipelineMetrics
}

// NewCachedVectorEncoder wraps inner with an LRU of the given size and TTL.
// A size of zero or less returns inner unchanged.
func NewCachedVectorEncoder(inner domain.VectorEncoder, size int, ttl time.Duration, metrics PipelineMetrics) domain.VectorEncoder {
	if size <= 0 {
		return inner
	}
	return &cachedVectorEncoder{
		inner:   inner,
		cache:   expirable.NewLRU[string, []float64](size, nil, ttl),
		metrics: metricsOrNoop(metrics),
	}
}

func (c *cachedVectorEncoder) Encode(ctx context.Context, text string) ([]float64, error) {
	if vector, ok := c.cache.Get(text); ok {
		c.metrics.ObserveEmbeddingCache(true)
		return vector, nil
	}
	c.metrics.ObserveEmbeddingCache(false)

	vector, err := c.inner.Encode(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, vector)
	return vector, nil
}

func (c *cachedVectorEncoder) Version() string {
	return c.inner.Version()
}
