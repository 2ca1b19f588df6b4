// Package metrics provides Prometheus metrics for sheetqa.
package metrics

import (
	"time"

	"sheetqa/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnswersTotal counts answer requests by outcome.
	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetqa",
			Name:      "answers_total",
			Help:      "Total number of answer requests by outcome",
		},
		[]string{"outcome"},
	)

	// StageDuration measures each answer pipeline stage.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sheetqa",
			Name:      "stage_duration_seconds",
			Help:      "Duration of answer pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// IncludedDocuments observes how many documents made it into a prompt.
	IncludedDocuments = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sheetqa",
			Name:      "prompt_documents",
			Help:      "Number of documents included in a prompt context",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
	)

	// ContextWords observes the word count of prompt contexts.
	ContextWords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sheetqa",
			Name:      "prompt_context_words",
			Help:      "Words of context packed into a prompt",
			Buckets:   []float64{0, 50, 100, 250, 500, 750, 1000, 1125, 2000},
		},
	)

	// DocumentsLoaded reports the size of the loaded snapshot.
	DocumentsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sheetqa",
			Name:      "documents_loaded",
			Help:      "Number of documents in the loaded snapshot",
		},
	)

	// LoadDuration measures snapshot loads by status.
	LoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sheetqa",
			Name:      "load_duration_seconds",
			Help:      "Duration of document snapshot loads in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)

	// EmbeddingCacheTotal counts question-embedding cache lookups.
	EmbeddingCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetqa",
			Name:      "embedding_cache_lookups_total",
			Help:      "Question embedding cache lookups by result",
		},
		[]string{"result"},
	)
)

// Recorder forwards pipeline measurements to the package collectors.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) ObserveStage(stage usecase.Stage, elapsed time.Duration) {
	StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveAnswer(outcome usecase.Stage, includedDocuments, contextWords int) {
	AnswersTotal.WithLabelValues(string(outcome)).Inc()
	if outcome == usecase.StageAnswered {
		IncludedDocuments.Observe(float64(includedDocuments))
		ContextWords.Observe(float64(contextWords))
	}
}

func (r *Recorder) ObserveLoad(documents int, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	LoadDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	if err == nil {
		DocumentsLoaded.Set(float64(documents))
	}
}

func (r *Recorder) ObserveEmbeddingCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	EmbeddingCacheTotal.WithLabelValues(result).Inc()
}

var _ usecase.PipelineMetrics = (*Recorder)(nil)
