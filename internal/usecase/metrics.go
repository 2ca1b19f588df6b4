package usecase

import "time"

// PipelineMetrics receives measurements from the load and answer pipelines.
type PipelineMetrics interface {
	ObserveStage(stage Stage, elapsed time.Duration)
	ObserveAnswer(outcome Stage, includedDocuments, contextWords int)
	ObserveLoad(documents int, elapsed time.Duration, err error)
	ObserveEmbeddingCache(hit bool)
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

func (NoopMetrics) ObserveStage(Stage, time.Duration) {}
func (NoopMetrics) ObserveAnswer(Stage, int, int) {}
func (NoopMetrics) ObserveLoad(int, time.Duration, error) {}
func (NoopMetrics) ObserveEmbeddingCache(bool) {}

var _ PipelineMetrics = NoopMetrics{}

func metricsOrNoop(m PipelineMetrics) PipelineMetrics {
	if m == nil {
		return NoopMetrics{}
	}
	return m
}
