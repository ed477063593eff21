package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics for ingestion, retrieval, and model calls.
var (
	DocumentsStoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alphadoc",
			Name:      "documents_stored_total",
			Help:      "Total number of document versions committed to storage",
		},
		[]string{"action"}, // "new", "update", "force_new"
	)

	ChunksStoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "alphadoc",
			Name:      "chunks_stored_total",
			Help:      "Total number of chunk records written",
		},
	)

	AnnotationOutOfRangeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "alphadoc",
			Name:      "annotation_out_of_range_total",
			Help:      "Chunk-indexed annotations referencing an index outside the valid range",
		},
	)

	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alphadoc",
			Name:      "retrieval_requests_total",
			Help:      "Total retrieval requests",
		},
		[]string{"mode", "status"},
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alphadoc",
			Name:      "retrieval_duration_seconds",
			Help:      "End-to-end retrieval duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"mode"},
	)

	ModelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alphadoc",
			Name:      "model_requests_total",
			Help:      "Total external language-model requests",
		},
		[]string{"operation", "model", "status"},
	)

	ModelRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alphadoc",
			Name:      "model_request_duration_seconds",
			Help:      "External model request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation", "model"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		DocumentsStoredTotal,
		ChunksStoredTotal,
		AnnotationOutOfRangeTotal,
		RetrievalRequestsTotal,
		RetrievalDuration,
		ModelRequestsTotal,
		ModelRequestDuration,
	)
	pipelineMetricsRegistered = true
}
