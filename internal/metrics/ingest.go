// Package metrics exposes Prometheus collectors for the ingest pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "imgsearch"

// Ingest Prometheus metrics.
var (
	IngestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_documents_total",
			Help:      "Documents written to the search index",
		},
		[]string{"index", "status"}, // "ok" / "error"
	)

	IngestChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_chunks_total",
			Help:      "Bulk write round trips",
		},
		[]string{"index"},
	)

	IngestChunkDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_chunk_duration_seconds",
			Help:      "Bulk write round trip duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"index"},
	)

	IngestBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_batches_total",
			Help:      "Source batches turned into documents",
		},
		[]string{"index"},
	)

	IndexDocs = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_docs",
			Help:      "Documents reported by FT.INFO after ingest",
		},
		[]string{"index"},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			IngestDocumentsTotal,
			IngestChunksTotal,
			IngestChunkDuration,
			IngestBatchesTotal,
			IndexDocs,
			ExtractionRequestsTotal,
			ExtractionDuration,
			ExtractionImagesTotal,
			ExtractionErrorsTotal,
		)
	})
}
