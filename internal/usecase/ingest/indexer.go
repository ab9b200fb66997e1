package ingest

import (
	"context"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/yash-quizizz/image-search/internal/domain"
	dombatch "github.com/yash-quizizz/image-search/internal/domain/batch"
	domdoc "github.com/yash-quizizz/image-search/internal/domain/document"
	"github.com/yash-quizizz/image-search/internal/logger"
	"github.com/yash-quizizz/image-search/internal/metrics"
)

// Indexer creates indexes and streams documents into them in fixed-size chunks.
type Indexer struct {
	indexes  IndexManager
	docs     DocumentWriter
	keyspace domain.Keyspace
}

// NewIndexer creates a bulk indexer.
func NewIndexer(indexes IndexManager, docs DocumentWriter, ks domain.Keyspace) *Indexer {
	return &Indexer{indexes: indexes, docs: docs, keyspace: ks}
}

// CreateIndex ensures the index for kind exists. Repeated calls are no-ops.
func (ix *Indexer) CreateIndex(ctx context.Context, kind domain.Kind) error {
	created, err := ix.indexes.Ensure(ctx, kind)
	if err != nil {
		return fmt.Errorf("create index %s: %w", ix.keyspace.IndexName(kind), err)
	}
	logger.FromContext(ctx).Info("Index ready",
		zap.String("index", ix.keyspace.IndexName(kind)),
		zap.Bool("created", created))
	return nil
}

// BulkIngest drains docs, writing every chunkSize documents in one round trip
// and the remainder at the end. Rejected documents are recorded in the summary
// and do not stop the run. An upstream error stops the run at once; the
// partially filled chunk is discarded.
func (ix *Indexer) BulkIngest(
	ctx context.Context,
	docs iter.Seq2[domdoc.Document, error],
	chunkSize int,
) (dombatch.Summary, error) {
	var summary dombatch.Summary
	if chunkSize <= 0 {
		return summary, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	chunk := make([]domdoc.Document, 0, chunkSize)
	for doc, err := range docs {
		if err != nil {
			return summary, err
		}
		chunk = append(chunk, doc)
		if len(chunk) == chunkSize {
			ix.flush(ctx, chunk, &summary)
			chunk = chunk[:0]
		}
	}
	if len(chunk) > 0 {
		ix.flush(ctx, chunk, &summary)
	}

	return summary, nil
}

func (ix *Indexer) flush(ctx context.Context, chunk []domdoc.Document, summary *dombatch.Summary) {
	log := logger.FromContext(ctx)
	index := ix.keyspace.IndexName(chunk[0].Index())

	start := time.Now()
	results := ix.docs.BulkWrite(ctx, chunk)
	duration := time.Since(start)

	before := summary.Failed
	summary.Record(results)
	failed := summary.Failed - before

	metrics.IngestChunksTotal.WithLabelValues(index).Inc()
	metrics.IngestChunkDuration.WithLabelValues(index).Observe(duration.Seconds())
	metrics.IngestDocumentsTotal.WithLabelValues(index, string(dombatch.StatusOK)).Add(float64(len(results) - failed))
	if failed > 0 {
		metrics.IngestDocumentsTotal.WithLabelValues(index, string(dombatch.StatusError)).Add(float64(failed))
		for _, r := range summary.Failures[len(summary.Failures)-failed:] {
			log.Warn("Document rejected",
				zap.String("index", index),
				zap.String("id", r.ID()),
				zap.Error(r.Err()))
		}
	}

	log.Debug("Chunk written",
		zap.String("index", index),
		zap.Int("chunk", summary.Chunks),
		zap.Int("docs", len(chunk)),
		zap.Int("failed", failed),
		zap.Duration("duration", duration))
}
