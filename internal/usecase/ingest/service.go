// Package ingest runs the load, extract and index pipeline for one dataset.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yash-quizizz/image-search/internal/dataset"
	"github.com/yash-quizizz/image-search/internal/domain"
	dombatch "github.com/yash-quizizz/image-search/internal/domain/batch"
	"github.com/yash-quizizz/image-search/internal/logger"
	"github.com/yash-quizizz/image-search/internal/metrics"
)

// Defaults for Options.
const (
	DefaultBatchSize = 64
	DefaultChunkSize = 128
)

// Options tune one run.
type Options struct {
	BatchSize int
	ChunkSize int
}

func (o Options) withDefaults() Options {
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultChunkSize
	}
	return o
}

// Service wires dataset, loader, extractor and indexer for a run.
type Service struct {
	datasets  DatasetOpener
	loader    *Loader
	extractor domain.FeatureExtractor
	indexer   *Indexer
	indexes   IndexManager
	keyspace  domain.Keyspace
	logger    *zap.Logger
}

// New creates an ingest service. extractor may be nil when only text is ingested.
func New(
	datasets DatasetOpener,
	loader *Loader,
	extractor domain.FeatureExtractor,
	indexes IndexManager,
	docs DocumentWriter,
	ks domain.Keyspace,
	log *zap.Logger,
) *Service {
	return &Service{
		datasets:  datasets,
		loader:    loader,
		extractor: extractor,
		indexer:   NewIndexer(indexes, docs, ks),
		indexes:   indexes,
		keyspace:  ks,
		logger:    log,
	}
}

// CreateIndex ensures the index for the dataset key exists without ingesting.
func (s *Service) CreateIndex(ctx context.Context, key string) error {
	kind, err := dataset.KindForKey(key)
	if err != nil {
		return err
	}
	return s.indexer.CreateIndex(logger.WithContext(ctx, s.logger), kind)
}

// Run ingests the dataset named by key. The index is created before the dataset is opened.
// A degraded (empty) dataset completes with a zero summary.
func (s *Service) Run(ctx context.Context, key string, opts Options) (dombatch.Summary, error) {
	opts = opts.withDefaults()
	if opts.BatchSize < 0 || opts.ChunkSize < 0 {
		return dombatch.Summary{}, fmt.Errorf("batch size and chunk size must be positive")
	}

	kind, err := dataset.KindForKey(key)
	if err != nil {
		return dombatch.Summary{}, err
	}
	if kind == domain.KindImage && s.extractor == nil {
		return dombatch.Summary{}, ErrExtractorRequired
	}

	ctx, log := logger.With(logger.WithContext(ctx, s.logger),
		zap.String("run_id", uuid.NewString()),
		zap.String("dataset", key),
		zap.String("index", s.keyspace.IndexName(kind)))

	start := time.Now()
	log.Info("Ingest started",
		zap.Int("batch_size", opts.BatchSize),
		zap.Int("chunk_size", opts.ChunkSize))

	if err := s.indexer.CreateIndex(ctx, kind); err != nil {
		return dombatch.Summary{}, err
	}

	ds, err := s.datasets.Open(ctx, key)
	if err != nil {
		return dombatch.Summary{}, fmt.Errorf("open dataset %s: %w", key, err)
	}

	batches := s.loader.Batches(ctx, ds, opts.BatchSize)
	docs := Generate(ctx, batches, kind, s.extractor, s.keyspace)

	summary, err := s.indexer.BulkIngest(ctx, docs, opts.ChunkSize)
	if err != nil {
		log.Error("Ingest aborted",
			zap.Int("written", summary.Succeeded),
			zap.Int("failed", summary.Failed),
			zap.Error(err))
		return summary, err
	}

	fields := []zap.Field{
		zap.Int("items", ds.Len()),
		zap.Int("written", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("chunks", summary.Chunks),
		zap.Duration("duration", time.Since(start)),
	}
	if n, cerr := s.indexes.Count(ctx, kind); cerr != nil {
		log.Warn("Index document count unavailable", zap.Error(cerr))
	} else {
		metrics.IndexDocs.WithLabelValues(s.keyspace.IndexName(kind)).Set(float64(n))
		fields = append(fields, zap.Int("index_docs", n))
	}
	log.Info("Ingest finished", fields...)

	return summary, nil
}
