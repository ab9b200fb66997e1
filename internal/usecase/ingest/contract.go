package ingest

import (
	"context"

	"github.com/yash-quizizz/image-search/internal/dataset"
	"github.com/yash-quizizz/image-search/internal/domain"
	dombatch "github.com/yash-quizizz/image-search/internal/domain/batch"
	domdoc "github.com/yash-quizizz/image-search/internal/domain/document"
)

// IndexManager creates and inspects search indexes.
type IndexManager interface {
	Ensure(ctx context.Context, kind domain.Kind) (bool, error)
	Count(ctx context.Context, kind domain.Kind) (int, error)
}

// DocumentWriter stores one chunk of documents in a single round trip.
type DocumentWriter interface {
	BulkWrite(ctx context.Context, docs []domdoc.Document) []dombatch.Result
}

// DatasetOpener resolves a dataset key to a ready dataset.
type DatasetOpener interface {
	Open(ctx context.Context, key string) (dataset.Dataset, error)
}
