package ingest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"iter"

	"github.com/yash-quizizz/image-search/internal/domain"
	domdoc "github.com/yash-quizizz/image-search/internal/domain/document"
	"github.com/yash-quizizz/image-search/internal/domain/item"
	"github.com/yash-quizizz/image-search/internal/metrics"
)

// ErrExtractorRequired is returned when image documents are requested without an extractor.
var ErrExtractorRequired = errors.New("image ingest requires a feature extractor")

// Generate turns batches into documents, one per item, in batch then item order.
// Image batches make exactly one extractor call each. A batch whose vector count
// differs from its image count yields *domain.ExtractionMismatchError and none of its documents.
func Generate(
	ctx context.Context,
	batches iter.Seq2[item.Batch, error],
	kind domain.Kind,
	extractor domain.FeatureExtractor,
	keyspace domain.Keyspace,
) iter.Seq2[domdoc.Document, error] {
	return func(yield func(domdoc.Document, error) bool) {
		if err := kind.Validate(); err != nil {
			yield(nil, err)
			return
		}
		if kind == domain.KindImage && extractor == nil {
			yield(nil, ErrExtractorRequired)
			return
		}

		index := keyspace.IndexName(kind)
		for b, err := range batches {
			if err != nil {
				yield(nil, err)
				return
			}

			var docs []domdoc.Document
			switch kind {
			case domain.KindImage:
				docs, err = imageDocs(ctx, b, extractor)
			default:
				docs, err = textDocs(b)
			}
			if err != nil {
				yield(nil, err)
				return
			}
			metrics.IngestBatchesTotal.WithLabelValues(index).Inc()

			for _, d := range docs {
				if !yield(d, nil) {
					return
				}
			}
		}
	}
}

func imageDocs(ctx context.Context, b item.Batch, extractor domain.FeatureExtractor) ([]domdoc.Document, error) {
	imgs := make([]item.Image, len(b.Items))
	decoded := make([]image.Image, len(b.Items))
	for i, raw := range b.Items {
		it, ok := raw.(item.Image)
		if !ok {
			return nil, fmt.Errorf("batch %d item %d: expected image, got %s", b.Seq, i, raw.Kind())
		}
		imgs[i] = it
		decoded[i] = it.Decoded
	}

	vecs, err := extractor.Extract(ctx, decoded)
	if err != nil {
		return nil, fmt.Errorf("extract batch %d: %w", b.Seq, err)
	}
	if len(vecs) != len(imgs) {
		return nil, &domain.ExtractionMismatchError{Batch: b.Seq, Want: len(imgs), Got: len(vecs)}
	}

	docs := make([]domdoc.Document, len(imgs))
	for i, it := range imgs {
		docs[i] = domdoc.NewImage(it, vecs[i])
	}
	return docs, nil
}

func textDocs(b item.Batch) ([]domdoc.Document, error) {
	docs := make([]domdoc.Document, len(b.Items))
	for i, raw := range b.Items {
		it, ok := raw.(item.Text)
		if !ok {
			return nil, fmt.Errorf("batch %d item %d: expected text, got %s", b.Seq, i, raw.Kind())
		}
		docs[i] = domdoc.NewText(it)
	}
	return docs, nil
}
