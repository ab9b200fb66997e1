package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataSource signals a failed warehouse fetch. Non-fatal: the dataset degrades to empty.
	ErrDataSource = errors.New("data source error")
	// ErrMissingMetadata signals an image identifier with no URL mapping.
	ErrMissingMetadata = errors.New("missing metadata")
	// ErrExtractionMismatch signals an extractor that broke the same-length contract.
	ErrExtractionMismatch = errors.New("extraction mismatch")
	// ErrIndexWrite signals a document rejected by the search index.
	ErrIndexWrite = errors.New("index write error")
	// ErrUnknownDataset signals a dataset key outside the registry.
	ErrUnknownDataset = errors.New("unknown dataset")
	// ErrExtractorUnavailable wraps transport and API failures of the feature extractor.
	ErrExtractorUnavailable = errors.New("feature extractor error")
)

// MissingMetadataError names the identifier that has no URL mapping.
type MissingMetadataError struct {
	PhotoID string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("%s: no url for photo %q", ErrMissingMetadata.Error(), e.PhotoID)
}

func (e *MissingMetadataError) Unwrap() error { return ErrMissingMetadata }

// ExtractionMismatchError reports the offending batch and the vector count it produced.
type ExtractionMismatchError struct {
	Batch int
	Want  int
	Got   int
}

func (e *ExtractionMismatchError) Error() string {
	return fmt.Sprintf("%s: batch %d has %d images, extractor returned %d vectors",
		ErrExtractionMismatch.Error(), e.Batch, e.Want, e.Got)
}

func (e *ExtractionMismatchError) Unwrap() error { return ErrExtractionMismatch }
