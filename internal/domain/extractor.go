package domain

import (
	"context"
	"image"
)

// FeatureVector is a fixed-dimension embedding of one image.
type FeatureVector []float32

// FeatureExtractor maps decoded images to embeddings.
// The result must have the same length and order as images.
type FeatureExtractor interface {
	Extract(ctx context.Context, images []image.Image) ([]FeatureVector, error)
}
