package dataset

import (
	"context"

	"go.uber.org/zap"

	"github.com/yash-quizizz/image-search/internal/domain"
)

// Alerter publishes a human-readable failure summary to an external channel.
type Alerter interface {
	Alert(ctx context.Context, summary string) error
}

// Registry opens datasets by key.
type Registry struct {
	image   ImageConfig
	rows    RowSource
	alerter Alerter
	logger  *zap.Logger
}

// NewRegistry creates a dataset registry. rows may be nil when only images are ingested.
func NewRegistry(image ImageConfig, rows RowSource, alerter Alerter, logger *zap.Logger) *Registry {
	return &Registry{image: image, rows: rows, alerter: alerter, logger: logger}
}

// Open resolves key and builds its dataset.
// A failed warehouse fetch is alerted and logged, then served as an empty dataset.
func (r *Registry) Open(ctx context.Context, key string) (Dataset, error) {
	kind, err := KindForKey(key)
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.KindImage:
		ds, err := NewImageDataset(r.image)
		if err != nil {
			return nil, err
		}
		r.logger.Info("Image dataset opened",
			zap.String("photos_dir", r.image.PhotosDir),
			zap.Int("photos", ds.Len()))
		return ds, nil
	default:
		if r.rows == nil {
			return nil, domain.ErrDataSource
		}
		load := LoadText(ctx, r.rows)
		if load.Degraded() {
			r.logger.Error("Warehouse fetch failed, continuing with empty dataset", zap.Error(load.Err))
			if r.alerter != nil {
				if aerr := r.alerter.Alert(ctx, load.Err.Error()); aerr != nil {
					r.logger.Warn("Alert delivery failed", zap.Error(aerr))
				}
			}
		} else {
			r.logger.Info("Text dataset loaded", zap.Int("rows", load.Dataset.Len()))
		}
		return load.Dataset, nil
	}
}
