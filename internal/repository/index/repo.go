package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/yash-quizizz/image-search/internal/db"
	"github.com/yash-quizizz/image-search/internal/domain"
)

// store is the consumer interface for index lifecycle (ISP).
type store interface {
	CreateIndex(ctx context.Context, schema *db.Schema) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexDocCount(ctx context.Context, name string) (int, error)
	SupportsTextSearch(ctx context.Context) bool
}

// Repo creates and inspects the per-kind search indexes.
type Repo struct {
	store    store
	keyspace domain.Keyspace
	vector   VectorConfig
}

// New creates an index repository with HNSW/COSINE defaults for the image vector field.
func New(s store, ks domain.Keyspace, vectorDim int) *Repo {
	return &Repo{
		store:    s,
		keyspace: ks,
		vector: VectorConfig{
			Dim:         vectorDim,
			Distance:    db.Cosine,
			Algorithm:   db.HNSW,
			M:           32,
			EFConstruct: 400,
		},
	}
}

// WithVector overrides the image vector field settings; zero values keep defaults.
func (r *Repo) WithVector(cfg VectorConfig) *Repo {
	if cfg.Dim > 0 {
		r.vector.Dim = cfg.Dim
	}
	if cfg.Distance != "" {
		r.vector.Distance = cfg.Distance
	}
	if cfg.Algorithm != "" {
		r.vector.Algorithm = cfg.Algorithm
	}
	if cfg.M > 0 {
		r.vector.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.vector.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Ensure creates kind's index if it is absent. Repeated calls only probe and never
// touch an existing schema. Returns true when this call created the index.
func (r *Repo) Ensure(ctx context.Context, kind domain.Kind) (bool, error) {
	name := r.keyspace.IndexName(kind)

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return false, nil
	}

	schema, err := schemaFor(r.keyspace, kind, r.vector, r.store.SupportsTextSearch(ctx))
	if err != nil {
		return false, err
	}

	if err := r.store.CreateIndex(ctx, schema); err != nil {
		// Lost a race with another creator: the index is there, which is all we need.
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", name, err)
	}
	return true, nil
}

// Count returns the number of documents currently indexed for kind.
func (r *Repo) Count(ctx context.Context, kind domain.Kind) (int, error) {
	name := r.keyspace.IndexName(kind)
	n, err := r.store.IndexDocCount(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	return n, nil
}
