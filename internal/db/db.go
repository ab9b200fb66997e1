// Package db defines the search-engine operations the ingest pipeline needs.
package db

import (
	"context"
	"time"
)

// Store bundles everything the composition root needs from one connection.
type Store interface {
	HashWriter
	Indexer
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

// HashSetItem is one HSET in a pipelined write.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashWriter stores documents as hashes.
type HashWriter interface {
	// HSetMulti pipelines all items in one round trip. The result is aligned
	// with items; nil means that write was acknowledged.
	HSetMulti(ctx context.Context, items []HashSetItem) []error
}

// Indexer manages FT indexes.
type Indexer interface {
	CreateIndex(ctx context.Context, schema *Schema) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexDocCount(ctx context.Context, name string) (int, error)
	SupportsTextSearch(ctx context.Context) bool
}
