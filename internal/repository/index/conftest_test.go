package index

import (
	"context"

	"github.com/yash-quizizz/image-search/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createIndexFn   func(ctx context.Context, schema *db.Schema) error
	indexExistsFn   func(ctx context.Context, name string) (bool, error)
	indexDocCountFn func(ctx context.Context, name string) (int, error)
	textSearch      bool
}

func (m *mockStore) CreateIndex(ctx context.Context, schema *db.Schema) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, schema)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) IndexDocCount(ctx context.Context, name string) (int, error) {
	if m.indexDocCountFn != nil {
		return m.indexDocCountFn(ctx, name)
	}
	return 0, nil
}

func (m *mockStore) SupportsTextSearch(_ context.Context) bool {
	return m.textSearch
}
