package document

import (
	"context"

	"github.com/yash-quizizz/image-search/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn func(ctx context.Context, items []db.HashSetItem) []error
	calls       [][]db.HashSetItem
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) []error {
	m.calls = append(m.calls, items)
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return make([]error, len(items))
}
