package ingest

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/yash-quizizz/image-search/internal/domain"
)

func collectBatchSizes(t *testing.T, l *Loader, ds *fakeDataset, size int) ([]int, error) {
	t.Helper()
	var sizes []int
	for b, err := range l.Batches(context.Background(), ds, size) {
		if err != nil {
			return sizes, err
		}
		if b.Seq != len(sizes) {
			t.Errorf("batch seq = %d, want %d", b.Seq, len(sizes))
		}
		sizes = append(sizes, b.Len())
	}
	return sizes, nil
}

func TestLoader_Batches(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{"exact", 8, 4, []int{4, 4}},
		{"short tail", 10, 4, []int{4, 4, 2}},
		{"one oversized", 3, 64, []int{3}},
		{"empty", 0, 64, nil},
		{"size one", 3, 1, []int{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sizes, err := collectBatchSizes(t, NewLoader(1), textDataset(tt.n), tt.size)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(sizes, tt.sizes) {
				t.Errorf("sizes = %v, want %v", sizes, tt.sizes)
			}
		})
	}
}

func TestLoader_PreservesOrderConcurrently(t *testing.T) {
	ds := textDataset(50)
	var ids []string
	for b, err := range NewLoader(8).Batches(context.Background(), ds, 16) {
		if err != nil {
			t.Fatal(err)
		}
		for _, it := range b.Items {
			ids = append(ids, it.ID())
		}
	}
	if len(ids) != 50 {
		t.Fatalf("items = %d, want 50", len(ids))
	}
	for i, id := range ids {
		if id != ds.items[i].ID() {
			t.Fatalf("item %d = %s, want %s", i, id, ds.items[i].ID())
		}
	}
}

func TestLoader_InvalidSize(t *testing.T) {
	if _, err := collectBatchSizes(t, NewLoader(1), textDataset(3), 0); err == nil {
		t.Fatal("expected error for zero batch size")
	}
}

func TestLoader_ItemErrorStops(t *testing.T) {
	for _, workers := range []int{1, 4} {
		ds := imageDataset(10)
		ds.failAt = 5

		sizes, err := collectBatchSizes(t, NewLoader(workers), ds, 4)
		if !errors.Is(err, domain.ErrMissingMetadata) {
			t.Fatalf("workers=%d: expected ErrMissingMetadata, got %v", workers, err)
		}
		if !slices.Equal(sizes, []int{4}) {
			t.Errorf("workers=%d: sizes before error = %v, want [4]", workers, sizes)
		}
	}
}

func TestLoader_Lazy(t *testing.T) {
	ds := textDataset(100)
	for range NewLoader(1).Batches(context.Background(), ds, 10) {
		break
	}
	if ds.gets != 10 {
		t.Errorf("gets = %d, want 10", ds.gets)
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, err := range NewLoader(1).Batches(ctx, textDataset(3), 1) {
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		return
	}
	t.Fatal("expected one error")
}
