package ingest

import (
	"context"
	"fmt"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/yash-quizizz/image-search/internal/dataset"
	"github.com/yash-quizizz/image-search/internal/domain/item"
)

// Loader groups dataset items into consecutive fixed-size batches.
type Loader struct {
	workers int
}

// NewLoader creates a loader. workers > 1 fetches the items of one batch concurrently;
// batch contents and order are unaffected.
func NewLoader(workers int) *Loader {
	if workers < 1 {
		workers = 1
	}
	return &Loader{workers: workers}
}

// Batches yields ceil(Len/size) batches in index order. Only the last may be short.
// The first item error is yielded once and ends the sequence.
func (l *Loader) Batches(ctx context.Context, ds dataset.Dataset, size int) iter.Seq2[item.Batch, error] {
	return func(yield func(item.Batch, error) bool) {
		if size <= 0 {
			yield(item.Batch{}, fmt.Errorf("batch size must be positive, got %d", size))
			return
		}

		n := ds.Len()
		for seq, start := 0, 0; start < n; seq, start = seq+1, start+size {
			if err := ctx.Err(); err != nil {
				yield(item.Batch{}, err)
				return
			}

			end := min(start+size, n)
			items, err := l.fetch(ctx, ds, start, end)
			if err != nil {
				yield(item.Batch{}, err)
				return
			}
			if !yield(item.Batch{Seq: seq, Items: items}, nil) {
				return
			}
		}
	}
}

func (l *Loader) fetch(ctx context.Context, ds dataset.Dataset, start, end int) ([]item.RawItem, error) {
	items := make([]item.RawItem, end-start)

	if l.workers == 1 {
		for i := range items {
			it, err := ds.Get(start + i)
			if err != nil {
				return nil, err
			}
			items[i] = it
		}
		return items, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			it, err := ds.Get(start + i)
			if err != nil {
				return err
			}
			items[i] = it
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
