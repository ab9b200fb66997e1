package ingest

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/yash-quizizz/image-search/internal/dataset"
	"github.com/yash-quizizz/image-search/internal/domain"
	dombatch "github.com/yash-quizizz/image-search/internal/domain/batch"
	domdoc "github.com/yash-quizizz/image-search/internal/domain/document"
	"github.com/yash-quizizz/image-search/internal/domain/item"
)

// --- dataset ---

type fakeDataset struct {
	kind  domain.Kind
	items []item.RawItem
	// failAt makes Get fail for that index; -1 disables.
	failAt int

	mu   sync.Mutex
	gets int
}

func (d *fakeDataset) Kind() domain.Kind { return d.kind }
func (d *fakeDataset) Len() int          { return len(d.items) }

func (d *fakeDataset) Get(i int) (item.RawItem, error) {
	d.mu.Lock()
	d.gets++
	d.mu.Unlock()
	if i == d.failAt {
		return nil, &domain.MissingMetadataError{PhotoID: d.items[i].ID()}
	}
	return d.items[i], nil
}

func textDataset(n int) *fakeDataset {
	items := make([]item.RawItem, n)
	for i := range items {
		items[i] = item.Text{QuestionID: fmt.Sprintf("q%d", i), QuestionText: "question"}
	}
	return &fakeDataset{kind: domain.KindText, items: items, failAt: -1}
}

func imageDataset(n int) *fakeDataset {
	items := make([]item.RawItem, n)
	for i := range items {
		items[i] = item.Image{
			PhotoID: fmt.Sprintf("p%d", i),
			URL:     fmt.Sprintf("https://img/%d", i),
			Decoded: image.NewGray(image.Rect(0, 0, 1, 1)),
		}
	}
	return &fakeDataset{kind: domain.KindImage, items: items, failAt: -1}
}

type mockOpener struct {
	openFn func(ctx context.Context, key string) (dataset.Dataset, error)
}

func (m *mockOpener) Open(ctx context.Context, key string) (dataset.Dataset, error) {
	return m.openFn(ctx, key)
}

// --- extractor ---

type mockExtractor struct {
	extractFn func(ctx context.Context, images []image.Image) ([]domain.FeatureVector, error)
	calls     []int // batch sizes
}

func (m *mockExtractor) Extract(ctx context.Context, images []image.Image) ([]domain.FeatureVector, error) {
	m.calls = append(m.calls, len(images))
	if m.extractFn != nil {
		return m.extractFn(ctx, images)
	}
	return vectors(len(images), 4), nil
}

func vectors(n, dim int) []domain.FeatureVector {
	out := make([]domain.FeatureVector, n)
	for i := range out {
		out[i] = make(domain.FeatureVector, dim)
		out[i][0] = float32(i)
	}
	return out
}

// --- index + writer ---

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

type mockIndexes struct {
	rec     *recorder
	ensured []domain.Kind
	count   int
	err     error
	cntErr  error
}

func (m *mockIndexes) Ensure(_ context.Context, kind domain.Kind) (bool, error) {
	if m.rec != nil {
		m.rec.add("ensure")
	}
	m.ensured = append(m.ensured, kind)
	return len(m.ensured) == 1, m.err
}

func (m *mockIndexes) Count(context.Context, domain.Kind) (int, error) {
	return m.count, m.cntErr
}

type mockWriter struct {
	rec    *recorder
	chunks [][]domdoc.Document
	// reject marks ids the store refuses.
	reject map[string]bool
}

func (m *mockWriter) BulkWrite(_ context.Context, docs []domdoc.Document) []dombatch.Result {
	if m.rec != nil {
		m.rec.add("write")
	}
	m.chunks = append(m.chunks, append([]domdoc.Document(nil), docs...))
	out := make([]dombatch.Result, len(docs))
	for i, d := range docs {
		if m.reject[d.ID()] {
			out[i] = dombatch.NewError(d.Index(), d.ID(), domain.ErrIndexWrite)
			continue
		}
		out[i] = dombatch.NewOK(d.Index(), d.ID())
	}
	return out
}

func (m *mockWriter) chunkSizes() []int {
	sizes := make([]int, len(m.chunks))
	for i, c := range m.chunks {
		sizes[i] = len(c)
	}
	return sizes
}

func (m *mockWriter) total() int {
	n := 0
	for _, c := range m.chunks {
		n += len(c)
	}
	return n
}
