package ingest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/yash-quizizz/image-search/internal/dataset"
	"github.com/yash-quizizz/image-search/internal/domain"
	"github.com/yash-quizizz/image-search/internal/domain/item"
)

func newTestService(ds dataset.Dataset, ext domain.FeatureExtractor, idx *mockIndexes, w *mockWriter) *Service {
	opener := &mockOpener{openFn: func(context.Context, string) (dataset.Dataset, error) {
		return ds, nil
	}}
	return New(opener, NewLoader(1), ext, idx, w, ks, zap.NewNop())
}

func TestRun_TextCreatesIndexFirst(t *testing.T) {
	rec := &recorder{}
	idx := &mockIndexes{rec: rec, count: 200}
	w := &mockWriter{rec: rec}
	svc := newTestService(textDataset(200), nil, idx, w)

	summary, err := svc.Run(context.Background(), dataset.KeyQuizizz, Options{BatchSize: 64, ChunkSize: 128})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Succeeded != 200 || summary.Chunks != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if !slices.Equal(rec.events, []string{"ensure", "write", "write"}) {
		t.Errorf("events = %v", rec.events)
	}
	if !slices.Equal(idx.ensured, []domain.Kind{domain.KindText}) {
		t.Errorf("ensured = %v", idx.ensured)
	}
}

func TestRun_Defaults(t *testing.T) {
	w := &mockWriter{}
	svc := newTestService(textDataset(300), nil, &mockIndexes{}, w)

	if _, err := svc.Run(context.Background(), dataset.KeyQuizizz, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(w.chunkSizes(), []int{128, 128, 44}) {
		t.Errorf("chunk sizes = %v", w.chunkSizes())
	}
}

func TestRun_PreservesOrderAcrossBatchAndChunkBoundaries(t *testing.T) {
	w := &mockWriter{}
	svc := newTestService(textDataset(300), nil, &mockIndexes{}, w)

	if _, err := svc.Run(context.Background(), dataset.KeyQuizizz, Options{BatchSize: 7, ChunkSize: 128}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(w.chunkSizes(), []int{128, 128, 44}) {
		t.Fatalf("chunk sizes = %v", w.chunkSizes())
	}

	var ids []string
	for _, chunk := range w.chunks {
		for _, d := range chunk {
			ids = append(ids, d.ID())
		}
	}
	for i, id := range ids {
		if want := fmt.Sprintf("q%d", i); id != want {
			t.Fatalf("write position %d holds %s, want %s", i, id, want)
		}
	}
}

type failingRows struct{ err error }

func (f failingRows) FetchQuestions(context.Context) ([]item.Text, error) { return nil, f.err }

type alertLog struct{ summaries []string }

func (a *alertLog) Alert(_ context.Context, summary string) error {
	a.summaries = append(a.summaries, summary)
	return nil
}

func TestRun_WarehouseFailureCompletesEmpty(t *testing.T) {
	alerts := &alertLog{}
	registry := dataset.NewRegistry(dataset.ImageConfig{}, failingRows{err: errors.New("quota exceeded")}, alerts, zap.NewNop())
	idx := &mockIndexes{}
	w := &mockWriter{}
	svc := New(registry, NewLoader(1), nil, idx, w, ks, zap.NewNop())

	summary, err := svc.Run(context.Background(), dataset.KeyQuizizz, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Seen != 0 || summary.Chunks != 0 || len(w.chunks) != 0 {
		t.Errorf("summary = %+v, writes = %d", summary, len(w.chunks))
	}
	if len(idx.ensured) != 1 {
		t.Errorf("ensure calls = %d, want 1", len(idx.ensured))
	}
	if len(alerts.summaries) != 1 || !strings.Contains(alerts.summaries[0], "quota exceeded") {
		t.Errorf("alerts = %q", alerts.summaries)
	}
}

func TestRun_DegradedDatasetIsEmptyRun(t *testing.T) {
	idx := &mockIndexes{}
	w := &mockWriter{}
	svc := newTestService(textDataset(0), nil, idx, w)

	summary, err := svc.Run(context.Background(), dataset.KeyQuizizz, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Seen != 0 || len(w.chunks) != 0 {
		t.Errorf("summary = %+v chunks = %d", summary, len(w.chunks))
	}
	if len(idx.ensured) != 1 {
		t.Errorf("index should still be ensured, calls = %d", len(idx.ensured))
	}
}

func TestRun_ImageMismatchWritesNothing(t *testing.T) {
	ext := &mockExtractor{extractFn: func(_ context.Context, images []image.Image) ([]domain.FeatureVector, error) {
		return vectors(len(images)-1, 4), nil
	}}
	w := &mockWriter{}
	svc := newTestService(imageDataset(10), ext, &mockIndexes{}, w)

	_, err := svc.Run(context.Background(), dataset.KeyUnsplash, Options{BatchSize: 4, ChunkSize: 128})
	if !errors.Is(err, domain.ErrExtractionMismatch) {
		t.Fatalf("expected ErrExtractionMismatch, got %v", err)
	}
	if w.total() != 0 {
		t.Errorf("docs written = %d, want 0", w.total())
	}
}

func TestRun_ImageMissingMetadataAborts(t *testing.T) {
	ds := imageDataset(5)
	ds.failAt = 3
	w := &mockWriter{}
	svc := newTestService(ds, &mockExtractor{}, &mockIndexes{}, w)

	_, err := svc.Run(context.Background(), dataset.KeyUnsplash, Options{BatchSize: 2, ChunkSize: 2})
	if !errors.Is(err, domain.ErrMissingMetadata) {
		t.Fatalf("expected ErrMissingMetadata, got %v", err)
	}
	if !slices.Equal(w.chunkSizes(), []int{2}) {
		t.Errorf("chunk sizes = %v, want [2]", w.chunkSizes())
	}
}

func TestRun_UnknownDataset(t *testing.T) {
	idx := &mockIndexes{}
	svc := newTestService(textDataset(1), nil, idx, &mockWriter{})

	if _, err := svc.Run(context.Background(), "ImageNet", Options{}); !errors.Is(err, domain.ErrUnknownDataset) {
		t.Fatalf("expected ErrUnknownDataset, got %v", err)
	}
	if len(idx.ensured) != 0 {
		t.Error("index must not be touched for an unknown dataset")
	}
}

func TestRun_ImageWithoutExtractor(t *testing.T) {
	svc := newTestService(imageDataset(1), nil, &mockIndexes{}, &mockWriter{})
	if _, err := svc.Run(context.Background(), dataset.KeyUnsplash, Options{}); !errors.Is(err, ErrExtractorRequired) {
		t.Fatalf("expected ErrExtractorRequired, got %v", err)
	}
}

func TestRun_NegativeSizes(t *testing.T) {
	svc := newTestService(textDataset(1), nil, &mockIndexes{}, &mockWriter{})
	if _, err := svc.Run(context.Background(), dataset.KeyQuizizz, Options{BatchSize: -1}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRun_CountFailureIsNotFatal(t *testing.T) {
	idx := &mockIndexes{cntErr: errors.New("FT.INFO failed")}
	svc := newTestService(textDataset(3), nil, idx, &mockWriter{})
	if _, err := svc.Run(context.Background(), dataset.KeyQuizizz, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRun_OpenError(t *testing.T) {
	opener := &mockOpener{openFn: func(context.Context, string) (dataset.Dataset, error) {
		return nil, errors.New("no such directory")
	}}
	idx := &mockIndexes{}
	svc := New(opener, NewLoader(1), &mockExtractor{}, idx, &mockWriter{}, ks, zap.NewNop())

	if _, err := svc.Run(context.Background(), dataset.KeyUnsplash, Options{}); err == nil {
		t.Fatal("expected error")
	}
	if len(idx.ensured) != 1 {
		t.Errorf("ensure calls = %d, want 1", len(idx.ensured))
	}
}

func TestService_CreateIndex(t *testing.T) {
	idx := &mockIndexes{}
	svc := newTestService(textDataset(0), nil, idx, &mockWriter{})

	if err := svc.CreateIndex(context.Background(), dataset.KeyUnsplash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(idx.ensured, []domain.Kind{domain.KindImage}) {
		t.Errorf("ensured = %v", idx.ensured)
	}
	if err := svc.CreateIndex(context.Background(), "bogus"); !errors.Is(err, domain.ErrUnknownDataset) {
		t.Errorf("expected ErrUnknownDataset, got %v", err)
	}
}

func TestRun_IndexErrorStopsBeforeOpen(t *testing.T) {
	opened := false
	opener := &mockOpener{openFn: func(context.Context, string) (dataset.Dataset, error) {
		opened = true
		return textDataset(1), nil
	}}
	svc := New(opener, NewLoader(1), nil, &mockIndexes{err: errors.New("auth failed")}, &mockWriter{}, ks, zap.NewNop())

	if _, err := svc.Run(context.Background(), dataset.KeyQuizizz, Options{}); err == nil {
		t.Fatal("expected error")
	}
	if opened {
		t.Error("dataset must not be opened when index creation fails")
	}
}
