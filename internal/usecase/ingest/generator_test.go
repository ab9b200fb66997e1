package ingest

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/yash-quizizz/image-search/internal/domain"
	domdoc "github.com/yash-quizizz/image-search/internal/domain/document"
)

var ks = domain.Keyspace{Prefix: domain.DefaultKeyPrefix}

func collectDocs(
	t *testing.T, ds *fakeDataset, kind domain.Kind, ext domain.FeatureExtractor, batch int,
) ([]domdoc.Document, error) {
	t.Helper()
	ctx := context.Background()
	var docs []domdoc.Document
	for d, err := range Generate(ctx, NewLoader(1).Batches(ctx, ds, batch), kind, ext, ks) {
		if err != nil {
			return docs, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func TestGenerate_Text(t *testing.T) {
	docs, err := collectDocs(t, textDataset(5), domain.KindText, nil, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 5 {
		t.Fatalf("docs = %d, want 5", len(docs))
	}
	for i, d := range docs {
		txt, ok := d.(domdoc.Text)
		if !ok {
			t.Fatalf("doc %d is %T", i, d)
		}
		if txt.Index() != domain.KindText || txt.QuestionText() != "question" {
			t.Errorf("doc %d = %+v", i, txt)
		}
	}
	if docs[3].ID() != "q3" {
		t.Errorf("order broken: doc 3 = %s", docs[3].ID())
	}
}

func TestGenerate_ImageOneCallPerBatch(t *testing.T) {
	ext := &mockExtractor{}
	docs, err := collectDocs(t, imageDataset(10), domain.KindImage, ext, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 10 {
		t.Fatalf("docs = %d, want 10", len(docs))
	}
	if len(ext.calls) != 3 || ext.calls[0] != 4 || ext.calls[2] != 2 {
		t.Errorf("extractor calls = %v, want [4 4 2]", ext.calls)
	}

	img := docs[5].(domdoc.Image)
	if img.ID() != "p5" || img.URL() != "https://img/5" {
		t.Errorf("doc 5 = %s %s", img.ID(), img.URL())
	}
	// Vector i of batch 1 belongs to item 4+i.
	if img.FeatureVector()[0] != 1 {
		t.Errorf("doc 5 vector[0] = %v, want 1", img.FeatureVector()[0])
	}
}

func TestGenerate_ExtractionMismatch(t *testing.T) {
	ext := &mockExtractor{extractFn: func(_ context.Context, images []image.Image) ([]domain.FeatureVector, error) {
		if len(images) == 2 {
			return vectors(1, 4), nil
		}
		return vectors(len(images), 4), nil
	}}

	docs, err := collectDocs(t, imageDataset(6), domain.KindImage, ext, 4)
	var mm *domain.ExtractionMismatchError
	if !errors.As(err, &mm) {
		t.Fatalf("expected ExtractionMismatchError, got %v", err)
	}
	if mm.Batch != 1 || mm.Want != 2 || mm.Got != 1 {
		t.Errorf("mismatch = %+v", mm)
	}
	// Batch 0 went out; nothing from batch 1.
	if len(docs) != 4 {
		t.Errorf("docs before error = %d, want 4", len(docs))
	}
}

func TestGenerate_ExtractorError(t *testing.T) {
	ext := &mockExtractor{extractFn: func(context.Context, []image.Image) ([]domain.FeatureVector, error) {
		return nil, domain.ErrExtractorUnavailable
	}}
	if _, err := collectDocs(t, imageDataset(2), domain.KindImage, ext, 4); !errors.Is(err, domain.ErrExtractorUnavailable) {
		t.Fatalf("expected ErrExtractorUnavailable, got %v", err)
	}
}

func TestGenerate_ImageWithoutExtractor(t *testing.T) {
	if _, err := collectDocs(t, imageDataset(2), domain.KindImage, nil, 4); !errors.Is(err, ErrExtractorRequired) {
		t.Fatalf("expected ErrExtractorRequired, got %v", err)
	}
}

func TestGenerate_KindMismatch(t *testing.T) {
	if _, err := collectDocs(t, textDataset(2), domain.KindImage, &mockExtractor{}, 4); err == nil {
		t.Fatal("expected error for text items in an image run")
	}
}

func TestGenerate_UnknownKind(t *testing.T) {
	if _, err := collectDocs(t, textDataset(2), domain.Kind("audio"), nil, 4); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
