package dataset

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yash-quizizz/image-search/internal/domain/item"
)

type mockRowSource struct {
	fetchFn func(ctx context.Context) ([]item.Text, error)
	calls   int
}

func (m *mockRowSource) FetchQuestions(ctx context.Context) ([]item.Text, error) {
	m.calls++
	return m.fetchFn(ctx)
}

type mockAlerter struct {
	summaries []string
	err       error
}

func (m *mockAlerter) Alert(_ context.Context, summary string) error {
	m.summaries = append(m.summaries, summary)
	return m.err
}

// writePhoto encodes a 2x2 image under dir. PNG bytes decode fine regardless of extension.
func writePhoto(t *testing.T, dir, name string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeTSV(t *testing.T, dir string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, "photos.tsv000")
	body := "photo_id\tphoto_url\tphoto_image_url\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
