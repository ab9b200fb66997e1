package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yash-quizizz/image-search/internal/domain"
	"github.com/yash-quizizz/image-search/internal/domain/item"
)

// Side-table columns.
const (
	colPhotoID  = "photo_id"
	colPhotoURL = "photo_image_url"
)

// ImageConfig locates the photo files and their URL side table.
type ImageConfig struct {
	PhotosDir    string
	MetadataPath string // tab-separated, header row with photo_id and photo_image_url
	Glob         string // default "*.jpg"
}

// ImageDataset decodes one photo per Get. Only the file list and the URL map live in memory.
type ImageDataset struct {
	files   []string
	idToURL map[string]string
}

// NewImageDataset lists photo files in lexical order and loads the URL side table.
func NewImageDataset(cfg ImageConfig) (*ImageDataset, error) {
	glob := cfg.Glob
	if glob == "" {
		glob = "*.jpg"
	}

	files, err := filepath.Glob(filepath.Join(filepath.Clean(cfg.PhotosDir), glob))
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	sort.Strings(files)

	idToURL, err := loadURLMap(cfg.MetadataPath)
	if err != nil {
		return nil, err
	}

	return &ImageDataset{files: files, idToURL: idToURL}, nil
}

// Kind returns domain.KindImage.
func (d *ImageDataset) Kind() domain.Kind { return domain.KindImage }

// Len returns the number of photo files.
func (d *ImageDataset) Len() int { return len(d.files) }

// Get decodes photo i and joins it with its URL.
// A photo without a URL mapping yields *domain.MissingMetadataError.
func (d *ImageDataset) Get(i int) (item.RawItem, error) {
	if err := checkRange(i, len(d.files)); err != nil {
		return nil, err
	}

	path := d.files[i]
	photoID := photoIDFromPath(path)

	url, ok := d.idToURL[photoID]
	if !ok {
		return nil, &domain.MissingMetadataError{PhotoID: photoID}
	}

	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	return item.Image{PhotoID: photoID, URL: url, Decoded: img}, nil
}

// photoIDFromPath takes the base name up to the first dot.
func photoIDFromPath(path string) string {
	base := filepath.Base(path)
	id, _, _ := strings.Cut(base, ".")
	return id
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func loadURLMap(path string) (map[string]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open metadata %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read metadata header: %w", err)
	}
	idCol, urlCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case colPhotoID:
			idCol = i
		case colPhotoURL:
			urlCol = i
		}
	}
	if idCol < 0 || urlCol < 0 {
		return nil, fmt.Errorf("metadata %s: header must contain %s and %s", path, colPhotoID, colPhotoURL)
	}

	m := make(map[string]string)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read metadata %s: %w", path, err)
		}
		if idCol >= len(rec) || urlCol >= len(rec) {
			continue
		}
		m[rec[idCol]] = rec[urlCol]
	}
	return m, nil
}
