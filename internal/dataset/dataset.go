// Package dataset provides lazy, indexable access to source records.
package dataset

import (
	"fmt"

	"github.com/yash-quizizz/image-search/internal/domain"
	"github.com/yash-quizizz/image-search/internal/domain/item"
)

// Dataset is a finite, indexable collection of raw items.
// Get is valid for 0 <= i < Len() and may do I/O for the requested item only.
type Dataset interface {
	Kind() domain.Kind
	Len() int
	Get(i int) (item.RawItem, error)
}

// Dataset keys accepted on the command line.
const (
	KeyUnsplash = "UnsplashDataset"
	KeyQuizizz  = "QuizizzText"
)

var keyKinds = map[string]domain.Kind{
	KeyUnsplash: domain.KindImage,
	KeyQuizizz:  domain.KindText,
}

// KindForKey resolves a dataset key to its kind. Keys are case-sensitive.
func KindForKey(key string) (domain.Kind, error) {
	kind, ok := keyKinds[key]
	if !ok {
		return "", fmt.Errorf("%w: %q (want %s or %s)", domain.ErrUnknownDataset, key, KeyUnsplash, KeyQuizizz)
	}
	return kind, nil
}

func checkRange(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("index %d out of range [0,%d)", i, n)
	}
	return nil
}
