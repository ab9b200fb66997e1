package dataset

import (
	"context"
	"fmt"

	"github.com/yash-quizizz/image-search/internal/domain"
	"github.com/yash-quizizz/image-search/internal/domain/item"
)

// RowSource runs the warehouse query and returns every row.
type RowSource interface {
	FetchQuestions(ctx context.Context) ([]item.Text, error)
}

// TextDataset serves rows materialized once at construction.
type TextDataset struct {
	rows []item.Text
}

// TextLoad is the outcome of building a TextDataset. On failure Dataset is
// empty and Err wraps domain.ErrDataSource; the caller picks degrade or abort.
type TextLoad struct {
	Dataset *TextDataset
	Err     error
}

// Degraded reports whether the warehouse fetch failed.
func (l TextLoad) Degraded() bool { return l.Err != nil }

// LoadText executes the warehouse query once. It never returns a nil Dataset.
func LoadText(ctx context.Context, src RowSource) TextLoad {
	rows, err := src.FetchQuestions(ctx)
	if err != nil {
		return TextLoad{
			Dataset: &TextDataset{},
			Err:     fmt.Errorf("%w: %w", domain.ErrDataSource, err),
		}
	}
	return TextLoad{Dataset: &TextDataset{rows: rows}}
}

// Kind returns domain.KindText.
func (d *TextDataset) Kind() domain.Kind { return domain.KindText }

// Len returns the number of materialized rows.
func (d *TextDataset) Len() int { return len(d.rows) }

// Get returns row i.
func (d *TextDataset) Get(i int) (item.RawItem, error) {
	if err := checkRange(i, len(d.rows)); err != nil {
		return nil, err
	}
	return d.rows[i], nil
}
