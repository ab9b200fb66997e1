// Package item holds raw source records before they become documents.
package item

import (
	"image"

	"github.com/yash-quizizz/image-search/internal/domain"
)

// RawItem is one source record. The set of implementations is closed: Image and Text.
type RawItem interface {
	ID() string
	Kind() domain.Kind
	raw()
}

// Image is a decoded photo joined with its source URL.
type Image struct {
	PhotoID string
	URL     string
	Decoded image.Image
}

// ID returns the photo identifier.
func (i Image) ID() string { return i.PhotoID }

// Kind returns domain.KindImage.
func (Image) Kind() domain.Kind { return domain.KindImage }

func (Image) raw() {}

// Text is one question row from the warehouse.
type Text struct {
	QuestionID   string
	QuizName     string
	URL          string
	QuestionText string
	OptionText   string
	QualityScore float64
}

// ID returns the question identifier.
func (t Text) ID() string { return t.QuestionID }

// Kind returns domain.KindText.
func (Text) Kind() domain.Kind { return domain.KindText }

func (Text) raw() {}

// Batch is an ordered group of items; only the last batch of a dataset may be short.
type Batch struct {
	// Seq is the zero-based position of the batch in emission order.
	Seq   int
	Items []RawItem
}

// Len returns the number of items in the batch.
func (b Batch) Len() int { return len(b.Items) }
