package document

import (
	"github.com/yash-quizizz/image-search/internal/domain"
	"github.com/yash-quizizz/image-search/internal/domain/item"
)

// Document is an indexable record. Each variant names its own target index,
// so a chunk may mix kinds. The set of implementations is closed.
type Document interface {
	Index() domain.Kind
	ID() string
	document()
}

// Image is a photo document carrying its embedding.
type Image struct {
	id            string
	url           string
	featureVector domain.FeatureVector
}

// NewImage pairs an image item with its extracted vector.
func NewImage(it item.Image, vec domain.FeatureVector) Image {
	return Image{id: it.PhotoID, url: it.URL, featureVector: vec}
}

// Index returns domain.KindImage.
func (Image) Index() domain.Kind { return domain.KindImage }

// ID returns the photo identifier.
func (d Image) ID() string { return d.id }

// URL returns the photo source URL.
func (d Image) URL() string { return d.url }

// FeatureVector returns the embedding.
func (d Image) FeatureVector() domain.FeatureVector { return d.featureVector }

func (Image) document() {}

// Text is a question document.
type Text struct {
	id           string
	url          string
	questionText string
	optionText   string
	quizName     string
	qualityScore float64
}

// NewText maps a text item field-for-field.
func NewText(it item.Text) Text {
	return Text{
		id:           it.QuestionID,
		url:          it.URL,
		questionText: it.QuestionText,
		optionText:   it.OptionText,
		quizName:     it.QuizName,
		qualityScore: it.QualityScore,
	}
}

// Index returns domain.KindText.
func (Text) Index() domain.Kind { return domain.KindText }

// ID returns the question identifier.
func (d Text) ID() string { return d.id }

// URL returns the image URL attached to the question.
func (d Text) URL() string { return d.url }

// QuestionText returns the question body.
func (d Text) QuestionText() string { return d.questionText }

// OptionText returns the concatenated answer options.
func (d Text) OptionText() string { return d.optionText }

// QuizName returns the parent quiz name.
func (d Text) QuizName() string { return d.quizName }

// QualityScore returns the quiz quality score.
func (d Text) QualityScore() float64 { return d.qualityScore }

func (Text) document() {}
