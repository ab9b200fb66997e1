package document

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	domdoc "github.com/yash-quizizz/image-search/internal/domain/document"
	"github.com/yash-quizizz/image-search/internal/repository/index"
)

// buildHashFields converts a Document into its per-index wire shape for HSET.
func buildHashFields(doc domdoc.Document) (map[string]string, error) {
	switch d := doc.(type) {
	case domdoc.Image:
		return map[string]string{
			index.FieldID:            d.ID(),
			index.FieldURL:           d.URL(),
			index.FieldFeatureVector: vectorToBytes(d.FeatureVector()),
		}, nil
	case domdoc.Text:
		return map[string]string{
			index.FieldID:           d.ID(),
			index.FieldURL:          d.URL(),
			index.FieldQuestionText: d.QuestionText(),
			index.FieldOptionText:   d.OptionText(),
			index.FieldQuizName:     d.QuizName(),
			index.FieldQualityScore: strconv.FormatFloat(d.QualityScore(), 'f', -1, 64),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported document type %T", doc)
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
