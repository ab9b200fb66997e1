package index

import (
	"fmt"

	"github.com/yash-quizizz/image-search/internal/db"
	"github.com/yash-quizizz/image-search/internal/domain"
)

// Wire field names shared with the document repository.
const (
	FieldID            = "id"
	FieldURL           = "url"
	FieldFeatureVector = "feature_vector"
	FieldQuestionText  = "question_text"
	FieldOptionText    = "option_text"
	FieldQuizName      = "quiz_name"
	FieldQualityScore  = "question_quality_score"
)

// VectorConfig holds the image vector field settings.
type VectorConfig struct {
	Dim         int
	Distance    db.Distance
	Algorithm   db.Algorithm
	M           int
	EFConstruct int
}

// schemaFor returns the index schema for kind. With textSearch off (valkey-search 1.0.x)
// free-text columns are indexed as TAG.
func schemaFor(ks domain.Keyspace, kind domain.Kind, vec VectorConfig, textSearch bool) (*db.Schema, error) {
	fields := []db.SchemaField{db.Tag(FieldID), db.Tag(FieldURL)}

	switch kind {
	case domain.KindImage:
		fields = append(fields, db.Vector(FieldFeatureVector, db.VectorSpec{
			Algorithm:      vec.Algorithm,
			Dim:            vec.Dim,
			Distance:       vec.Distance,
			M:              vec.M,
			EFConstruction: vec.EFConstruct,
		}))
	case domain.KindText:
		free := db.Tag
		if textSearch {
			free = db.Text
		}
		fields = append(fields,
			free(FieldQuestionText),
			free(FieldOptionText),
			free(FieldQuizName),
			db.Numeric(FieldQualityScore),
		)
	default:
		return nil, fmt.Errorf("index schema: %w", kind.Validate())
	}

	schema := &db.Schema{Index: ks.IndexName(kind), Prefix: ks.DocPrefix(kind), Fields: fields}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}
