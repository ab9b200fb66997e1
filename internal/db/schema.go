package db

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidSchema is returned by Schema.Validate.
var ErrInvalidSchema = errors.New("db: invalid schema")

// FieldKind is a schema field type as spelled in FT.CREATE.
type FieldKind string

// Field kinds.
const (
	FieldTag     FieldKind = "TAG"
	FieldText    FieldKind = "TEXT"
	FieldNumeric FieldKind = "NUMERIC"
	FieldVector  FieldKind = "VECTOR"
)

// Distance is a vector distance metric.
type Distance string

// Distance metrics.
const (
	Cosine Distance = "COSINE"
	L2     Distance = "L2"
	IP     Distance = "IP"
)

// ParseDistance accepts a metric name in any case.
func ParseDistance(s string) (Distance, error) {
	switch d := Distance(strings.ToUpper(s)); d {
	case Cosine, L2, IP:
		return d, nil
	}
	return "", fmt.Errorf("unknown distance metric %q", s)
}

// Algorithm is a vector index algorithm.
type Algorithm string

// Vector algorithms.
const (
	HNSW Algorithm = "HNSW"
	Flat Algorithm = "FLAT"
)

// ParseAlgorithm accepts an algorithm name in any case.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToUpper(s)); a {
	case HNSW, Flat:
		return a, nil
	}
	return "", fmt.Errorf("unknown vector algorithm %q", s)
}

// VectorSpec configures a FLOAT32 vector field. M and EFConstruction apply
// to HNSW only; zero leaves the server default.
type VectorSpec struct {
	Algorithm      Algorithm
	Dim            int
	Distance       Distance
	M              int
	EFConstruction int
}

// SchemaField is one attribute of an index schema. Vector is set only for FieldVector.
type SchemaField struct {
	Name   string
	Kind   FieldKind
	Vector *VectorSpec
}

// Tag returns a TAG field.
func Tag(name string) SchemaField { return SchemaField{Name: name, Kind: FieldTag} }

// Text returns a TEXT field.
func Text(name string) SchemaField { return SchemaField{Name: name, Kind: FieldText} }

// Numeric returns a NUMERIC field.
func Numeric(name string) SchemaField { return SchemaField{Name: name, Kind: FieldNumeric} }

// Vector returns a VECTOR field.
func Vector(name string, spec VectorSpec) SchemaField {
	return SchemaField{Name: name, Kind: FieldVector, Vector: &spec}
}

// Schema is an index over the hashes stored under Prefix.
type Schema struct {
	Index  string
	Prefix string
	Fields []SchemaField
}

var identifier = regexp.MustCompile(`^[A-Za-z0-9_:-]+$`)

// Validate reports the first structural problem, wrapped in ErrInvalidSchema.
func (s *Schema) Validate() error {
	if !identifier.MatchString(s.Index) {
		return fmt.Errorf("%w: index name %q", ErrInvalidSchema, s.Index)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: %s has no fields", ErrInvalidSchema, s.Index)
	}

	seen := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field %d has no name", ErrInvalidSchema, i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = struct{}{}

		switch f.Kind {
		case FieldTag, FieldText, FieldNumeric:
		case FieldVector:
			if f.Vector == nil || f.Vector.Dim <= 0 {
				return fmt.Errorf("%w: vector field %q needs a positive dimension", ErrInvalidSchema, f.Name)
			}
		default:
			return fmt.Errorf("%w: field %q has unknown kind %q", ErrInvalidSchema, f.Name, f.Kind)
		}
	}
	return nil
}

// CreateArgs renders the FT.CREATE arguments that follow the command name.
func (s *Schema) CreateArgs() []string {
	args := []string{s.Index, "ON", "HASH"}
	if s.Prefix != "" {
		args = append(args, "PREFIX", "1", s.Prefix)
	}
	args = append(args, "SCHEMA")
	for _, f := range s.Fields {
		args = append(args, f.Name, string(f.Kind))
		if f.Kind == FieldVector && f.Vector != nil {
			args = append(args, f.Vector.args()...)
		}
	}
	return args
}

// String renders the full FT.CREATE command for logs.
func (s *Schema) String() string {
	return "FT.CREATE " + strings.Join(s.CreateArgs(), " ")
}

// args renders "<ALGO> <count> TYPE FLOAT32 DIM ..." for a vector field.
func (v *VectorSpec) args() []string {
	algo := v.Algorithm
	if algo == "" {
		algo = Flat
	}
	dist := v.Distance
	if dist == "" {
		dist = Cosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(v.Dim),
		"DISTANCE_METRIC", string(dist),
	}
	if algo == HNSW {
		if v.M > 0 {
			attrs = append(attrs, "M", strconv.Itoa(v.M))
		}
		if v.EFConstruction > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(v.EFConstruction))
		}
	}
	return append([]string{string(algo), strconv.Itoa(len(attrs))}, attrs...)
}
