package redis

import (
	"context"
	"errors"

	"github.com/redis/rueidis"

	"github.com/yash-quizizz/image-search/internal/db"
)

const (
	msgIndexExists  = "index already exists"
	msgUnknownIndex = "unknown index name"
)

// CreateIndex issues FT.CREATE for schema. A taken name yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, schema *db.Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}

	cmd := s.client.B().Arbitrary("FT.CREATE").Args(schema.CreateArgs()...).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if serverSaid(err, msgIndexExists) {
			return db.ErrIndexExists
		}
		return &db.CommandError{Command: "FT.CREATE", Err: err}
	}
	return nil
}

// IndexExists probes with FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	_, err := s.info(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, db.ErrIndexNotFound):
		return false, nil
	default:
		return false, err
	}
}

// IndexDocCount returns num_docs from FT.INFO.
func (s *Store) IndexDocCount(ctx context.Context, name string) (int, error) {
	info, err := s.info(ctx, name)
	if err != nil {
		return 0, err
	}
	v, ok := info["num_docs"]
	if !ok {
		return 0, &db.CommandError{Command: "FT.INFO", Err: errors.New("reply has no num_docs")}
	}
	return int(v), nil
}

// SupportsTextSearch reports whether schemas may use TEXT fields.
func (s *Store) SupportsTextSearch(context.Context) bool {
	return s.textSearch
}

// info returns the numeric attributes of an FT.INFO reply. Non-numeric values are skipped.
func (s *Store) info(ctx context.Context, name string) (map[string]float64, error) {
	cmd := s.client.B().Arbitrary("FT.INFO").Args(name).Build()
	arr, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		if serverSaid(err, msgUnknownIndex) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.CommandError{Command: "FT.INFO", Err: err}
	}

	out := make(map[string]float64, len(arr)/2)
	for i := 0; i+1 < len(arr); i += 2 {
		k, err := arr[i].ToString()
		if err != nil {
			continue
		}
		if v, ok := numeric(arr[i+1]); ok {
			out[k] = v
		}
	}
	return out, nil
}

// numeric reads integer, double and numeric-string replies alike.
func numeric(m rueidis.RedisMessage) (float64, bool) {
	if n, err := m.AsInt64(); err == nil {
		return float64(n), true
	}
	if f, err := m.AsFloat64(); err == nil {
		return f, true
	}
	return 0, false
}
