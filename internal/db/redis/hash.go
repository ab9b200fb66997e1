package redis

import (
	"context"
	"maps"
	"slices"

	"github.com/redis/rueidis"

	"github.com/yash-quizizz/image-search/internal/db"
)

// hset builds an HSET with fields in sorted order so the wire command is deterministic.
func (s *Store) hset(key string, fields map[string]string) rueidis.Completed {
	cmd := s.client.B().Hset().Key(key).FieldValue()
	for _, f := range slices.Sorted(maps.Keys(fields)) {
		cmd = cmd.FieldValue(f, fields[f])
	}
	return cmd.Build()
}

// HSetMulti pipelines one HSET per item through DoMulti. Replies are checked
// individually, so a rejected key leaves its neighbours' results intact.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) []error {
	if len(items) == 0 {
		return nil
	}

	cmds := make(rueidis.Commands, 0, len(items))
	for _, it := range items {
		cmds = append(cmds, s.hset(it.Key, it.Fields))
	}

	errs := make([]error, len(items))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if i >= len(items) {
			break
		}
		if err := res.Error(); err != nil {
			errs[i] = &db.CommandError{Command: "HSET", Key: items[i].Key, Err: err}
		}
	}
	return errs
}
