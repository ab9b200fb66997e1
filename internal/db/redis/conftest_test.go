package redis

import (
	"errors"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/yash-quizizz/image-search/internal/db"
)

func newMockStore(t *testing.T) (*Store, *mock.Client) {
	t.Helper()
	c := mock.NewClient(gomock.NewController(t))
	return newStore(c, false), c
}

func commandOf(t *testing.T, err error) *db.CommandError {
	t.Helper()
	var ce *db.CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *db.CommandError, got %T: %v", err, err)
	}
	return ce
}
