// Package redis implements db.Store on Valkey or Redis with the search module, via rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/yash-quizizz/image-search/internal/db"
)

var _ db.Store = (*Store)(nil)

// Config holds connection parameters.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// TextSearch enables TEXT schema fields. Redis 8+ has them; valkey-search 1.0.x does not.
	TextSearch bool
}

// Store is a single rueidis client shared by hash writes and index commands.
type Store struct {
	client     rueidis.Client
	textSearch bool
}

// NewStore dials the server.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.INFO is parsed as a flat RESP2 array
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}

	return newStore(client, cfg.TextSearch), nil
}

func newStore(client rueidis.Client, textSearch bool) *Store {
	return &Store{client: client, textSearch: textSearch}
}

// Ping round-trips a PING.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.CommandError{Command: "PING", Err: err}
	}
	return nil
}

// WaitForReady retries Ping with doubling delay, up to one second, until it
// succeeds or timeout elapses.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	delay := 50 * time.Millisecond
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis: not ready after %s: %w", timeout, err)
		case <-time.After(delay):
		}
		delay = min(delay*2, time.Second)
	}
}

// Close releases the client.
func (s *Store) Close() {
	s.client.Close()
}

// serverSaid reports whether err is a server reply whose message contains msg, ignoring case.
func serverSaid(err error, msg string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(msg))
}
