package db

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexNotFound is returned when FT.* reports an unknown index.
	ErrIndexNotFound = errors.New("db: index not found")
	// ErrIndexExists is returned by CreateIndex when the name is taken.
	ErrIndexExists = errors.New("db: index already exists")
)

// CommandError carries the server command that failed.
type CommandError struct {
	Command string
	Key     string // empty for index commands
	Err     error
}

func (e *CommandError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %v", e.Command, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
