package store

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the store could not answer. Callers should retry
	// and must not treat it as "no rules".
	ErrUnavailable = errors.New("rule store unavailable")
	ErrNotFound    = errors.New("not found")
	// ErrLimitReached is returned when a code has no redemptions left.
	ErrLimitReached = errors.New("usage limit reached")
)

// Error records the store operation and entity behind a failure.
type Error struct {
	Op  string
	ID  string
	Err error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func unavailable(op, id string, err error) error {
	return &Error{Op: op, ID: id, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
}

func notFound(op, id string) error {
	return &Error{Op: op, ID: id, Err: ErrNotFound}
}
