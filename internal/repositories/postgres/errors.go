package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// storeError categorises postgres failures for the services layer.
type storeError struct {
	op          string
	err         error
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *storeError) Error() string {
	return fmt.Sprintf("postgres: %s: %v", e.op, e.err)
}

func (e *storeError) Unwrap() error { return e.err }

func (e *storeError) IsNotFound() bool    { return e.notFound }
func (e *storeError) IsConflict() bool    { return e.conflict }
func (e *storeError) IsUnavailable() bool { return e.unavailable }

const uniqueViolationCode = "23505"

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	wrapped := &storeError{op: op, err: err}
	if errors.Is(err, pgx.ErrNoRows) {
		wrapped.notFound = true
		return wrapped
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			wrapped.conflict = true
		}
		return wrapped
	}
	wrapped.unavailable = true
	return wrapped
}

func notFoundError(op string) error {
	return &storeError{op: op, err: pgx.ErrNoRows, notFound: true}
}
