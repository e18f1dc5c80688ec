package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when no row matches the key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique constraint rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrStale is returned when a guarded write finds the row changed since it
	// was read.
	ErrStale = errors.New("record changed concurrently")
)

const uniqueViolation = "23505"

// translate maps driver errors onto the repository sentinels and attaches a
// stack to everything else.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errors.WithStack(ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Wrap(ErrDuplicateKey, pgErr.ConstraintName)
	}
	return errors.WithStack(err)
}

// recordID validates a primary key so lookups compare against the uuid column
// directly. A malformed id cannot match any row.
func recordID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errors.WithStack(ErrNotFound)
	}
	return parsed, nil
}
