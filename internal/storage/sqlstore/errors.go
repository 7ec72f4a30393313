package sqlstore

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a user-scoped lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a uniqueness constraint rejects a write.
	ErrConflict = errors.New("already exists")
	// ErrInvalid is returned for empty or malformed input values.
	ErrInvalid = errors.New("invalid input")
	// ErrReservedList is returned when deleting one of the seeded lists.
	ErrReservedList = errors.New("reserved list cannot be deleted")
)

const pqUniqueViolation = "23505"

// classify maps driver-specific constraint errors onto ErrConflict.
func classify(op string, err error) error {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == pqUniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
