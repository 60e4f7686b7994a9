package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	// ErrConflict covers duplicate inserts such as re-pinning an already
	// pinned conversation; callers treat it as non-fatal.
	ErrConflict = errors.New("duplicate row")
)

const uniqueViolation = "23505"

func mapConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}
