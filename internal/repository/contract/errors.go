package contract

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateMessage is returned when a message with the same (id, created_at)
// already exists.
var ErrDuplicateMessage = errors.New("chat message already exists")

const pgUniqueViolation = "23505"

// PersistenceError reports a storage fault (connection loss, constraint
// violation, ...). Repositories never retry; the caller decides.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// WrapPersistence classifies a driver error for operation op. Unique
// violations additionally match ErrDuplicateMessage.
func WrapPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		err = fmt.Errorf("%w: %s", ErrDuplicateMessage, pgErr.ConstraintName)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		err = fmt.Errorf("%w: %v", ErrDuplicateMessage, err)
	}
	return &PersistenceError{Op: op, Err: err}
}

func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
