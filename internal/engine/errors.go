package engine

import (
	"errors"
	"fmt"

	"github.com/abhisek/drillz/internal/store"
)

var (
	// ErrUnauthorized means the request carried no user identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound means the course, drill, question or attempt does not
	// exist or belongs to someone else.
	ErrNotFound = errors.New("not found")
	// ErrLocked means the drill is not unlocked for the user.
	ErrLocked = errors.New("drill locked")
	// ErrNotTimed means an expiry was requested for an untimed attempt.
	ErrNotTimed = errors.New("attempt is not timed")
	// ErrConflict means the attempt cannot take the request in its current
	// state: it is closed or the question is not the one at the cursor.
	ErrConflict = errors.New("attempt state conflict")
	// ErrNoCourse means the user has not selected a course yet.
	ErrNoCourse = errors.New("no active course")
)

// PersistenceError wraps a durable store failure. Callers may retry the
// request; every write the engine makes is idempotent or compare-and-swap.
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

// persist maps store errors onto the engine taxonomy. ErrNotFound passes
// through as the engine sentinel, anything else becomes a PersistenceError.
func persist(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
