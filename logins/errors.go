package logins

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchRecord indicates the requested login id does not exist.
	ErrNoSuchRecord = errors.New("logins: no such record")

	// ErrIDCollision indicates an add with an id that already exists.
	ErrIDCollision = errors.New("logins: id collision")

	// ErrInvalidLogin indicates the record fails validation.
	ErrInvalidLogin = errors.New("logins: invalid login")

	// ErrNonASCIIID indicates an id containing bytes outside printable
	// ascii, which the sync server would reject.
	ErrNonASCIIID = errors.New("logins: non-ascii id")
)

// Error wraps an underlying error with the store operation that failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("logins.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errorf(op string, format string, args ...interface{}) error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf(format, args...),
	}
}
