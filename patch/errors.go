package patch

import (
	"errors"
	"fmt"

	"flo.znkr.io/listpatch/script"
)

var (
	// ErrNotAttached indicates that no target was attached before operations were dispatched.
	ErrNotAttached = errors.New("no target attached")

	// ErrMalformed indicates an operation stream that cannot be applied: an operation of the wrong
	// category in a replay phase, or positions outside of the current sequence.
	ErrMalformed = errors.New("malformed operation stream")

	// ErrInconsistent indicates that the patched sequence differs from the target.
	ErrInconsistent = errors.New("inconsistent result")

	// ErrConsumed indicates that the operations of a script were already taken.
	ErrConsumed = errors.New("script already consumed")

	// ErrPending indicates that a batch still holds operations that were not executed.
	ErrPending = errors.New("batch has pending operations")
)

// OpError describes a failure to apply a single operation.
type OpError struct {
	Op     script.Op
	Err    error // One of the errors above
	Detail string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%v: %v: %s", e.Err, e.Op, e.Detail)
}

func (e *OpError) Unwrap() error { return e.Err }

func malformed(op script.Op, format string, args ...any) error {
	return &OpError{Op: op, Err: ErrMalformed, Detail: fmt.Sprintf(format, args...)}
}
