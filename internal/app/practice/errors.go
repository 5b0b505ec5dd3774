package practice

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput means the submitted text was empty after trimming.
	ErrEmptyInput = errors.New("empty input")

	// ErrSessionDone means the session has ended and accepts no more turns.
	ErrSessionDone = errors.New("session is finished")

	// ErrBusy means another turn is in flight against the same session.
	ErrBusy = errors.New("a turn is already in flight")

	// ErrNothingRecognized means transcription produced no usable text.
	// Callers render nothing; the turn simply never started.
	ErrNothingRecognized = errors.New("nothing recognized")
)

// CollaboratorError wraps a failure from an external service (network,
// auth, quota). It is surfaced to the user as a visible, non-fatal message;
// the turn is abandoned but the session continues.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
