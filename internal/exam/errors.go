package exam

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals malformed input, e.g. the wrong number
	// of subject ids.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound covers unknown subjects and unknown or not-owned
	// exams. Ownership failures deliberately look identical to missing
	// rows so callers cannot probe for other users' exams.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals the one-live-exam-per-user rule was violated.
	ErrConflict = errors.New("user already has an active exam")

	// ErrInvalidState signals an operation against a day or exam that is
	// not in the required state.
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrSessionMismatch signals a session id that does not belong to
	// the day being completed.
	ErrSessionMismatch = errors.New("session does not match day")

	// ErrInsufficientContent signals the question pool cannot supply the
	// required number of questions for a subject.
	ErrInsufficientContent = errors.New("not enough active questions")
)

// stateErr wraps ErrInvalidState with the observed vs. required status,
// so the caller can see exactly why the transition was refused.
func stateErr(what string, current, want fmt.Stringer) error {
	return fmt.Errorf("%w: %s is %q, want %q", ErrInvalidState, what, current, want)
}

func (s ExamStatus) String() string { return string(s) }
func (s DayStatus) String() string  { return string(s) }
