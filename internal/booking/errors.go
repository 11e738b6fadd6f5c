package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeConflict means the requested range overlaps an active
	// appointment. It is an expected outcome under concurrent demand; the
	// caller should re-query availability and pick another time.
	ErrTimeConflict = errors.New("time is no longer available")

	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrCancellationClosed  = errors.New("cancellation window has closed")

	// ErrCodeExhausted means confirmation code generation ran out of
	// attempts. At realistic volumes this is effectively unreachable; it
	// must fail loudly rather than reuse a code.
	ErrCodeExhausted = errors.New("confirmation code generation exhausted attempts")
)

// ValidationError marks input the client can correct and retry.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}
