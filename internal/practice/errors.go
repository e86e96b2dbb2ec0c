package practice

import (
	"errors"
	"fmt"
)

var (
	ErrTestNotFound   = errors.New("practice test not found")
	ErrResultNotFound = errors.New("test result not found")
	ErrLengthMismatch = errors.New("answers length does not match question count")
	ErrBadAnswerKey   = errors.New("answer key length does not match question count")
)

// RetakeError reports how long the user still has to wait before solving
// the same test again.
type RetakeError struct {
	HoursRemaining float64
}

func (e *RetakeError) Error() string {
	return fmt.Sprintf("cannot retake test yet, wait %.1f hours", e.HoursRemaining)
}
