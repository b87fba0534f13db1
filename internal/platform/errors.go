package platform

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an adapter failure for the retry policy.
type ErrorKind int

const (
	// KindRetryable marks transient failures: rate limits, 5xx responses,
	// network errors, timeouts.
	KindRetryable ErrorKind = iota

	// KindFatal marks failures that retries cannot fix: bad credentials,
	// platform-side validation rejections, duplicate-content rejections.
	KindFatal
)

func (k ErrorKind) String() string {
	if k == KindRetryable {
		return "retryable"
	}
	return "fatal"
}

// Error is the single error type crossing the adapter boundary.
type Error struct {
	Kind     ErrorKind
	Platform Platform
	Op       string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s): %v", e.Platform, e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// RetryableErr wraps err as a transient adapter failure.
func RetryableErr(p Platform, op string, err error) *Error {
	return &Error{Kind: KindRetryable, Platform: p, Op: op, Err: err}
}

// FatalErr wraps err as a permanent adapter failure.
func FatalErr(p Platform, op string, err error) *Error {
	return &Error{Kind: KindFatal, Platform: p, Op: op, Err: err}
}

// IsRetryable reports whether err is (or wraps) a retryable adapter error.
// Anything that is not a *Error is treated as fatal.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == KindRetryable
	}
	return false
}
