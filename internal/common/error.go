// Package common defines the closed set of sentinel errors shared across the
// pipeline, repositories and API layers of postline. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned when a conditional write's expected
	// version does not match the stored version. The caller should refresh
	// and retry; the write is never merged.
	ErrVersionConflict = errors.New("modified elsewhere, refresh and retry")

	// Pipeline errors.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateContent is returned when the dedup guard finds an exact or
	// near match for the post text on an overlapping platform.
	ErrDuplicateContent = errors.New("duplicate content")

	// ErrValidation is returned when a post has at least one blocking
	// validation issue. Publishing is refused, no platform call is made.
	ErrValidation = errors.New("validation failed")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
