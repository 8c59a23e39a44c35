// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/concept/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotAllowed indicates a business invariant would be violated.
	ErrNotAllowed = errors.New("not allowed")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = fmt.Errorf("%w: already exists", ErrNotAllowed)

	// ErrUnauthorized indicates the caller lacks the role required for the action
	// (not the creator, assignee or a member).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnauthenticated indicates a missing, invalid or expired session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidArgument indicates malformed or missing input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)

// Error pairs a sentinel kind with a message meant for the caller.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds an ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error { return newf(ErrNotFound, format, args...) }

// NotAllowedf builds an ErrNotAllowed with a formatted message.
func NotAllowedf(format string, args ...any) error { return newf(ErrNotAllowed, format, args...) }

// AlreadyExistsf builds an ErrAlreadyExists with a formatted message.
func AlreadyExistsf(format string, args ...any) error {
	return newf(ErrAlreadyExists, format, args...)
}

// Unauthorizedf builds an ErrUnauthorized with a formatted message.
func Unauthorizedf(format string, args ...any) error {
	return newf(ErrUnauthorized, format, args...)
}

// Unauthenticatedf builds an ErrUnauthenticated with a formatted message.
func Unauthenticatedf(format string, args ...any) error {
	return newf(ErrUnauthenticated, format, args...)
}

// Invalidf builds an ErrInvalidArgument with a formatted message.
func Invalidf(format string, args ...any) error { return newf(ErrInvalidArgument, format, args...) }

// Message returns the caller-facing text of err: the message of the outermost
// *Error in the chain, or err.Error() otherwise.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}
