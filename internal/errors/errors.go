// Package errors provides the error taxonomy shared by every layer of the message engine.
// Domain packages wrap these sentinels so callers can tell failure categories apart with Is,
// and handlers map them to HTTP status codes.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the caller supplied invalid parameters or materials.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates a broken internal invariant. It is never the caller's fault.
	ErrInternal = errors.New("internal error")
)

// Message protocol failure categories.
//
// None of these are retried internally. Every one of them is fatal for the message
// being processed and no partial plaintext is released once one has been returned.
var (
	// ErrFormat indicates a malformed or truncated header, frame or footer.
	ErrFormat = errors.New("format error")

	// ErrPolicyViolation indicates an algorithm suite incompatible with the configured
	// commitment policy or other client-side limits.
	ErrPolicyViolation = errors.New("policy violation")

	// ErrAuthentication indicates a header tag, frame tag or key commitment mismatch.
	ErrAuthentication = errors.New("authentication failure")

	// ErrOrdering indicates a frame arrived with an unexpected sequence number.
	ErrOrdering = errors.New("ordering violation")

	// ErrSignature indicates the trailing message signature did not verify.
	ErrSignature = errors.New("signature failure")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap but formats the message with the given arguments.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Category returns a short label for the failure category of err, for metrics and
// logs: "format", "policy", "authentication", "ordering", "signature", "invalid_input",
// "not_found", "internal" or "unknown".
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrPolicyViolation):
		return "policy"
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrOrdering):
		return "ordering"
	case errors.Is(err, ErrSignature):
		return "signature"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInternal):
		return "internal"
	default:
		return "unknown"
	}
}
