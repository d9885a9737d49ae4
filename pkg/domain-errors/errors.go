// Package dErrors carries the failure taxonomy shared by every layer.
// Callers branch on codes instead of matching error text, so the registry
// adapters are the only place raw ledger errors get interpreted.
package dErrors

import (
	"errors"
	"fmt"
)

// Code identifies a failure class.
type Code string

const (
	// CodeRegistryUnavailable marks transient connectivity or consensus
	// failures. Safe to retry; never a verdict.
	CodeRegistryUnavailable Code = "registry_unavailable"
	// CodeNotFound means the token identifier has no record on the ledger.
	CodeNotFound Code = "not_found"
	// CodeDuplicateID means the ledger already holds a record under the
	// submitted token identifier.
	CodeDuplicateID Code = "duplicate_id"
	// CodePermissionDenied means the caller lacks write rights on the
	// registry contract. Fatal for the invocation, not retried.
	CodePermissionDenied Code = "permission_denied"
	// CodeInvalidInput rejects malformed requests before any ledger call.
	CodeInvalidInput Code = "invalid_input"
	// CodeUnauthorized rejects unauthenticated API callers.
	CodeUnauthorized Code = "unauthorized"
	// CodeRateLimited rejects callers over their request budget.
	CodeRateLimited Code = "rate_limited"
	// CodeInternal is everything we did not anticipate.
	CodeInternal Code = "internal"
)

// Error is a code-tagged error. It wraps an optional cause so errors.Is and
// errors.As keep working across layers.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a taxonomy error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with formatting.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error with a code. The cause stays reachable via
// errors.Unwrap.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// HasCode is an alias for Is kept for readability at call sites that read
// like assertions.
func HasCode(err error, code Code) bool { return Is(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for
// untagged errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
