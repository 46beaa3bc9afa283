package types

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates the failure classes this library produces.
// Every error crossing a package boundary is one of these kinds.
type ErrorKind string

const (
	// KindValidation marks a malformed event rejected on write.
	KindValidation ErrorKind = "validation"
	// KindNotFound marks a reference to an unknown character or event.
	// Read paths treat it as empty-result, not fatal.
	KindNotFound ErrorKind = "not_found"
	// KindBackendUnavailable marks an unreachable or timed-out backend.
	KindBackendUnavailable ErrorKind = "backend_unavailable"
	// KindRateLimited is surfaced verbatim from the generation service.
	KindRateLimited ErrorKind = "rate_limited"
	// KindQuotaExhausted is surfaced verbatim from the generation service.
	KindQuotaExhausted ErrorKind = "quota_exhausted"
)

// Error is a classified failure.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError classifies an underlying error.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the ErrorKind of err, or "" for unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
