// Package errors provides the structured error taxonomy used at every job
// boundary: analysis failures are rendered as "<TypeName>: <message>" so the
// job store and callers get a stable, parseable errorMessage column.
package errors

import (
	"fmt"
	"strings"
)

// ErrorType categorizes a failure along the lines the analyzer driver cares
// about when deciding whether a job is fatal or can degrade gracefully.
type ErrorType int

const (
	// TypeClone covers clone or initial ref checkout failures. Fatal.
	TypeClone ErrorType = iota
	// TypeSnapshot covers a historical checkout, unreadable file, or a
	// non-matching regex within a single snapshot. Non-fatal.
	TypeSnapshot
	// TypeHistory covers a failed recent-history collection. Non-fatal.
	TypeHistory
	// TypeUpload covers an object-store put failure. Fatal.
	TypeUpload
	// TypeInvalidPayload covers a queue message missing jobId.
	TypeInvalidPayload
	// TypeNotFound covers a job row that does not exist.
	TypeNotFound
	// TypeInternal covers anything uncaught elsewhere.
	TypeInternal
)

func (t ErrorType) String() string {
	switch t {
	case TypeClone:
		return "CloneFailure"
	case TypeSnapshot:
		return "PerSnapshotDegradation"
	case TypeHistory:
		return "HistoryCollectionFailure"
	case TypeUpload:
		return "UploadFailure"
	case TypeInvalidPayload:
		return "InvalidJobPayload"
	case TypeNotFound:
		return "JobNotFound"
	default:
		return "InternalError"
	}
}

// Fatal reports whether an error of this type should mark the owning job
// failed, per spec.md §7's error taxonomy.
func (t ErrorType) Fatal() bool {
	switch t {
	case TypeClone, TypeUpload, TypeInternal:
		return true
	default:
		return false
	}
}

// Error is a typed, wrappable error. Its Error() string is of the form
// "<TypeName>: <message>", with ": <cause>" appended when it wraps a cause,
// which is the shape update_job's errorMessage column expects.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on error type only, ignoring message and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// New creates an error of the given type.
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Newf creates an error of the given type with a formatted message.
func Newf(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a type and message to an existing error. Returns nil if err
// is nil so call sites can write `return errors.Wrap(err, ...)` unconditionally.
func Wrap(err error, t ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Type: t, Message: message, Cause: err}
}

// CloneFailure wraps a clone/checkout error.
func CloneFailure(err error, detail string) *Error { return Wrap(err, TypeClone, detail) }

// UploadFailure wraps an object-store put error.
func UploadFailure(err error, detail string) *Error { return Wrap(err, TypeUpload, detail) }

// InvalidPayload reports a queue message that failed to decode.
func InvalidPayload(detail string) *Error { return New(TypeInvalidPayload, detail) }

// NotFound reports a job row absent from the job store.
func NotFound(jobID string) *Error {
	return Newf(TypeNotFound, "job %s not found", jobID)
}

// IsFatal reports whether err (if it is, or wraps, an *Error) should mark
// the owning job failed.
func IsFatal(err error) bool {
	var e *Error
	for err != nil {
		if asErr, ok := err.(*Error); ok {
			e = asErr
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return true // unrecognized errors are treated as fatal at the job boundary
	}
	return e.Type.Fatal()
}

// Format renders err the way the job store's errorMessage column expects:
// "<TypeName>: <message>". Non-*Error values fall back to "InternalError: <msg>".
func Format(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Error()
	}
	msg := err.Error()
	if strings.TrimSpace(msg) == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("%s: %s", TypeInternal, msg)
}
