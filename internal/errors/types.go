package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is a terminal conversion error. Every Error aborts the current run.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
	Err     error  `json:"-"`
}

// Kind categorises conversion errors
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidTerm
	KindUnknownSessionType
	KindBuildingNotFound
	KindMalformedSchedule
	KindInvalidDocument
	KindInvalidTable
)

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrInvalidTerm        = &Error{Kind: KindInvalidTerm, Message: "invalid term"}
	ErrUnknownSessionType = &Error{Kind: KindUnknownSessionType, Message: "unknown session type"}
	ErrBuildingNotFound   = &Error{Kind: KindBuildingNotFound, Message: "building not found"}
	ErrMalformedSchedule  = &Error{Kind: KindMalformedSchedule, Message: "malformed schedule"}
	ErrInvalidDocument    = &Error{Kind: KindInvalidDocument, Message: "invalid document"}
	ErrInvalidTable       = &Error{Kind: KindInvalidTable, Message: "invalid lookup table"}
)

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindInvalidTerm:
		return "INVALID_TERM"
	case KindUnknownSessionType:
		return "UNKNOWN_SESSION_TYPE"
	case KindBuildingNotFound:
		return "BUILDING_NOT_FOUND"
	case KindMalformedSchedule:
		return "MALFORMED_SCHEDULE"
	case KindInvalidDocument:
		return "INVALID_DOCUMENT"
	case KindInvalidTable:
		return "INVALID_TABLE"
	default:
		return "UNKNOWN"
	}
}

// New creates an Error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error whose context is built from a format string
func Newf(kind Kind, message, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Context: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a kind and message to an underlying error
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
