package portal

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures raised at a portal operation boundary.
type ErrorKind int

const (
	KindConstructionFailure ErrorKind = iota + 1
	KindCollectionUnavailable
	KindUserUnavailable
	KindRowFetchFailed
)

// Fixed user-facing messages per error kind.
var errorMessages = map[ErrorKind]string{
	KindConstructionFailure:   "portal is unavailable",
	KindCollectionUnavailable: "list collection could not be loaded",
	KindUserUnavailable:       "current user could not be loaded",
	KindRowFetchFailed:        "list rows could not be loaded",
}

// Non-zero codes per error kind. ConstructionFailure shares the probe's code.
var errorCodes = map[ErrorKind]int{
	KindConstructionFailure:   -1,
	KindCollectionUnavailable: -2,
	KindUserUnavailable:       -3,
	KindRowFetchFailed:        -4,
}

var kindNames = map[ErrorKind]string{
	KindConstructionFailure:   "ConstructionFailure",
	KindCollectionUnavailable: "CollectionUnavailable",
	KindUserUnavailable:       "UserUnavailable",
	KindRowFetchFailed:        "RowFetchFailed",
}

// ProbeFailureCode is the error code every failed availability probe reports.
const ProbeFailureCode = -1

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Message returns the fixed message for the kind.
func (k ErrorKind) Message() string {
	if msg, ok := errorMessages[k]; ok {
		return msg
	}
	return "portal operation failed"
}

// Code returns the non-zero code for the kind.
func (k ErrorKind) Code() int {
	if code, ok := errorCodes[k]; ok {
		return code
	}
	return ProbeFailureCode
}

// Sentinels for errors.Is matching on kind alone.
var (
	ErrConstructionFailure   = &Error{Kind: KindConstructionFailure}
	ErrCollectionUnavailable = &Error{Kind: KindCollectionUnavailable}
	ErrUserUnavailable       = &Error{Kind: KindUserUnavailable}
	ErrRowFetchFailed        = &Error{Kind: KindRowFetchFailed}
)

var (
	// ErrEmptyCollection marks a reachable portal that exposes zero lists.
	ErrEmptyCollection = errors.New("portal exposes no lists")
	// ErrNilList is returned when rows are requested without a list handle.
	ErrNilList = errors.New("no list handle given")
	// ErrNoSession marks a probe on a client that has no transport to open a session with.
	ErrNoSession = errors.New("no portal session is open")
)

// Error is a typed portal failure wrapping the underlying transport or query cause.
type Error struct {
	Kind    ErrorKind
	Code    int
	Message string
	Cause   error
}

// NewError wraps cause into the kind's fixed message and code.
func NewError(kind ErrorKind, cause error) *Error {
	return &Error{
		Kind:    kind,
		Code:    kind.Code(),
		Message: kind.Message(),
		Cause:   cause,
	}
}

func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = e.Kind.Message()
	}
	msg := base
	if e.Kind == KindConstructionFailure {
		msg = fmt.Sprintf("#%d: %s", e.Code, base)
	}
	cause := e.Cause
	// Skip a wrapped portal error that repeats our own message.
	if inner, ok := cause.(*Error); ok && inner.Message == base {
		cause = inner.Cause
	}
	if cause != nil {
		return msg + ": " + cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
